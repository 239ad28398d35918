package cmd

import (
	"fmt"
	"os"

	"github.com/hpcjobs/jobsubmit/internal/scheduler"
	"github.com/hpcjobs/jobsubmit/internal/utils"
	"github.com/spf13/cobra"
)

var (
	renderFlags JobFlags
	renderShow  bool
)

var renderCmd = &cobra.Command{
	Use:   "render [flags] [--] <executable> [args...]",
	Short: "Write batch scripts without submitting them",
	Long: `Write the batch scripts for a job exactly as submit would, without running
sbatch or bsub. Useful to inspect a job on a machine without a scheduler.`,
	Example: `  jobsubmit render -J test -n 2 -t 5 -- ./app --flag
  jobsubmit render -f job.yaml --show`,
	RunE: runRender,
}

func init() {
	RegisterJobFlags(renderCmd, &renderFlags)
	renderCmd.Flags().BoolVarP(&renderShow, "show", "s", false, "print the rendered scripts to stdout")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	job, err := buildJob(cmd.Flags(), &renderFlags, args)
	if err != nil {
		return err
	}

	scripts, err := scheduler.Render(job)
	if err != nil {
		return err
	}

	logger := openAuditLog()
	defer logger.Close()
	logger.RecordRender(job, scripts)

	printScripts(scripts)
	if renderShow {
		for _, path := range []string{scripts.Runscript, scripts.CommandScript} {
			if path == "" {
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			fmt.Printf("==> %s <==\n%s\n", path, data)
		}
	}
	return nil
}
