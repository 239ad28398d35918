package cmd

import (
	"fmt"
	"strings"

	"github.com/hpcjobs/jobsubmit/internal/scheduler"
	"github.com/hpcjobs/jobsubmit/internal/utils"
	"github.com/spf13/cobra"
)

var (
	submitFlags  JobFlags
	submitDryRun bool
)

var submitCmd = &cobra.Command{
	Use:   "submit [flags] [--] <executable> [args...]",
	Short: "Render batch scripts and submit them",
	Long: `Render the batch scripts for a job and hand them to the scheduler.

SLURM jobs get two scripts: <runscript> sets up the environment and runs its
arguments, <runscript>.cmd holds the #SBATCH directives and is passed to sbatch.
LSF jobs get a single #BSUB script that is piped into bsub.

Job settings come from, in increasing priority:
  1. Config defaults (defaults.time, defaults.queue, scheduler_type)
  2. The job file given with --file
  3. Flags set on the command line`,
	Example: `  jobsubmit submit -J hello -n 4 -t 0:30 -- ./hello --greeting hi
  jobsubmit submit --type lsf --queue normal -m openmpi -- ./solver
  jobsubmit submit -f job.yaml --ntasks 16
  jobsubmit submit -f job.yaml --dry-run`,
	RunE: runSubmit,
}

func init() {
	RegisterJobFlags(submitCmd, &submitFlags)
	submitCmd.Flags().BoolVar(&submitDryRun, "dry-run", false, "render the scripts without submitting")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	job, err := buildJob(cmd.Flags(), &submitFlags, args)
	if err != nil {
		return err
	}

	logger := openAuditLog()
	defer logger.Close()

	if submitDryRun {
		scripts, err := scheduler.Render(job)
		if err != nil {
			return err
		}
		logger.RecordRender(job, scripts)
		printScripts(scripts)
		utils.PrintNote("Dry run: %s job not submitted", job.Type())
		return nil
	}

	res, err := scheduler.Submit(job)
	logger.RecordSubmission(job, res, err)
	if err != nil {
		return err
	}

	// Scheduler output is passed through verbatim
	if out := strings.TrimSpace(res.Stdout); out != "" {
		fmt.Println(out)
	}
	utils.PrintSuccess("Submitted %s with %s (%s)",
		utils.StylePath(res.Scripts.SubmitScript()), utils.StyleCommand(res.Command[0]), utils.StyleNumber(res.SubmissionID))
	return nil
}

func printScripts(scripts *scheduler.Scripts) {
	utils.PrintMessage("Runscript: %s", utils.StylePath(scripts.Runscript))
	if scripts.CommandScript != "" {
		utils.PrintMessage("Command script: %s", utils.StylePath(scripts.CommandScript))
	}
}
