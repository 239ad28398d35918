package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hpcjobs/jobsubmit/internal/config"
	"github.com/hpcjobs/jobsubmit/internal/scheduler"
	"github.com/hpcjobs/jobsubmit/internal/utils"
	"github.com/spf13/cobra"
)

var (
	debugMode bool
	quietMode bool
)

var rootCmd = &cobra.Command{
	Use:           "jobsubmit",
	Short:         "jobsubmit: render and submit SLURM/LSF batch jobs.",
	Version:       config.VERSION,
	SilenceErrors: true,
	SilenceUsage:  true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Step 1: Load built-in defaults
		config.LoadDefaults()

		// Step 2: Initialize Viper (read config file, env vars)
		if err := config.InitViper(); err != nil {
			utils.PrintWarning("%v", err)
		}

		// Step 3: Load values from Viper into Global config
		config.LoadFromViper()

		// Step 4: Apply command-line flags (highest priority)
		utils.QuietMode = quietMode
		if debugMode {
			utils.DebugMode = true
			config.Global.Debug = true
			utils.PrintDebug("Debug mode enabled")
			utils.PrintDebug("jobsubmit Version: %s", utils.StyleInfo(config.VERSION))
			utils.PrintDebug("Default scheduler: %s", config.Global.SchedulerType)
			utils.PrintDebug("sbatch: %s, bsub: %s", config.Global.SbatchBin, config.Global.BsubBin)
			utils.PrintDebug("Script directory: %s", utils.StylePath(config.Global.ScriptDir))
		}
	},
}

// exitCode maps a command error to the process exit status
func exitCode(err error) int {
	var se *scheduler.SubmissionError
	if errors.As(err, &se) && se.ExitCode > 0 {
		return se.ExitCode
	}
	return 1
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra's automatic error printing is silenced. Scheduler failures
		// print the scheduler's own message first.
		var se *scheduler.SubmissionError
		if errors.As(err, &se) {
			if out := strings.TrimSpace(se.Output); out != "" {
				fmt.Fprintln(os.Stderr, out)
			}
			utils.PrintError("%s submission failed (exit %d)", se.Scheduler, se.ExitCode)
			os.Exit(exitCode(err))
		}
		utils.PrintError("%v", err)
		os.Exit(exitCode(err))
	}
}

func init() {
	// Subcommands are attached to rootCmd in their respective init() functions
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Suppress informational messages")
}
