package cmd

import (
	"fmt"

	"github.com/hpcjobs/jobsubmit/internal/config"
	"github.com/hpcjobs/jobsubmit/internal/scheduler"
	"github.com/hpcjobs/jobsubmit/internal/utils"
	"github.com/spf13/cobra"
)

var schedulerCmd = &cobra.Command{
	Use:     "scheduler",
	Aliases: []string{"sched"},
	Short:   "Display submission binaries",
	Long: `Display the submission binary configured for each scheduler and whether
it resolves on this host.`,
	Example: `  jobsubmit scheduler           # Show scheduler information
  jobsubmit sched               # Short alias`,
	Run: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

// schedulerStatus describes one scheduler's binary resolution
type schedulerStatus struct {
	Type     scheduler.JobType
	Binary   string
	Resolved string
	Err      error
	Default  bool
}

func collectSchedulerStatus() []schedulerStatus {
	defaultType, _ := scheduler.ParseJobType(config.Global.SchedulerType)

	var statuses []schedulerStatus
	for _, jobType := range []scheduler.JobType{scheduler.JobTypeSLURM, scheduler.JobTypeLSF} {
		sched, err := scheduler.NewScheduler(jobType, scheduler.ConfiguredBinary(jobType))
		if err != nil {
			continue
		}
		st := schedulerStatus{Type: jobType, Binary: sched.Binary(), Default: jobType == defaultType}
		st.Resolved, st.Err = scheduler.LookupBinary(sched)
		statuses = append(statuses, st)
	}
	return statuses
}

func runScheduler(cmd *cobra.Command, args []string) {
	// No [JOB] prefix for structured output
	fmt.Println("Scheduler Information:")
	available := 0
	for _, st := range collectSchedulerStatus() {
		label := st.Type.String()
		if st.Default {
			label += " (default)"
		}
		fmt.Printf("  %s\n", utils.StyleTitle(label))
		fmt.Printf("    Binary:    %s\n", utils.StyleCommand(st.Binary))
		if st.Err != nil {
			fmt.Printf("    Status:    %s\n", utils.StyleError("Not Found"))
			continue
		}
		available++
		fmt.Printf("    Resolved:  %s\n", utils.StylePath(st.Resolved))
		fmt.Printf("    Status:    %s\n", utils.StyleSuccess("Available"))
	}
	fmt.Println()

	if available == 0 {
		utils.PrintWarning("No submission binary found. Use %s to inspect scripts without a scheduler.",
			utils.StyleCommand("jobsubmit render"))
		utils.PrintHint("Set %s or %s if the binaries live outside PATH.",
			utils.StyleName(config.EnvPrefix+"_SBATCH_BIN"), utils.StyleName(config.EnvPrefix+"_BSUB_BIN"))
	}
}
