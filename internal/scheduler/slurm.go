package scheduler

import (
	"fmt"
	"io"

	"github.com/hpcjobs/jobsubmit/internal/utils"
)

// SlurmScheduler renders a wrapper script plus an #SBATCH directive script
// and submits the latter with sbatch.
type SlurmScheduler struct {
	sbatchBin string
}

// NewSlurmScheduler creates a SLURM scheduler that runs sbatch from PATH
func NewSlurmScheduler() *SlurmScheduler {
	return NewSlurmSchedulerWithBinary("")
}

// NewSlurmSchedulerWithBinary creates a SLURM scheduler using an explicit sbatch path
func NewSlurmSchedulerWithBinary(sbatchBin string) *SlurmScheduler {
	if sbatchBin == "" {
		sbatchBin = "sbatch"
	}
	return &SlurmScheduler{sbatchBin: sbatchBin}
}

func (s *SlurmScheduler) Type() JobType { return JobTypeSLURM }
func (s *SlurmScheduler) Binary() string { return s.sbatchBin }

// RenderScripts writes the wrapper (runscript) and the directive script
// (runscript + ".cmd"). The wrapper sets up the environment and runs "$@";
// the directive script calls the wrapper once per repetition.
func (s *SlurmScheduler) RenderScripts(job *Job) (*Scripts, error) {
	if job.jobType != JobTypeSLURM {
		return nil, fmt.Errorf("%w: %s job on SLURM", ErrJobTypeMismatch, job.jobType)
	}

	if err := writeScriptFile(job, job.runscriptPath, func(w io.Writer) {
		s.writeWrapper(w, job)
	}); err != nil {
		return nil, err
	}
	if err := makeExecutable(job, job.runscriptPath); err != nil {
		return nil, err
	}

	cmdPath := job.CommandScriptPath()
	if err := writeScriptFile(job, cmdPath, func(w io.Writer) {
		s.writeDirectiveScript(w, job)
	}); err != nil {
		return nil, err
	}

	utils.PrintDebug("SLURM scripts written: %s, %s", utils.StylePath(job.runscriptPath), utils.StylePath(cmdPath))
	return &Scripts{
		Runscript:     job.runscriptPath,
		CommandScript: cmdPath,
	}, nil
}

func (s *SlurmScheduler) writeWrapper(w io.Writer, job *Job) {
	fmt.Fprint(w, shebang)
	fmt.Fprint(w, "\n#Job environment\n")
	writeEnvironment(w, job)
	fmt.Fprint(w, "$@")
}

// writeDirectiveScript emits #SBATCH directives in a fixed order.
// When queue is "debug" and a QoS is also set, both --qos lines are written;
// sbatch keeps the last one, so the explicit QoS wins.
func (s *SlurmScheduler) writeDirectiveScript(w io.Writer, job *Job) {
	fmt.Fprint(w, shebang)
	fmt.Fprint(w, "# SLURM configuration\n")
	writeDirective(w, "#SBATCH --job-name=%s", job.name)
	writeDirective(w, "#SBATCH --workdir=%s", job.workingDir)
	writeDirective(w, "#SBATCH --time=%s", job.timeLimit.slurmFormat())
	writeDirective(w, "#SBATCH --ntasks=%d", job.taskCount)
	writeDirective(w, "#SBATCH --nodes=%d", job.nodeCount)
	writeDirective(w, "#SBATCH --cpus-per-task=%d", job.cpusPerTask)
	writeDirective(w, "#SBATCH --output=%s", job.stdout.Path)
	writeDirective(w, "#SBATCH --error=%s", job.stderr.Path)
	if job.queue == "debug" {
		writeDirective(w, "#SBATCH --qos=%s", "debug")
	}
	if job.stdout.Replace || job.stderr.Replace {
		writeDirective(w, "#SBATCH --open-mode=%s", "truncate")
	} else {
		writeDirective(w, "#SBATCH --open-mode=%s", "append")
	}
	writeDirective(w, "#SBATCH --qos=%s", job.qos)

	fmt.Fprint(w, "#Job command\n")
	writeCommands(w, job, "srun", job.runscriptPath)
}

// Submit renders the scripts and runs sbatch on the directive script.
func (s *SlurmScheduler) Submit(job *Job) (*SubmitResult, error) {
	scripts, err := s.RenderScripts(job)
	if err != nil {
		return nil, err
	}

	return runSubmission(job, s.sbatchBin, []string{scripts.CommandScript}, nil, scripts)
}
