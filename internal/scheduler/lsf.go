package scheduler

import (
	"fmt"
	"io"
	"os"

	"github.com/hpcjobs/jobsubmit/internal/utils"
)

// LsfScheduler renders a single #BSUB script and pipes it into bsub.
type LsfScheduler struct {
	bsubBin string
}

// NewLsfScheduler creates an LSF scheduler that runs bsub from PATH
func NewLsfScheduler() *LsfScheduler {
	return NewLsfSchedulerWithBinary("")
}

// NewLsfSchedulerWithBinary creates an LSF scheduler using an explicit bsub path
func NewLsfSchedulerWithBinary(bsubBin string) *LsfScheduler {
	if bsubBin == "" {
		bsubBin = "bsub"
	}
	return &LsfScheduler{bsubBin: bsubBin}
}

func (l *LsfScheduler) Type() JobType { return JobTypeLSF }
func (l *LsfScheduler) Binary() string { return l.bsubBin }

// RenderScripts writes the combined directive + environment + command script
// to the runscript path. LSF jobs have no separate command script.
func (l *LsfScheduler) RenderScripts(job *Job) (*Scripts, error) {
	if job.jobType != JobTypeLSF {
		return nil, fmt.Errorf("%w: %s job on LSF", ErrJobTypeMismatch, job.jobType)
	}

	if err := writeScriptFile(job, job.runscriptPath, func(w io.Writer) {
		l.writeScript(w, job)
	}); err != nil {
		return nil, err
	}
	if err := makeExecutable(job, job.runscriptPath); err != nil {
		return nil, err
	}

	utils.PrintDebug("LSF script written: %s", utils.StylePath(job.runscriptPath))
	return &Scripts{Runscript: job.runscriptPath}, nil
}

func (l *LsfScheduler) writeScript(w io.Writer, job *Job) {
	fmt.Fprint(w, shebang)
	fmt.Fprint(w, "#LSF configuration\n")
	writeDirective(w, "#BSUB -J %s", job.name)
	writeDirective(w, "#BSUB -q %s", job.queue)
	writeDirective(w, "#BSUB -cwd %s", job.workingDir)
	writeDirective(w, "#BSUB -W %s", job.timeLimit.lsfFormat())
	writeDirective(w, "#BSUB -n %d", job.taskCount)
	writeDirective(w, "#BSUB -M %d", job.memPerTaskMB)
	writeDirective(w, `#BSUB -R "span[ptile=%d]"`, job.procsPerNode)
	if job.stdout.Replace {
		writeDirective(w, "#BSUB -oo %s", job.stdout.Path)
	} else {
		writeDirective(w, "#BSUB -o %s", job.stdout.Path)
	}
	if job.stderr.Replace {
		writeDirective(w, "#BSUB -eo %s", job.stderr.Path)
	} else {
		writeDirective(w, "#BSUB -e %s", job.stderr.Path)
	}

	fmt.Fprint(w, "\n#Job environment\n")
	writeEnvironment(w, job)

	fmt.Fprint(w, "\n#Job command\n")
	writeCommands(w, job, "mpirun", "")
}

// Submit renders the script and feeds it to bsub on standard input.
func (l *LsfScheduler) Submit(job *Job) (*SubmitResult, error) {
	scripts, err := l.RenderScripts(job)
	if err != nil {
		return nil, err
	}

	script, err := os.Open(scripts.Runscript)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s for bsub: %w", scripts.Runscript, err)
	}
	defer script.Close()

	return runSubmission(job, l.bsubBin, nil, script, scripts)
}
