// Package scheduler renders SLURM and LSF batch scripts from a Job and
// submits them with sbatch or bsub.
package scheduler

import (
	"fmt"
	"os/exec"
	"time"

	"github.com/hpcjobs/jobsubmit/internal/config"
)

// Scripts lists the files written for a job.
// CommandScript is empty for LSF, which uses a single script.
type Scripts struct {
	Runscript     string
	CommandScript string
}

// SubmitScript returns the script handed to the scheduler binary
func (s *Scripts) SubmitScript() string {
	if s.CommandScript != "" {
		return s.CommandScript
	}
	return s.Runscript
}

// SubmitResult records one invocation of the submission binary.
// The scheduler's output is kept verbatim and not interpreted.
type SubmitResult struct {
	SubmissionID string        // Local ID for this submission (KSUID)
	Scheduler    JobType       // Scheduler the job was submitted to
	JobName      string        // Job name (may be empty)
	Scripts      Scripts       // Files written before submission
	Command      []string      // argv of the submission binary
	ExitCode     int           // Exit status; -1 if the binary could not be run
	Stdout       string        // Captured standard output
	Stderr       string        // Captured standard error
	StartedAt    time.Time     // When the binary was started
	Duration     time.Duration // How long the binary ran
}

// Success reports whether the submission binary exited with status 0
func (r *SubmitResult) Success() bool {
	return r.ExitCode == 0
}

// Scheduler renders and submits jobs for one scheduler type
type Scheduler interface {
	// Type returns the job type this scheduler accepts
	Type() JobType

	// Binary returns the submission binary (sbatch or bsub)
	Binary() string

	// RenderScripts writes the job's scripts to disk
	RenderScripts(job *Job) (*Scripts, error)

	// Submit renders the job's scripts and hands them to the submission binary.
	// On a non-zero exit the result is returned together with a *SubmissionError.
	Submit(job *Job) (*SubmitResult, error)
}

// NewScheduler returns the scheduler for jobType. An empty binary selects the
// default name (sbatch or bsub) resolved through PATH at submission time.
func NewScheduler(jobType JobType, binary string) (Scheduler, error) {
	switch jobType {
	case JobTypeSLURM:
		return NewSlurmSchedulerWithBinary(binary), nil
	case JobTypeLSF:
		return NewLsfSchedulerWithBinary(binary), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownJobType, string(jobType))
	}
}

// ConfiguredBinary returns the submission binary configured for jobType
func ConfiguredBinary(jobType JobType) string {
	switch jobType {
	case JobTypeSLURM:
		return config.Global.SbatchBin
	case JobTypeLSF:
		return config.Global.BsubBin
	default:
		return ""
	}
}

// ForJob returns the scheduler matching the job's type, using the configured binaries
func ForJob(job *Job) (Scheduler, error) {
	return NewScheduler(job.Type(), ConfiguredBinary(job.Type()))
}

// Render writes the job's scripts using the matching scheduler
func Render(job *Job) (*Scripts, error) {
	sched, err := ForJob(job)
	if err != nil {
		return nil, err
	}
	return sched.RenderScripts(job)
}

// Submit renders and submits the job using the matching scheduler
func Submit(job *Job) (*SubmitResult, error) {
	sched, err := ForJob(job)
	if err != nil {
		return nil, err
	}
	return sched.Submit(job)
}

// LookupBinary resolves a scheduler's submission binary through PATH.
func LookupBinary(sched Scheduler) (string, error) {
	path, err := exec.LookPath(sched.Binary())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSchedulerNotFound, err)
	}
	return path, nil
}
