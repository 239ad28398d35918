package scheduler

import (
	"bytes"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/hpcjobs/jobsubmit/internal/utils"
)

// runSubmission runs the submission binary with args and optional stdin,
// capturing its output and exit status.
func runSubmission(job *Job, bin string, args []string, stdin io.Reader, scripts *Scripts) (*SubmitResult, error) {
	result := &SubmitResult{
		SubmissionID: ksuid.New().String(),
		Scheduler:    job.jobType,
		JobName:      job.name,
		Scripts:      *scripts,
		Command:      append([]string{bin}, args...),
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(bin, args...)
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	utils.PrintDebug("Running: %s", utils.StyleCommand(strings.Join(result.Command, " ")))
	result.StartedAt = time.Now()
	err := cmd.Run()
	result.Duration = time.Since(result.StartedAt)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
		return result, NewSubmissionError(job.jobType.String(), job.name, result.ExitCode,
			strings.TrimSpace(result.Stderr), err)
	}
	return result, nil
}
