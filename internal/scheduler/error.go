package scheduler

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrUnknownJobType indicates a job type other than SLURM or LSF
	ErrUnknownJobType = errors.New("unknown job type")

	// ErrJobTypeMismatch indicates a job was handed to a scheduler of another type
	ErrJobTypeMismatch = errors.New("job type does not match scheduler")

	// ErrSchedulerNotFound indicates the submission binary was not found
	ErrSchedulerNotFound = errors.New("scheduler binary not found in PATH")

	// ErrInvalidTimeFormat indicates time format is invalid
	ErrInvalidTimeFormat = errors.New("invalid time format")
)

// ValidationError is returned by JobBuilder.Build when a field holds a value
// the schedulers cannot accept.
type ValidationError struct {
	Field  string // Builder field that failed validation
	Value  any    // Offending value
	Reason string // Why the value was rejected
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// Is allows errors.Is to match ValidationError
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// ScriptCreationError represents an error creating a batch script
type ScriptCreationError struct {
	JobName string // Job name
	Path    string // Script path
	Err     error  // Underlying error
}

func (e *ScriptCreationError) Error() string {
	return fmt.Sprintf("failed to create script for job %s at %s: %v",
		e.JobName, e.Path, e.Err)
}

func (e *ScriptCreationError) Unwrap() error {
	return e.Err
}

// SubmissionError represents an error during job submission.
// ExitCode is -1 when the scheduler binary could not be started.
type SubmissionError struct {
	Scheduler string // Scheduler name
	JobName   string // Job name
	ExitCode  int    // Exit status of the submission binary
	Output    string // Captured stderr of the submission binary
	Err       error  // Underlying error
}

func (e *SubmissionError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s submission failed for job %s (exit %d): %v\nOutput: %s",
			e.Scheduler, e.JobName, e.ExitCode, e.Err, e.Output)
	}
	return fmt.Sprintf("%s submission failed for job %s (exit %d): %v",
		e.Scheduler, e.JobName, e.ExitCode, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, reason string) *ValidationError {
	return &ValidationError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// NewScriptCreationError creates a new ScriptCreationError
func NewScriptCreationError(jobName string, path string, err error) *ScriptCreationError {
	return &ScriptCreationError{
		JobName: jobName,
		Path:    path,
		Err:     err,
	}
}

// NewSubmissionError creates a new SubmissionError
func NewSubmissionError(scheduler string, jobName string, exitCode int, output string, err error) *SubmissionError {
	return &SubmissionError{
		Scheduler: scheduler,
		JobName:   jobName,
		ExitCode:  exitCode,
		Output:    output,
		Err:       err,
	}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsScriptCreationError checks if an error is a ScriptCreationError
func IsScriptCreationError(err error) bool {
	var se *ScriptCreationError
	return errors.As(err, &se)
}

// IsSubmissionError checks if an error is a SubmissionError
func IsSubmissionError(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se)
}
