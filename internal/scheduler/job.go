package scheduler

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

// JobType represents the scheduler a job is rendered for
type JobType string

const (
	JobTypeUnknown JobType = ""
	JobTypeSLURM   JobType = "SLURM"
	JobTypeLSF     JobType = "LSF"
)

// CommandScriptSuffix is appended to the runscript path to name the SLURM directive script
const CommandScriptSuffix = ".cmd"

// Default stdout/stderr targets. %j is expanded by SLURM to the job ID.
const (
	DefaultStdout = "slurm_job_%j.out"
	DefaultStderr = "slurm_job_%j.err"
)

// DefaultTimeLimit is used when SetTimeLimit is never called
var DefaultTimeLimit = TimeLimit{Hours: 0, Minutes: 10}

// ParseJobType converts a user-supplied scheduler name to a JobType.
// Matching is case-insensitive.
func ParseJobType(s string) (JobType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(JobTypeSLURM):
		return JobTypeSLURM, nil
	case string(JobTypeLSF):
		return JobTypeLSF, nil
	default:
		return JobTypeUnknown, fmt.Errorf("%w: %q", ErrUnknownJobType, s)
	}
}

// Valid reports whether t is one of the supported schedulers
func (t JobType) Valid() bool {
	return t == JobTypeSLURM || t == JobTypeLSF
}

func (t JobType) String() string {
	if t == JobTypeUnknown {
		return "unknown"
	}
	return string(t)
}

// TimeLimit is a wall-clock limit. Minutes is always below 60 once normalized.
type TimeLimit struct {
	Hours   int
	Minutes int
}

// NewTimeLimit carries whole hours out of minutes: (1, 90) -> 2h30m.
func NewTimeLimit(hours, minutes int) TimeLimit {
	return TimeLimit{
		Hours:   hours + minutes/60,
		Minutes: minutes % 60,
	}
}

// ParseTimeLimit parses "H:M" or a plain minute count.
func ParseTimeLimit(s string) (TimeLimit, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	var hours, minutes int
	var err error
	switch len(parts) {
	case 1:
		minutes, err = strconv.Atoi(parts[0])
	case 2:
		hours, err = strconv.Atoi(parts[0])
		if err == nil {
			minutes, err = strconv.Atoi(parts[1])
		}
	default:
		return TimeLimit{}, fmt.Errorf("%w: %s", ErrInvalidTimeFormat, s)
	}
	if err != nil || hours < 0 || minutes < 0 {
		return TimeLimit{}, fmt.Errorf("%w: %s", ErrInvalidTimeFormat, s)
	}
	return NewTimeLimit(hours, minutes), nil
}

// Duration returns the limit as a time.Duration
func (t TimeLimit) Duration() time.Duration {
	return time.Duration(t.Hours)*time.Hour + time.Duration(t.Minutes)*time.Minute
}

// slurmFormat renders H:M:S, the format sbatch --time accepts
func (t TimeLimit) slurmFormat() string {
	return fmt.Sprintf("%d:%d:00", t.Hours, t.Minutes)
}

// lsfFormat renders H:M, the format bsub -W accepts
func (t TimeLimit) lsfFormat() string {
	return fmt.Sprintf("%d:%d", t.Hours, t.Minutes)
}

// Format renders the limit the way the given scheduler expects it
func (t TimeLimit) Format(jobType JobType) string {
	if jobType == JobTypeLSF {
		return t.lsfFormat()
	}
	return t.slurmFormat()
}

// OutputTarget is a stdout or stderr redirection for the job.
// Replace truncates an existing file instead of appending to it.
type OutputTarget struct {
	Path    string
	Replace bool
}

// Job is a fully configured, immutable batch job. Use JobBuilder to create one.
type Job struct {
	jobType       JobType
	runscriptPath string

	name       string
	queue      string
	qos        string
	workingDir string
	timeLimit  TimeLimit
	stdout     OutputTarget
	stderr     OutputTarget

	taskCount    int
	nodeCount    int
	memPerTaskMB int
	procsPerNode int
	cpusPerTask  int

	modulesLoad   []string
	modulesUnload []string
	env           map[string]string

	executable  string
	args        []string
	repetitions int
}

// Type returns the scheduler the job was built for
func (j *Job) Type() JobType { return j.jobType }

// RunscriptPath returns the wrapper script path
func (j *Job) RunscriptPath() string { return j.runscriptPath }

// CommandScriptPath returns the SLURM directive script path (runscript + ".cmd")
func (j *Job) CommandScriptPath() string { return j.runscriptPath + CommandScriptSuffix }

func (j *Job) Name() string { return j.name }
func (j *Job) Queue() string { return j.queue }
func (j *Job) QoS() string { return j.qos }
func (j *Job) WorkingDir() string { return j.workingDir }
func (j *Job) TimeLimit() TimeLimit { return j.timeLimit }
func (j *Job) Stdout() OutputTarget { return j.stdout }
func (j *Job) Stderr() OutputTarget { return j.stderr }
func (j *Job) TaskCount() int { return j.taskCount }
func (j *Job) NodeCount() int { return j.nodeCount }
func (j *Job) MemPerTaskMB() int { return j.memPerTaskMB }
func (j *Job) ProcsPerNode() int { return j.procsPerNode }
func (j *Job) CpusPerTask() int { return j.cpusPerTask }
func (j *Job) Executable() string { return j.executable }
func (j *Job) Repetitions() int { return j.repetitions }
func (j *Job) ModulesToLoad() []string { return slices.Clone(j.modulesLoad) }

func (j *Job) ModulesToUnload() []string { return slices.Clone(j.modulesUnload) }

// Args returns a copy of the executable's arguments
func (j *Job) Args() []string { return slices.Clone(j.args) }

// Env returns a copy of the job environment
func (j *Job) Env() map[string]string { return maps.Clone(j.env) }

// envNames returns the environment variable names in a stable order
func (j *Job) envNames() []string {
	return slices.Sorted(maps.Keys(j.env))
}

// commandLine is the executable followed by its arguments, each token
// followed by a single space.
func (j *Job) commandLine() string {
	var b strings.Builder
	b.WriteString(j.executable)
	b.WriteString(" ")
	for _, arg := range j.args {
		b.WriteString(arg)
		b.WriteString(" ")
	}
	return b.String()
}
