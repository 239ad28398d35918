package scheduler

import (
	"maps"
	"regexp"
	"slices"
)

var envNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// JobBuilder accumulates job settings. The job type and runscript path are
// fixed when the builder is created; everything else can be set in any order
// before Build.
type JobBuilder struct {
	job Job
}

// NewJobBuilder returns a builder populated with the default job settings:
// 10 minute limit, one task on one node, one CPU per task and a single repetition.
func NewJobBuilder(jobType JobType, runscriptPath string) *JobBuilder {
	return &JobBuilder{
		job: Job{
			jobType:       jobType,
			runscriptPath: runscriptPath,
			timeLimit:     DefaultTimeLimit,
			stdout:        OutputTarget{Path: DefaultStdout},
			stderr:        OutputTarget{Path: DefaultStderr},
			taskCount:     1,
			nodeCount:     1,
			procsPerNode:  1,
			cpusPerTask:   1,
			env:           make(map[string]string),
			repetitions:   1,
		},
	}
}

// Type returns the job type the builder was created with
func (b *JobBuilder) Type() JobType { return b.job.jobType }

func (b *JobBuilder) SetJobName(name string) *JobBuilder {
	b.job.name = name
	return b
}

func (b *JobBuilder) SetQueue(queue string) *JobBuilder {
	b.job.queue = queue
	return b
}

func (b *JobBuilder) SetQoS(qos string) *JobBuilder {
	b.job.qos = qos
	return b
}

func (b *JobBuilder) SetWorkingDir(dir string) *JobBuilder {
	b.job.workingDir = dir
	return b
}

// SetTimeLimit sets the wall-clock limit. Minutes of 60 or more carry into hours.
func (b *JobBuilder) SetTimeLimit(hours, minutes int) *JobBuilder {
	b.job.timeLimit = NewTimeLimit(hours, minutes)
	return b
}

// SetStdout sets the stdout target. replace truncates instead of appending.
func (b *JobBuilder) SetStdout(path string, replace bool) *JobBuilder {
	b.job.stdout = OutputTarget{Path: path, Replace: replace}
	return b
}

// SetStderr sets the stderr target. replace truncates instead of appending.
func (b *JobBuilder) SetStderr(path string, replace bool) *JobBuilder {
	b.job.stderr = OutputTarget{Path: path, Replace: replace}
	return b
}

// SetTaskCount sets the number of tasks. For MPI jobs this is the number of
// ranks; for sequential jobs it is the number of cores.
func (b *JobBuilder) SetTaskCount(n int) *JobBuilder {
	b.job.taskCount = n
	return b
}

func (b *JobBuilder) SetNodeCount(n int) *JobBuilder {
	b.job.nodeCount = n
	return b
}

// SetMemPerTask sets the memory limit per task in MB. Zero leaves it unset.
func (b *JobBuilder) SetMemPerTask(mb int) *JobBuilder {
	b.job.memPerTaskMB = mb
	return b
}

func (b *JobBuilder) SetProcsPerNode(n int) *JobBuilder {
	b.job.procsPerNode = n
	return b
}

func (b *JobBuilder) SetCpusPerTask(n int) *JobBuilder {
	b.job.cpusPerTask = n
	return b
}

// SetModules replaces the environment modules to load and unload.
func (b *JobBuilder) SetModules(load, unload []string) *JobBuilder {
	b.job.modulesLoad = slices.Clone(load)
	b.job.modulesUnload = slices.Clone(unload)
	return b
}

// SetEnv adds or overwrites one exported environment variable.
func (b *JobBuilder) SetEnv(name, value string) *JobBuilder {
	b.job.env[name] = value
	return b
}

// SetCommand sets the executable and how many times it is run in the job.
func (b *JobBuilder) SetCommand(executable string, repetitions int) *JobBuilder {
	b.job.executable = executable
	b.job.repetitions = repetitions
	return b
}

func (b *JobBuilder) SetArgs(args []string) *JobBuilder {
	b.job.args = slices.Clone(args)
	return b
}

// Build validates the accumulated settings and returns an immutable Job.
// The builder can keep being used afterwards without affecting the result.
func (b *JobBuilder) Build() (*Job, error) {
	j := b.job

	if !j.jobType.Valid() {
		return nil, ErrUnknownJobType
	}
	if j.runscriptPath == "" {
		return nil, NewValidationError("runscript", j.runscriptPath, "path must not be empty")
	}
	if j.executable == "" {
		return nil, NewValidationError("command", j.executable, "executable must not be empty")
	}

	positive := []struct {
		field string
		value int
	}{
		{"ntasks", j.taskCount},
		{"nodes", j.nodeCount},
		{"procs-per-node", j.procsPerNode},
		{"cpus-per-task", j.cpusPerTask},
		{"repetitions", j.repetitions},
	}
	for _, p := range positive {
		if p.value < 1 {
			return nil, NewValidationError(p.field, p.value, "must be a positive integer")
		}
	}
	if j.memPerTaskMB < 0 {
		return nil, NewValidationError("mem-per-task", j.memPerTaskMB, "must not be negative")
	}

	tl := j.timeLimit
	if tl.Hours < 0 || tl.Minutes < 0 {
		return nil, NewValidationError("time", tl.lsfFormat(), "must not be negative")
	}
	if tl.Duration() == 0 {
		return nil, NewValidationError("time", tl.lsfFormat(), "must be greater than zero")
	}

	for name := range j.env {
		if !envNameRe.MatchString(name) {
			return nil, NewValidationError("env", name, "not a valid shell variable name")
		}
	}

	j.modulesLoad = slices.Clone(j.modulesLoad)
	j.modulesUnload = slices.Clone(j.modulesUnload)
	j.args = slices.Clone(j.args)
	j.env = maps.Clone(j.env)
	return &j, nil
}
