package scheduler

import (
	"errors"
	"testing"
	"time"
)

func TestParseJobType(t *testing.T) {
	tests := []struct {
		input   string
		want    JobType
		wantErr bool
	}{
		{"SLURM", JobTypeSLURM, false},
		{"slurm", JobTypeSLURM, false},
		{" Slurm ", JobTypeSLURM, false},
		{"LSF", JobTypeLSF, false},
		{"lsf", JobTypeLSF, false},
		{"pbs", JobTypeUnknown, true},
		{"", JobTypeUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseJobType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseJobType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnknownJobType) {
				t.Errorf("ParseJobType(%q) error = %v; want ErrUnknownJobType", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseJobType(%q) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTimeLimitNormalizeAndFormat(t *testing.T) {
	tests := []struct {
		hours, minutes int
		wantSlurm      string
		wantLsf        string
	}{
		{1, 90, "2:30:00", "2:30"},
		{0, 5, "0:5:00", "0:5"},
		{0, 60, "1:0:00", "1:0"},
		{0, 10, "0:10:00", "0:10"},
		{48, 0, "48:0:00", "48:0"},
		{0, 125, "2:5:00", "2:5"},
	}

	for _, tt := range tests {
		tl := NewTimeLimit(tt.hours, tt.minutes)
		if tl.Minutes >= 60 {
			t.Errorf("NewTimeLimit(%d, %d) minutes not normalized: %+v", tt.hours, tt.minutes, tl)
		}
		if got := tl.Format(JobTypeSLURM); got != tt.wantSlurm {
			t.Errorf("(%d, %d) SLURM format = %q; want %q", tt.hours, tt.minutes, got, tt.wantSlurm)
		}
		if got := tl.Format(JobTypeLSF); got != tt.wantLsf {
			t.Errorf("(%d, %d) LSF format = %q; want %q", tt.hours, tt.minutes, got, tt.wantLsf)
		}
	}

	if d := NewTimeLimit(1, 90).Duration(); d != 150*time.Minute {
		t.Errorf("Duration = %v; want 2h30m", d)
	}
}

func TestParseTimeLimit(t *testing.T) {
	tests := []struct {
		input   string
		want    TimeLimit
		wantErr bool
	}{
		{"1:30", TimeLimit{1, 30}, false},
		{"0:90", TimeLimit{1, 30}, false},
		{"45", TimeLimit{0, 45}, false},
		{" 2:00 ", TimeLimit{2, 0}, false},
		{"1:2:3", TimeLimit{}, true},
		{"abc", TimeLimit{}, true},
		{"1:-5", TimeLimit{}, true},
		{"", TimeLimit{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeLimit(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeLimit(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTimeFormat) {
				t.Errorf("error = %v; want ErrInvalidTimeFormat", err)
			}
			if got != tt.want {
				t.Errorf("ParseTimeLimit(%q) = %+v; want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuilderDefaults(t *testing.T) {
	job, err := NewJobBuilder(JobTypeSLURM, "run.sh").SetCommand("./app", 1).Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if job.TimeLimit() != DefaultTimeLimit {
		t.Errorf("time limit = %+v; want %+v", job.TimeLimit(), DefaultTimeLimit)
	}
	if job.TaskCount() != 1 || job.NodeCount() != 1 || job.ProcsPerNode() != 1 || job.CpusPerTask() != 1 {
		t.Errorf("resource defaults = %d/%d/%d/%d", job.TaskCount(), job.NodeCount(), job.ProcsPerNode(), job.CpusPerTask())
	}
	if job.Repetitions() != 1 {
		t.Errorf("repetitions = %d; want 1", job.Repetitions())
	}
	if job.CommandScriptPath() != "run.sh.cmd" {
		t.Errorf("command script = %q; want run.sh.cmd", job.CommandScriptPath())
	}
	if job.MemPerTaskMB() != 0 || job.QoS() != "" || len(job.Env()) != 0 {
		t.Error("optional fields should be unset by default")
	}
}

func TestBuildValidation(t *testing.T) {
	base := func() *JobBuilder {
		return NewJobBuilder(JobTypeSLURM, "run.sh").SetCommand("./app", 1)
	}

	tests := []struct {
		name    string
		builder *JobBuilder
		field   string
	}{
		{"empty runscript", NewJobBuilder(JobTypeSLURM, "").SetCommand("./app", 1), "runscript"},
		{"no command", NewJobBuilder(JobTypeSLURM, "run.sh"), "command"},
		{"zero tasks", base().SetTaskCount(0), "ntasks"},
		{"negative nodes", base().SetNodeCount(-1), "nodes"},
		{"zero procs per node", base().SetProcsPerNode(0), "procs-per-node"},
		{"zero cpus per task", base().SetCpusPerTask(0), "cpus-per-task"},
		{"zero repetitions", base().SetCommand("./app", 0), "repetitions"},
		{"negative memory", base().SetMemPerTask(-1), "mem-per-task"},
		{"zero time", base().SetTimeLimit(0, 0), "time"},
		{"negative time", base().SetTimeLimit(-1, 0), "time"},
		{"bad env name", base().SetEnv("1BAD", "x"), "env"},
		{"env name with dash", base().SetEnv("MY-VAR", "x"), "env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error = %v; want *ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q; want %q", ve.Field, tt.field)
			}
			if !IsValidationError(err) {
				t.Error("IsValidationError = false")
			}
		})
	}
}

func TestBuildUnknownType(t *testing.T) {
	_, err := NewJobBuilder(JobTypeUnknown, "run.sh").SetCommand("./app", 1).Build()
	if !errors.Is(err, ErrUnknownJobType) {
		t.Errorf("Build error = %v; want ErrUnknownJobType", err)
	}
}

func TestBuiltJobIsImmutable(t *testing.T) {
	args := []string{"--in", "a.dat"}
	load := []string{"gcc"}
	b := NewJobBuilder(JobTypeLSF, "run.sh").
		SetCommand("./app", 1).
		SetArgs(args).
		SetModules(load, nil).
		SetEnv("A", "1")

	job, err := b.Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	// caller slices, builder and accessor results must not reach the job
	args[0] = "--out"
	load[0] = "intel"
	b.SetEnv("B", "2").SetJobName("later").SetArgs([]string{"x"})
	job.Args()[1] = "mutated"
	job.Env()["C"] = "3"

	if got := job.Args(); got[0] != "--in" || got[1] != "a.dat" {
		t.Errorf("args = %v", got)
	}
	if got := job.ModulesToLoad(); got[0] != "gcc" {
		t.Errorf("modules = %v", got)
	}
	if env := job.Env(); len(env) != 1 || env["A"] != "1" {
		t.Errorf("env = %v", env)
	}
	if job.Name() != "" {
		t.Errorf("name = %q; want empty", job.Name())
	}
	if job.Type() != JobTypeLSF {
		t.Errorf("type = %s", job.Type())
	}
}

func TestJobTypeString(t *testing.T) {
	if JobTypeUnknown.String() != "unknown" || JobTypeSLURM.String() != "SLURM" {
		t.Errorf("String() = %q, %q", JobTypeUnknown.String(), JobTypeSLURM.String())
	}
	if JobTypeUnknown.Valid() || !JobTypeLSF.Valid() {
		t.Error("Valid() mismatch")
	}
}
