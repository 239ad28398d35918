package scheduler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpcjobs/jobsubmit/internal/config"
)

// fakeBinary writes an executable shell script standing in for sbatch or bsub
func fakeBinary(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("Failed to write fake %s: %v", name, err)
	}
	return path
}

func TestNewScheduler(t *testing.T) {
	tests := []struct {
		jobType JobType
		binary  string
		wantBin string
	}{
		{JobTypeSLURM, "", "sbatch"},
		{JobTypeSLURM, "/opt/slurm/bin/sbatch", "/opt/slurm/bin/sbatch"},
		{JobTypeLSF, "", "bsub"},
		{JobTypeLSF, "/lsf/bin/bsub", "/lsf/bin/bsub"},
	}

	for _, tt := range tests {
		sched, err := NewScheduler(tt.jobType, tt.binary)
		if err != nil {
			t.Fatalf("NewScheduler(%s) error: %v", tt.jobType, err)
		}
		if sched.Type() != tt.jobType {
			t.Errorf("Type() = %s; want %s", sched.Type(), tt.jobType)
		}
		if sched.Binary() != tt.wantBin {
			t.Errorf("Binary() = %s; want %s", sched.Binary(), tt.wantBin)
		}
	}

	if _, err := NewScheduler(JobType("PBS"), ""); !errors.Is(err, ErrUnknownJobType) {
		t.Errorf("NewScheduler(PBS) error = %v; want ErrUnknownJobType", err)
	}
}

func TestSlurmSubmit(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	sbatch := fakeBinary(t, dir, "sbatch", `printf '%s\n' "$@" > `+argsFile+`
echo "Submitted batch job 42"`)

	run := filepath.Join(dir, "run.sh")
	job := buildJob(t, NewJobBuilder(JobTypeSLURM, run).SetJobName("t").SetCommand("./app", 1))

	res, err := NewSlurmSchedulerWithBinary(sbatch).Submit(job)
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if !res.Success() || res.ExitCode != 0 {
		t.Errorf("exit code = %d", res.ExitCode)
	}
	if res.Stdout != "Submitted batch job 42\n" {
		t.Errorf("stdout = %q", res.Stdout)
	}
	if res.SubmissionID == "" {
		t.Error("missing submission ID")
	}
	if res.Scheduler != JobTypeSLURM || res.JobName != "t" {
		t.Errorf("result = %+v", res)
	}
	if len(res.Command) != 2 || res.Command[0] != sbatch || res.Command[1] != run+".cmd" {
		t.Errorf("command = %v", res.Command)
	}

	// the directive script is the sole argument
	if got := readFile(t, argsFile); got != run+".cmd\n" {
		t.Errorf("sbatch args = %q; want %q", got, run+".cmd\n")
	}
}

func TestLsfSubmitPipesScript(t *testing.T) {
	dir := t.TempDir()
	stdinFile := filepath.Join(dir, "stdin")
	argsFile := filepath.Join(dir, "args")
	bsub := fakeBinary(t, dir, "bsub", `echo "$#" > `+argsFile+`
cat > `+stdinFile+`
echo "Job <7> is submitted to default queue <normal>."`)

	run := filepath.Join(dir, "run.sh")
	job := buildJob(t, NewJobBuilder(JobTypeLSF, run).SetJobName("l").SetCommand("hostname", 1))

	res, err := NewLsfSchedulerWithBinary(bsub).Submit(job)
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if !strings.Contains(res.Stdout, "Job <7>") {
		t.Errorf("stdout = %q", res.Stdout)
	}
	if got := readFile(t, argsFile); got != "0\n" {
		t.Errorf("bsub received %q arguments; want none", strings.TrimSpace(got))
	}
	if got, want := readFile(t, stdinFile), readFile(t, run); got != want {
		t.Errorf("bsub stdin mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestSubmitNonZeroExit(t *testing.T) {
	dir := t.TempDir()
	sbatch := fakeBinary(t, dir, "sbatch", `echo "sbatch: error: invalid partition" >&2
exit 3`)

	job := buildJob(t, NewJobBuilder(JobTypeSLURM, filepath.Join(dir, "run.sh")).SetJobName("bad").SetCommand("true", 1))
	res, err := NewSlurmSchedulerWithBinary(sbatch).Submit(job)
	if err == nil {
		t.Fatal("expected submission error")
	}
	if res == nil || res.ExitCode != 3 || res.Success() {
		t.Fatalf("result = %+v; want exit code 3", res)
	}

	var se *SubmissionError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v; want *SubmissionError", err)
	}
	if se.ExitCode != 3 || se.JobName != "bad" || se.Scheduler != "SLURM" {
		t.Errorf("SubmissionError = %+v", se)
	}
	if se.Output != "sbatch: error: invalid partition" {
		t.Errorf("Output = %q", se.Output)
	}
	if !IsSubmissionError(err) {
		t.Error("IsSubmissionError = false")
	}
}

func TestSubmitMissingBinary(t *testing.T) {
	dir := t.TempDir()
	job := buildJob(t, NewJobBuilder(JobTypeLSF, filepath.Join(dir, "run.sh")).SetCommand("true", 1))

	res, err := NewLsfSchedulerWithBinary(filepath.Join(dir, "no-bsub")).Submit(job)
	if !IsSubmissionError(err) {
		t.Fatalf("error = %v; want SubmissionError", err)
	}
	if res.ExitCode != -1 {
		t.Errorf("exit code = %d; want -1", res.ExitCode)
	}
	// scripts are still rendered before the failed dispatch
	if _, statErr := os.Stat(res.Scripts.Runscript); statErr != nil {
		t.Errorf("script not written: %v", statErr)
	}
}

func TestSubmitUsesConfiguredBinary(t *testing.T) {
	config.LoadDefaults()
	t.Cleanup(config.LoadDefaults)

	dir := t.TempDir()
	config.Global.SbatchBin = fakeBinary(t, dir, "sbatch", `echo ok`)

	job := buildJob(t, NewJobBuilder(JobTypeSLURM, filepath.Join(dir, "run.sh")).SetCommand("true", 1))
	res, err := Submit(job)
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if res.Command[0] != config.Global.SbatchBin {
		t.Errorf("binary = %s; want %s", res.Command[0], config.Global.SbatchBin)
	}

	scripts, err := Render(job)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if scripts.CommandScript != job.CommandScriptPath() {
		t.Errorf("Render scripts = %+v", scripts)
	}
}

func TestLookupBinary(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PATH", dir)
	fakeBinary(t, dir, "sbatch", "true")

	path, err := LookupBinary(NewSlurmScheduler())
	if err != nil {
		t.Fatalf("LookupBinary(sbatch) error: %v", err)
	}
	if path != filepath.Join(dir, "sbatch") {
		t.Errorf("path = %s", path)
	}

	if _, err := LookupBinary(NewLsfScheduler()); !errors.Is(err, ErrSchedulerNotFound) {
		t.Errorf("LookupBinary(bsub) error = %v; want ErrSchedulerNotFound", err)
	}
}
