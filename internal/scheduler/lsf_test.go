package scheduler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLsfScript(t *testing.T) {
	run := filepath.Join(t.TempDir(), "run.sh")
	job := buildJob(t, NewJobBuilder(JobTypeLSF, run).
		SetJobName("heat").
		SetQueue("normal").
		SetWorkingDir("/scratch/heat").
		SetTimeLimit(1, 90).
		SetTaskCount(4).
		SetMemPerTask(2048).
		SetProcsPerNode(2).
		SetStdout("out.log", true).
		SetStderr("err.log", false).
		SetModules([]string{"openmpi"}, nil).
		SetEnv("OMP_NUM_THREADS", "1").
		SetCommand("./heat", 2).
		SetArgs([]string{"-n", "10"}))

	scripts, err := NewLsfScheduler().RenderScripts(job)
	if err != nil {
		t.Fatalf("RenderScripts error: %v", err)
	}
	if scripts.Runscript != run || scripts.CommandScript != "" {
		t.Errorf("scripts = %+v", scripts)
	}
	if scripts.SubmitScript() != run {
		t.Errorf("SubmitScript = %s; want %s", scripts.SubmitScript(), run)
	}

	want := "#!/bin/bash\n\n" +
		"#LSF configuration\n" +
		"#BSUB -J heat\n" +
		"#BSUB -q normal\n" +
		"#BSUB -cwd /scratch/heat\n" +
		"#BSUB -W 2:30\n" +
		"#BSUB -n 4\n" +
		"#BSUB -M 2048\n" +
		"#BSUB -R \"span[ptile=2]\"\n" +
		"#BSUB -oo out.log\n" +
		"#BSUB -e err.log\n" +
		"\n#Job environment\n" +
		"module load openmpi\n" +
		"export OMP_NUM_THREADS=1\n" +
		"\n#Job command\n" +
		"mpirun ./heat -n 10 \n" +
		"mpirun ./heat -n 10 \n"
	if got := readFile(t, run); got != want {
		t.Errorf("script mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}

	if _, err := os.Stat(run + CommandScriptSuffix); !os.IsNotExist(err) {
		t.Error("LSF should not write a .cmd file")
	}
	info, err := os.Stat(run)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0100 == 0 {
		t.Errorf("script mode = %o; owner exec bit missing", info.Mode().Perm())
	}
}

func TestLsfWorkingDirIsNotQueue(t *testing.T) {
	run := filepath.Join(t.TempDir(), "run.sh")
	job := buildJob(t, NewJobBuilder(JobTypeLSF, run).
		SetQueue("normal").
		SetCommand("true", 1))

	if _, err := NewLsfScheduler().RenderScripts(job); err != nil {
		t.Fatalf("RenderScripts error: %v", err)
	}
	if got := directives(readFile(t, run), "#BSUB -cwd"); len(got) != 0 {
		t.Errorf("unset working dir emitted %v", got)
	}
}

func TestLsfOutputDirectives(t *testing.T) {
	tests := []struct {
		replace    bool
		wantStdout string
		wantStderr string
	}{
		{false, "#BSUB -o o.txt", "#BSUB -e e.txt"},
		{true, "#BSUB -oo o.txt", "#BSUB -eo e.txt"},
	}

	for _, tt := range tests {
		run := filepath.Join(t.TempDir(), "run.sh")
		job := buildJob(t, NewJobBuilder(JobTypeLSF, run).
			SetStdout("o.txt", tt.replace).
			SetStderr("e.txt", tt.replace).
			SetCommand("true", 1))
		if _, err := NewLsfScheduler().RenderScripts(job); err != nil {
			t.Fatalf("RenderScripts error: %v", err)
		}
		content := readFile(t, run)
		for _, want := range []string{tt.wantStdout, tt.wantStderr} {
			if !strings.Contains(content, want+"\n") {
				t.Errorf("replace=%v: missing %q in\n%s", tt.replace, want, content)
			}
		}
	}
}

func TestLsfDefaults(t *testing.T) {
	run := filepath.Join(t.TempDir(), "run.sh")
	job := buildJob(t, NewJobBuilder(JobTypeLSF, run).SetCommand("hostname", 3))
	if _, err := NewLsfScheduler().RenderScripts(job); err != nil {
		t.Fatalf("RenderScripts error: %v", err)
	}

	content := readFile(t, run)
	want := []string{
		"#BSUB -W 0:10",
		"#BSUB -n 1",
		`#BSUB -R "span[ptile=1]"`,
		"#BSUB -o slurm_job_%j.out",
		"#BSUB -e slurm_job_%j.err",
	}
	got := directives(content, "#BSUB")
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("directives:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}

	_, cmds, _ := strings.Cut(content, "#Job command\n")
	if cmds != strings.Repeat("hostname \n", 3) {
		t.Errorf("commands = %q", cmds)
	}
}

func TestLsfRejectsSlurmJob(t *testing.T) {
	job := buildJob(t, NewJobBuilder(JobTypeSLURM, filepath.Join(t.TempDir(), "run.sh")).SetCommand("true", 1))
	if _, err := NewLsfScheduler().RenderScripts(job); !errors.Is(err, ErrJobTypeMismatch) {
		t.Errorf("error = %v; want ErrJobTypeMismatch", err)
	}
}
