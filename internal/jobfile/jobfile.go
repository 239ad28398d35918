// Package jobfile loads job descriptions from YAML, JSON or TOML files and
// turns them into scheduler.JobBuilder settings.
package jobfile

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/mod/semver"

	"github.com/hpcjobs/jobsubmit/internal/config"
	"github.com/hpcjobs/jobsubmit/internal/scheduler"
	"github.com/hpcjobs/jobsubmit/internal/utils"
)

var (
	// ErrVersionTooOld indicates the job file needs a newer jobsubmit
	ErrVersionTooOld = errors.New("job file requires a newer jobsubmit")

	// ErrInvalidRequires indicates the requires field is not a semantic version
	ErrInvalidRequires = errors.New("invalid requires version")
)

// Output is a stdout or stderr entry
type Output struct {
	Path    string `mapstructure:"path"`
	Replace bool   `mapstructure:"replace"`
}

// Modules lists environment modules to load and unload
type Modules struct {
	Load   []string `mapstructure:"load"`
	Unload []string `mapstructure:"unload"`
}

// Spec is the on-disk job description. Zero values mean "not set" and leave
// the builder default in place.
//
// Env entries are "NAME=VALUE" strings rather than a map: viper folds map
// keys to lower case, which would mangle variable names.
type Spec struct {
	Requires string `mapstructure:"requires"`

	Type      string `mapstructure:"type"`
	Runscript string `mapstructure:"runscript"`

	Name    string `mapstructure:"name"`
	Queue   string `mapstructure:"queue"`
	QoS     string `mapstructure:"qos"`
	WorkDir string `mapstructure:"workdir"`
	Time    string `mapstructure:"time"`
	Stdout  Output `mapstructure:"stdout"`
	Stderr  Output `mapstructure:"stderr"`

	NTasks       int    `mapstructure:"ntasks"`
	Nodes        int    `mapstructure:"nodes"`
	MemPerTask   string `mapstructure:"mem_per_task"`
	ProcsPerNode int    `mapstructure:"procs_per_node"`
	CpusPerTask  int    `mapstructure:"cpus_per_task"`

	Modules Modules  `mapstructure:"modules"`
	Env     []string `mapstructure:"env"`

	Command     string   `mapstructure:"command"`
	Args        []string `mapstructure:"args"`
	Repetitions int      `mapstructure:"repetitions"`
}

// Load reads a job file. The format follows the file extension.
func Load(path string) (*Spec, error) {
	if !utils.IsJobFile(path) {
		return nil, fmt.Errorf("unsupported job file %s (expected .yaml, .yml, .json or .toml)", path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read job file %s: %w", path, err)
	}

	var spec Spec
	if err := v.Unmarshal(&spec); err != nil {
		return nil, fmt.Errorf("failed to parse job file %s: %w", path, err)
	}
	if err := spec.CheckRequires(config.VERSION); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	utils.PrintDebug("Loaded job file %s", utils.StylePath(path))
	return &spec, nil
}

func canonicalVersion(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "v") {
		s = "v" + s
	}
	return s
}

// CheckRequires fails when the spec asks for a version newer than current.
// An empty Requires always passes.
func (s *Spec) CheckRequires(current string) error {
	if strings.TrimSpace(s.Requires) == "" {
		return nil
	}
	want := canonicalVersion(s.Requires)
	if !semver.IsValid(want) {
		return fmt.Errorf("%w: %q", ErrInvalidRequires, s.Requires)
	}
	have := canonicalVersion(current)
	if semver.Compare(have, want) < 0 {
		return fmt.Errorf("%w: need %s, have %s", ErrVersionTooOld, want, have)
	}
	return nil
}

// JobType resolves the spec's scheduler, falling back when Type is empty
func (s *Spec) JobType(fallback string) (scheduler.JobType, error) {
	if s.Type != "" {
		return scheduler.ParseJobType(s.Type)
	}
	return scheduler.ParseJobType(fallback)
}

// NewBuilder creates a builder for the spec. fallbackType and
// fallbackRunscript are used when the spec leaves type or runscript unset.
func (s *Spec) NewBuilder(fallbackType, fallbackRunscript string) (*scheduler.JobBuilder, error) {
	jobType, err := s.JobType(fallbackType)
	if err != nil {
		return nil, err
	}
	runscript := s.Runscript
	if runscript == "" {
		runscript = fallbackRunscript
	}

	b := scheduler.NewJobBuilder(jobType, runscript)
	if err := s.Apply(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Apply copies every set field into b. Fields left at their zero value are
// not touched, so builder defaults survive.
func (s *Spec) Apply(b *scheduler.JobBuilder) error {
	if s.Name != "" {
		b.SetJobName(s.Name)
	}
	if s.Queue != "" {
		b.SetQueue(s.Queue)
	}
	if s.QoS != "" {
		b.SetQoS(s.QoS)
	}
	if s.WorkDir != "" {
		b.SetWorkingDir(s.WorkDir)
	}
	if s.Time != "" {
		tl, err := scheduler.ParseTimeLimit(s.Time)
		if err != nil {
			return err
		}
		b.SetTimeLimit(tl.Hours, tl.Minutes)
	}
	if s.Stdout.Path != "" {
		b.SetStdout(s.Stdout.Path, s.Stdout.Replace)
	}
	if s.Stderr.Path != "" {
		b.SetStderr(s.Stderr.Path, s.Stderr.Replace)
	}

	if s.NTasks != 0 {
		b.SetTaskCount(s.NTasks)
	}
	if s.Nodes != 0 {
		b.SetNodeCount(s.Nodes)
	}
	if s.MemPerTask != "" {
		mb, err := utils.ParseSizeToMB(s.MemPerTask)
		if err != nil {
			return fmt.Errorf("mem_per_task: %w", err)
		}
		b.SetMemPerTask(mb)
	}
	if s.ProcsPerNode != 0 {
		b.SetProcsPerNode(s.ProcsPerNode)
	}
	if s.CpusPerTask != 0 {
		b.SetCpusPerTask(s.CpusPerTask)
	}

	if len(s.Modules.Load) > 0 || len(s.Modules.Unload) > 0 {
		b.SetModules(s.Modules.Load, s.Modules.Unload)
	}
	for _, entry := range s.Env {
		name, value, err := utils.ParseEnvAssignment(entry)
		if err != nil {
			return err
		}
		b.SetEnv(name, value)
	}

	if s.Command != "" {
		reps := s.Repetitions
		if reps == 0 {
			reps = 1
		}
		b.SetCommand(s.Command, reps)
	} else if s.Repetitions != 0 {
		return scheduler.NewValidationError("repetitions", s.Repetitions, "set without a command")
	}
	if len(s.Args) > 0 {
		b.SetArgs(s.Args)
	}
	return nil
}
