package cmd

import (
	"path/filepath"

	"github.com/hpcjobs/jobsubmit/internal/audit"
	"github.com/hpcjobs/jobsubmit/internal/config"
	"github.com/hpcjobs/jobsubmit/internal/jobfile"
	"github.com/hpcjobs/jobsubmit/internal/scheduler"
	"github.com/hpcjobs/jobsubmit/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// JobFlags holds the job flags shared by submit and render
type JobFlags struct {
	File      string
	Type      string
	Runscript string

	Name    string
	Queue   string
	QoS     string
	WorkDir string
	Time    string

	Stdout        string
	Stderr        string
	ReplaceStdout bool
	ReplaceStderr bool

	NTasks       int
	Nodes        int
	Mem          string
	ProcsPerNode int
	CpusPerTask  int

	Load   []string
	Unload []string
	Env    []string

	Repeat int
}

// RegisterJobFlags registers the job flags on a cobra command
func RegisterJobFlags(cmd *cobra.Command, flags *JobFlags) {
	f := cmd.Flags()
	f.StringVarP(&flags.File, "file", "f", "", "job file (.yaml, .json or .toml); flags override its values")
	f.StringVar(&flags.Type, "type", "", "scheduler: slurm or lsf (default: scheduler_type from config)")
	f.StringVarP(&flags.Runscript, "runscript", "r", "", "path of the generated script (default: <script_dir>/<name>.sh)")

	f.StringVarP(&flags.Name, "name", "J", "", "job name")
	f.StringVar(&flags.Queue, "queue", "", "queue or partition")
	f.StringVar(&flags.QoS, "qos", "", "quality of service")
	f.StringVarP(&flags.WorkDir, "workdir", "D", "", "working directory of the job")
	f.StringVarP(&flags.Time, "time", "t", "", "wall-clock limit, H:M or minutes")

	f.StringVarP(&flags.Stdout, "output", "o", "", "stdout file")
	f.StringVarP(&flags.Stderr, "error", "e", "", "stderr file")
	f.BoolVar(&flags.ReplaceStdout, "replace-output", false, "truncate the stdout file instead of appending")
	f.BoolVar(&flags.ReplaceStderr, "replace-error", false, "truncate the stderr file instead of appending")

	f.IntVarP(&flags.NTasks, "ntasks", "n", 0, "number of tasks (MPI ranks)")
	f.IntVarP(&flags.Nodes, "nodes", "N", 0, "number of nodes")
	f.StringVar(&flags.Mem, "mem", "", "memory per task, e.g. 500M or 4G")
	f.IntVar(&flags.ProcsPerNode, "procs-per-node", 0, "processes per node")
	f.IntVarP(&flags.CpusPerTask, "cpus-per-task", "c", 0, "CPUs per task")

	f.StringArrayVarP(&flags.Load, "module", "m", nil, "module to load (can be used multiple times)")
	f.StringArrayVar(&flags.Unload, "unload", nil, "module to unload (can be used multiple times)")
	f.StringArrayVar(&flags.Env, "env", nil, "set environment variable 'NAME=VALUE' (can be used multiple times)")

	f.IntVar(&flags.Repeat, "repeat", 0, "run the command this many times in the job")

	cmd.RegisterFlagCompletionFunc("type", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"slurm", "lsf"}, cobra.ShellCompDirectiveNoFileComp
	})
	cmd.RegisterFlagCompletionFunc("file", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml", "json", "toml"}, cobra.ShellCompDirectiveFilterFileExt
	})

	// Stop flag parsing at the executable so its own flags pass through
	f.SetInterspersed(false)
}

// expandList splits each flag value on commas and whitespace
func expandList(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, utils.SplitList(v)...)
	}
	return out
}

// Overlay copies every flag set on the command line into spec. Flags left at
// their defaults do not touch values loaded from a job file.
func (flags *JobFlags) Overlay(fs *pflag.FlagSet, spec *jobfile.Spec) {
	if fs.Changed("type") {
		spec.Type = flags.Type
	}
	if fs.Changed("runscript") {
		spec.Runscript = flags.Runscript
	}
	if fs.Changed("name") {
		spec.Name = flags.Name
	}
	if fs.Changed("queue") {
		spec.Queue = flags.Queue
	}
	if fs.Changed("qos") {
		spec.QoS = flags.QoS
	}
	if fs.Changed("workdir") {
		spec.WorkDir = flags.WorkDir
	}
	if fs.Changed("time") {
		spec.Time = flags.Time
	}

	if fs.Changed("output") {
		spec.Stdout.Path = flags.Stdout
	}
	if fs.Changed("replace-output") {
		spec.Stdout.Replace = flags.ReplaceStdout
		if spec.Stdout.Path == "" {
			spec.Stdout.Path = scheduler.DefaultStdout
		}
	}
	if fs.Changed("error") {
		spec.Stderr.Path = flags.Stderr
	}
	if fs.Changed("replace-error") {
		spec.Stderr.Replace = flags.ReplaceStderr
		if spec.Stderr.Path == "" {
			spec.Stderr.Path = scheduler.DefaultStderr
		}
	}

	if fs.Changed("ntasks") {
		spec.NTasks = flags.NTasks
	}
	if fs.Changed("nodes") {
		spec.Nodes = flags.Nodes
	}
	if fs.Changed("mem") {
		spec.MemPerTask = flags.Mem
	}
	if fs.Changed("procs-per-node") {
		spec.ProcsPerNode = flags.ProcsPerNode
	}
	if fs.Changed("cpus-per-task") {
		spec.CpusPerTask = flags.CpusPerTask
	}

	if fs.Changed("module") {
		spec.Modules.Load = expandList(flags.Load)
	}
	if fs.Changed("unload") {
		spec.Modules.Unload = expandList(flags.Unload)
	}
	// Flag env entries are applied after the job file's, so they win on conflicts
	spec.Env = append(spec.Env, flags.Env...)

	if fs.Changed("repeat") {
		spec.Repetitions = flags.Repeat
	}
}

// applyConfigDefaults fills values the job file and flags left empty from the
// loaded configuration.
func applyConfigDefaults(spec *jobfile.Spec) {
	if spec.Time == "" {
		spec.Time = config.Global.DefaultTime
	}
	if spec.Queue == "" {
		spec.Queue = config.Global.DefaultQueue
	}
}

// defaultRunscript names the generated script after the job
func defaultRunscript(spec *jobfile.Spec) string {
	name := spec.Name
	if name == "" {
		name = "job"
	}
	return filepath.Join(config.Global.ScriptDir, name+".sh")
}

// buildJob assembles a Job from the optional job file, the changed flags and
// the positional command line (executable followed by its arguments).
func buildJob(fs *pflag.FlagSet, flags *JobFlags, args []string) (*scheduler.Job, error) {
	spec := &jobfile.Spec{}
	if flags.File != "" {
		loaded, err := jobfile.Load(flags.File)
		if err != nil {
			return nil, err
		}
		spec = loaded
	}

	flags.Overlay(fs, spec)
	if len(args) > 0 {
		spec.Command = args[0]
		spec.Args = args[1:]
	}
	applyConfigDefaults(spec)

	b, err := spec.NewBuilder(config.Global.SchedulerType, defaultRunscript(spec))
	if err != nil {
		return nil, err
	}
	job, err := b.Build()
	if err != nil {
		return nil, err
	}

	if err := utils.EnsureDir(filepath.Dir(job.RunscriptPath())); err != nil {
		return nil, err
	}
	return job, nil
}

// openAuditLog opens the configured audit log. Failure to open it is not
// fatal: the job still runs, unaudited.
func openAuditLog() *audit.Logger {
	logger, err := audit.New(config.Global.Log)
	if err != nil {
		utils.PrintWarning("Audit log disabled: %v", err)
		logger, _ = audit.New(config.LogConfig{})
	}
	return logger
}
