package config

const VERSION = "0.3.0"

// LogConfig controls the submission audit log
type LogConfig struct {
	File       string // Audit log destination: file path, "stdout" or "stderr"; empty disables it
	Level      string // debug, info, warn, error
	Rotate     bool   // Rotate file outputs
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Config holds global application settings
type Config struct {
	Debug   bool
	Version string

	SchedulerType string // Default job type when a job does not name one (slurm or lsf)
	SbatchBin     string
	BsubBin       string
	ScriptDir     string // Where generated scripts go when no runscript path is given

	DefaultTime  string // Default wall-clock limit, "H:M"
	DefaultQueue string

	Log LogConfig
}

// Global holds the singleton configuration instance
var Global Config

// LoadDefaults resets Global to the built-in defaults
func LoadDefaults() {
	Global = Config{
		Debug:         false,
		Version:       VERSION,
		SchedulerType: "slurm",
		SbatchBin:     "sbatch",
		BsubBin:       "bsub",
		ScriptDir:     ".",
		DefaultTime:   "0:10",
		DefaultQueue:  "",
		Log: LogConfig{
			File:       "",
			Level:      "info",
			Rotate:     false,
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}
