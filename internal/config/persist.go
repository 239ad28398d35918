package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfigFilename is the name of the config file
const ConfigFilename = "config"

// ConfigType is the type of config file (yaml, json, toml)
const ConfigType = "yaml"

// EnvPrefix is the prefix of environment variable overrides (JOBSUBMIT_SBATCH_BIN, ...)
const EnvPrefix = "JOBSUBMIT"

// Keys lists every known configuration key
var Keys = []string{
	"scheduler_type",
	"sbatch_bin",
	"bsub_bin",
	"script_dir",
	"defaults.time",
	"defaults.queue",
	"log.file",
	"log.level",
	"log.rotate",
	"log.max_size_mb",
	"log.max_backups",
	"log.max_age_days",
}

// ConfigSearchPath describes one location viper looks for a config file
type ConfigSearchPath struct {
	Type   string // user, home, system or cwd
	Path   string // Full path to the config file
	Exists bool
	InUse  bool
}

// InitViper initializes Viper with proper search paths and defaults
// Priority (highest to lowest):
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (JOBSUBMIT_*)
// 3. User config file (~/.config/jobsubmit/config.yaml)
// 4. Home config file (~/.jobsubmit/config.yaml)
// 5. System config file (/etc/jobsubmit/config.yaml)
// 6. Current directory
// 7. Defaults
func InitViper() error {
	viper.SetConfigName(ConfigFilename)
	viper.SetConfigType(ConfigType)

	for _, dir := range configDirs() {
		viper.AddConfigPath(dir.Path)
	}

	// Environment variables
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set defaults (lowest priority)
	setDefaults()

	// Read config file (non-fatal if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// setDefaults sets default values for all config keys
func setDefaults() {
	viper.SetDefault("scheduler_type", "slurm")
	viper.SetDefault("sbatch_bin", "sbatch")
	viper.SetDefault("bsub_bin", "bsub")
	viper.SetDefault("script_dir", ".")

	viper.SetDefault("defaults.time", "0:10")
	viper.SetDefault("defaults.queue", "")

	viper.SetDefault("log.file", "")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.rotate", false)
	viper.SetDefault("log.max_size_mb", 10)
	viper.SetDefault("log.max_backups", 3)
	viper.SetDefault("log.max_age_days", 28)
}

// configDirs returns the directories searched for config.yaml, highest priority first
func configDirs() []ConfigSearchPath {
	var dirs []ConfigSearchPath
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, ConfigSearchPath{Type: "user", Path: filepath.Join(userConfigDir, "jobsubmit")})
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, ConfigSearchPath{Type: "home", Path: filepath.Join(home, ".jobsubmit")})
	}
	dirs = append(dirs,
		ConfigSearchPath{Type: "system", Path: "/etc/jobsubmit"},
		ConfigSearchPath{Type: "cwd", Path: "."},
	)
	return dirs
}

// GetConfigSearchPaths lists candidate config files and marks the one viper loaded
func GetConfigSearchPaths() []ConfigSearchPath {
	inUse := viper.ConfigFileUsed()
	if abs, err := filepath.Abs(inUse); err == nil && inUse != "" {
		inUse = abs
	}

	dirs := configDirs()
	for i := range dirs {
		file := filepath.Join(dirs[i].Path, ConfigFilename+"."+ConfigType)
		if abs, err := filepath.Abs(file); err == nil {
			file = abs
		}
		dirs[i].Path = file
		if _, err := os.Stat(file); err == nil {
			dirs[i].Exists = true
		}
		dirs[i].InUse = inUse != "" && file == inUse
	}
	return dirs
}

// GetUserConfigPath returns the path to the user config file
func GetUserConfigPath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".jobsubmit", ConfigFilename+"."+ConfigType), nil
	}

	return filepath.Join(userConfigDir, "jobsubmit", ConfigFilename+"."+ConfigType), nil
}

// SaveConfig saves current Viper config to user config file
func SaveConfig() error {
	configPath, err := GetUserConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveConfigTo(configPath)
}

// SaveConfigTo saves current Viper config to an explicit path
func SaveConfigTo(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ValidateBinary checks if a binary exists and is executable
func ValidateBinary(binPath string) bool {
	if binPath == "" {
		return false
	}

	if filepath.IsAbs(binPath) {
		info, err := os.Stat(binPath)
		if err != nil {
			return false
		}
		return !info.IsDir() && info.Mode()&0111 != 0
	}

	_, err := exec.LookPath(binPath)
	return err == nil
}

// DetectBinaries resolves sbatch and bsub through PATH and stores the
// absolute paths in Viper. Returns true if any value changed.
func DetectBinaries() bool {
	updated := false
	for key, name := range map[string]string{"sbatch_bin": "sbatch", "bsub_bin": "bsub"} {
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if viper.GetString(key) != path {
			viper.Set(key, path)
			updated = true
		}
	}
	return updated
}

// LoadFromViper loads config from Viper into Global struct
func LoadFromViper() {
	if v := viper.GetString("scheduler_type"); v != "" {
		Global.SchedulerType = v
	}
	if v := viper.GetString("sbatch_bin"); v != "" {
		Global.SbatchBin = v
	}
	if v := viper.GetString("bsub_bin"); v != "" {
		Global.BsubBin = v
	}
	if v := viper.GetString("script_dir"); v != "" {
		Global.ScriptDir = v
	}

	if v := viper.GetString("defaults.time"); v != "" {
		Global.DefaultTime = v
	}
	Global.DefaultQueue = viper.GetString("defaults.queue")

	Global.Log.File = viper.GetString("log.file")
	if v := viper.GetString("log.level"); v != "" {
		Global.Log.Level = v
	}
	Global.Log.Rotate = viper.GetBool("log.rotate")
	if v := viper.GetInt("log.max_size_mb"); v > 0 {
		Global.Log.MaxSizeMB = v
	}
	if v := viper.GetInt("log.max_backups"); v > 0 {
		Global.Log.MaxBackups = v
	}
	if v := viper.GetInt("log.max_age_days"); v > 0 {
		Global.Log.MaxAgeDays = v
	}
}
