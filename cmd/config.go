package cmd

import (
	"fmt"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/hpcjobs/jobsubmit/internal/config"
	"github.com/hpcjobs/jobsubmit/internal/scheduler"
	"github.com/hpcjobs/jobsubmit/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	initForce bool
	initPath  string
)

// configKeysCompletion returns config keys for shell completion
func configKeysCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		// First arg: complete config keys
		return config.Keys, cobra.ShellCompDirectiveNoFileComp
	}
	if len(args) == 1 {
		// Second arg: complete values based on the key
		return configValueCompletion(args[0]), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// configValueCompletion returns suggested values for a config key
func configValueCompletion(key string) []string {
	switch key {
	case "scheduler_type":
		return []string{"slurm", "lsf"}
	case "log.level":
		return []string{"debug", "info", "warn", "error"}
	case "log.rotate":
		return []string{"true", "false"}
	case "log.file":
		return []string{"stdout", "stderr"}
	case "defaults.time":
		return []string{"0:10", "0:30", "1:00", "4:00", "24:00"}
	default:
		return nil
	}
}

// getConfigEnvVars returns the environment variable for every config key, sorted
func getConfigEnvVars() []string {
	vars := make([]string, 0, len(config.Keys))
	for _, key := range config.Keys {
		vars = append(vars, config.EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}
	sort.Strings(vars)
	return vars
}

// validateConfigValue rejects values the key cannot hold
func validateConfigValue(key, value string) error {
	switch key {
	case "scheduler_type":
		_, err := scheduler.ParseJobType(value)
		return err
	case "defaults.time":
		_, err := scheduler.ParseTimeLimit(value)
		return err
	case "log.level":
		if !slices.Contains(configValueCompletion(key), strings.ToLower(value)) {
			return fmt.Errorf("invalid log level %q", value)
		}
	case "log.rotate":
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
	case "log.max_size_mb", "log.max_backups", "log.max_age_days":
		if n, err := strconv.Atoi(value); err != nil || n < 1 {
			return fmt.Errorf("%s must be a positive integer, got %q", key, value)
		}
	}
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage jobsubmit configuration",
	Long: `Manage jobsubmit configuration settings.

Configuration file priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (JOBSUBMIT_*)
  3. User config file (~/.config/jobsubmit/config.yaml)
  4. Home config file (~/.jobsubmit/config.yaml)
  5. System config file (/etc/jobsubmit/config.yaml)
  6. Current directory (./config.yaml)
  7. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		// Show config file search paths
		fmt.Println(utils.StyleTitle("Config File Search Paths:"))
		foundActive := false
		for i, sp := range config.GetConfigSearchPaths() {
			status := ""
			if sp.InUse {
				status = " " + utils.StyleSuccess("← in use")
				foundActive = true
			} else if sp.Exists {
				status = " " + utils.StyleInfo("(exists)")
			}
			fmt.Printf("  %d. [%s] %s%s\n", i+1, sp.Type, sp.Path, status)
		}
		if !foundActive {
			fmt.Printf("  %s (use 'jobsubmit config init' to create)\n", utils.StyleWarning("No config file found"))
		}
		fmt.Println()

		fmt.Println(utils.StyleTitle("Schedulers:"))
		fmt.Printf("  scheduler_type:   %s\n", config.Global.SchedulerType)
		fmt.Printf("  sbatch_bin:       %s\n", config.Global.SbatchBin)
		fmt.Printf("  bsub_bin:         %s\n", config.Global.BsubBin)
		fmt.Printf("  script_dir:       %s\n", config.Global.ScriptDir)
		fmt.Println()

		fmt.Println(utils.StyleTitle("Job Defaults:"))
		fmt.Printf("  defaults.time:    %s\n", config.Global.DefaultTime)
		queue := config.Global.DefaultQueue
		if queue == "" {
			queue = utils.StyleInfo("none")
		}
		fmt.Printf("  defaults.queue:   %s\n", queue)
		fmt.Println()

		fmt.Println(utils.StyleTitle("Audit Log:"))
		logFile := config.Global.Log.File
		if logFile == "" {
			logFile = utils.StyleInfo("disabled")
		}
		fmt.Printf("  log.file:         %s\n", logFile)
		fmt.Printf("  log.level:        %s\n", config.Global.Log.Level)
		fmt.Printf("  log.rotate:       %v\n", config.Global.Log.Rotate)
		if config.Global.Log.Rotate {
			fmt.Printf("  log.max_size_mb:  %d\n", config.Global.Log.MaxSizeMB)
			fmt.Printf("  log.max_backups:  %d\n", config.Global.Log.MaxBackups)
			fmt.Printf("  log.max_age_days: %d\n", config.Global.Log.MaxAgeDays)
		}
		fmt.Println()

		// Show environment variable overrides
		fmt.Println(utils.StyleTitle("Environment Variable Overrides:"))
		hasEnvOverrides := false
		for _, envVar := range getConfigEnvVars() {
			if val := os.Getenv(envVar); val != "" {
				fmt.Printf("  %s=%s\n", envVar, val)
				hasEnvOverrides = true
			}
		}
		if !hasEnvOverrides {
			fmt.Printf("  %s\n", utils.StyleInfo("none"))
		}
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Example: `  jobsubmit config get sbatch_bin
  jobsubmit config get log.file`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: configKeysCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		value := viper.Get(args[0])
		if value == nil {
			return fmt.Errorf("unknown config key: %s", args[0])
		}
		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save it to the user config file.

Time format (for defaults.time): H:M or a plain number of minutes.`,
	Example: `  jobsubmit config set scheduler_type lsf
  jobsubmit config set sbatch_bin /opt/slurm/bin/sbatch
  jobsubmit config set defaults.time 1:30
  jobsubmit config set log.file ~/.jobsubmit/audit.log`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: configKeysCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if !slices.Contains(config.Keys, key) {
			utils.PrintWarning("'%s' is not a standard config key", key)
		}
		if err := validateConfigValue(key, value); err != nil {
			return err
		}

		viper.Set(key, value)
		if err := config.SaveConfig(); err != nil {
			return err
		}

		configPath, _ := config.GetUserConfigPath()
		utils.PrintSuccess("Set %s = %s", utils.StyleInfo(key), utils.StyleInfo(value))
		utils.PrintNote("Config saved to: %s", utils.StylePath(configPath))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file with defaults",
	Long: `Create a configuration file with default values. sbatch and bsub are
looked up on PATH and stored as absolute paths when found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := initPath
		if configPath == "" {
			var err error
			configPath, err = config.GetUserConfigPath()
			if err != nil {
				return err
			}
		}

		if utils.FileExists(configPath) && !initForce {
			utils.PrintWarning("Config file already exists: %s", utils.StylePath(configPath))
			utils.PrintHint("Use --force to overwrite it")
			return nil
		}

		updated := config.DetectBinaries()
		if err := config.SaveConfigTo(configPath); err != nil {
			return err
		}

		if updated {
			utils.PrintSuccess("Config file created with auto-detected binaries")
		} else {
			utils.PrintSuccess("Config file created")
		}
		fmt.Printf("  Location: %s\n", utils.StylePath(configPath))
		fmt.Printf("  sbatch:   %s\n", viper.GetString("sbatch_bin"))
		fmt.Printf("  bsub:     %s\n", viper.GetString("bsub_bin"))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the user config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := config.GetUserConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(configPath)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  "Check that configured values parse and the submission binaries are accessible",
	RunE: func(cmd *cobra.Command, args []string) error {
		valid := true
		check := func(ok bool, label, value string) {
			if ok {
				if !utils.QuietMode {
					fmt.Printf("%s %s: %s\n", utils.StyleSuccess("✓"), label, value)
				}
				return
			}
			fmt.Printf("%s %s: %s\n", utils.StyleError("✗"), label, value)
			valid = false
		}

		_, err := scheduler.ParseJobType(config.Global.SchedulerType)
		check(err == nil, "Scheduler type", config.Global.SchedulerType)
		_, err = scheduler.ParseTimeLimit(config.Global.DefaultTime)
		check(err == nil, "Default time", config.Global.DefaultTime)

		// Only the default scheduler's binary has to be present
		defaultType, _ := scheduler.ParseJobType(config.Global.SchedulerType)
		for _, jobType := range []scheduler.JobType{scheduler.JobTypeSLURM, scheduler.JobTypeLSF} {
			bin := scheduler.ConfiguredBinary(jobType)
			if config.ValidateBinary(bin) || jobType == defaultType {
				check(config.ValidateBinary(bin), jobType.String()+" binary", bin)
			} else if !utils.QuietMode {
				fmt.Printf("%s %s binary: %s (not found)\n", utils.StyleWarning("⚠"), jobType, bin)
			}
		}

		if !valid {
			return fmt.Errorf("configuration has errors")
		}
		utils.PrintSuccess("Configuration is valid")
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	configInitCmd.Flags().StringVar(&initPath, "path", "", "Write the config file here instead of the user config path")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configValidateCmd)

	rootCmd.AddCommand(configCmd)
}
