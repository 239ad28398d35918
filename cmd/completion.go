package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// detectShell picks the completion flavour from $SHELL, defaulting to bash
func detectShell() string {
	shell := strings.ToLower(os.Getenv("SHELL"))
	switch {
	case strings.Contains(shell, "fish"):
		return "fish"
	case strings.Contains(shell, "zsh"):
		return "zsh"
	case strings.Contains(shell, "pwsh"), strings.Contains(shell, "powershell"):
		return "powershell"
	}
	return "bash"
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate a shell completion script for jobsubmit.
Without an argument the shell is taken from $SHELL.

  $ source <(jobsubmit completion bash)
  $ jobsubmit completion zsh > "${fpath[1]}/_jobsubmit"
  $ jobsubmit completion fish | source`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		shell := detectShell()
		if len(args) > 0 {
			shell = args[0]
		}

		// Offer long option names only; shorthands come back afterwards
		saved := stripShorthands(cmd.Root())
		defer restoreShorthands(cmd.Root(), saved)

		out := cmd.OutOrStdout()
		switch shell {
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		default:
			return cmd.Root().GenBashCompletionV2(out, true)
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// visitFlags calls fn for every flag defined anywhere in the command tree
func visitFlags(root *cobra.Command, fn func(f *pflag.Flag)) {
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		c.LocalFlags().VisitAll(fn)
		c.PersistentFlags().VisitAll(fn)
		c.InheritedFlags().VisitAll(fn)
		for _, child := range c.Commands() {
			walk(child)
		}
	}
	walk(root)
}

// stripShorthands clears every flag shorthand and returns the old values keyed by flag name
func stripShorthands(root *cobra.Command) map[string]string {
	saved := make(map[string]string)
	visitFlags(root, func(f *pflag.Flag) {
		if f.Shorthand != "" {
			saved[f.Name] = f.Shorthand
			f.Shorthand = ""
		}
	})
	return saved
}

func restoreShorthands(root *cobra.Command, saved map[string]string) {
	visitFlags(root, func(f *pflag.Flag) {
		if old, ok := saved[f.Name]; ok {
			f.Shorthand = old
		}
	})
}
