package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// DebugMode controls whether PrintDebug output is visible.
var DebugMode = false

// QuietMode controls whether verbose messages are suppressed (errors/warnings still shown)
var QuietMode = false

// projectPrefix is the standard tag for all logs.
const projectPrefix = "[JOB]"

// ---------------------------------------------------------
// 1. Private Color Definitions
//    (We hide these so we don't use raw colors in logic)
// ---------------------------------------------------------

var (
	red         = color.New(color.FgRed).SprintFunc()
	green       = color.New(color.FgGreen).SprintFunc()
	yellow      = color.New(color.FgYellow).SprintFunc()
	blueBold    = color.New(color.FgBlue, color.Bold).SprintFunc()
	magenta     = color.New(color.FgMagenta).SprintFunc()
	magentaBold = color.New(color.FgMagenta, color.Bold).SprintFunc()
	cyan        = color.New(color.FgCyan).SprintFunc()
	cyanBold    = color.New(color.FgCyan, color.Bold).SprintFunc()
	gray        = color.New(color.FgWhite).SprintFunc() // FgWhite = Gray in ANSI
	bold        = color.New(color.Bold).SprintFunc()
)

// ---------------------------------------------------------
// 2. Semantic Styles (The "Style..." API)
//    Use these for formatting specific types of data.
// ---------------------------------------------------------

// StyleError formats critical failure messages (Red).
func StyleError(msg string) string { return red(msg) }

// StyleSuccess formats success messages (Green).
func StyleSuccess(msg string) string { return green(msg) }

// StyleWarning formats non-critical warnings (Yellow).
func StyleWarning(msg string) string { return yellow(msg) }

// StyleHint formats helpful tips or suggestions (Cyan).
func StyleHint(msg string) string { return cyan(msg) }

// StyleNote formats neutral notes or annotations (Magenta).
func StyleNote(msg string) string { return magenta(msg) }

// StyleInfo formats status labels or properties (Magenta)
func StyleInfo(msg string) string { return magenta(msg) }

// StyleDebug formats low-level technical info (Gray).
func StyleDebug(msg string) string { return gray(msg) }

// StyleCommand formats shell commands or flags (Gray/Faint).
func StyleCommand(cmd string) string { return gray(cmd) }

// StyleTitle
func StyleTitle(title string) string { return bold(cyan(title)) }

// StyleNumber formats counts, sizes, or IDs (Magenta).
func StyleNumber(num interface{}) string {
	return magenta(fmt.Sprintf("%v", num))
}

// StylePath formats file paths with context-aware coloring.
func StylePath(path string) string {
	// 1. Job description files -> Bold Magenta
	if IsJobFile(path) {
		return magentaBold(path)
	}
	// 2. Generated batch scripts -> Bold Cyan
	if IsScript(path) {
		return cyanBold(path)
	}
	// 3. Everything else -> Bold Blue
	return blueBold(path)
}

// StyleName formats names, identifiers, or keys (Yellow).
func StyleName(name string) string { return yellow(name) }

// ---------------------------------------------------------
// 3. Log Printers
//    Each prints one [JOB]-tagged line. Info-level printers go to stdout and
//    are silenced by QuietMode; warnings, errors and debug go to stderr.
// ---------------------------------------------------------

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func printTagged(w io.Writer, tag, format string, a ...interface{}) {
	fmt.Fprintf(w, "%s%s %s\n", projectPrefix, tag, fmt.Sprintf(format, a...))
}

// PrintMessage prints a standard info message.
// Output: [JOB] Runscript: job.sh
func PrintMessage(format string, a ...interface{}) {
	if !QuietMode {
		printTagged(stdout, "", format, a...)
	}
}

// PrintSuccess prints a success message with a Green tag.
// Output: [JOB][PASS] Submitted job.sh.cmd with sbatch
func PrintSuccess(format string, a ...interface{}) {
	if !QuietMode {
		printTagged(stdout, StyleSuccess("[PASS]"), format, a...)
	}
}

// PrintHint prints a helpful hint with a Cyan tag.
// Output: [JOB][HINT] Use --force to overwrite it
func PrintHint(format string, a ...interface{}) {
	if !QuietMode {
		printTagged(stdout, StyleHint("[HINT]"), format, a...)
	}
}

// PrintNote prints a note with a Magenta tag.
// Output: [JOB][NOTE] Dry run: SLURM job not submitted
func PrintNote(format string, a ...interface{}) {
	if !QuietMode {
		printTagged(stdout, StyleNote("[NOTE]"), format, a...)
	}
}

// PrintError prints an error message with a Red tag to Stderr.
// Output: [JOB][ERR]  SLURM submission failed (exit 1)
func PrintError(format string, a ...interface{}) {
	printTagged(stderr, StyleError("[ERR] "), format, a...)
}

// PrintWarning prints a warning with a Yellow tag to Stderr.
// Output: [JOB][WARN] Audit log disabled: permission denied
func PrintWarning(format string, a ...interface{}) {
	printTagged(stderr, StyleWarning("[WARN]"), format, a...)
}

// PrintDebug prints a debug message with a Gray tag (only if DebugMode is true).
// Output: [JOB][DBG]  Running: sbatch job.sh.cmd
func PrintDebug(format string, a ...interface{}) {
	if DebugMode {
		printTagged(stderr, StyleDebug("[DBG] "), format, a...)
	}
}
