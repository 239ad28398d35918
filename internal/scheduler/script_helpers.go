package scheduler

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hpcjobs/jobsubmit/internal/utils"
)

const shebang = "#!/bin/bash\n\n"

// writeDirective writes format (with value substituted) as one line, but only
// when value is not the zero value of its type. Directive order is whatever
// order the caller emits in.
func writeDirective[T comparable](w io.Writer, format string, value T) {
	var zero T
	if value == zero {
		return
	}
	fmt.Fprintf(w, format, value)
	fmt.Fprintln(w)
}

// writeEnvironment writes the module unload/load lines and one export per
// environment variable, sorted by name.
func writeEnvironment(w io.Writer, job *Job) {
	if len(job.modulesUnload) > 0 {
		fmt.Fprintf(w, "module unload %s\n", strings.Join(job.modulesUnload, " "))
	}
	if len(job.modulesLoad) > 0 {
		fmt.Fprintf(w, "module load %s\n", strings.Join(job.modulesLoad, " "))
	}
	for _, name := range job.envNames() {
		fmt.Fprintf(w, "export %s=%s\n", name, job.env[name])
	}
}

// writeCommands writes the job command once per repetition. launcher is
// prepended when the job runs more than one task; prefix goes between the
// launcher and the executable.
func writeCommands(w io.Writer, job *Job, launcher string, prefix string) {
	line := job.commandLine()
	if prefix != "" {
		line = prefix + " " + line
	}
	for i := 0; i < job.repetitions; i++ {
		if job.taskCount > 1 {
			fmt.Fprintf(w, "%s ", launcher)
		}
		fmt.Fprintln(w, line)
	}
}

// writeScriptFile creates path, lets render fill it and closes it.
// Errors from create, flush and close are all reported.
func writeScriptFile(job *Job, path string, render func(w io.Writer)) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return NewScriptCreationError(job.name, path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = NewScriptCreationError(job.name, path, cerr)
		}
	}()

	writer := bufio.NewWriter(file)
	render(writer)
	if err := writer.Flush(); err != nil {
		return NewScriptCreationError(job.name, path, err)
	}
	return nil
}

// makeExecutable adds the owner execute bit once the script is closed.
func makeExecutable(job *Job, path string) error {
	if err := utils.AddOwnerExec(path); err != nil {
		return NewScriptCreationError(job.name, path, err)
	}
	return nil
}
