package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/codeagenthq/codeagent/internal/types"
)

// exitProcess is the single os.Exit call site for subcommands that need to
// return a specific exit code after doing their own error reporting.
func exitProcess(code int) {
	os.Exit(code)
}

// exitCodeFor maps any error the core produces to a process exit code. This
// is the "thin outer adapter" spec.md §7 describes: the core never calls
// os.Exit itself.
func exitCodeFor(err error) int {
	return types.ExitCodeOf(err)
}

// printFailure prints a short, structured failure message with a
// suggestion tailored to the exit code, per spec.md §7's user-visible
// failure behavior.
func printFailure(err error, code int) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)

	switch code {
	case types.ExitBackendNotFound:
		fmt.Fprintln(os.Stderr, "  suggestion: install the backend CLI and ensure it's on PATH")
	case types.ExitTimeout:
		fmt.Fprintln(os.Stderr, "  suggestion: raise --timeout or CODEX_TIMEOUT")
	}
}

// printResult writes a TaskResult's message to stdout and, on failure, the
// stderr tail plus a suggestion to stderr, per spec.md §6's stdout/stderr
// contract.
func printResult(r types.TaskResult) {
	fmt.Println(r.Message)
	if r.ExitCode != types.ExitOK {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s task %s exited %d\n", red("Error:"), r.TaskID, r.ExitCode)
		if r.StderrTail != "" {
			fmt.Fprintln(os.Stderr, r.StderrTail)
		}
		switch r.ExitCode {
		case types.ExitBackendNotFound:
			fmt.Fprintln(os.Stderr, "  suggestion: install the backend CLI and ensure it's on PATH")
		case types.ExitTimeout:
			fmt.Fprintln(os.Stderr, "  suggestion: raise --timeout or CODEX_TIMEOUT")
		}
	}
}
