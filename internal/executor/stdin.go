package executor

import "strings"

// stdinLengthThreshold mirrors the wrapper's own cutoff for "long enough to
// risk shell quoting problems if passed as an argv element instead".
const stdinLengthThreshold = 800

// ShouldUseStdin decides whether task text should be piped to the child's
// stdin (argv element "-") instead of passed as a literal argv element, and
// reports why, for logging. piped indicates the wrapper's own stdin was
// already a pipe (so it has nowhere else to read the task text from).
func ShouldUseStdin(task string, piped bool) (bool, []string) {
	var reasons []string
	if piped {
		reasons = append(reasons, "piped input")
	}
	if strings.Contains(task, "\n") {
		reasons = append(reasons, "newline")
	}
	if strings.Contains(task, "\\") {
		reasons = append(reasons, "backslash")
	}
	if strings.Contains(task, "\"") {
		reasons = append(reasons, "double-quote")
	}
	if strings.Contains(task, "'") {
		reasons = append(reasons, "single-quote")
	}
	if strings.Contains(task, "`") {
		reasons = append(reasons, "backtick")
	}
	if strings.Contains(task, "$") {
		reasons = append(reasons, "dollar")
	}
	if len(task) > stdinLengthThreshold {
		reasons = append(reasons, "length>800")
	}
	return len(reasons) > 0, reasons
}
