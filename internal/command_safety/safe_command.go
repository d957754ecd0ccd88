// Package command_safety classifies shell commands as known read-only so the
// approval gate can skip the prompt for them under the on_request policy.
package command_safety

import (
	"path/filepath"
	"strings"
)

// IsKnownSafeScript reports whether a full shell script consists solely of
// known read-only commands joined by safe operators (&&, ||, ;, |).
func IsKnownSafeScript(script string) bool {
	commands := ParsePlainCommands(script)
	if len(commands) == 0 {
		return false
	}
	for _, cmd := range commands {
		if !IsKnownSafeCommand(cmd) {
			return false
		}
	}
	return true
}

// IsKnownSafeCommand reports whether a single command vector is read-only
// and can be auto-approved.
func IsKnownSafeCommand(command []string) bool {
	if len(command) == 0 {
		return false
	}

	base := filepath.Base(command[0])
	switch base {
	case "cat", "cut", "echo", "expr", "false", "grep", "head", "id",
		"ls", "nl", "paste", "pwd", "rev", "seq", "stat", "tail", "tr",
		"true", "uname", "uniq", "wc", "which", "whoami", "date", "basename",
		"dirname", "sort", "tac":
		return true

	case "find":
		return findIsSafe(command[1:])

	case "rg":
		return rgIsSafe(command[1:])

	case "git":
		return gitIsSafe(command[1:])

	default:
		return false
	}
}

// findIsSafe rejects find invocations that can execute commands or write.
func findIsSafe(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-exec", "-execdir", "-ok", "-okdir", "-delete",
			"-fls", "-fprint", "-fprint0", "-fprintf":
			return false
		}
	}
	return true
}

// rgIsSafe rejects ripgrep flags that spawn subprocesses.
func rgIsSafe(args []string) bool {
	for _, arg := range args {
		if arg == "--search-zip" || arg == "-z" {
			return false
		}
		for _, opt := range []string{"--pre", "--hostname-bin"} {
			if arg == opt || strings.HasPrefix(arg, opt+"=") {
				return false
			}
		}
	}
	return true
}

// gitIsSafe accepts only read-only git subcommands without config overrides
// or pager/diff-driver escapes.
func gitIsSafe(args []string) bool {
	if len(args) == 0 {
		return false
	}

	// -c and --config-env can force git to run arbitrary external commands.
	for _, arg := range args {
		if arg == "--config-env" || strings.HasPrefix(arg, "--config-env=") ||
			strings.HasPrefix(arg, "-c") {
			return false
		}
	}

	switch args[0] {
	case "status", "log", "diff", "show", "branch":
	default:
		return false
	}

	for _, arg := range args[1:] {
		switch arg {
		case "--output", "--ext-diff", "--textconv", "--exec", "--paginate":
			return false
		}
		if strings.HasPrefix(arg, "--output=") || strings.HasPrefix(arg, "--exec=") {
			return false
		}
	}
	return true
}
