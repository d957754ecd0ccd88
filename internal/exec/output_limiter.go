// Package exec provides command execution utilities, currently output
// limiting for tool results.
package exec

// OutputMaxBytes is the hard cap on bytes retained from tool stdout/stderr.
// A single runaway command cannot blow up workflow history or the model
// prompt by dumping huge amounts of data.
const OutputMaxBytes = 1024 * 1024 // 1 MiB

// ExcerptMaxBytes bounds the output excerpt carried in tool events.
const ExcerptMaxBytes = 2048

// LimitOutput truncates output to OutputMaxBytes.
// Returns the (possibly truncated) result and whether truncation occurred.
func LimitOutput(output []byte) (result []byte, truncated bool) {
	if len(output) <= OutputMaxBytes {
		return output, false
	}
	return output[:OutputMaxBytes], true
}

// AggregateOutput combines stdout and stderr, capped at OutputMaxBytes.
// On contention: 1/3 stdout, 2/3 stderr, rebalance unused capacity.
func AggregateOutput(stdout, stderr []byte) []byte {
	totalLen := len(stdout) + len(stderr)
	maxBytes := OutputMaxBytes

	if totalLen <= maxBytes {
		result := make([]byte, 0, totalLen)
		result = append(result, stdout...)
		result = append(result, stderr...)
		return result
	}

	wantStdout := len(stdout)
	if wantStdout > maxBytes/3 {
		wantStdout = maxBytes / 3
	}
	wantStderr := len(stderr)

	stderrTake := wantStderr
	if remaining := maxBytes - wantStdout; stderrTake > remaining {
		stderrTake = remaining
	}

	// Rebalance: give unused stderr capacity back to stdout.
	remaining := maxBytes - wantStdout - stderrTake
	extraStdout := len(stdout) - wantStdout
	if extraStdout < 0 {
		extraStdout = 0
	}
	if remaining > extraStdout {
		remaining = extraStdout
	}
	stdoutTake := wantStdout + remaining

	result := make([]byte, 0, stdoutTake+stderrTake)
	result = append(result, stdout[:stdoutTake]...)
	result = append(result, stderr[:stderrTake]...)
	return result
}

// Excerpt returns at most ExcerptMaxBytes of s for event payloads.
func Excerpt(s string) string {
	if len(s) <= ExcerptMaxBytes {
		return s
	}
	return s[:ExcerptMaxBytes]
}
