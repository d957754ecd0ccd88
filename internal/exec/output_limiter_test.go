package exec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitOutputUnderLimit(t *testing.T) {
	output := []byte("short output")
	result, truncated := LimitOutput(output)
	assert.False(t, truncated)
	assert.Equal(t, output, result)
}

func TestLimitOutputOverLimit(t *testing.T) {
	output := bytes.Repeat([]byte("x"), OutputMaxBytes+100)
	result, truncated := LimitOutput(output)
	assert.True(t, truncated)
	assert.Len(t, result, OutputMaxBytes)
}

func TestAggregateOutputUnderLimit(t *testing.T) {
	result := AggregateOutput([]byte("out"), []byte("err"))
	assert.Equal(t, []byte("outerr"), result)
}

func TestAggregateOutputContention(t *testing.T) {
	stdout := bytes.Repeat([]byte("o"), OutputMaxBytes)
	stderr := bytes.Repeat([]byte("e"), OutputMaxBytes)

	result := AggregateOutput(stdout, stderr)
	assert.Len(t, result, OutputMaxBytes)

	// 1/3 stdout, 2/3 stderr under full contention.
	stdoutBytes := bytes.Count(result, []byte("o"))
	stderrBytes := bytes.Count(result, []byte("e"))
	assert.Equal(t, OutputMaxBytes/3, stdoutBytes)
	assert.Equal(t, OutputMaxBytes-OutputMaxBytes/3, stderrBytes)
}

func TestAggregateOutputRebalance(t *testing.T) {
	// Little stderr: stdout gets the unused capacity.
	stdout := bytes.Repeat([]byte("o"), OutputMaxBytes*2)
	stderr := []byte("tiny")

	result := AggregateOutput(stdout, stderr)
	assert.Len(t, result, OutputMaxBytes)
	assert.Equal(t, OutputMaxBytes-len(stderr), bytes.Count(result, []byte("o")))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", Excerpt("short"))

	long := strings.Repeat("a", ExcerptMaxBytes*2)
	assert.Len(t, Excerpt(long), ExcerptMaxBytes)
}
