package execpolicy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	policy, err := ParsePolicy("rules.star", `
prefix_rule(pattern=["ls"], decision="allow")
prefix_rule(pattern=["git", ["push", "fetch"]], decision="prompt")
prefix_rule(pattern=["rm", "-rf"], decision="forbidden")
prefix_rule(pattern=["make"])
`)
	require.NoError(t, err)
	assert.Equal(t, 4, policy.Len())

	decision, matched := policy.Evaluate([]string{"ls", "-la"})
	assert.True(t, matched)
	assert.Equal(t, DecisionAllow, decision)

	decision, matched = policy.Evaluate([]string{"git", "push", "origin"})
	assert.True(t, matched)
	assert.Equal(t, DecisionPrompt, decision)

	decision, matched = policy.Evaluate([]string{"git", "fetch"})
	assert.True(t, matched)
	assert.Equal(t, DecisionPrompt, decision)

	decision, matched = policy.Evaluate([]string{"rm", "-rf", "/"})
	assert.True(t, matched)
	assert.Equal(t, DecisionForbidden, decision)

	// Default decision is allow.
	decision, matched = policy.Evaluate([]string{"make", "test"})
	assert.True(t, matched)
	assert.Equal(t, DecisionAllow, decision)

	_, matched = policy.Evaluate([]string{"curl", "example.com"})
	assert.False(t, matched)
}

func TestParsePolicyErrors(t *testing.T) {
	_, err := ParsePolicy("bad.star", `prefix_rule(pattern=[], decision="allow")`)
	assert.Error(t, err)

	_, err = ParsePolicy("bad.star", `prefix_rule(pattern=["ls"], decision="maybe")`)
	assert.Error(t, err)

	_, err = ParsePolicy("bad.star", `prefix_rule(pattern=[42])`)
	assert.Error(t, err)

	_, err = ParsePolicy("bad.star", `this is not starlark`)
	assert.Error(t, err)
}

func TestLongestPrefixWins(t *testing.T) {
	policy, err := ParsePolicy("rules.star", `
prefix_rule(pattern=["git"], decision="prompt")
prefix_rule(pattern=["git", "status"], decision="allow")
`)
	require.NoError(t, err)

	decision, matched := policy.Evaluate([]string{"git", "status"})
	assert.True(t, matched)
	assert.Equal(t, DecisionAllow, decision)

	decision, matched = policy.Evaluate([]string{"git", "commit"})
	assert.True(t, matched)
	assert.Equal(t, DecisionPrompt, decision)
}

func TestEqualLengthTieResolvesHigher(t *testing.T) {
	policy := NewPolicy()
	policy.AddRule(&PrefixRule{Pattern: [][]string{{"go"}}, Decision: DecisionAllow})
	policy.AddRule(&PrefixRule{Pattern: [][]string{{"go"}}, Decision: DecisionForbidden})

	decision, matched := policy.Evaluate([]string{"go", "build"})
	assert.True(t, matched)
	assert.Equal(t, DecisionForbidden, decision)
}
