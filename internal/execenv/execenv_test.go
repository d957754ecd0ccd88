package execenv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicyDropsCredentials(t *testing.T) {
	vars := map[string]string{
		"PATH":              "/usr/bin",
		"HOME":              "/home/user",
		"OPENAI_API_KEY":    "sk-secret",
		"ANTHROPIC_API_KEY": "sk-other",
		"GH_TOKEN":          "t",
	}

	result := DeriveFrom(vars, DefaultPolicy())

	assert.Equal(t, "/usr/bin", result["PATH"])
	assert.Equal(t, "/home/user", result["HOME"])
	assert.NotContains(t, result, "OPENAI_API_KEY")
	assert.NotContains(t, result, "ANTHROPIC_API_KEY")
	assert.NotContains(t, result, "GH_TOKEN")
	assert.Len(t, result, 2)
}

func TestKeepCredentialVars(t *testing.T) {
	vars := map[string]string{"PATH": "/usr/bin", "API_KEY": "secret"}

	result := DeriveFrom(vars, Policy{Inherit: InheritAll, KeepCredentialVars: true})

	assert.Equal(t, "secret", result["API_KEY"])
	assert.Len(t, result, 2)
}

func TestInheritCore(t *testing.T) {
	vars := map[string]string{
		"PATH":      "/usr/bin",
		"HOME":      "/home/user",
		"EDITOR":    "vim",
		"GOPROXY":   "direct",
		"SOME_FLAG": "1",
	}

	result := DeriveFrom(vars, Policy{Inherit: InheritCore})

	assert.Equal(t, "/usr/bin", result["PATH"])
	assert.Equal(t, "/home/user", result["HOME"])
	assert.Len(t, result, 2)
}

func TestExcludePatterns(t *testing.T) {
	vars := map[string]string{"PATH": "/usr/bin", "AWS_REGION": "us-east-1", "AWS_PROFILE": "dev"}

	result := DeriveFrom(vars, Policy{Inherit: InheritAll, Exclude: []string{"AWS_*"}})

	assert.Equal(t, map[string]string{"PATH": "/usr/bin"}, result)
}

func TestSetOverrides(t *testing.T) {
	vars := map[string]string{"PATH": "/usr/bin"}

	result := DeriveFrom(vars, Policy{
		Inherit: InheritAll,
		Set:     map[string]string{"PATH": "/opt/bin", "CI": "true"},
	})

	assert.Equal(t, "/opt/bin", result["PATH"])
	assert.Equal(t, "true", result["CI"])
}

func TestIncludeOnlyAppliesLast(t *testing.T) {
	vars := map[string]string{"PATH": "/usr/bin", "HOME": "/home/user", "FOO": "bar"}

	result := DeriveFrom(vars, Policy{
		Inherit:     InheritAll,
		Set:         map[string]string{"GOPATH": "/go"},
		IncludeOnly: []string{"*PATH"},
	})

	assert.Equal(t, map[string]string{"PATH": "/usr/bin", "GOPATH": "/go"}, result)
}

func TestWildcardMatch(t *testing.T) {
	assert.True(t, wildcardMatch("openai_api_key", "*key*"))
	assert.True(t, wildcardMatch("path", "?ath"))
	assert.True(t, wildcardMatch("anything", "*"))
	assert.False(t, wildcardMatch("path", "??ath"))
	assert.False(t, wildcardMatch("home", "*key*"))
}
