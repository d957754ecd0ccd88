package instructions

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildIncludesEnvironmentContext(t *testing.T) {
	prompt := Build(Params{
		Cwd:            "/work/repo",
		ApprovalPolicy: "on_request",
		ToolsEnabled:   []string{"shell", "read_file"},
	})

	assert.True(t, strings.HasPrefix(prompt, "You are a coding agent"))
	assert.Contains(t, prompt, "<cwd>/work/repo</cwd>")
	assert.Contains(t, prompt, "<approval_policy>on_request</approval_policy>")
	assert.Contains(t, prompt, "<tools>read_file, shell</tools>")
}

func TestBuildAppendsUserInstructions(t *testing.T) {
	prompt := Build(Params{UserInstructions: "Always answer in French.\n"})

	assert.True(t, strings.HasSuffix(prompt, "Always answer in French."))
}

func TestBuildBaseOverride(t *testing.T) {
	prompt := Build(Params{BaseOverride: "You are a test harness.", Cwd: "/tmp"})

	assert.True(t, strings.HasPrefix(prompt, "You are a test harness."))
	assert.NotContains(t, prompt, "coding agent")
	assert.Contains(t, prompt, "<cwd>/tmp</cwd>")
}

func TestBuildDeterministic(t *testing.T) {
	params := Params{Cwd: "/a", ApprovalPolicy: "always", ToolsEnabled: []string{"shell", "read_file"}}

	assert.Equal(t, Build(params), Build(params))
}

func TestBuildEmptyParams(t *testing.T) {
	prompt := Build(Params{})

	assert.Contains(t, prompt, "coding agent")
	assert.Contains(t, prompt, "<environment_context>")
}
