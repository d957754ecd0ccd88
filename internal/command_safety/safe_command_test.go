package command_safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsKnownSafeCommand(t *testing.T) {
	safe := [][]string{
		{"ls", "-la"},
		{"cat", "/etc/hostname"},
		{"grep", "-r", "TODO", "."},
		{"echo", "hello"},
		{"pwd"},
		{"wc", "-l", "file.txt"},
		{"/bin/ls"},
		{"find", ".", "-name", "*.go"},
		{"rg", "pattern", "src/"},
		{"git", "status"},
		{"git", "log", "--oneline"},
		{"git", "diff", "HEAD~1"},
		{"git", "branch", "--list"},
	}
	for _, cmd := range safe {
		assert.True(t, IsKnownSafeCommand(cmd), "expected safe: %v", cmd)
	}

	unsafe := [][]string{
		{},
		{"rm", "-rf", "/"},
		{"curl", "http://example.com"},
		{"bash", "-c", "ls"},
		{"find", ".", "-name", "*.go", "-delete"},
		{"find", ".", "-exec", "rm", "{}", ";"},
		{"rg", "--pre", "evil", "x"},
		{"rg", "-z", "x"},
		{"git", "push"},
		{"git", "-c", "core.pager=evil", "log"},
		{"git", "--config-env=PAGER=X", "log"},
		{"git", "log", "--ext-diff"},
		{"git"},
	}
	for _, cmd := range unsafe {
		assert.False(t, IsKnownSafeCommand(cmd), "expected unsafe: %v", cmd)
	}
}

func TestIsKnownSafeScript(t *testing.T) {
	assert.True(t, IsKnownSafeScript("ls -la"))
	assert.True(t, IsKnownSafeScript("ls && pwd"))
	assert.True(t, IsKnownSafeScript("grep foo file | wc -l"))
	assert.True(t, IsKnownSafeScript("cat 'my file.txt'"))
	assert.True(t, IsKnownSafeScript(`echo "hello world"; uname`))

	assert.False(t, IsKnownSafeScript(""))
	assert.False(t, IsKnownSafeScript("rm -rf /"))
	assert.False(t, IsKnownSafeScript("ls > /tmp/out"))
	assert.False(t, IsKnownSafeScript("ls; rm x"))
	assert.False(t, IsKnownSafeScript("echo $(whoami)"))
	assert.False(t, IsKnownSafeScript("echo `date`"))
	assert.False(t, IsKnownSafeScript("ls &"))
	assert.False(t, IsKnownSafeScript("FOO=bar ls"))
	assert.False(t, IsKnownSafeScript(`echo "$HOME"`))
}

func TestParsePlainCommands(t *testing.T) {
	cmds := ParsePlainCommands("ls -la && grep foo bar | wc -l")
	assert.Equal(t, [][]string{
		{"ls", "-la"},
		{"grep", "foo", "bar"},
		{"wc", "-l"},
	}, cmds)

	// Quoted segments concatenate into one word.
	cmds = ParsePlainCommands(`grep -g"*.py" src`)
	assert.Equal(t, [][]string{{"grep", "-g*.py", "src"}}, cmds)

	// Comments are skipped.
	cmds = ParsePlainCommands("ls # trailing comment")
	assert.Equal(t, [][]string{{"ls"}}, cmds)

	// Trailing operator is malformed.
	assert.Nil(t, ParsePlainCommands("ls &&"))
	// Leading operator is malformed.
	assert.Nil(t, ParsePlainCommands("&& ls"))
	// Unterminated quote.
	assert.Nil(t, ParsePlainCommands(`ls "unterminated`))
	// Redirection rejected.
	assert.Nil(t, ParsePlainCommands("ls < input"))
	// Subshell rejected.
	assert.Nil(t, ParsePlainCommands("(ls)"))
}
