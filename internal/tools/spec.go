// Package tools provides tool specifications, the handler registry, and the
// invocation types shared between the workflow and the tool activity.
package tools

// Default timeouts in milliseconds.
const (
	DefaultShellTimeoutMs    = 10_000  // 10s
	DefaultReadFileTimeoutMs = 30_000  // 30s
	DefaultToolTimeoutMs     = 120_000 // 2min fallback for tools without a default
)

// ToolSpec defines the specification for a tool, sent to the model.
type ToolSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters"`

	// DefaultTimeoutMs is the default StartToCloseTimeout for this tool's
	// activity when the model does not provide a timeout_ms argument.
	DefaultTimeoutMs int64 `json:"-"` // not sent to the model
}

// ToolParameter defines a parameter for a tool.
type ToolParameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// NewShellToolSpec creates the specification for the shell tool.
func NewShellToolSpec() ToolSpec {
	return ToolSpec{
		Name:        "shell",
		Description: "Execute a shell command and return the output. Use this to run bash commands, list files, read command output, etc.",
		Parameters: []ToolParameter{
			{
				Name:        "command",
				Type:        "string",
				Description: "The shell command to execute (will be run with bash -c)",
				Required:    true,
			},
			{
				Name:        "timeout_ms",
				Type:        "number",
				Description: "The timeout for the command in milliseconds. Defaults to 10000 (10s). Use longer timeouts for builds, installs, or test suites.",
				Required:    false,
			},
		},
		DefaultTimeoutMs: DefaultShellTimeoutMs,
	}
}

// NewReadFileToolSpec creates the specification for the read_file tool.
func NewReadFileToolSpec() ToolSpec {
	return ToolSpec{
		Name:        "read_file",
		Description: "Read the contents of a file. Returns the file content with line numbers.",
		Parameters: []ToolParameter{
			{
				Name:        "path",
				Type:        "string",
				Description: "The path to the file to read",
				Required:    true,
			},
			{
				Name:        "offset",
				Type:        "integer",
				Description: "Starting line number (0-indexed, optional)",
				Required:    false,
			},
			{
				Name:        "limit",
				Type:        "integer",
				Description: "Maximum number of lines to read (optional)",
				Required:    false,
			},
		},
		DefaultTimeoutMs: DefaultReadFileTimeoutMs,
	}
}

// SpecsFor returns the specs for the named tools, in a stable order.
// Unknown names are skipped. An empty list enables the full set.
func SpecsFor(enabled []string) []ToolSpec {
	all := []ToolSpec{NewShellToolSpec(), NewReadFileToolSpec()}
	if len(enabled) == 0 {
		return all
	}

	want := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		want[name] = true
	}
	specs := make([]ToolSpec, 0, len(all))
	for _, spec := range all {
		if want[spec.Name] {
			specs = append(specs, spec)
		}
	}
	return specs
}
