// Package execenv filters the environment handed to tool subprocesses.
//
// Worker processes hold model API credentials in their environment.
// Shell commands spawned on behalf of the model must not inherit them,
// so the tool handler derives a filtered environment through a Policy
// before spawning.
package execenv

import (
	"os"
	"sort"
	"strings"
)

// Inherit selects the starting variable set for a derived environment.
type Inherit string

const (
	// InheritAll starts from the full worker environment.
	InheritAll Inherit = "all"
	// InheritNone starts empty.
	InheritNone Inherit = "none"
	// InheritCore keeps only the platform essentials (HOME, PATH, ...).
	InheritCore Inherit = "core"
)

var coreVars = map[string]bool{
	"HOME":     true,
	"LANG":     true,
	"LOGNAME":  true,
	"PATH":     true,
	"SHELL":    true,
	"TERM":     true,
	"TMPDIR":   true,
	"USER":     true,
	"USERNAME": true,
}

// Policy describes how to derive a subprocess environment. Derivation
// runs in order: pick the inherited set, drop credential-looking names
// unless KeepCredentialVars is set, drop Exclude matches, insert Set
// overrides, then restrict to IncludeOnly matches if any are given.
//
// Exclude and IncludeOnly patterns support * and ? wildcards and match
// case-insensitively.
type Policy struct {
	Inherit            Inherit           `json:"inherit,omitempty"`
	KeepCredentialVars bool              `json:"keep_credential_vars,omitempty"`
	Exclude            []string          `json:"exclude,omitempty"`
	Set                map[string]string `json:"set,omitempty"`
	IncludeOnly        []string          `json:"include_only,omitempty"`
}

// credentialPatterns cover the common naming conventions for secrets.
var credentialPatterns = []string{"*KEY*", "*SECRET*", "*TOKEN*"}

// DefaultPolicy inherits everything except credential-looking variables.
func DefaultPolicy() Policy {
	return Policy{Inherit: InheritAll}
}

// Derive builds a subprocess environment from the worker's own
// environment, in the os/exec Cmd.Env format.
func Derive(policy Policy) []string {
	vars := make(map[string]string)
	for _, entry := range os.Environ() {
		if k, v, ok := strings.Cut(entry, "="); ok {
			vars[k] = v
		}
	}
	return format(DeriveFrom(vars, policy))
}

// DeriveFrom applies the policy to an explicit variable set.
func DeriveFrom(vars map[string]string, policy Policy) map[string]string {
	out := make(map[string]string)

	inherit := policy.Inherit
	if inherit == "" {
		inherit = InheritAll
	}
	switch inherit {
	case InheritNone:
	case InheritCore:
		for k, v := range vars {
			if coreVars[k] {
				out[k] = v
			}
		}
	default:
		for k, v := range vars {
			out[k] = v
		}
	}

	if !policy.KeepCredentialVars {
		for k := range out {
			if matchesAny(k, credentialPatterns) {
				delete(out, k)
			}
		}
	}

	for k := range out {
		if matchesAny(k, policy.Exclude) {
			delete(out, k)
		}
	}

	for k, v := range policy.Set {
		out[k] = v
	}

	if len(policy.IncludeOnly) > 0 {
		for k := range out {
			if !matchesAny(k, policy.IncludeOnly) {
				delete(out, k)
			}
		}
	}

	return out
}

func format(vars map[string]string) []string {
	entries := make([]string, 0, len(vars))
	for k, v := range vars {
		entries = append(entries, k+"="+v)
	}
	sort.Strings(entries)
	return entries
}

func matchesAny(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range patterns {
		if wildcardMatch(lower, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// wildcardMatch matches s against pattern where * spans any run of
// characters and ? matches exactly one. Both inputs are pre-lowercased.
func wildcardMatch(s, pattern string) bool {
	// si/pi walk the inputs; star/starMatch remember the last * so the
	// match can backtrack and let it absorb one more character.
	si, pi := 0, 0
	star, starMatch := -1, 0
	for si < len(s) {
		switch {
		case pi < len(pattern) && (pattern[pi] == '?' || pattern[pi] == s[si]):
			si++
			pi++
		case pi < len(pattern) && pattern[pi] == '*':
			star = pi
			starMatch = si
			pi++
		case star >= 0:
			pi = star + 1
			starMatch++
			si = starMatch
		default:
			return false
		}
	}
	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}
