// Package execpolicy evaluates shell commands against Starlark-defined
// prefix rules. The approval gate consults it under the on_request policy:
// forbidden commands are denied without prompting, allowed commands execute
// without prompting, everything else falls through to the normal prompt.
package execpolicy

import (
	"fmt"
	"strings"
)

// Decision is the outcome of evaluating a command. Decisions are ordered
// Allow < Prompt < Forbidden; when several rules match, the longest pattern
// wins and ties resolve to the higher decision.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionPrompt
	DecisionForbidden
)

// String returns the string representation of a Decision.
func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionPrompt:
		return "prompt"
	case DecisionForbidden:
		return "forbidden"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// ParseDecision parses "allow", "prompt" or "forbidden" (case-insensitive).
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(s) {
	case "allow":
		return DecisionAllow, nil
	case "prompt":
		return DecisionPrompt, nil
	case "forbidden":
		return DecisionForbidden, nil
	default:
		return DecisionAllow, fmt.Errorf("invalid decision %q: must be allow, prompt, or forbidden", s)
	}
}

// PrefixRule matches commands whose leading tokens match Pattern. Each
// pattern token is a set of accepted alternatives.
type PrefixRule struct {
	Pattern  [][]string
	Decision Decision
}

func (r *PrefixRule) matches(command []string) bool {
	if len(command) < len(r.Pattern) {
		return false
	}
	for i, alts := range r.Pattern {
		ok := false
		for _, alt := range alts {
			if command[i] == alt {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// Policy is an ordered collection of prefix rules.
type Policy struct {
	rules []*PrefixRule
}

// NewPolicy returns an empty policy.
func NewPolicy() *Policy {
	return &Policy{}
}

// AddRule appends a rule.
func (p *Policy) AddRule(rule *PrefixRule) {
	p.rules = append(p.rules, rule)
}

// Len returns the number of rules.
func (p *Policy) Len() int {
	return len(p.rules)
}

// Evaluate returns the decision for command. The second return is false
// when no rule matches.
func (p *Policy) Evaluate(command []string) (Decision, bool) {
	best := DecisionAllow
	bestLen := -1
	for _, rule := range p.rules {
		if !rule.matches(command) {
			continue
		}
		if len(rule.Pattern) > bestLen {
			best = rule.Decision
			bestLen = len(rule.Pattern)
		} else if len(rule.Pattern) == bestLen && rule.Decision > best {
			best = rule.Decision
		}
	}
	if bestLen < 0 {
		return DecisionPrompt, false
	}
	return best, true
}
