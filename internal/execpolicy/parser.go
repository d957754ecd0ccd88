package execpolicy

import (
	"fmt"

	"go.starlark.net/starlark"
)

// ParsePolicy executes Starlark policy source and collects the rules it
// declares via the prefix_rule() builtin:
//
//	prefix_rule(pattern=["git", ["push", "fetch"]], decision="prompt")
//
// Pattern elements are either a literal token or a list of alternatives.
func ParsePolicy(filename, source string) (*Policy, error) {
	policy := NewPolicy()

	prefixRule := starlark.NewBuiltin("prefix_rule", func(
		_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple,
	) (starlark.Value, error) {
		var patternVal *starlark.List
		var decisionStr string

		if err := starlark.UnpackArgs(fn.Name(), args, kwargs,
			"pattern", &patternVal,
			"decision?", &decisionStr,
		); err != nil {
			return nil, err
		}

		if decisionStr == "" {
			decisionStr = "allow"
		}
		decision, err := ParseDecision(decisionStr)
		if err != nil {
			return nil, err
		}

		pattern, err := patternFromStarlark(patternVal)
		if err != nil {
			return nil, err
		}
		if len(pattern) == 0 {
			return nil, fmt.Errorf("prefix_rule pattern must not be empty")
		}

		policy.AddRule(&PrefixRule{Pattern: pattern, Decision: decision})
		return starlark.None, nil
	})

	thread := &starlark.Thread{Name: filename}
	predeclared := starlark.StringDict{"prefix_rule": prefixRule}

	if _, err := starlark.ExecFile(thread, filename, source, predeclared); err != nil {
		return nil, fmt.Errorf("exec policy %s: %w", filename, err)
	}
	return policy, nil
}

func patternFromStarlark(list *starlark.List) ([][]string, error) {
	pattern := make([][]string, 0, list.Len())

	iter := list.Iterate()
	defer iter.Done()
	var val starlark.Value
	for iter.Next(&val) {
		switch v := val.(type) {
		case starlark.String:
			if v == "" {
				return nil, fmt.Errorf("pattern token must not be empty")
			}
			pattern = append(pattern, []string{string(v)})
		case *starlark.List:
			alts, err := stringsFromStarlark(v)
			if err != nil {
				return nil, err
			}
			if len(alts) == 0 {
				return nil, fmt.Errorf("alternative list must not be empty")
			}
			pattern = append(pattern, alts)
		default:
			return nil, fmt.Errorf("pattern element must be string or list of strings, got %s", val.Type())
		}
	}
	return pattern, nil
}

func stringsFromStarlark(list *starlark.List) ([]string, error) {
	result := make([]string, 0, list.Len())
	iter := list.Iterate()
	defer iter.Done()
	var val starlark.Value
	for iter.Next(&val) {
		s, ok := val.(starlark.String)
		if !ok {
			return nil, fmt.Errorf("expected string, got %s", val.Type())
		}
		if s == "" {
			return nil, fmt.Errorf("alternative must not be empty")
		}
		result = append(result, string(s))
	}
	return result, nil
}
