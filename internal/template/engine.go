package template

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Engine substitutes {{ variable }} placeholders in scenario step arguments
// and expectations. Variables come from the scenario store (values captured by
// earlier steps) and the resolved app configuration. Dotted names index into
// stored maps, so a step that stored a decoded JSON body as "user" can be
// referenced as {{ user.id }} later.
type Engine struct {
	pattern *regexp.Regexp
}

// New creates a template engine.
func New() *Engine {
	return &Engine{
		pattern: regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z0-9_]+)*)\s*\}\}`),
	}
}

// Replace walks a value and substitutes every placeholder from vars. Strings
// are rendered, maps and slices are walked recursively, everything else passes
// through unchanged. A placeholder with no matching variable is an error so a
// typo in a scenario fails that scenario instead of sending the literal
// braces to the target.
func (e *Engine) Replace(value interface{}, vars map[string]interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		return e.replaceString(v, vars)
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, val := range v {
			replaced, err := e.Replace(val, vars)
			if err != nil {
				return nil, fmt.Errorf("in key %q: %w", key, err)
			}
			result[key] = replaced
		}
		return result, nil
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, val := range v {
			replaced, err := e.Replace(val, vars)
			if err != nil {
				return nil, fmt.Errorf("at index %d: %w", i, err)
			}
			result[i] = replaced
		}
		return result, nil
	default:
		return value, nil
	}
}

// replaceString renders one string. When the string is exactly one
// placeholder the stored value is returned as-is, preserving its type, so
// {{ user }} can carry a whole decoded object into the next step.
func (e *Engine) replaceString(s string, vars map[string]interface{}) (interface{}, error) {
	if name, ok := e.wholePlaceholder(s); ok {
		value, found := lookup(vars, name)
		if !found {
			return nil, fmt.Errorf("unknown variable %q", name)
		}
		return value, nil
	}

	var missing []string
	result := e.pattern.ReplaceAllStringFunc(s, func(match string) string {
		name := e.pattern.FindStringSubmatch(match)[1]
		value, found := lookup(vars, name)
		if !found {
			missing = append(missing, name)
			return match
		}
		return stringify(value)
	})

	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("unknown variable(s): %s", strings.Join(missing, ", "))
	}
	return result, nil
}

// wholePlaceholder reports whether s consists of a single placeholder and
// nothing else, returning the variable name.
func (e *Engine) wholePlaceholder(s string) (string, bool) {
	match := e.pattern.FindStringSubmatchIndex(s)
	if match == nil || match[0] != 0 || match[1] != len(s) {
		return "", false
	}
	return s[match[2]:match[3]], true
}

// lookup resolves a possibly dotted name against the variable map.
func lookup(vars map[string]interface{}, name string) (interface{}, bool) {
	parts := strings.Split(name, ".")
	var current interface{} = vars
	for _, part := range parts {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		// YAML and JSON decode numbers as float64; render integers without
		// a fractional part.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ExtractVariables returns the sorted set of variable names referenced
// anywhere in a value.
func (e *Engine) ExtractVariables(value interface{}) []string {
	seen := make(map[string]bool)
	e.extract(value, seen)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Engine) extract(value interface{}, seen map[string]bool) {
	switch v := value.(type) {
	case string:
		for _, match := range e.pattern.FindAllStringSubmatch(v, -1) {
			seen[match[1]] = true
		}
	case map[string]interface{}:
		for _, val := range v {
			e.extract(val, seen)
		}
	case []interface{}:
		for _, val := range v {
			e.extract(val, seen)
		}
	}
}

// ValidateVars checks that every variable referenced by value resolves
// against vars, without performing the substitution.
func (e *Engine) ValidateVars(value interface{}, vars map[string]interface{}) error {
	var missing []string
	for _, name := range e.ExtractVariables(value) {
		if _, found := lookup(vars, name); !found {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("unknown variable(s): %s", strings.Join(missing, ", "))
	}
	return nil
}
