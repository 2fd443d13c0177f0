// Package template implements the ${path} extraction/resolution/validation
// subsystem described in spec.md §4.3.
//
// Known limitation (spec.md §9 Open Question 1): no escape syntax is defined
// for a literal "${...}" inside IR. Any "${...}" is always parsed as a
// variable reference. A future \${x} or ${{x}} escape is out of scope here.
package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// tokenPattern matches a single ${path} occurrence. path is a dotted/indexed
// chain: HEAD ('.' IDENT | '[' INT ']')*
var tokenPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_-]*(?:\.[A-Za-z_][A-Za-z0-9_-]*|\[[0-9]+\])*)\}`)

// simplePattern matches a string that is EXACTLY one ${path} token with
// nothing else around it — the "simple template" case that preserves type.
var simplePattern = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_-]*(?:\.[A-Za-z_][A-Za-z0-9_-]*|\[[0-9]+\])*)\}$`)

// PathStep is one segment of a resolved path: either a map-key access or a
// list-index access.
type PathStep struct {
	Key     string
	Index   int
	IsIndex bool
}

// ExtractVariables returns the set of all ${path} occurrences in a string,
// deduplicated. An empty result means the string has no templating at all.
func ExtractVariables(s string) []string {
	matches := tokenPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		path := m[1]
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}
	return out
}

// ExtractVariableSet is ExtractVariables as a set, for intersection tests.
func ExtractVariableSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, v := range ExtractVariables(s) {
		set[v] = true
	}
	return set
}

// IsSimple reports whether s is exactly one ${path} token with nothing else
// around it — the case that preserves the looked-up value's original type
// rather than stringifying it.
func IsSimple(s string) (path string, ok bool) {
	m := simplePattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParsePath splits a dotted/indexed path into its head and remaining steps.
// HEAD is an identifier; the remainder is a sequence of .ident or [int]
// accessors.
func ParsePath(path string) (head string, steps []PathStep, err error) {
	head = path
	if end := strings.IndexAny(path, ".["); end >= 0 {
		head = path[:end]
	}
	if head == "" {
		return "", nil, fmt.Errorf("invalid path %q: head must be a bare identifier", path)
	}

	rest := path[len(head):]
	for len(rest) > 0 {
		switch rest[0] {
		case '.':
			rest = rest[1:]
			end := strings.IndexAny(rest, ".[")
			var ident string
			if end < 0 {
				ident = rest
				rest = ""
			} else {
				ident = rest[:end]
				rest = rest[end:]
			}
			if ident == "" {
				return "", nil, fmt.Errorf("invalid path %q: empty segment", path)
			}
			steps = append(steps, PathStep{Key: ident})
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return "", nil, fmt.Errorf("invalid path %q: unterminated index", path)
			}
			numStr := rest[1:end]
			n, convErr := strconv.Atoi(numStr)
			if convErr != nil || n < 0 {
				return "", nil, fmt.Errorf("invalid path %q: index must be a non-negative integer", path)
			}
			steps = append(steps, PathStep{Index: n, IsIndex: true})
			rest = rest[end+1:]
		default:
			return "", nil, fmt.Errorf("invalid path %q: unexpected character %q", path, rest[0])
		}
	}
	return head, steps, nil
}

// Context is the lookup surface templates resolve against: a root view over
// the shared store (from the perspective of the executing node), as
// described in spec.md §4.5 step 1 ("root view, since templates reference
// sibling namespaces").
type Context interface {
	// Lookup returns the value addressed by head (an input name or node id)
	// and the rest of the path, and whether it resolved.
	Lookup(head string, steps []PathStep) (value any, ok bool)
	// HeadExists reports whether head alone (an input or a preceding node id)
	// is visible in this context, for variable_exists / available-fields use.
	HeadExists(head string) bool
	// AvailableHeads returns all head-level keys visible in this context, for
	// building "available_fields" / "available_context_keys" diagnostics.
	AvailableHeads() []string
}

// Resolve implements spec.md §4.3's resolve(value, context) -> (resolved,
// wasResolved). Values are walked recursively for lists and maps; each leaf
// is resolved independently (no ordering dependence between siblings).
func Resolve(value any, ctx Context) (resolved any, wasResolved bool) {
	switch v := value.(type) {
	case string:
		return resolveString(v, ctx)
	case []any:
		out := make([]any, len(v))
		allResolved := true
		for i, elem := range v {
			r, ok := Resolve(elem, ctx)
			out[i] = r
			if !ok {
				allResolved = false
			}
		}
		return out, allResolved
	case map[string]any:
		out := make(map[string]any, len(v))
		allResolved := true
		for k, elem := range v {
			r, ok := Resolve(elem, ctx)
			out[k] = r
			if !ok {
				allResolved = false
			}
		}
		return out, allResolved
	default:
		return value, true
	}
}

func resolveString(s string, ctx Context) (any, bool) {
	if path, ok := IsSimple(s); ok {
		head, steps, err := ParsePath(path)
		if err != nil {
			return s, false
		}
		val, found := ctx.Lookup(head, steps)
		if !found {
			return s, false
		}
		return val, true
	}

	vars := ExtractVariables(s)
	if len(vars) == 0 {
		return s, true
	}

	allResolved := true
	out := tokenPattern.ReplaceAllStringFunc(s, func(match string) string {
		sub := tokenPattern.FindStringSubmatch(match)
		path := sub[1]
		head, steps, err := ParsePath(path)
		if err != nil {
			allResolved = false
			return match
		}
		val, found := ctx.Lookup(head, steps)
		if !found {
			allResolved = false
			return match
		}
		return fmt.Sprintf("%v", val)
	})
	return out, allResolved
}

// Navigate walks steps into value, as the runtime counterpart of ParsePath:
// Context implementations use it once they've located a head's raw value, to
// drill into the remainder of the path.
func Navigate(value any, steps []PathStep) (any, bool) {
	cur := value
	for _, s := range steps {
		if s.IsIndex {
			arr, ok := cur.([]any)
			if !ok || s.Index < 0 || s.Index >= len(arr) {
				return nil, false
			}
			cur = arr[s.Index]
			continue
		}
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[s.Key]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// VariableExists tests resolvability of a single path without substitution,
// per spec.md §4.3's variable_exists(path, context) -> bool.
func VariableExists(path string, ctx Context) bool {
	head, steps, err := ParsePath(path)
	if err != nil {
		return false
	}
	_, ok := ctx.Lookup(head, steps)
	return ok
}
