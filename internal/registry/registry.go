// Package registry maps node_type identifiers to RegistryEntry capability
// descriptors (params, outputs, schema), per spec.md §4.2. It is read-only at
// runtime: entries are registered once at startup, then only looked up.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pflowhq/pflow/internal/fuzzy"
)

// FieldSchema describes one declared param or output field.
type FieldSchema struct {
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Entry is a RegistryEntry: the contract a registered node type promises to
// honor. OutputSchema's presence (non-empty) lets Layer 3 check the
// remainder of a template path at compile time; an "Any"-typed output
// (OutputSchema == nil, AnyOutput == true) means only the head of a
// referencing path can be checked ahead of time.
type Entry struct {
	Type         string                 `json:"type"`
	Module       string                 `json:"module"`
	ClassName    string                 `json:"class_name"`
	Description  string                 `json:"description"`
	ParamSchema  map[string]FieldSchema `json:"param_schema"`
	OutputSchema map[string]FieldSchema `json:"output_schema"`
	AnyOutput    bool                   `json:"any_output"`
}

// Registry is the read-only-at-runtime type->Entry map grounded on the
// teacher's pkg/executor/registry.go thread-safe registration pattern.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	order   []string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds an entry. Returns an error if the type is already
// registered — the registry never silently overwrites a capability
// descriptor.
func (r *Registry) Register(e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[e.Type]; exists {
		return fmt.Errorf("registry: type %q already registered", e.Type)
	}
	r.entries[e.Type] = e
	r.order = append(r.order, e.Type)
	return nil
}

// MustRegister registers an entry and panics on error, for use in package
// init-time registration where a duplicate type is a programming error.
func (r *Registry) MustRegister(e Entry) {
	if err := r.Register(e); err != nil {
		panic(err)
	}
}

// Load returns all registered entries in registration order.
func (r *Registry) Load() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.entries[t])
	}
	return out
}

// Resolve looks up a single type. The second return is false if the type is
// unknown; Suggest builds the fuzzy suggestion list separately.
func (r *Registry) Resolve(nodeType string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[nodeType]
	return e, ok
}

// Search returns all registered type ids whose name contains pattern
// (case-insensitive substring match).
func (r *Registry) Search(pattern string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pattern = strings.ToLower(pattern)
	var out []string
	for _, t := range r.order {
		if strings.Contains(strings.ToLower(t), pattern) {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// Describe returns the entries for the given type ids, skipping any that
// aren't registered.
func (r *Registry) Describe(types []string) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(types))
	for _, t := range types {
		if e, ok := r.entries[t]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Suggest returns up to k registered type ids ranked by edit-distance
// closeness to query, for "did you mean" messages on an unknown node type.
func (r *Registry) Suggest(query string, k int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		name string
		dist int
	}
	scoredList := make([]scored, 0, len(r.order))
	for _, t := range r.order {
		scoredList = append(scoredList, scored{t, fuzzy.Distance(query, t)})
	}
	sort.Slice(scoredList, func(i, j int) bool {
		if scoredList[i].dist != scoredList[j].dist {
			return scoredList[i].dist < scoredList[j].dist
		}
		return scoredList[i].name < scoredList[j].name
	})

	if k > len(scoredList) {
		k = len(scoredList)
	}
	out := make([]string, 0, k)
	for _, s := range scoredList[:k] {
		out = append(out, s.name)
	}
	return out
}
