package ir

import (
	"fmt"
	"sort"

	"github.com/pflowhq/pflow/internal/registry"
	"github.com/pflowhq/pflow/internal/template"
)

// Mode selects how many errors Validate returns, per spec.md §9 Open
// Question 2. Every layer collects all its findings either way; ForRepair
// then truncates the list to the first 3 (the Repair Loop only ever acts on
// its first few errors per attempt); ForDisplay returns everything, for
// `pflow validate`.
type Mode int

const (
	ForRepair Mode = iota
	ForDisplay
)

const repairErrorCap = 3

// Validate runs all four validation layers of spec.md §4.1 in order,
// short-circuiting layers that depend on an earlier layer's success:
// Layer 2 (graph) and Layer 3/4 require a structurally valid, decoded
// Workflow, so a Layer 1 failure skips the rest.
//
// extractedParams, when non-nil, is the map of already-resolved workflow
// input values used to seed Layer 3's root-level Context. A nil
// extractedParams means params are not yet known (e.g. at save() time) and
// Layer 3 is skipped entirely, matching "Layer 3 is skipped when params are
// null" in spec.md §4.1.
func Validate(raw []byte, reg *registry.Registry, extractedParams map[string]any, mode Mode) []ErrorRecord {
	var all []ErrorRecord

	all = append(all, ValidateSchema(raw)...)
	if hasBlocking(all) {
		return capErrors(all, mode)
	}

	w, err := ParseWorkflow(raw)
	if err != nil {
		all = append(all, ErrorRecord{
			Source:   SourceValidation,
			Category: CategorySchema,
			Message:  fmt.Sprintf("failed to decode workflow: %v", err),
			Fixable:  true,
		})
		return capErrors(all, mode)
	}

	all = append(all, validateStructural(w)...)
	if hasBlocking(all) {
		return capErrors(all, mode)
	}

	all = append(all, ValidateLinearChain(w)...)
	if hasBlocking(all) {
		return capErrors(all, mode)
	}

	if extractedParams != nil {
		all = append(all, validateTemplates(w, reg, extractedParams)...)
	}

	if reg != nil {
		all = append(all, validateNodeTypes(w, reg)...)
	}

	return capErrors(all, mode)
}

func hasBlocking(records []ErrorRecord) bool {
	return len(records) > 0
}

func capErrors(records []ErrorRecord, mode Mode) []ErrorRecord {
	if mode == ForRepair && len(records) > repairErrorCap {
		return records[:repairErrorCap]
	}
	return records
}

// validateNodeTypes is spec.md §4.1 Layer 4: every node type must be
// registered.
func validateNodeTypes(w *Workflow, reg *registry.Registry) []ErrorRecord {
	var records []ErrorRecord
	for _, n := range w.Nodes {
		if _, ok := reg.Resolve(n.Type); ok {
			continue
		}
		suggestions := reg.Suggest(n.Type, 3)
		records = append(records, ErrorRecord{
			Source:      SourceValidation,
			Category:    CategoryUnknownNodeType,
			Message:     fmt.Sprintf("node %q has unknown type %q", n.ID, n.Type),
			NodeID:      n.ID,
			Fixable:     true,
			Suggestions: suggestions,
		})
	}
	return records
}

// workflowContext implements template.Context over a Workflow's declared
// inputs plus the simulated per-node output namespaces accumulated so far,
// for Layer 3's static template check (spec.md §4.1 Layer 3 / §4.5).
type workflowContext struct {
	w           *Workflow
	reg         *registry.Registry
	params      map[string]any
	upToNode    int // index in w.Nodes; only nodes before this one are visible
	nodeOutputs map[string]registry.Entry
}

func (c *workflowContext) HeadExists(head string) bool {
	if _, ok := c.w.Inputs[head]; ok {
		return true
	}
	for i := 0; i < c.upToNode; i++ {
		if c.w.Nodes[i].ID == head {
			return true
		}
	}
	return false
}

func (c *workflowContext) AvailableHeads() []string {
	heads := make([]string, 0, len(c.w.Inputs)+c.upToNode)
	for name := range c.w.Inputs {
		heads = append(heads, name)
	}
	for i := 0; i < c.upToNode; i++ {
		heads = append(heads, c.w.Nodes[i].ID)
	}
	sort.Strings(heads)
	return heads
}

func (c *workflowContext) Lookup(head string, steps []template.PathStep) (any, bool) {
	if in, ok := c.w.Inputs[head]; ok {
		if v, present := c.params[head]; present {
			return v, true
		}
		if in.HasDefault {
			return in.Default, true
		}
		return nil, false
	}

	for i := 0; i < c.upToNode; i++ {
		if c.w.Nodes[i].ID != head {
			continue
		}
		entry, ok := c.reg.Resolve(c.w.Nodes[i].Type)
		if !ok || entry.AnyOutput || len(entry.OutputSchema) == 0 {
			return struct{}{}, true
		}
		if len(steps) == 0 {
			return struct{}{}, true
		}
		if _, ok := entry.OutputSchema[steps[0].Key]; ok {
			return struct{}{}, true
		}
		return nil, false
	}
	return nil, false
}

// validateTemplates is spec.md §4.1 Layer 3: every `${path}` reference in
// every node's params, and every workflow output's source, must resolve its
// head to a declared input or a preceding node, and (for concrete output
// schemas) the remainder of the path must be a valid field.
func validateTemplates(w *Workflow, reg *registry.Registry, params map[string]any) []ErrorRecord {
	var records []ErrorRecord

	for i, n := range w.Nodes {
		ctx := &workflowContext{w: w, reg: reg, params: params, upToNode: i}
		for paramName, paramValue := range n.Params {
			records = append(records, checkValueTemplates(n.ID, paramName, paramValue, ctx)...)
		}
	}

	finalCtx := &workflowContext{w: w, reg: reg, params: params, upToNode: len(w.Nodes)}
	for outName, out := range w.Outputs {
		records = append(records, checkValueTemplates("", "output:"+outName, out.Source, finalCtx)...)
	}

	return records
}

func checkValueTemplates(nodeID, paramName string, value any, ctx *workflowContext) []ErrorRecord {
	var records []ErrorRecord

	switch v := value.(type) {
	case string:
		for _, path := range template.ExtractVariables(v) {
			head, steps, err := template.ParsePath(path)
			if err != nil {
				records = append(records, ErrorRecord{
					Source:   SourceValidation,
					Category: CategoryTemplateError,
					Message:  fmt.Sprintf("invalid template path %q: %v", path, err),
					NodeID:   nodeID,
					Fixable:  true,
				})
				continue
			}
			if _, ok := ctx.Lookup(head, steps); ok {
				continue
			}
			available := ctx.AvailableHeads()
			records = append(records, ErrorRecord{
				Source:          SourceValidation,
				Category:        CategoryTemplateError,
				Message:         fmt.Sprintf("node %q param %q references unresolvable variable ${%s}", nodeID, paramName, path),
				NodeID:          nodeID,
				Fixable:         true,
				AvailableFields: available,
			}.withSuggestions(head, available))
		}
	case []any:
		for idx, elem := range v {
			records = append(records, checkValueTemplates(nodeID, fmt.Sprintf("%s[%d]", paramName, idx), elem, ctx)...)
		}
	case map[string]any:
		for k, elem := range v {
			records = append(records, checkValueTemplates(nodeID, fmt.Sprintf("%s.%s", paramName, k), elem, ctx)...)
		}
	}

	return records
}

func (e ErrorRecord) withSuggestions(head string, available []string) ErrorRecord {
	best := template.SuggestHeads(head, available, 3)
	if len(best) > 0 {
		e.Suggestions = best
	}
	return e
}
