// Package compiler implements spec.md §4.6: compile(ir, registry,
// initial_params) -> ExecutionGraph, grounded on the teacher's
// engine.New -> engine.NewWithRegistry -> graph.New construction sequence.
package compiler

import (
	"fmt"

	"github.com/pflowhq/pflow/internal/ir"
	"github.com/pflowhq/pflow/internal/nodes"
	"github.com/pflowhq/pflow/internal/obslog"
	"github.com/pflowhq/pflow/internal/registry"
	"github.com/pflowhq/pflow/internal/runtimeconfig"
	"github.com/pflowhq/pflow/internal/wrapper"
)

// ExecutionGraph is a fully compiled workflow: every node wrapped and ready
// to run, in execution order, plus the declared inputs/outputs and the
// effective resolution mode the Executor Service needs.
type ExecutionGraph struct {
	Workflow *ir.Workflow
	Mode     ir.ResolutionMode
	Nodes    []*wrapper.Wrapper // in execution order
}

// Factories maps a registered node type to a constructor for its inner
// Executor. This is deliberately separate from the descriptive
// registry.Registry used for validation: that registry only needs to know a
// node type's param/output shape, not how to build one.
type Factories map[string]nodes.Factory

// Compile runs spec.md §4.6's steps: resolve the effective mode, re-run the
// structural/graph/type-existence validator layers fail-fast, then
// instantiate and wrap every node in order.
func Compile(raw []byte, reg *registry.Registry, factories Factories, cfg *runtimeconfig.Config, logger *obslog.Logger) (*ExecutionGraph, []ir.ErrorRecord) {
	if errs := ir.Validate(raw, reg, nil, ir.ForDisplay); len(errs) > 0 {
		return nil, errs
	}

	w, err := ir.ParseWorkflow(raw)
	if err != nil {
		return nil, []ir.ErrorRecord{{
			Source:   ir.SourceCompile,
			Category: ir.CategorySchema,
			Message:  fmt.Sprintf("failed to decode workflow: %v", err),
		}}
	}

	mode := runtimeconfig.ResolveMode(w, cfg)

	// Layer 4 (node type registered) was already checked by ir.Validate above;
	// the only thing left to resolve here is whether an executor factory is
	// actually wired for that type, a compiler-local concern the descriptive
	// Registry doesn't track.
	wrapped := make([]*wrapper.Wrapper, 0, len(w.Nodes))
	for _, n := range w.Nodes {
		factory, ok := factories[n.Type]
		if !ok {
			return nil, []ir.ErrorRecord{{
				Source:   ir.SourceCompile,
				Category: ir.CategoryUnknownNodeType,
				Message:  fmt.Sprintf("node %q type %q is registered but has no executor factory wired", n.ID, n.Type),
				NodeID:   n.ID,
			}}
		}

		inner := factory()
		wrapped = append(wrapped, wrapper.New(n.ID, n.Type, n.Params, inner, mode, logger))
	}

	return &ExecutionGraph{Workflow: w, Mode: mode, Nodes: wrapped}, nil
}
