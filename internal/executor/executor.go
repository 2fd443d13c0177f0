// Package executor implements the Executor Service of spec.md §4.7:
// execute(graph, params) -> ExecutionResult, grounded on the teacher's
// Engine.Execute sequential node loop with google/uuid execution IDs and
// otel span instrumentation in place of the teacher's crypto/rand hex ids.
package executor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pflowhq/pflow/internal/compiler"
	"github.com/pflowhq/pflow/internal/ir"
	"github.com/pflowhq/pflow/internal/obslog"
	"github.com/pflowhq/pflow/internal/store"
	"github.com/pflowhq/pflow/internal/telemetry"
	"github.com/pflowhq/pflow/internal/template"
	"github.com/pflowhq/pflow/internal/tracefile"
)

// ExecutionState is the __execution__ bookkeeping record spec.md §4.7 step 1
// initializes and step 2 updates as nodes complete.
type ExecutionState struct {
	CompletedNodes []string          `json:"completed_nodes"`
	FailedNode     *string           `json:"failed_node"`
	NodeActions    map[string]string `json:"node_actions"`
}

// Result is the ExecutionResult spec.md §4.7/§4.9 describes.
type Result struct {
	ExecutionID string
	IRVersion   string
	Status      ir.Status
	Outputs     map[string]any
	Errors      []ir.ErrorRecord
	Warnings    []ir.ErrorRecord
	TracePath   string
}

// Options configures one Execute call.
type Options struct {
	TraceDir         string                       // directory trace files are written under; empty disables writing
	ProgressCallback func() bool                  // returns true to request cancellation between nodes
	OnNodeEvent      func(tracefile.NodeEvent)    // called synchronously after each node completes, for live progress views
	RepairAttempts   []tracefile.RepairAttempt    // prior Repair Loop attempts to carry into this execution's trace, per spec.md §4.8 step 5
}

// Execute runs graph.Nodes in order against a fresh shared store seeded with
// params merged over declared input defaults, per spec.md §4.7.
func Execute(ctx context.Context, graph *compiler.ExecutionGraph, params map[string]any, opts Options, logger *obslog.Logger, tel *telemetry.Telemetry) *Result {
	executionID := uuid.NewString()
	irVersion := graph.Workflow.IRVersion

	if logger == nil {
		logger = obslog.New(obslog.Config{Level: "error"})
	}
	runLogger := logger.WithExecutionID(executionID)

	ctx, span := tel.StartExecution(ctx, executionID)
	defer span.End()

	root := store.NewRoot()
	inputs := mergeInputs(graph.Workflow, params)
	root.SetInputs(inputs)

	state := &ExecutionState{NodeActions: make(map[string]string)}
	root.RootSet(ir.KeyExecution, state)

	var events []tracefile.NodeEvent
	var nodeErr *ir.ErrorRecord

	for _, w := range graph.Nodes {
		if opts.ProgressCallback != nil && opts.ProgressCallback() {
			nodeErr = &ir.ErrorRecord{
				Source:   ir.SourceRuntime,
				Category: ir.CategoryCancelled,
				Message:  "execution cancelled by progress callback",
			}
			break
		}

		nodeCtx, nodeSpan := tel.StartNode(ctx, w.NodeID, w.NodeType)
		startedAt := time.Now().UTC()
		res := w.Run(nodeCtx, root)
		endedAt := time.Now().UTC()
		nodeSpan.End()

		event := tracefile.NodeEvent{
			NodeID:     w.NodeID,
			NodeType:   w.NodeType,
			StartedAt:  startedAt.Format(time.RFC3339Nano),
			EndedAt:    endedAt.Format(time.RFC3339Nano),
			DurationMS: res.DurationMS,
			Failed:     res.Err != nil,
		}
		events = append(events, event)
		if opts.OnNodeEvent != nil {
			opts.OnNodeEvent(event)
		}

		if res.Err != nil {
			nodeErr = res.Err
			state.FailedNode = &w.NodeID
			runLogger.WithNodeID(w.NodeID).WithError(res.Err).Error("node failed, stopping execution")
			break
		}

		state.CompletedNodes = append(state.CompletedNodes, w.NodeID)
	}

	outputs, outputErrs := resolveOutputs(graph.Workflow, root)

	var errs []ir.ErrorRecord
	if nodeErr != nil {
		errs = append(errs, *nodeErr)
	}
	errs = append(errs, outputErrs...)

	warnings := warningsOf(root)
	templateErrs := templateErrorsOf(root)

	_, nonRepairable := root.RootGet(ir.KeyNonRepairableError)

	status := determineStatus(errs, warnings, templateErrs, nonRepairable)

	result := &Result{
		ExecutionID: executionID,
		IRVersion:   irVersion,
		Status:      status,
		Outputs:     outputs,
		Errors:      errs,
		Warnings:    warnings,
	}

	if opts.TraceDir != "" {
		path, err := tracefile.Write(tracefile.DefaultPath(opts.TraceDir, executionID), tracefile.Document{
			ExecutionID:    executionID,
			IRVersion:      irVersion,
			Mode:           graph.Mode,
			Status:         status,
			Nodes:          events,
			Errors:         errs,
			Warnings:       warnings,
			RepairAttempts: opts.RepairAttempts,
		})
		if err == nil {
			result.TracePath = path
		} else {
			runLogger.WithError(err).Error("failed to write trace file")
		}
	}

	tel.RecordExecution(string(status))
	return result
}

// mergeInputs merges provided params over each declared input's default,
// per spec.md §4.7 step 1.
func mergeInputs(w *ir.Workflow, params map[string]any) map[string]any {
	inputs := make(map[string]any, len(w.Inputs))
	for name, spec := range w.Inputs {
		if spec.HasDefault {
			inputs[name] = spec.Default
		}
	}
	for name, v := range params {
		inputs[name] = v
	}
	return inputs
}

// resolveOutputs resolves each declared workflow output's template against
// the final shared store, per spec.md §4.7 step 3.
func resolveOutputs(w *ir.Workflow, root *store.Root) (map[string]any, []ir.ErrorRecord) {
	outputs := make(map[string]any, len(w.Outputs))
	var errs []ir.ErrorRecord

	ctx := root.RootContextFor()
	for name, spec := range w.Outputs {
		resolved, ok := template.Resolve(spec.Source, ctx)
		if !ok || template.IsUnresolved(spec.Source, resolved) {
			errs = append(errs, ir.ErrorRecord{
				Source:   ir.SourceRuntime,
				Category: ir.CategoryTemplateError,
				Message:  "output " + name + " failed to resolve: " + spec.Source,
				Fixable:  true,
			})
			continue
		}
		outputs[name] = resolved
	}
	return outputs, errs
}

func warningsOf(root *store.Root) []ir.ErrorRecord {
	raw, _ := root.RootGet(ir.KeyWarnings)
	records, _ := raw.([]ir.ErrorRecord)
	return records
}

func templateErrorsOf(root *store.Root) []ir.ErrorRecord {
	raw, _ := root.RootGet(ir.KeyTemplateErrors)
	records, _ := raw.([]ir.ErrorRecord)
	return records
}

// determineStatus is spec.md §4.7 step 4's tri-state determination.
func determineStatus(errs, warnings, templateErrs []ir.ErrorRecord, nonRepairable bool) ir.Status {
	if len(errs) > 0 || nonRepairable {
		return ir.StatusFailed
	}
	if len(warnings) > 0 || len(templateErrs) > 0 {
		return ir.StatusDegraded
	}
	return ir.StatusSuccess
}
