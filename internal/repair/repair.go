// Package repair implements the Repair Loop of spec.md §4.8: when an
// execution ends FAILED and the caller opted in, hand the failing IR and its
// error records to a Planner collaborator, and if it proposes a change,
// re-validate, recompile, and re-execute from a fresh shared store. Capped
// at 3 attempts, grounded on the teacher's engine retry/backoff shape in
// pkg/engine (sequential attempt loop, one terminal outcome) adapted from a
// fixed-delay retry to a planner-in-the-loop patch cycle.
package repair

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pflowhq/pflow/internal/compiler"
	"github.com/pflowhq/pflow/internal/executor"
	"github.com/pflowhq/pflow/internal/ir"
	"github.com/pflowhq/pflow/internal/obslog"
	"github.com/pflowhq/pflow/internal/planner"
	"github.com/pflowhq/pflow/internal/registry"
	"github.com/pflowhq/pflow/internal/runtimeconfig"
	"github.com/pflowhq/pflow/internal/telemetry"
	"github.com/pflowhq/pflow/internal/tracefile"
)

// MaxAttempts is the hard cap spec.md §4.8 step 4 names.
const MaxAttempts = 3

// Attempt is one repair cycle's outcome, the record spec.md §4.8 step 5
// says is emitted into the trace.
type Attempt struct {
	Number    int
	Errors    []ir.ErrorRecord
	Declined  bool
	Identical bool
	Result    *executor.Result
}

// Options configures one repaired run.
type Options struct {
	Factories   compiler.Factories
	Config      *runtimeconfig.Config
	Logger      *obslog.Logger
	Telemetry   *telemetry.Telemetry
	TraceDir    string
	OnNodeEvent func(tracefile.NodeEvent)
}

// Outcome is the final state of a (possibly repaired) run.
type Outcome struct {
	Result         *executor.Result
	Attempts       []Attempt
	NonRepairable  bool
}

// Run executes raw once, and if it fails, repeatedly asks p for a patch and
// re-executes, up to MaxAttempts times. Each re-execution starts from a
// fresh shared store — partial progress from a prior attempt is never
// replayed, per spec.md §4.8 step 5.
func Run(ctx context.Context, raw []byte, params map[string]any, reg *registry.Registry, p planner.Planner, opts Options) Outcome {
	graph, errs := compiler.Compile(raw, reg, opts.Factories, opts.Config, opts.Logger)
	if len(errs) > 0 {
		return Outcome{Result: &executor.Result{Status: ir.StatusFailed, Errors: errs}, NonRepairable: true}
	}

	var history []tracefile.RepairAttempt
	var lastEvents []tracefile.NodeEvent
	execute := func(g *compiler.ExecutionGraph) *executor.Result {
		lastEvents = nil
		return executor.Execute(ctx, g, params, executor.Options{
			TraceDir: opts.TraceDir,
			OnNodeEvent: func(e tracefile.NodeEvent) {
				lastEvents = append(lastEvents, e)
				if opts.OnNodeEvent != nil {
					opts.OnNodeEvent(e)
				}
			},
			RepairAttempts: history,
		}, opts.Logger, opts.Telemetry)
	}

	result := execute(graph)

	current := raw
	var attempts []Attempt

	for attemptNum := 1; result.Status == ir.StatusFailed && attemptNum <= MaxAttempts; attemptNum++ {
		// The planner sees at most 3 errors per attempt, the ForRepair cap.
		planErrs := result.Errors
		if len(planErrs) > 3 {
			planErrs = planErrs[:3]
		}
		patched, err := p.Patch(ctx, current, planErrs)
		if err != nil {
			attempts = append(attempts, Attempt{Number: attemptNum, Errors: result.Errors, Declined: true, Result: result})
			history = append(history, tracefile.RepairAttempt{Attempt: attemptNum, Errors: result.Errors, Declined: true})
			markNonRepairable(result, "planner declined to propose a patch: "+err.Error())
			rewriteTrace(opts.TraceDir, graph, result, lastEvents, history)
			return Outcome{Result: result, Attempts: attempts, NonRepairable: true}
		}

		if bytes.Equal(bytes.TrimSpace(patched), bytes.TrimSpace(current)) {
			attempts = append(attempts, Attempt{Number: attemptNum, Errors: result.Errors, Identical: true, Result: result})
			history = append(history, tracefile.RepairAttempt{Attempt: attemptNum, Errors: result.Errors, Identical: true})
			markNonRepairable(result, "planner proposed a patch identical to the current workflow")
			rewriteTrace(opts.TraceDir, graph, result, lastEvents, history)
			return Outcome{Result: result, Attempts: attempts, NonRepairable: true}
		}

		patchedGraph, errs := compiler.Compile(patched, reg, opts.Factories, opts.Config, opts.Logger)
		if len(errs) > 0 {
			result = &executor.Result{Status: ir.StatusFailed, Errors: errs}
			attempts = append(attempts, Attempt{Number: attemptNum, Errors: errs, Result: result})
			history = append(history, tracefile.RepairAttempt{Attempt: attemptNum, Errors: errs})
			current = patched
			continue
		}

		graph = patchedGraph
		current = patched
		result = execute(graph)
		attempts = append(attempts, Attempt{Number: attemptNum, Errors: result.Errors, Result: result})
		history = append(history, tracefile.RepairAttempt{Attempt: attemptNum, Errors: result.Errors})
	}

	exhausted := result.Status == ir.StatusFailed && len(attempts) >= MaxAttempts
	if exhausted {
		markNonRepairable(result, fmt.Sprintf("exhausted %d repair attempts without a passing execution", MaxAttempts))
	}
	if len(attempts) > 0 {
		rewriteTrace(opts.TraceDir, graph, result, lastEvents, history)
	}
	return Outcome{Result: result, Attempts: attempts, NonRepairable: exhausted}
}

// rewriteTrace re-writes the trace file for result's execution, now that the
// Repair Loop's full attempt history (and, on a terminal giveup, the
// non_repairable record markNonRepairable just appended) is known. It writes
// to the same conventional path the last executor.Execute call used, so no
// extra trace file is left behind per spec.md §4.8 step 5 / §4.9.
func rewriteTrace(traceDir string, g *compiler.ExecutionGraph, result *executor.Result, events []tracefile.NodeEvent, history []tracefile.RepairAttempt) {
	if traceDir == "" || result.ExecutionID == "" {
		return
	}
	mode := ir.ResolutionMode("")
	if g != nil {
		mode = g.Mode
	}
	path, err := tracefile.Write(tracefile.DefaultPath(traceDir, result.ExecutionID), tracefile.Document{
		ExecutionID:    result.ExecutionID,
		IRVersion:      result.IRVersion,
		Mode:           mode,
		Status:         result.Status,
		Nodes:          events,
		Errors:         result.Errors,
		Warnings:       result.Warnings,
		RepairAttempts: history,
	})
	if err == nil {
		result.TracePath = path
	}
}

// markNonRepairable appends a non_repairable-category ErrorRecord to result,
// the taxonomy entry spec.md §4.8 step 3 requires once the Repair Loop gives
// up on a failing execution, whether by planner decline, an identical patch,
// or exhausting MaxAttempts.
func markNonRepairable(result *executor.Result, reason string) {
	result.Errors = append(result.Errors, ir.ErrorRecord{
		Source:   ir.SourceRuntime,
		Category: ir.CategoryNonRepairable,
		Message:  reason,
		Fixable:  false,
	})
}
