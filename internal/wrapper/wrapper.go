// Package wrapper implements the Node Wrapper of spec.md §4.5: every
// registered node executes through prep (template resolution) ->
// strict/permissive gate -> execute -> post (timing, error capture), grounded
// on the teacher's Engine.executeNode instrumentation sequence.
package wrapper

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pflowhq/pflow/internal/ir"
	"github.com/pflowhq/pflow/internal/nodes"
	"github.com/pflowhq/pflow/internal/obslog"
	"github.com/pflowhq/pflow/internal/store"
	"github.com/pflowhq/pflow/internal/template"
)

// errorBearingFields are the keys the post phase looks for in a node's own
// output namespace to enrich a failure record, per spec.md §4.5 step 4 and
// §4.7 step 2.d.
var errorBearingFields = []string{"response", "status_code", "result.error", "error_details"}

// Wrapper wraps one compiled node: its identity, its declared params
// (verbatim from the IR, never mutated — the wrapper must be idempotent
// across retries), the inner executor, and the effective resolution mode.
type Wrapper struct {
	NodeID   string
	NodeType string
	Params   map[string]any
	Inner    nodes.Executor
	Mode     ir.ResolutionMode
	Logger   *obslog.Logger
}

// New builds a Wrapper. logger may be nil, in which case a disabled no-op
// logger is used.
func New(nodeID, nodeType string, params map[string]any, inner nodes.Executor, mode ir.ResolutionMode, logger *obslog.Logger) *Wrapper {
	if logger == nil {
		logger = obslog.New(obslog.Config{Level: "error", Output: io.Discard})
	}
	return &Wrapper{NodeID: nodeID, NodeType: nodeType, Params: params, Inner: inner, Mode: mode, Logger: logger}
}

// Result is what Run reports back to the Executor Service for one node.
type Result struct {
	DurationMS int64
	Err        *ir.ErrorRecord // nil on success
}

// Run executes the wrapped node once against root, using ctx for
// cancellation. The returned Result never has both a nil Err and a failed
// execution: any problem — an unresolved strict template or an inner
// execution error — is surfaced as an ErrorRecord, never a panic or a
// silently swallowed error.
func (w *Wrapper) Run(ctx context.Context, root *store.Root) Result {
	start := time.Now()
	nodeLogger := w.Logger.WithNodeID(w.NodeID).WithNodeType(w.NodeType)
	nodeLogger.Debug("node execution started")

	resolved, blocking := w.prepAndGate(root, nodeLogger)
	if blocking != nil {
		return Result{DurationMS: elapsedMS(start), Err: blocking}
	}

	out := root.Namespace(w.NodeID)
	execErr := w.Inner.Execute(ctx, resolved, out)
	duration := elapsedMS(start)

	if execErr != nil {
		nodeLogger.WithError(execErr).Error("node execution failed")
		return Result{DurationMS: duration, Err: w.enrichFailure(root, execErr)}
	}

	nodeLogger.WithField("duration_ms", duration).Info("node execution completed successfully")
	return Result{DurationMS: duration}
}

// prepAndGate runs spec.md §4.5 steps 1-2: resolve every param against the
// root view, then apply the strict/permissive gate. On a strict failure it
// returns a non-nil ErrorRecord and the node must not execute. On a
// permissive partial resolution it emits warnings into the shared store and
// returns the partially resolved params.
func (w *Wrapper) prepAndGate(root *store.Root, logger *obslog.Logger) (map[string]any, *ir.ErrorRecord) {
	ctx := root.RootContextFor()
	resolvedParams := make(map[string]any, len(w.Params))

	for paramName, original := range w.Params {
		resolved, wasResolved := template.Resolve(original, ctx)
		resolvedParams[paramName] = resolved

		if !wasResolved || template.IsUnresolved(original, resolved) {
			record := w.buildUnresolvedRecord(paramName, original, resolved, ctx)
			if w.Mode == ir.ModePermissive {
				appendWarning(root, record)
				logger.WithField("param", paramName).Warn("template partially resolved, continuing in permissive mode")
				continue
			}
			return nil, &record
		}
	}

	return resolvedParams, nil
}

func (w *Wrapper) buildUnresolvedRecord(paramName string, original, resolved any, ctx template.Context) ir.ErrorRecord {
	unresolvedVars := unresolvedVariablesOf(original, resolved)

	templateStr, ok := original.(string)
	if !ok {
		templateStr = fmt.Sprintf("%v", original)
	}

	available := ctx.AvailableHeads()
	if len(available) > 20 {
		available = available[:20]
	}

	previews := make([]ir.ContextKeyPreview, 0, len(available))
	for _, head := range available {
		value, ok := ctx.Lookup(head, nil)
		if !ok {
			continue
		}
		typeTag, preview := template.PreviewValue(value)
		previews = append(previews, ir.ContextKeyPreview{Key: head, Type: typeTag, Preview: preview})
	}

	var suggestions []string
	if len(unresolvedVars) > 0 {
		head, _, err := template.ParsePath(unresolvedVars[0])
		if err == nil {
			suggestions = template.SuggestHeads(head, ctx.AvailableHeads(), 3)
		}
	}

	enhanced := &ir.UnresolvedVariableError{
		NodeID:               w.NodeID,
		Param:                paramName,
		Template:             templateStr,
		UnresolvedVariables:  unresolvedVars,
		AvailableContextKeys: previews,
		Suggestions:          suggestions,
	}
	return enhanced.ToErrorRecord(ir.SourceRuntime)
}

// unresolvedVariablesOf recovers which of original's referenced variables
// survived into resolved, for the enhanced error message's
// unresolved_variables field. original and resolved walk together through
// nested lists/maps (a shell node's "args" is a list of templated strings,
// not a single string), since a param's unresolved reference can live at any
// leaf.
func unresolvedVariablesOf(original, resolved any) []string {
	origVars := extractVariablesDeep(original)
	if len(origVars) == 0 {
		return nil
	}
	resVars := extractVariableSetDeep(resolved)
	var out []string
	for _, v := range origVars {
		if resVars[v] {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return origVars
	}
	return out
}

// extractVariablesDeep collects every ${...} reference in v, recursing into
// lists and maps.
func extractVariablesDeep(v any) []string {
	switch val := v.(type) {
	case string:
		return template.ExtractVariables(val)
	case []any:
		var out []string
		for _, elem := range val {
			out = append(out, extractVariablesDeep(elem)...)
		}
		return out
	case map[string]any:
		var out []string
		for _, elem := range val {
			out = append(out, extractVariablesDeep(elem)...)
		}
		return out
	default:
		return nil
	}
}

// extractVariableSetDeep is extractVariablesDeep's set-membership counterpart,
// used to check which of the original references still appear (unresolved)
// in the resolved value.
func extractVariableSetDeep(v any) map[string]bool {
	set := make(map[string]bool)
	switch val := v.(type) {
	case string:
		for name := range template.ExtractVariableSet(val) {
			set[name] = true
		}
	case []any:
		for _, elem := range val {
			for name := range extractVariableSetDeep(elem) {
				set[name] = true
			}
		}
	case map[string]any:
		for _, elem := range val {
			for name := range extractVariableSetDeep(elem) {
				set[name] = true
			}
		}
	}
	return set
}

// enrichFailure is spec.md §4.7 step 2.d: record the list of fields the node
// did manage to write into its namespace before failing, and copy its
// "response" into RawResponse and its "status_code" into StatusCode.
// "result.error" and "error_details" have no ErrorRecord field and are not
// copied.
func (w *Wrapper) enrichFailure(root *store.Root, execErr error) *ir.ErrorRecord {
	ns, _ := root.NodeNamespace(w.NodeID)

	record := &ir.ErrorRecord{
		Source:   ir.SourceRuntime,
		Category: ir.CategoryExecutionFailure,
		Message:  execErr.Error(),
		NodeID:   w.NodeID,
		Fixable:  false,
	}

	if ns == nil {
		return record
	}

	fields := make([]string, 0, len(ns))
	for k := range ns {
		fields = append(fields, k)
	}
	record.AvailableFields = fields

	for _, field := range errorBearingFields {
		if v, ok := ns[field]; ok {
			switch field {
			case "response":
				record.RawResponse = fmt.Sprintf("%v", v)
			case "status_code":
				if code, ok := toInt(v); ok {
					record.StatusCode = code
				}
			}
		}
	}

	return record
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func elapsedMS(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

// appendWarning pushes a permissive-mode template warning into both
// __template_errors__ and __warnings__, deduplicated by exact message per
// spec.md §4.5 step 2's "emit a warning" requirement and §4's tie-break rule
// (same node+param pair dedup by exact message).
func appendWarning(root *store.Root, record ir.ErrorRecord) {
	appendDeduped(root, ir.KeyTemplateErrors, record)
	appendDeduped(root, ir.KeyWarnings, record)
}

func appendDeduped(root *store.Root, key string, record ir.ErrorRecord) {
	existingRaw, _ := root.RootGet(key)
	existing, _ := existingRaw.([]ir.ErrorRecord)
	for _, e := range existing {
		if e.NodeID == record.NodeID && e.Message == record.Message {
			return
		}
	}
	root.RootSet(key, append(existing, record))
}
