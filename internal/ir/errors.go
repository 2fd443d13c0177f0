package ir

import "fmt"

// ErrorCategory is the closed taxonomy of failure categories spec.md §7 defines.
type ErrorCategory string

const (
	CategorySchema           ErrorCategory = "schema"
	CategoryGraph            ErrorCategory = "graph"
	CategoryTemplateError    ErrorCategory = "template_error"
	CategoryUnknownNodeType  ErrorCategory = "unknown_node_type"
	CategoryAPIValidation    ErrorCategory = "api_validation"
	CategoryExecutionFailure ErrorCategory = "execution_failure"
	CategoryNonRepairable    ErrorCategory = "non_repairable"
	CategoryCancelled        ErrorCategory = "cancelled"
)

// Source identifies which pipeline stage raised a record.
type Source string

const (
	SourceRuntime    Source = "runtime"
	SourceValidation Source = "validation"
	SourceCompile    Source = "compile"
)

// ErrorRecord is a single structured failure, carrying enough context for a
// human or an agent to act without re-reading the trace.
type ErrorRecord struct {
	Source          Source        `json:"source"`
	Category        ErrorCategory `json:"category"`
	Message         string        `json:"message"`
	NodeID          string        `json:"node_id,omitempty"`
	Fixable         bool          `json:"fixable"`
	RawResponse     any           `json:"raw_response,omitempty"`
	MCPError        any           `json:"mcp_error,omitempty"`
	AvailableFields []string      `json:"available_fields,omitempty"`
	Suggestions     []string      `json:"suggestions,omitempty"`
	StatusCode      int           `json:"status_code,omitempty"`
}

func (e ErrorRecord) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("[%s/%s] node %s: %s", e.Source, e.Category, e.NodeID, e.Message)
	}
	return fmt.Sprintf("[%s/%s] %s", e.Source, e.Category, e.Message)
}

// WarningRecord mirrors ErrorRecord's shape for non-fatal diagnostics.
type WarningRecord struct {
	Source   Source        `json:"source"`
	Category ErrorCategory `json:"category"`
	Message  string        `json:"message"`
	NodeID   string        `json:"node_id,omitempty"`
	Param    string        `json:"param,omitempty"`
}

// Status is the tri-state final workflow outcome. DEGRADED is a first-class
// value, never derived ad hoc from a boolean.
type Status string

const (
	StatusSuccess  Status = "SUCCESS"
	StatusDegraded Status = "DEGRADED"
	StatusFailed   Status = "FAILED"
)

// UnresolvedVariableError is the enhanced error message shape from spec.md
// §4.5.2, produced on a strict resolution failure or a permissive warning.
type UnresolvedVariableError struct {
	NodeID                string
	Param                 string
	Template              string
	UnresolvedVariables   []string
	AvailableContextKeys  []ContextKeyPreview
	Suggestions           []string
}

// ContextKeyPreview is one entry of the "available fields at the failure
// point" list: a head-level key, its type tag, and a small value preview.
type ContextKeyPreview struct {
	Key     string `json:"key"`
	Type    string `json:"type"`
	Preview string `json:"preview,omitempty"`
}

func (e *UnresolvedVariableError) Error() string {
	return fmt.Sprintf("node %s: param %q has unresolved variables %v in template %q",
		e.NodeID, e.Param, e.UnresolvedVariables, e.Template)
}

// ToErrorRecord converts the enhanced message into the generic ErrorRecord
// shape carried by ExecutionResult / ValidationResult.
func (e *UnresolvedVariableError) ToErrorRecord(source Source) ErrorRecord {
	keys := make([]string, 0, len(e.AvailableContextKeys))
	for _, k := range e.AvailableContextKeys {
		keys = append(keys, k.Key)
	}
	return ErrorRecord{
		Source:          source,
		Category:        CategoryTemplateError,
		Message:         e.Error(),
		NodeID:          e.NodeID,
		Fixable:         true,
		AvailableFields: keys,
		Suggestions:     e.Suggestions,
	}
}
