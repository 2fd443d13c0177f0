// Package tracefile writes the versioned trace document spec.md §4.9
// describes: workflow metadata, resolved effective mode, per-node events,
// compiled IR snapshot, errors, warnings, final tri-state status, and
// repair attempts, grounded on the teacher's pkg/observer event-log shape
// adapted from an in-memory event stream to a single JSON document on
// termination.
package tracefile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pflowhq/pflow/internal/ir"
)

// Version is the trace document format version spec.md §4.9 names.
const Version = "1.2.0"

// NodeEvent is one node's entry in the trace's event log.
type NodeEvent struct {
	NodeID     string `json:"node_id"`
	NodeType   string `json:"node_type"`
	StartedAt  string `json:"started_at"`
	EndedAt    string `json:"ended_at"`
	DurationMS int64  `json:"duration_ms"`
	Failed     bool   `json:"failed"`
}

// RepairAttempt is one entry of the Repair Loop's attempt record, spec.md
// §4.8 step 5.
type RepairAttempt struct {
	Attempt   int             `json:"attempt"`
	Errors    []ir.ErrorRecord `json:"errors"`
	Declined  bool            `json:"declined"`
	Identical bool            `json:"identical"`
}

// Document is the in-memory form of the trace file before it's stamped with
// a timestamp and serialized.
type Document struct {
	ExecutionID     string
	IRVersion       string
	Mode            ir.ResolutionMode
	Status          ir.Status
	Nodes           []NodeEvent
	Errors          []ir.ErrorRecord
	Warnings        []ir.ErrorRecord
	RepairAttempts  []RepairAttempt
	CompiledIR      json.RawMessage
}

// traceFile is the on-disk JSON shape.
type traceFile struct {
	Version        string            `json:"version"`
	ExecutionID    string            `json:"execution_id"`
	IRVersion      string            `json:"ir_version"`
	WrittenAt      string            `json:"written_at"`
	Mode           ir.ResolutionMode `json:"effective_template_resolution_mode"`
	Status         ir.Status         `json:"status"`
	Nodes          []NodeEvent       `json:"nodes"`
	Errors         []ir.ErrorRecord  `json:"errors"`
	Warnings       []ir.ErrorRecord  `json:"warnings"`
	RepairAttempts []RepairAttempt   `json:"repair_attempts,omitempty"`
	CompiledIR     json.RawMessage   `json:"compiled_ir,omitempty"`
}

// Write serializes doc as a v1.2.0 trace document to path, creating parent
// directories as needed, and returns the path written.
func Write(path string, doc Document) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	out := traceFile{
		Version:        Version,
		ExecutionID:    doc.ExecutionID,
		IRVersion:      doc.IRVersion,
		WrittenAt:      time.Now().UTC().Format(time.RFC3339Nano),
		Mode:           doc.Mode,
		Status:         doc.Status,
		Nodes:          nonNilEvents(doc.Nodes),
		Errors:         nonNilErrors(doc.Errors),
		Warnings:       nonNilErrors(doc.Warnings),
		RepairAttempts: doc.RepairAttempts,
		CompiledIR:     doc.CompiledIR,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// DefaultPath builds a conventional trace path under dir for one execution,
// per spec.md §4.7 step 5's "conventional path" requirement.
func DefaultPath(dir, executionID string) string {
	return filepath.Join(dir, executionID+".trace.json")
}

// nonNilEvents guarantees the trace's "nodes" field serializes as [] rather
// than null when no node ran.
func nonNilEvents(events []NodeEvent) []NodeEvent {
	if events == nil {
		return []NodeEvent{}
	}
	return events
}

// nonNilErrors guarantees error/warning arrays serialize as [] rather than
// null, matching spec.md §4.9's "duration_ms as an integer, never null"
// discipline of avoiding null where a list is semantically empty.
func nonNilErrors(records []ir.ErrorRecord) []ir.ErrorRecord {
	if records == nil {
		return []ir.ErrorRecord{}
	}
	return records
}
