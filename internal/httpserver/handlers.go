package httpserver

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pflowhq/pflow/internal/compiler"
	"github.com/pflowhq/pflow/internal/executor"
	"github.com/pflowhq/pflow/internal/ir"
)

// executeRequest is the execute collaborator's wire shape: the raw IR
// document plus the params map spec.md §6's execute() takes as a second
// argument.
type executeRequest struct {
	Workflow json.RawMessage `json:"workflow"`
	Params   map[string]any  `json:"params,omitempty"`
}

type executeResponse struct {
	ExecutionID string           `json:"execution_id"`
	Status      string           `json:"status"`
	Outputs     map[string]any   `json:"outputs,omitempty"`
	Errors      []ir.ErrorRecord `json:"errors,omitempty"`
	Warnings    []ir.ErrorRecord `json:"warnings,omitempty"`
	TracePath   string           `json:"trace_path,omitempty"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body", err)
		return
	}

	var req executeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body is not valid JSON", err)
		return
	}

	graph, errs := compiler.Compile(req.Workflow, s.registry, s.factories, s.runtime, s.logger)
	if len(errs) > 0 {
		s.writeJSON(w, http.StatusOK, executeResponse{Status: string(ir.StatusFailed), Errors: errs})
		return
	}

	result := executor.Execute(r.Context(), graph, req.Params, executor.Options{}, s.logger, s.telemetry)

	s.writeJSON(w, http.StatusOK, executeResponse{
		ExecutionID: result.ExecutionID,
		Status:      string(result.Status),
		Outputs:     result.Outputs,
		Errors:      result.Errors,
		Warnings:    result.Warnings,
		TracePath:   result.TracePath,
	})
}

type validateRequest struct {
	Workflow json.RawMessage `json:"workflow"`
	Params   map[string]any  `json:"params,omitempty"`
}

type validateResponse struct {
	Valid  bool             `json:"valid"`
	Errors []ir.ErrorRecord `json:"errors,omitempty"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body", err)
		return
	}

	var req validateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body is not valid JSON", err)
		return
	}

	errs := ir.Validate(req.Workflow, s.registry, req.Params, ir.ForDisplay)
	s.writeJSON(w, http.StatusOK, validateResponse{Valid: len(errs) == 0, Errors: errs})
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	types := r.URL.Query()["type"]
	if len(types) == 0 {
		s.writeJSON(w, http.StatusOK, s.registry.Load())
		return
	}
	s.writeJSON(w, http.StatusOK, s.registry.Describe(types))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string, err error) {
	s.logger.WithError(err).WithField("status_code", status).Error(message)
	s.writeJSON(w, status, map[string]any{"error": message, "details": err.Error()})
}
