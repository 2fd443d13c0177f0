package ir

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// envelopeSchema describes the structural shape of a Workflow document: the
// required top-level keys and their basic types. It intentionally does not
// know about node-specific param schemas (those are Registry concerns; Layer
// 4 checks only that each node type is registered, not its params) or
// template semantics (Layer 3).
const envelopeSchemaJSON = `{
  "type": "object",
  "required": ["ir_version", "nodes"],
  "additionalProperties": false,
  "properties": {
    "ir_version": {"type": "string"},
    "template_resolution_mode": {"type": "string", "enum": ["strict", "permissive"]},
    "inputs": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["type", "required"],
        "properties": {
          "type": {"type": "string"},
          "description": {"type": "string"},
          "required": {"type": "boolean"},
          "default": {}
        }
      }
    },
    "outputs": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["source"],
        "properties": {
          "source": {"type": "string"},
          "description": {"type": "string"}
        }
      }
    },
    "nodes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "type"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "type": {"type": "string", "minLength": 1},
          "purpose": {"type": "string"},
          "params": {"type": "object"}
        }
      }
    },
    "edges": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["from", "to"],
        "additionalProperties": false,
        "properties": {
          "from": {"type": "string"},
          "to": {"type": "string"},
          "action": {"type": "string"}
        }
      }
    }
  }
}`

var envelopeSchemaLoader = gojsonschema.NewStringLoader(envelopeSchemaJSON)

// ValidateSchema runs Layer 1 structural validation against raw JSON bytes,
// before the document is even unmarshaled into a Workflow. This catches
// missing required fields, extraneous keys, and an invalid
// template_resolution_mode value up front, matching spec.md §4.1 Layer 1.
func ValidateSchema(raw []byte) []ErrorRecord {
	var asMap map[string]any
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return []ErrorRecord{{
			Source:   SourceValidation,
			Category: CategorySchema,
			Message:  fmt.Sprintf("workflow is not valid JSON: %v", err),
			Fixable:  false,
		}}
	}

	documentLoader := gojsonschema.NewGoLoader(asMap)
	result, err := gojsonschema.Validate(envelopeSchemaLoader, documentLoader)
	if err != nil {
		return []ErrorRecord{{
			Source:   SourceValidation,
			Category: CategorySchema,
			Message:  fmt.Sprintf("schema validation failed to run: %v", err),
		}}
	}

	if result.Valid() {
		return nil
	}

	records := make([]ErrorRecord, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		records = append(records, ErrorRecord{
			Source:   SourceValidation,
			Category: CategorySchema,
			Message:  fmt.Sprintf("%s: %s", e.Field(), e.Description()),
			Fixable:  true,
		})
	}
	return records
}

// validateStructural runs the remaining Layer 1 checks that need the decoded
// Workflow value rather than raw JSON: duplicate node IDs, inputs that are
// not required yet declare no default, and the template_resolution_mode
// value.
func validateStructural(w *Workflow) []ErrorRecord {
	var records []ErrorRecord

	seen := make(map[string]bool, len(w.Nodes))
	for _, n := range w.Nodes {
		if seen[n.ID] {
			records = append(records, ErrorRecord{
				Source:   SourceValidation,
				Category: CategorySchema,
				Message:  fmt.Sprintf("duplicate node id %q", n.ID),
				NodeID:   n.ID,
				Fixable:  true,
			})
		}
		seen[n.ID] = true
	}

	for name, in := range w.Inputs {
		if !in.Required && !in.HasDefault {
			records = append(records, ErrorRecord{
				Source:   SourceValidation,
				Category: CategorySchema,
				Message:  fmt.Sprintf("input %q is not required but has no default", name),
				Fixable:  true,
			})
		}
	}

	if w.TemplateResolutionMode != "" && !w.TemplateResolutionMode.Valid() {
		records = append(records, ErrorRecord{
			Source:   SourceValidation,
			Category: CategorySchema,
			Message:  fmt.Sprintf("template_resolution_mode must be %q or %q, got %q", ModeStrict, ModePermissive, w.TemplateResolutionMode),
			Fixable:  true,
		})
	}

	return records
}
