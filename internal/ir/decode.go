package ir

import "encoding/json"

// UnmarshalJSON decodes an InputSpec while recording whether a "default" key
// was present at all (as opposed to present with a null value), since
// Layer 1 structural validation (spec.md §4.1) needs to distinguish
// "omitted" from "explicitly null".
func (in *InputSpec) UnmarshalJSON(data []byte) error {
	type alias InputSpec
	var tmp struct {
		alias
		Default json.RawMessage `json:"default"`
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*in = InputSpec(tmp.alias)
	if len(tmp.Default) > 0 {
		in.HasDefault = true
		if err := json.Unmarshal(tmp.Default, &in.Default); err != nil {
			return err
		}
	}
	return nil
}

// ParseWorkflow decodes a JSON workflow document. It does not validate;
// callers run Validate afterward (or ValidateSchema on the raw
// bytes first, per spec.md's Layer 1/rest split).
func ParseWorkflow(raw []byte) (*Workflow, error) {
	var w Workflow
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	return &w, nil
}
