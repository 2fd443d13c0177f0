// Package planner provides the external Planner collaborator spec.md §4.8
// calls with a patch request, grounded on the dshills-langgraph-go Anthropic
// ChatModel adapter (same SDK, same message/system-prompt shape) but
// specialized to one call: given a failing IR and its error records, return
// a patched IR or a decline.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/pflowhq/pflow/internal/ir"
)

// ErrDeclined is returned by Patch when the planner had nothing actionable
// to change.
var ErrDeclined = errors.New("planner declined to patch the workflow")

// Planner is the collaborator interface the Repair Loop depends on. It is
// intentionally narrow: one method, synchronous, side-effect free.
type Planner interface {
	// Patch proposes a modified IR that addresses errs. Returning ErrDeclined
	// (or any error) is treated as a decline by the Repair Loop.
	Patch(ctx context.Context, raw []byte, errs []ir.ErrorRecord) ([]byte, error)
}

const systemPrompt = `You are a workflow repair assistant. You will be given a
workflow's JSON intermediate representation and a list of structured error
records describing why the last execution failed. Respond with ONLY the
corrected JSON document, no commentary, no markdown fences. Make the
smallest change that addresses the errors. If you cannot improve on the
given IR, respond with exactly the same JSON document unchanged.`

// AnthropicPlanner implements Planner using Claude, the default collaborator
// spec.md §1 treats as out-of-core but still pluggable.
type AnthropicPlanner struct {
	apiKey string
	model  string
}

// NewAnthropicPlanner builds a Planner backed by the Anthropic API. An empty
// model falls back to a current Claude Sonnet model.
func NewAnthropicPlanner(apiKey, model string) *AnthropicPlanner {
	if model == "" {
		model = "claude-sonnet-4-5-20250929"
	}
	return &AnthropicPlanner{apiKey: apiKey, model: model}
}

// Patch sends raw and errs to Claude and parses its response as a candidate
// IR. A missing API key or an unparseable response is surfaced as
// ErrDeclined so the Repair Loop can mark the workflow non-repairable; a
// response identical to raw is returned as is, and the Repair Loop detects it.
func (p *AnthropicPlanner) Patch(ctx context.Context, raw []byte, errs []ir.ErrorRecord) ([]byte, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", ErrDeclined)
	}

	errJSON, err := json.Marshal(errs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal error records: %w", err)
	}

	userContent := fmt.Sprintf("Workflow IR:\n%s\n\nErrors:\n%s", raw, errJSON)

	client := anthropicsdk.NewClient(option.WithAPIKey(p.apiKey))
	resp, err := client.Messages.New(ctx, anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(p.model),
		MaxTokens: 4096,
		System:    []anthropicsdk.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(userContent)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("planner call failed: %w", err)
	}

	var patched string
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropicsdk.TextBlock); ok {
			patched += text.Text
		}
	}

	if !json.Valid([]byte(patched)) {
		return nil, fmt.Errorf("%w: planner response was not valid JSON", ErrDeclined)
	}

	return []byte(patched), nil
}
