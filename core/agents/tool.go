package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Tool is an invocable external action with a declared parameter schema.
// Tools with NeedsApproval set are held at the approval gate until a human
// (or the session allow-list) clears them.
type Tool struct {
	Name          string
	Description   string
	Parameters    *jsonschema.Schema
	NeedsApproval bool

	execute func(ctx context.Context, arguments string) (string, error)
}

// Execute runs the tool against its raw JSON arguments.
func (t Tool) Execute(ctx context.Context, arguments string) (string, error) {
	if t.execute == nil {
		return "", fmt.Errorf("tool %q has no executor", t.Name)
	}
	return t.execute(ctx, arguments)
}

// NewTool builds a tool whose parameter schema is reflected from Args.
// Arguments are decoded from JSON into Args before the handler runs.
func NewTool[Args any](name, description string, execute func(ctx context.Context, args Args) (string, error), opts ...ToolOption) Tool {
	reflector := jsonschema.Reflector{DoNotReference: true}
	var args Args

	tool := Tool{
		Name:        name,
		Description: description,
		Parameters:  reflector.Reflect(&args),
		execute: func(ctx context.Context, arguments string) (string, error) {
			var decoded Args
			if arguments != "" {
				if err := json.Unmarshal([]byte(arguments), &decoded); err != nil {
					return "", fmt.Errorf("failed to unmarshal arguments for tool %q: %w", name, err)
				}
			}
			return execute(ctx, decoded)
		},
	}

	for _, opt := range opts {
		opt(&tool)
	}
	return tool
}

type ToolOption func(*Tool)

// WithApproval marks the tool as requiring human approval before execution.
func WithApproval() ToolOption {
	return func(t *Tool) { t.NeedsApproval = true }
}
