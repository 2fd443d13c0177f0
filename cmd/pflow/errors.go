package main

import "fmt"

// commandError wraps a subcommand failure with an operator-facing
// suggestion, grounded on alexisbeaulieu97-Streamy's newCommandError shape.
type commandError struct {
	operation  string
	context    string
	cause      error
	suggestion string
}

func newCommandError(operation, context string, cause error, suggestion string) error {
	return &commandError{operation: operation, context: context, cause: cause, suggestion: suggestion}
}

func (e *commandError) Error() string {
	return fmt.Sprintf("failed to %s: %s\n\nerror: %v\n\nsuggestion: %s", e.operation, e.context, e.cause, e.suggestion)
}

func (e *commandError) Unwrap() error { return e.cause }
