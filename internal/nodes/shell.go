package nodes

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/pflowhq/pflow/internal/store"
)

// ShellExecutor runs a subprocess and exposes stdout/stderr/exit_code, the
// output schema every spec.md §8 scenario assumes a "shell" node carries.
type ShellExecutor struct{}

func NewShellExecutor() *ShellExecutor { return &ShellExecutor{} }

// Execute runs params["command"] with params["args"] (a list of strings),
// optionally in params["dir"], writing stdout/stderr/exit_code to out.
// A non-zero exit code is not itself a wrapper-level failure — the node
// records it and lets the workflow author branch on it via a template, the
// same way the teacher's HTTPExecutor treats a non-2xx response as data
// rather than raising until explicitly checked.
func (e *ShellExecutor) Execute(ctx context.Context, params map[string]any, out *store.Namespaced) error {
	command, ok := params["command"].(string)
	if !ok || command == "" {
		return fmt.Errorf("shell node: missing or non-string \"command\" param")
	}

	args, err := stringSlice(params["args"])
	if err != nil {
		return fmt.Errorf("shell node: %w", err)
	}

	cmd := exec.CommandContext(ctx, command, args...)
	if dir, ok := params["dir"].(string); ok && dir != "" {
		cmd.Dir = dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	exitCode := 0
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return fmt.Errorf("shell node: failed to start %q: %w", command, runErr)
		}
	}

	// exec.Command captures the trailing newline a well-behaved CLI tool
	// (echo included) writes after its last line; trim it so a downstream
	// "Got: ${producer.stdout}" template composes literally, matching what
	// the command's own output looks like on a terminal.
	out.Set("stdout", strings.TrimSuffix(stdout.String(), "\n"))
	out.Set("stderr", strings.TrimSuffix(stderr.String(), "\n"))
	out.Set("exit_code", exitCode)
	return nil
}

func stringSlice(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("\"args\" must be a list")
	}
	out := make([]string, 0, len(list))
	for _, elem := range list {
		s, ok := elem.(string)
		if !ok {
			return nil, fmt.Errorf("\"args\" elements must be strings, got %T", elem)
		}
		out = append(out, s)
	}
	return out, nil
}
