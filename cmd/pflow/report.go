package main

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/pflowhq/pflow/internal/executor"
	"github.com/pflowhq/pflow/internal/ir"
	"github.com/pflowhq/pflow/internal/repair"
)

// newConsoleReporter builds a human-facing zerolog console writer, the
// CLI-boundary logging pairing alexisbeaulieu97-Streamy uses alongside
// cobra: the core engine logs structured JSON via internal/obslog, while
// the CLI's own progress/result narration goes through this reporter.
func newConsoleReporter(out io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: false}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// reportResult prints a one-line summary of a run's tri-state outcome.
func reportResult(reporter zerolog.Logger, result *executor.Result) {
	event := reporter.Info()
	switch result.Status {
	case ir.StatusFailed:
		event = reporter.Error()
	case ir.StatusDegraded:
		event = reporter.Warn()
	}

	event = event.Str("execution_id", result.ExecutionID).Str("status", string(result.Status))
	if result.TracePath != "" {
		event = event.Str("trace_path", result.TracePath)
	}
	event.Msg(summarize(result))
}

// reportAttempt narrates one repair-loop cycle: whether the planner
// declined, produced an identical (hence non-repairable) patch, or a fresh
// patch that was recompiled and re-executed.
func reportAttempt(reporter zerolog.Logger, attempt repair.Attempt) {
	event := reporter.Warn().Int("attempt", attempt.Number)
	switch {
	case attempt.Declined:
		event.Msg("planner declined to patch the workflow")
	case attempt.Identical:
		event.Msg("planner returned an identical workflow; marking non-repairable")
	default:
		event.Msg("planner patched the workflow; recompiling and re-executing")
	}
}

func summarize(result *executor.Result) string {
	if len(result.Errors) > 0 {
		return fmt.Sprintf("execution failed: %s", result.Errors[0].Message)
	}
	if len(result.Warnings) > 0 {
		return fmt.Sprintf("execution degraded: %d warning(s)", len(result.Warnings))
	}
	return "execution succeeded"
}

// exitCodeFor implements spec.md §6's CLI exit-code mapping: 0 for success,
// 2 for degraded, 1 for failed.
func exitCodeFor(status ir.Status) int {
	switch status {
	case ir.StatusSuccess:
		return 0
	case ir.StatusDegraded:
		return 2
	default:
		return 1
	}
}
