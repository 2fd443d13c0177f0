package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pflowhq/pflow/internal/executor"
	"github.com/pflowhq/pflow/internal/ir"
)

func TestSummarizeReportsFirstError(t *testing.T) {
	result := &executor.Result{
		Status: ir.StatusFailed,
		Errors: []ir.ErrorRecord{
			{Message: "node greet: command exited 1"},
			{Message: "a second error that should not be surfaced"},
		},
	}

	assert.Equal(t, "execution failed: node greet: command exited 1", summarize(result))
}

func TestSummarizeReportsWarningCount(t *testing.T) {
	result := &executor.Result{
		Status:   ir.StatusDegraded,
		Warnings: []ir.ErrorRecord{{Message: "retrying"}, {Message: "slow node"}},
	}

	assert.Equal(t, "execution degraded: 2 warning(s)", summarize(result))
}

func TestSummarizeReportsSuccess(t *testing.T) {
	result := &executor.Result{Status: ir.StatusSuccess}

	assert.Equal(t, "execution succeeded", summarize(result))
}

func TestExitCodeForMapsTriStateStatus(t *testing.T) {
	assert.Equal(t, 0, exitCodeFor(ir.StatusSuccess))
	assert.Equal(t, 2, exitCodeFor(ir.StatusDegraded))
	assert.Equal(t, 1, exitCodeFor(ir.StatusFailed))
}
