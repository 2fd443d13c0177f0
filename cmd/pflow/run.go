package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/pflowhq/pflow/internal/defaults"
	"github.com/pflowhq/pflow/internal/ir"
	"github.com/pflowhq/pflow/internal/obslog"
	"github.com/pflowhq/pflow/internal/planner"
	"github.com/pflowhq/pflow/internal/repair"
	"github.com/pflowhq/pflow/internal/runtimeconfig"
	"github.com/pflowhq/pflow/internal/telemetry"
)

type runOptions struct {
	paramsPath string
	noRepair   bool
	apiKey     string
	model      string
}

func newRunCmd(root *rootFlags) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <workflow-file>",
		Short: "Compile, validate, execute, and (unless --no-repair) repair a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.paramsPath, "params", "", "Path to a JSON file of execution params")
	cmd.Flags().BoolVar(&opts.noRepair, "no-repair", false, "Disable the repair loop, per spec.md §6's execute() no_repair option")
	cmd.Flags().StringVar(&opts.apiKey, "anthropic-api-key", os.Getenv("ANTHROPIC_API_KEY"), "Anthropic API key for the repair planner")
	cmd.Flags().StringVar(&opts.model, "planner-model", "", "Override the repair planner's model")

	return cmd
}

func runRun(cmd *cobra.Command, root *rootFlags, opts *runOptions, workflowPath string) error {
	reporter := newConsoleReporter(cmd.OutOrStdout(), root.verbose)

	raw, err := os.ReadFile(workflowPath)
	if err != nil {
		return newCommandError("run", "reading workflow file", err, "Check that the path exists and is readable.")
	}

	params, err := loadParams(opts.paramsPath)
	if err != nil {
		return newCommandError("run", "reading params file", err, "Ensure --params points to a valid JSON object file.")
	}

	cfg := runtimeconfig.Default()
	if root.settings != "" {
		if err := runtimeconfig.LoadSettingsFile(root.settings, cfg); err != nil {
			return newCommandError("run", "loading settings file", err, "Check the settings file's YAML syntax.")
		}
	}
	logger := obslog.New(obslog.Config{Level: logLevel(root.verbose)})

	ctx := cmd.Context()
	tel, err := telemetry.New(ctx, telemetry.Config{EnableTracing: true, EnableMetrics: false})
	if err != nil {
		reporter.Warn().Err(err).Msg("telemetry disabled: failed to initialize")
		tel = nil
	}

	reg := defaults.NewRegistry()
	factories := defaults.NewFactories()

	var p planner.Planner
	if !opts.noRepair {
		p = planner.NewAnthropicPlanner(opts.apiKey, opts.model)
	} else {
		p = declinedPlanner{}
	}

	outcome := repair.Run(ctx, raw, params, reg, p, repair.Options{
		Factories: factories,
		Config:    cfg,
		Logger:    logger,
		Telemetry: tel,
		TraceDir:  root.traceDir,
	})

	for _, attempt := range outcome.Attempts {
		reportAttempt(reporter, attempt)
	}
	reportResult(reporter, outcome.Result)

	os.Exit(exitCodeFor(outcome.Result.Status))
	return nil
}

// declinedPlanner is wired in when --no-repair is set: it declines every
// patch request so the Repair Loop marks the first failure non-repairable
// without ever constructing a live Anthropic client.
type declinedPlanner struct{}

func (declinedPlanner) Patch(ctx context.Context, raw []byte, errs []ir.ErrorRecord) ([]byte, error) {
	return nil, planner.ErrDeclined
}

func loadParams(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, err
	}
	return params, nil
}

func logLevel(verbose bool) string {
	if verbose {
		return "debug"
	}
	return "info"
}
