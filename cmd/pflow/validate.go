package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pflowhq/pflow/internal/defaults"
	"github.com/pflowhq/pflow/internal/ir"
)

type validateOptions struct {
	jsonOutput bool
}

func newValidateCmd(root *rootFlags) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <workflow-file>",
		Short: "Statically validate a workflow: schema, graph shape, and registered node types",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output the ErrorRecord list as JSON")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *validateOptions, workflowPath string) error {
	raw, err := os.ReadFile(workflowPath)
	if err != nil {
		return newCommandError("validate", "reading workflow file", err, "Check that the path exists and is readable.")
	}

	reg := defaults.NewRegistry()
	// extracted_params is nil: per spec.md §6, validate() with no params
	// performs static validation only, skipping template resolution.
	records := ir.Validate(raw, reg, nil, ir.ForDisplay)

	if opts.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "workflow is valid")
		return nil
	}

	for _, rec := range records {
		fmt.Fprintln(cmd.OutOrStdout(), rec.Error())
	}
	os.Exit(1)
	return nil
}
