package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pflowhq/pflow/internal/defaults"
	"github.com/pflowhq/pflow/internal/registry"
)

type describeOptions struct {
	jsonOutput bool
}

func newDescribeCmd(root *rootFlags) *cobra.Command {
	opts := &describeOptions{}

	cmd := &cobra.Command{
		Use:   "describe [node-type ...]",
		Short: "Describe registered node types; with no arguments, describes every built-in type",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output the RegistryEntry list as JSON")

	return cmd
}

func runDescribe(cmd *cobra.Command, opts *describeOptions, types []string) error {
	reg := defaults.NewRegistry()

	var entries []registry.Entry
	if len(types) == 0 {
		entries = reg.Load()
	} else {
		entries = reg.Describe(types)
		if len(entries) < len(types) {
			reportUnknownTypes(cmd, reg, types, entries)
		}
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\n", e.Type, e.Description)
	}
	return w.Flush()
}

func reportUnknownTypes(cmd *cobra.Command, reg *registry.Registry, requested []string, found []registry.Entry) {
	known := make(map[string]bool, len(found))
	for _, e := range found {
		known[e.Type] = true
	}
	for _, t := range requested {
		if known[t] {
			continue
		}
		suggestions := reg.Suggest(t, 3)
		fmt.Fprintf(cmd.ErrOrStderr(), "unknown node type %q, did you mean: %v?\n", t, suggestions)
	}
}
