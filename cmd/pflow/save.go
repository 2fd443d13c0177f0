package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pflowhq/pflow/internal/library"
)

type saveOptions struct {
	description string
	metadata    string
	force       bool
}

func newSaveCmd(root *rootFlags) *cobra.Command {
	opts := &saveOptions{}

	cmd := &cobra.Command{
		Use:   "save <workflow-file> <name>",
		Short: "Persist a workflow IR under a name in the workflow library",
		Long: `Save validates name against spec.md §6's CLI-strict pattern (lowercase
letters, digits, and hyphens only, at most 30 characters) before writing the
workflow to the library database.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(cmd, root, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.description, "description", "", "Human-readable description of the workflow")
	cmd.Flags().StringVar(&opts.metadata, "metadata", "", "Inline JSON object of additional metadata")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite an existing saved workflow with the same name")

	return cmd
}

func runSave(cmd *cobra.Command, root *rootFlags, opts *saveOptions, workflowPath, name string) error {
	if err := library.ValidateName(name, true); err != nil {
		return newCommandError("save", "validating workflow name", err, "Names must match ^[a-z0-9-]+$ and be at most 30 characters.")
	}

	raw, err := os.ReadFile(workflowPath)
	if err != nil {
		return newCommandError("save", "reading workflow file", err, "Check that the path exists and is readable.")
	}

	metadata, err := parseMetadata(opts.metadata)
	if err != nil {
		return newCommandError("save", "parsing --metadata", err, "Pass a valid inline JSON object, e.g. '{\"team\":\"ops\"}'.")
	}

	lib, err := library.Open(root.libraryDB)
	if err != nil {
		return newCommandError("save", "opening workflow library", err, "Check --library-db points to a writable path.")
	}
	defer lib.Close()

	path, err := lib.Save(cmd.Context(), raw, name, opts.description, library.SaveOptions{
		Metadata: metadata,
		Force:    opts.force,
	})
	if err != nil {
		return newCommandError("save", "persisting workflow", err, "Pass --force to overwrite an existing name.")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "saved %q to %s\n", name, path)
	return nil
}

func parseMetadata(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var metadata map[string]any
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}
