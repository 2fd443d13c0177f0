package main

import (
	"github.com/spf13/cobra"
)

// rootFlags holds flags shared by every subcommand, grounded on the
// teacher's rootFlags{verbose, dryRun} pattern.
type rootFlags struct {
	verbose   bool
	settings  string
	traceDir  string
	libraryDB string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "pflow",
		Short:         "pflow compiles, validates, executes, and repairs declarative workflow IR",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&flags.settings, "settings", "", "Path to a YAML settings file")
	cmd.PersistentFlags().StringVar(&flags.traceDir, "trace-dir", "", "Directory trace files are written under (default: disabled)")
	cmd.PersistentFlags().StringVar(&flags.libraryDB, "library-db", defaultLibraryPath(), "Path to the workflow library database")

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newValidateCmd(flags))
	cmd.AddCommand(newDescribeCmd(flags))
	cmd.AddCommand(newSaveCmd(flags))
	cmd.AddCommand(newWatchCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func defaultLibraryPath() string {
	return "pflow-library.db"
}
