package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pflowhq/pflow/internal/compiler"
	"github.com/pflowhq/pflow/internal/defaults"
	"github.com/pflowhq/pflow/internal/executor"
	"github.com/pflowhq/pflow/internal/obslog"
	"github.com/pflowhq/pflow/internal/runtimeconfig"
	"github.com/pflowhq/pflow/internal/tracefile"
)

func newWatchCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <workflow-file>",
		Short: "Execute a workflow with a live view of node-by-node progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, root, args[0])
		},
	}
	return cmd
}

func runWatch(cmd *cobra.Command, root *rootFlags, workflowPath string) error {
	raw, err := os.ReadFile(workflowPath)
	if err != nil {
		return newCommandError("watch", "reading workflow file", err, "Check that the path exists and is readable.")
	}

	cfg := runtimeconfig.Default()
	if root.settings != "" {
		if err := runtimeconfig.LoadSettingsFile(root.settings, cfg); err != nil {
			return newCommandError("watch", "loading settings file", err, "Check the settings file's YAML syntax.")
		}
	}

	logger := obslog.New(obslog.Config{Level: logLevel(root.verbose)})
	reg := defaults.NewRegistry()

	graph, errs := compiler.Compile(raw, reg, defaults.NewFactories(), cfg, logger)
	if len(errs) > 0 {
		for _, e := range errs {
			cmd.PrintErrln(e.Error())
		}
		os.Exit(1)
		return nil
	}

	program := tea.NewProgram(newWatchModel(workflowPath))

	go func() {
		result := executor.Execute(cmd.Context(), graph, nil, executor.Options{
			TraceDir: root.traceDir,
			OnNodeEvent: func(ev tracefile.NodeEvent) {
				program.Send(nodeEventMsg(ev))
			},
		}, logger, nil)
		program.Send(runDoneMsg{result: result})
	}()

	finalModel, err := program.Run()
	if err != nil {
		return newCommandError("watch", "running TUI", err, "Ensure stdout is an interactive terminal.")
	}

	if m, ok := finalModel.(watchModel); ok && m.result != nil {
		os.Exit(exitCodeFor(m.result.Status))
	}
	return nil
}
