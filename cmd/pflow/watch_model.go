package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pflowhq/pflow/internal/executor"
	"github.com/pflowhq/pflow/internal/ir"
	"github.com/pflowhq/pflow/internal/tracefile"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginTop(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// nodeEventMsg wraps one tracefile.NodeEvent as it streams out of
// executor.Execute's OnNodeEvent callback.
type nodeEventMsg tracefile.NodeEvent

// runDoneMsg carries the final tri-state outcome once Execute returns.
type runDoneMsg struct {
	result *executor.Result
	err    error
}

// watchModel is the Bubbletea model driving `pflow watch`, grounded on
// alexisbeaulieu97-Streamy's tui.Model (ordered step list + a pending/
// running/done status per entry, rendered as an ordered feed instead of a
// DAG-level progress bar since execution here is strictly linear).
type watchModel struct {
	workflowPath string
	events       []tracefile.NodeEvent
	done         bool
	result       *executor.Result
	err          error
	spinner      spinner.Model
}

func newWatchModel(workflowPath string) watchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = runningStyle
	return watchModel{workflowPath: workflowPath, spinner: s}
}

func (m watchModel) Init() tea.Cmd { return m.spinner.Tick }

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case nodeEventMsg:
		m.events = append(m.events, tracefile.NodeEvent(msg))
		return m, nil
	case runDoneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m watchModel) View() string {
	var sections []string
	sections = append(sections, titleStyle.Render(fmt.Sprintf("pflow watch • %s", m.workflowPath)))

	sections = append(sections, sectionStyle.Render("Nodes"))
	if len(m.events) == 0 {
		sections = append(sections, pendingStyle.Render(" waiting for the first node..."))
	}
	for _, ev := range m.events {
		icon := successStyle.Render("✓")
		if ev.Failed {
			icon = failureStyle.Render("✗")
		}
		line := fmt.Sprintf(" %s %s (%s) %dms", icon, ev.NodeID, ev.NodeType, ev.DurationMS)
		sections = append(sections, line)
	}

	if m.done {
		sections = append(sections, sectionStyle.Render("Result"))
		sections = append(sections, renderOutcome(m.result, m.err))
		sections = append(sections, pendingStyle.Render("press q to exit"))
	} else {
		sections = append(sections, fmt.Sprintf("%s running...", m.spinner.View()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderOutcome(result *executor.Result, err error) string {
	if err != nil {
		return failureStyle.Render(fmt.Sprintf("error: %v", err))
	}
	style := successStyle
	if result.Status == ir.StatusFailed {
		style = failureStyle
	} else if result.Status == ir.StatusDegraded {
		style = runningStyle
	}
	lines := []string{style.Render(fmt.Sprintf("status: %s", result.Status))}
	for _, e := range result.Errors {
		lines = append(lines, failureStyle.Render(" "+e.Error()))
	}
	return strings.Join(lines, "\n")
}
