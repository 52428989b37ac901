package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

type fetchDoneMsg struct {
	err error
}

// slowFetchAfter is when the spinner starts showing elapsed time.
const slowFetchAfter = 3 * time.Second

var slowFetchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

type fetchSpinnerModel struct {
	spinner spinner.Model
	label   string
	fetch   tea.Cmd
	started time.Time
	now     func() time.Time
	err     error
	done    bool
}

func newFetchSpinnerModel(label string, fetch tea.Cmd, now func() time.Time) fetchSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("35"))),
	)

	return fetchSpinnerModel{
		spinner: s,
		label:   label,
		fetch:   fetch,
		started: now(),
		now:     now,
	}
}

func (m fetchSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch)
}

func (m fetchSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case fetchDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m fetchSpinnerModel) View() string {
	if m.done {
		return ""
	}

	line := fmt.Sprintf("%s %s", m.spinner.View(), m.label)
	if elapsed := m.now().Sub(m.started); elapsed >= slowFetchAfter {
		line += slowFetchStyle.Render(fmt.Sprintf(" %ds, the backend is slow to answer", int(elapsed.Seconds())))
	}

	return line
}

func runFetchSpinner(ctx context.Context, output io.Writer, label string, now func() time.Time, fetch func(context.Context) error) error {
	fetchCmd := func() tea.Msg {
		return fetchDoneMsg{err: fetch(ctx)}
	}

	p := tea.NewProgram(
		newFetchSpinnerModel(label, fetchCmd, now),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(fetchSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}

// fetchWithSpinner shows a spinner on stderr while fetch runs, except under
// --json.
func (a *app) fetchWithSpinner(cmd *cobra.Command, label string, fetch func(context.Context) error) error {
	if a.asJSON {
		return fetch(cmd.Context())
	}

	return runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), label, a.now, fetch)
}
