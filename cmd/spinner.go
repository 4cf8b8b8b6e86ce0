package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var errStatusCanceled = errors.New("status request canceled")

type statusFetchedMsg struct {
	err error
}

// statusSpinner shows which server is being asked and for how long while a
// status request is in flight.
type statusSpinner struct {
	spinner spinner.Model
	server  string
	started time.Time
	now     func() time.Time
	fetch   tea.Cmd
	cancel  context.CancelFunc
	err     error
	done    bool
}

func newStatusSpinner(server string, now func() time.Time, fetch tea.Cmd, cancel context.CancelFunc) statusSpinner {
	return statusSpinner{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("39"))),
		),
		server:  server,
		started: now(),
		now:     now,
		fetch:   fetch,
		cancel:  cancel,
	}
}

func (m statusSpinner) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch)
}

func (m statusSpinner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.cancel()
			m.done = true
			m.err = errStatusCanceled
			return m, tea.Quit
		}
		return m, nil
	case statusFetchedMsg:
		m.done = true
		if m.err == nil {
			m.err = msg.err
		}
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m statusSpinner) View() string {
	if m.done {
		return ""
	}

	label := fmt.Sprintf("%s Fetching machine status from %s", m.spinner.View(), m.server)
	if elapsed := m.now().Sub(m.started); elapsed >= time.Second {
		label += fmt.Sprintf(" (%ds)", int(elapsed.Seconds()))
	}
	return label
}

// fetchStatusWithSpinner runs fetch under a spinner on output. An interrupt
// cancels the request.
func fetchStatusWithSpinner(ctx context.Context, output io.Writer, server string, now func() time.Time, fetch func(context.Context) error) error {
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	fetchCmd := func() tea.Msg {
		return statusFetchedMsg{err: fetch(fetchCtx)}
	}

	p := tea.NewProgram(
		newStatusSpinner(server, now, fetchCmd, cancel),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	switch {
	case errors.Is(err, tea.ErrInterrupted):
		return errStatusCanceled
	case err != nil:
		return err
	}

	result, ok := finalModel.(statusSpinner)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}
	return result.err
}
