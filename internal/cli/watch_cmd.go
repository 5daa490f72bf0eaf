package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/timeclock/internal/cli/formatter"
	"github.com/alexanderramin/timeclock/internal/domain"
	"github.com/alexanderramin/timeclock/internal/service"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live status view with a running clock",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("watch requires an interactive terminal")
			}
			_, err := tea.NewProgram(newWatchModel(app)).Run()
			return err
		},
	}
}

// watchTickMsg drives the once-per-second refresh of the live view.
type watchTickMsg time.Time

// watchDataMsg carries a freshly loaded snapshot.
type watchDataMsg struct {
	entry  *domain.TimeEntry
	status service.QueueStatus
	err    error
}

// watchActionMsg signals a completed key-triggered transition.
type watchActionMsg struct{ err error }

type watchKeymap struct {
	Break    key.Binding
	ClockOut key.Binding
	Quit     key.Binding
}

func defaultWatchKeymap() watchKeymap {
	return watchKeymap{
		Break:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "toggle break")),
		ClockOut: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "clock out")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// watchModel is the live status view: the elapsed clock re-renders every
// second from computed values, so pausing the loop never loses time.
type watchModel struct {
	app    *App
	keymap watchKeymap

	entry    *domain.TimeEntry
	status   service.QueueStatus
	err      error
	quitting bool
}

func newWatchModel(app *App) watchModel {
	return watchModel{app: app, keymap: defaultWatchKeymap()}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.loadData(), watchTick())
}

func watchTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

func (m watchModel) loadData() tea.Cmd {
	app := m.app
	return func() tea.Msg {
		ctx := context.Background()

		entry, err := app.Clock.Current(ctx)
		if err != nil && !errors.Is(err, service.ErrNotClockedIn) {
			return watchDataMsg{err: err}
		}
		status, err := app.Sync.Status(ctx)
		if err != nil {
			return watchDataMsg{err: err}
		}
		return watchDataMsg{entry: entry, status: status}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case watchTickMsg:
		return m, tea.Batch(m.loadData(), watchTick())

	case watchDataMsg:
		m.entry = msg.entry
		m.status = msg.status
		m.err = msg.err
		return m, nil

	case watchActionMsg:
		m.err = msg.err
		return m, m.loadData()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Break):
			return m, m.toggleBreak()
		case key.Matches(msg, m.keymap.ClockOut):
			return m, m.clockOut()
		}
	}
	return m, nil
}

func (m watchModel) toggleBreak() tea.Cmd {
	app := m.app
	onBreak := m.entry != nil && m.entry.State == domain.EntryOnBreak
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if onBreak {
			_, err = app.Clock.EndBreak(ctx)
		} else {
			_, err = app.Clock.StartBreak(ctx)
		}
		return watchActionMsg{err: err}
	}
}

func (m watchModel) clockOut() tea.Cmd {
	app := m.app
	return func() tea.Msg {
		_, err := app.Clock.ClockOut(context.Background(), service.ClockOutOptions{})
		return watchActionMsg{err: err}
	}
}

func (m watchModel) View() string {
	if m.quitting {
		return ""
	}

	out := formatter.FormatStatus(m.entry, m.status, time.Now().UTC()) + "\n"

	if m.err != nil && !errors.Is(m.err, domain.ErrInvalidTransition) {
		out += formatter.StyleRed.Render(fmt.Sprintf("  %v", m.err)) + "\n"
	}

	help := make([]string, 0, 3)
	for _, b := range []key.Binding{m.keymap.Break, m.keymap.ClockOut, m.keymap.Quit} {
		help = append(help, fmt.Sprintf("%s %s", formatter.Bold(b.Help().Key), formatter.Dim(b.Help().Desc)))
	}
	out += "  " + help[0] + formatter.Dim("  ·  ") + help[1] + formatter.Dim("  ·  ") + help[2] + "\n"

	return out
}
