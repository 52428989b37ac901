package dashboard

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ecofuelconnect/efc/internal/poll"
)

type snapshotMsg[T any] struct {
	snapshot poll.Snapshot[T]
}

type updatesClosedMsg struct{}

type refreshDoneMsg struct {
	err error
}

// ViewFunc renders one snapshot value. FetchedAt is the time the value
// arrived, for staleness markers.
type ViewFunc[T any] func(value T, fetchedAt time.Time) string

// Watch is a live bubbletea view over a poller subscription. Pressing r runs
// an out-of-band refresh whose failure is shown; background tick failures are
// never shown.
type Watch[T any] struct {
	ctx     context.Context
	title   string
	updates <-chan poll.Snapshot[T]
	refresh func(context.Context) error
	view    ViewFunc[T]
	styles  styles

	current    poll.Snapshot[T]
	hasValue   bool
	refreshing bool
	alert      string
	quitting   bool
}

func NewWatch[T any](
	ctx context.Context,
	title string,
	updates <-chan poll.Snapshot[T],
	refresh func(context.Context) error,
	view ViewFunc[T],
) Watch[T] {
	return Watch[T]{
		ctx:     ctx,
		title:   title,
		updates: updates,
		refresh: refresh,
		view:    view,
		styles:  newStyles(),
	}
}

func (m Watch[T]) Init() tea.Cmd {
	return m.waitForSnapshot()
}

func (m Watch[T]) waitForSnapshot() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		snapshot, ok := <-updates
		if !ok {
			return updatesClosedMsg{}
		}
		return snapshotMsg[T]{snapshot: snapshot}
	}
}

func (m Watch[T]) runRefresh() tea.Cmd {
	ctx, refresh := m.ctx, m.refresh
	return func() tea.Msg {
		return refreshDoneMsg{err: refresh(ctx)}
	}
}

func (m Watch[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg[T]:
		m.current = msg.snapshot
		m.hasValue = true
		return m, m.waitForSnapshot()
	case updatesClosedMsg:
		m.quitting = true
		return m, tea.Quit
	case refreshDoneMsg:
		m.refreshing = false
		m.alert = ""
		if msg.err != nil {
			m.alert = "✗ " + msg.err.Error()
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if m.refreshing || m.refresh == nil {
				return m, nil
			}
			m.refreshing = true
			m.alert = ""
			return m, m.runRefresh()
		}
	}

	return m, nil
}

func (m Watch[T]) View() string {
	if m.quitting {
		return ""
	}

	body := m.styles.empty.Render("Waiting for the first refresh...")
	if m.hasValue {
		body = m.view(m.current.Value, m.current.FetchedAt)
	}

	lines := []string{m.styles.header.Render(m.title), body}
	if m.alert != "" {
		lines = append(lines, m.styles.alert.Render(m.alert))
	}

	status := "r refresh · q quit"
	if m.refreshing {
		status = "refreshing... · q quit"
	}
	lines = append(lines, m.styles.footer.Render(status))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Current reports the newest snapshot the view has shown.
func (m Watch[T]) Current() (poll.Snapshot[T], bool) {
	return m.current, m.hasValue
}
