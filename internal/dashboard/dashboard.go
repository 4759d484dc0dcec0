// Package dashboard renders a live terminal view of a running world's
// tracks, refreshed on a timer: a bubbletea Model/Update/View split
// driven by tea.Tick commands, styled with lipgloss.
package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kestrelflow/melodium-engine/internal/world"
)

// Model is the dashboard's bubbletea model: a snapshot of the observed
// world's tracks, refreshed every tick.
type Model struct {
	world *world.World

	tracks []world.Track
	spin   spinner.Model

	interval time.Duration
	width    int
	height   int
	quitting bool
}

// New constructs a dashboard Model polling w every interval.
func New(w *world.World, interval time.Duration) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	if interval <= 0 {
		interval = 250 * time.Millisecond
	}

	return Model{
		world:    w,
		spin:     s,
		interval: interval,
		width:    80,
		height:   24,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, tickCmd(m.interval))
}

// Update implements tea.Model: it advances the spinner, refreshes the
// track snapshot on every tickMsg, and quits on ctrl+c, q or esc. It does
// not quit on its own when the world's tracks finish.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		m.tracks = m.world.Tracks()
		if m.quitting {
			return m, nil
		}
		return m, tickCmd(m.interval)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	default:
		return m, nil
	}
}

// tickCmd schedules one tickMsg after interval; Update issues a fresh
// tickCmd on each tickMsg to keep the refresh loop going.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
