// Package ui provides transient notices rendered beside a Bubble Tea view.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kplay-cli/kplay/style"
)

// DefaultLifetime is how long a notice stays on screen.
const DefaultLifetime = 3 * time.Second

// Model displays at most one notice. A newer notice replaces the older one
// and restarts its lifetime.
type Model struct {
	notice   string
	seq      int
	lifetime time.Duration
}

// ClearNoticeMsg expires the notice it was scheduled for.
type ClearNoticeMsg struct {
	seq int
}

// New returns a notifier whose notices expire after lifetime.
func New(lifetime time.Duration) *Model {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &Model{lifetime: lifetime}
}

// Notify shows text and returns the command that will clear it.
func (m *Model) Notify(text string) tea.Cmd {
	m.notice = text
	m.seq++
	seq := m.seq
	return tea.Tick(m.lifetime, func(time.Time) tea.Msg {
		return ClearNoticeMsg{seq: seq}
	})
}

// Update clears the notice when its own expiry arrives.
func (m *Model) Update(msg tea.Msg) {
	if expired, ok := msg.(ClearNoticeMsg); ok && expired.seq == m.seq {
		m.notice = ""
	}
}

// Notice returns the text on screen, if any.
func (m *Model) Notice() string {
	return m.notice
}

// View appends the notice to the last line of content.
func (m *Model) View(content string) string {
	if m.notice == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	lines[len(lines)-1] += "  " + style.Faint(m.notice)
	return strings.Join(lines, "\n")
}
