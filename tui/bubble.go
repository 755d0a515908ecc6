// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kplay-cli/kplay/control"
	"github.com/kplay-cli/kplay/format"
	"github.com/kplay-cli/kplay/internal/ui"
	"github.com/kplay-cli/kplay/key"
	"github.com/kplay-cli/kplay/player"
	"github.com/kplay-cli/kplay/style"
	"github.com/kplay-cli/kplay/util"
	"github.com/spf13/viper"
)

// statefulBubble mirrors the control surface published by the controller and
// turns key presses into controller gestures.
type statefulBubble struct {
	state  state
	keymap *statefulKeymap

	// components
	spinnerC  spinner.Model
	progressC progress.Model
	helpC     help.Model

	width, height int

	locators []string

	position, buffered, duration int64
	window, windows              int
	kind                         format.Kind
	hasKind                      bool

	buttons   control.Buttons
	visible   bool
	buffering bool
	playing   bool

	speed  float64
	volume int

	scrubValue    int
	scrubPosition int64

	lastError error
	notifier  *ui.Model

	// post runs a gesture on the playback timeline.
	post func(func(*control.Controller))
	// send delivers a message to the program from any goroutine.
	send func(tea.Msg)
}

func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.setState(errorState)
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()

	b.width = width - x
	b.height = height - y
	b.helpC.Width = b.width

	barWidth := b.width
	if limit := viper.GetInt(key.TUIProgressWidth); limit > 0 {
		barWidth = util.Min(barWidth, limit)
	}
	b.progressC.Width = util.Max(barWidth, 10)
}

func (b *statefulBubble) gesture(fn func(*control.Controller)) {
	if b.post != nil {
		b.post(fn)
	}
}

// title is the locator of the window being played.
func (b *statefulBubble) title() string {
	if b.window >= 0 && b.window < len(b.locators) {
		return b.locators[b.window]
	}
	if len(b.locators) > 0 {
		return b.locators[0]
	}
	return ""
}

func newBubble(locators []string, post func(func(*control.Controller)), send func(tea.Msg)) *statefulBubble {
	bubble := &statefulBubble{
		keymap:   newStatefulKeymap(),
		locators: locators,
		windows:  len(locators),
		speed:    player.DefaultSpeed,
		volume:   player.MaxVolume,
		post:     post,
		send:     send,
		notifier: ui.New(ui.DefaultLifetime),
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(style.AccentColor)

	bubble.progressC = progress.New(
		progress.WithGradient(string(style.Mauve), string(style.Lavender)),
		progress.WithoutPercentage(),
	)

	bubble.setState(loadingState)

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	} else {
		bubble.resize(80, 24)
	}

	return bubble
}
