package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/kplay-cli/kplay/style"
)

// statefulKeymap defines the keyboard interactions available within various application states.
type statefulKeymap struct {
	state state

	quit, forceQuit,
	playPause,
	rewind, fastForward,
	previous, next,
	speedUp, speedDown, speedReset,
	volumeUp, volumeDown,
	scrub, scrubBack, scrubForward, scrubBigBack, scrubBigForward,
	confirm, cancel,
	toggleControls,
	retry,
	showHelp key.Binding
}

func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp(style.Fg(style.AccentColor)("space"), style.Fg(style.AccentColor)("play/pause")),
		),
		rewind: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "rewind"),
		),
		fastForward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "fast forward"),
		),
		previous: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "previous"),
		),
		next: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next"),
		),
		speedUp: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "faster"),
		),
		speedDown: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "slower"),
		),
		speedReset: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("backspace", "normal speed"),
		),
		volumeUp: key.NewBinding(
			key.WithKeys("+", "=", "0"),
			key.WithHelp("+", "volume up"),
		),
		volumeDown: key.NewBinding(
			key.WithKeys("-", "9"),
			key.WithHelp("-", "volume down"),
		),
		scrub: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "scrub"),
		),
		scrubBack: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "back"),
		),
		scrubForward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "forward"),
		),
		scrubBigBack: key.NewBinding(
			key.WithKeys("shift+left", "H"),
			key.WithHelp("H", "back 10%"),
		),
		scrubBigForward: key.NewBinding(
			key.WithKeys("shift+right", "L"),
			key.WithHelp("L", "forward 10%"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "seek here"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		toggleControls: key.NewBinding(
			key.WithKeys("tab", "v"),
			key.WithHelp("tab", "toggle controls"),
		),
		retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	to2 := func(a []key.Binding) ([]key.Binding, []key.Binding) {
		return a, a
	}

	switch k.state {
	case loadingState:
		return to2(h(k.forceQuit))
	case playingState:
		return h(k.playPause, k.rewind, k.fastForward, k.showHelp), h(k.playPause, k.rewind, k.fastForward, k.previous, k.next, k.scrub, k.speedDown, k.speedUp, k.speedReset, k.volumeDown, k.volumeUp, k.toggleControls, k.quit)
	case scrubState:
		return h(k.scrubBack, k.scrubForward, k.confirm, k.cancel), h(k.scrubBack, k.scrubForward, k.scrubBigBack, k.scrubBigForward, k.confirm, k.cancel)
	case errorState:
		return to2(h(k.retry, k.quit))
	default:
		return to2(h())
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}
