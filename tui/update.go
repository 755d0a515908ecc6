package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kplay-cli/kplay/control"
	"github.com/kplay-cli/kplay/internal/ui"
	"github.com/kplay-cli/kplay/progress"
	"github.com/kplay-cli/kplay/util"
)

const (
	scrubStep    = progress.Scale / 100
	scrubBigStep = progress.Scale / 10

	speedStep  = 0.25
	volumeStep = 5
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return b, nil
	case tea.KeyMsg:
		return b.updateKey(msg)
	case ui.ClearNoticeMsg:
		b.notifier.Update(msg)
		return b, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return b, cmd
	case progressMsg:
		b.position = msg.position
		b.buffered = msg.buffered
		b.duration = msg.duration
		b.window = msg.window
		b.windows = msg.windows
		b.kind = msg.kind
		b.hasKind = true
	case scrubMsg:
		b.scrubPosition = int64(msg)
	case buttonsMsg:
		b.buttons = control.Buttons(msg)
		if b.state == scrubState && !b.buttons.Scrub {
			b.setState(playingState)
		}
	case visibilityMsg:
		b.visible = bool(msg)
		// hiding cancels any drag in progress
		if !b.visible && b.state == scrubState {
			b.setState(playingState)
		}
	case bufferingMsg:
		b.buffering = bool(msg)
	case playingMsg:
		b.playing = bool(msg)
	case parametersMsg:
		b.speed = msg.speed
		b.volume = msg.volume
	case playbackErrorMsg:
		if msg.cause == nil {
			b.raiseError(fmt.Errorf("engine error %d", msg.code))
			break
		}
		b.raiseError(fmt.Errorf("%w (code %d)", msg.cause, msg.code))
	case openedMsg:
		if b.state == loadingState || b.state == errorState {
			b.lastError = nil
			b.setState(playingState)
		}
	case openFailedMsg:
		b.raiseError(msg.err)
	}

	return b, nil
}

func (b *statefulBubble) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, b.keymap.forceQuit) {
		return b, tea.Quit
	}

	switch b.state {
	case loadingState:
		return b, nil
	case errorState:
		switch {
		case key.Matches(msg, b.keymap.quit):
			return b, tea.Quit
		case key.Matches(msg, b.keymap.retry):
			locators := b.locators
			b.setState(loadingState)
			return b, b.open(locators)
		}
		return b, nil
	case scrubState:
		return b.updateScrub(msg)
	}

	switch {
	case key.Matches(msg, b.keymap.quit):
		return b, tea.Quit
	case key.Matches(msg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
		b.gesture((*control.Controller).Touch)
	case key.Matches(msg, b.keymap.toggleControls):
		b.gesture((*control.Controller).Tap)
	case key.Matches(msg, b.keymap.playPause):
		b.gesture(func(c *control.Controller) { _ = c.TogglePlay() })
	case key.Matches(msg, b.keymap.rewind):
		b.gesture((*control.Controller).Rewind)
		return b, b.unavailable("rewind", b.buttons.Rewind)
	case key.Matches(msg, b.keymap.fastForward):
		b.gesture((*control.Controller).FastForward)
		return b, b.unavailable("fast forward", b.buttons.FastForward)
	case key.Matches(msg, b.keymap.previous):
		b.gesture((*control.Controller).Previous)
		return b, b.unavailable("previous", b.buttons.Previous)
	case key.Matches(msg, b.keymap.next):
		b.gesture((*control.Controller).Next)
		return b, b.unavailable("next", b.buttons.Next)
	case key.Matches(msg, b.keymap.speedUp):
		b.gesture(func(c *control.Controller) { c.ChangeSpeed(speedStep) })
	case key.Matches(msg, b.keymap.speedDown):
		b.gesture(func(c *control.Controller) { c.ChangeSpeed(-speedStep) })
	case key.Matches(msg, b.keymap.speedReset):
		b.gesture((*control.Controller).ResetSpeed)
	case key.Matches(msg, b.keymap.volumeUp):
		b.gesture(func(c *control.Controller) { c.ChangeVolume(volumeStep) })
	case key.Matches(msg, b.keymap.volumeDown):
		b.gesture(func(c *control.Controller) { c.ChangeVolume(-volumeStep) })
	case key.Matches(msg, b.keymap.scrub):
		if !b.buttons.Scrub {
			b.gesture((*control.Controller).Touch)
			return b, b.unavailable("scrub", false)
		}
		b.scrubValue = progress.ProgressValue(b.position, b.duration)
		b.scrubPosition = b.position
		b.setState(scrubState)
		b.gesture((*control.Controller).ScrubStart)
	default:
		b.gesture((*control.Controller).Touch)
	}

	return b, nil
}

func (b *statefulBubble) updateScrub(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, b.keymap.scrubBack):
		b.moveScrub(-scrubStep)
	case key.Matches(msg, b.keymap.scrubForward):
		b.moveScrub(scrubStep)
	case key.Matches(msg, b.keymap.scrubBigBack):
		b.moveScrub(-scrubBigStep)
	case key.Matches(msg, b.keymap.scrubBigForward):
		b.moveScrub(scrubBigStep)
	case key.Matches(msg, b.keymap.confirm):
		value := b.scrubValue
		b.setState(playingState)
		b.gesture(func(c *control.Controller) { c.ScrubEnd(value) })
	case key.Matches(msg, b.keymap.cancel):
		b.setState(playingState)
		b.gesture((*control.Controller).ScrubCancel)
	case key.Matches(msg, b.keymap.quit):
		return b, tea.Quit
	}

	return b, nil
}

// unavailable flashes a notice when a gesture hit a disabled button.
func (b *statefulBubble) unavailable(gesture string, enabled bool) tea.Cmd {
	if enabled {
		return nil
	}
	return b.notifier.Notify(gesture + " unavailable")
}

func (b *statefulBubble) moveScrub(delta int) {
	value := util.Clamp(b.scrubValue+delta, 0, progress.Scale)
	b.scrubValue = value
	b.scrubPosition = progress.PositionValue(value, b.duration)
	b.gesture(func(c *control.Controller) { c.ScrubMove(value) })
}

// open asks the controller to play locators, reporting the outcome back to the program.
func (b *statefulBubble) open(locators []string) tea.Cmd {
	return func() tea.Msg {
		b.gesture(func(c *control.Controller) {
			if err := c.Open(locators...); err != nil {
				b.send(openFailedMsg{err: err})
				return
			}
			remember(c.Machine())
			b.send(openedMsg{})
		})
		return nil
	}
}
