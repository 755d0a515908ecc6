package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kplay-cli/kplay/control"
	"github.com/kplay-cli/kplay/format"
)

type progressMsg struct {
	position int64
	buffered int64
	duration int64
	window   int
	windows  int
	kind     format.Kind
}

type playbackErrorMsg struct {
	code  int
	cause error
}

type openFailedMsg struct {
	err error
}

type parametersMsg struct {
	speed  float64
	volume int
}

type (
	scrubMsg      int64
	buttonsMsg    control.Buttons
	visibilityMsg bool
	bufferingMsg  bool
	playingMsg    bool
	openedMsg     struct{}
	closedMsg     struct{}
)

// presenter forwards control surface updates to the Bubble Tea program. It
// runs on the playback timeline.
type presenter struct {
	send       func(tea.Msg)
	controller *control.Controller
}

func (p *presenter) OnProgress(position, buffered, duration int64) {
	msg := progressMsg{position: position, buffered: buffered, duration: duration}
	if p.controller != nil {
		machine := p.controller.Machine()
		msg.window = machine.CurrentWindow()
		msg.windows = len(machine.Sources())
		msg.kind, _ = machine.Kind()
	}
	p.send(msg)
}

func (p *presenter) OnScrubPosition(position int64) {
	p.send(scrubMsg(position))
}

func (p *presenter) OnButtonsEnabled(buttons control.Buttons) {
	p.send(buttonsMsg(buttons))
}

func (p *presenter) OnVisibilityChanged(visible bool) {
	p.send(visibilityMsg(visible))
}

func (p *presenter) OnBufferingChanged(buffering bool) {
	p.send(bufferingMsg(buffering))
}

func (p *presenter) OnPlayingChanged(playing bool) {
	p.send(playingMsg(playing))
}

func (p *presenter) OnParametersChanged(speed float64, volume int) {
	p.send(parametersMsg{speed: speed, volume: volume})
}

func (p *presenter) OnError(code int, cause error) {
	p.send(playbackErrorMsg{code: code, cause: cause})
}

var _ control.Presenter = (*presenter)(nil)
