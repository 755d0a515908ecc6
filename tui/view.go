package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kplay-cli/kplay/icon"
	"github.com/kplay-cli/kplay/player"
	"github.com/kplay-cli/kplay/style"
	"github.com/kplay-cli/kplay/util"
	"github.com/muesli/reflow/wrap"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case playingState, scrubState:
		if b.visible {
			output = b.viewControls()
		} else {
			output = b.viewHidden()
		}
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			b.spinnerC.View() + " " + style.Truncate(b.width-2)(b.title()),
		},
	)
}

// viewHidden keeps a single status line while the controls are hidden.
func (b *statefulBubble) viewHidden() string {
	return b.renderLines(
		false,
		[]string{
			style.Faint(b.statusIcon() + " " + util.FormatMillis(b.position) + "  tab to show controls"),
		},
	)
}

func (b *statefulBubble) viewControls() string {
	header := style.Title("Now Playing")
	if b.hasKind {
		header += " " + style.Tag(style.Base, style.SecondaryColor)(b.kind.String())
	}
	if b.windows > 1 {
		header += " " + style.Faint(fmt.Sprintf("%d/%d", b.window+1, b.windows))
	}

	lines := []string{
		header,
		"",
		style.Truncate(b.width)(b.statusIcon() + " " + style.Fg(style.AccentColor)(b.title())),
		"",
		b.viewBar(),
		b.viewTime(),
		b.viewParameters(),
		"",
		b.viewButtons(),
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewBar() string {
	if b.duration <= 0 {
		return style.Faint(strings.Repeat("─", b.progressC.Width))
	}

	value := b.position
	if b.state == scrubState {
		value = b.scrubPosition
	}
	return b.progressC.ViewAs(float64(util.Clamp(value, 0, b.duration)) / float64(b.duration))
}

func (b *statefulBubble) viewTime() string {
	position := b.position
	if b.state == scrubState {
		position = b.scrubPosition
	}

	if b.duration <= 0 {
		live := "--:--"
		if b.hasKind && b.kind.Adaptive() {
			live = style.Fg(style.ErrorColor)("LIVE")
		}
		return util.FormatMillis(position) + " / " + live
	}

	label := util.FormatMillis(position) + " / " + util.FormatMillis(b.duration)
	if b.state == scrubState {
		label = style.Bold(label)
	}
	return label + style.Faint(" buffered "+util.FormatMillis(b.buffered))
}

func (b *statefulBubble) viewParameters() string {
	speed := strconv.FormatFloat(b.speed, 'f', -1, 64) + "x"
	if b.speed != player.DefaultSpeed {
		speed = style.Fg(style.Yellow)(speed)
	}

	volume := fmt.Sprintf("%d%%", b.volume)
	if b.volume == 0 {
		volume = style.Fg(style.ErrorColor)("muted")
	}

	return style.Faint("speed ") + speed + style.Faint("  volume ") + volume
}

func (b *statefulBubble) viewButtons() string {
	button := func(i icon.Icon, enabled bool) string {
		if enabled {
			return icon.Get(i)
		}
		return style.Fg(style.DisabledColor)(icon.Get(i))
	}

	toggle := icon.Play
	if b.playing {
		toggle = icon.Pause
	}

	return strings.Join([]string{
		button(icon.Previous, b.buttons.Previous),
		button(icon.Rewind, b.buttons.Rewind),
		button(toggle, true),
		button(icon.FastForward, b.buttons.FastForward),
		button(icon.Next, b.buttons.Next),
	}, "  ")
}

func (b *statefulBubble) statusIcon() string {
	switch {
	case b.buffering:
		return b.spinnerC.View()
	case b.playing:
		return icon.Get(icon.Play)
	default:
		return icon.Get(icon.Pause)
	}
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(style.ErrorColor).Bold(true)
	errorBody := errorStyle.Render(fmt.Sprintf("Playback failed: %v", b.lastError))
	errorMsg := wrap.String(errorBody, b.width)
	return b.renderLines(
		true,
		[]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " " + style.Truncate(b.width-2)(b.title()),
			"",
			errorMsg,
		},
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
