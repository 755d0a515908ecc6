package player

import (
	"fmt"
	"math"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kplay-cli/kplay/clock"
	"github.com/kplay-cli/kplay/constant"
	"github.com/kplay-cli/kplay/log"
	"github.com/kplay-cli/kplay/source"
	"github.com/kplay-cli/kplay/where"
	"github.com/sirupsen/logrus"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
	jobQueueSize      = 64
)

// properties mirrors the observed mpv properties. Owned by the timeline.
type properties struct {
	timePos     float64
	hasTimePos  bool
	duration    float64
	hasDuration bool
	cacheTime   float64
	hasCache    bool

	pausedForCache bool
	seeking        bool
	eofReached     bool
	idleActive     bool
	seekable       bool

	playlistPos int
	width       int
	height      int

	// active is set by Prepare and cleared by Stop.
	active bool
	// loaded is set between file-loaded and end-file.
	loaded bool
}

// deriveState maps mirrored mpv properties onto engine states.
func deriveState(p properties) State {
	switch {
	case !p.active:
		return StateIdle
	case p.eofReached:
		return StateEnded
	case !p.loaded, p.seeking, p.pausedForCache, !p.hasTimePos:
		return StateBuffering
	default:
		return StateReady
	}
}

// MPV is an Engine backed by an mpv process controlled over JSON-IPC.
//
// The event reader and the command worker never touch the mirrored state;
// they post closures onto the timeline executor.
type MPV struct {
	binary     string
	socketPath string
	timeline   clock.Executor
	logger     *logrus.Entry

	// worker-owned
	cmd      *exec.Cmd
	exited   chan struct{}
	listener *EventListener
	mu       sync.Mutex // serializes socket round trips

	jobs     chan func()
	dispatch func(func())
	stopped  chan struct{}

	// timeline-owned
	props         properties
	sources       []*source.Source
	state         State
	playWhenReady bool
	notifiedPlay  bool
	seekTarget    int64
	pendingSeek   int64
	videoWidth    int
	videoHeight   int
	speed         float64
	volume        int
	subscribers   Subscribers
	released      bool
}

// MPVOption configures an MPV engine.
type MPVOption func(*MPV)

// WithBinary sets the mpv executable.
func WithBinary(binary string) MPVOption {
	return func(m *MPV) {
		if binary != "" {
			m.binary = binary
		}
	}
}

// WithSocketPath overrides the generated IPC socket path.
func WithSocketPath(path string) MPVOption {
	return func(m *MPV) {
		m.socketPath = path
	}
}

// NewMPV creates an engine delivering its callbacks on timeline. The mpv
// process is launched lazily by the first Prepare.
func NewMPV(timeline clock.Executor, options ...MPVOption) (*MPV, error) {
	m := &MPV{
		binary:        constant.MPV,
		timeline:      timeline,
		logger:        log.For("mpv"),
		jobs:          make(chan func(), jobQueueSize),
		stopped:       make(chan struct{}),
		state:         StateIdle,
		notifiedPlay:  true,
		playWhenReady: true,
		seekTarget:    TimeUnset,
		pendingSeek:   TimeUnset,
		speed:         DefaultSpeed,
		volume:        MaxVolume,
	}

	for _, option := range options {
		option(m)
	}

	if m.socketPath == "" {
		id, err := uuid.NewRandom()
		if err != nil {
			return nil, fmt.Errorf("generate socket name: %w", err)
		}
		m.socketPath = filepath.Join(where.Sockets(), fmt.Sprintf("%s-%s.sock", constant.Kplay, id.String()[:8]))
	}

	m.dispatch = func(job func()) { m.jobs <- job }
	go m.work()

	return m, nil
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

func (m *MPV) work() {
	defer close(m.stopped)
	for job := range m.jobs {
		job()
	}
}

// Wait returns a channel closed once Release has shut mpv down.
func (m *MPV) Wait() <-chan struct{} {
	return m.stopped
}

// CurrentPosition returns the playback position in milliseconds, or the target
// of an in-flight seek.
func (m *MPV) CurrentPosition() int64 {
	if m.seekTarget != TimeUnset {
		return m.seekTarget
	}
	if !m.props.hasTimePos {
		return 0
	}
	return seconds(m.props.timePos)
}

// BufferedPosition returns how far the demuxer cache reaches, in milliseconds.
func (m *MPV) BufferedPosition() int64 {
	position := m.CurrentPosition()
	if !m.props.hasCache {
		return position
	}

	buffered := max(position, seconds(m.props.cacheTime))
	if duration := m.Duration(); duration != TimeUnset {
		buffered = min(buffered, duration)
	}
	return buffered
}

// Duration returns the media duration in milliseconds or TimeUnset.
func (m *MPV) Duration() int64 {
	if !m.props.hasDuration {
		return TimeUnset
	}
	return seconds(m.props.duration)
}

// BufferedPercentage returns the buffered share of the duration, 0 to 100.
func (m *MPV) BufferedPercentage() int {
	duration := m.Duration()
	if duration == TimeUnset || duration == 0 {
		return 0
	}
	return int(min(100, max(0, m.BufferedPosition()*100/duration)))
}

func (m *MPV) PlaybackState() State {
	return m.state
}

func (m *MPV) PlayWhenReady() bool {
	return m.playWhenReady
}

func (m *MPV) CurrentWindow() int {
	return max(0, m.props.playlistPos)
}

// Timeline returns one window per prepared source. Only the current window's
// duration and seekability are known.
func (m *MPV) Timeline() Timeline {
	windows := make([]Window, len(m.sources))
	current := m.CurrentWindow()
	for i, src := range m.sources {
		windows[i] = Window{DurationMs: TimeUnset}
		if i != current {
			continue
		}
		windows[i].DurationMs = m.Duration()
		windows[i].Seekable = m.props.seekable
		windows[i].Dynamic = src.Kind.Adaptive() && !m.props.hasDuration
	}
	return Timeline{Windows: windows}
}

func (m *MPV) Subscribe(fn func(Event)) func() {
	return m.subscribers.Add(fn)
}

func (m *MPV) Speed() float64 {
	return m.speed
}

// SetSpeed changes the playback rate. It is kept across Prepare.
func (m *MPV) SetSpeed(speed float64) {
	speed = ClampSpeed(speed)
	if m.released || speed == m.speed {
		return
	}

	m.speed = speed
	m.command([]interface{}{"set_property", "speed", speed})
	m.parametersChanged()
}

func (m *MPV) Volume() int {
	return m.volume
}

// SetVolume changes the output volume. It is kept across Prepare.
func (m *MPV) SetVolume(volume int) {
	volume = ClampVolume(volume)
	if m.released || volume == m.volume {
		return
	}

	m.volume = volume
	m.command([]interface{}{"set_property", "volume", volume})
	m.parametersChanged()
}

func (m *MPV) parametersChanged() {
	m.emit(Event{Kind: EventParametersChanged, Speed: m.speed, Volume: m.volume})
}

// SetPlayWhenReady pauses or resumes playback.
func (m *MPV) SetPlayWhenReady(play bool) {
	if m.released || m.playWhenReady == play {
		return
	}

	m.playWhenReady = play
	m.command([]interface{}{"set_property", "pause", !play})
	m.refresh()
}

// SeekTo moves playback to position in window.
func (m *MPV) SeekTo(window int, position int64) {
	if m.released || !m.props.active {
		return
	}
	if window < 0 || window >= len(m.sources) {
		m.logger.Warnf("seek to window %d out of range", window)
		return
	}

	m.props.seeking = true
	if window != m.CurrentWindow() {
		m.pendingSeek = position
		m.seekTarget = TimeUnset
		m.command([]interface{}{"playlist-play-index", window})
	} else {
		m.seekTarget = max(0, position)
		m.command(m.seekCommand(window, position))
	}
	m.refresh()
}

func (m *MPV) seekCommand(window int, position int64) []interface{} {
	if position == TimeUnset {
		if w, ok := m.Timeline().Window(window); ok && w.Dynamic {
			return []interface{}{"seek", 100, "absolute-percent"}
		}
		position = 0
	}
	return []interface{}{"seek", float64(position) / 1000, "absolute"}
}

// Prepare loads sources as a playlist, launching mpv when needed.
func (m *MPV) Prepare(sources []*source.Source) {
	if m.released {
		return
	}

	m.sources = sources
	m.props = properties{active: true, playlistPos: 0}
	m.seekTarget = TimeUnset
	m.pendingSeek = TimeUnset

	play, speed, volume := m.playWhenReady, m.speed, m.volume
	m.dispatch(func() {
		if err := m.ensureRunning(); err != nil {
			m.fail(CodeProcess, err)
			return
		}

		for i, src := range sources {
			if _, err := m.sendCommand(loadfileCommand(src, i == 0)); err != nil {
				m.fail(CodeSource, fmt.Errorf("load %s: %w", src, err))
				return
			}
		}

		for name, value := range map[string]interface{}{"pause": !play, "speed": speed, "volume": volume} {
			if _, err := m.sendCommand([]interface{}{"set_property", name, value}); err != nil {
				m.logger.Warnf("set %s: %v", name, err)
			}
		}
	})

	m.emit(Event{Kind: EventTimelineChanged})
	m.refresh()
}

func loadfileCommand(src *source.Source, first bool) map[string]interface{} {
	flags := "append"
	if first {
		flags = "replace"
	}

	command := map[string]interface{}{
		"name":  "loadfile",
		"url":   src.Locator,
		"flags": flags,
	}
	if len(src.Options) > 0 {
		command["options"] = src.Options
	}
	return command
}

// Stop unloads the playlist. The process keeps running idle.
func (m *MPV) Stop() {
	if m.released {
		return
	}

	m.props = properties{}
	m.sources = nil
	m.seekTarget = TimeUnset
	m.pendingSeek = TimeUnset
	m.command([]interface{}{"stop"})
	m.emit(Event{Kind: EventTimelineChanged})
	m.refresh()
}

// Release quits mpv and drops all subscribers. The engine is unusable afterwards.
func (m *MPV) Release() {
	if m.released {
		return
	}

	m.released = true
	m.subscribers.Clear()
	m.dispatch(m.shutdown)
	close(m.jobs)
}

// command queues a fire-and-forget command.
func (m *MPV) command(args []interface{}) {
	m.dispatch(func() {
		if m.cmd == nil {
			return
		}
		if _, err := m.sendCommand(args); err != nil {
			m.logger.WithField("command", args[0]).Warnf("command failed: %v", err)
			m.timeline.Post(func() { m.commandFailed(args) })
		}
	})
}

// commandFailed undoes optimistic state for a rejected command.
func (m *MPV) commandFailed(args []interface{}) {
	if m.released {
		return
	}

	switch args[0] {
	case "seek", "playlist-play-index":
		m.props.seeking = false
		m.seekTarget = TimeUnset
		m.pendingSeek = TimeUnset
		m.refresh()
	}
}

// fail reports an engine error from the worker.
func (m *MPV) fail(code int, err error) {
	m.logger.Error(err)
	m.timeline.Post(func() {
		if m.released {
			return
		}
		m.emit(Event{Kind: EventError, Err: &Error{Code: code, Reason: err.Error()}})
	})
}

func (m *MPV) emit(e Event) {
	if m.released {
		return
	}
	m.subscribers.Emit(e)
}

// refresh recomputes the engine state and notifies when it or play-when-ready changed.
func (m *MPV) refresh() {
	state := deriveState(m.props)
	if state == m.state && m.playWhenReady == m.notifiedPlay {
		return
	}

	m.logger.WithFields(logrus.Fields{
		"from": m.state,
		"to":   state,
		"play": m.playWhenReady,
	}).Debug("state changed")

	m.state = state
	m.notifiedPlay = m.playWhenReady
	m.emit(Event{Kind: EventStateChanged, State: state, PlayWhenReady: m.playWhenReady})
}

// handle applies one mpv notification on the timeline.
func (m *MPV) handle(name string, data interface{}) {
	if m.released {
		return
	}

	switch name {
	case "time-pos":
		m.props.timePos, m.props.hasTimePos = data.(float64)
	case "duration":
		m.props.duration, m.props.hasDuration = data.(float64)
		m.emit(Event{Kind: EventTimelineChanged})
	case "demuxer-cache-time":
		m.props.cacheTime, m.props.hasCache = data.(float64)
	case "pause":
		// the user may pause from the mpv window
		if paused, ok := data.(bool); ok && paused == m.playWhenReady {
			m.playWhenReady = !paused
		}
	case "speed":
		// also changed from the mpv window
		if speed, ok := data.(float64); ok && speed != m.speed {
			m.speed = speed
			m.parametersChanged()
		}
	case "volume":
		if volume, ok := data.(float64); ok && ClampVolume(int(math.Round(volume))) != m.volume {
			m.volume = ClampVolume(int(math.Round(volume)))
			m.parametersChanged()
		}
	case "paused-for-cache":
		m.props.pausedForCache = boolOf(data)
	case "seeking":
		m.props.seeking = boolOf(data)
	case "eof-reached":
		m.props.eofReached = boolOf(data)
	case "idle-active":
		m.props.idleActive = boolOf(data)
	case "seekable":
		if seekable := boolOf(data); seekable != m.props.seekable {
			m.props.seekable = seekable
			m.emit(Event{Kind: EventTimelineChanged})
		}
	case "playlist-pos":
		if pos, ok := data.(float64); ok && int(pos) != m.props.playlistPos && pos >= 0 {
			m.props.playlistPos = int(pos)
			m.props.hasDuration = false
			m.emit(Event{Kind: EventPositionDiscontinuity})
			m.emit(Event{Kind: EventTimelineChanged})
		}
	case "dwidth":
		m.props.width = intOf(data)
		m.videoSizeChanged()
	case "dheight":
		m.props.height = intOf(data)
		m.videoSizeChanged()
	case "start-file":
		m.props.loaded = false
	case "file-loaded":
		m.props.loaded = true
		m.props.eofReached = false
		if m.pendingSeek != TimeUnset {
			position := m.pendingSeek
			m.pendingSeek = TimeUnset
			m.seekTarget = max(0, position)
			m.props.seeking = true
			m.command(m.seekCommand(m.CurrentWindow(), position))
		}
	case "seek":
		m.emit(Event{Kind: EventPositionDiscontinuity})
	case "playback-restart":
		m.props.seeking = false
		m.seekTarget = TimeUnset
	case "end-file":
		m.props.loaded = false
		if event, ok := data.(map[string]interface{}); ok && event["reason"] == "error" {
			reason, _ := event["file_error"].(string)
			if reason == "" {
				reason = "playback failed"
			}
			m.emit(Event{Kind: EventError, Err: &Error{Code: CodeSource, Reason: reason}})
		}
	default:
		return
	}

	m.refresh()
}

func (m *MPV) videoSizeChanged() {
	w, h := m.props.width, m.props.height
	if w <= 0 || h <= 0 || (w == m.videoWidth && h == m.videoHeight) {
		return
	}
	m.videoWidth, m.videoHeight = w, h
	m.emit(Event{Kind: EventVideoSizeChanged, Width: w, Height: h})
}

// ensureRunning launches mpv and the event listener if they are not running yet.
func (m *MPV) ensureRunning() error {
	if m.cmd != nil {
		select {
		case <-m.exited:
		default:
			return nil
		}
	}

	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		fmt.Sprintf("--title=%s: ${media-title}", constant.Kplay),
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=yes",
		"--keep-open-pause=no",
		"--pause=yes",
	}

	cmd := exec.Command(m.binary, args...)

	// Detach from the parent process group so terminal signals do not reach mpv.
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", m.binary, err)
	}

	exited := make(chan struct{})
	m.cmd, m.exited = cmd, exited
	go func() {
		_ = cmd.Wait()
		close(exited)
		m.timeline.Post(m.processExited)
	}()

	if err := m.waitForSocket(); err != nil {
		select {
		case <-exited:
		default:
			m.logger.Warn("killing mpv: socket never became ready")
			_ = killProcess(cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.listener = NewEventListener(m.socketPath, func(name string, data interface{}) {
		m.timeline.Post(func() { m.handle(name, data) })
	})
	if err := m.listener.Start(); err != nil {
		return err
	}

	m.logger.WithField("pid", cmd.Process.Pid).Info("mpv started")
	return nil
}

func (m *MPV) processExited() {
	if m.released || !m.props.active {
		return
	}

	m.props = properties{}
	m.emit(Event{Kind: EventError, Err: &Error{Code: CodeProcess, Reason: "mpv exited"}})
	m.refresh()
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// shutdown quits mpv gracefully, killing it after a timeout.
func (m *MPV) shutdown() {
	if m.listener != nil {
		m.listener.Stop()
	}

	if m.cmd == nil {
		return
	}

	_, _ = m.sendCommand([]interface{}{"quit"})

	select {
	case <-m.exited:
	case <-time.After(quitTimeout):
		_ = killProcess(m.cmd)
	}

	_ = os.Remove(m.socketPath)
	m.logger.Info("mpv stopped")
}

func seconds(s float64) int64 {
	return int64(math.Round(s * 1000))
}

func boolOf(data interface{}) bool {
	b, _ := data.(bool)
	return b
}

func intOf(data interface{}) int {
	f, _ := data.(float64)
	return int(f)
}
