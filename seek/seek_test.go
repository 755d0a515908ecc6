package seek

import (
	"errors"
	"testing"

	"github.com/kplay-cli/kplay/player"
	. "github.com/smartystreets/goconvey/convey"
)

type stubTarget struct {
	window   int
	position int64
	duration int64
	windows  []player.Window
	seeks    []Request
	err      error
}

func (t *stubTarget) SeekTo(window int, position int64) error {
	if t.err != nil {
		return t.err
	}
	t.seeks = append(t.seeks, Request{Window: window, Position: position})
	return nil
}

func (t *stubTarget) CurrentWindow() int        { return t.window }
func (t *stubTarget) CurrentPosition() int64    { return t.position }
func (t *stubTarget) Duration() int64           { return t.duration }
func (t *stubTarget) Timeline() player.Timeline { return player.Timeline{Windows: t.windows} }

type stubProgress struct {
	syncs   int
	drag    []string
	dragged int64
}

func (p *stubProgress) Sync()      { p.syncs++ }
func (p *stubProgress) BeginDrag() { p.drag = append(p.drag, "begin") }

func (p *stubProgress) UpdateDrag(position int64) {
	p.drag = append(p.drag, "update")
	p.dragged = position
}

func (p *stubProgress) EndDrag() (int64, bool) {
	p.drag = append(p.drag, "end")
	return p.dragged, true
}

type stubAutoHide struct {
	holds, restarts int
}

func (a *stubAutoHide) Hold()             { a.holds++ }
func (a *stubAutoHide) HideAfterTimeout() { a.restarts++ }

func vod(duration int64) player.Window {
	return player.Window{DurationMs: duration, Seekable: true}
}

func TestCoordinator(t *testing.T) {
	Convey("Given a coordinator over a three window timeline", t, func() {
		target := &stubTarget{
			window:   2,
			position: 2500,
			duration: 60000,
			windows:  []player.Window{vod(60000), vod(60000), vod(60000)},
		}
		progress := &stubProgress{}
		autoHide := &stubAutoHide{}
		var hooked []Request
		c := New(target, progress, autoHide, WithIncrements(5000, 15000), WithDispatchHook(func(r Request) {
			hooked = append(hooked, r)
		}))

		Convey("Previous near the start goes to the previous window", func() {
			c.Previous()
			So(target.seeks, ShouldResemble, []Request{{Window: 1, Position: player.TimeUnset}})
			So(hooked, ShouldHaveLength, 1)
		})

		Convey("Previous later in the window restarts it", func() {
			target.position = 3001
			c.Previous()
			So(target.seeks, ShouldResemble, []Request{{Window: 2, Position: 0}})
		})

		Convey("Previous at exactly three seconds still goes back", func() {
			target.position = 3000
			c.Previous()
			So(target.seeks[0].Window, ShouldEqual, 1)
		})

		Convey("Previous in an unseekable live window goes back regardless of position", func() {
			target.position = 90000
			target.windows[2] = player.Window{DurationMs: player.TimeUnset, Dynamic: true}
			c.Previous()
			So(target.seeks, ShouldResemble, []Request{{Window: 1, Position: player.TimeUnset}})
		})

		Convey("Previous in the first window restarts it", func() {
			target.window = 0
			c.Previous()
			So(target.seeks, ShouldResemble, []Request{{Window: 0, Position: 0}})
		})

		Convey("Next moves to the following window", func() {
			target.window = 1
			c.Next()
			So(target.seeks, ShouldResemble, []Request{{Window: 2, Position: player.TimeUnset}})
		})

		Convey("Next in the last window does nothing unless it is dynamic", func() {
			c.Next()
			So(target.seeks, ShouldBeEmpty)

			target.windows[2].Dynamic = true
			c.Next()
			So(target.seeks, ShouldResemble, []Request{{Window: 2, Position: player.TimeUnset}})
		})

		Convey("Navigation on an empty timeline does nothing", func() {
			target.windows = nil
			c.Previous()
			c.Next()
			So(target.seeks, ShouldBeEmpty)
		})

		Convey("Rewind and fast forward are clamped", func() {
			c.Rewind()
			So(target.seeks[0], ShouldResemble, Request{Window: 2, Position: 0})

			target.position = 50000
			c.FastForward()
			So(target.seeks[1], ShouldResemble, Request{Window: 2, Position: 60000})

			target.duration = player.TimeUnset
			c.FastForward()
			So(target.seeks[2], ShouldResemble, Request{Window: 2, Position: 65000})
		})

		Convey("Zero increments disable rewind and fast forward", func() {
			disabled := New(target, progress, autoHide, WithIncrements(0, -1))
			disabled.Rewind()
			disabled.FastForward()
			So(target.seeks, ShouldBeEmpty)
		})

		Convey("A drag issues exactly one seek at the release position", func() {
			c.DragStart()
			c.DragProgress(10000)
			c.DragProgress(20000)
			c.DragProgress(30000)
			So(target.seeks, ShouldBeEmpty)
			So(autoHide.holds, ShouldEqual, 1)

			c.DragEnd(30000)
			So(target.seeks, ShouldResemble, []Request{{Window: 2, Position: 30000}})
			So(progress.drag, ShouldResemble, []string{"begin", "update", "update", "update", "end"})
			So(progress.syncs, ShouldEqual, 1)
			So(autoHide.restarts, ShouldEqual, 1)
		})

		Convey("An undispatched seek re-syncs progress", func() {
			target.err = errors.New("illegal state")
			So(c.RequestSeek(2, 1000), ShouldBeFalse)
			So(progress.syncs, ShouldEqual, 1)
			So(hooked, ShouldBeEmpty)
		})

		Convey("The disabled strategy never dispatches", func() {
			d := New(target, progress, autoHide, WithStrategy(Disabled))
			d.DragStart()
			d.DragEnd(12000)
			So(target.seeks, ShouldBeEmpty)
			So(progress.syncs, ShouldEqual, 1)
			So(autoHide.restarts, ShouldEqual, 1)
		})

		Convey("The clamp strategy limits positions to the window", func() {
			cl := New(target, progress, autoHide, WithStrategy(Clamp))
			cl.RequestSeek(1, 90000)
			cl.RequestSeek(1, player.TimeUnset)
			So(target.seeks, ShouldResemble, []Request{
				{Window: 1, Position: 60000},
				{Window: 1, Position: player.TimeUnset},
			})
		})
	})
}

func TestStrategyByName(t *testing.T) {
	Convey("Strategies are looked up by name", t, func() {
		_, err := StrategyByName("forward")
		So(err, ShouldBeNil)
		_, err = StrategyByName("")
		So(err, ShouldBeNil)
		_, err = StrategyByName("teleport")
		So(err, ShouldNotBeNil)
		So(StrategyNames(), ShouldResemble, []string{"clamp", "disabled", "forward"})
	})
}
