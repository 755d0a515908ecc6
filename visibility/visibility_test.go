package visibility

import (
	"testing"
	"time"

	"github.com/kplay-cli/kplay/clock"
	"github.com/kplay-cli/kplay/player"
	. "github.com/smartystreets/goconvey/convey"
)

type stubSource struct {
	state player.State
	play  bool
}

func (s *stubSource) EngineState() player.State { return s.state }
func (s *stubSource) PlayWhenReady() bool       { return s.play }

func TestTimer(t *testing.T) {
	Convey("Given a timer with a five second timeout", t, func() {
		clk := clock.NewManual(time.Unix(0, 0))
		src := &stubSource{state: player.StateReady, play: true}

		var changes []bool
		timer := New(clk, src, DefaultTimeout, func(visible bool) { changes = append(changes, visible) })

		Convey("A state change while playing does not show a hidden surface", func() {
			timer.OnStateChanged()
			So(timer.Visible(), ShouldBeFalse)
			So(changes, ShouldBeEmpty)
		})

		Convey("A forced show hides again after the timeout", func() {
			timer.Show(true)
			So(changes, ShouldResemble, []bool{true})
			So(timer.State().Timeout, ShouldEqual, 5*time.Second)
			So(timer.State().LastShownAt, ShouldEqual, time.Unix(0, 0))

			clk.Advance(4999 * time.Millisecond)
			So(timer.Visible(), ShouldBeTrue)
			clk.Advance(time.Millisecond)
			So(timer.Visible(), ShouldBeFalse)
			So(changes, ShouldResemble, []bool{true, false})
		})

		Convey("Paused, idle and ended playback shows indefinitely", func() {
			src.play = false
			timer.OnStateChanged()
			So(timer.Visible(), ShouldBeTrue)
			So(timer.State().Timeout, ShouldEqual, 0)
			So(timer.Pending(), ShouldBeFalse)

			for _, state := range []player.State{player.StateIdle, player.StateEnded} {
				src.play = true
				src.state = state
				timer.OnStateChanged()
				So(timer.Visible(), ShouldBeTrue)
				So(timer.Pending(), ShouldBeFalse)
			}
		})

		Convey("Resuming after an indefinite show arms the timeout", func() {
			src.play = false
			timer.OnStateChanged()

			src.play = true
			timer.OnStateChanged()
			So(timer.Pending(), ShouldBeTrue)
			clk.Advance(DefaultTimeout)
			So(timer.Visible(), ShouldBeFalse)
		})

		Convey("Hold keeps the surface until the timeout is restarted", func() {
			timer.Show(true)
			timer.Hold()
			clk.Advance(time.Minute)
			So(timer.Visible(), ShouldBeTrue)

			timer.HideAfterTimeout()
			clk.Advance(DefaultTimeout)
			So(timer.Visible(), ShouldBeFalse)
		})

		Convey("Showing again restarts the countdown", func() {
			timer.Show(true)
			clk.Advance(3 * time.Second)
			timer.Show(true)
			clk.Advance(3 * time.Second)
			So(timer.Visible(), ShouldBeTrue)
			So(clk.Pending(), ShouldEqual, 1)
		})

		Convey("Hide notifies once and cancels the auto-hide", func() {
			timer.Show(true)
			timer.Hide()
			timer.Hide()
			So(changes, ShouldResemble, []bool{true, false})
			So(clk.Pending(), ShouldEqual, 0)
		})

		Convey("Toggle alternates", func() {
			timer.Toggle()
			So(timer.Visible(), ShouldBeTrue)
			timer.Toggle()
			So(timer.Visible(), ShouldBeFalse)
		})

		Convey("A non-positive timeout never hides on its own", func() {
			forever := New(clk, src, 0, func(bool) {})
			forever.Show(true)
			So(forever.Pending(), ShouldBeFalse)
			clk.Advance(time.Hour)
			So(forever.Visible(), ShouldBeTrue)
		})
	})
}
