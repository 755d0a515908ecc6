package player

import (
	"testing"
	"time"

	"github.com/kplay-cli/kplay/clock"
	"github.com/kplay-cli/kplay/format"
	"github.com/kplay-cli/kplay/log"
	"github.com/kplay-cli/kplay/source"
	. "github.com/smartystreets/goconvey/convey"
)

// newTestMPV returns an engine whose commands are recorded instead of sent.
func newTestMPV() (*MPV, *[]func()) {
	var jobs []func()
	m := &MPV{
		binary:        "mpv",
		socketPath:    "/nonexistent/kplay-test.sock",
		timeline:      clock.NewManual(time.Unix(0, 0)),
		logger:        log.For("mpv"),
		jobs:          make(chan func()),
		state:         StateIdle,
		playWhenReady: true,
		notifiedPlay:  true,
		seekTarget:    TimeUnset,
		pendingSeek:   TimeUnset,
		speed:         DefaultSpeed,
		volume:        MaxVolume,
	}
	m.dispatch = func(job func()) { jobs = append(jobs, job) }
	return m, &jobs
}

func TestDeriveState(t *testing.T) {
	Convey("Given mirrored mpv properties", t, func() {
		ready := properties{active: true, loaded: true, hasTimePos: true}

		Convey("Nothing prepared is idle", func() {
			So(deriveState(properties{}), ShouldEqual, StateIdle)
		})

		Convey("Loading is buffering", func() {
			So(deriveState(properties{active: true}), ShouldEqual, StateBuffering)
		})

		Convey("A loaded file with a position is ready", func() {
			So(deriveState(ready), ShouldEqual, StateReady)
		})

		Convey("Seeking and cache stalls are buffering", func() {
			seeking := ready
			seeking.seeking = true
			So(deriveState(seeking), ShouldEqual, StateBuffering)

			stalled := ready
			stalled.pausedForCache = true
			So(deriveState(stalled), ShouldEqual, StateBuffering)
		})

		Convey("End of file wins over buffering", func() {
			ended := ready
			ended.eofReached = true
			ended.seeking = true
			So(deriveState(ended), ShouldEqual, StateEnded)
		})
	})
}

func TestMPVEngine(t *testing.T) {
	Convey("Given an mpv engine", t, func() {
		m, jobs := newTestMPV()

		var events []Event
		unsubscribe := m.Subscribe(func(e Event) { events = append(events, e) })

		sources := []*source.Source{
			{Locator: "https://cdn.example.com/a.m3u8", Kind: format.HLS},
			{Locator: "/media/b.mp4", Kind: format.Progressive},
		}

		Convey("Before Prepare it is idle with an empty timeline", func() {
			So(m.PlaybackState(), ShouldEqual, StateIdle)
			So(m.Timeline().Empty(), ShouldBeTrue)
			So(m.Duration(), ShouldEqual, TimeUnset)
		})

		Convey("Prepare buffers until the file is loaded and positioned", func() {
			m.Prepare(sources)
			So(*jobs, ShouldHaveLength, 1)
			So(m.PlaybackState(), ShouldEqual, StateBuffering)
			So(events[len(events)-1], ShouldResemble, Event{Kind: EventStateChanged, State: StateBuffering, PlayWhenReady: true})

			m.handle("file-loaded", map[string]interface{}{"event": "file-loaded"})
			So(m.PlaybackState(), ShouldEqual, StateBuffering)

			m.handle("time-pos", 1.5)
			So(m.PlaybackState(), ShouldEqual, StateReady)
			So(m.CurrentPosition(), ShouldEqual, 1500)

			Convey("Duration and cache drive buffered values", func() {
				m.handle("duration", 10.0)
				m.handle("demuxer-cache-time", 4.0)
				So(m.Duration(), ShouldEqual, 10000)
				So(m.BufferedPosition(), ShouldEqual, 4000)
				So(m.BufferedPercentage(), ShouldEqual, 40)
			})

			Convey("The current window reflects live properties", func() {
				m.handle("seekable", true)
				tl := m.Timeline()
				So(tl.Windows, ShouldHaveLength, 2)
				So(tl.Windows[0].Seekable, ShouldBeTrue)
				So(tl.Windows[0].Dynamic, ShouldBeTrue)
				So(tl.Windows[1].DurationMs, ShouldEqual, TimeUnset)

				m.handle("duration", 30.0)
				So(m.Timeline().Windows[0].Dynamic, ShouldBeFalse)
			})

			Convey("A seek in the current window reports the target until playback restarts", func() {
				*jobs = nil
				m.SeekTo(0, 8000)
				So(*jobs, ShouldHaveLength, 1)
				So(m.PlaybackState(), ShouldEqual, StateBuffering)
				So(m.CurrentPosition(), ShouldEqual, 8000)

				m.handle("time-pos", 8.02)
				m.handle("playback-restart", map[string]interface{}{})
				So(m.PlaybackState(), ShouldEqual, StateReady)
				So(m.CurrentPosition(), ShouldEqual, 8020)
			})

			Convey("A seek into another window is applied once that file loads", func() {
				m.SeekTo(1, 3000)
				So(m.pendingSeek, ShouldEqual, 3000)

				m.handle("playlist-pos", 1.0)
				So(m.CurrentWindow(), ShouldEqual, 1)
				So(events, ShouldContain, Event{Kind: EventPositionDiscontinuity})

				*jobs = nil
				m.handle("start-file", map[string]interface{}{})
				m.handle("file-loaded", map[string]interface{}{})
				So(*jobs, ShouldHaveLength, 1)
				So(m.pendingSeek, ShouldEqual, TimeUnset)
				So(m.CurrentPosition(), ShouldEqual, 3000)
			})

			Convey("Seeks outside the timeline are ignored", func() {
				*jobs = nil
				m.SeekTo(5, 0)
				So(*jobs, ShouldBeEmpty)
			})

			Convey("End of file ends playback", func() {
				m.handle("eof-reached", true)
				So(m.PlaybackState(), ShouldEqual, StateEnded)
			})

			Convey("A load failure is reported as a source error", func() {
				m.handle("end-file", map[string]interface{}{"reason": "error", "file_error": "loading failed"})
				last := events[len(events)-2]
				So(last.Kind, ShouldEqual, EventError)
				So(last.Err.Code, ShouldEqual, CodeSource)
				So(last.Err.Reason, ShouldEqual, "loading failed")
			})

			Convey("Pausing from the mpv window clears play-when-ready", func() {
				m.handle("pause", true)
				So(m.PlayWhenReady(), ShouldBeFalse)
				So(events[len(events)-1].PlayWhenReady, ShouldBeFalse)
			})

			Convey("Video size is reported once per change", func() {
				m.handle("dwidth", 1920.0)
				m.handle("dheight", 1080.0)
				m.handle("dheight", 1080.0)
				sizes := 0
				for _, e := range events {
					if e.Kind == EventVideoSizeChanged {
						sizes++
						So(e.Width, ShouldEqual, 1920)
						So(e.Height, ShouldEqual, 1080)
					}
				}
				So(sizes, ShouldEqual, 1)
			})

			Convey("Stop returns to idle", func() {
				m.Stop()
				So(m.PlaybackState(), ShouldEqual, StateIdle)
				So(m.Timeline().Empty(), ShouldBeTrue)
			})
		})

		Convey("SetPlayWhenReady notifies without a state change", func() {
			m.SetPlayWhenReady(false)
			So(*jobs, ShouldHaveLength, 1)
			So(events, ShouldHaveLength, 1)
			So(events[0].PlayWhenReady, ShouldBeFalse)

			m.SetPlayWhenReady(false)
			So(*jobs, ShouldHaveLength, 1)
		})

		Convey("Speed and volume are clamped and notified once per change", func() {
			m.SetSpeed(1.5)
			m.SetSpeed(1.5)
			m.SetVolume(140)
			So(*jobs, ShouldHaveLength, 1)
			So(m.Speed(), ShouldEqual, 1.5)
			So(m.Volume(), ShouldEqual, MaxVolume)
			So(events, ShouldResemble, []Event{{Kind: EventParametersChanged, Speed: 1.5, Volume: MaxVolume}})

			m.SetSpeed(0.01)
			So(m.Speed(), ShouldEqual, MinSpeed)

			Convey("Echoed properties are not reported again", func() {
				events = nil
				m.handle("speed", MinSpeed)
				m.handle("volume", 100.0)
				So(events, ShouldBeEmpty)
			})

			Convey("Changes made in the mpv window are mirrored", func() {
				events = nil
				m.handle("speed", 2.0)
				m.handle("volume", 42.4)
				So(m.Speed(), ShouldEqual, 2.0)
				So(m.Volume(), ShouldEqual, 42)
				So(events, ShouldHaveLength, 2)
				So(events[1], ShouldResemble, Event{Kind: EventParametersChanged, Speed: 2.0, Volume: 42})
			})
		})

		Convey("Unsubscribed listeners are not called", func() {
			unsubscribe()
			m.Prepare(sources)
			So(events, ShouldBeEmpty)
		})

		Convey("After Release nothing is delivered", func() {
			m.Release()
			m.handle("time-pos", 1.0)
			m.Prepare(sources)
			So(events, ShouldBeEmpty)
			So(m.subscribers.Len(), ShouldEqual, 0)
		})
	})
}

func TestLoadfileCommand(t *testing.T) {
	Convey("The first source replaces the playlist and carries its options", t, func() {
		src := &source.Source{Locator: "https://a/b.m3u8", Kind: format.HLS, Options: map[string]string{"hls-bitrate": "max"}}
		So(loadfileCommand(src, true), ShouldResemble, map[string]interface{}{
			"name":    "loadfile",
			"url":     "https://a/b.m3u8",
			"flags":   "replace",
			"options": map[string]string{"hls-bitrate": "max"},
		})

		Convey("Later sources are appended", func() {
			plain := &source.Source{Locator: "/media/b.mp4", Kind: format.Progressive}
			So(loadfileCommand(plain, false), ShouldResemble, map[string]interface{}{
				"name":  "loadfile",
				"url":   "/media/b.mp4",
				"flags": "append",
			})
		})
	})
}
