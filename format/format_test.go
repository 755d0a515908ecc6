package format

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestResolve(t *testing.T) {
	Convey("Given no hint", t, func() {
		Convey("A live playlist resolves to HLS", func() {
			kind, err := Resolve("https://cdn.example.com/live/channel.m3u8", "")
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, HLS)
		})

		Convey("Query strings and fragments are ignored", func() {
			kind, err := Resolve("https://cdn.example.com/vod/master.M3U8?token=abc#t=10", "")
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, HLS)
		})

		Convey("A DASH manifest resolves to DASH", func() {
			kind, err := Resolve("https://cdn.example.com/movie/manifest.mpd", "")
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, DASH)
		})

		Convey("Smooth Streaming paths are recognised", func() {
			for _, locator := range []string{
				"https://ss.example.com/Big.ism/Manifest",
				"https://ss.example.com/Big.isml/manifest(format=mpd-time-csf)",
				"https://ss.example.com/Big.ism",
			} {
				kind, err := Resolve(locator, "")
				So(err, ShouldBeNil)
				So(kind, ShouldEqual, SmoothStreaming)
			}
		})

		Convey("Container files resolve to Progressive", func() {
			for _, locator := range []string{"/media/clip.MP4", "song.flac", "file:///tmp/a.webm"} {
				kind, err := Resolve(locator, "")
				So(err, ShouldBeNil)
				So(kind, ShouldEqual, Progressive)
			}
		})

		Convey("An unknown extension is a hard error", func() {
			_, err := Resolve("https://example.com/video.xyz", "")
			So(errors.Is(err, ErrUnsupportedFormat), ShouldBeTrue)
		})

		Convey("A locator without extension is a hard error", func() {
			_, err := Resolve("https://example.com/watch", "")
			So(errors.Is(err, ErrUnsupportedFormat), ShouldBeTrue)
		})
	})

	Convey("Given a hint", t, func() {
		Convey("The hint overrides the locator", func() {
			kind, err := Resolve("https://example.com/stream.mp4", "mpd")
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, DASH)
		})

		Convey("A leading dot is accepted", func() {
			kind, err := Resolve("https://example.com/play?id=1", ".m3u8")
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, HLS)
		})

		Convey("An unknown hint fails even if the locator is valid", func() {
			_, err := Resolve("https://example.com/stream.mp4", "bogus")
			So(errors.Is(err, ErrUnsupportedFormat), ShouldBeTrue)
		})
	})
}

func TestKind(t *testing.T) {
	Convey("Kind", t, func() {
		So(HLS.String(), ShouldEqual, "hls")
		So(Progressive.String(), ShouldEqual, "progressive")
		So(Kind(0).String(), ShouldEqual, "unknown")
		So(DASH.Adaptive(), ShouldBeTrue)
		So(Progressive.Adaptive(), ShouldBeFalse)
		So(len(Kinds()), ShouldEqual, 4)
	})
}
