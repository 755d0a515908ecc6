package source

import (
	"errors"
	"testing"

	"github.com/kplay-cli/kplay/filesystem"
	"github.com/kplay-cli/kplay/format"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFactory(t *testing.T) {
	Convey("Given a factory with headers", t, func() {
		filesystem.SetMemMapFs()
		defer filesystem.SetOsFs()

		f := NewFactory(
			WithHeaders(map[string]string{"Referer": "https://example.com", "Cookie": "a=1,b=2"}),
			WithUserAgent("kplay/test"),
		)

		Convey("HLS sources prefer the highest bitrate", func() {
			src, err := f.Build(format.HLS, "https://cdn.example.com/live.m3u8")
			So(err, ShouldBeNil)
			So(src.Kind, ShouldEqual, format.HLS)
			So(src.Options["hls-bitrate"], ShouldEqual, "max")
			So(src.Remote(), ShouldBeTrue)
		})

		Convey("Remote sources carry escaped, sorted headers", func() {
			src, err := f.Build(format.DASH, "https://cdn.example.com/a.mpd")
			So(err, ShouldBeNil)
			So(src.Options["http-header-fields"], ShouldEqual, "Cookie: a=1%2Cb=2,Referer: https://example.com")
			So(src.Options["user-agent"], ShouldEqual, "kplay/test")
			So(src.Options["demuxer-lavf-format"], ShouldEqual, "dash")
		})

		Convey("OptionList is sorted", func() {
			src, err := f.Build(format.SmoothStreaming, "https://ss.example.com/a.ism/Manifest")
			So(err, ShouldBeNil)
			So(src.OptionList(), ShouldResemble, []string{
				"http-header-fields=Cookie: a=1%2Cb=2,Referer: https://example.com",
				"user-agent=kplay/test",
				"ytdl=yes",
			})
		})

		Convey("DASH needs a URL", func() {
			_, err := f.Build(format.DASH, "/media/a.mpd")
			So(errors.Is(err, ErrInvalidLocator), ShouldBeTrue)
		})

		Convey("A local progressive file must exist", func() {
			_, err := f.Build(format.Progressive, "/media/missing.mp4")
			So(errors.Is(err, ErrInvalidLocator), ShouldBeTrue)

			So(filesystem.API().MkdirAll("/media", 0o755), ShouldBeNil)
			So(filesystem.API().WriteFile("/media/present.mp4", []byte("x"), 0o644), ShouldBeNil)

			src, err := f.Build(format.Progressive, "/media/./present.mp4")
			So(err, ShouldBeNil)
			So(src.Locator, ShouldEqual, "/media/present.mp4")
			So(src.Options, ShouldBeEmpty)
			So(src.Remote(), ShouldBeFalse)
		})

		Convey("Flag-like and exotic locators are rejected", func() {
			for _, locator := range []string{"", "--vo=null", "rtsp://cam/1.mp4", "a\nb.mp4"} {
				_, err := f.Build(format.Progressive, locator)
				So(errors.Is(err, ErrInvalidLocator), ShouldBeTrue)
			}
		})

		Convey("Resolve combines inference and construction", func() {
			src, err := f.Resolve("https://cdn.example.com/video", "m3u8")
			So(err, ShouldBeNil)
			So(src.Kind, ShouldEqual, format.HLS)

			_, err = f.Resolve("https://cdn.example.com/video", "")
			So(errors.Is(err, format.ErrUnsupportedFormat), ShouldBeTrue)
		})

		Convey("A custom builder replaces the built-in one", func() {
			custom := NewFactory(WithBuilder(format.Progressive, func(locator string, _ map[string]string) (*Source, error) {
				return &Source{Locator: locator, Kind: format.Progressive, Options: map[string]string{"custom": "1"}}, nil
			}))
			src, err := custom.Build(format.Progressive, "https://example.com/a.mp4")
			So(err, ShouldBeNil)
			So(src.Options["custom"], ShouldEqual, "1")
		})
	})
}
