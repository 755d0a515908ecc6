package version

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCompare(t *testing.T) {
	Convey("Given two versions", t, func() {
		Convey("Newer majors win", func() {
			cmp, err := Compare("1.0.0", "0.40.2")
			So(err, ShouldBeNil)
			So(cmp, ShouldEqual, 1)
		})

		Convey("A v prefix and a missing patch are tolerated", func() {
			cmp, err := Compare("v0.33", "0.33.0")
			So(err, ShouldBeNil)
			So(cmp, ShouldEqual, 0)
		})

		Convey("Older minors lose", func() {
			cmp, err := Compare("0.32.9", MinimumEngine)
			So(err, ShouldBeNil)
			So(cmp, ShouldEqual, -1)
		})

		Convey("Garbage is an error", func() {
			_, err := Compare("git-abcdef", "0.33.0")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestParseEngine(t *testing.T) {
	Convey("Given mpv --version output", t, func() {
		Convey("The release is extracted", func() {
			v, err := ParseEngine("mpv 0.37.0 Copyright © 2000-2023 mpv/MPlayer/mplayer2 projects\n built on ...")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "0.37.0")
			So(EngineSupported(v), ShouldBeTrue)
		})

		Convey("A v-prefixed release is extracted", func() {
			v, err := ParseEngine("mpv v0.32.0-dirty Copyright © 2000-2020 mpv/MPlayer/mplayer2 projects")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "0.32.0")
			So(EngineSupported(v), ShouldBeFalse)
		})

		Convey("Unrelated output is rejected", func() {
			_, err := ParseEngine("vlc 3.0.18 Vetinari")
			So(err, ShouldEqual, ErrUnknownEngine)
		})

		Convey("Unparsable versions are assumed supported", func() {
			So(EngineSupported("git"), ShouldBeTrue)
		})
	})
}
