package util

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "window", "windows"), ShouldEqual, "1 window")
		So(Quantify(3, "window", "windows"), ShouldEqual, "3 windows")
	})
}

func TestOrdering(t *testing.T) {
	Convey("Max, Min and Clamp", t, func() {
		So(Max(3, 9, 1), ShouldEqual, 9)
		So(Min(int64(3), 9, -1), ShouldEqual, -1)
		So(Max[int](), ShouldEqual, 0)

		So(Clamp(int64(-500), 0, 10_000), ShouldEqual, 0)
		So(Clamp(int64(12_000), 0, 10_000), ShouldEqual, 10_000)
		So(Clamp(int64(4_000), 0, 10_000), ShouldEqual, 4_000)
		So(Clamp(5, 0, -1), ShouldEqual, 0)
	})
}

func TestFormatMillis(t *testing.T) {
	Convey("FormatMillis", t, func() {
		So(FormatMillis(0), ShouldEqual, "00:00")
		So(FormatMillis(1499), ShouldEqual, "00:01")
		So(FormatMillis(1500), ShouldEqual, "00:02")
		So(FormatMillis(61_000), ShouldEqual, "01:01")
		So(FormatMillis(3_600_000+62_000), ShouldEqual, "1:01:02")
		So(FormatMillis(-42), ShouldEqual, "00:00")
	})
}
