package ui

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestModel(t *testing.T) {
	Convey("Given a notifier", t, func() {
		m := New(0)
		So(m.lifetime, ShouldEqual, DefaultLifetime)
		So(m.View("a\nb"), ShouldEqual, "a\nb")

		Convey("A notice is shown until its own expiry", func() {
			cmd := m.Notify("next unavailable")
			So(cmd, ShouldNotBeNil)
			So(m.Notice(), ShouldEqual, "next unavailable")
			So(m.View("a\nb"), ShouldStartWith, "a\nb  ")
			So(m.View("a\nb"), ShouldContainSubstring, "next unavailable")

			m.Update(ClearNoticeMsg{seq: m.seq})
			So(m.Notice(), ShouldBeEmpty)
		})

		Convey("A stale expiry leaves a newer notice alone", func() {
			m.Notify("first")
			stale := ClearNoticeMsg{seq: m.seq}
			m.Notify("second")

			m.Update(stale)
			So(m.Notice(), ShouldEqual, "second")
		})
	})
}
