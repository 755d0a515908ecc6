package log

import (
	"bytes"
	"testing"

	"github.com/kplay-cli/kplay/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestLogging(t *testing.T) {
	Convey("Given logging disabled", t, func() {
		viper.Set(key.LogsWrite, false)
		So(Setup(), ShouldBeNil)

		Convey("Emissions are discarded without panicking", func() {
			So(func() { Infof("ignored %d", 1) }, ShouldNotPanic)
		})
	})

	Convey("Given a captured output", t, func() {
		var buf bytes.Buffer
		viper.Set(key.LogsLevel, "debug")
		viper.Set(key.LogsJson, false)
		SetOutput(&buf)

		Convey("Component entries carry their component field", func() {
			For("playback").Debug("prepared")
			So(buf.String(), ShouldContainSubstring, "component=playback")
			So(buf.String(), ShouldContainSubstring, "prepared")
		})

		Convey("Levels below the configured one are dropped", func() {
			viper.Set(key.LogsLevel, "warn")
			SetOutput(&buf)
			Info("quiet")
			So(buf.String(), ShouldNotContainSubstring, "quiet")
		})
	})
}
