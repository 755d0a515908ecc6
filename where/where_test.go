package where

import (
	"path/filepath"
	"testing"

	"github.com/kplay-cli/kplay/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWhere(t *testing.T) {
	Convey("Given a config path override", t, func() {
		filesystem.SetMemMapFs()
		defer filesystem.SetOsFs()
		t.Setenv(EnvConfigPath, "/kplay-test/config")

		Convey("Config honours the override and creates it", func() {
			So(Config(), ShouldEqual, "/kplay-test/config")
			exists, err := filesystem.API().DirExists("/kplay-test/config")
			So(err, ShouldBeNil)
			So(exists, ShouldBeTrue)
		})

		Convey("Logs live below the config directory", func() {
			So(Logs(), ShouldEqual, filepath.Join("/kplay-test/config", "logs"))
		})

		Convey("Recent lives in the cache directory", func() {
			So(filepath.Base(Recent()), ShouldEqual, "recent.json")
			So(filepath.Dir(Recent()), ShouldEqual, Cache())
		})
	})
}
