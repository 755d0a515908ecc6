package sweep

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kplay-cli/kplay/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSockets(t *testing.T) {
	Convey("Given a socket directory", t, func() {
		filesystem.SetMemMapFs()
		defer filesystem.SetOsFs()

		dir := "/tmp/kplay"
		now := time.Unix(1_700_000_000, 0)
		fs := filesystem.API()
		So(fs.MkdirAll(dir, 0o755), ShouldBeNil)

		write := func(name string, age time.Duration) string {
			path := filepath.Join(dir, name)
			So(fs.WriteFile(path, nil, 0o600), ShouldBeNil)
			So(fs.Chtimes(path, now.Add(-age), now.Add(-age)), ShouldBeNil)
			return path
		}

		stale := write("kplay-0a0b0c0d.sock", time.Hour)
		fresh := write("kplay-01020304.sock", time.Second)
		busy := write("kplay-ffffffff.sock", time.Hour)
		other := write("notes.txt", time.Hour)

		original := live
		live = func(path string) bool { return path == busy }
		defer func() { live = original }()

		removed := Sockets(dir, now)

		Convey("Only old sockets nobody listens on are removed", func() {
			So(removed, ShouldResemble, []string{stale})

			for _, path := range []string{fresh, busy, other} {
				exists, err := fs.Exists(path)
				So(err, ShouldBeNil)
				So(exists, ShouldBeTrue)
			}
		})
	})
}
