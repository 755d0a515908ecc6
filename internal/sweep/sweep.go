// Package sweep prunes files left behind by sessions that did not shut down cleanly.
package sweep

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kplay-cli/kplay/filesystem"
	"github.com/kplay-cli/kplay/log"
	"github.com/kplay-cli/kplay/where"
	"github.com/spf13/afero"
)

// Grace protects sockets of sessions that are still starting up.
const Grace = time.Minute

// live reports whether something still listens on the socket.
var live = func(path string) bool {
	conn, err := net.DialTimeout("unix", path, 200*time.Millisecond)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Sockets removes mpv IPC sockets under dir that are older than Grace and
// no longer accept connections. It returns the removed paths.
func Sockets(dir string, now time.Time) []string {
	var removed []string

	_ = afero.Walk(filesystem.API(), dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !strings.HasSuffix(path, ".sock") {
			return nil
		}
		if now.Sub(info.ModTime()) < Grace || live(path) {
			return nil
		}
		if err := filesystem.API().Remove(path); err != nil {
			log.For("sweep").Debugf("remove %s: %v", path, err)
			return nil
		}
		removed = append(removed, path)
		return nil
	})

	return removed
}

// CollectGarbage sweeps the socket directory in the background.
func CollectGarbage() {
	go func() {
		removed := Sockets(filepath.Clean(where.Sockets()), time.Now())
		if len(removed) > 0 {
			log.For("sweep").Infof("removed %d stale sockets", len(removed))
		}
	}()
}
