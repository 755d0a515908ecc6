package version

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"regexp"
	"time"

	"github.com/kplay-cli/kplay/filesystem"
	"github.com/kplay-cli/kplay/log"
	"github.com/kplay-cli/kplay/where"
	"github.com/metafates/gache"
)

// MinimumEngine is the oldest mpv release whose JSON IPC accepts named
// command arguments and per-file loadfile options.
const MinimumEngine = "0.33.0"

// ErrUnknownEngine is returned when the engine output carries no version.
var ErrUnknownEngine = errors.New("unrecognized engine version output")

const detectTimeout = 5 * time.Second

var engineVersionPattern = regexp.MustCompile(`(?m)^mpv\s+v?(\d+\.\d+(?:\.\d+)?)`)

// engineCacher maps a resolved binary path to the version it reported.
var engineCacher = gache.New[map[string]string](&gache.Options{
	Path:       filepath.Join(where.Cache(), "engine.json"),
	Lifetime:   time.Hour * 24 * 2,
	FileSystem: &filesystem.GacheFs{},
})

// ParseEngine extracts the version from `mpv --version` output.
func ParseEngine(output string) (string, error) {
	match := engineVersionPattern.FindStringSubmatch(output)
	if match == nil {
		return "", ErrUnknownEngine
	}
	return match[1], nil
}

// Engine returns the version of the mpv binary, probing it at most once per cache lifetime.
func Engine(binary string) (string, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", err
	}

	cached, expired, err := engineCacher.Get()
	if err != nil || expired || cached == nil {
		cached = make(map[string]string)
	}
	if v, ok := cached[path]; ok {
		return v, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), detectTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return "", err
	}

	v, err := ParseEngine(string(output))
	if err != nil {
		return "", err
	}

	cached[path] = v
	if err := engineCacher.Set(cached); err != nil {
		log.For("version").Debugf("cache engine version: %v", err)
	}
	return v, nil
}

// EngineSupported reports whether v is at least MinimumEngine. Unparsable
// versions, such as git builds, are assumed to be supported.
func EngineSupported(v string) bool {
	cmp, err := Compare(v, MinimumEngine)
	return err != nil || cmp >= 0
}
