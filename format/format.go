// Package format resolves a media locator to the pipeline kind that must be built for it.
package format

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// ErrUnsupportedFormat is returned when neither the hint nor the locator matches a known pattern.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Kind is the category of media source construction logic.
type Kind int

const (
	// HLS is the live-capable adaptive format (.m3u8 playlists).
	HLS Kind = iota + 1
	// DASH is the MPEG-DASH adaptive format (.mpd manifests).
	DASH
	// SmoothStreaming is the Microsoft Smooth Streaming adaptive format (.ism/Manifest).
	SmoothStreaming
	// Progressive covers container files read through a generic extractor.
	Progressive
)

// Kinds lists every pipeline kind in resolution priority order.
func Kinds() []Kind {
	return []Kind{HLS, DASH, SmoothStreaming, Progressive}
}

func (k Kind) String() string {
	switch k {
	case HLS:
		return "hls"
	case DASH:
		return "dash"
	case SmoothStreaming:
		return "smoothstreaming"
	case Progressive:
		return "progressive"
	default:
		return "unknown"
	}
}

// Adaptive reports whether k is one of the adaptive streaming formats.
func (k Kind) Adaptive() bool {
	return k == HLS || k == DASH || k == SmoothStreaming
}

var smoothStreamingPattern = regexp.MustCompile(`\.isml?(/manifest(\(.+\))?)?$`)

var progressiveExtensions = []string{
	".mp4", ".m4v", ".m4a", ".mov", ".mkv", ".webm",
	".mp3", ".aac", ".flac", ".ogg", ".oga", ".opus", ".wav",
	".ts", ".mpg", ".mpeg", ".avi", ".flv", ".3gp", ".wma", ".wmv",
}

// Resolve infers the pipeline kind. A non-empty hint is interpreted as an
// extension and takes precedence over the locator.
func Resolve(locator, hint string) (Kind, error) {
	if hint = strings.TrimSpace(hint); hint != "" {
		name := "." + strings.TrimPrefix(hint, ".")
		if kind, ok := infer(name); ok {
			return kind, nil
		}
		return 0, fmt.Errorf("%w: hint %q", ErrUnsupportedFormat, hint)
	}

	if kind, ok := infer(locatorPath(locator)); ok {
		return kind, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, locator)
}

func infer(name string) (Kind, bool) {
	name = strings.ToLower(name)

	switch {
	case strings.HasSuffix(name, ".mpd"):
		return DASH, true
	case strings.HasSuffix(name, ".m3u8"):
		return HLS, true
	case smoothStreamingPattern.MatchString(name):
		return SmoothStreaming, true
	case lo.Contains(progressiveExtensions, path.Ext(name)):
		return Progressive, true
	default:
		return 0, false
	}
}

// locatorPath strips scheme, query and fragment so only the path is matched.
func locatorPath(locator string) string {
	locator = strings.TrimSpace(locator)
	if strings.Contains(locator, "://") {
		if u, err := url.Parse(locator); err == nil {
			return u.Path
		}
	}
	if i := strings.IndexAny(locator, "?#"); i >= 0 {
		locator = locator[:i]
	}
	return locator
}
