// Package source builds the engine-facing media source handle for a resolved pipeline kind.
package source

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kplay-cli/kplay/filesystem"
	"github.com/kplay-cli/kplay/format"
	"github.com/samber/lo"
)

// ErrInvalidLocator is returned for locators that cannot be handed to the engine.
var ErrInvalidLocator = errors.New("invalid locator")

// Source is an immutable, engine-ready description of one timeline window.
type Source struct {
	// Locator as handed to the engine (cleaned for local paths).
	Locator string
	// Kind is fixed once the source is built.
	Kind format.Kind
	// Options are per-file engine options selected for the pipeline.
	Options map[string]string
}

// String returns the locator for display.
func (s *Source) String() string {
	return s.Locator
}

// Remote reports whether the source is fetched over the network.
func (s *Source) Remote() bool {
	return strings.Contains(s.Locator, "://") && !strings.HasPrefix(s.Locator, "file://")
}

// OptionList renders Options as sorted key=value pairs.
func (s *Source) OptionList() []string {
	keys := lo.Keys(s.Options)
	sort.Strings(keys)
	return lo.Map(keys, func(k string, _ int) string {
		return k + "=" + s.Options[k]
	})
}

// Builder constructs the source for one pipeline kind.
type Builder func(locator string, common map[string]string) (*Source, error)

// Factory maps each pipeline kind to its Builder.
type Factory struct {
	builders map[format.Kind]Builder
	common   map[string]string
}

// Option configures a Factory.
type Option func(*Factory)

// WithHeaders adds HTTP headers to every remote source.
func WithHeaders(headers map[string]string) Option {
	return func(f *Factory) {
		if len(headers) > 0 {
			f.common["http-header-fields"] = headerFields(headers)
		}
	}
}

// WithUserAgent overrides the engine's default user agent.
func WithUserAgent(ua string) Option {
	return func(f *Factory) {
		if ua != "" {
			f.common["user-agent"] = ua
		}
	}
}

// WithBuilder replaces the builder for kind.
func WithBuilder(kind format.Kind, b Builder) Option {
	return func(f *Factory) {
		f.builders[kind] = b
	}
}

// NewFactory returns a factory with the built-in builder for every kind.
func NewFactory(options ...Option) *Factory {
	f := &Factory{
		builders: map[format.Kind]Builder{
			format.HLS:             buildHLS,
			format.DASH:            buildDASH,
			format.SmoothStreaming: buildSmoothStreaming,
			format.Progressive:     buildProgressive,
		},
		common: make(map[string]string),
	}
	for _, option := range options {
		option(f)
	}
	return f
}

// Build constructs the source for locator using the builder registered for kind.
func (f *Factory) Build(kind format.Kind, locator string) (*Source, error) {
	builder, ok := f.builders[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no pipeline for %s", format.ErrUnsupportedFormat, kind)
	}

	target, err := sanitize(locator)
	if err != nil {
		return nil, err
	}

	return builder(target, f.common)
}

// Resolve infers the kind of locator (hint first) and builds its source.
func (f *Factory) Resolve(locator, hint string) (*Source, error) {
	kind, err := format.Resolve(locator, hint)
	if err != nil {
		return nil, err
	}
	return f.Build(kind, locator)
}

func newSource(kind format.Kind, locator string, common map[string]string, own map[string]string) *Source {
	options := make(map[string]string, len(common)+len(own))
	if strings.Contains(locator, "://") {
		for k, v := range common {
			options[k] = v
		}
	}
	for k, v := range own {
		options[k] = v
	}
	return &Source{Locator: locator, Kind: kind, Options: options}
}

func requireRemote(kind format.Kind, locator string) error {
	if !strings.Contains(locator, "://") {
		return fmt.Errorf("%w: %s sources must be URLs, got %q", ErrInvalidLocator, kind, locator)
	}
	return nil
}

func buildHLS(locator string, common map[string]string) (*Source, error) {
	if err := requireRemote(format.HLS, locator); err != nil && !filesystem.IsRegularFile(locator) {
		return nil, err
	}
	return newSource(format.HLS, locator, common, map[string]string{
		"hls-bitrate": "max",
	}), nil
}

func buildDASH(locator string, common map[string]string) (*Source, error) {
	if err := requireRemote(format.DASH, locator); err != nil {
		return nil, err
	}
	return newSource(format.DASH, locator, common, map[string]string{
		"demuxer-lavf-format": "dash",
	}), nil
}

func buildSmoothStreaming(locator string, common map[string]string) (*Source, error) {
	if err := requireRemote(format.SmoothStreaming, locator); err != nil {
		return nil, err
	}
	// libavformat cannot demux Smooth Streaming manifests; the ytdl hook can.
	return newSource(format.SmoothStreaming, locator, common, map[string]string{
		"ytdl": "yes",
	}), nil
}

func buildProgressive(locator string, common map[string]string) (*Source, error) {
	if strings.Contains(locator, "://") {
		if strings.HasPrefix(locator, "file://") {
			u, err := url.Parse(locator)
			if err != nil || !filesystem.IsRegularFile(u.Path) {
				return nil, fmt.Errorf("%w: no such file %q", ErrInvalidLocator, locator)
			}
		}
		return newSource(format.Progressive, locator, common, map[string]string{
			"cache": "yes",
		}), nil
	}

	if !filesystem.IsRegularFile(locator) {
		return nil, fmt.Errorf("%w: no such file %q", ErrInvalidLocator, locator)
	}
	return newSource(format.Progressive, locator, common, nil), nil
}

// sanitize rejects locators that the engine would parse as flags or that use
// unsupported schemes.
func sanitize(locator string) (string, error) {
	l := strings.TrimSpace(locator)
	if l == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidLocator)
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("%w: control characters", ErrInvalidLocator)
	}

	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("%w: must not start with '-'", ErrInvalidLocator)
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidLocator, err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "file":
			return l, nil
		default:
			return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidLocator, u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

// headerFields joins headers in the engine's comma separated form, escaping
// commas inside values.
func headerFields(headers map[string]string) string {
	keys := lo.Keys(headers)
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(fmt.Sprintf("%s: %s", k, strings.ReplaceAll(headers[k], ",", "%2C")))
	}
	return b.String()
}
