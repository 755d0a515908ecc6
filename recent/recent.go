// Package recent keeps a registry of recently played locators and suggests
// them back for completion. It never stores playback positions.
package recent

import (
	"strings"
	"time"

	"github.com/kplay-cli/kplay/filesystem"
	"github.com/kplay-cli/kplay/format"
	"github.com/kplay-cli/kplay/key"
	"github.com/kplay-cli/kplay/log"
	"github.com/kplay-cli/kplay/where"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

// Entry is one remembered locator.
type Entry struct {
	Locator    string    `json:"locator"`
	Kind       string    `json:"kind"`
	Plays      int       `json:"plays"`
	LastPlayed time.Time `json:"last_played"`
}

var cacher = gache.New[map[string]*Entry](
	&gache.Options{
		Path:       where.Recent(),
		FileSystem: &filesystem.GacheFs{},
	},
)

var now = time.Now

// load treats a missing or unreadable registry as empty.
func load() (map[string]*Entry, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		log.For("recent").Debugf("registry unreadable: %v", err)
		return make(map[string]*Entry), nil
	}
	if expired || cached == nil {
		return make(map[string]*Entry), nil
	}
	return cached, nil
}

// Remember records a play of locator, keeping at most recent.limit entries.
func Remember(locator string, kind format.Kind) error {
	if !viper.GetBool(key.RecentEnable) {
		return nil
	}

	locator = strings.TrimSpace(locator)
	entries, err := load()
	if err != nil {
		return err
	}

	entry, ok := entries[locator]
	if !ok {
		entry = &Entry{Locator: locator}
		entries[locator] = entry
	}
	entry.Kind = kind.String()
	entry.Plays++
	entry.LastPlayed = now()

	if limit := viper.GetInt(key.RecentLimit); limit > 0 && len(entries) > limit {
		for _, stale := range byRecency(lo.Values(entries))[limit:] {
			delete(entries, stale.Locator)
		}
	}

	return cacher.Set(entries)
}

// List returns every entry, most recently played first.
func List() ([]*Entry, error) {
	entries, err := load()
	if err != nil {
		return nil, err
	}
	return byRecency(lo.Values(entries)), nil
}

// Suggest returns the best match for a partial locator.
func Suggest(q string) mo.Option[string] {
	suggestions := SuggestMany(q)
	if len(suggestions) == 0 {
		return mo.None[string]()
	}
	return mo.Some(suggestions[0])
}

// SuggestMany returns remembered locators fuzzily matching q, most played first.
func SuggestMany(q string) []string {
	if !viper.GetBool(key.RecentEnable) {
		return []string{}
	}

	entries, err := load()
	if err != nil {
		return []string{}
	}

	q = strings.TrimSpace(q)
	matches := lo.Filter(lo.Values(entries), func(e *Entry, _ int) bool {
		return fuzzy.MatchFold(q, e.Locator)
	})

	slices.SortFunc(matches, func(a, b *Entry) int {
		if a.Plays != b.Plays {
			return b.Plays - a.Plays
		}
		return b.LastPlayed.Compare(a.LastPlayed)
	})

	return lo.Map(matches, func(e *Entry, _ int) string {
		return e.Locator
	})
}

// Clear forgets every entry.
func Clear() error {
	return cacher.Set(make(map[string]*Entry))
}

func byRecency(entries []*Entry) []*Entry {
	slices.SortFunc(entries, func(a, b *Entry) int {
		if c := b.LastPlayed.Compare(a.LastPlayed); c != 0 {
			return c
		}
		return strings.Compare(a.Locator, b.Locator)
	})
	return entries
}
