// Package icon renders UI symbols in the variant selected by icons.variant.
package icon

import (
	"github.com/kplay-cli/kplay/key"
	"github.com/spf13/viper"
)

const (
	emoji = "emoji"
	nerd  = "nerd"
	plain = "plain"
)

// AvailableVariants returns every supported icons.variant value.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain}
}

// Icon identifies a symbol in the registry.
type Icon int

const (
	Play Icon = iota + 1
	Pause
	Buffering
	Ended
	Fail
	Success
	Previous
	Next
	Rewind
	FastForward
)

type iconDef struct {
	emoji string
	nerd  string
	plain string
}

func (d iconDef) get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	default:
		return ""
	}
}

var icons = map[Icon]iconDef{
	Play:        {emoji: "▶️", nerd: "", plain: ">"},
	Pause:       {emoji: "⏸️", nerd: "", plain: "||"},
	Buffering:   {emoji: "⏳", nerd: "", plain: "..."},
	Ended:       {emoji: "⏹️", nerd: "", plain: "[]"},
	Fail:        {emoji: "💀", nerd: "", plain: "x"},
	Success:     {emoji: "🎉", nerd: "", plain: "v"},
	Previous:    {emoji: "⏮️", nerd: "", plain: "|<"},
	Next:        {emoji: "⏭️", nerd: "", plain: ">|"},
	Rewind:      {emoji: "⏪", nerd: "", plain: "<<"},
	FastForward: {emoji: "⏩", nerd: "", plain: ">>"},
}

// Get returns the rendered symbol for i, or "" for an unknown variant or icon.
func Get(i Icon) string {
	def, ok := icons[i]
	if !ok {
		return ""
	}
	return def.get()
}
