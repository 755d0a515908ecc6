package control

import (
	"time"

	"github.com/kplay-cli/kplay/key"
	"github.com/kplay-cli/kplay/player"
	"github.com/kplay-cli/kplay/visibility"
	"github.com/spf13/viper"
)

// Options configure a Controller.
type Options struct {
	// RewindIncrement and FastForwardIncrement disable their gesture when not positive.
	RewindIncrement      time.Duration
	FastForwardIncrement time.Duration
	// ShowTimeout of zero or less keeps the surface shown.
	ShowTimeout  time.Duration
	Looping      bool
	Autoplay     bool
	SeekStrategy string
	FormatHint   string
	// Speed of zero or less keeps the engine rate.
	Speed  float64
	Volume int
}

// DefaultOptions returns the built-in defaults.
func DefaultOptions() Options {
	return Options{
		RewindIncrement:      5 * time.Second,
		FastForwardIncrement: 15 * time.Second,
		ShowTimeout:          visibility.DefaultTimeout,
		Autoplay:             true,
		SeekStrategy:         "forward",
		Speed:                player.DefaultSpeed,
		Volume:               player.MaxVolume,
	}
}

// FromConfig reads options from the loaded configuration.
func FromConfig() Options {
	return Options{
		RewindIncrement:      millis(viper.GetInt64(key.PlayerRewindIncrementMs)),
		FastForwardIncrement: millis(viper.GetInt64(key.PlayerFastForwardIncrementMs)),
		ShowTimeout:          millis(viper.GetInt64(key.PlayerShowTimeoutMs)),
		Looping:              viper.GetBool(key.PlayerLooping),
		Autoplay:             viper.GetBool(key.PlayerAutoplay),
		SeekStrategy:         viper.GetString(key.PlayerSeekStrategy),
		FormatHint:           viper.GetString(key.PlayerFormatHint),
		Speed:                viper.GetFloat64(key.PlayerSpeed),
		Volume:               viper.GetInt(key.PlayerVolume),
	}
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
