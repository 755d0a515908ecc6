package seek

import (
	"fmt"
	"sort"

	"github.com/kplay-cli/kplay/player"
	"github.com/kplay-cli/kplay/util"
	"github.com/samber/lo"
)

// Strategy dispatches a seek request to the target. It reports whether the
// request was dispatched; when it was not the UI snaps back to the engine.
type Strategy func(target Target, req Request) bool

// Forward hands the request to the target unchanged.
func Forward(target Target, req Request) bool {
	return target.SeekTo(req.Window, req.Position) == nil
}

// Clamp limits the position to the window duration, when known, then forwards.
func Clamp(target Target, req Request) bool {
	if req.Position != player.TimeUnset {
		if w, ok := target.Timeline().Window(req.Window); ok && w.DurationMs != player.TimeUnset {
			req.Position = util.Clamp(req.Position, 0, w.DurationMs)
		}
	}
	return Forward(target, req)
}

// Disabled never dispatches.
func Disabled(Target, Request) bool {
	return false
}

var strategies = map[string]Strategy{
	"forward":  Forward,
	"clamp":    Clamp,
	"disabled": Disabled,
}

// StrategyNames lists the built-in strategies.
func StrategyNames() []string {
	names := lo.Keys(strategies)
	sort.Strings(names)
	return names
}

// StrategyByName returns a built-in strategy.
func StrategyByName(name string) (Strategy, error) {
	if name == "" {
		return Forward, nil
	}

	strategy, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown seek strategy %q, expected one of %v", name, StrategyNames())
	}
	return strategy, nil
}
