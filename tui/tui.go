package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/kplay-cli/kplay/clock"
	"github.com/kplay-cli/kplay/control"
	"github.com/kplay-cli/kplay/key"
	"github.com/kplay-cli/kplay/log"
	"github.com/kplay-cli/kplay/playback"
	"github.com/kplay-cli/kplay/player"
	"github.com/kplay-cli/kplay/recent"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	Locators []string
	Control  control.Options
}

// Run plays the locators in mpv and drives its control surface until the user quits.
func Run(ctx context.Context, options *Options) error {
	logger := log.For("tui")

	loop := clock.NewLoop()
	engine, err := player.NewMPV(loop, player.WithBinary(viper.GetString(key.PlayerBinary)))
	if err != nil {
		return err
	}

	var controller *control.Controller
	post := func(fn func(*control.Controller)) {
		loop.Post(func() { fn(controller) })
	}

	bubble := newBubble(options.Locators, post, nil)
	program := tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithContext(ctx))
	bubble.send = program.Send

	p := &presenter{send: program.Send}
	controller, err = control.New(loop, engine, p, options.Control)
	if err != nil {
		engine.Release()
		return err
	}
	p.controller = controller

	var group errgroup.Group
	group.Go(func() error {
		// the loop outlives the program so Close can still reach the engine
		_ = loop.Run(context.Background())
		return nil
	})

	viper.OnConfigChange(func(fsnotify.Event) {
		looping := viper.GetBool(key.PlayerLooping)
		loop.Post(func() {
			controller.Machine().SetLooping(looping)
		})
		logger.Infof("configuration changed, looping is %t", looping)
	})
	viper.WatchConfig()

	_, runErr := program.Run()

	loop.Do(func() {
		if err := controller.Close(); err != nil {
			logger.Debug(err)
		}
	})

	select {
	case <-engine.Wait():
	case <-time.After(shutdownTimeout):
		logger.Warn("mpv did not shut down in time")
	}
	loop.Close()
	_ = group.Wait()

	if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return runErr
}

// remember records every opened source in the recently played registry.
func remember(machine *playback.Machine) {
	for _, src := range machine.Sources() {
		if err := recent.Remember(src.Locator, src.Kind); err != nil {
			log.For("tui").Warnf("remember %s: %s", src.Locator, err)
		}
	}
}
