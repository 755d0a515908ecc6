package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kplay-cli/kplay/control"
	"github.com/kplay-cli/kplay/key"
	"github.com/kplay-cli/kplay/recent"
	"github.com/kplay-cli/kplay/seek"
	"github.com/kplay-cli/kplay/tui"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("hint", "H", "", "Force the content type by extension (m3u8, mpd, ism, mp4...)")
	lo.Must0(playCmd.RegisterFlagCompletionFunc("hint", completionFormatHints))
	lo.Must0(viper.BindPFlag(key.PlayerFormatHint, playCmd.Flags().Lookup("hint")))

	playCmd.Flags().BoolP("loop", "l", false, "Restart from the beginning instead of completing")
	lo.Must0(viper.BindPFlag(key.PlayerLooping, playCmd.Flags().Lookup("loop")))

	playCmd.Flags().StringP("strategy", "s", "", "How seek requests reach the engine")
	lo.Must0(playCmd.RegisterFlagCompletionFunc("strategy", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return seek.StrategyNames(), cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(viper.BindPFlag(key.PlayerSeekStrategy, playCmd.Flags().Lookup("strategy")))

	playCmd.Flags().DurationP("timeout", "t", 0, "Hide the controls after this idle duration (0 or less keeps them shown)")
	playCmd.Flags().Bool("no-autoplay", false, "Prepare the media paused")
	playCmd.Flags().Float64("speed", 1, "Playback speed, from 0.25 to 4")
	playCmd.Flags().Int("volume", 100, "Volume percentage, from 0 to 100")
}

// playCmd opens one or more locators as a playlist.
var playCmd = &cobra.Command{
	Use:               "play <locator...>",
	Short:             "Play media locators, in order, as a playlist",
	Args:              cobra.MinimumNArgs(1),
	Example:           "  kplay play https://example.com/live/master.m3u8\n  kplay play --hint mpd https://example.com/manifest\n  kplay play ~/Videos/a.mkv ~/Videos/b.mkv",
	ValidArgsFunction: completionRecent,
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies(viper.GetString(key.PlayerBinary))

		options := playOptions(cmd)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		handleErr(tui.Run(ctx, &tui.Options{
			Locators: args,
			Control:  options,
		}))
	},
}

// playOptions applies the flags given on the command line over the configuration.
func playOptions(cmd *cobra.Command) control.Options {
	options := control.FromConfig()
	flags := cmd.Flags()

	if flags.Changed("timeout") {
		options.ShowTimeout = max(lo.Must(flags.GetDuration("timeout")), 0)
	}
	if lo.Must(flags.GetBool("no-autoplay")) {
		options.Autoplay = false
	}
	if flags.Changed("speed") {
		options.Speed = lo.Must(flags.GetFloat64("speed"))
	}
	if flags.Changed("volume") {
		options.Volume = lo.Must(flags.GetInt("volume"))
	}

	return options
}

func completionFormatHints(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"m3u8", "mpd", "ism", "mp4", "mkv", "webm"}, cobra.ShellCompDirectiveNoFileComp
}

func completionRecent(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return recent.SuggestMany(toComplete), cobra.ShellCompDirectiveDefault
}
