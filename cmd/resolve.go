package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kplay-cli/kplay/format"
	"github.com/kplay-cli/kplay/key"
	"github.com/kplay-cli/kplay/source"
	"github.com/kplay-cli/kplay/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringP("hint", "H", "", "Force the content type by extension (m3u8, mpd, ism, mp4...)")
	lo.Must0(resolveCmd.RegisterFlagCompletionFunc("hint", completionFormatHints))
	resolveCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")

	resolveCmd.SetOut(os.Stdout)
}

// resolution is the output of `kplay resolve --json`.
type resolution struct {
	Locator  string   `json:"locator" jsonschema:"description=Locator as given"`
	Kind     string   `json:"kind" jsonschema:"enum=hls,enum=dash,enum=smoothstreaming,enum=progressive"`
	Adaptive bool     `json:"adaptive"`
	Remote   bool     `json:"remote"`
	Options  []string `json:"options" jsonschema:"description=Per-file mpv options"`
}

// resolveCmd shows how a locator would be handed to the engine, without playing it.
var resolveCmd = &cobra.Command{
	Use:               "resolve <locator>",
	Short:             "Show the content type and engine options a locator resolves to",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionRecent,
	Run: func(cmd *cobra.Command, args []string) {
		hint := lo.Must(cmd.Flags().GetString("hint"))
		if hint == "" {
			hint = viper.GetString(key.PlayerFormatHint)
		}

		src, err := source.NewFactory().Resolve(args[0], hint)
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(resolution{
				Locator:  src.Locator,
				Kind:     src.Kind.String(),
				Adaptive: src.Kind.Adaptive(),
				Remote:   src.Remote(),
				Options:  src.OptionList(),
			}))
			return
		}

		header := style.New().Bold(true).Foreground(style.AccentColor).Render
		cmd.Printf("%s %s\n", header("Locator"), src.Locator)
		cmd.Printf("%s %s\n", header("Kind"), kindTag(src.Kind))
		for _, option := range src.OptionList() {
			cmd.Printf("%s %s\n", header("Option"), style.Fg(style.Yellow)(option))
		}
	},
}

func kindTag(kind format.Kind) string {
	label := kind.String()
	if kind.Adaptive() {
		label = fmt.Sprintf("%s (adaptive)", label)
	}
	return style.Fg(style.Green)(label)
}
