package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kplay-cli/kplay/recent"
	"github.com/kplay-cli/kplay/style"
	"github.com/kplay-cli/kplay/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(recentCmd)
	recentCmd.Flags().BoolP("clear", "c", false, "Forget every recently played locator")
	recentCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	recentCmd.Flags().StringP("query", "q", "", "Only list locators fuzzy matching the query")
	recentCmd.MarkFlagsMutuallyExclusive("clear", "json")
	addYesFlag(recentCmd)

	recentCmd.SetOut(os.Stdout)
}

// recentCmd lists the registry of recently played locators.
var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently played locators",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("clear")) {
			if confirm(cmd, "Forget every recently played locator?") {
				handleErr(recent.Clear())
				done("recent locators cleared")
			}
			return
		}

		entries, err := recent.List()
		handleErr(err)

		if query := lo.Must(cmd.Flags().GetString("query")); query != "" {
			matches := lo.SliceToMap(recent.SuggestMany(query), func(l string) (string, struct{}) {
				return l, struct{}{}
			})
			entries = lo.Filter(entries, func(e *recent.Entry, _ int) bool {
				_, ok := matches[e.Locator]
				return ok
			})
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			handleErr(encoder.Encode(entries))
			return
		}

		if len(entries) == 0 {
			cmd.Println(style.Faint("Nothing played yet"))
			return
		}

		for _, entry := range entries {
			cmd.Printf(
				"%s %s %s\n",
				style.Tag(style.Base, style.SecondaryColor)(entry.Kind),
				entry.Locator,
				style.Faint(fmt.Sprintf("(%s, %s)", util.Quantify(entry.Plays, "play", "plays"), entry.LastPlayed.Format("2006-01-02 15:04"))),
			)
		}
	},
}
