package cmd

import (
	"fmt"
	"strings"

	"github.com/kplay-cli/kplay/filesystem"
	"github.com/kplay-cli/kplay/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// clearTarget defines a filesystem resource eligible for cleanup.
type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	location func() string
}

var clearTargets = []clearTarget{
	{"cache directory", "cache", mo.Some("c"), where.Cache},
	{"log files", "logs", mo.Some("l"), where.Logs},
	{"stale sockets", "sockets", mo.None[string](), where.Sockets},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if target.argShort.IsPresent() {
			clearCmd.Flags().BoolP(target.argLong, target.argShort.MustGet(), false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
	addYesFlag(clearCmd)
}

// clearCmd removes cached and temporary application artifacts.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear cached and temporary application artifacts",
	Run: func(cmd *cobra.Command, args []string) {
		targets := lo.Filter(clearTargets, func(target clearTarget, _ int) bool {
			return lo.Must(cmd.Flags().GetBool(target.argLong))
		})
		if len(targets) == 0 {
			handleErr(cmd.Help())
			return
		}

		names := lo.Map(targets, func(target clearTarget, _ int) string { return target.name })
		if !confirm(cmd, "Clear "+strings.Join(names, ", ")+"?") {
			return
		}

		for _, target := range targets {
			handleErr(filesystem.API().RemoveAll(target.location()))
			done("%s cleared", target.name)
		}
	},
}
