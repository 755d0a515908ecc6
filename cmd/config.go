package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/kplay-cli/kplay/config"
	"github.com/kplay-cli/kplay/filesystem"
	"github.com/kplay-cli/kplay/icon"
	"github.com/kplay-cli/kplay/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInfoCmd, configGetCmd, configSetCmd, configResetCmd, configWriteCmd, configDeleteCmd)

	configInfoCmd.Flags().StringSliceP("key", "k", nil, "Only describe these keys")
	configInfoCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	lo.Must0(configInfoCmd.RegisterFlagCompletionFunc("key", completionConfigKeys))
	configInfoCmd.SetOut(os.Stdout)

	configResetCmd.Flags().BoolP("all", "a", false, "Reset every key")
	addYesFlag(configResetCmd)

	configWriteCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
	addYesFlag(configDeleteCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit the configuration",
}

var configInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe configuration keys with their current and default values",
	Run: func(cmd *cobra.Command, args []string) {
		fields, err := config.Fields(lo.Must(cmd.Flags().GetStringSlice("key"))...)
		handleConfigErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(fields))
			return
		}

		for i, field := range fields {
			if i > 0 {
				cmd.Println()
			}
			cmd.Println(field.Pretty())
		}
	},
}

var configGetCmd = &cobra.Command{
	Use:               "get <key>",
	Short:             "Print the current value of a key",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		_, err := config.Lookup(args[0])
		handleConfigErr(err)
		fmt.Println(viper.Get(args[0]))
	},
}

var configSetCmd = &cobra.Command{
	Use:               "set <key> <value...>",
	Short:             "Set a key and save the config file",
	Args:              cobra.MinimumNArgs(2),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		value, err := config.Set(args[0], args[1:])
		handleConfigErr(err)
		handleErr(config.Write())
		done("set %s to %s", style.Fg(style.Mauve)(args[0]), style.Fg(style.Yellow)(fmt.Sprint(value)))
	},
}

var configResetCmd = &cobra.Command{
	Use:               "reset [key...]",
	Short:             "Restore keys to their defaults and save the config file",
	ValidArgsFunction: completionConfigKeys,
	Args: func(cmd *cobra.Command, args []string) error {
		if all := lo.Must(cmd.Flags().GetBool("all")); all == (len(args) > 0) {
			return errors.New("pass either keys or --all")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		what := "every key"
		if len(args) > 0 {
			what = fmt.Sprint(args)
		}
		if !confirm(cmd, "Reset "+what+" to the default?") {
			return
		}

		handleConfigErr(config.Reset(args...))
		handleErr(config.Write())
		done("reset %s", what)
	},
}

var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Save the current configuration to a new config file",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("force")) {
			handleErr(removeConfig())
		}

		handleErr(viper.SafeWriteConfig())
		done("wrote config to %s", config.File())
	},
}

var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Aliases: []string{"remove"},
	Short:   "Delete the config file",
	Run: func(cmd *cobra.Command, args []string) {
		if !confirm(cmd, "Delete "+config.File()+"?") {
			return
		}

		handleErr(removeConfig())
		done("deleted config")
	},
}

func removeConfig() error {
	err := filesystem.API().Remove(config.File())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// handleConfigErr highlights the suggestion of an unknown key error.
func handleConfigErr(err error) {
	var unknown *config.UnknownKeyError
	if errors.As(err, &unknown) {
		err = fmt.Errorf("unknown key %s, did you mean %s?", style.Fg(style.Red)(unknown.Key), style.Fg(style.Yellow)(unknown.Closest))
	}
	handleErr(err)
}

func done(format string, args ...any) {
	fmt.Printf("%s %s\n", style.Fg(style.SuccessColor)(icon.Get(icon.Success)), fmt.Sprintf(format, args...))
}

func completionConfigKeys(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return config.Keys(), cobra.ShellCompDirectiveNoFileComp
}
