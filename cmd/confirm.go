package cmd

import (
	"github.com/AlecAivazis/survey/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// addYesFlag lets scripts skip the confirmation prompt of a destructive command.
func addYesFlag(cmd *cobra.Command) {
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

// confirm asks before a destructive action unless --yes was passed.
func confirm(cmd *cobra.Command, message string) bool {
	if lo.Must(cmd.Flags().GetBool("yes")) {
		return true
	}

	prompt := survey.Confirm{
		Message: message,
		Default: false,
	}
	var response bool
	handleErr(survey.AskOne(&prompt, &response))
	return response
}
