package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/kplay-cli/kplay/constant"
	"github.com/kplay-cli/kplay/icon"
	"github.com/kplay-cli/kplay/log"
	"github.com/kplay-cli/kplay/style"
	"github.com/kplay-cli/kplay/version"
)

// CheckDependencies exits when the mpv binary is missing and warns when it is
// older than version.MinimumEngine.
func CheckDependencies(binary string) {
	if binary == "" {
		binary = constant.MPV
	}

	if _, err := exec.LookPath(binary); err != nil {
		printMissingDependencyError(binary)
		os.Exit(1)
	}

	v, err := version.Engine(binary)
	if err != nil {
		log.For("check").Warnf("detect %s version: %v", binary, err)
		return
	}

	if !version.EngineSupported(v) {
		fmt.Fprintf(os.Stderr,
			"%s %s %s is older than %s, seeking and playlists may misbehave\n",
			style.Fg(style.WarningColor)("!"),
			binary,
			style.Bold(v),
			style.Bold(version.MinimumEngine),
		)
	}
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case constant.Darwin:
		installCmd = "brew install mpv"
	case constant.Linux:
		installCmd = "sudo apt install mpv"
	case constant.Windows:
		installCmd = "scoop install mpv"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.ErrorColor).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.ErrorColor).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The media engine '%s' was not found in your PATH.", dep))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
