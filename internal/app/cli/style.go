package cli

import (
	"github.com/charmbracelet/lipgloss"

	"inspectd/internal/app/console"
	"inspectd/internal/config"
)

var (
	sectionHeader = lipgloss.NewStyle().Bold(true).Foreground(console.FgPrimary).MarginTop(1)
	commandName   = lipgloss.NewStyle().Bold(true).Foreground(console.FgSuccess)
	exampleCode   = lipgloss.NewStyle().Bold(true).Foreground(console.FgWarning)
	bodyMedium    = lipgloss.NewStyle()

	appNameStyle    = lipgloss.NewStyle().Bold(true).Foreground(console.FgPrimary)
	appVersionStyle = console.MutedStyle
	titleWrapper    = lipgloss.NewStyle().MarginTop(1)
)

// RenderTitle renders the app title block with name, version, and description
func RenderTitle() string {
	title := titleWrapper.Render(
		appNameStyle.Render(config.AppName) + appVersionStyle.Render(" v"+config.Version),
	)
	description := bodyMedium.Render(config.AppDescription)

	return lipgloss.JoinVertical(lipgloss.Left, title, description)
}
