package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"inspectd/internal/config"
)

type helpEntry struct {
	usage string
	text  string
}

var commands = []helpEntry{
	{usage: "listen [--record FILE] [--app GLOB] [--session GLOB]", text: "Receive packets on every enabled listener"},
	{usage: "replay FILE [--strict] [--follow]", text: "Print the packets stored in a .sil file"},
	{usage: "tail [--name NAME] [--app GLOB]", text: "Stream packets from a running listen command"},
	{usage: "relay", text: "Forward JSON logs posted over HTTP to a WebSocket listener"},
	{usage: "init [--output FILE] [--force] [--dry-run]", text: "Generate " + config.ConfigFile},
	{usage: "version", text: "Show version"},
}

var examples = []helpEntry{
	{usage: "listen --record session.sil.zst", text: "Listen and record compressed"},
	{usage: "listen --app 'web-*'", text: "Only show apps starting with web-"},
	{usage: "replay session.sil --follow", text: "Print a recording while it grows"},
	{usage: "tail --format json", text: "Stream live packets as JSON lines"},
}

// RenderHelp renders usage, commands and examples
func RenderHelp() string {
	width := 0
	for _, e := range append(commands, examples...) {
		width = max(width, len(e.usage))
	}

	row := func(style lipgloss.Style, e helpEntry) string {
		usage := fmt.Sprintf("%-*s", width, e.usage)
		return bodyMedium.Render("  " + config.AppName + " " + style.Render(usage) + "  " + e.text)
	}

	lines := []string{RenderTitle(), sectionHeader.Render("Usage:")}
	for _, e := range commands {
		lines = append(lines, row(commandName, e))
	}

	lines = append(lines, sectionHeader.Render("Examples:"))
	for _, e := range examples {
		lines = append(lines, row(exampleCode, e))
	}

	lines = append(lines, sectionHeader.Render("Global flags:"),
		bodyMedium.Render("  --format console|json   Output format of printed packets"),
	)

	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}
