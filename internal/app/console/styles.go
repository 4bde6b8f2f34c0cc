package console

import "github.com/charmbracelet/lipgloss"

// Palette
const (
	FgPrimary = lipgloss.Color("#7D56F4")
	FgMuted   = lipgloss.Color("7")
	FgBorder  = lipgloss.Color("8")

	FgError   = lipgloss.Color("9")
	FgWarning = lipgloss.Color("11")
	FgSuccess = lipgloss.Color("10")
)

// SeparatorColor is the adaptive color for the column separator
var SeparatorColor = lipgloss.AdaptiveColor{Light: "#737373", Dark: "#a3a3a3"}

// AppColorPalette gives every app name a stable color
var AppColorPalette = []lipgloss.AdaptiveColor{
	{Light: "#0891b2", Dark: "#22d3ee"}, // Cyan
	{Light: "#d97706", Dark: "#fbbf24"}, // Amber
	{Light: "#059669", Dark: "#34d399"}, // Emerald
	{Light: "#7c3aed", Dark: "#a78bfa"}, // Violet
	{Light: "#db2777", Dark: "#f472b6"}, // Pink
	{Light: "#2563eb", Dark: "#60a5fa"}, // Blue
	{Light: "#65a30d", Dark: "#a3e635"}, // Lime
	{Light: "#0d9488", Dark: "#2dd4bf"}, // Teal
	{Light: "#ea580c", Dark: "#fb923c"}, // Orange
	{Light: "#4f46e5", Dark: "#818cf8"}, // Indigo
	{Light: "#0284c7", Dark: "#38bdf8"}, // Sky
	{Light: "#9333ea", Dark: "#e879f9"}, // Magenta
}

var (
	TimestampStyle = lipgloss.NewStyle().Foreground(FgMuted)
	MutedStyle     = lipgloss.NewStyle().Foreground(FgBorder)
	BoldStyle      = lipgloss.NewStyle().Bold(true)
	TitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(FgPrimary)
	ErrorStyle     = lipgloss.NewStyle().Foreground(FgError).Bold(true)
	WarningStyle   = lipgloss.NewStyle().Foreground(FgWarning)
	SuccessStyle   = lipgloss.NewStyle().Foreground(FgSuccess)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(FgBorder).
			Padding(0, 1)
)

// levelStyle picks the style for a packet level
func levelStyle(level string) lipgloss.Style {
	switch level {
	case "Error", "Fatal", "InternalError":
		return ErrorStyle
	case "Warning":
		return WarningStyle
	case "Debug", "Verbose":
		return MutedStyle
	case "EnterMethod", "EnterThread", "EnterProcess":
		return SuccessStyle
	default:
		return lipgloss.NewStyle()
	}
}
