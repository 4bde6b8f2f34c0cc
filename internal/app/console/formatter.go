package console

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"

	"inspectd/internal/app/packet"
	"inspectd/internal/config"
	"inspectd/internal/config/logger"
)

const (
	defaultNameLen = 8
	timeLayout     = "15:04:05.000"
)

// Field is one label and value line of a banner
type Field struct {
	Label string
	Value string
}

// Formatter renders packet summaries as colored console lines or JSON lines
type Formatter struct {
	mu         sync.Mutex
	format     string
	maxNameLen int
	separator  lipgloss.Style
	appStyles  map[string]lipgloss.Style
}

// NewFormatter creates a formatter using the configured logging format
func NewFormatter(cfg *config.Config) *Formatter {
	return &Formatter{
		format:     cfg.Logging.Format,
		maxNameLen: defaultNameLen,
		separator:  lipgloss.NewStyle().Foreground(SeparatorColor),
		appStyles:  make(map[string]lipgloss.Style),
	}
}

// SetFormat switches between console and JSON output
func (f *Formatter) SetFormat(format string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.format = format
}

// Format renders one summary as a newline terminated line
func (f *Formatter) Format(s packet.Summary) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.format == logger.JSONFormat {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Sprintf(`{"kind":%q,"title":%q}`+"\n", s.Kind, s.Title)
		}

		return string(data) + "\n"
	}

	return f.formatLine(s)
}

// Write renders s to w
func (f *Formatter) Write(w io.Writer, s packet.Summary) {
	fmt.Fprint(w, f.Format(s))
}

// RenderBanner writes a bordered block with a title and fields
func (f *Formatter) RenderBanner(w io.Writer, title string, fields []Field) {
	if f.format == logger.JSONFormat {
		return
	}

	width, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || width < 40 {
		width = 80
	}

	lines := []string{TitleStyle.Render(title)}
	for _, field := range fields {
		lines = append(lines, MutedStyle.Render(field.Label)+" "+BoldStyle.Render(field.Value))
	}

	panel := PanelStyle.Width(width - 2).Render(strings.Join(lines, "\n"))
	footer := " " + BoldStyle.Render("ctrl+c") + " " + MutedStyle.Render("exit")

	fmt.Fprintln(w, panel)
	fmt.Fprintln(w, footer)
}

// formatLine renders "time name | level title"
func (f *Formatter) formatLine(s packet.Summary) string {
	name := s.App
	if name == "" {
		name = s.Kind
	}

	if len(name) > f.maxNameLen {
		f.maxNameLen = len(name)
	}

	padded := name + strings.Repeat(" ", f.maxNameLen-len(name))

	var b strings.Builder

	b.WriteString(TimestampStyle.Render(s.Timestamp.Format(timeLayout)))
	b.WriteString(" ")
	b.WriteString(f.appStyle(name).Render(padded))
	b.WriteString(" ")
	b.WriteString(f.separator.Render("|"))
	b.WriteString(" ")

	if s.Level != "" {
		b.WriteString(levelStyle(s.Level).Render(s.Level))
		b.WriteString(" ")
	}

	b.WriteString(s.Title)
	b.WriteString("\n")

	return b.String()
}

// appStyle returns a stable style for an app name
func (f *Formatter) appStyle(name string) lipgloss.Style {
	if style, ok := f.appStyles[name]; ok {
		return style
	}

	color := AppColorPalette[hashString(name)%len(AppColorPalette)]
	style := lipgloss.NewStyle().Foreground(color).Bold(true)
	f.appStyles[name] = style

	return style
}

func hashString(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}

	if h < 0 {
		h = -h
	}

	return h
}
