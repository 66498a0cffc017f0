package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - listening banner
	ErrorColor   = lipgloss.Color("#FF5555") // Red - startup failures
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
)

// styles is the set of styles bound to one renderer
type styles struct {
	banner     lipgloss.Style
	box        lipgloss.Style
	paramKey   lipgloss.Style
	paramValue lipgloss.Style
	title      lipgloss.Style
	counterKey lipgloss.Style
	counterVal lipgloss.Style
	errTitle   lipgloss.Style
	errDetail  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, width int) styles {
	return styles{
		banner: r.NewStyle().
			Foreground(SuccessColor).
			Bold(true),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Width(width - 2).
			Padding(0, 1),
		paramKey: r.NewStyle().
			Foreground(MutedColor).
			Width(14),
		paramValue: r.NewStyle().
			Foreground(TextColor),
		title: r.NewStyle().
			Foreground(PrimaryColor).
			Bold(true),
		counterKey: r.NewStyle().
			Foreground(TextColor),
		counterVal: r.NewStyle().
			Foreground(SuccessColor).
			Bold(true),
		errTitle: r.NewStyle().
			Foreground(ErrorColor).
			Bold(true),
		errDetail: r.NewStyle().
			Foreground(ErrorColor),
	}
}

// terminalWidth returns the width of w if it is a terminal, clamped to the
// supported range, and MinTerminalWidth otherwise
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return MinTerminalWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}
