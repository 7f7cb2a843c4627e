package ui

import (
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/sttts/kmanage/pkg/workload"
)

// Color constants
const (
	ColorBlack      = "0"
	ColorRed        = "1"
	ColorGreen      = "2"
	ColorYellow     = "3"
	ColorDarkerBlue = "4"
	ColorCyan       = "6"
	ColorGrey       = "7"
	ColorWhite      = "15"
	ColorDarkGrey   = "238"
	ColorModalBg    = "250"
	ColorModalFg    = "0"
	ColorModalSelBg = "203"
)

// Common styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Background(lipgloss.Color(ColorCyan)).
			Foreground(lipgloss.Color(ColorBlack))

	HeaderTabStyle = lipgloss.NewStyle().
			Background(lipgloss.Color(ColorCyan)).
			Foreground(lipgloss.Color(ColorBlack)).
			Padding(0, 1)

	HeaderTabActiveStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(ColorDarkerBlue)).
				Foreground(lipgloss.Color(ColorWhite)).
				Bold(true).
				Padding(0, 1)

	ListHeaderStyle = lipgloss.NewStyle().
			Background(lipgloss.Color(ColorDarkerBlue)).
			Foreground(lipgloss.Color(ColorGrey)).
			Bold(true)

	ListItemStyle = lipgloss.NewStyle().
			Background(lipgloss.Color(ColorDarkerBlue)).
			Foreground(lipgloss.Color(ColorGrey))

	ListItemSelectedStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(ColorCyan)).
				Foreground(lipgloss.Color(ColorBlack))

	// Function key styles
	FunctionKeyStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(ColorBlack)).
				Foreground(lipgloss.Color(ColorWhite)).
				Padding(0, 0, 0, 1)

	FunctionKeyDescriptionStyle = lipgloss.NewStyle().
					Background(lipgloss.Color(ColorCyan)).
					Foreground(lipgloss.Color(ColorBlack)).
					Padding(0, 1, 0, 0)

	FunctionKeyBarStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(ColorBlack)).
				Foreground(lipgloss.Color(ColorGrey))

	ToastStyle = lipgloss.NewStyle().
			Background(lipgloss.Color(ColorGreen)).
			Foreground(lipgloss.Color(ColorBlack)).
			Padding(0, 1)

	ToastErrorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color(ColorRed)).
			Foreground(lipgloss.Color(ColorWhite)).
			Padding(0, 1)

	BusyStyle = lipgloss.NewStyle().
			Background(lipgloss.Color(ColorDarkerBlue)).
			Foreground(lipgloss.Color(ColorWhite)).
			Padding(0, 1)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(ColorCyan)).
			Background(lipgloss.Color(ColorModalBg))

	ViewerTitleStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(ColorDarkerBlue)).
				Foreground(lipgloss.Color(ColorWhite)).
				Bold(true)
)

// statusStyle colours a status cell.
func statusStyle(s workload.Status, selected bool) lipgloss.Style {
	if selected {
		return ListItemSelectedStyle
	}
	style := ListItemStyle
	switch s {
	case workload.StatusRunning, workload.StatusSucceeded:
		return style.Foreground(lipgloss.Color("10"))
	case workload.StatusPending:
		return style.Foreground(lipgloss.Color("11"))
	case workload.StatusFailed:
		return style.Foreground(lipgloss.Color("9"))
	}
	return style
}
