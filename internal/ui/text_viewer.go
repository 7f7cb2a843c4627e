package ui

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// DefaultTheme is the chroma style used when none is configured.
const DefaultTheme = "dracula"

// TextViewer is a scrollable, read-only view of a manifest or of pod logs.
// YAML is highlighted with chroma; plain text is shown as is.
type TextViewer struct {
	title  string
	text   string
	lexer  string
	theme  string
	lines  []string
	width  int
	height int
	offset int

	onEdit  func() tea.Cmd
	onTheme func() tea.Cmd
	onClose func() tea.Cmd
}

// NewTextViewer returns a viewer for text. lexer is a chroma lexer name, empty
// for plain text.
func NewTextViewer(title, text, lexer, theme string) *TextViewer {
	v := &TextViewer{title: title, text: text, lexer: lexer, theme: theme}
	v.render()
	return v
}

func (v *TextViewer) SetOnEdit(fn func() tea.Cmd)  { v.onEdit = fn }
func (v *TextViewer) SetOnTheme(fn func() tea.Cmd) { v.onTheme = fn }
func (v *TextViewer) SetOnClose(fn func() tea.Cmd) { v.onClose = fn }

// SetTheme re-highlights the content with another chroma style.
func (v *TextViewer) SetTheme(name string) {
	if name == v.theme {
		return
	}
	v.theme = name
	v.render()
}

func (v *TextViewer) Theme() string { return v.theme }
func (v *TextViewer) Title() string { return v.title }

func (v *TextViewer) render() {
	text := strings.TrimRight(v.text, "\n")
	if v.lexer != "" {
		theme := v.theme
		if theme == "" {
			theme = DefaultTheme
		}
		var b strings.Builder
		if err := quick.Highlight(&b, text, v.lexer, "terminal256", theme); err == nil {
			text = strings.TrimRight(b.String(), "\n")
		}
	}
	v.lines = strings.Split(text, "\n")
	v.offset = min(v.offset, v.maxOffset())
}

func (v *TextViewer) bodyHeight() int { return max(1, v.height-2) }

func (v *TextViewer) maxOffset() int { return max(0, len(v.lines)-v.bodyHeight()) }

func (v *TextViewer) Init() tea.Cmd { return nil }

func (v *TextViewer) SetDimensions(w, h int) {
	v.width, v.height = w, h
	v.offset = min(v.offset, v.maxOffset())
}

func (v *TextViewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyPressMsg:
		page := max(1, v.bodyHeight()-1)
		switch m.String() {
		case "up", "k":
			v.offset = max(0, v.offset-1)
		case "down", "j":
			v.offset = min(v.maxOffset(), v.offset+1)
		case "pgup", "b":
			v.offset = max(0, v.offset-page)
		case "pgdown", "space", " ":
			v.offset = min(v.maxOffset(), v.offset+page)
		case "home", "g":
			v.offset = 0
		case "end", "G":
			v.offset = v.maxOffset()
		case "e":
			if v.onEdit != nil {
				return v, v.onEdit()
			}
		case "t":
			if v.onTheme != nil && v.lexer != "" {
				return v, v.onTheme()
			}
		case "esc", "q":
			if v.onClose != nil {
				return v, v.onClose()
			}
		}
	case tea.MouseWheelMsg:
		switch m.Mouse().Button {
		case tea.MouseWheelUp:
			v.offset = max(0, v.offset-3)
		case tea.MouseWheelDown:
			v.offset = min(v.maxOffset(), v.offset+3)
		}
	}
	return v, nil
}

func (v *TextViewer) View() string {
	if v.width <= 0 || v.height <= 0 {
		return ""
	}
	title := ViewerTitleStyle.Width(v.width).Render(ansi.Truncate(" "+v.title, v.width, "…"))

	end := min(len(v.lines), v.offset+v.bodyHeight())
	body := make([]string, 0, v.bodyHeight())
	for _, ln := range v.lines[v.offset:end] {
		body = append(body, ansi.Truncate(ln, v.width, ""))
	}
	for len(body) < v.bodyHeight() {
		body = append(body, "")
	}

	hints := []string{FunctionKeyStyle.Render("↑↓") + FunctionKeyDescriptionStyle.Render("Scroll")}
	if v.onEdit != nil {
		hints = append(hints, FunctionKeyStyle.Render("e") + FunctionKeyDescriptionStyle.Render("Edit"))
	}
	if v.onTheme != nil && v.lexer != "" {
		hints = append(hints, FunctionKeyStyle.Render("t") + FunctionKeyDescriptionStyle.Render("Theme"))
	}
	hints = append(hints, FunctionKeyStyle.Render("Esc") + FunctionKeyDescriptionStyle.Render("Close"))
	footer := FunctionKeyBarStyle.Width(v.width).Render(lipgloss.JoinHorizontal(lipgloss.Left, hints...))

	return lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(body, "\n"), footer)
}
