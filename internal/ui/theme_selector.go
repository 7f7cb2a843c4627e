package ui

import (
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"
	tea "github.com/charmbracelet/bubbletea/v2"
)

// ThemeSelector is a simple list to choose a chroma style.
type ThemeSelector struct {
	names    []string
	selected int
	width    int
	height   int
	onApply  func(name string) tea.Cmd
	onChange func(name string) tea.Cmd
	onCancel func() tea.Cmd
}

func NewThemeSelector(onApply func(name string) tea.Cmd) *ThemeSelector {
	curated := []string{
		"dracula", "monokai", "github-dark", "nord", "solarized-dark",
		"solarized-light", "gruvbox", "friendly", "borland", "native",
	}
	// fall back to every registered style if the curated set is mostly missing
	avail := styles.Names()
	set := map[string]bool{}
	for _, n := range avail {
		set[n] = true
	}
	var names []string
	for _, n := range curated {
		if set[n] {
			names = append(names, n)
		}
	}
	if len(names) < 5 {
		names = avail
	}
	sort.Strings(names)
	return &ThemeSelector{names: names, onApply: onApply}
}

// SetOnChange is called whenever the highlighted entry moves.
func (s *ThemeSelector) SetOnChange(fn func(name string) tea.Cmd) { s.onChange = fn }

// SetOnCancel is called on Esc.
func (s *ThemeSelector) SetOnCancel(fn func() tea.Cmd) { s.onCancel = fn }

// SetSelectedByName moves the selection to name, case-insensitively.
func (s *ThemeSelector) SetSelectedByName(name string) bool {
	for i, n := range s.names {
		if strings.EqualFold(n, name) {
			s.selected = i
			return true
		}
	}
	return false
}

// Selected returns the highlighted style name.
func (s *ThemeSelector) Selected() string {
	if len(s.names) == 0 {
		return ""
	}
	return s.names[s.selected]
}

func (s *ThemeSelector) Init() tea.Cmd { return nil }

func (s *ThemeSelector) SetDimensions(w, h int) { s.width, s.height = w, h }

func (s *ThemeSelector) move(delta int) tea.Cmd {
	next := min(max(s.selected+delta, 0), len(s.names)-1)
	if next == s.selected || next < 0 {
		return nil
	}
	s.selected = next
	if s.onChange != nil {
		return s.onChange(s.names[s.selected])
	}
	return nil
}

func (s *ThemeSelector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m, ok := msg.(tea.KeyPressMsg); ok {
		switch m.String() {
		case "up", "k":
			return s, s.move(-1)
		case "down", "j":
			return s, s.move(1)
		case "enter":
			if s.onApply != nil && len(s.names) > 0 {
				return s, s.onApply(s.names[s.selected])
			}
		case "esc", "ctrl+g":
			if s.onCancel != nil {
				return s, s.onCancel()
			}
		}
	}
	return s, nil
}

func (s *ThemeSelector) View() string {
	var b strings.Builder
	start, end := 0, len(s.names)
	if s.height > 0 && len(s.names) > s.height {
		// keep the selection visible
		if s.selected < s.height {
			end = s.height
		} else {
			start = s.selected - s.height + 1
			end = start + s.height
		}
	}
	for i := start; i < end && i < len(s.names); i++ {
		style := ListItemStyle
		if i == s.selected {
			style = ListItemSelectedStyle
		}
		b.WriteString(style.Width(s.width).Render(" " + s.names[i]))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return ModalStyle.Render(b.String())
}
