package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
)

// NamespaceSelectedMsg is emitted when a namespace was picked or the selector
// was dismissed.
type NamespaceSelectedMsg struct {
	Namespace string
	Confirm   bool
}

// NamespaceSelector lists the namespaces returned by the backend. Typing
// filters the list.
type NamespaceSelector struct {
	all       []string
	filtered  []string
	filter    string
	selected  int
	scrollTop int
	width     int
	height    int
}

func NewNamespaceSelector() *NamespaceSelector {
	return &NamespaceSelector{}
}

// SetNamespaces replaces the list and preselects current.
func (s *NamespaceSelector) SetNamespaces(namespaces []string, current string) {
	s.all = append([]string(nil), namespaces...)
	s.filter = ""
	s.applyFilter()
	for i, ns := range s.filtered {
		if ns == current {
			s.selected = i
		}
	}
	s.ensureVisible()
}

func (s *NamespaceSelector) applyFilter() {
	s.filtered = s.filtered[:0]
	for _, ns := range s.all {
		if strings.Contains(ns, s.filter) {
			s.filtered = append(s.filtered, ns)
		}
	}
	s.selected = min(s.selected, max(0, len(s.filtered)-1))
	s.scrollTop = 0
	s.ensureVisible()
}

func (s *NamespaceSelector) contentHeight() int { return max(1, s.height-2) }

func (s *NamespaceSelector) ensureVisible() {
	h := s.contentHeight()
	if s.selected < s.scrollTop {
		s.scrollTop = s.selected
	}
	if s.selected >= s.scrollTop+h {
		s.scrollTop = s.selected - h + 1
	}
}

func (s *NamespaceSelector) Init() tea.Cmd { return nil }

func (s *NamespaceSelector) SetDimensions(w, h int) {
	s.width, s.height = w, h
	s.ensureVisible()
}

func (s *NamespaceSelector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}
	switch key.String() {
	case "up":
		if s.selected > 0 {
			s.selected--
			s.ensureVisible()
		}
	case "down":
		if s.selected < len(s.filtered)-1 {
			s.selected++
			s.ensureVisible()
		}
	case "enter":
		if len(s.filtered) == 0 {
			return s, nil
		}
		ns := s.filtered[s.selected]
		return s, func() tea.Msg { return NamespaceSelectedMsg{Namespace: ns, Confirm: true} }
	case "esc", "ctrl+c", "ctrl+g":
		return s, func() tea.Msg { return NamespaceSelectedMsg{} }
	case "backspace":
		if s.filter != "" {
			s.filter = s.filter[:len(s.filter)-1]
			s.applyFilter()
		}
	default:
		if key.Text != "" && key.Mod == 0 {
			s.filter += key.Text
			s.applyFilter()
		}
	}
	return s, nil
}

func (s *NamespaceSelector) View() string {
	width := max(30, s.width)
	header := ListHeaderStyle.Width(width).Align(lipgloss.Center).Render("Namespace")

	var rows []string
	end := min(len(s.filtered), s.scrollTop+s.contentHeight())
	for i := s.scrollTop; i < end; i++ {
		style := ListItemStyle
		if i == s.selected {
			style = ListItemSelectedStyle
		}
		rows = append(rows, style.Width(width).Render(" "+s.filtered[i]))
	}
	if len(s.filtered) == 0 {
		rows = append(rows, ListItemStyle.Width(width).Render(" no namespaces"))
	}
	for len(rows) < s.contentHeight() {
		rows = append(rows, ListItemStyle.Width(width).Render(""))
	}

	help := "Enter: Select • Esc: Cancel"
	if s.filter != "" {
		help = "Filter: " + s.filter
	}
	footer := FunctionKeyBarStyle.Width(width).Render(" " + help)
	return lipgloss.JoinVertical(lipgloss.Left, append(append([]string{header}, rows...), footer)...)
}
