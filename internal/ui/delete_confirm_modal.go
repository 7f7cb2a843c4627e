package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/sttts/kmanage/pkg/workload"
)

// DeleteConfirmMsg signals the result of the delete confirmation dialog.
type DeleteConfirmMsg struct {
	Kind      workload.Kind
	Namespace string
	Name      string
	Confirm   bool
}

// DeleteConfirmModel renders a Yes/No confirmation prompt for one resource.
type DeleteConfirmModel struct {
	width, height int
	kind          workload.Kind
	namespace     string
	name          string
	focus         int // 0=yes, 1=no
	buttonRect    [2]buttonRect
}

type buttonRect struct{ x, y, w, h int }

func (r buttonRect) contains(px, py int) bool {
	return px >= r.x && px < r.x+r.w && py >= r.y && py < r.y+r.h
}

func NewDeleteConfirmModel() *DeleteConfirmModel {
	return &DeleteConfirmModel{focus: 1}
}

func (m *DeleteConfirmModel) Init() tea.Cmd          { return nil }
func (m *DeleteConfirmModel) SetDimensions(w, h int) { m.width, m.height = w, h }

// Configure sets the resource the dialog asks about and resets focus to "No".
func (m *DeleteConfirmModel) Configure(kind workload.Kind, namespace, name string) {
	m.kind = kind
	m.namespace = namespace
	m.name = name
	m.focus = 1
}

func (m *DeleteConfirmModel) result(confirm bool) tea.Cmd {
	msg := DeleteConfirmMsg{Kind: m.kind, Namespace: m.namespace, Name: m.name, Confirm: confirm}
	return func() tea.Msg { return msg }
}

func (m *DeleteConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch key := msg.(type) {
	case tea.KeyPressMsg:
		switch strings.ToLower(key.String()) {
		case "esc", "ctrl+c", "ctrl+g", "n":
			return m, m.result(false)
		case "y":
			return m, m.result(true)
		case "enter":
			return m, m.result(m.focus == 0)
		case "left", "right", "tab", "shift+tab":
			m.focus = (m.focus + 1) % 2
		}
	case tea.MouseClickMsg:
		mouse := key.Mouse()
		if mouse.Button != tea.MouseLeft {
			return m, nil
		}
		for idx, r := range m.buttonRect {
			if r.contains(mouse.X, mouse.Y) {
				m.focus = idx
			}
		}
	case tea.MouseReleaseMsg:
		mouse := key.Mouse()
		if mouse.Button != tea.MouseLeft {
			return m, nil
		}
		for idx, r := range m.buttonRect {
			if r.contains(mouse.X, mouse.Y) {
				return m, m.result(idx == 0)
			}
		}
	}
	return m, nil
}

func (m *DeleteConfirmModel) View() string {
	innerWidth := max(30, m.width-4)
	const buttonWidth = 8
	bg := lipgloss.NewStyle().
		Background(lipgloss.Color(ColorModalBg)).
		Foreground(lipgloss.Color(ColorModalFg)).
		Width(innerWidth)

	title := fmt.Sprintf("Delete %s %q in namespace %q?", m.kind.Title(), m.name, m.namespace)
	titleView := bg.Bold(true).Align(lipgloss.Center).Render(title)
	helpView := bg.Faint(true).Align(lipgloss.Center).Render("←/→ Switch • Enter: Confirm • Esc: Cancel")

	options := []string{
		m.renderOption("Yes", buttonWidth, m.focus == 0),
		m.renderOption("No", buttonWidth, m.focus != 0),
	}
	separator := lipgloss.NewStyle().Background(lipgloss.Color(ColorModalBg)).Render(" ")
	bodyRow := lipgloss.JoinHorizontal(lipgloss.Center, options[0], separator, options[1])
	bodyView := bg.Align(lipgloss.Center).Render(bodyRow)

	// title (0), spacer (1), buttons (2)
	leftPad := max(0, (innerWidth-lipgloss.Width(bodyRow))/2)
	yesWidth := lipgloss.Width(options[0])
	m.buttonRect[0] = buttonRect{x: leftPad, y: 2, w: yesWidth, h: 1}
	m.buttonRect[1] = buttonRect{x: leftPad + yesWidth + lipgloss.Width(separator), y: 2, w: lipgloss.Width(options[1]), h: 1}

	spacer := bg.Render("")
	return lipgloss.JoinVertical(lipgloss.Left, titleView, spacer, bodyView, spacer, helpView)
}

func (m *DeleteConfirmModel) renderOption(label string, width int, focused bool) string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBlack)).
		Background(lipgloss.Color("240")).
		Width(width).
		Align(lipgloss.Center)
	if focused {
		style = style.Background(lipgloss.Color(ColorModalSelBg)).Bold(true)
	}
	return style.Render(label)
}
