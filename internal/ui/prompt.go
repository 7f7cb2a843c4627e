package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"k8s.io/apimachinery/pkg/util/validation"
)

// PromptResultMsg signals the outcome of a prompt.
type PromptResultMsg struct {
	ID      string
	Value   string
	Confirm bool
}

// PromptModel is a one-line text input, used for the name of a new resource
// and for assistant queries.
type PromptModel struct {
	width, height int
	id            string
	title         string
	help          string
	check         func(string) string
	runes         []rune
	cursor        int
	err           string
}

func NewPromptModel() *PromptModel {
	return &PromptModel{}
}

// CheckName rejects values that are not DNS-1123 subdomains.
func CheckName(v string) string {
	if v == "" {
		return "Name is required"
	}
	if errs := validation.IsDNS1123Subdomain(v); len(errs) > 0 {
		return errs[0]
	}
	return ""
}

// CheckNonEmpty rejects blank values.
func CheckNonEmpty(v string) string {
	if v == "" {
		return "Value is required"
	}
	return ""
}

func (m *PromptModel) Init() tea.Cmd { return nil }

func (m *PromptModel) SetDimensions(w, h int) { m.width, m.height = w, h }

// Reset clears the input and configures the prompt. check returns an error
// text for an invalid value.
func (m *PromptModel) Reset(id, title, help string, check func(string) string) {
	m.id, m.title, m.help, m.check = id, title, help, check
	m.runes = m.runes[:0]
	m.cursor = 0
	m.err = ""
}

func (m *PromptModel) value() string { return string(m.runes) }

func (m *PromptModel) insertRunes(rs []rune) {
	m.clampCursor()
	before := append([]rune{}, m.runes[:m.cursor]...)
	after := append([]rune{}, m.runes[m.cursor:]...)
	m.runes = append(before, append(rs, after...)...)
	m.cursor += len(rs)
	m.err = ""
}

func (m *PromptModel) deleteBackward() {
	if m.cursor <= 0 || len(m.runes) == 0 {
		return
	}
	m.runes = append(m.runes[:m.cursor-1], m.runes[m.cursor:]...)
	m.cursor--
}

func (m *PromptModel) deleteForward() {
	if m.cursor < 0 || m.cursor >= len(m.runes) {
		return
	}
	m.runes = append(m.runes[:m.cursor], m.runes[m.cursor+1:]...)
}

func (m *PromptModel) clampCursor() {
	m.cursor = min(max(m.cursor, 0), len(m.runes))
}

func (m *PromptModel) submit() tea.Cmd {
	v := strings.TrimSpace(m.value())
	if m.check != nil {
		if msg := m.check(v); msg != "" {
			m.err = msg
			return nil
		}
	}
	id := m.id
	return func() tea.Msg { return PromptResultMsg{ID: id, Value: v, Confirm: true} }
}

func (m *PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "ctrl+g", "esc":
		id := m.id
		return m, func() tea.Msg { return PromptResultMsg{ID: id} }
	case "ctrl+h":
		m.deleteBackward()
		return m, nil
	}
	switch key.Code {
	case tea.KeyEnter:
		return m, m.submit()
	case tea.KeyBackspace:
		m.deleteBackward()
	case tea.KeyDelete:
		m.deleteForward()
	case tea.KeyLeft:
		m.cursor--
		m.clampCursor()
	case tea.KeyRight:
		m.cursor++
		m.clampCursor()
	case tea.KeyHome:
		m.cursor = 0
	case tea.KeyEnd:
		m.cursor = len(m.runes)
	default:
		if key.Text != "" && key.Mod&(tea.ModCtrl|tea.ModAlt|tea.ModMeta|tea.ModSuper|tea.ModHyper) == 0 {
			m.insertRunes([]rune(key.Text))
		}
	}
	return m, nil
}

func (m *PromptModel) View() string {
	innerWidth := max(30, m.width-4)
	bg := lipgloss.NewStyle().
		Background(lipgloss.Color(ColorModalBg)).
		Foreground(lipgloss.Color(ColorModalFg)).
		Width(innerWidth)

	header := bg.Bold(true).Align(lipgloss.Center).Render(m.title)
	input := bg.Align(lipgloss.Center).Render(m.renderInput(max(24, innerWidth-6)))
	help := bg.Faint(true).Align(lipgloss.Center).Render(m.help)

	lines := []string{header, bg.Render(""), input, bg.Render(""), help}
	if m.err != "" {
		lines = append(lines, bg.Render(""), bg.Foreground(lipgloss.Color(ColorModalSelBg)).Render(m.err))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *PromptModel) renderInput(fieldWidth int) string {
	cursorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWhite)).
		Background(lipgloss.Color(ColorModalSelBg)).
		Bold(true)
	textStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWhite)).
		Background(lipgloss.Color(ColorDarkGrey))
	m.clampCursor()

	display := m.runes
	cursor := m.cursor
	if len(display) >= fieldWidth {
		// keep the cursor visible
		start := len(display) - fieldWidth + 1
		display = display[start:]
		cursor -= start
	}

	var b strings.Builder
	for i := 0; i < fieldWidth; i++ {
		ch := " "
		if i < len(display) {
			ch = string(display[i])
		}
		if i == cursor {
			b.WriteString(cursorStyle.Render(ch))
		} else {
			b.WriteString(textStyle.Render(ch))
		}
	}
	return b.String()
}
