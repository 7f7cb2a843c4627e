package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
)

func TestThemeSelector(t *testing.T) {
	var applied, changed string
	var cancelled bool
	s := NewThemeSelector(func(name string) tea.Cmd { applied = name; return nil })
	s.SetOnChange(func(name string) tea.Cmd { changed = name; return nil })
	s.SetOnCancel(func() tea.Cmd { cancelled = true; return nil })

	if !s.SetSelectedByName("MONOKAI") {
		t.Fatalf("expected monokai to be offered")
	}
	if s.Selected() != "monokai" {
		t.Fatalf("selected=%q", s.Selected())
	}
	if s.SetSelectedByName("no-such-theme") {
		t.Fatalf("expected unknown theme to be rejected")
	}

	s.Update(pressKey(tea.KeyDown, "", 0))
	if changed == "" || changed != s.Selected() {
		t.Fatalf("expected onChange with %q, got %q", s.Selected(), changed)
	}
	s.Update(pressKey(tea.KeyEnter, "", 0))
	if applied != s.Selected() {
		t.Fatalf("applied=%q, want %q", applied, s.Selected())
	}
	s.Update(pressKey(tea.KeyEscape, "", 0))
	if !cancelled {
		t.Fatalf("expected onCancel")
	}

	// moving past the top does not report a change
	s.SetSelectedByName(s.names[0])
	changed = ""
	s.Update(pressKey(tea.KeyUp, "", 0))
	if changed != "" {
		t.Fatalf("unexpected change to %q", changed)
	}
}
