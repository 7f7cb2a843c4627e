package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
)

func typeText(m tea.Model, text string) {
	for _, r := range text {
		m.Update(pressKey(r, string(r), 0))
	}
}

func TestPromptSubmitsTrimmedValue(t *testing.T) {
	p := NewPromptModel()
	p.Reset(promptName, "Name", "", CheckName)
	typeText(p, " web-1 ")
	_, cmd := p.Update(pressKey(tea.KeyEnter, "", 0))
	if cmd == nil {
		t.Fatalf("expected a result command")
	}
	res, ok := cmd().(PromptResultMsg)
	if !ok {
		t.Fatalf("expected PromptResultMsg")
	}
	if !res.Confirm || res.Value != "web-1" || res.ID != promptName {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestPromptRejectsInvalidNames(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"upper case", "Web"},
		{"underscore", "web_1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPromptModel()
			p.Reset(promptName, "Name", "", CheckName)
			typeText(p, tt.input)
			if _, cmd := p.Update(pressKey(tea.KeyEnter, "", 0)); cmd != nil {
				t.Fatalf("expected no result for %q", tt.input)
			}
			if p.err == "" {
				t.Fatalf("expected an error text")
			}
			// typing clears the error
			typeText(p, "x")
			if p.err != "" {
				t.Fatalf("expected error to clear, got %q", p.err)
			}
		})
	}
}

func TestPromptEditing(t *testing.T) {
	p := NewPromptModel()
	p.Reset(promptDraft, "Query", "", CheckNonEmpty)
	typeText(p, "abd")
	p.Update(pressKey(tea.KeyLeft, "", 0))
	typeText(p, "c")
	p.Update(pressKey(tea.KeyEnd, "", 0))
	p.Update(pressKey(tea.KeyBackspace, "", 0))
	p.Update(pressKey(tea.KeyHome, "", 0))
	p.Update(pressKey(tea.KeyDelete, "", 0))
	if got := p.value(); got != "bc" {
		t.Fatalf("value=%q, want %q", got, "bc")
	}
	// modified runes are not inserted
	p.Update(pressKey('a', "a", tea.ModCtrl))
	if got := p.value(); got != "bc" {
		t.Fatalf("value=%q after ctrl+a, want %q", got, "bc")
	}
}

func TestPromptCancel(t *testing.T) {
	p := NewPromptModel()
	p.Reset(promptName, "Name", "", CheckName)
	typeText(p, "web")
	_, cmd := p.Update(pressKey(tea.KeyEscape, "", 0))
	if cmd == nil {
		t.Fatalf("expected a result command")
	}
	if res := cmd().(PromptResultMsg); res.Confirm {
		t.Fatalf("expected a cancelled result, got %+v", res)
	}
}
