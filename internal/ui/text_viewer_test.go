package ui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
)

func TestTextViewerScrolling(t *testing.T) {
	var lines []string
	for i := range 20 {
		lines = append(lines, fmt.Sprintf("line %02d", i))
	}
	v := NewTextViewer("logs", strings.Join(lines, "\n"), "", DefaultTheme)
	v.SetDimensions(40, 7) // five body lines

	v.Update(pressKey(tea.KeyUp, "", 0))
	if v.offset != 0 {
		t.Fatalf("offset=%d, want 0", v.offset)
	}
	v.Update(pressKey(tea.KeyEnd, "", 0))
	if v.offset != 15 {
		t.Fatalf("offset=%d after end, want 15", v.offset)
	}
	v.Update(pressKey(tea.KeyDown, "", 0))
	if v.offset != 15 {
		t.Fatalf("offset=%d after scrolling past the end, want 15", v.offset)
	}
	v.Update(pressKey(tea.KeyPgUp, "", 0))
	if v.offset != 11 {
		t.Fatalf("offset=%d after page up, want 11", v.offset)
	}

	view := v.View()
	if !strings.Contains(view, "line 11") || strings.Contains(view, "line 10") {
		t.Fatalf("unexpected window:\n%s", view)
	}
	for _, ln := range strings.Split(view, "\n") {
		if w := ansi.StringWidth(ln); w > 40 {
			t.Fatalf("line wider than the viewer (%d): %q", w, ln)
		}
	}
}

func TestTextViewerHighlighting(t *testing.T) {
	doc := "apiVersion: v1\nkind: Pod\n"
	plain := NewTextViewer("logs", doc, "", DefaultTheme)
	if plain.lines[0] != "apiVersion: v1" {
		t.Fatalf("expected plain text to stay untouched, got %q", plain.lines[0])
	}

	v := NewTextViewer("pod", doc, "yaml", "monokai")
	if !strings.Contains(v.lines[0], "\x1b[") {
		t.Fatalf("expected highlighted yaml, got %q", v.lines[0])
	}
	if ansi.Strip(v.lines[0]) != "apiVersion: v1" {
		t.Fatalf("highlighting changed the text: %q", ansi.Strip(v.lines[0]))
	}
	before := v.lines[0]
	v.SetTheme("github")
	if v.Theme() != "github" || v.lines[0] == before {
		t.Fatalf("expected SetTheme to re-highlight")
	}
}

func TestTextViewerCallbacks(t *testing.T) {
	var edited, themed, closed bool
	v := NewTextViewer("pod", "kind: Pod", "yaml", DefaultTheme)
	v.SetOnEdit(func() tea.Cmd { edited = true; return nil })
	v.SetOnTheme(func() tea.Cmd { themed = true; return nil })
	v.SetOnClose(func() tea.Cmd { closed = true; return nil })

	v.Update(pressKey('e', "e", 0))
	v.Update(pressKey('t', "t", 0))
	v.Update(pressKey(tea.KeyEscape, "", 0))
	if !edited || !themed || !closed {
		t.Fatalf("edited=%v themed=%v closed=%v", edited, themed, closed)
	}

	// logs have no lexer and no theme
	themed = false
	logs := NewTextViewer("logs", "hello", "", DefaultTheme)
	logs.SetOnTheme(func() tea.Cmd { themed = true; return nil })
	logs.Update(pressKey('t', "t", 0))
	if themed {
		t.Fatalf("expected no theme selector for plain text")
	}
}
