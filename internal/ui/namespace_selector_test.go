package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
)

func selectedNamespace(t *testing.T, s *NamespaceSelector) NamespaceSelectedMsg {
	t.Helper()
	_, cmd := s.Update(pressKey(tea.KeyEnter, "", 0))
	if cmd == nil {
		t.Fatalf("expected a selection")
	}
	return cmd().(NamespaceSelectedMsg)
}

func TestNamespaceSelector(t *testing.T) {
	s := NewNamespaceSelector()
	s.SetDimensions(40, 10)
	s.SetNamespaces([]string{"default", "kube-system", "team-a", "team-b"}, "team-a")

	if got := selectedNamespace(t, s); got.Namespace != "team-a" || !got.Confirm {
		t.Fatalf("expected the current namespace to be preselected, got %+v", got)
	}

	s.Update(pressKey(tea.KeyDown, "", 0))
	if got := selectedNamespace(t, s); got.Namespace != "team-b" {
		t.Fatalf("got %q, want team-b", got.Namespace)
	}

	typeText(s, "kube")
	if got := selectedNamespace(t, s); got.Namespace != "kube-system" {
		t.Fatalf("got %q after filtering, want kube-system", got.Namespace)
	}

	typeText(s, "zzz")
	if _, cmd := s.Update(pressKey(tea.KeyEnter, "", 0)); cmd != nil {
		t.Fatalf("expected no selection from an empty list")
	}
	for range 3 {
		s.Update(pressKey(tea.KeyBackspace, "", 0))
	}
	if len(s.filtered) != 1 {
		t.Fatalf("expected backspace to widen the filter, got %v", s.filtered)
	}

	_, cmd := s.Update(pressKey(tea.KeyEscape, "", 0))
	if got := cmd().(NamespaceSelectedMsg); got.Confirm {
		t.Fatalf("expected esc to cancel")
	}
}
