package ui

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAnnotateRoundTrip(t *testing.T) {
	doc := "apiVersion: v1\nkind: Pod\n# keep me\nmetadata:\n  name: web\n"
	annotated := annotate(doc, "create of pod \"web\" failed:\nquota exceeded")
	if !strings.HasPrefix(annotated, annotationPrefix+"create of pod") {
		t.Fatalf("expected the error on top, got:\n%s", annotated)
	}
	if !strings.Contains(annotated, annotationPrefix+"quota exceeded\n") {
		t.Fatalf("expected every error line to be commented, got:\n%s", annotated)
	}
	if diff := cmp.Diff(doc, stripAnnotation(annotated)); diff != "" {
		t.Fatalf("stripAnnotation mismatch (-want +got):\n%s", diff)
	}
	// annotating twice replaces the old message
	again := annotate(annotated, "second")
	if strings.Contains(again, "quota exceeded") {
		t.Fatalf("expected the previous annotation to be dropped, got:\n%s", again)
	}
}

func TestEditorCommand(t *testing.T) {
	tests := []struct {
		name         string
		visual, edit string
		want         []string
	}{
		{"fallback", "", "", []string{"vi"}},
		{"editor", "", "nano", []string{"nano"}},
		{"visual wins", "code --wait", "nano", []string{"code", "--wait"}},
		{"blank visual", "  ", "emacs -nw", []string{"emacs", "-nw"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("VISUAL", tt.visual)
			t.Setenv("EDITOR", tt.edit)
			if diff := cmp.Diff(tt.want, editorCommand()); diff != "" {
				t.Fatalf("editorCommand mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
