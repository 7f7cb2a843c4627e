package ui

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
)

// editorFinishedMsg carries the document after the external editor exited.
type editorFinishedMsg struct {
	doc string
	err error
}

// EditFunc opens doc for editing and eventually delivers an
// editorFinishedMsg. name is used as a hint for the temp file.
type EditFunc func(name, doc string) tea.Cmd

// annotationPrefix marks the comment lines put above a document that failed
// to submit. They are stripped when the editor returns.
const annotationPrefix = "# kmanage: "

// ExternalEditor edits documents in $VISUAL or $EDITOR, falling back to vi.
func ExternalEditor(name, doc string) tea.Cmd {
	f, err := os.CreateTemp("", "kmanage-"+name+"-*.yaml")
	if err != nil {
		return func() tea.Msg { return editorFinishedMsg{err: err} }
	}
	path := f.Name()
	if _, err := f.WriteString(doc); err != nil {
		f.Close()
		os.Remove(path)
		return func() tea.Msg { return editorFinishedMsg{err: err} }
	}
	f.Close()

	argv := editorCommand()
	cmd := exec.Command(argv[0], append(argv[1:], path)...)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		defer os.Remove(path)
		if err != nil {
			return editorFinishedMsg{err: fmt.Errorf("editor failed: %w", err)}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return editorFinishedMsg{err: err}
		}
		return editorFinishedMsg{doc: string(data)}
	})
}

// editorCommand splits $VISUAL or $EDITOR on whitespace, so "code --wait"
// works.
func editorCommand() []string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if argv := strings.Fields(os.Getenv(env)); len(argv) > 0 {
			return argv
		}
	}
	return []string{"vi"}
}

// annotate puts msg as comment lines above doc.
func annotate(doc, msg string) string {
	var b strings.Builder
	for _, ln := range strings.Split(strings.TrimSpace(msg), "\n") {
		b.WriteString(annotationPrefix + ln + "\n")
	}
	b.WriteString(annotationPrefix + "fix the document and save, or empty the file to cancel\n")
	b.WriteString(stripAnnotation(doc))
	return b.String()
}

// stripAnnotation removes the comment lines added by annotate.
func stripAnnotation(doc string) string {
	var b strings.Builder
	sc := bufio.NewScanner(strings.NewReader(doc))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	leading := true
	for sc.Scan() {
		ln := sc.Text()
		if leading && strings.HasPrefix(ln, annotationPrefix) {
			continue
		}
		leading = false
		b.WriteString(ln + "\n")
	}
	return b.String()
}
