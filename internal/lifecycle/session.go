package lifecycle

import (
	"sync"

	"github.com/sttts/kmanage/pkg/manifest"
	"github.com/sttts/kmanage/pkg/workload"
)

// Mode is what the open session is for.
type Mode int

const (
	ModeNone Mode = iota
	ModeCreate
	ModeEdit
	ModeLogs
	// ModeDelete is held only while a Delete is in flight.
	ModeDelete
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	case ModeLogs:
		return "logs"
	case ModeDelete:
		return "delete"
	}
	return "none"
}

// Session is the state of the one open dialog: its mode, the targeted
// resource and the manifest or log text shown in it.
//
// Create sessions regenerate the manifest from name and image whenever one of
// them changes, discarding manual edits. Edit sessions hold the fetched
// manifest and never regenerate.
type Session struct {
	mu        sync.Mutex
	mode      Mode
	kind      workload.Kind
	namespace string
	name      string
	image     string
	document  string
	logs      string
	closed    bool
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ModeNone
	}
	return s.mode
}

func (s *Session) Kind() workload.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind
}

func (s *Session) Namespace() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.namespace
}

func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Document returns the manifest being edited.
func (s *Session) Document() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document
}

// Logs returns the log text of a logs session. It is empty once closed.
func (s *Session) Logs() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logs
}

// Frozen reports whether the document is exempt from regeneration.
func (s *Session) Frozen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode != ModeCreate
}

// SetName changes the target name. In create sessions the document is
// regenerated.
func (s *Session) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.name == name {
		return
	}
	s.name = name
	s.regenerateLocked()
}

// SetImage changes the container image. In create sessions the document is
// regenerated.
func (s *Session) SetImage(image string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.image == image {
		return
	}
	s.image = image
	s.regenerateLocked()
}

// SetDocument replaces the document with manual edits.
func (s *Session) SetDocument(doc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.document = doc
}

func (s *Session) regenerateLocked() {
	if s.mode != ModeCreate {
		return
	}
	// the kind was validated when the session opened
	doc, err := manifest.Generate(s.kind, s.name, s.image)
	if err == nil {
		s.document = doc
	}
}

// load fills in the fetched text. Logs of a session closed meanwhile are
// dropped.
func (s *Session) load(document, logs string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.document = document
	if !s.closed {
		s.logs = logs
	}
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.logs = ""
}
