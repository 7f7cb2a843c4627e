package store

import (
	"slices"
	"sync"

	"github.com/go-logr/logr"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/sttts/kmanage/pkg/workload"
)

// Key identifies one cached collection.
type Key struct {
	Namespace string
	Kind      workload.Kind
}

// EventType tells subscribers how a collection changed.
type EventType string

const (
	Replaced EventType = "Replaced"
	Inserted EventType = "Inserted"
	Removed  EventType = "Removed"
)

// Event is delivered to subscribers after every mutation.
type Event struct {
	Type EventType
	Key  Key
	// Name is set for Inserted and Removed.
	Name string
}

// Store caches resource summaries per namespace and kind. A fetched list
// replaces the cached one as a whole. Optimistic inserts and removals patch
// it until the next replace.
type Store struct {
	log logr.Logger

	mu    sync.RWMutex
	items map[Key][]workload.Summary

	subsMu sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger overrides the default logger.
func WithLogger(log logr.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		log:   ctrl.Log.WithName("store"),
		items: map[Key][]workload.Summary{},
		subs:  map[int]func(Event){},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// List returns a copy of the cached summaries for key, nil when nothing is cached.
func (s *Store) List(key Key) []workload.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items[key])
}

// Has reports whether key has ever been populated.
func (s *Store) Has(key Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[key]
	return ok
}

// Replace sets the cached list for key to items. When items equals the cached
// list nothing is changed, no event is sent and false is returned.
func (s *Store) Replace(key Key, items []workload.Summary) bool {
	s.mu.Lock()
	cur, ok := s.items[key]
	if ok && slices.Equal(cur, items) {
		s.mu.Unlock()
		return false
	}
	if items == nil {
		items = []workload.Summary{}
	}
	s.items[key] = slices.Clone(items)
	s.mu.Unlock()

	s.publish(Event{Type: Replaced, Key: key})
	return true
}

// Insert appends summary to the list for key. An entry with the same name is
// left in place and the insert is skipped.
func (s *Store) Insert(key Key, summary workload.Summary) bool {
	s.mu.Lock()
	cur := s.items[key]
	if workload.Find(cur, summary.Name) >= 0 {
		s.mu.Unlock()
		s.log.V(1).Info("skipping insert of existing resource", "namespace", key.Namespace, "kind", key.Kind, "name", summary.Name)
		return false
	}
	next := make([]workload.Summary, 0, len(cur)+1)
	next = append(next, cur...)
	s.items[key] = append(next, summary)
	s.mu.Unlock()

	s.publish(Event{Type: Inserted, Key: key, Name: summary.Name})
	return true
}

// Remove drops the entry called name from key. It reports whether an entry
// was removed.
func (s *Store) Remove(key Key, name string) bool {
	s.mu.Lock()
	cur := s.items[key]
	i := workload.Find(cur, name)
	if i < 0 {
		s.mu.Unlock()
		s.log.V(1).Info("skipping removal of unknown resource", "namespace", key.Namespace, "kind", key.Kind, "name", name)
		return false
	}
	s.items[key] = slices.Delete(slices.Clone(cur), i, i+1)
	s.mu.Unlock()

	s.publish(Event{Type: Removed, Key: key, Name: name})
	return true
}

// Subscribe registers fn for mutation events. fn runs on the mutating
// goroutine after the store lock is released. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(Event)) (cancel func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) publish(ev Event) {
	s.subsMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
