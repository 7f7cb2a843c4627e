package store

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sttts/kmanage/pkg/workload"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) get() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

var pods = Key{Namespace: "ns1", Kind: workload.Pod}

func TestReplaceSuppressesEqualLists(t *testing.T) {
	s := New()
	rec := &recorder{}
	s.Subscribe(rec.record)

	items := []workload.Summary{{Name: "web", Status: workload.StatusRunning}}
	if !s.Replace(pods, items) {
		t.Fatal("first Replace should report a change")
	}
	if s.Replace(pods, []workload.Summary{{Name: "web", Status: workload.StatusRunning}}) {
		t.Fatal("Replace with an equal list should report no change")
	}
	if got := len(rec.get()); got != 1 {
		t.Fatalf("expected 1 event, got %d", got)
	}

	if !s.Replace(pods, []workload.Summary{{Name: "web", Status: workload.StatusFailed}}) {
		t.Fatal("Replace with a different status should report a change")
	}
	want := []workload.Summary{{Name: "web", Status: workload.StatusFailed}}
	if diff := cmp.Diff(want, s.List(pods)); diff != "" {
		t.Fatalf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestReplaceEmptyPopulatesKey(t *testing.T) {
	s := New()
	if s.Has(pods) {
		t.Fatal("unexpected key before replace")
	}
	if !s.Replace(pods, nil) {
		t.Fatal("initial empty Replace should report a change")
	}
	if !s.Has(pods) {
		t.Fatal("key should exist after replace")
	}
	if s.Replace(pods, []workload.Summary{}) {
		t.Fatal("second empty Replace should report no change")
	}
}

func TestReplaceIsOrderSensitive(t *testing.T) {
	s := New()
	s.Replace(pods, []workload.Summary{{Name: "a"}, {Name: "b"}})
	if !s.Replace(pods, []workload.Summary{{Name: "b"}, {Name: "a"}}) {
		t.Fatal("reordered list should replace the cache")
	}
}

func TestInsertAndRemove(t *testing.T) {
	s := New()
	rec := &recorder{}
	cancel := s.Subscribe(rec.record)
	defer cancel()

	if !s.Insert(pods, workload.Summary{Name: "web", Status: workload.StatusPending}) {
		t.Fatal("Insert should succeed")
	}
	if s.Insert(pods, workload.Summary{Name: "web", Status: workload.StatusRunning}) {
		t.Fatal("duplicate Insert should be skipped")
	}
	want := []workload.Summary{{Name: "web", Status: workload.StatusPending}}
	if diff := cmp.Diff(want, s.List(pods)); diff != "" {
		t.Fatalf("List() mismatch (-want +got):\n%s", diff)
	}

	if s.Remove(pods, "missing") {
		t.Fatal("Remove of unknown name should report false")
	}
	if !s.Remove(pods, "web") {
		t.Fatal("Remove should succeed")
	}
	if got := s.List(pods); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}

	wantEvents := []Event{
		{Type: Inserted, Key: pods, Name: "web"},
		{Type: Removed, Key: pods, Name: "web"},
	}
	if diff := cmp.Diff(wantEvents, rec.get()); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestKeysAreIsolated(t *testing.T) {
	s := New()
	deployments := Key{Namespace: "ns1", Kind: workload.Deployment}
	other := Key{Namespace: "ns2", Kind: workload.Pod}

	s.Replace(pods, []workload.Summary{{Name: "a"}})
	s.Insert(deployments, workload.Summary{Name: "a", Status: workload.StatusPending})
	s.Remove(other, "a")

	if got := s.List(pods); len(got) != 1 {
		t.Fatalf("pods list changed: %v", got)
	}
	if got := s.List(deployments); len(got) != 1 {
		t.Fatalf("deployments list = %v", got)
	}
}

func TestListReturnsCopy(t *testing.T) {
	s := New()
	s.Replace(pods, []workload.Summary{{Name: "a", Status: workload.StatusRunning}})
	got := s.List(pods)
	got[0].Status = workload.StatusFailed
	if s.List(pods)[0].Status != workload.StatusRunning {
		t.Fatal("mutating the returned slice changed the store")
	}
}

func TestUnsubscribe(t *testing.T) {
	s := New()
	rec := &recorder{}
	cancel := s.Subscribe(rec.record)
	cancel()
	s.Replace(pods, []workload.Summary{{Name: "a"}})
	if got := len(rec.get()); got != 0 {
		t.Fatalf("expected no events after unsubscribe, got %d", got)
	}
}

func TestConcurrentMutations(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); s.Insert(pods, workload.Summary{Name: "web"}) }()
		go func() { defer wg.Done(); s.Remove(pods, "web") }()
		go func() { defer wg.Done(); s.Replace(pods, []workload.Summary{{Name: "db"}}) }()
	}
	wg.Wait()
	for _, item := range s.List(pods) {
		if item.Name != "web" && item.Name != "db" {
			t.Fatalf("unexpected item %v", item)
		}
	}
}
