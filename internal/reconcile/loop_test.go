package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/sttts/kmanage/internal/store"
	kmtesting "github.com/sttts/kmanage/internal/testing"
	"github.com/sttts/kmanage/pkg/workload"
)

func TestMain(m *testing.M) {
	kmtesting.SetupLogging()
	m.Run()
}

type fakeLister struct {
	mu    sync.Mutex
	items map[string][]workload.Summary
	err   error
	calls map[string]int
}

func newFakeLister() *fakeLister {
	return &fakeLister{items: map[string][]workload.Summary{}, calls: map[string]int{}}
}

func (f *fakeLister) List(_ context.Context, _ workload.Kind, namespace string) ([]workload.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[namespace]++
	if f.err != nil {
		return nil, f.err
	}
	return append([]workload.Summary(nil), f.items[namespace]...), nil
}

func (f *fakeLister) set(namespace string, items []workload.Summary, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[namespace] = items
	f.err = err
}

func (f *fakeLister) callCount(namespace string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[namespace]
}

type eventCounter struct {
	mu sync.Mutex
	n  int
}

func (c *eventCounter) inc(store.Event) { c.mu.Lock(); c.n++; c.mu.Unlock() }
func (c *eventCounter) get() int { c.mu.Lock(); defer c.mu.Unlock(); return c.n }

const (
	wait = 5 * time.Second
	poll = 5 * time.Millisecond
)

var ns1Pods = store.Key{Namespace: "ns1", Kind: workload.Pod}

func newLoop(t *testing.T, lister Lister, st *store.Store) (*Loop, *testingclock.FakeClock) {
	clk := testingclock.NewFakeClock(time.Now())
	return New(lister, st, WithClock(clk), WithKinds(workload.Pod), WithLogger(kmtesting.NewLogger(t))), clk
}

// tickAndWait steps the clock one interval and waits until the loop issued
// the fetch with the given ordinal. Because ticks are processed sequentially,
// seeing fetch n+1 proves that fetch n has been applied to the store.
func tickAndWait(t *testing.T, clk *testingclock.FakeClock, lister *fakeLister, namespace string, n int) {
	t.Helper()
	clk.Step(DefaultInterval)
	kmtesting.Eventually(t, wait, poll, func() bool { return lister.callCount(namespace) >= n }, "tick did not fetch")
}

func TestSetNamespaceRefreshesImmediately(t *testing.T) {
	lister := newFakeLister()
	lister.set("ns1", []workload.Summary{{Name: "web", Status: workload.StatusRunning}}, nil)
	st := store.New()
	loop, _ := newLoop(t, lister, st)
	defer loop.Stop()

	loop.SetNamespace(t.Context(), "ns1")
	kmtesting.Eventually(t, wait, poll, func() bool { return len(st.List(ns1Pods)) == 1 }, "store not populated")
	if loop.Namespace() != "ns1" {
		t.Fatalf("Namespace() = %q, want ns1", loop.Namespace())
	}
}

func TestTickReplacesOnlyOnChange(t *testing.T) {
	lister := newFakeLister()
	lister.set("ns1", []workload.Summary{{Name: "web", Status: workload.StatusPending}}, nil)
	st := store.New()
	events := &eventCounter{}
	st.Subscribe(events.inc)
	loop, clk := newLoop(t, lister, st)
	defer loop.Stop()

	loop.SetNamespace(t.Context(), "ns1")
	kmtesting.Eventually(t, wait, poll, func() bool { return events.get() == 1 }, "initial refresh not applied")

	// equal list: no event
	tickAndWait(t, clk, lister, "ns1", 2)
	tickAndWait(t, clk, lister, "ns1", 3)
	if got := events.get(); got != 1 {
		t.Fatalf("expected no events for unchanged lists, got %d", got)
	}

	lister.set("ns1", []workload.Summary{{Name: "web", Status: workload.StatusRunning}}, nil)
	tickAndWait(t, clk, lister, "ns1", 4)
	kmtesting.Eventually(t, wait, poll, func() bool { return events.get() == 2 }, "changed list not applied")
	want := []workload.Summary{{Name: "web", Status: workload.StatusRunning}}
	if diff := cmp.Diff(want, st.List(ns1Pods)); diff != "" {
		t.Fatalf("store mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchFailureKeepsCache(t *testing.T) {
	lister := newFakeLister()
	lister.set("ns1", []workload.Summary{{Name: "web", Status: workload.StatusRunning}}, nil)
	st := store.New()
	loop, clk := newLoop(t, lister, st)
	defer loop.Stop()

	loop.SetNamespace(t.Context(), "ns1")
	kmtesting.Eventually(t, wait, poll, func() bool { return len(st.List(ns1Pods)) == 1 }, "store not populated")

	lister.set("ns1", nil, errors.New("backend unavailable"))
	tickAndWait(t, clk, lister, "ns1", 2)
	tickAndWait(t, clk, lister, "ns1", 3)
	want := []workload.Summary{{Name: "web", Status: workload.StatusRunning}}
	if diff := cmp.Diff(want, st.List(ns1Pods)); diff != "" {
		t.Fatalf("store changed after failed fetch (-want +got):\n%s", diff)
	}

	// retried on the next tick without backoff
	lister.set("ns1", []workload.Summary{}, nil)
	tickAndWait(t, clk, lister, "ns1", 4)
	kmtesting.Eventually(t, wait, poll, func() bool { return len(st.List(ns1Pods)) == 0 }, "recovery not applied")
}

func TestNamespaceChangeRestartsTimer(t *testing.T) {
	lister := newFakeLister()
	st := store.New()
	loop, clk := newLoop(t, lister, st)
	defer loop.Stop()

	loop.SetNamespace(t.Context(), "ns1")
	kmtesting.Eventually(t, wait, poll, func() bool { return lister.callCount("ns1") == 1 }, "ns1 not fetched")

	loop.SetNamespace(t.Context(), "ns2")
	kmtesting.Eventually(t, wait, poll, func() bool { return lister.callCount("ns2") == 1 }, "ns2 not fetched")

	tickAndWait(t, clk, lister, "ns2", 2)
	tickAndWait(t, clk, lister, "ns2", 3)
	if got := lister.callCount("ns1"); got != 1 {
		t.Fatalf("old namespace still refreshed: %d fetches", got)
	}

	// same namespace does not restart
	loop.SetNamespace(t.Context(), "ns2")
	tickAndWait(t, clk, lister, "ns2", 4)
	if got := lister.callCount("ns2"); got != 4 {
		t.Fatalf("expected 4 fetches for ns2, got %d", got)
	}
}

func TestEmptyNamespaceIdles(t *testing.T) {
	lister := newFakeLister()
	st := store.New()
	loop, clk := newLoop(t, lister, st)
	defer loop.Stop()

	loop.SetNamespace(t.Context(), "ns1")
	kmtesting.Eventually(t, wait, poll, func() bool { return lister.callCount("ns1") == 1 }, "ns1 not fetched")
	loop.SetNamespace(t.Context(), "")
	clk.Step(DefaultInterval)
	kmtesting.Consistently(t, 50*time.Millisecond, poll, func() bool { return lister.callCount("ns1") == 1 }, "refreshed without namespace")
	if loop.Namespace() != "" {
		t.Fatalf("Namespace() = %q, want empty", loop.Namespace())
	}
}

func TestStopCancelsTimer(t *testing.T) {
	lister := newFakeLister()
	st := store.New()
	loop, clk := newLoop(t, lister, st)

	loop.SetNamespace(t.Context(), "ns1")
	kmtesting.Eventually(t, wait, poll, func() bool { return lister.callCount("ns1") == 1 }, "ns1 not fetched")
	loop.Stop()

	clk.Step(DefaultInterval)
	loop.SetNamespace(t.Context(), "ns2")
	kmtesting.Consistently(t, 50*time.Millisecond, poll, func() bool {
		return lister.callCount("ns1") == 1 && lister.callCount("ns2") == 0
	}, "refreshed after Stop")
}

func TestSyncReportsErrors(t *testing.T) {
	lister := newFakeLister()
	lister.set("ns1", nil, errors.New("boom"))
	st := store.New()
	loop := New(lister, st)

	err := loop.Sync(t.Context(), "ns1")
	var syncErr *SyncError
	if !errors.As(err, &syncErr) {
		t.Fatalf("expected SyncError, got %v", err)
	}
	if syncErr.Namespace != "ns1" {
		t.Fatalf("unexpected error details: %+v", syncErr)
	}
	for _, kind := range workload.Kinds {
		if st.Has(store.Key{Namespace: "ns1", Kind: kind}) {
			t.Fatalf("store populated for %s after failure", kind)
		}
	}
}

func TestSyncDropsResultsAfterCancel(t *testing.T) {
	lister := newFakeLister()
	lister.set("ns1", []workload.Summary{{Name: "web"}}, nil)
	st := store.New()
	loop := New(lister, st)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if err := loop.Sync(ctx, "ns1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if st.Has(ns1Pods) {
		t.Fatal("store written after cancellation")
	}
}
