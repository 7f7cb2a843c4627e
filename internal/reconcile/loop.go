package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/sttts/kmanage/internal/store"
	"github.com/sttts/kmanage/pkg/workload"
)

// DefaultInterval is the fixed refresh period.
const DefaultInterval = 10 * time.Second

// Lister fetches the authoritative summaries of one kind in a namespace.
type Lister interface {
	List(ctx context.Context, kind workload.Kind, namespace string) ([]workload.Summary, error)
}

// SyncError is a failed refresh of one collection. It is only logged.
type SyncError struct {
	Namespace string
	Kind      workload.Kind
	Err       error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("failed to refresh %s in namespace %q: %v", e.Kind.Plural(), e.Namespace, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// Loop refreshes the store for the selected namespace on a fixed interval.
type Loop struct {
	lister   Lister
	store    *store.Store
	kinds    []workload.Kind
	interval time.Duration
	clock    clock.WithTicker
	log      logr.Logger

	mu        sync.Mutex
	namespace string
	cancel    context.CancelFunc
	done      chan struct{}
	stopped   bool
}

// Option configures a Loop.
type Option func(*Loop)

// WithInterval sets the refresh period.
func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithKinds restricts the kinds refreshed on each tick.
func WithKinds(kinds ...workload.Kind) Option {
	return func(l *Loop) { l.kinds = kinds }
}

// WithClock replaces the wall clock, for tests.
func WithClock(c clock.WithTicker) Option {
	return func(l *Loop) { l.clock = c }
}

// WithLogger overrides the default logger.
func WithLogger(log logr.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// New creates a stopped loop. Call SetNamespace to start it.
func New(lister Lister, st *store.Store, opts ...Option) *Loop {
	l := &Loop{
		lister:   lister,
		store:    st,
		kinds:    workload.Kinds,
		interval: DefaultInterval,
		clock:    clock.RealClock{},
		log:      ctrl.Log.WithName("reconcile"),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Namespace returns the namespace currently refreshed, empty when idle.
func (l *Loop) Namespace() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.namespace
}

// SetNamespace cancels the running timer and, for a non-empty namespace,
// starts a new one that refreshes immediately and then every interval.
// Setting the current namespace again is a no-op. When SetNamespace returns
// the previous timer has fully stopped.
func (l *Loop) SetNamespace(ctx context.Context, namespace string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return
	}
	if namespace == l.namespace && (l.cancel != nil || namespace == "") {
		return
	}
	l.stopLocked()
	l.namespace = namespace
	if namespace == "" {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.cancel, l.done = cancel, done
	go l.run(ctx, namespace, done)
}

// Stop cancels the timer for good. Later SetNamespace calls are ignored.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
	l.namespace = ""
	l.stopped = true
}

func (l *Loop) stopLocked() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
	l.cancel, l.done = nil, nil
}

func (l *Loop) run(ctx context.Context, namespace string, done chan struct{}) {
	defer close(done)
	log := l.log.WithValues("namespace", namespace)
	ctx = logr.NewContext(ctx, log)

	ticker := l.clock.NewTicker(l.interval)
	defer ticker.Stop()

	log.V(1).Info("starting refresh", "interval", l.interval)
	l.tick(ctx, namespace)
	for {
		select {
		case <-ctx.Done():
			log.V(1).Info("stopping refresh")
			return
		case <-ticker.C():
			l.tick(ctx, namespace)
		}
	}
}

func (l *Loop) tick(ctx context.Context, namespace string) {
	if err := l.Sync(ctx, namespace); err != nil && ctx.Err() == nil {
		logr.FromContextOrDiscard(ctx).Error(err, "refresh failed, keeping cached state")
	}
}

// Sync fetches every kind once and replaces the cached lists that changed.
// A failed fetch leaves its cached list untouched and is returned as a
// SyncError. Results arriving after ctx is cancelled are dropped.
func (l *Loop) Sync(ctx context.Context, namespace string) error {
	var errs []error
	for _, kind := range l.kinds {
		items, err := l.lister.List(ctx, kind, namespace)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			errs = append(errs, &SyncError{Namespace: namespace, Kind: kind, Err: err})
			continue
		}
		if l.store.Replace(store.Key{Namespace: namespace, Kind: kind}, items) {
			l.log.V(1).Info("refreshed", "namespace", namespace, "kind", kind, "count", len(items))
		}
	}
	return errors.Join(errs...)
}
