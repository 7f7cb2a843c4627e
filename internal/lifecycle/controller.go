package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/sttts/kmanage/internal/assistant"
	"github.com/sttts/kmanage/internal/backend"
	"github.com/sttts/kmanage/internal/reconcile"
	"github.com/sttts/kmanage/internal/store"
	"github.com/sttts/kmanage/pkg/manifest"
	"github.com/sttts/kmanage/pkg/workload"
)

// Controller sequences create, update, delete and the two read operations
// against the backend and applies their effects to the store. Operations are
// independent and may run concurrently. Exactly one session is open at a time.
type Controller struct {
	backend      backend.Backend
	store        *store.Store
	notifier     Notifier
	drafter      assistant.Drafter
	observer     func(Transition)
	defaultImage string
	log          logr.Logger

	nextID atomic.Uint64

	mu      sync.Mutex
	session *Session
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets where outcomes are reported.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithDrafter enables Draft.
func WithDrafter(d assistant.Drafter) Option {
	return func(c *Controller) { c.drafter = d }
}

// WithObserver is called on every state transition.
func WithObserver(fn func(Transition)) Option {
	return func(c *Controller) { c.observer = fn }
}

// WithDefaultImage sets the image used in generated manifests.
func WithDefaultImage(image string) Option {
	return func(c *Controller) {
		if image != "" {
			c.defaultImage = image
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(log logr.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// New returns a controller without an open session.
func New(b backend.Backend, st *store.Store, opts ...Option) *Controller {
	c := &Controller{
		backend:      b,
		store:        st,
		notifier:     NotifierFunc(func(Outcome) {}),
		defaultImage: manifest.DefaultImage,
		log:          ctrl.Log.WithName("lifecycle"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Active returns the open session, nil when none is open.
func (c *Controller) Active() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Mode returns the mode of the open session.
func (c *Controller) Mode() Mode {
	if s := c.Active(); s != nil {
		return s.Mode()
	}
	return ModeNone
}

// OpenCreate opens a create session for kind in namespace. Its document is
// the template for an empty name until SetName is called.
func (c *Controller) OpenCreate(kind workload.Kind, namespace string) (*Session, error) {
	if kind.GroupVersionKind().Empty() {
		return nil, fmt.Errorf("unsupported kind %q", kind)
	}
	s := &Session{mode: ModeCreate, kind: kind, namespace: namespace, image: c.defaultImage}
	s.regenerateLocked()
	c.open(s)
	return s, nil
}

// Close closes the open session. Log text held by it is dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	s := c.session
	c.session = nil
	c.mu.Unlock()
	if s != nil {
		s.close()
	}
}

func (c *Controller) open(s *Session) {
	c.mu.Lock()
	prev := c.session
	c.session = s
	c.mu.Unlock()
	if prev != nil {
		prev.close()
	}
}

// closeIf closes s if it is still the open session.
func (c *Controller) closeIf(s *Session) {
	c.mu.Lock()
	if c.session != s {
		c.mu.Unlock()
		return
	}
	c.session = nil
	c.mu.Unlock()
	s.close()
}

func (c *Controller) requireSession(mode Mode) (*Session, error) {
	s := c.Active()
	if s == nil || s.Mode() != mode {
		return nil, fmt.Errorf("%w: a %s session must be open", ErrNoSession, mode)
	}
	return s, nil
}

func (c *Controller) begin(verb Verb, kind workload.Kind, namespace, name string) *operation {
	return &operation{c: c, id: c.nextID.Add(1), verb: verb, kind: kind, namespace: namespace, name: name, state: Idle}
}

func (c *Controller) fail(op *operation, err error) error {
	op.to(Failed, err)
	c.log.Error(err, "operation failed", "verb", op.verb, "kind", op.kind, "namespace", op.namespace, "name", op.name)
	c.notifier.Notify(Outcome{Verb: op.verb, Kind: op.kind, Namespace: op.namespace, Name: op.name, Err: err})
	return err
}

func (c *Controller) succeed(op *operation, notify bool) {
	op.to(Succeeded, nil)
	c.log.Info("operation succeeded", "verb", op.verb, "kind", op.kind, "namespace", op.namespace, "name", op.name)
	if notify {
		c.notifier.Notify(Outcome{Verb: op.verb, Kind: op.kind, Namespace: op.namespace, Name: op.name})
	}
}

func (c *Controller) requestError(op *operation, err error) error {
	return &RequestError{Verb: op.verb, Kind: op.kind, Namespace: op.namespace, Name: op.name, Err: err}
}

// validate runs the local manifest check. It never sends a request.
func (c *Controller) validate(op *operation, doc string) error {
	op.to(Validating, nil)
	if _, err := manifest.Validate(doc); err != nil {
		return c.fail(op, err)
	}
	return nil
}

// Submit dispatches the open create or edit session.
func (c *Controller) Submit(ctx context.Context) error {
	s := c.Active()
	if s == nil {
		return fmt.Errorf("%w: nothing to submit", ErrNoSession)
	}
	switch s.Mode() {
	case ModeCreate:
		return c.Create(ctx, s.Kind(), s.Namespace(), s.Name(), s.Document())
	case ModeEdit:
		return c.Update(ctx, s.Kind(), s.Namespace(), s.Name(), s.Document())
	}
	return fmt.Errorf("%w: %s session cannot be submitted", ErrNoSession, s.Mode())
}

// Create validates doc, submits it and inserts a Pending entry for name into
// the store. On success the create session is closed. A create session must
// be open.
func (c *Controller) Create(ctx context.Context, kind workload.Kind, namespace, name, doc string) error {
	s, err := c.requireSession(ModeCreate)
	if err != nil {
		return err
	}
	op := c.begin(VerbCreate, kind, namespace, name)
	if err := c.validate(op, doc); err != nil {
		return err
	}

	op.to(InFlight, nil)
	if err := c.backend.Create(ctx, kind, namespace, name, []byte(doc)); err != nil {
		return c.fail(op, c.requestError(op, err))
	}

	c.store.Insert(store.Key{Namespace: namespace, Kind: kind}, workload.Summary{Name: name, Status: workload.StatusPending})
	c.closeIf(s)
	c.succeed(op, true)
	return nil
}

// Update validates doc, submits it and then refetches the list of kind in
// namespace before the edit session is closed, since the backend may have
// replaced the resource. An edit session must be open.
func (c *Controller) Update(ctx context.Context, kind workload.Kind, namespace, name, doc string) error {
	s, err := c.requireSession(ModeEdit)
	if err != nil {
		return err
	}
	op := c.begin(VerbUpdate, kind, namespace, name)
	if err := c.validate(op, doc); err != nil {
		return err
	}

	op.to(InFlight, nil)
	if err := c.backend.Update(ctx, kind, namespace, name, []byte(doc)); err != nil {
		return c.fail(op, c.requestError(op, err))
	}

	items, err := c.backend.List(ctx, kind, namespace)
	if err != nil {
		// the update went through, the next tick repairs the list
		c.log.Error(&reconcile.SyncError{Namespace: namespace, Kind: kind, Err: err}, "refetch after update failed")
	} else {
		c.store.Replace(store.Key{Namespace: namespace, Kind: kind}, items)
	}

	c.closeIf(s)
	c.succeed(op, true)
	return nil
}

// Delete removes the resource and drops it from the store. On failure the
// store keeps the entry. A delete session replaces the open session for the
// duration of the request.
func (c *Controller) Delete(ctx context.Context, kind workload.Kind, namespace, name string) error {
	op := c.begin(VerbDelete, kind, namespace, name)
	s := &Session{mode: ModeDelete, kind: kind, namespace: namespace, name: name}
	c.open(s)
	defer c.closeIf(s)
	op.to(InFlight, nil)
	if err := c.backend.Delete(ctx, kind, namespace, name); err != nil {
		return c.fail(op, c.requestError(op, err))
	}
	c.store.Remove(store.Key{Namespace: namespace, Kind: kind}, name)
	c.succeed(op, true)
	return nil
}

// FetchLogs fetches the logs of a pod and opens a logs session holding them.
// A later FetchLogs replaces the text; closing the session drops it.
func (c *Controller) FetchLogs(ctx context.Context, namespace, name string) (string, error) {
	op := c.begin(VerbLogs, workload.Pod, namespace, name)
	s := &Session{mode: ModeLogs, kind: workload.Pod, namespace: namespace, name: name}
	c.open(s)
	op.to(InFlight, nil)
	logs, err := c.backend.Logs(ctx, namespace, name)
	if err != nil {
		c.closeIf(s)
		return "", c.fail(op, c.requestError(op, err))
	}
	s.load("", logs)
	c.succeed(op, false)
	return logs, nil
}

// FetchManifest fetches the manifest of a resource and opens an edit session
// seeded with it. When the backend returns no usable document, the session
// starts from the generated template instead.
func (c *Controller) FetchManifest(ctx context.Context, kind workload.Kind, namespace, name string) (*Session, error) {
	op := c.begin(VerbManifest, kind, namespace, name)
	if kind.GroupVersionKind().Empty() {
		return nil, c.fail(op, fmt.Errorf("unsupported kind %q", kind))
	}
	s := &Session{mode: ModeEdit, kind: kind, namespace: namespace, name: name, image: c.defaultImage}
	c.open(s)
	op.to(InFlight, nil)
	data, err := c.backend.Manifest(ctx, kind, namespace, name)
	if err != nil {
		c.closeIf(s)
		return nil, c.fail(op, c.requestError(op, err))
	}

	doc := string(data)
	if u, err := manifest.Validate(doc); err != nil || u.GetKind() == "" {
		c.log.V(1).Info("backend returned no usable manifest, using template", "kind", kind, "namespace", namespace, "name", name)
		doc, _ = manifest.Generate(kind, name, c.defaultImage)
	}

	s.load(doc, "")
	c.succeed(op, false)
	return s, nil
}

// Draft asks the assistant for a manifest and puts it into the open create or
// edit session as a manual edit.
func (c *Controller) Draft(ctx context.Context, query string) error {
	if c.drafter == nil {
		return fmt.Errorf("no assistant configured")
	}
	if strings.TrimSpace(query) == "" {
		return assistant.ErrEmptyQuery
	}
	s := c.Active()
	if s == nil || (s.Mode() != ModeCreate && s.Mode() != ModeEdit) {
		return fmt.Errorf("%w: drafting requires a create or edit session", ErrNoSession)
	}
	doc, err := c.drafter.Draft(ctx, s.Kind(), query)
	if err != nil {
		return fmt.Errorf("assistant failed: %w", err)
	}
	s.SetDocument(doc)
	return nil
}
