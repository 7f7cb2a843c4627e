package kube

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/kubernetes"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	metricsv "k8s.io/metrics/pkg/client/clientset/versioned"
	"sigs.k8s.io/controller-runtime/pkg/client"
	crlog "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/yaml"

	"github.com/sttts/kmanage/internal/backend"
	"github.com/sttts/kmanage/pkg/handlers"
	"github.com/sttts/kmanage/pkg/manifest"
	"github.com/sttts/kmanage/pkg/workload"
)

const (
	// DefaultRecreateTimeout bounds the wait for a deleted pod to disappear
	// before its replacement is created.
	DefaultRecreateTimeout = 60 * time.Second

	defaultPollInterval = 500 * time.Millisecond
)

var _ backend.Backend = &Backend{}

// Backend serves resources straight from a cluster.
type Backend struct {
	client    client.Client
	clientset kubernetes.Interface
	metrics   metricsv.Interface
	handlers  *handlers.Registry

	clusterName     string
	recreateTimeout time.Duration
	pollInterval    time.Duration
	tailLines       int64
}

// Option configures a Backend.
type Option func(*Backend)

// WithRecreateTimeout bounds the delete phase of a pod update.
func WithRecreateTimeout(d time.Duration) Option {
	return func(b *Backend) {
		if d > 0 {
			b.recreateTimeout = d
		}
	}
}

// WithPollInterval sets how often deletion progress is checked.
func WithPollInterval(d time.Duration) Option {
	return func(b *Backend) {
		if d > 0 {
			b.pollInterval = d
		}
	}
}

// WithTailLines limits returned log lines. Zero returns everything.
func WithTailLines(n int64) Option {
	return func(b *Backend) { b.tailLines = n }
}

// WithClusterName records the cluster name reported by ClusterName.
func WithClusterName(name string) Option {
	return func(b *Backend) { b.clusterName = name }
}

// WithMetrics enables node usage figures.
func WithMetrics(m metricsv.Interface) Option {
	return func(b *Backend) { b.metrics = m }
}

// New wraps existing clients.
func New(c client.Client, cs kubernetes.Interface, opts ...Option) *Backend {
	b := &Backend{
		client:          c,
		clientset:       cs,
		handlers:        handlers.NewDefaultRegistry(),
		recreateTimeout: DefaultRecreateTimeout,
		pollInterval:    defaultPollInterval,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// NewScheme returns a scheme with the built-in API types.
func NewScheme() (*runtime.Scheme, error) {
	scheme := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		return nil, err
	}
	return scheme, nil
}

// NewForConfig builds the clients from a REST config. Node metrics are
// enabled when the metrics client can be built.
func NewForConfig(cfg *rest.Config, opts ...Option) (*Backend, error) {
	scheme, err := NewScheme()
	if err != nil {
		return nil, fmt.Errorf("failed to build scheme: %w", err)
	}
	c, err := client.New(cfg, client.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	cs, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}
	if m, err := metricsv.NewForConfig(cfg); err == nil {
		opts = append([]Option{WithMetrics(m)}, opts...)
	}
	return New(c, cs, opts...), nil
}

// Namespaces implements backend.Backend.
func (b *Backend) Namespaces(ctx context.Context) ([]string, error) {
	var list corev1.NamespaceList
	if err := b.client.List(ctx, &list); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(list.Items))
	for _, ns := range list.Items {
		names = append(names, ns.Name)
	}
	slices.Sort(names)
	return names, nil
}

// List implements backend.Backend.
func (b *Backend) List(ctx context.Context, kind workload.Kind, namespace string) ([]workload.Summary, error) {
	h, err := b.handler(kind)
	if err != nil {
		return nil, err
	}
	list := h.NewList()
	if err := b.client.List(ctx, list, client.InNamespace(namespace)); err != nil {
		return nil, err
	}
	items, err := h.Summaries(list)
	if err != nil {
		return nil, err
	}
	// stable order keeps value comparison of consecutive lists meaningful
	slices.SortFunc(items, func(x, y workload.Summary) int { return strings.Compare(x.Name, y.Name) })
	return items, nil
}

// Create implements backend.Backend. The manifest name wins over name,
// which is used when the manifest has none.
func (b *Backend) Create(ctx context.Context, kind workload.Kind, namespace, name string, doc []byte) error {
	obj, err := b.decode(kind, namespace, name, doc)
	if err != nil {
		return err
	}
	crlog.FromContext(ctx).V(1).Info("creating", "kind", kind, "namespace", namespace, "name", obj.GetName())
	return b.client.Create(ctx, obj)
}

// Update implements backend.Backend. Pods are deleted, awaited and created
// again because most of their spec is immutable. Deployments are updated in
// place on top of the live resourceVersion.
func (b *Backend) Update(ctx context.Context, kind workload.Kind, namespace, name string, doc []byte) error {
	obj, err := b.decode(kind, namespace, name, doc)
	if err != nil {
		return err
	}
	if kind == workload.Pod {
		return b.recreate(ctx, obj, name)
	}

	if obj.GetName() != name {
		return apierrors.NewBadRequest(fmt.Sprintf("manifest name %q does not match %q", obj.GetName(), name))
	}
	h, _ := b.handler(kind)
	live := h.NewObject()
	if err := b.client.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, live); err != nil {
		return err
	}
	obj.SetResourceVersion(live.GetResourceVersion())
	return b.client.Update(ctx, obj)
}

func (b *Backend) recreate(ctx context.Context, obj client.Object, name string) error {
	log := crlog.FromContext(ctx).WithValues("namespace", obj.GetNamespace(), "name", name)
	h, _ := b.handler(workload.Pod)

	old := h.NewObject()
	key := types.NamespacedName{Namespace: obj.GetNamespace(), Name: name}
	if err := b.client.Get(ctx, key, old); err != nil {
		return err
	}
	if err := b.client.Delete(ctx, old); err != nil && !apierrors.IsNotFound(err) {
		return err
	}

	log.V(1).Info("waiting for pod deletion before recreate")
	err := wait.PollUntilContextTimeout(ctx, b.pollInterval, b.recreateTimeout, true, func(ctx context.Context) (bool, error) {
		cur := h.NewObject()
		err := b.client.Get(ctx, key, cur)
		switch {
		case apierrors.IsNotFound(err):
			return true, nil
		case err != nil:
			return false, err
		}
		return cur.GetUID() != old.GetUID(), nil
	})
	if wait.Interrupted(err) {
		return apierrors.NewTimeoutError(fmt.Sprintf("pod %s/%s was not deleted in time", key.Namespace, key.Name), 0)
	} else if err != nil {
		return err
	}

	log.V(1).Info("recreating pod", "newName", obj.GetName())
	return b.client.Create(ctx, obj)
}

// Delete implements backend.Backend.
func (b *Backend) Delete(ctx context.Context, kind workload.Kind, namespace, name string) error {
	h, err := b.handler(kind)
	if err != nil {
		return err
	}
	obj := h.NewObject()
	obj.SetNamespace(namespace)
	obj.SetName(name)
	return b.client.Delete(ctx, obj, client.PropagationPolicy(metav1.DeletePropagationBackground))
}

// Logs implements backend.Backend.
func (b *Backend) Logs(ctx context.Context, namespace, name string) (string, error) {
	opts := &corev1.PodLogOptions{}
	if b.tailLines > 0 {
		opts.TailLines = &b.tailLines
	}
	data, err := b.clientset.CoreV1().Pods(namespace).GetLogs(name, opts).DoRaw(ctx)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Manifest implements backend.Backend. Server-populated fields are removed
// so the document can be submitted again.
func (b *Backend) Manifest(ctx context.Context, kind workload.Kind, namespace, name string) ([]byte, error) {
	h, err := b.handler(kind)
	if err != nil {
		return nil, err
	}
	obj := h.NewObject()
	if err := b.client.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, obj); err != nil {
		return nil, err
	}
	u, err := h.ToUnstructured(obj)
	if err != nil {
		return nil, err
	}
	manifest.Sanitize(u)
	return yaml.Marshal(u.Object)
}

func (b *Backend) handler(kind workload.Kind) (handlers.ResourceHandler, error) {
	h, err := b.handlers.Get(kind)
	if err != nil {
		return nil, apierrors.NewBadRequest(err.Error())
	}
	return h, nil
}

// decode parses doc strictly into the typed object of kind and binds it to
// namespace. Fields only the server may set are cleared.
func (b *Backend) decode(kind workload.Kind, namespace, name string, doc []byte) (client.Object, error) {
	h, err := b.handler(kind)
	if err != nil {
		return nil, err
	}
	obj := h.NewObject()
	if err := yaml.UnmarshalStrict(doc, obj); err != nil {
		return nil, apierrors.NewBadRequest(fmt.Sprintf("invalid %s manifest: %v", kind, err))
	}

	want := kind.GroupVersionKind()
	got := obj.GetObjectKind().GroupVersionKind()
	if (got.Kind != "" && got.Kind != want.Kind) || (got.Version != "" && got.GroupVersion() != want.GroupVersion()) {
		return nil, apierrors.NewBadRequest(fmt.Sprintf("manifest is %s, expected %s", got, want))
	}
	obj.GetObjectKind().SetGroupVersionKind(want)

	obj.SetNamespace(namespace)
	if obj.GetName() == "" {
		obj.SetName(name)
	}
	obj.SetResourceVersion("")
	obj.SetUID("")
	obj.SetGeneration(0)
	obj.SetCreationTimestamp(metav1.Time{})
	obj.SetManagedFields(nil)
	return obj, nil
}
