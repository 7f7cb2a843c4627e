package handlers

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/sttts/kmanage/pkg/workload"
)

// ResourceHandler adapts one workload kind to the typed Kubernetes API.
type ResourceHandler interface {
	// Kind returns the workload kind this handler serves.
	Kind() workload.Kind

	// NewObject returns an empty typed object of the kind.
	NewObject() client.Object

	// NewList returns an empty typed list of the kind.
	NewList() client.ObjectList

	// Summaries converts a list filled by the client into summaries, in list order.
	Summaries(list client.ObjectList) ([]workload.Summary, error)

	// GetStatus returns the advisory status of a single object.
	GetStatus(obj client.Object) workload.Status

	// ToUnstructured converts a typed object into a manifest-ready object.
	ToUnstructured(obj client.Object) (*unstructured.Unstructured, error)
}

// BaseHandler provides the conversions shared by all kinds.
type BaseHandler struct {
	kind workload.Kind
}

// NewBaseHandler creates a new base handler for kind
func NewBaseHandler(kind workload.Kind) *BaseHandler {
	return &BaseHandler{kind: kind}
}

// Summarize builds summaries for objs using status.
func (h *BaseHandler) Summarize(objs []client.Object, status func(client.Object) workload.Status) []workload.Summary {
	out := make([]workload.Summary, 0, len(objs))
	for _, obj := range objs {
		out = append(out, workload.Summary{Name: obj.GetName(), Status: status(obj)})
	}
	return out
}

// ToUnstructured converts a typed object into a manifest-ready object with
// apiVersion and kind set. Typed reads through the client leave TypeMeta empty.
func (h *BaseHandler) ToUnstructured(obj client.Object) (*unstructured.Unstructured, error) {
	m, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s %q: %w", h.kind, obj.GetName(), err)
	}
	u := &unstructured.Unstructured{Object: m}
	u.SetGroupVersionKind(h.kind.GroupVersionKind())
	return u, nil
}
