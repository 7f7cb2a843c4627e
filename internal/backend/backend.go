package backend

import (
	"context"

	"github.com/sttts/kmanage/pkg/workload"
)

// Backend is the resource API the lifecycle controller and the gateway talk
// to. The REST client and the direct cluster backend both implement it.
//
// Errors carry Kubernetes API status where available, so callers classify
// them with k8s.io/apimachinery/pkg/api/errors.
type Backend interface {
	// Namespaces lists the selectable namespaces.
	Namespaces(ctx context.Context) ([]string, error)
	// List returns the summaries of kind in namespace.
	List(ctx context.Context, kind workload.Kind, namespace string) ([]workload.Summary, error)
	// Create submits manifest as a new resource.
	Create(ctx context.Context, kind workload.Kind, namespace, name string, manifest []byte) error
	// Update replaces the resource called name with manifest. Pods are
	// deleted and recreated.
	Update(ctx context.Context, kind workload.Kind, namespace, name string, manifest []byte) error
	// Delete removes the resource.
	Delete(ctx context.Context, kind workload.Kind, namespace, name string) error
	// Logs returns the current logs of a pod.
	Logs(ctx context.Context, namespace, name string) (string, error)
	// Manifest returns the resource as a YAML document. It may be empty.
	Manifest(ctx context.Context, kind workload.Kind, namespace, name string) ([]byte, error)
}

// ClusterNamer is implemented by backends that know which cluster they talk
// to.
type ClusterNamer interface {
	ClusterName(ctx context.Context) (string, error)
}

// ContentTypeYAML is used for manifest bodies.
const ContentTypeYAML = "application/x-yaml"
