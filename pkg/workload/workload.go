package workload

import (
	"fmt"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Kind identifies a workload resource type managed through manifests.
type Kind string

const (
	Pod        Kind = "pod"
	Deployment Kind = "deployment"
)

// Kinds lists all supported kinds in display order.
var Kinds = []Kind{Pod, Deployment}

// ParseKind accepts singular, plural and Kind spellings ("pod", "pods", "Pod").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pod", "pods", "po":
		return Pod, nil
	case "deployment", "deployments", "deploy":
		return Deployment, nil
	}
	return "", fmt.Errorf("unsupported kind %q", s)
}

// Plural returns the collection path segment, e.g. "pods".
func (k Kind) Plural() string { return string(k) + "s" }

// Title returns the API Kind, e.g. "Deployment".
func (k Kind) Title() string {
	switch k {
	case Pod:
		return "Pod"
	case Deployment:
		return "Deployment"
	}
	return string(k)
}

// GroupVersionKind returns the API type served for the kind.
func (k Kind) GroupVersionKind() schema.GroupVersionKind {
	switch k {
	case Pod:
		return corev1.SchemeGroupVersion.WithKind("Pod")
	case Deployment:
		return appsv1.SchemeGroupVersion.WithKind("Deployment")
	}
	return schema.GroupVersionKind{}
}

func (k Kind) String() string { return string(k) }

// Status is the advisory state reported by the backend.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusRunning   Status = "Running"
	StatusSucceeded Status = "Succeeded"
	StatusFailed    Status = "Failed"
	StatusUnknown   Status = "Unknown"
)

// Summary is the cached view of one resource.
type Summary struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
}

// Find returns the index of the summary with the given name, or -1.
func Find(items []Summary, name string) int {
	for i := range items {
		if items[i].Name == name {
			return i
		}
	}
	return -1
}
