package manifest

import (
	"errors"
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"

	"github.com/sttts/kmanage/pkg/workload"
)

// ParseError reports a manifest that is not a well-formed YAML mapping.
// It is raised before any request is sent.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed manifest: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError reports whether err is or wraps a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Validate parses doc into an object. Empty documents and documents whose top
// level is not a mapping are rejected.
func Validate(doc string) (*unstructured.Unstructured, error) {
	if strings.TrimSpace(doc) == "" {
		return nil, &ParseError{Err: errors.New("document is empty")}
	}
	var obj map[string]interface{}
	if err := yaml.Unmarshal([]byte(doc), &obj); err != nil {
		return nil, &ParseError{Err: err}
	}
	if obj == nil {
		return nil, &ParseError{Err: errors.New("document has no content")}
	}
	return &unstructured.Unstructured{Object: obj}, nil
}

// CheckConsistency verifies that a parsed manifest describes kind and that a
// deployment selector matches its pod template labels.
func CheckConsistency(u *unstructured.Unstructured, kind workload.Kind) error {
	gvk := kind.GroupVersionKind()
	if u.GetAPIVersion() != gvk.GroupVersion().String() || u.GetKind() != gvk.Kind {
		return fmt.Errorf("expected %s %s, got %s %s", gvk.GroupVersion(), gvk.Kind, u.GetAPIVersion(), u.GetKind())
	}
	if u.GetName() == "" {
		return errors.New("metadata.name is required")
	}
	if kind != workload.Deployment {
		return nil
	}

	selector, _, err := unstructured.NestedStringMap(u.Object, "spec", "selector", "matchLabels")
	if err != nil {
		return fmt.Errorf("spec.selector.matchLabels: %w", err)
	}
	labels, _, err := unstructured.NestedStringMap(u.Object, "spec", "template", "metadata", "labels")
	if err != nil {
		return fmt.Errorf("spec.template.metadata.labels: %w", err)
	}
	if len(selector) == 0 {
		return errors.New("spec.selector.matchLabels must not be empty")
	}
	for k, v := range selector {
		if labels[k] != v {
			return fmt.Errorf("selector %s=%s does not match template labels", k, v)
		}
	}
	return nil
}

// Sanitize removes server-populated fields so an exported object can be
// submitted again.
func Sanitize(u *unstructured.Unstructured) {
	unstructured.RemoveNestedField(u.Object, "status")
	for _, f := range []string{"managedFields", "uid", "resourceVersion", "generation", "creationTimestamp", "selfLink"} {
		unstructured.RemoveNestedField(u.Object, "metadata", f)
	}
}
