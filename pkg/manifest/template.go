package manifest

import (
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/sttts/kmanage/pkg/workload"
)

// DefaultImage is used when no image is given.
const DefaultImage = "nginx"

// Generate renders the minimal manifest for kind. The name is used as the
// object name, the container name and, for deployments, as the "app" label
// on both the selector and the pod template. Output is byte-stable for equal
// inputs.
func Generate(kind workload.Kind, name, image string) (string, error) {
	if image == "" {
		image = DefaultImage
	}
	gvk := kind.GroupVersionKind()
	if gvk.Empty() {
		return "", fmt.Errorf("cannot generate manifest for kind %q", kind)
	}

	containers := []interface{}{
		map[string]interface{}{
			"name":  name,
			"image": image,
		},
	}

	obj := map[string]interface{}{
		"apiVersion": gvk.GroupVersion().String(),
		"kind":       gvk.Kind,
		"metadata": map[string]interface{}{
			"name": name,
		},
	}

	switch kind {
	case workload.Pod:
		obj["spec"] = map[string]interface{}{
			"containers": containers,
		}
	case workload.Deployment:
		labels := map[string]interface{}{"app": name}
		obj["spec"] = map[string]interface{}{
			"replicas": int64(1),
			"selector": map[string]interface{}{
				"matchLabels": labels,
			},
			"template": map[string]interface{}{
				"metadata": map[string]interface{}{
					"labels": map[string]interface{}{"app": name},
				},
				"spec": map[string]interface{}{
					"containers": containers,
				},
			},
		}
	}

	// map keys are emitted sorted, which keeps the output deterministic
	data, err := yaml.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("failed to render %s manifest: %w", kind, err)
	}
	return string(data), nil
}
