package kube

import (
	"context"
	"slices"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	crlog "sigs.k8s.io/controller-runtime/pkg/log"
)

// NodeInfo is the capacity and, when metrics are served, usage of a node.
type NodeInfo struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	CPU         string `json:"cpu"`
	Memory      string `json:"memory"`
	CPUUsage    string `json:"cpuUsage,omitempty"`
	MemoryUsage string `json:"memoryUsage,omitempty"`
}

// ClusterName implements backend.ClusterNamer. It returns the name
// configured with WithClusterName.
func (b *Backend) ClusterName(context.Context) (string, error) { return b.clusterName, nil }

// Nodes lists the cluster nodes. Missing node metrics are not an error.
func (b *Backend) Nodes(ctx context.Context) ([]NodeInfo, error) {
	var nodes corev1.NodeList
	if err := b.client.List(ctx, &nodes); err != nil {
		return nil, err
	}

	usage := map[string]corev1.ResourceList{}
	if b.metrics != nil {
		list, err := b.metrics.MetricsV1beta1().NodeMetricses().List(ctx, metav1.ListOptions{})
		if err != nil {
			crlog.FromContext(ctx).V(1).Info("node metrics unavailable", "err", err)
		} else {
			for _, m := range list.Items {
				usage[m.Name] = m.Usage
			}
		}
	}

	out := make([]NodeInfo, 0, len(nodes.Items))
	for _, n := range nodes.Items {
		info := NodeInfo{
			Name:   n.Name,
			Status: "NotReady",
			CPU:    n.Status.Capacity.Cpu().String(),
			Memory: n.Status.Capacity.Memory().String(),
		}
		for _, c := range n.Status.Conditions {
			if c.Type == corev1.NodeReady && c.Status == corev1.ConditionTrue {
				info.Status = "Ready"
				break
			}
		}
		if u, ok := usage[n.Name]; ok {
			info.CPUUsage = u.Cpu().String()
			info.MemoryUsage = u.Memory().String()
		}
		out = append(out, info)
	}
	slices.SortFunc(out, func(x, y NodeInfo) int { return strings.Compare(x.Name, y.Name) })
	return out, nil
}
