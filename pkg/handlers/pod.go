package handlers

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/sttts/kmanage/pkg/workload"
)

// PodHandler handles Pod-specific conversions
type PodHandler struct {
	*BaseHandler
}

// NewPodHandler creates a new Pod handler
func NewPodHandler() *PodHandler {
	return &PodHandler{BaseHandler: NewBaseHandler(workload.Pod)}
}

func (h *PodHandler) Kind() workload.Kind { return workload.Pod }
func (h *PodHandler) NewObject() client.Object { return &corev1.Pod{} }
func (h *PodHandler) NewList() client.ObjectList { return &corev1.PodList{} }

// Summaries returns one summary per pod in list order.
func (h *PodHandler) Summaries(list client.ObjectList) ([]workload.Summary, error) {
	pods, ok := list.(*corev1.PodList)
	if !ok {
		return nil, fmt.Errorf("expected *v1.PodList, got %T", list)
	}
	objs := make([]client.Object, 0, len(pods.Items))
	for i := range pods.Items {
		objs = append(objs, &pods.Items[i])
	}
	return h.Summarize(objs, h.GetStatus), nil
}

// GetStatus returns the pod phase, Unknown when unset
func (h *PodHandler) GetStatus(obj client.Object) workload.Status {
	pod, ok := obj.(*corev1.Pod)
	if !ok {
		return workload.StatusUnknown
	}

	switch pod.Status.Phase {
	case corev1.PodPending:
		return workload.StatusPending
	case corev1.PodRunning:
		return workload.StatusRunning
	case corev1.PodSucceeded:
		return workload.StatusSucceeded
	case corev1.PodFailed:
		return workload.StatusFailed
	case "", corev1.PodUnknown:
		return workload.StatusUnknown
	default:
		return workload.Status(pod.Status.Phase)
	}
}
