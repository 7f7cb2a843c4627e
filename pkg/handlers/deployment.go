package handlers

import (
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/sttts/kmanage/pkg/workload"
)

// progressDeadlineExceeded is the Progressing reason set by the deployment controller.
const progressDeadlineExceeded = "ProgressDeadlineExceeded"

// DeploymentHandler handles Deployment-specific conversions
type DeploymentHandler struct {
	*BaseHandler
}

// NewDeploymentHandler creates a new Deployment handler
func NewDeploymentHandler() *DeploymentHandler {
	return &DeploymentHandler{BaseHandler: NewBaseHandler(workload.Deployment)}
}

func (h *DeploymentHandler) Kind() workload.Kind { return workload.Deployment }
func (h *DeploymentHandler) NewObject() client.Object { return &appsv1.Deployment{} }
func (h *DeploymentHandler) NewList() client.ObjectList { return &appsv1.DeploymentList{} }

func (h *DeploymentHandler) Summaries(list client.ObjectList) ([]workload.Summary, error) {
	deployments, ok := list.(*appsv1.DeploymentList)
	if !ok {
		return nil, fmt.Errorf("expected *v1.DeploymentList, got %T", list)
	}
	objs := make([]client.Object, 0, len(deployments.Items))
	for i := range deployments.Items {
		objs = append(objs, &deployments.Items[i])
	}
	return h.Summarize(objs, h.GetStatus), nil
}

// GetStatus derives a status from conditions and available replicas.
func (h *DeploymentHandler) GetStatus(obj client.Object) workload.Status {
	d, ok := obj.(*appsv1.Deployment)
	if !ok {
		return workload.StatusUnknown
	}

	for _, c := range d.Status.Conditions {
		switch {
		case c.Type == appsv1.DeploymentReplicaFailure && c.Status == corev1.ConditionTrue:
			return workload.StatusFailed
		case c.Type == appsv1.DeploymentProgressing && c.Status == corev1.ConditionFalse && c.Reason == progressDeadlineExceeded:
			return workload.StatusFailed
		}
	}

	desired := int32(1)
	if d.Spec.Replicas != nil {
		desired = *d.Spec.Replicas
	}
	if d.Status.AvailableReplicas >= desired {
		return workload.StatusRunning
	}
	return workload.StatusPending
}
