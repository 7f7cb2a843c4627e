package handlers

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/sttts/kmanage/pkg/workload"
)

func TestPodHandler_GetStatus(t *testing.T) {
	handler := NewPodHandler()

	tests := []struct {
		name     string
		phase    corev1.PodPhase
		expected workload.Status
	}{
		{"Pending", corev1.PodPending, workload.StatusPending},
		{"Running", corev1.PodRunning, workload.StatusRunning},
		{"Succeeded", corev1.PodSucceeded, workload.StatusSucceeded},
		{"Failed", corev1.PodFailed, workload.StatusFailed},
		{"Unknown", corev1.PodUnknown, workload.StatusUnknown},
		{"Unset", "", workload.StatusUnknown},
		{"Custom", "Evicted", workload.Status("Evicted")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pod := &corev1.Pod{
				ObjectMeta: metav1.ObjectMeta{Name: "test-pod"},
				Status:     corev1.PodStatus{Phase: tt.phase},
			}

			status := handler.GetStatus(pod)
			if status != tt.expected {
				t.Errorf("GetStatus() = %v, want %v", status, tt.expected)
			}
		})
	}
}

func TestPodHandler_GetStatusWrongType(t *testing.T) {
	if got := NewPodHandler().GetStatus(&corev1.ConfigMap{}); got != workload.StatusUnknown {
		t.Fatalf("GetStatus() = %v, want Unknown", got)
	}
}

func TestPodHandler_Summaries(t *testing.T) {
	handler := NewPodHandler()
	list := &corev1.PodList{Items: []corev1.Pod{
		{ObjectMeta: metav1.ObjectMeta{Name: "b"}, Status: corev1.PodStatus{Phase: corev1.PodRunning}},
		{ObjectMeta: metav1.ObjectMeta{Name: "a"}},
	}}

	got, err := handler.Summaries(list)
	if err != nil {
		t.Fatalf("Summaries() failed: %v", err)
	}
	want := []workload.Summary{
		{Name: "b", Status: workload.StatusRunning},
		{Name: "a", Status: workload.StatusUnknown},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Summaries() mismatch (-want +got):\n%s", diff)
	}

	if _, err := handler.Summaries(&corev1.ConfigMapList{}); err == nil {
		t.Fatal("expected error for foreign list type")
	}
}

func TestBaseHandler_ToUnstructured(t *testing.T) {
	handler := NewPodHandler()
	u, err := handler.ToUnstructured(&corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "ns1"}})
	if err != nil {
		t.Fatalf("ToUnstructured() failed: %v", err)
	}
	if u.GetAPIVersion() != "v1" || u.GetKind() != "Pod" {
		t.Fatalf("TypeMeta not set: %s %s", u.GetAPIVersion(), u.GetKind())
	}
	if u.GetName() != "web" || u.GetNamespace() != "ns1" {
		t.Fatalf("unexpected metadata: %v", u.Object["metadata"])
	}
}
