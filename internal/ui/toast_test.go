package ui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/sttts/kmanage/internal/lifecycle"
	"github.com/sttts/kmanage/pkg/workload"
)

func TestToastNotifier(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := NewToastNotifier(30 * time.Second)
	n.now = func() time.Time { return now }

	var got []showToastMsg
	created := lifecycle.Outcome{Verb: lifecycle.VerbCreate, Kind: workload.Pod, Namespace: "ns", Name: "web"}
	failed := lifecycle.Outcome{Verb: lifecycle.VerbDelete, Kind: workload.Pod, Namespace: "ns", Name: "web", Err: errors.New("boom")}

	n.Notify(created)
	if len(got) != 0 {
		t.Fatalf("expected outcomes before Attach to be dropped")
	}
	n.Attach(func(msg tea.Msg) { got = append(got, msg.(showToastMsg)) })

	n.Notify(created)
	n.Notify(failed)
	n.Notify(failed)
	now = now.Add(31 * time.Second)
	n.Notify(failed)

	if len(got) != 3 {
		t.Fatalf("expected 3 toasts, got %d: %+v", len(got), got)
	}
	if got[0].text != `Pod "web" created` || got[0].isErr {
		t.Fatalf("unexpected success toast %+v", got[0])
	}
	if got[1].text != "boom" || !got[1].isErr || got[1].ttl != toastErrorTTL {
		t.Fatalf("unexpected error toast %+v", got[1])
	}
}
