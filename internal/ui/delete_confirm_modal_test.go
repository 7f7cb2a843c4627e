package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/sttts/kmanage/pkg/workload"
)

func pressKey(code rune, text string, mod tea.KeyMod) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code, Text: text, Mod: mod}
}

func confirmResult(t *testing.T, cmd tea.Cmd) DeleteConfirmMsg {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	msg := cmd()
	res, ok := msg.(DeleteConfirmMsg)
	if !ok {
		t.Fatalf("expected DeleteConfirmMsg, got %T", msg)
	}
	return res
}

func TestDeleteConfirmDefaultNo(t *testing.T) {
	model := NewDeleteConfirmModel()
	model.Configure(workload.Pod, "default", "demo")
	_, cmd := model.Update(pressKey(tea.KeyEnter, "", 0))
	res := confirmResult(t, cmd)
	if res.Confirm {
		t.Fatalf("expected confirmation false by default")
	}
	if res.Kind != workload.Pod || res.Namespace != "default" || res.Name != "demo" {
		t.Fatalf("unexpected target %+v", res)
	}
}

func TestDeleteConfirmYesSelection(t *testing.T) {
	model := NewDeleteConfirmModel()
	model.Configure(workload.Deployment, "default", "demo")
	m, _ := model.Update(pressKey(tea.KeyLeft, "", 0))
	model = m.(*DeleteConfirmModel)
	_, cmd := model.Update(pressKey(tea.KeyEnter, "", 0))
	if res := confirmResult(t, cmd); !res.Confirm {
		t.Fatalf("expected confirmation true when selecting yes")
	}
}

func TestDeleteConfirmRuneShortcut(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"y", true},
		{"Y", true},
		{"n", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			model := NewDeleteConfirmModel()
			model.Configure(workload.Pod, "default", "demo")
			_, cmd := model.Update(pressKey(rune(tt.key[0]), tt.key, 0))
			if res := confirmResult(t, cmd); res.Confirm != tt.want {
				t.Fatalf("confirm=%v, want %v", res.Confirm, tt.want)
			}
		})
	}
}

func TestDeleteConfirmConfigureResetsFocus(t *testing.T) {
	model := NewDeleteConfirmModel()
	model.Configure(workload.Pod, "default", "a")
	model.Update(pressKey(tea.KeyLeft, "", 0))
	model.Configure(workload.Pod, "default", "b")
	_, cmd := model.Update(pressKey(tea.KeyEnter, "", 0))
	if res := confirmResult(t, cmd); res.Confirm || res.Name != "b" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestDeleteConfirmMouse(t *testing.T) {
	model := NewDeleteConfirmModel()
	model.SetDimensions(40, 7)
	model.Configure(workload.Pod, "default", "demo")
	_ = model.View()
	yes := model.buttonRect[0]
	_, cmd := model.Update(tea.MouseReleaseMsg{X: yes.x, Y: yes.y, Button: tea.MouseLeft})
	if res := confirmResult(t, cmd); !res.Confirm {
		t.Fatalf("expected a click on Yes to confirm")
	}
}
