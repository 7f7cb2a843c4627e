package ui

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/sttts/kmanage/internal/lifecycle"
)

const (
	toastTTL      = 4 * time.Second
	toastErrorTTL = 8 * time.Second
)

// showToastMsg displays a transient notification for the given TTL.
type showToastMsg struct {
	text  string
	isErr bool
	ttl   time.Duration
}

type toastExpiredMsg struct{ seq int }

// ShowToast returns a Cmd to display a transient notification.
func ShowToast(text string, isErr bool) tea.Cmd {
	ttl := toastTTL
	if isErr {
		ttl = toastErrorTTL
	}
	return func() tea.Msg { return showToastMsg{text: text, isErr: isErr, ttl: ttl} }
}

// ToastNotifier reports lifecycle outcomes as toasts. Repeated identical
// errors are suppressed for a while to avoid storms. Outcomes arriving before
// Attach are dropped.
type ToastNotifier struct {
	mu          sync.Mutex
	send        func(tea.Msg)
	minInterval time.Duration
	lastText    string
	lastToast   time.Time
	now         func() time.Time
}

func NewToastNotifier(minInterval time.Duration) *ToastNotifier {
	return &ToastNotifier{minInterval: minInterval, now: time.Now}
}

// Attach sets where toasts are delivered, usually tea.Program.Send.
func (n *ToastNotifier) Attach(send func(tea.Msg)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.send = send
}

// Notify implements lifecycle.Notifier.
func (n *ToastNotifier) Notify(o lifecycle.Outcome) {
	text := strings.TrimSpace(o.Message())
	isErr := o.Err != nil

	n.mu.Lock()
	now := n.now()
	if isErr && text == n.lastText && now.Sub(n.lastToast) < n.minInterval {
		n.mu.Unlock()
		return
	}
	n.lastText, n.lastToast = text, now
	send := n.send
	n.mu.Unlock()

	if send == nil {
		return
	}
	ttl := toastTTL
	if isErr {
		ttl = toastErrorTTL
	}
	send(showToastMsg{text: text, isErr: isErr, ttl: ttl})
}

var _ lifecycle.Notifier = &ToastNotifier{}
