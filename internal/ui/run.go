package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/sttts/kmanage/internal/store"
)

// Run starts the terminal UI and blocks until it exits or ctx is cancelled.
// notifier, if set, is attached to the program so lifecycle outcomes show up
// as toasts.
func Run(ctx context.Context, opts Options, notifier *ToastNotifier, progOpts ...tea.ProgramOption) error {
	app := NewApp(ctx, opts)
	p := tea.NewProgram(app, append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}, progOpts...)...)

	cancel := opts.Store.Subscribe(func(ev store.Event) {
		p.Send(storeChangedMsg{key: ev.Key})
	})
	defer cancel()
	if notifier != nil {
		notifier.Attach(p.Send)
		defer notifier.Attach(nil)
	}

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}
