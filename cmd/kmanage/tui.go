package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sttts/kmanage/internal/backend"
	"github.com/sttts/kmanage/internal/reconcile"
	"github.com/sttts/kmanage/internal/store"
	"github.com/sttts/kmanage/internal/ui"
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the terminal UI (default)",
		Args:  cobra.NoArgs,
		RunE:  runTUI,
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	e, closeLog, err := prepare(true)
	if err != nil {
		return err
	}
	defer closeLog()

	st := store.New(store.WithLogger(e.log.WithName("store")))
	loop := reconcile.New(e.backend, st,
		reconcile.WithInterval(e.cfg.Reconcile.Interval.Duration),
		reconcile.WithLogger(e.log.WithName("reconcile")),
	)
	defer loop.Stop()

	notifier := ui.NewToastNotifier(2 * time.Second)
	c := e.controller(st, notifier)

	opts := ui.Options{
		Controller: c,
		Store:      st,
		Namespaces: e.backend,
		Switcher:   loop,
		Config:     e.cfg,
		SaveConfig: saveConfig,
		Namespace:  e.namespace,
		Assistant:  e.drafter != nil,
		Log:        e.log.WithName("ui"),
	}
	if namer, ok := e.backend.(backend.ClusterNamer); ok {
		opts.Cluster = namer
	}
	return ui.Run(cmd.Context(), opts, notifier)
}
