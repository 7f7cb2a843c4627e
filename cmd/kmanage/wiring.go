package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	klog "k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/sttts/kmanage/internal/assistant"
	"github.com/sttts/kmanage/internal/backend"
	"github.com/sttts/kmanage/internal/backend/kube"
	"github.com/sttts/kmanage/internal/backend/rest"
	"github.com/sttts/kmanage/internal/lifecycle"
	"github.com/sttts/kmanage/internal/store"
	"github.com/sttts/kmanage/pkg/appconfig"
	"github.com/sttts/kmanage/pkg/kubeconfig"
)

// env is what a command needs to talk to resources.
type env struct {
	cfg       *appconfig.Config
	backend   backend.Backend
	drafter   assistant.Drafter
	namespace string
	log       logr.Logger
}

// connect builds the backend for the flags and config. Tests replace it.
var connect = connectBackend

// loadConfig reads the config file and applies the flag overrides.
func loadConfig() (*appconfig.Config, error) {
	var (
		cfg *appconfig.Config
		err error
	)
	if globals.configPath != "" {
		cfg, err = appconfig.LoadFrom(globals.configPath)
	} else {
		cfg, err = appconfig.Load()
	}
	if err != nil {
		return nil, err
	}
	if globals.apiURL != "" {
		cfg.API.URL = globals.apiURL
	}
	return cfg, nil
}

// saveConfig writes cfg to where it was loaded from.
func saveConfig(cfg *appconfig.Config) error {
	if globals.configPath != "" {
		return appconfig.SaveTo(cfg, globals.configPath)
	}
	return appconfig.Save(cfg)
}

// setupLogging installs a zap logger for controller-runtime and klog. Logs go
// to --log-file if set. Without it they are discarded unless --debug is set,
// in which case a CLI command logs to stderr. The terminal UI never logs to
// the terminal.
func setupLogging(tui bool) (func(), error) {
	var w io.Writer = io.Discard
	closeFn := func() {}
	switch {
	case globals.logFile != "":
		f, err := os.OpenFile(globals.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case globals.debug && !tui:
		w = os.Stderr
	}

	logger := zap.New(zap.UseDevMode(globals.debug), zap.WriteTo(w))
	ctrl.SetLogger(logger)
	klog.SetLogger(logger)
	return closeFn, nil
}

func connectBackend(cfg *appconfig.Config, log logr.Logger) (*env, error) {
	e := &env{cfg: cfg, log: log, namespace: globals.namespace}

	if globals.direct {
		target, err := kubeconfig.Resolve(globals.kubeconfig, globals.context)
		if err != nil {
			return nil, err
		}
		b, err := kube.NewForConfig(target.Config, kube.WithClusterName(target.Cluster))
		if err != nil {
			return nil, err
		}
		e.backend = b
		if e.namespace == "" {
			e.namespace = target.Namespace
		}
	} else {
		c, err := rest.New(cfg.API.URL, rest.WithTimeout(cfg.API.Timeout.Duration), rest.WithLogger(log.WithName("rest")))
		if err != nil {
			return nil, err
		}
		e.backend = c
		e.drafter = c
	}

	// a separate assistant endpoint is served by a gateway of its own
	if cfg.Assistant.URL != "" {
		c, err := rest.New(strings.TrimSuffix(strings.TrimRight(cfg.AssistantURL(), "/"), "/groq"), rest.WithLogger(log.WithName("assistant")))
		if err != nil {
			return nil, fmt.Errorf("invalid assistant URL: %w", err)
		}
		e.drafter = c
	}

	if e.namespace == "" {
		e.namespace = cfg.Namespace
	}
	return e, nil
}

// prepare loads the config, sets up logging and connects. The returned func
// releases the log file.
func prepare(tui bool) (*env, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	closeLog, err := setupLogging(tui)
	if err != nil {
		return nil, nil, err
	}
	e, err := connect(cfg, ctrl.Log.WithName("kmanage"))
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	return e, closeLog, nil
}

// controller builds a lifecycle controller over e's backend.
func (e *env) controller(st *store.Store, n lifecycle.Notifier) *lifecycle.Controller {
	opts := []lifecycle.Option{
		lifecycle.WithDefaultImage(e.cfg.Manifest.DefaultImage),
		lifecycle.WithLogger(e.log.WithName("lifecycle")),
	}
	if n != nil {
		opts = append(opts, lifecycle.WithNotifier(n))
	}
	if e.drafter != nil {
		opts = append(opts, lifecycle.WithDrafter(e.drafter))
	}
	return lifecycle.New(e.backend, st, opts...)
}

// requireNamespace returns the namespace to work in for one-shot commands.
func (e *env) requireNamespace() (string, error) {
	if e.namespace == "" {
		return "", fmt.Errorf("no namespace selected, use --namespace")
	}
	return e.namespace, nil
}
