package kubeconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/tools/clientcmd/api"
)

// Kubeconfig represents a kubeconfig file
type Kubeconfig struct {
	Path   string
	Config *api.Config
}

// Context represents a Kubernetes context
type Context struct {
	Name       string
	Cluster    string
	Server     string
	Namespace  string
	User       string
	Current    bool
	Kubeconfig *Kubeconfig
}

// Manager handles kubeconfig discovery
type Manager struct {
	kubeconfigs []*Kubeconfig
	contexts    []*Context
}

// NewManager creates a new kubeconfig manager
func NewManager() *Manager {
	return &Manager{
		kubeconfigs: make([]*Kubeconfig, 0),
		contexts:    make([]*Context, 0),
	}
}

// DiscoverKubeconfigs discovers all kubeconfig files in ~/.kube
func (m *Manager) DiscoverKubeconfigs() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return m.DiscoverIn(filepath.Join(homeDir, ".kube"))
}

// DiscoverIn loads kubeDir/config and every other file in kubeDir that
// parses as a kubeconfig.
func (m *Manager) DiscoverIn(kubeDir string) error {
	if _, err := os.Stat(kubeDir); os.IsNotExist(err) {
		return fmt.Errorf("kube directory does not exist: %s", kubeDir)
	}

	mainConfigPath := filepath.Join(kubeDir, "config")
	if _, err := os.Stat(mainConfigPath); err == nil {
		config, err := clientcmd.LoadFromFile(mainConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load main kubeconfig: %w", err)
		}
		m.kubeconfigs = append(m.kubeconfigs, &Kubeconfig{Path: mainConfigPath, Config: config})
	}

	err := filepath.Walk(kubeDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			// cache holds discovery documents, not kubeconfigs
			if path != kubeDir && (info.Name() == "cache" || strings.HasPrefix(info.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") || path == mainConfigPath {
			return nil
		}

		config, err := clientcmd.LoadFromFile(path)
		if err != nil || len(config.Contexts) == 0 {
			// Not a valid kubeconfig, skip
			return nil
		}
		m.kubeconfigs = append(m.kubeconfigs, &Kubeconfig{Path: path, Config: config})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk kube directory: %w", err)
	}

	m.buildContexts()
	return nil
}

// buildContexts builds the context list from kubeconfigs, sorted by file and
// name.
func (m *Manager) buildContexts() {
	m.contexts = make([]*Context, 0)
	for _, kubeconfig := range m.kubeconfigs {
		var names []string
		for name := range kubeconfig.Config.Contexts {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			context := kubeconfig.Config.Contexts[name]
			namespace := context.Namespace
			if namespace == "" {
				namespace = "default"
			}
			var server string
			if cluster, ok := kubeconfig.Config.Clusters[context.Cluster]; ok {
				server = cluster.Server
			}
			m.contexts = append(m.contexts, &Context{
				Name:       name,
				Cluster:    context.Cluster,
				Server:     server,
				Namespace:  namespace,
				User:       context.AuthInfo,
				Current:    kubeconfig.Config.CurrentContext == name,
				Kubeconfig: kubeconfig,
			})
		}
	}
}

// GetKubeconfigs returns all discovered kubeconfigs
func (m *Manager) GetKubeconfigs() []*Kubeconfig {
	return m.kubeconfigs
}

// GetContexts returns all discovered contexts
func (m *Manager) GetContexts() []*Context {
	return m.contexts
}

// GetContextByName finds a context by name
func (m *Manager) GetContextByName(name string) *Context {
	for _, ctx := range m.contexts {
		if ctx.Name == name {
			return ctx
		}
	}
	return nil
}

// RESTConfig creates a REST config for a context
func (m *Manager) RESTConfig(ctx *Context) (*rest.Config, error) {
	config, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		&clientcmd.ClientConfigLoadingRules{ExplicitPath: ctx.Kubeconfig.Path},
		&clientcmd.ConfigOverrides{CurrentContext: ctx.Name},
	).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create client config: %w", err)
	}
	return config, nil
}

// Target is a resolved cluster connection.
type Target struct {
	Config    *rest.Config
	Context   string
	Cluster   string
	Namespace string
}

// Resolve loads the kubeconfig at explicitPath, or along the default loading
// rules ($KUBECONFIG, ~/.kube/config) when empty, and selects contextName or
// the current context.
func Resolve(explicitPath, contextName string) (*Target, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	rules.ExplicitPath = explicitPath
	loader := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{CurrentContext: contextName})

	raw, err := loader.RawConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	name := contextName
	if name == "" {
		name = raw.CurrentContext
	}
	context, ok := raw.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found in kubeconfig", name)
	}

	config, err := loader.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create client config: %w", err)
	}
	namespace, _, err := loader.Namespace()
	if err != nil {
		return nil, fmt.Errorf("failed to determine namespace: %w", err)
	}
	return &Target{Config: config, Context: name, Cluster: context.Cluster, Namespace: namespace}, nil
}
