package kubeconfig

import (
	"os"
	"path/filepath"
	"testing"

	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/tools/clientcmd/api"
)

func TestNewManager(t *testing.T) {
	manager := NewManager()

	if manager == nil {
		t.Fatal("NewManager() returned nil")
	}
	if len(manager.kubeconfigs) != 0 {
		t.Errorf("Expected empty kubeconfigs slice, got length %d", len(manager.kubeconfigs))
	}
	if len(manager.contexts) != 0 {
		t.Errorf("Expected empty contexts slice, got length %d", len(manager.contexts))
	}
}

func testConfig(current string, contexts map[string]string) *api.Config {
	config := api.NewConfig()
	config.CurrentContext = current
	for name, cluster := range contexts {
		config.Contexts[name] = &api.Context{Cluster: cluster, AuthInfo: "user-" + name}
		config.Clusters[cluster] = &api.Cluster{Server: "https://" + cluster + ":6443"}
		config.AuthInfos["user-"+name] = &api.AuthInfo{Token: "token"}
	}
	return config
}

func writeConfig(t *testing.T, path string, config *api.Config) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := clientcmd.WriteToFile(*config, path); err != nil {
		t.Fatalf("failed to write kubeconfig: %v", err)
	}
}

func TestBuildContexts(t *testing.T) {
	manager := NewManager()

	config1 := testConfig("context1", map[string]string{"context2": "cluster1", "context1": "cluster1"})
	config1.Contexts["context2"].Namespace = "kube-system"
	kubeconfig1 := &Kubeconfig{Path: "/config1", Config: config1}
	kubeconfig2 := &Kubeconfig{Path: "/config2", Config: testConfig("context3", map[string]string{"context3": "cluster2"})}
	manager.kubeconfigs = []*Kubeconfig{kubeconfig1, kubeconfig2}

	manager.buildContexts()

	var names []string
	for _, c := range manager.GetContexts() {
		names = append(names, c.Name)
	}
	if len(names) != 3 || names[0] != "context1" || names[1] != "context2" || names[2] != "context3" {
		t.Fatalf("unexpected context order %v", names)
	}

	context1 := manager.GetContextByName("context1")
	if context1 == nil {
		t.Fatal("context1 not found")
	}
	if context1.Namespace != "default" {
		t.Errorf("context1.Namespace = %v, want %v", context1.Namespace, "default")
	}
	if !context1.Current {
		t.Errorf("context1 should be current")
	}
	if context1.Server != "https://cluster1:6443" {
		t.Errorf("context1.Server = %v", context1.Server)
	}
	if context1.Kubeconfig != kubeconfig1 {
		t.Errorf("context1.Kubeconfig reference is not correct")
	}

	context2 := manager.GetContextByName("context2")
	if context2 == nil || context2.Namespace != "kube-system" || context2.Current {
		t.Errorf("unexpected context2 %+v", context2)
	}
	if manager.GetContextByName("non-existing") != nil {
		t.Errorf("GetContextByName(\"non-existing\") should be nil")
	}
}

func TestDiscoverIn(t *testing.T) {
	kubeDir := filepath.Join(t.TempDir(), ".kube")
	writeConfig(t, filepath.Join(kubeDir, "config"), testConfig("main", map[string]string{"main": "c1"}))
	writeConfig(t, filepath.Join(kubeDir, "extra", "dev.yaml"), testConfig("dev", map[string]string{"dev": "c2"}))
	writeConfig(t, filepath.Join(kubeDir, "cache", "ignored"), testConfig("cached", map[string]string{"cached": "c3"}))
	if err := os.WriteFile(filepath.Join(kubeDir, "notes.txt"), []byte("not a kubeconfig"), 0o644); err != nil {
		t.Fatal(err)
	}

	manager := NewManager()
	if err := manager.DiscoverIn(kubeDir); err != nil {
		t.Fatalf("DiscoverIn() failed: %v", err)
	}
	if len(manager.GetKubeconfigs()) != 2 {
		t.Fatalf("Expected 2 kubeconfigs, got %d", len(manager.GetKubeconfigs()))
	}
	if manager.GetContextByName("main") == nil || manager.GetContextByName("dev") == nil {
		t.Fatal("expected main and dev contexts")
	}
	if manager.GetContextByName("cached") != nil {
		t.Fatal("cache directory must be skipped")
	}

	cfg, err := manager.RESTConfig(manager.GetContextByName("dev"))
	if err != nil {
		t.Fatalf("RESTConfig() failed: %v", err)
	}
	if cfg.Host != "https://c2:6443" {
		t.Errorf("Host = %q", cfg.Host)
	}
}

func TestDiscoverKubeconfigs_NoKubeDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	manager := NewManager()
	if err := manager.DiscoverKubeconfigs(); err == nil {
		t.Error("Expected error when .kube directory doesn't exist")
	}
}

func TestDiscoverKubeconfigs_EmptyKubeDir(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tempDir, ".kube"), 0o755); err != nil {
		t.Fatalf("Failed to create .kube directory: %v", err)
	}
	t.Setenv("HOME", tempDir)

	manager := NewManager()
	if err := manager.DiscoverKubeconfigs(); err != nil {
		t.Errorf("DiscoverKubeconfigs() failed: %v", err)
	}
	if len(manager.kubeconfigs) != 0 {
		t.Errorf("Expected 0 kubeconfigs, got %d", len(manager.kubeconfigs))
	}
}

func TestResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	config := testConfig("prod", map[string]string{"prod": "prod-cluster", "dev": "dev-cluster"})
	config.Contexts["dev"].Namespace = "team-a"
	writeConfig(t, path, config)

	target, err := Resolve(path, "")
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if target.Context != "prod" || target.Cluster != "prod-cluster" || target.Namespace != "default" {
		t.Errorf("unexpected target %+v", target)
	}
	if target.Config.Host != "https://prod-cluster:6443" {
		t.Errorf("Host = %q", target.Config.Host)
	}

	target, err = Resolve(path, "dev")
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if target.Context != "dev" || target.Cluster != "dev-cluster" || target.Namespace != "team-a" {
		t.Errorf("unexpected target %+v", target)
	}

	if _, err := Resolve(path, "missing"); err == nil {
		t.Error("expected error for unknown context")
	}
}
