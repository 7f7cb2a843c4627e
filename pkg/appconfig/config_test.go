package appconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	yaml "sigs.k8s.io/yaml"
)

// TestConfigDefaultsYAMLMatchesCode reads config-default.yaml from the repo
// root and compares it with the in-code defaults returned by Default().
func TestConfigDefaultsYAMLMatchesCode(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "config-default.yaml"))
	if err != nil {
		t.Skipf("config-default.yaml not found; skipping defaults sync test: %v", err)
	}
	fromYAML := &Config{}
	if err := yaml.UnmarshalStrict(data, fromYAML); err != nil {
		t.Fatalf("unmarshal defaults yaml: %v", err)
	}
	if diff := cmp.Diff(Default(), fromYAML); diff != "" {
		t.Fatalf("defaults mismatch (-code +yaml):\n%s", diff)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestLoadPartialFillsDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, p, "api:\n  url: https://gw.example.com/api\nnamespace: ns1\nviewer:\n  theme: Monokai\n")

	cfg, err := LoadFrom(p)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	want := Default()
	want.API.URL = "https://gw.example.com/api"
	want.Namespace = "ns1"
	want.Viewer.Theme = "monokai"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
	if got := cfg.AssistantURL(); got != "https://gw.example.com/api/groq" {
		t.Fatalf("AssistantURL() = %q", got)
	}
}

func TestLoadMixedCaseKeys(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, p, "API:\n  URL: http://other:9090/api\nReconcile:\n  Interval: 5s\nManifest:\n  DefaultImage: httpd\nNamespace: team-a\nAssistant:\n  URL: http://llm/draft\n")

	cfg, err := LoadFrom(p)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.API.URL != "http://other:9090/api" {
		t.Errorf("api.url = %q", cfg.API.URL)
	}
	if cfg.Reconcile.Interval.Duration != 5*time.Second {
		t.Errorf("reconcile.interval = %v", cfg.Reconcile.Interval.Duration)
	}
	if cfg.Manifest.DefaultImage != "httpd" {
		t.Errorf("manifest.defaultImage = %q", cfg.Manifest.DefaultImage)
	}
	if cfg.Namespace != "team-a" {
		t.Errorf("namespace = %q", cfg.Namespace)
	}
	if cfg.AssistantURL() != "http://llm/draft" {
		t.Errorf("assistant url = %q", cfg.AssistantURL())
	}
	if cfg.API.Timeout != Default().API.Timeout {
		t.Errorf("api.timeout not defaulted: %v", cfg.API.Timeout)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, p, "- just\n- a list\n")
	if _, err := LoadFrom(p); err == nil {
		t.Fatal("expected error for non-mapping config")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Viewer.Theme = "GitHub"
	cfg.Namespace = "ns1"
	if err := SaveTo(cfg, p); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	got, err := LoadFrom(p)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	want := Default()
	want.Viewer.Theme = "github"
	want.Namespace = "ns1"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
	if cfg.Viewer.Theme != "GitHub" {
		t.Fatal("SaveTo modified its argument")
	}
}

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
