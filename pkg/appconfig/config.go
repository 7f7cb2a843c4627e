package appconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	yaml "sigs.k8s.io/yaml"
)

type APIConfig struct {
	// URL is the gateway root, including the /api prefix.
	URL     string          `json:"url"`
	Timeout metav1.Duration `json:"timeout"`
}

type ReconcileConfig struct {
	Interval metav1.Duration `json:"interval"`
}

type ManifestConfig struct {
	DefaultImage string `json:"defaultImage"`
}

type ViewerConfig struct {
	Theme string `json:"theme"`
}

type AssistantConfig struct {
	// URL overrides the drafting endpoint. Empty means <api.url>/groq.
	URL string `json:"url,omitempty"`
}

type ServerAssistantConfig struct {
	Endpoint  string `json:"endpoint"`
	Model     string `json:"model"`
	APIKeyEnv string `json:"apiKeyEnv"`
}

type ServerConfig struct {
	Addr           string                `json:"addr"`
	AllowedOrigins []string              `json:"allowedOrigins"`
	UpdateTimeout  metav1.Duration       `json:"updateTimeout"`
	Assistant      ServerAssistantConfig `json:"assistant"`
}

type Config struct {
	API       APIConfig       `json:"api"`
	Reconcile ReconcileConfig `json:"reconcile"`
	Manifest  ManifestConfig  `json:"manifest"`
	Viewer    ViewerConfig    `json:"viewer"`
	// Namespace is the last selected namespace.
	Namespace string          `json:"namespace,omitempty"`
	Assistant AssistantConfig `json:"assistant"`
	Server    ServerConfig    `json:"server"`
}

func Default() *Config {
	return &Config{
		API:       APIConfig{URL: "http://localhost:8080/api", Timeout: metav1.Duration{Duration: 30 * time.Second}},
		Reconcile: ReconcileConfig{Interval: metav1.Duration{Duration: 10 * time.Second}},
		Manifest:  ManifestConfig{DefaultImage: "nginx"},
		Viewer:    ViewerConfig{Theme: "dracula"},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			UpdateTimeout:  metav1.Duration{Duration: 60 * time.Second},
			Assistant: ServerAssistantConfig{
				Endpoint:  "https://api.groq.com/openai/v1/chat/completions",
				Model:     "llama-3.3-70b-versatile",
				APIKeyEnv: "GROQ_API_KEY",
			},
		},
	}
}

// AssistantURL returns the drafting endpoint the client uses.
func (c *Config) AssistantURL() string {
	if c.Assistant.URL != "" {
		return c.Assistant.URL
	}
	return strings.TrimRight(c.API.URL, "/") + "/groq"
}

// applyDefaults fills fields left empty by a partial file.
func (c *Config) applyDefaults() {
	d := Default()
	if c.API.URL == "" {
		c.API.URL = d.API.URL
	}
	if c.API.Timeout.Duration <= 0 {
		c.API.Timeout = d.API.Timeout
	}
	if c.Reconcile.Interval.Duration <= 0 {
		c.Reconcile.Interval = d.Reconcile.Interval
	}
	if c.Manifest.DefaultImage == "" {
		c.Manifest.DefaultImage = d.Manifest.DefaultImage
	}
	if c.Viewer.Theme == "" {
		c.Viewer.Theme = d.Viewer.Theme
	}
	c.Viewer.Theme = strings.ToLower(c.Viewer.Theme)
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = d.Server.AllowedOrigins
	}
	if c.Server.UpdateTimeout.Duration <= 0 {
		c.Server.UpdateTimeout = d.Server.UpdateTimeout
	}
	if c.Server.Assistant.Endpoint == "" {
		c.Server.Assistant.Endpoint = d.Server.Assistant.Endpoint
	}
	if c.Server.Assistant.Model == "" {
		c.Server.Assistant.Model = d.Server.Assistant.Model
	}
	if c.Server.Assistant.APIKeyEnv == "" {
		c.Server.Assistant.APIKeyEnv = d.Server.Assistant.APIKeyEnv
	}
}

// Path returns ~/.kmanage/config.yaml.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".kmanage", "config.yaml"), nil
}

// Load reads ~/.kmanage/config.yaml if present, otherwise returns defaults.
func Load() (*Config, error) {
	p, err := Path()
	if err != nil {
		return Default(), err
	}
	return LoadFrom(p)
}

// LoadFrom reads the config at p. A missing file yields the defaults.
func LoadFrom(p string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}

	// First try strict unmarshal (lower-case tags)
	strict := &Config{}
	if err := yaml.UnmarshalStrict(data, strict); err == nil {
		strict.applyDefaults()
		return strict, nil
	}

	// Fallback: tolerate legacy/mixed-case keys by normalizing
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", p, err)
	}
	// fill optional fields so that their keys are known
	tmpl := Default()
	tmpl.Namespace, tmpl.Assistant.URL = "-", "-"
	canonical, err := toMap(tmpl)
	if err != nil {
		return cfg, err
	}
	normalized, err := yaml.Marshal(normalizeKeys(raw, canonical))
	if err != nil {
		return cfg, err
	}
	loose := &Config{}
	if err := yaml.Unmarshal(normalized, loose); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", p, err)
	}
	loose.applyDefaults()
	return loose, nil
}

func toMap(cfg *Config) (map[string]interface{}, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	return m, yaml.Unmarshal(data, &m)
}

// normalizeKeys renames keys of raw that match a key of canonical except for
// case. Unknown keys are dropped.
func normalizeKeys(raw, canonical map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	for k, v := range raw {
		for ck, cv := range canonical {
			if !strings.EqualFold(k, ck) {
				continue
			}
			rm, rok := v.(map[string]interface{})
			cm, cok := cv.(map[string]interface{})
			if rok && cok {
				v = normalizeKeys(rm, cm)
			}
			out[ck] = v
			break
		}
	}
	return out
}

// Save writes the config to ~/.kmanage/config.yaml.
func Save(cfg *Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(cfg, p)
}

// SaveTo writes the config to p, creating the directory if needed.
func SaveTo(cfg *Config, p string) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	// Enforce lower-case style names for consistency
	out := *cfg
	out.Viewer.Theme = strings.ToLower(out.Viewer.Theme)
	data, err := yaml.Marshal(&out)
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}
