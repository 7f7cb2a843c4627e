package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/sttts/kmanage/internal/backend"
	"github.com/sttts/kmanage/pkg/workload"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	maxBodyBytes = 16 << 20
)

var _ backend.Backend = &Client{}

// Client talks to the /api gateway.
type Client struct {
	base *url.URL
	http *http.Client
	log  logr.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client, e.g. to inject a transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(log logr.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New returns a client for the gateway rooted at baseURL, e.g.
// "http://localhost:8080/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base: u,
		http: &http.Client{Timeout: DefaultTimeout},
		log:  ctrl.Log.WithName("rest"),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// BaseURL returns the gateway root.
func (c *Client) BaseURL() string { return c.base.String() }

func (c *Client) endpoint(segments ...string) string {
	u := *c.base
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	u.Path = c.base.Path + "/" + strings.Join(segments, "/")
	u.RawPath = c.base.EscapedPath() + "/" + strings.Join(escaped, "/")
	return u.String()
}

type response struct {
	contentType string
	body        []byte
}

func (c *Client) do(ctx context.Context, method string, gr schema.GroupResource, name string, body []byte, contentType string, segments ...string) (*response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(segments...), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json, "+backend.ContentTypeYAML+", text/plain")

	log := c.log.WithValues("method", method, "url", req.URL.String())
	log.V(2).Info("request")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response of %s %s: %w", method, req.URL.Path, err)
	}
	log.V(2).Info("response", "code", resp.StatusCode, "bytes", len(data))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, method, gr, name, data)
	}
	return &response{contentType: mediaType(resp.Header.Get("Content-Type")), body: data}, nil
}

// decodeError turns an error response into an API status error. Gateways
// answer with a metav1.Status, plain text bodies become generic errors.
func decodeError(code int, method string, gr schema.GroupResource, name string, body []byte) error {
	var status metav1.Status
	if err := json.Unmarshal(body, &status); err == nil && (status.Kind == "Status" || status.Status == metav1.StatusFailure) {
		if status.Code == 0 {
			status.Code = int32(code)
		}
		if status.Status == "" {
			status.Status = metav1.StatusFailure
		}
		return apierrors.FromObject(&status)
	}
	msg := strings.TrimSpace(string(body))
	return apierrors.NewGenericServerResponse(code, method, gr, name, msg, 0, true)
}

func mediaType(header string) string {
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return mt
}

func groupResource(kind workload.Kind) schema.GroupResource {
	return schema.GroupResource{Group: kind.GroupVersionKind().Group, Resource: kind.Plural()}
}

var namespacesResource = schema.GroupResource{Resource: "namespaces"}

var _ backend.ClusterNamer = &Client{}

// ClusterName implements backend.ClusterNamer with GET /cluster-name.
func (c *Client) ClusterName(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, schema.GroupResource{Resource: "cluster-name"}, "", nil, "", "cluster-name")
	if err != nil {
		return "", err
	}
	var out struct {
		ClusterName string `json:"clusterName"`
	}
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return "", fmt.Errorf("failed to decode cluster name: %w", err)
	}
	return out.ClusterName, nil
}

// Namespaces implements backend.Backend.
func (c *Client) Namespaces(ctx context.Context) ([]string, error) {
	resp, err := c.do(ctx, http.MethodGet, namespacesResource, "", nil, "", "namespaces")
	if err != nil {
		return nil, err
	}
	var out struct {
		Namespaces []string `json:"namespaces"`
	}
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode namespaces: %w", err)
	}
	return out.Namespaces, nil
}

// List implements backend.Backend. Entries may be objects with name and
// status or bare names, which get status Unknown.
func (c *Client) List(ctx context.Context, kind workload.Kind, namespace string) ([]workload.Summary, error) {
	resp, err := c.do(ctx, http.MethodGet, groupResource(kind), "", nil, "", kind.Plural(), namespace)
	if err != nil {
		return nil, err
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(resp.body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode %s list: %w", kind, err)
	}
	raw, ok := envelope[kind.Plural()]
	if !ok || string(raw) == "null" {
		return []workload.Summary{}, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode %s list: %w", kind, err)
	}

	out := make([]workload.Summary, 0, len(entries))
	for _, e := range entries {
		var name string
		if err := json.Unmarshal(e, &name); err == nil {
			out = append(out, workload.Summary{Name: name, Status: workload.StatusUnknown})
			continue
		}
		var s workload.Summary
		if err := json.Unmarshal(e, &s); err != nil {
			return nil, fmt.Errorf("failed to decode %s entry %s: %w", kind, string(e), err)
		}
		if s.Status == "" {
			s.Status = workload.StatusUnknown
		}
		out = append(out, s)
	}
	return out, nil
}

// Create implements backend.Backend.
func (c *Client) Create(ctx context.Context, kind workload.Kind, namespace, name string, manifest []byte) error {
	_, err := c.do(ctx, http.MethodPost, groupResource(kind), name, manifest, backend.ContentTypeYAML, string(kind), namespace, name)
	return err
}

// Update implements backend.Backend. The gateway answers once the
// replacement has been submitted.
func (c *Client) Update(ctx context.Context, kind workload.Kind, namespace, name string, manifest []byte) error {
	_, err := c.do(ctx, http.MethodPut, groupResource(kind), name, manifest, backend.ContentTypeYAML, string(kind), namespace, name)
	return err
}

// Delete implements backend.Backend.
func (c *Client) Delete(ctx context.Context, kind workload.Kind, namespace, name string) error {
	_, err := c.do(ctx, http.MethodDelete, groupResource(kind), name, nil, "", string(kind), namespace, name)
	return err
}

// Logs implements backend.Backend. JSON bodies carry the text in "logs",
// anything else is taken verbatim.
func (c *Client) Logs(ctx context.Context, namespace, name string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, groupResource(workload.Pod), name, nil, "", string(workload.Pod), namespace, name, "logs")
	if err != nil {
		return "", err
	}
	if resp.contentType != "application/json" {
		return string(resp.body), nil
	}
	var out struct {
		Logs string `json:"logs"`
	}
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return "", fmt.Errorf("failed to decode logs: %w", err)
	}
	return out.Logs, nil
}

// Manifest implements backend.Backend. A JSON body with a "yaml" field is
// unwrapped, anything else is returned as is.
func (c *Client) Manifest(ctx context.Context, kind workload.Kind, namespace, name string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, groupResource(kind), name, nil, "", string(kind), namespace, name, "yaml")
	if err != nil {
		return nil, err
	}
	if resp.contentType != "application/json" {
		return resp.body, nil
	}
	var out struct {
		YAML string `json:"yaml"`
	}
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return []byte(out.YAML), nil
}
