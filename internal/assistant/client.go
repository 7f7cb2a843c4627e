package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"
	ctrl "sigs.k8s.io/controller-runtime"
)

const (
	// DefaultEndpoint is the Groq chat completions API.
	DefaultEndpoint = "https://api.groq.com/openai/v1/chat/completions"
	// DefaultModel is the model asked for drafts.
	DefaultModel = "llama-3.3-70b-versatile"

	requestTimeout = 45 * time.Second
)

// Client calls a chat completions endpoint on behalf of the gateway.
type Client struct {
	Endpoint string
	Model    string
	APIKey   string
	HTTP     *http.Client

	log logr.Logger
}

// NewClient returns a client with defaults for empty arguments.
func NewClient(endpoint, model, apiKey string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		Endpoint: endpoint,
		Model:    model,
		APIKey:   apiKey,
		HTTP:     &http.Client{},
		log:      ctrl.Log.WithName("assistant"),
	}
}

// UpstreamError is a non-2xx answer of the completion endpoint.
type UpstreamError struct {
	Code int
	Body string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion endpoint returned status %d: %s", e.Code, e.Body)
}

// Complete sends the drafting prompt for req and returns the raw completion
// response body.
func (c *Client) Complete(ctx context.Context, req Request) ([]byte, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}
	if c.APIKey == "" {
		return nil, fmt.Errorf("no api key configured for %s", c.Endpoint)
	}

	body, err := json.Marshal(CompletionRequest{
		Model:    c.Model,
		Messages: []Message{{Role: "user", Content: Prompt(req.YAMLType, req.Query)}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	c.log.V(1).Info("requesting draft", "endpoint", c.Endpoint, "model", c.Model, "yamlType", req.YAMLType)
	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send completion request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}
