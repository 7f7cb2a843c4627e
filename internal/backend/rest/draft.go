package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/sttts/kmanage/internal/assistant"
	"github.com/sttts/kmanage/pkg/workload"
)

var _ assistant.Drafter = &Client{}

// Draft asks the gateway's assistant endpoint for a manifest draft.
func (c *Client) Draft(ctx context.Context, kind workload.Kind, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", assistant.ErrEmptyQuery
	}
	body, err := json.Marshal(assistant.Request{YAMLType: string(kind), Query: query})
	if err != nil {
		return "", err
	}
	resp, err := c.do(ctx, http.MethodPost, schema.GroupResource{Resource: "groq"}, "", body, "application/json", "groq")
	if err != nil {
		return "", err
	}
	var completion assistant.Completion
	if err := json.Unmarshal(resp.body, &completion); err != nil {
		return "", fmt.Errorf("failed to decode completion: %w", err)
	}
	content, err := completion.Content()
	if err != nil {
		return "", err
	}
	return assistant.CleanDraft(content), nil
}
