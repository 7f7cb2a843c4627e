package assistant

import (
	"context"
	"errors"
	"strings"

	"github.com/sttts/kmanage/pkg/workload"
)

// ErrEmptyQuery is returned for blank drafting requests.
var ErrEmptyQuery = errors.New("assistant query must not be empty")

// Drafter produces a manifest draft for kind from a free-form description.
type Drafter interface {
	Draft(ctx context.Context, kind workload.Kind, query string) (string, error)
}

// Request is the body of POST /api/groq.
type Request struct {
	YAMLType string `json:"yamlType"`
	Query    string `json:"query"`
}

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is an OpenAI compatible chat completion request.
type CompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// Completion is the relevant subset of a chat completion response.
type Completion struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		FinishReason string  `json:"finish_reason"`
		Index        int     `json:"index"`
		Message      Message `json:"message"`
	} `json:"choices"`
}

// Content returns the first choice's text.
func (c *Completion) Content() (string, error) {
	if len(c.Choices) == 0 {
		return "", errors.New("completion has no choices")
	}
	return c.Choices[0].Message.Content, nil
}

// Prompt builds the drafting instruction for yamlType.
func Prompt(yamlType, query string) string {
	return "only provide the yaml, and no extra text / formatting (i.e. ```) for the following - create a " +
		yamlType + " yaml for: " + query + ". if you are unsure, just provide a basic sample yaml."
}

// CleanDraft strips surrounding whitespace and markdown code fences that
// models add despite being asked not to.
func CleanDraft(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s + "\n"
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// drop the language tag, e.g. ```yaml
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s) + "\n"
}
