// Package ai provides a provider-agnostic gateway to generative-language APIs.
package ai

import "context"

// TaskType defines the kind of generation task for routing purposes.
type TaskType int

const (
	TaskCourse TaskType = iota
	TaskExplanation
)

func (t TaskType) String() string {
	switch t {
	case TaskCourse:
		return "course"
	case TaskExplanation:
		return "explanation"
	default:
		return "unknown"
	}
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the input to a completion.
type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Task        TaskType  `json:"task,omitempty"`
	// ResponseSchema, when non-nil, asks the provider for a single JSON
	// object conforming to the given schema instead of free text.
	ResponseSchema map[string]any `json:"response_schema,omitempty"`
}

// CompletionResponse is the output from a completion.
type CompletionResponse struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// TotalTokens returns the sum of input and output tokens.
func (r CompletionResponse) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// ModelInfo describes an available model.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MaxTokens   int    `json:"max_tokens"`
	Description string `json:"description"`
}

// Provider is the interface all generation providers must implement.
// Both calls in this system are single-shot request/response, so there is
// no streaming variant.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	Models() []ModelInfo
	HealthCheck(ctx context.Context) error
}
