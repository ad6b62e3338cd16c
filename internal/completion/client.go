// Package completion is the client for the external text-completion service
// (a Groq-style OpenAI-compatible API). Callers treat every failure as
// recoverable; the client only reports errors, it never retries.
package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client calls the chat-completions endpoint with bounded timeouts. A hang is
// indistinguishable from a failure to callers, which is what the degradation
// contract requires.
type Client struct {
	http  *resty.Client
	model string
}

// New builds a client for the given base URL (e.g. https://api.groq.com).
func New(baseURL, apiKey, model string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &Client{http: c, model: model}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete returns free-text output for a prompt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.chat(ctx, prompt, nil)
}

// CompleteJSON constrains the response to a single JSON object and returns it
// raw; schema validation is the caller's concern.
func (c *Client) CompleteJSON(ctx context.Context, prompt string) (json.RawMessage, error) {
	out, err := c.chat(ctx, prompt, &responseFormat{Type: "json_object"})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(out), nil
}

func (c *Client) chat(ctx context.Context, prompt string, format *responseFormat) (string, error) {
	req := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.2,
	}
	if format != nil {
		req.ResponseFormat = format
	}

	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&req).
		SetResult(&out).
		Post("/openai/v1/chat/completions")
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("completion status %d", resp.StatusCode())
	}
	if out.Error != nil {
		return "", fmt.Errorf("completion error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// HealthPing implements health.HealthPinger; it checks the models listing.
func (c *Client) HealthPing(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/openai/v1/models")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("completion service status %d", resp.StatusCode())
	}
	return nil
}
