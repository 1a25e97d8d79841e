package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resty.dev/v3"
)

const defaultBaseURL = "https://api.openai.com/v1"

type Engine struct {
	Model string
	httpc *resty.Client
}

type Option func(*resty.Client)

// WithBaseURL points the engine at a compatible endpoint (proxy, test server).
func WithBaseURL(u string) Option {
	return func(c *resty.Client) { c.SetBaseURL(strings.TrimRight(u, "/")) }
}

func New(apiKey, model string, opts ...Option) *Engine {
	c := resty.New()
	c.SetBaseURL(defaultBaseURL)
	c.SetHeader("Authorization", "Bearer "+strings.TrimSpace(apiKey))
	c.SetHeader("Content-Type", "application/json")
	for _, o := range opts {
		o(c)
	}
	return &Engine{Model: strings.TrimSpace(model), httpc: c}
}

func (e *Engine) Name() string     { return "gpt" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Close() error { return e.httpc.Close() }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Generate sends the prompt as a single user message and returns the reply text.
func (e *Engine) Generate(ctx context.Context, prompt string) (string, error) {
	var out chatResponse
	resp, err := e.httpc.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:    e.Model,
			Messages: []message{{Role: "user", Content: prompt}},
		}).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("openai %d: %s", resp.StatusCode(), resp.String())
	}
	if len(out.Choices) == 0 {
		return "", errors.New("openai: no choices in response")
	}
	txt := out.Choices[0].Message.Content
	if strings.TrimSpace(txt) == "" {
		return "", errors.New("openai: empty response")
	}
	return txt, nil
}
