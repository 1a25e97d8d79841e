// Package deepseek talks to DeepSeek's OpenAI-compatible chat API.
package deepseek

import "geo-tutor/api/internal/llm/openai"

const baseURL = "https://api.deepseek.com"

type Engine struct {
	*openai.Engine
}

// New accepts the same options as openai.New; WithBaseURL overrides the DeepSeek endpoint.
func New(apiKey, model string, opts ...openai.Option) *Engine {
	opts = append([]openai.Option{openai.WithBaseURL(baseURL)}, opts...)
	return &Engine{Engine: openai.New(apiKey, model, opts...)}
}

func (e *Engine) Name() string { return "deepseek" }
