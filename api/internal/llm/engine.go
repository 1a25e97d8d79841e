// Package llm holds the text-generation engines used to write problems and feedback.
package llm

import (
	"context"
	"errors"
	"strings"
)

type Engine interface {
	Name() string
	GetModel() string
	Generate(ctx context.Context, prompt string) (string, error)
}

type Engines struct {
	Gemini   Engine
	OpenAI   Engine
	Deepseek Engine
}

// GetEngine resolves a provider name ("gemini", "gpt"/"openai", "deepseek") to a configured engine.
func (e *Engines) GetEngine(name string) (Engine, error) {
	var eng Engine
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gemini", "":
		eng = e.Gemini
	case "gpt", "openai":
		eng = e.OpenAI
	case "deepseek":
		eng = e.Deepseek
	default:
		return nil, errors.New("unknown llm provider; use 'gemini', 'gpt' or 'deepseek'")
	}
	if eng == nil {
		return nil, errors.New("llm provider " + name + " is not configured")
	}
	return eng, nil
}
