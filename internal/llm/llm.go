// Package llm defines the text-generation capability the pipelines depend on.
package llm

import (
	"context"
	"errors"
)

var (
	ErrLLMTimeout          = errors.New("LLM_TIMEOUT")
	ErrLLMGenerationFailed = errors.New("LLM_GENERATION_FAILED")
)

// Reply is the envelope returned by one generation call. Replies holds the candidate
// texts in provider order; Meta carries per-candidate details such as finish reason
// and token usage.
type Reply struct {
	Replies []string
	Meta    []map[string]interface{}
}

// Generator produces a reply for a rendered prompt. Implementations are configured
// with a fixed system prompt and are safe for concurrent use.
type Generator interface {
	Run(ctx context.Context, prompt string) (*Reply, error)
}

// Provider hands out generators bound to a system prompt.
type Provider interface {
	GetGenerator(systemPrompt string) Generator
	ModelName() string
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (*Reply, error)

func (f GeneratorFunc) Run(ctx context.Context, prompt string) (*Reply, error) {
	return f(ctx, prompt)
}
