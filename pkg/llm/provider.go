package llm

import (
	"context"
	"errors"
)

// ErrOverloaded signals the upstream model is temporarily unavailable
// (HTTP 503 / overload). Callers may retry; any other error is terminal
// for the attempt.
var ErrOverloaded = errors.New("model overloaded")

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Generate sends a single composed prompt to the model and returns the
	// raw response text.
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)

	// Model reports the model name used for generation, recorded as turn
	// metadata.
	Model() string
}
