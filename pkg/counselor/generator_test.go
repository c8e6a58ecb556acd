package counselor

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Mtank10/career-counselling-chat-app/pkg/llm"

	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

// scriptedProvider returns one scripted result per call, in order.
type scriptedProvider struct {
	results []scriptedResult
	calls   int
	prompts []string
}

type scriptedResult struct {
	text string
	err  error
}

func (p *scriptedProvider) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if p.calls >= len(p.results) {
		return "", fmt.Errorf("unexpected call %d", p.calls+1)
	}
	r := p.results[p.calls]
	p.calls++
	return r.text, r.err
}

func (p *scriptedProvider) Model() string { return "test-model" }

func overloaded() error {
	return fmt.Errorf("status 503: %w", llm.ErrOverloaded)
}

func newTestGenerator(p llm.LLMProvider) (*Generator, *[]time.Duration) {
	g := NewGenerator(p, nopLogger{}, 0.7, 500, 3, 3*time.Second)
	var slept []time.Duration
	g.sleep = func(d time.Duration) { slept = append(slept, d) }
	return g, &slept
}

func TestGenerateOverloadExhaustsRetries(t *testing.T) {
	p := &scriptedProvider{results: []scriptedResult{
		{err: overloaded()},
		{err: overloaded()},
		{err: overloaded()},
	}}
	g, slept := newTestGenerator(p)

	got := g.Generate(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})

	assert.Equal(t, Fallback, got)
	assert.Equal(t, 3, p.calls)
	// delay between attempts, not after the last one
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, *slept)
}

func TestGenerateOverloadThenSuccess(t *testing.T) {
	p := &scriptedProvider{results: []scriptedResult{
		{err: overloaded()},
		{text: "Consider a portfolio review."},
	}}
	g, slept := newTestGenerator(p)

	got := g.Generate(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})

	assert.Equal(t, "Consider a portfolio review.", got)
	assert.Equal(t, 2, p.calls)
	assert.Equal(t, []time.Duration{3 * time.Second}, *slept)
}

func TestGenerateNonOverloadErrorDegradesImmediately(t *testing.T) {
	p := &scriptedProvider{results: []scriptedResult{
		{err: fmt.Errorf("connection refused")},
	}}
	g, slept := newTestGenerator(p)

	got := g.Generate(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})

	assert.Equal(t, Fallback, got)
	assert.Equal(t, 1, p.calls)
	assert.Empty(t, *slept)
}

func TestBuildPrompt(t *testing.T) {
	history := []llm.Message{
		{Role: "user", Content: "Should I switch to data engineering?"},
		{Role: "assistant", Content: "Tell me about your background."},
		{Role: "user", Content: "Five years of backend work."},
	}

	prompt := BuildPrompt(history)

	assert.True(t, strings.HasPrefix(prompt, "You are a professional career counselor."))
	assert.Contains(t, prompt, "User: Should I switch to data engineering?\n")
	assert.Contains(t, prompt, "Career Counselor: Tell me about your background.\n")
	assert.True(t, strings.HasSuffix(prompt, "Career Counselor:"))
}

func TestPostProcess(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "trims surrounding whitespace",
			in:   "  advice here \n",
			want: "advice here",
		},
		{
			name: "collapses blank lines",
			in:   "first paragraph\n\n\n\nsecond paragraph",
			want: "first paragraph\n\nsecond paragraph",
		},
		{
			name: "numbered lists become bullets",
			in:   "1. Update your resume\n2. Practice interviews",
			want: "• Update your resume\n• Practice interviews",
		},
		{
			name: "inline numbers untouched",
			in:   "Apply to 3. companies per week",
			want: "Apply to 3. companies per week",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, postProcess(tt.in))
		})
	}
}

func TestGenerateAppliesPostProcessing(t *testing.T) {
	p := &scriptedProvider{results: []scriptedResult{
		{text: "\n1. Network more\n\n\n2. Take a course\n"},
	}}
	g, _ := newTestGenerator(p)

	got := g.Generate(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})

	assert.Equal(t, "• Network more\n\n• Take a course", got)
}
