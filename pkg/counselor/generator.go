package counselor

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/Mtank10/career-counselling-chat-app/internal/pkg/logger"
	"github.com/Mtank10/career-counselling-chat-app/pkg/llm"
)

// Fallback is the reply used whenever the upstream model cannot answer.
// Generate never surfaces an error to its caller; it degrades to this value.
const Fallback = "Sorry, the service is temporarily unavailable. Please try again shortly."

const systemInstruction = `You are a professional career counselor. Provide helpful, actionable career advice. Be supportive, practical, and focus on concrete steps the user can take.

Format your responses with:
- Clear paragraphs separated by double line breaks
- Use bullet points (•) for lists when appropriate
- Keep responses under 300 words and conversational
- Make your advice specific and actionable

`

const (
	userSpeaker      = "User"
	assistantSpeaker = "Career Counselor"
)

// Generator composes the counseling prompt, calls the provider with bounded
// retry on overload, and post-processes the reply.
type Generator struct {
	provider    llm.LLMProvider
	logger      logger.ILogger
	temperature float64
	maxTokens   int
	maxAttempts int
	retryDelay  time.Duration

	// sleep is swappable in tests
	sleep func(time.Duration)
}

func NewGenerator(provider llm.LLMProvider, log logger.ILogger, temperature float64, maxTokens, maxAttempts int, retryDelay time.Duration) *Generator {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if retryDelay <= 0 {
		retryDelay = 3 * time.Second
	}
	return &Generator{
		provider:    provider,
		logger:      log,
		temperature: temperature,
		maxTokens:   maxTokens,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		sleep:       time.Sleep,
	}
}

// Model reports the provider's model name, recorded as assistant-turn metadata.
func (g *Generator) Model() string {
	return g.provider.Model()
}

// Generate derives the next counselor reply from the full ordered history.
// The contract is total: overload is retried up to the attempt budget with a
// fixed delay, and every remaining failure degrades to Fallback.
func (g *Generator) Generate(ctx context.Context, history []llm.Message) string {
	prompt := BuildPrompt(history)

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		text, err := g.provider.Generate(ctx, prompt,
			llm.WithTemperature(g.temperature),
			llm.WithMaxTokens(g.maxTokens),
		)
		if err == nil {
			return postProcess(text)
		}

		if isOverloaded(err) && attempt < g.maxAttempts {
			g.logger.Warn("Counselor", "Model overloaded, retrying after delay", map[string]interface{}{
				"attempt": attempt,
				"delay":   g.retryDelay.String(),
			})
			g.sleep(g.retryDelay)
			continue
		}

		g.logger.Error("Counselor", "Generation failed, returning fallback", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		})
		return Fallback
	}

	return Fallback
}

func isOverloaded(err error) bool {
	return errors.Is(err, llm.ErrOverloaded)
}

// BuildPrompt serializes the conversation as alternating speaker lines under
// the fixed counselor persona, ending with the cue for the next reply.
func BuildPrompt(history []llm.Message) string {
	var b strings.Builder
	b.WriteString(systemInstruction)
	for _, msg := range history {
		speaker := assistantSpeaker
		if msg.Role == "user" {
			speaker = userSpeaker
		}
		b.WriteString(speaker)
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	b.WriteString(assistantSpeaker)
	b.WriteString(":")
	return b.String()
}

var (
	blankLinesRe   = regexp.MustCompile(`\n\n+`)
	numberedListRe = regexp.MustCompile(`(?m)^\d+\.\s`)
)

// postProcess normalizes the raw model output for consistent rendering:
// trimmed, single blank lines between paragraphs, bullets instead of
// numbered list markers.
func postProcess(text string) string {
	out := strings.TrimSpace(text)
	out = blankLinesRe.ReplaceAllString(out, "\n\n")
	out = numberedListRe.ReplaceAllString(out, "• ")
	return out
}
