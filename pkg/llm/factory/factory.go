package factory

import (
	"fmt"

	"github.com/Mtank10/career-counselling-chat-app/internal/config"
	"github.com/Mtank10/career-counselling-chat-app/pkg/llm"
	"github.com/Mtank10/career-counselling-chat-app/pkg/llm/gemini"
	"github.com/Mtank10/career-counselling-chat-app/pkg/llm/huggingface"
)

// NewLLMProvider selects the configured backend.
func NewLLMProvider(cfg config.AIConfig) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(cfg.HuggingFaceAPIKey, cfg.HuggingFaceBaseURL, cfg.HuggingFaceModel), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
