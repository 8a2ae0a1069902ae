package ai

import (
	"context"

	"go.uber.org/zap"

	"github.com/soradaze/qmatch/internal/models"
)

// StructuredQuestion is the AI layer's reading of a raw question.
type StructuredQuestion struct {
	Categories     []string     `json:"categories"`
	EstimatedLevel models.Level `json:"estimated_level"`
	Intent         string       `json:"intent"`
	MissingInfo    []string     `json:"missing_info"`
	SuggestedTitle string       `json:"suggested_title"`
}

// Service structures plain-language questions into the categorized
// form the matching pipeline consumes.
type Service interface {
	StructureQuestion(ctx context.Context, body string) (*StructuredQuestion, error)
}

type Config struct {
	Provider    string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// New selects a provider once at process start. Unknown providers fall
// back to the mock, which needs no credentials.
func New(cfg Config, logger *zap.Logger) Service {
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg.APIKey, cfg.Model, cfg.MaxTokens, cfg.Temperature, logger)
	case "mock", "":
		return NewMock()
	default:
		logger.Warn("Unknown AI provider, falling back to mock",
			zap.String("provider", cfg.Provider))
		return NewMock()
	}
}
