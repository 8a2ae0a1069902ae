package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/soradaze/qmatch/internal/models"
)

// OpenAI structures questions with a chat completion asked to return a
// fixed JSON shape. API or parse failures fall back to the mock so a
// question is never left unstructured.
type OpenAI struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	fallback    *Mock
	logger      *zap.Logger
}

func NewOpenAI(apiKey, model string, maxTokens int, temperature float64, logger *zap.Logger) *OpenAI {
	return &OpenAI{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		fallback:    NewMock(),
		logger:      logger,
	}
}

func (c *OpenAI) StructureQuestion(ctx context.Context, body string) (*StructuredQuestion, error) {
	prompt := fmt.Sprintf(`Analyze the following question and provide a structured analysis with:
- The subject categories it belongs to
- The asker's estimated sophistication level: one of "beginner", "intermediate", "advanced"
- The asker's intent in one sentence
- Information that is missing to answer well
- A short suggested title

Return the response as a JSON object with this structure:
{
    "categories": ["category1", "category2", ...],
    "estimated_level": "beginner",
    "intent": "one_sentence_intent",
    "missing_info": ["missing1", "missing2", ...],
    "suggested_title": "short_title"
}

Question: %s`, body)

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   c.maxTokens,
			Temperature: float32(c.temperature),
		},
	)
	if err != nil {
		c.logger.Error("Failed to get completion response", zap.Error(err))
		return c.fallback.StructureQuestion(ctx, body)
	}

	var structured StructuredQuestion
	response := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(response), &structured); err != nil {
		c.logger.Error("Failed to parse completion response",
			zap.Error(err),
			zap.String("response", response))
		return c.fallback.StructureQuestion(ctx, body)
	}

	if len(structured.Categories) == 0 {
		structured.Categories = []string{"general"}
	}
	switch structured.EstimatedLevel {
	case models.LevelBeginner, models.LevelIntermediate, models.LevelAdvanced:
	default:
		structured.EstimatedLevel = models.LevelBeginner
	}

	return &structured, nil
}
