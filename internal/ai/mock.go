package ai

import (
	"context"
	"strings"

	"github.com/soradaze/qmatch/internal/models"
)

// Mock is a deterministic keyword-based structuring service. It is the
// default provider and the fallback when a real provider fails.
type Mock struct{}

func NewMock() *Mock { return &Mock{} }

// categoryKeywords maps a category to the keywords that imply it.
var categoryKeywords = map[string][]string{
	"programming": {"code", "bug", "error", "function", "compile", "debug"},
	"web":         {"html", "css", "javascript", "react", "frontend", "browser"},
	"database":    {"sql", "database", "query", "postgres", "table", "index"},
	"infra":       {"server", "deploy", "docker", "network", "linux", "cloud"},
	"career":      {"job", "interview", "resume", "salary", "career"},
	"money":       {"tax", "invoice", "budget", "insurance", "loan"},
}

func (m *Mock) StructureQuestion(ctx context.Context, body string) (*StructuredQuestion, error) {
	categories := detectCategories(body)
	if len(categories) == 0 {
		categories = []string{"general"}
	}

	return &StructuredQuestion{
		Categories:     categories,
		EstimatedLevel: models.LevelBeginner,
		Intent:         truncate(body, 100),
		MissingInfo:    []string{"detailed context", "what you already tried"},
		SuggestedTitle: suggestTitle(body),
	}, nil
}

func detectCategories(body string) []string {
	lowered := strings.ToLower(body)

	var categories []string
	for _, category := range []string{"programming", "web", "database", "infra", "career", "money"} {
		for _, keyword := range categoryKeywords[category] {
			if strings.Contains(lowered, keyword) {
				categories = append(categories, category)
				break
			}
		}
	}
	return categories
}

func suggestTitle(body string) string {
	line := body
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		line = body[:i]
	}
	return truncate(strings.TrimSpace(line), 60)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
