package matching

import (
	"math"
	"strings"

	"github.com/soradaze/qmatch/internal/models"
)

// MaxResponders caps how many responders are notified per question.
const MaxResponders = 5

// Input is one matching run's trigger: a structured question.
type Input struct {
	ThreadID       string       `json:"thread_id"`
	Categories     []string     `json:"categories"`
	EstimatedLevel models.Level `json:"estimated_level"`
}

// Candidate is one profile's scored outcome against an input. Score
// may be negative; it is a ranking signal, not a pass/fail gate.
type Candidate struct {
	UserID      string   `json:"user_id"`
	Score       float64  `json:"score"`
	MatchedTags []string `json:"matched_tags"`
}

// Result summarizes one matching run.
type Result struct {
	Candidates    []Candidate `json:"candidates"`
	AssignedCount int         `json:"assigned_count"`
}

// Score computes the affinity of one responder profile to one
// question. Pure and deterministic.
//
// Contributions: +10 per (category, tag) pair with a case-insensitive
// substring overlap in either direction, +5 for an exact level
// preference match (+2 when the question is one step above the
// preference), a track-record bonus capped at 10 (answers) and 15
// (thanks) independently, and +5/-3 for fast/slow average response
// times outside the 30..120 minute band.
func Score(profile *models.ResponderProfile, input Input) Candidate {
	var score float64
	matchedTags := []string{}

	for _, category := range input.Categories {
		normalized := strings.ToLower(category)
		for _, tag := range profile.ExpertiseTags {
			lowered := strings.ToLower(tag)
			if strings.Contains(lowered, normalized) || strings.Contains(normalized, lowered) {
				score += 10
				matchedTags = append(matchedTags, tag)
			}
		}
	}

	if profile.LevelPreference != nil {
		switch pref := *profile.LevelPreference; {
		case pref == input.EstimatedLevel:
			score += 5
		case pref == models.LevelBeginner && input.EstimatedLevel == models.LevelIntermediate,
			pref == models.LevelIntermediate && input.EstimatedLevel == models.LevelAdvanced:
			score += 2
		}
	}

	score += math.Min(float64(profile.AnswerCount)*0.5, 10)
	score += math.Min(float64(profile.ThanksCount), 15)

	if profile.AvgResponseTime != nil {
		switch t := *profile.AvgResponseTime; {
		case t < 30:
			score += 5
		case t > 120:
			score -= 3
		}
	}

	return Candidate{
		UserID:      profile.UserID,
		Score:       score,
		MatchedTags: matchedTags,
	}
}

// trackRecordScore is the fallback ranking used when no profile
// survives the primary scoring pass: pure track record, no tag, level
// or responsiveness factors and no caps.
func trackRecordScore(profile *models.ResponderProfile) float64 {
	return float64(profile.AnswerCount)*0.5 + float64(profile.ThanksCount)
}
