package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soradaze/qmatch/internal/models"
)

func levelPtr(l models.Level) *models.Level { return &l }

func intPtr(i int) *int { return &i }

func TestScoreCategoryAffinity(t *testing.T) {
	tests := []struct {
		name        string
		tags        []string
		categories  []string
		wantScore   float64
		wantMatched []string
	}{
		{
			name:        "exact tag match",
			tags:        []string{"React", "TypeScript"},
			categories:  []string{"React"},
			wantScore:   10,
			wantMatched: []string{"React"},
		},
		{
			name:        "two categories match two tags",
			tags:        []string{"React", "TypeScript"},
			categories:  []string{"React", "TypeScript"},
			wantScore:   20,
			wantMatched: []string{"React", "TypeScript"},
		},
		{
			name:        "category is substring of tag",
			tags:        []string{"React Native"},
			categories:  []string{"react"},
			wantScore:   10,
			wantMatched: []string{"React Native"},
		},
		{
			name:        "tag is substring of category",
			tags:        []string{"sql"},
			categories:  []string{"PostgreSQL"},
			wantScore:   10,
			wantMatched: []string{"sql"},
		},
		{
			name:        "one category matching two tags counts twice",
			tags:        []string{"Go", "Go lang"},
			categories:  []string{"go"},
			wantScore:   20,
			wantMatched: []string{"Go", "Go lang"},
		},
		{
			name:        "duplicate pairs are not deduplicated",
			tags:        []string{"Go"},
			categories:  []string{"go", "golang"},
			wantScore:   20,
			wantMatched: []string{"Go", "Go"},
		},
		{
			name:        "no overlap",
			tags:        []string{"Rust"},
			categories:  []string{"cooking"},
			wantScore:   0,
			wantMatched: []string{},
		},
		{
			name:        "matched tags keep original casing",
			tags:        []string{"データ分析"},
			categories:  []string{"データ分析"},
			wantScore:   10,
			wantMatched: []string{"データ分析"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &models.ResponderProfile{
				UserID:        "u1",
				Role:          models.RoleResponder,
				ExpertiseTags: tt.tags,
			}
			c := Score(profile, Input{
				ThreadID:       "t1",
				Categories:     tt.categories,
				EstimatedLevel: models.LevelBeginner,
			})

			assert.Equal(t, tt.wantScore, c.Score)
			assert.Equal(t, tt.wantMatched, c.MatchedTags)
		})
	}
}

func TestScoreLevelAffinity(t *testing.T) {
	tests := []struct {
		name      string
		pref      *models.Level
		estimated models.Level
		want      float64
	}{
		{"exact match", levelPtr(models.LevelBeginner), models.LevelBeginner, 5},
		{"exact match advanced", levelPtr(models.LevelAdvanced), models.LevelAdvanced, 5},
		{"one step above beginner", levelPtr(models.LevelBeginner), models.LevelIntermediate, 2},
		{"one step above intermediate", levelPtr(models.LevelIntermediate), models.LevelAdvanced, 2},
		{"preference above input gets nothing", levelPtr(models.LevelAdvanced), models.LevelBeginner, 0},
		{"intermediate preference against beginner input", levelPtr(models.LevelIntermediate), models.LevelBeginner, 0},
		{"two step gap gets nothing", levelPtr(models.LevelBeginner), models.LevelAdvanced, 0},
		{"no preference", nil, models.LevelBeginner, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &models.ResponderProfile{
				UserID:          "u1",
				Role:            models.RoleResponder,
				LevelPreference: tt.pref,
			}
			c := Score(profile, Input{ThreadID: "t1", EstimatedLevel: tt.estimated})
			assert.Equal(t, tt.want, c.Score)
		})
	}
}

func TestScoreTrackRecordBonus(t *testing.T) {
	tests := []struct {
		name        string
		answerCount int
		thanksCount int
		want        float64
	}{
		{"no record", 0, 0, 0},
		{"fractional answer bonus", 15, 0, 7.5},
		{"answer bonus at cap boundary", 20, 0, 10},
		{"answer bonus capped", 100, 0, 10},
		{"thanks bonus", 0, 8, 8},
		{"thanks bonus capped", 0, 100, 15},
		{"both capped independently", 100, 100, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &models.ResponderProfile{
				UserID:      "u1",
				Role:        models.RoleResponder,
				AnswerCount: tt.answerCount,
				ThanksCount: tt.thanksCount,
			}
			c := Score(profile, Input{ThreadID: "t1", EstimatedLevel: models.LevelBeginner})
			assert.Equal(t, tt.want, c.Score)
		})
	}
}

func TestScoreResponsivenessThresholds(t *testing.T) {
	tests := []struct {
		name string
		avg  *int
		want float64
	}{
		{"fast responder", intPtr(29), 5},
		{"lower band boundary", intPtr(30), 0},
		{"upper band boundary", intPtr(120), 0},
		{"slow responder", intPtr(121), -3},
		{"zero minutes counts as fast", intPtr(0), 5},
		{"unset average", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &models.ResponderProfile{
				UserID:          "u1",
				Role:            models.RoleResponder,
				AvgResponseTime: tt.avg,
			}
			c := Score(profile, Input{ThreadID: "t1", EstimatedLevel: models.LevelBeginner})
			assert.Equal(t, tt.want, c.Score)
		})
	}
}

func TestScoreTotalCanBeNegative(t *testing.T) {
	profile := &models.ResponderProfile{
		UserID:          "u1",
		Role:            models.RoleResponder,
		LevelPreference: levelPtr(models.LevelAdvanced),
		AvgResponseTime: intPtr(180),
	}
	c := Score(profile, Input{ThreadID: "t1", EstimatedLevel: models.LevelBeginner})

	assert.Equal(t, -3.0, c.Score)
	assert.Empty(t, c.MatchedTags)
}

func TestScoreCombined(t *testing.T) {
	t.Run("tag match only", func(t *testing.T) {
		profile := &models.ResponderProfile{
			UserID:        "u1",
			Role:          models.RoleResponder,
			ExpertiseTags: []string{"React", "TypeScript"},
		}
		c := Score(profile, Input{
			ThreadID:       "t1",
			Categories:     []string{"React"},
			EstimatedLevel: models.LevelBeginner,
		})

		assert.Equal(t, 10.0, c.Score)
		assert.Equal(t, []string{"React"}, c.MatchedTags)
	})

	t.Run("generalist with strong record", func(t *testing.T) {
		profile := &models.ResponderProfile{
			UserID:          "u1",
			Role:            models.RoleResponder,
			LevelPreference: levelPtr(models.LevelBeginner),
			AnswerCount:     20,
			ThanksCount:     10,
			AvgResponseTime: intPtr(25),
		}
		c := Score(profile, Input{ThreadID: "t1", EstimatedLevel: models.LevelBeginner})

		// 5 (level) + 10 (answers, capped) + 10 (thanks) + 5 (fast)
		assert.Equal(t, 30.0, c.Score)
	})

	t.Run("specialist with fractional bonus", func(t *testing.T) {
		profile := &models.ResponderProfile{
			UserID:          "u1",
			Role:            models.RoleResponder,
			ExpertiseTags:   []string{"Python", "データ分析"},
			LevelPreference: levelPtr(models.LevelIntermediate),
			AnswerCount:     15,
			ThanksCount:     8,
			AvgResponseTime: intPtr(60),
		}
		c := Score(profile, Input{
			ThreadID:       "t1",
			Categories:     []string{"Python"},
			EstimatedLevel: models.LevelIntermediate,
		})

		// 10 (tag) + 5 (level) + 7.5 (answers) + 8 (thanks) + 0
		assert.Equal(t, 30.5, c.Score)
		assert.Equal(t, []string{"Python"}, c.MatchedTags)
	})
}
