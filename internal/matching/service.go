package matching

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/soradaze/qmatch/internal/models"
	"github.com/soradaze/qmatch/internal/notify"
	"github.com/soradaze/qmatch/internal/storage"
)

// Service routes structured questions to responders and maintains the
// derived statistics that feed future scoring rounds.
type Service struct {
	store    storage.Storage
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewService(store storage.Storage, notifier notify.Notifier, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// MatchResponders scores every eligible responder against the input,
// selects up to MaxResponders candidates and writes an assignment and
// a notification per candidate. Individual write failures are logged
// and skipped; only read-side failure aborts the run.
func (s *Service) MatchResponders(ctx context.Context, input Input) (*Result, error) {
	profiles, err := s.store.ListResponderProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list responder profiles: %w", err)
	}

	eligible := make([]*models.ResponderProfile, 0, len(profiles))
	byUser := make(map[string]*models.ResponderProfile, len(profiles))
	for _, p := range profiles {
		if p.Role == models.RoleResponder || p.Role == models.RoleAdmin {
			eligible = append(eligible, p)
			byUser[p.UserID] = p
		}
	}

	candidates := make([]Candidate, 0, len(eligible))
	for _, p := range eligible {
		c := Score(p, input)
		// A non-positive score keeps the candidate only when no tag
		// was ever matched: generalists stay in the pool, evaluated
		// specialists who still scored <= 0 drop out.
		if c.Score > 0 || len(c.MatchedTags) == 0 {
			candidates = append(candidates, c)
		}
	}

	// Stable sort so fetch order breaks score ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > MaxResponders {
		candidates = candidates[:MaxResponders]
	}

	if len(candidates) == 0 {
		candidates = s.fallbackCandidates(eligible)
	}

	now := time.Now()
	assignedCount := 0
	for _, c := range candidates {
		assignment := &models.ThreadAssignment{
			ID:          uuid.New().String(),
			ThreadID:    input.ThreadID,
			ResponderID: c.UserID,
			Status:      models.AssignmentNotified,
			NotifiedAt:  now,
		}

		if err := s.store.CreateAssignment(ctx, assignment); err != nil {
			if errors.Is(err, storage.ErrDuplicateAssignment) {
				s.logger.Debug("Assignment already exists, skipping",
					zap.String("thread_id", input.ThreadID),
					zap.String("responder_id", c.UserID))
			} else {
				s.logger.Warn("Failed to create assignment",
					zap.Error(err),
					zap.String("thread_id", input.ThreadID),
					zap.String("responder_id", c.UserID))
			}
			continue
		}
		assignedCount++
	}

	for _, c := range candidates {
		notification := buildNotification(input.ThreadID, c, now)
		if err := s.store.CreateNotification(ctx, notification); err != nil {
			s.logger.Warn("Failed to create notification",
				zap.Error(err),
				zap.String("thread_id", input.ThreadID),
				zap.String("responder_id", c.UserID))
			continue
		}

		if err := s.notifier.Push(ctx, byUser[c.UserID], notification); err != nil {
			s.logger.Warn("Failed to push notification",
				zap.Error(err),
				zap.String("responder_id", c.UserID))
		}
	}

	return &Result{
		Candidates:    candidates,
		AssignedCount: assignedCount,
	}, nil
}

// fallbackCandidates ranks all eligible responders by raw track
// record, so a question with no specialty overlap still reaches
// someone.
func (s *Service) fallbackCandidates(eligible []*models.ResponderProfile) []Candidate {
	candidates := make([]Candidate, 0, len(eligible))
	for _, p := range eligible {
		candidates = append(candidates, Candidate{
			UserID:      p.UserID,
			Score:       trackRecordScore(p),
			MatchedTags: []string{},
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > MaxResponders {
		candidates = candidates[:MaxResponders]
	}

	return candidates
}

func buildNotification(threadID string, candidate Candidate, now time.Time) *models.Notification {
	body := "A question in your areas of expertise has been posted"
	if len(candidate.MatchedTags) > 0 {
		body += fmt.Sprintf(" (%s)", strings.Join(candidate.MatchedTags, ", "))
	}

	return &models.Notification{
		ID:        uuid.New().String(),
		UserID:    candidate.UserID,
		ThreadID:  threadID,
		Type:      "new_question",
		Title:     "A new question has arrived",
		Body:      body,
		CreatedAt: now,
	}
}

// UpdateResponderStats recomputes a responder's answer count, thanks
// count and average response time from source records and persists the
// snapshot. Idempotent: it never increments in place.
func (s *Service) UpdateResponderStats(ctx context.Context, userID string) error {
	answerCount, err := s.store.CountOriginalAnswers(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to count answers: %w", err)
	}

	thanksCount, err := s.store.CountThanksReceived(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to count thanks: %w", err)
	}

	assignments, err := s.store.ListAnsweredAssignments(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list answered assignments: %w", err)
	}

	// Average stays nil, not zero, when nothing has been answered yet.
	var avgResponseTime *int
	if len(assignments) > 0 {
		totalMinutes := 0.0
		for _, a := range assignments {
			totalMinutes += a.AnsweredAt.Sub(a.NotifiedAt).Minutes()
		}
		minutes := int(math.Round(totalMinutes / float64(len(assignments))))
		avgResponseTime = &minutes
	}

	err = s.store.UpdateResponderStats(ctx, userID, models.ResponderStats{
		AnswerCount:     answerCount,
		ThanksCount:     thanksCount,
		AvgResponseTime: avgResponseTime,
	})
	if err != nil {
		return fmt.Errorf("failed to update responder stats: %w", err)
	}

	return nil
}
