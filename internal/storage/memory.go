package storage

import (
	"context"
	"sync"
	"time"

	"github.com/soradaze/qmatch/internal/models"
)

// MemoryStorage is an in-memory Storage used for local runs and tests.
// Profiles are returned in insertion order, which is what downstream
// stable sorting ties break on.
type MemoryStorage struct {
	mu            sync.RWMutex
	profiles      []*models.ResponderProfile
	assignments   map[string]*models.ThreadAssignment // keyed by threadID + "/" + responderID
	notifications []*models.Notification
	messages      []*models.Message
	feedback      []*models.Feedback
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		assignments: make(map[string]*models.ThreadAssignment),
	}
}

func assignmentKey(threadID, responderID string) string {
	return threadID + "/" + responderID
}

// AddProfile registers a responder profile. Existing profiles for the
// same user are replaced in place.
func (s *MemoryStorage) AddProfile(profile *models.ResponderProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.profiles {
		if p.UserID == profile.UserID {
			s.profiles[i] = profile
			return
		}
	}
	s.profiles = append(s.profiles, profile)
}

func (s *MemoryStorage) AddMessage(message *models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, message)
}

func (s *MemoryStorage) AddFeedback(fb *models.Feedback) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.feedback = append(s.feedback, fb)
}

// AddAssignment seeds an assignment directly, bypassing duplicate
// checks. Intended for test setup of historical data.
func (s *MemoryStorage) AddAssignment(assignment *models.ThreadAssignment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assignments[assignmentKey(assignment.ThreadID, assignment.ResponderID)] = assignment
}

func (s *MemoryStorage) ListResponderProfiles(ctx context.Context) ([]*models.ResponderProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Copies, so callers never observe a concurrent stats update
	// mid-write.
	profiles := make([]*models.ResponderProfile, len(s.profiles))
	for i, p := range s.profiles {
		snapshot := *p
		profiles[i] = &snapshot
	}
	return profiles, nil
}

func (s *MemoryStorage) UpdateResponderStats(ctx context.Context, userID string, stats models.ResponderStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.profiles {
		if p.UserID == userID {
			p.AnswerCount = stats.AnswerCount
			p.ThanksCount = stats.ThanksCount
			p.AvgResponseTime = stats.AvgResponseTime
			p.UpdatedAt = time.Now()
			return nil
		}
	}

	// No profile for this user is a no-op by contract.
	return nil
}

func (s *MemoryStorage) CreateAssignment(ctx context.Context, assignment *models.ThreadAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := assignmentKey(assignment.ThreadID, assignment.ResponderID)
	if _, exists := s.assignments[key]; exists {
		return ErrDuplicateAssignment
	}

	s.assignments[key] = assignment
	return nil
}

func (s *MemoryStorage) CreateNotification(ctx context.Context, notification *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications = append(s.notifications, notification)
	return nil
}

func (s *MemoryStorage) CountOriginalAnswers(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, m := range s.messages {
		if m.SenderID == userID && m.Type == models.MessageAnswer && m.IsOriginal {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStorage) CountThanksReceived(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, fb := range s.feedback {
		if fb.ToUserID == userID && fb.Kind == models.FeedbackThanks {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStorage) ListAnsweredAssignments(ctx context.Context, responderID string) ([]*models.ThreadAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var assignments []*models.ThreadAssignment
	for _, a := range s.assignments {
		if a.ResponderID == responderID && a.Status == models.AssignmentAnswered && a.AnsweredAt != nil {
			assignments = append(assignments, a)
		}
	}
	return assignments, nil
}

// Notifications returns a snapshot of all created notifications.
func (s *MemoryStorage) Notifications() []*models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notifications := make([]*models.Notification, len(s.notifications))
	copy(notifications, s.notifications)
	return notifications
}

// Assignments returns a snapshot of all assignments.
func (s *MemoryStorage) Assignments() []*models.ThreadAssignment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assignments := make([]*models.ThreadAssignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		assignments = append(assignments, a)
	}
	return assignments
}

// Profile returns a copy of the stored profile for userID, or nil.
func (s *MemoryStorage) Profile(userID string) *models.ResponderProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.profiles {
		if p.UserID == userID {
			snapshot := *p
			return &snapshot
		}
	}
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
