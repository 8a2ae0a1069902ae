package storage

import (
	"context"
	"errors"

	"github.com/soradaze/qmatch/internal/models"
)

// ErrDuplicateAssignment is returned by CreateAssignment when an
// assignment already exists for the same (thread, responder) pair.
// Callers treat it as an expected conflict, not a failure.
var ErrDuplicateAssignment = errors.New("assignment already exists for thread and responder")

type Storage interface {
	// ListResponderProfiles returns every responder profile with the
	// owning user's role joined in. Eligibility filtering is the
	// caller's concern.
	ListResponderProfiles(ctx context.Context) ([]*models.ResponderProfile, error)

	// UpdateResponderStats writes a derived stats snapshot onto the
	// profile for userID. A missing profile is a no-op, not an error.
	UpdateResponderStats(ctx context.Context, userID string, stats models.ResponderStats) error

	// CreateAssignment persists a new assignment, returning
	// ErrDuplicateAssignment on a (thread, responder) conflict.
	CreateAssignment(ctx context.Context, assignment *models.ThreadAssignment) error

	CreateNotification(ctx context.Context, notification *models.Notification) error

	// Source-of-truth reads for the stats recomputation job.
	CountOriginalAnswers(ctx context.Context, userID string) (int, error)
	CountThanksReceived(ctx context.Context, userID string) (int, error)
	ListAnsweredAssignments(ctx context.Context, responderID string) ([]*models.ThreadAssignment, error)

	Close() error
}
