package notify

import (
	"context"

	"github.com/soradaze/qmatch/internal/models"
)

// Notifier delivers a created notification to an external channel.
// Delivery is best-effort enrichment: the notification record is
// already persisted before Push is called.
type Notifier interface {
	Push(ctx context.Context, profile *models.ResponderProfile, notification *models.Notification) error
}

// Nop discards every notification. Used when no delivery channel is
// configured.
type Nop struct{}

func NewNop() Nop { return Nop{} }

func (Nop) Push(ctx context.Context, profile *models.ResponderProfile, notification *models.Notification) error {
	return nil
}
