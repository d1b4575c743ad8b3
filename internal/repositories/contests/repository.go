package contests

//go:generate mockgen -destination=mock/mock_repository.go -package=mockcontests -source=repository.go

import (
	"context"
	"time"

	"github.com/stormhall/qw-bot-discord/internal/domain/contest"
)

// Repository defines the interface for contest record storage operations
type Repository interface {
	// Create stores a new contest record
	Create(ctx context.Context, record *contest.Record) error

	// Get retrieves a contest record by ID
	Get(ctx context.Context, id string) (*contest.Record, error)

	// GetByMessage retrieves a contest record by its feed message handle
	GetByMessage(ctx context.Context, messageID string) (*contest.Record, error)

	// Update modifies an existing contest record
	Update(ctx context.Context, record *contest.Record) error

	// Delete removes a contest record
	Delete(ctx context.Context, id string) error

	// ListByChannel retrieves all contest records posted to a channel
	ListByChannel(ctx context.Context, channelID string) ([]*contest.Record, error)
}

// TimeProvider abstracts the clock for repository timestamps
type TimeProvider interface {
	Now() time.Time
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time { return time.Now().UTC() }

// NewRealTimeProvider returns a TimeProvider backed by the system clock
func NewRealTimeProvider() TimeProvider {
	return realTimeProvider{}
}
