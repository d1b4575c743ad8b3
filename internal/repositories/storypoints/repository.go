package storypoints

import "context"

//go:generate mockgen -destination=mock/mock_repository.go -package=mockstorypoints -source=repository.go

// Repository stores the story point pool and per-party balances. A counter
// that was never set reads as zero.
type Repository interface {
	// GetPool returns the shared pool for a channel
	GetPool(ctx context.Context, channelID string) (int, error)

	// SetPool overwrites the shared pool for a channel
	SetPool(ctx context.Context, channelID string, points int) error

	// GetBalance returns a party's personal balance
	GetBalance(ctx context.Context, channelID, partyID string) (int, error)

	// SetBalance overwrites a party's personal balance
	SetBalance(ctx context.Context, channelID, partyID string, points int) error
}
