package storypoints

import (
	"context"
	"fmt"
	"sync"
)

type inMemoryRepository struct {
	mu       sync.RWMutex
	pools    map[string]int // channelID -> pool
	balances map[string]int // channelID/partyID -> balance
}

// NewInMemoryRepository creates a new in-memory story point repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		pools:    make(map[string]int),
		balances: make(map[string]int),
	}
}

func balanceMapKey(channelID, partyID string) string {
	return fmt.Sprintf("%s/%s", channelID, partyID)
}

// GetPool returns the shared pool for a channel
func (r *inMemoryRepository) GetPool(ctx context.Context, channelID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pools[channelID], nil
}

// SetPool overwrites the shared pool for a channel
func (r *inMemoryRepository) SetPool(ctx context.Context, channelID string, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pools[channelID] = points
	return nil
}

// GetBalance returns a party's personal balance
func (r *inMemoryRepository) GetBalance(ctx context.Context, channelID, partyID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.balances[balanceMapKey(channelID, partyID)], nil
}

// SetBalance overwrites a party's personal balance
func (r *inMemoryRepository) SetBalance(ctx context.Context, channelID, partyID string, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[balanceMapKey(channelID, partyID)] = points
	return nil
}
