package contests

import (
	"context"
	"sync"

	"github.com/stormhall/qw-bot-discord/internal/domain/contest"
	qwerr "github.com/stormhall/qw-bot-discord/internal/errors"
)

type inMemoryRepository struct {
	mu           sync.RWMutex
	records      map[string]*contest.Record
	byChannel    map[string][]string // channelID -> record IDs
	byMessage    map[string]string   // messageID -> record ID
	timeProvider TimeProvider
}

// NewInMemoryRepository creates a new in-memory contest repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		records:      make(map[string]*contest.Record),
		byChannel:    make(map[string][]string),
		byMessage:    make(map[string]string),
		timeProvider: NewRealTimeProvider(),
	}
}

// Create stores a new contest record
func (r *inMemoryRepository) Create(ctx context.Context, record *contest.Record) error {
	if record == nil {
		return qwerr.InvalidArgument("record cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[record.ID]; exists {
		return qwerr.AlreadyExists("contest already exists: " + record.ID)
	}

	now := r.timeProvider.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	r.records[record.ID] = record.Clone()
	r.byChannel[record.ChannelID] = append(r.byChannel[record.ChannelID], record.ID)
	if record.MessageID != "" {
		r.byMessage[record.MessageID] = record.ID
	}

	return nil
}

// Get retrieves a contest record by ID
func (r *inMemoryRepository) Get(ctx context.Context, id string) (*contest.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.records[id]
	if !exists {
		return nil, qwerr.NotFoundf("contest not found: %s", id)
	}

	return record.Clone(), nil
}

// GetByMessage retrieves a contest record by its feed message handle
func (r *inMemoryRepository) GetByMessage(ctx context.Context, messageID string) (*contest.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byMessage[messageID]
	if !exists {
		return nil, qwerr.NotFoundf("no contest for message: %s", messageID)
	}

	return r.records[id].Clone(), nil
}

// Update modifies an existing contest record
func (r *inMemoryRepository) Update(ctx context.Context, record *contest.Record) error {
	if record == nil {
		return qwerr.InvalidArgument("record cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	old, exists := r.records[record.ID]
	if !exists {
		return qwerr.NotFoundf("contest not found: %s", record.ID)
	}

	// Update message index if the card was re-posted
	if old.MessageID != record.MessageID {
		if old.MessageID != "" {
			delete(r.byMessage, old.MessageID)
		}
		if record.MessageID != "" {
			r.byMessage[record.MessageID] = record.ID
		}
	}

	record.UpdatedAt = r.timeProvider.Now()
	r.records[record.ID] = record.Clone()
	return nil
}

// Delete removes a contest record
func (r *inMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.records[id]
	if !exists {
		return qwerr.NotFoundf("contest not found: %s", id)
	}

	delete(r.records, id)

	channelRecords := r.byChannel[record.ChannelID]
	for i, rid := range channelRecords {
		if rid == id {
			r.byChannel[record.ChannelID] = append(channelRecords[:i], channelRecords[i+1:]...)
			break
		}
	}

	if record.MessageID != "" {
		delete(r.byMessage, record.MessageID)
	}

	return nil
}

// ListByChannel retrieves all contest records posted to a channel
func (r *inMemoryRepository) ListByChannel(ctx context.Context, channelID string) ([]*contest.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byChannel[channelID]
	records := make([]*contest.Record, 0, len(ids))
	for _, id := range ids {
		if record, exists := r.records[id]; exists {
			records = append(records, record.Clone())
		}
	}

	return records, nil
}
