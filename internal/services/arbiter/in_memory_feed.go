package arbiter

import (
	"context"
	"fmt"
	"sync"

	"github.com/stormhall/qw-bot-discord/internal/domain/contest"
	qwerr "github.com/stormhall/qw-bot-discord/internal/errors"
)

type feedMessage struct {
	id     string
	record *contest.Record
}

// InMemoryFeed is an append-only message feed held in memory, used in tests
// and when running without a transport.
type InMemoryFeed struct {
	mu       sync.Mutex
	channels map[string][]feedMessage
	seq      int
}

// NewInMemoryFeed creates an empty feed
func NewInMemoryFeed() *InMemoryFeed {
	return &InMemoryFeed{
		channels: make(map[string][]feedMessage),
	}
}

// Post implements Feed.Post
func (f *InMemoryFeed) Post(ctx context.Context, channelID string, record *contest.Record) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	id := fmt.Sprintf("msg-%d", f.seq)
	f.channels[channelID] = append(f.channels[channelID], feedMessage{id: id, record: record.Clone()})
	return id, nil
}

// Edit implements Feed.Edit
func (f *InMemoryFeed) Edit(ctx context.Context, channelID, messageID string, record *contest.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, msg := range f.channels[channelID] {
		if msg.id == messageID {
			f.channels[channelID][i].record = record.Clone()
			return nil
		}
	}
	return qwerr.NotFoundf("message not found: %s", messageID)
}

// Delete implements Feed.Delete
func (f *InMemoryFeed) Delete(ctx context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	msgs := f.channels[channelID]
	for i, msg := range msgs {
		if msg.id == messageID {
			f.channels[channelID] = append(msgs[:i], msgs[i+1:]...)
			return nil
		}
	}
	return qwerr.NotFoundf("message not found: %s", messageID)
}

// LatestMessageID implements Feed.LatestMessageID
func (f *InMemoryFeed) LatestMessageID(ctx context.Context, channelID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	msgs := f.channels[channelID]
	if len(msgs) == 0 {
		return "", nil
	}
	return msgs[len(msgs)-1].id, nil
}

// Messages returns the current feed order for a channel (newest last)
func (f *InMemoryFeed) Messages(channelID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]string, 0, len(f.channels[channelID]))
	for _, msg := range f.channels[channelID] {
		ids = append(ids, msg.id)
	}
	return ids
}
