// Package arbiter is the trust layer for shared contest state. Every
// authoritative write is routed through the single session holding the
// arbiter role; other sessions submit proposals and wait for the committed
// result to come back over the broadcast bus.
package arbiter

//go:generate mockgen -destination=mock/mock_channel.go -package=mockarbiter -source=channel.go

import (
	"context"
	"log"
	"sync"

	"github.com/stormhall/qw-bot-discord/internal/domain/contest"
	qwerr "github.com/stormhall/qw-bot-discord/internal/errors"
	"github.com/stormhall/qw-bot-discord/internal/events"
	"github.com/stormhall/qw-bot-discord/internal/repositories/contests"
)

// Mutation applies a change to the authoritative copy of a record. It runs
// on the arbiter's loop; returning an error abandons the commit with no
// partial effect.
type Mutation func(record *contest.Record) error

// Channel serializes all authoritative writes to shared contest state
// through exactly one trusted session.
type Channel interface {
	// Join registers a viewing session
	Join(sessionID string)

	// Leave removes a session; a departing arbiter vacates the role
	Leave(sessionID string)

	// GrantArbiter hands the arbiter role to a joined session, replacing
	// any previous holder. At most one session holds the role at a time.
	GrantArbiter(sessionID string) error

	// ArbiterID returns the current arbiter session, if any
	ArbiterID() (string, bool)

	// IsArbiter reports whether the session currently holds the role
	IsArbiter(sessionID string) bool

	// ProposeCreate commits a brand new record and posts its card
	ProposeCreate(ctx context.Context, sessionID string, record *contest.Record) (*contest.Record, error)

	// ProposeMutation commits a change to an existing record. The caller
	// never applies the mutation locally; it receives the committed copy.
	ProposeMutation(ctx context.Context, sessionID, contestID string, mutate Mutation) (*contest.Record, error)

	// Shutdown stops the commit loop
	Shutdown()
}

// Feed is the append-only message feed a contest card lives in. The
// transport-level handle (message ID) changes on re-post; the record ID
// does not.
type Feed interface {
	// Post appends a card for the record and returns its message handle
	Post(ctx context.Context, channelID string, record *contest.Record) (string, error)

	// Edit updates the card in place
	Edit(ctx context.Context, channelID, messageID string, record *contest.Record) error

	// Delete removes a stale card
	Delete(ctx context.Context, channelID, messageID string) error

	// LatestMessageID returns the handle of the newest message in the feed
	LatestMessageID(ctx context.Context, channelID string) (string, error)
}

type request struct {
	ctx       context.Context
	sessionID string
	contestID string
	record    *contest.Record // set for creates
	mutate    Mutation        // set for mutations
	reply     chan response
}

type response struct {
	record *contest.Record
	err    error
}

type channel struct {
	mu        sync.RWMutex
	sessions  map[string]struct{}
	arbiterID string

	requests     chan *request
	done         chan struct{}
	shutdownOnce sync.Once

	repository contests.Repository
	feed       Feed
	bus        *events.Bus
}

// Config holds the collaborators for a channel
type Config struct {
	Repository contests.Repository
	Feed       Feed
	Bus        *events.Bus
}

// New creates a channel and starts its commit loop
func New(cfg *Config) Channel {
	if cfg.Repository == nil {
		panic("repository is required")
	}
	if cfg.Feed == nil {
		panic("feed is required")
	}
	if cfg.Bus == nil {
		panic("event bus is required")
	}

	c := &channel{
		sessions:   make(map[string]struct{}),
		requests:   make(chan *request, 16),
		done:       make(chan struct{}),
		repository: cfg.Repository,
		feed:       cfg.Feed,
		bus:        cfg.Bus,
	}

	go c.loop()
	return c
}

func (c *channel) Join(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[sessionID] = struct{}{}
}

func (c *channel) Leave(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, sessionID)
	if c.arbiterID == sessionID {
		c.arbiterID = ""
		log.Printf("arbiter session %s left, role is vacant", sessionID)
	}
}

func (c *channel) GrantArbiter(sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, joined := c.sessions[sessionID]; !joined {
		return qwerr.NotFoundf("session not joined: %s", sessionID)
	}
	c.arbiterID = sessionID
	return nil
}

func (c *channel) ArbiterID() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.arbiterID, c.arbiterID != ""
}

func (c *channel) IsArbiter(sessionID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.arbiterID != "" && c.arbiterID == sessionID
}

func (c *channel) ProposeCreate(ctx context.Context, sessionID string, record *contest.Record) (*contest.Record, error) {
	return c.submit(ctx, &request{
		ctx:       ctx,
		sessionID: sessionID,
		record:    record,
		reply:     make(chan response, 1),
	})
}

func (c *channel) ProposeMutation(ctx context.Context, sessionID, contestID string, mutate Mutation) (*contest.Record, error) {
	return c.submit(ctx, &request{
		ctx:       ctx,
		sessionID: sessionID,
		contestID: contestID,
		mutate:    mutate,
		reply:     make(chan response, 1),
	})
}

// submit enqueues a request for the arbiter loop and awaits the committed
// result. Without an arbiter session there is nowhere to run the commit,
// so the proposal fails immediately and is not retried.
func (c *channel) submit(ctx context.Context, req *request) (*contest.Record, error) {
	if _, ok := c.ArbiterID(); !ok {
		return nil, qwerr.Unavailable("no arbiter session available")
	}

	select {
	case c.requests <- req:
	case <-c.done:
		return nil, qwerr.Unavailable("arbitration channel is shut down")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	// The loop may exit with requests still queued, so the reply wait has
	// to observe shutdown too or a queued proposer would block forever.
	select {
	case res := <-req.reply:
		return res.record, res.err
	case <-c.done:
		return nil, qwerr.Unavailable("arbitration channel is shut down")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *channel) Shutdown() {
	c.shutdownOnce.Do(func() { close(c.done) })
}

// loop is the arbiter's event loop: proposals are applied strictly in the
// order they arrive, which is the only ordering guarantee the system makes.
func (c *channel) loop() {
	for {
		select {
		case req := <-c.requests:
			var res response
			if req.record != nil {
				res.record, res.err = c.commitCreate(req)
			} else {
				res.record, res.err = c.commitMutation(req)
			}
			req.reply <- res
		case <-c.done:
			return
		}
	}
}

func (c *channel) commitCreate(req *request) (*contest.Record, error) {
	ctx := req.ctx
	record := req.record

	if err := c.repository.Create(ctx, record); err != nil {
		return nil, err
	}

	messageID, err := c.feed.Post(ctx, record.ChannelID, record)
	if err != nil {
		return nil, qwerr.Wrap(err, "failed to post contest card")
	}
	record.MessageID = messageID

	if err := c.repository.Update(ctx, record); err != nil {
		return nil, err
	}

	c.broadcast(events.EventTypeContestCreated, record)
	return record, nil
}

func (c *channel) commitMutation(req *request) (*contest.Record, error) {
	ctx := req.ctx

	record, err := c.repository.Get(ctx, req.contestID)
	if err != nil {
		return nil, err
	}

	wasResolved := record.Resolved()
	if err := req.mutate(record); err != nil {
		return nil, err
	}

	if err := c.republish(ctx, record); err != nil {
		return nil, err
	}

	if err := c.repository.Update(ctx, record); err != nil {
		return nil, err
	}

	eventType := events.EventTypeContestUpdated
	if !wasResolved && record.Resolved() {
		eventType = events.EventTypeContestResolved
	}
	c.broadcast(eventType, record)

	return record, nil
}

// republish keeps the card at the bottom of the append-only feed: if the
// record's message is no longer the newest one, the stale card is deleted
// and a fresh one posted under a new transport handle.
func (c *channel) republish(ctx context.Context, record *contest.Record) error {
	latest, err := c.feed.LatestMessageID(ctx, record.ChannelID)
	if err != nil {
		return qwerr.Wrap(err, "failed to read feed")
	}

	if record.MessageID != "" && record.MessageID == latest {
		if err := c.feed.Edit(ctx, record.ChannelID, record.MessageID, record); err != nil {
			return qwerr.Wrap(err, "failed to edit contest card")
		}
		return nil
	}

	if record.MessageID != "" {
		if err := c.feed.Delete(ctx, record.ChannelID, record.MessageID); err != nil {
			log.Printf("failed to delete stale contest card %s: %v", record.MessageID, err)
		}
	}

	messageID, err := c.feed.Post(ctx, record.ChannelID, record)
	if err != nil {
		return qwerr.Wrap(err, "failed to re-post contest card")
	}
	record.MessageID = messageID
	return nil
}

func (c *channel) broadcast(eventType events.EventType, record *contest.Record) {
	if err := c.bus.Emit(&events.ContestEvent{Type: eventType, Record: record.Clone()}); err != nil {
		log.Printf("broadcast failed for contest %s: %v", record.ID, err)
	}
}
