// Package storypoints is the ledger for the spendable bonus resource. It
// runs in one of two modes: a shared pool the whole table draws from, or a
// personal balance per party.
package storypoints

//go:generate mockgen -destination=mock/mock_service.go -package=mockstorypoints -source=service.go

import (
	"context"
	"log"

	qwerr "github.com/stormhall/qw-bot-discord/internal/errors"
	"github.com/stormhall/qw-bot-discord/internal/events"
	storypointrepo "github.com/stormhall/qw-bot-discord/internal/repositories/storypoints"
	"github.com/stormhall/qw-bot-discord/internal/services/arbiter"
)

// SpendResult reports whether a spend actually debited a point
type SpendResult int

const (
	// SpendSuccess means a point was debited
	SpendSuccess SpendResult = iota

	// SpendEmpty means the pool or balance was already at zero
	SpendEmpty
)

// Service manages the story point pool and balances
type Service interface {
	// SpendFromPool debits the shared pool. Arbiter only.
	SpendFromPool(ctx context.Context, sessionID, channelID string) (SpendResult, error)

	// SpendFromBalance debits a party's personal balance
	SpendFromBalance(ctx context.Context, channelID, partyID string) (SpendResult, error)

	// SpendFor debits whichever counter the active mode uses. The party's
	// session identity is required on the shared-pool path.
	SpendFor(ctx context.Context, sessionID, channelID, partyID string) (SpendResult, error)

	// RefreshPool resets the shared pool to the party count. Arbiter only.
	RefreshPool(ctx context.Context, sessionID, channelID string, partyCount int) error

	// AwardToBalance grants one point to a party. Arbiter only.
	AwardToBalance(ctx context.Context, sessionID, channelID, partyID string) error

	// RefreshAllBalances resets every listed party's balance to one point.
	// Arbiter only.
	RefreshAllBalances(ctx context.Context, sessionID, channelID string, partyIDs []string) error

	// Points returns the counter the active mode would spend from
	Points(ctx context.Context, channelID, partyID string) (int, error)
}

type service struct {
	repository storypointrepo.Repository
	channel    arbiter.Channel
	bus        *events.Bus
	individual bool
}

// ServiceConfig holds the dependencies for the story point service
type ServiceConfig struct {
	Repository storypointrepo.Repository
	Channel    arbiter.Channel
	Bus        *events.Bus

	// Individual selects per-party balances instead of the shared pool
	Individual bool
}

// NewService creates a new story point service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Repository == nil {
		panic("repository is required")
	}
	if cfg.Channel == nil {
		panic("arbitration channel is required")
	}
	if cfg.Bus == nil {
		panic("event bus is required")
	}

	return &service{
		repository: cfg.Repository,
		channel:    cfg.Channel,
		bus:        cfg.Bus,
		individual: cfg.Individual,
	}
}

func (s *service) requireArbiter(sessionID string) error {
	if !s.channel.IsArbiter(sessionID) {
		return qwerr.PermissionDeniedf("session %s is not the arbiter", sessionID)
	}
	return nil
}

// SpendFromPool debits the shared pool
func (s *service) SpendFromPool(ctx context.Context, sessionID, channelID string) (SpendResult, error) {
	if err := s.requireArbiter(sessionID); err != nil {
		return SpendEmpty, err
	}

	points, err := s.repository.GetPool(ctx, channelID)
	if err != nil {
		return SpendEmpty, err
	}
	if points <= 0 {
		return SpendEmpty, nil
	}

	if err := s.repository.SetPool(ctx, channelID, points-1); err != nil {
		return SpendEmpty, err
	}

	s.announce("", points-1)
	return SpendSuccess, nil
}

// SpendFromBalance debits a party's personal balance
func (s *service) SpendFromBalance(ctx context.Context, channelID, partyID string) (SpendResult, error) {
	points, err := s.repository.GetBalance(ctx, channelID, partyID)
	if err != nil {
		return SpendEmpty, err
	}
	if points <= 0 {
		return SpendEmpty, nil
	}

	if err := s.repository.SetBalance(ctx, channelID, partyID, points-1); err != nil {
		return SpendEmpty, err
	}

	s.announce(partyID, points-1)
	return SpendSuccess, nil
}

// SpendFor debits whichever counter the active mode uses
func (s *service) SpendFor(ctx context.Context, sessionID, channelID, partyID string) (SpendResult, error) {
	if s.individual {
		return s.SpendFromBalance(ctx, channelID, partyID)
	}
	return s.SpendFromPool(ctx, sessionID, channelID)
}

// RefreshPool resets the shared pool to the party count
func (s *service) RefreshPool(ctx context.Context, sessionID, channelID string, partyCount int) error {
	if err := s.requireArbiter(sessionID); err != nil {
		return err
	}
	if partyCount < 0 {
		return qwerr.InvalidArgumentf("party count cannot be negative: %d", partyCount)
	}

	if err := s.repository.SetPool(ctx, channelID, partyCount); err != nil {
		return err
	}

	s.announce("", partyCount)
	return nil
}

// AwardToBalance grants one point to a party
func (s *service) AwardToBalance(ctx context.Context, sessionID, channelID, partyID string) error {
	if err := s.requireArbiter(sessionID); err != nil {
		return err
	}

	points, err := s.repository.GetBalance(ctx, channelID, partyID)
	if err != nil {
		return err
	}

	if err := s.repository.SetBalance(ctx, channelID, partyID, points+1); err != nil {
		return err
	}

	s.announce(partyID, points+1)
	return nil
}

// RefreshAllBalances resets every listed party's balance to one point
func (s *service) RefreshAllBalances(ctx context.Context, sessionID, channelID string, partyIDs []string) error {
	if err := s.requireArbiter(sessionID); err != nil {
		return err
	}

	for _, partyID := range partyIDs {
		if err := s.repository.SetBalance(ctx, channelID, partyID, 1); err != nil {
			return err
		}
		s.announce(partyID, 1)
	}

	return nil
}

// Points returns the counter the active mode would spend from
func (s *service) Points(ctx context.Context, channelID, partyID string) (int, error) {
	if s.individual {
		return s.repository.GetBalance(ctx, channelID, partyID)
	}
	return s.repository.GetPool(ctx, channelID)
}

func (s *service) announce(partyID string, points int) {
	if err := s.bus.Emit(&events.StoryPointsEvent{PartyID: partyID, Points: points}); err != nil {
		log.Printf("story point broadcast failed: %v", err)
	}
}
