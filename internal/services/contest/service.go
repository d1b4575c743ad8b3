// Package contest is the application service for running contests: it owns
// the negotiation state machine and role gating, delegates all authoritative
// writes to the arbitration channel, and leans on the engine for every
// derived number.
package contest

//go:generate mockgen -destination=mock/mock_service.go -package=mockcontest -source=service.go

import (
	"context"

	"github.com/stormhall/qw-bot-discord/internal/config"
	"github.com/stormhall/qw-bot-discord/internal/domain/contest"
	qwerr "github.com/stormhall/qw-bot-discord/internal/errors"
	"github.com/stormhall/qw-bot-discord/internal/rating"
	contestrepo "github.com/stormhall/qw-bot-discord/internal/repositories/contests"
	"github.com/stormhall/qw-bot-discord/internal/rules"
	"github.com/stormhall/qw-bot-discord/internal/services/arbiter"
	"github.com/stormhall/qw-bot-discord/internal/services/storypoints"
	"github.com/stormhall/qw-bot-discord/internal/uuid"
)

// CreateContestInput carries everything needed to open a new contest card
type CreateContestInput struct {
	ChannelID  string
	TacticName string
	Tactic     rating.Rating

	// Benefits is the proposing party's eligible modifiers, all unselected
	// until toggled during negotiation
	Benefits []*contest.BenefitModifier

	// DifficultyLevel is the starting level key; empty means the table's
	// base difficulty
	DifficultyLevel string
}

// NegotiationDiff is a partial update to a contest under negotiation. Nil
// fields are left untouched. Tactic-side fields may only be set by the
// proposing party; resistance-side fields only by the arbiter.
type NegotiationDiff struct {
	TacticName          *string
	Tactic              *rating.Rating
	SituationalModifier *int

	// BenefitSelections toggles benefits by id
	BenefitSelections map[string]bool

	// NegotiationOver marks the proposer's edits finished, handing the
	// card to the arbiter for approval
	NegotiationOver *bool

	DifficultyLevel    *string
	ManualDifficulty   *int
	DifficultyModifier *int
}

// Service manages contests from creation through resolution
type Service interface {
	// CreateContest opens a contest owned by the calling session and posts
	// its card to the channel feed
	CreateContest(ctx context.Context, sessionID string, input *CreateContestInput) (*contest.Record, error)

	// GetContest retrieves a contest by ID
	GetContest(ctx context.Context, contestID string) (*contest.Record, error)

	// LatestOpenContest returns the newest unresolved contest in a channel
	LatestOpenContest(ctx context.Context, channelID string) (*contest.Record, error)

	// UpdateNegotiation applies a partial edit during negotiation
	UpdateNegotiation(ctx context.Context, sessionID, contestID string, diff *NegotiationDiff) (*contest.Record, error)

	// Approve moves a negotiated contest to ready-to-roll. Arbiter only.
	// Assured contests resolve immediately without dice.
	Approve(ctx context.Context, sessionID, contestID string) (*contest.Record, error)

	// ToggleWaiting flips the waiting-for-party flag, reopening or closing
	// negotiation before approval. Arbiter only.
	ToggleWaiting(ctx context.Context, sessionID, contestID string) (*contest.Record, error)

	// Roll resolves the contest. Owner or arbiter only.
	Roll(ctx context.Context, sessionID, contestID string) (*contest.Record, error)

	// SpendStoryPoint debits the ledger and banks one bonus success for the
	// party's roll. Owner only, and only before resolution.
	SpendStoryPoint(ctx context.Context, sessionID, contestID string) (storypoints.SpendResult, *contest.Record, error)

	// FormatRating renders a rating for display
	FormatRating(r rating.Rating, isModifier bool) string
}

type service struct {
	engine        *Engine
	channel       arbiter.Channel
	repository    contestrepo.Repository
	storyPoints   storypoints.Service
	uuidGenerator uuid.Generator

	tableKey string
	useRunes bool
}

// ServiceConfig holds the dependencies for the contest service
type ServiceConfig struct {
	Engine        *Engine
	Channel       arbiter.Channel
	Repository    contestrepo.Repository
	StoryPoints   storypoints.Service
	UUIDGenerator uuid.Generator
	Rules         config.RulesConfig
}

// NewService creates a new contest service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Engine == nil {
		panic("engine is required")
	}
	if cfg.Channel == nil {
		panic("arbitration channel is required")
	}
	if cfg.Repository == nil {
		panic("repository is required")
	}
	if cfg.StoryPoints == nil {
		panic("story point service is required")
	}
	if cfg.UUIDGenerator == nil {
		panic("uuid generator is required")
	}

	return &service{
		engine:        cfg.Engine,
		channel:       cfg.Channel,
		repository:    cfg.Repository,
		storyPoints:   cfg.StoryPoints,
		uuidGenerator: cfg.UUIDGenerator,
		tableKey:      cfg.Rules.DifficultyTable,
		useRunes:      cfg.Rules.UseRuneSymbols,
	}
}

// CreateContest opens a contest owned by the calling session
func (s *service) CreateContest(ctx context.Context, sessionID string, input *CreateContestInput) (*contest.Record, error) {
	if input == nil {
		return nil, qwerr.InvalidArgument("input cannot be nil")
	}
	if input.ChannelID == "" {
		return nil, qwerr.InvalidArgument("channel ID is required")
	}
	if err := s.validateLevel(input.DifficultyLevel); err != nil {
		return nil, err
	}

	record := &contest.Record{
		ID:              s.uuidGenerator.New(),
		OwnerID:         sessionID,
		TacticName:      input.TacticName,
		ChannelID:       input.ChannelID,
		WaitingForParty: true,
		Tactic:          rating.Rationalize(input.Tactic, false),
		Benefits:        make(map[string]*contest.BenefitModifier, len(input.Benefits)),
		DifficultyLevel: input.DifficultyLevel,
	}
	for _, b := range input.Benefits {
		if b.ID == "" {
			return nil, qwerr.InvalidArgument("benefit is missing an id")
		}
		copied := *b
		copied.Selected = false
		record.Benefits[b.ID] = &copied
	}

	if err := s.engine.Process(record); err != nil {
		return nil, err
	}

	return s.channel.ProposeCreate(ctx, sessionID, record)
}

// GetContest retrieves a contest by ID
func (s *service) GetContest(ctx context.Context, contestID string) (*contest.Record, error) {
	return s.repository.Get(ctx, contestID)
}

// LatestOpenContest returns the newest unresolved contest in a channel
func (s *service) LatestOpenContest(ctx context.Context, channelID string) (*contest.Record, error) {
	records, err := s.repository.ListByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	var latest *contest.Record
	for _, r := range records {
		if r.Closed {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, qwerr.NotFoundf("no open contest in channel: %s", channelID)
	}
	return latest, nil
}

// UpdateNegotiation applies a partial edit during negotiation
func (s *service) UpdateNegotiation(ctx context.Context, sessionID, contestID string, diff *NegotiationDiff) (*contest.Record, error) {
	if diff == nil {
		return nil, qwerr.InvalidArgument("diff cannot be nil")
	}
	if diff.DifficultyLevel != nil {
		if err := s.validateLevel(*diff.DifficultyLevel); err != nil {
			return nil, err
		}
	}

	// Role gating runs locally, before anything reaches the channel
	record, err := s.repository.Get(ctx, contestID)
	if err != nil {
		return nil, err
	}

	tacticEdit := diff.TacticName != nil || diff.Tactic != nil || diff.SituationalModifier != nil ||
		len(diff.BenefitSelections) > 0 || diff.NegotiationOver != nil
	resistanceEdit := diff.DifficultyLevel != nil || diff.ManualDifficulty != nil || diff.DifficultyModifier != nil

	if tacticEdit && !record.IsOwner(sessionID) {
		return nil, qwerr.PermissionDeniedf("session %s does not own contest %s", sessionID, contestID)
	}
	if resistanceEdit && !s.channel.IsArbiter(sessionID) {
		return nil, qwerr.PermissionDeniedf("session %s is not the arbiter", sessionID)
	}

	return s.channel.ProposeMutation(ctx, sessionID, contestID, func(r *contest.Record) error {
		if r.Closed {
			return qwerr.FailedPreconditionf("contest is already closed: %s", r.ID)
		}
		if r.ReadyToRoll {
			return qwerr.FailedPreconditionf("contest is already approved: %s", r.ID)
		}

		if diff.TacticName != nil {
			r.TacticName = *diff.TacticName
		}
		if diff.Tactic != nil {
			r.Tactic = rating.Rationalize(*diff.Tactic, false)
		}
		if diff.SituationalModifier != nil {
			r.SituationalModifier = *diff.SituationalModifier
		}
		for id, selected := range diff.BenefitSelections {
			benefit := r.Benefit(id)
			if benefit == nil {
				return qwerr.InvalidArgumentf("unknown benefit: %s", id)
			}
			benefit.Selected = selected
		}
		if diff.NegotiationOver != nil && *diff.NegotiationOver {
			r.WaitingForParty = false
		}

		if diff.DifficultyLevel != nil {
			r.DifficultyLevel = *diff.DifficultyLevel
		}
		if diff.ManualDifficulty != nil {
			r.ManualDifficulty = *diff.ManualDifficulty
		}
		if diff.DifficultyModifier != nil {
			r.DifficultyModifier = *diff.DifficultyModifier
		}

		return s.engine.Process(r)
	})
}

// Approve moves a negotiated contest to ready-to-roll
func (s *service) Approve(ctx context.Context, sessionID, contestID string) (*contest.Record, error) {
	if !s.channel.IsArbiter(sessionID) {
		return nil, qwerr.PermissionDeniedf("session %s is not the arbiter", sessionID)
	}

	return s.channel.ProposeMutation(ctx, sessionID, contestID, func(r *contest.Record) error {
		if r.Closed {
			return qwerr.FailedPreconditionf("contest is already closed: %s", r.ID)
		}
		if r.ReadyToRoll {
			return qwerr.FailedPreconditionf("contest is already approved: %s", r.ID)
		}
		if r.WaitingForParty {
			return qwerr.FailedPreconditionf("contest is still being negotiated: %s", r.ID)
		}

		if err := s.engine.Process(r); err != nil {
			return err
		}
		r.ReadyToRoll = true

		// Assured outcomes need no roll, so they resolve on approval
		if r.Assured {
			return s.engine.Resolve(r)
		}
		return nil
	})
}

// ToggleWaiting flips the waiting-for-party flag before approval
func (s *service) ToggleWaiting(ctx context.Context, sessionID, contestID string) (*contest.Record, error) {
	if !s.channel.IsArbiter(sessionID) {
		return nil, qwerr.PermissionDeniedf("session %s is not the arbiter", sessionID)
	}

	return s.channel.ProposeMutation(ctx, sessionID, contestID, func(r *contest.Record) error {
		if r.Closed {
			return qwerr.FailedPreconditionf("contest is already closed: %s", r.ID)
		}
		if r.ReadyToRoll {
			return qwerr.FailedPreconditionf("contest is already approved: %s", r.ID)
		}

		r.WaitingForParty = !r.WaitingForParty
		return nil
	})
}

// Roll resolves the contest
func (s *service) Roll(ctx context.Context, sessionID, contestID string) (*contest.Record, error) {
	record, err := s.repository.Get(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if !record.IsOwner(sessionID) && !s.channel.IsArbiter(sessionID) {
		return nil, qwerr.PermissionDeniedf("session %s may not roll contest %s", sessionID, contestID)
	}

	return s.channel.ProposeMutation(ctx, sessionID, contestID, func(r *contest.Record) error {
		return s.engine.Resolve(r)
	})
}

// SpendStoryPoint debits the ledger and banks one bonus success
func (s *service) SpendStoryPoint(ctx context.Context, sessionID, contestID string) (storypoints.SpendResult, *contest.Record, error) {
	record, err := s.repository.Get(ctx, contestID)
	if err != nil {
		return storypoints.SpendEmpty, nil, err
	}
	if !record.IsOwner(sessionID) {
		return storypoints.SpendEmpty, nil, qwerr.PermissionDeniedf("session %s does not own contest %s", sessionID, contestID)
	}
	if record.Closed || record.Resolved() {
		return storypoints.SpendEmpty, nil, qwerr.FailedPreconditionf("contest is already resolved: %s", contestID)
	}
	if record.StoryPointSpent {
		return storypoints.SpendEmpty, nil, qwerr.FailedPreconditionf("a story point was already spent on contest %s", contestID)
	}

	// The pool and balances are arbiter-mutated only, so the debit runs
	// under the arbiter's identity regardless of who asked
	arbiterID, ok := s.channel.ArbiterID()
	if !ok {
		return storypoints.SpendEmpty, nil, qwerr.Unavailable("no arbiter session available")
	}

	result, err := s.storyPoints.SpendFor(ctx, arbiterID, record.ChannelID, record.OwnerID)
	if err != nil {
		return storypoints.SpendEmpty, nil, err
	}
	if result == storypoints.SpendEmpty {
		return storypoints.SpendEmpty, record, nil
	}

	committed, err := s.channel.ProposeMutation(ctx, sessionID, contestID, func(r *contest.Record) error {
		if r.Closed {
			return qwerr.FailedPreconditionf("contest is already closed: %s", r.ID)
		}
		r.StoryPointSpent = true
		return s.engine.Process(r)
	})
	if err != nil {
		return storypoints.SpendEmpty, nil, err
	}

	return storypoints.SpendSuccess, committed, nil
}

// FormatRating renders a rating for display
func (s *service) FormatRating(r rating.Rating, isModifier bool) string {
	return rating.Format(r, isModifier, s.useRunes)
}

func (s *service) validateLevel(level string) error {
	if level == "" || level == contest.ManualDifficultyLevel {
		return nil
	}

	table, err := rules.Table(s.tableKey)
	if err != nil {
		return qwerr.Wrap(err, "failed to load difficulty table")
	}
	for _, l := range table.Levels {
		if l.Key == level {
			return nil
		}
	}
	return qwerr.InvalidArgumentf("unknown difficulty level: %s", level)
}
