// Package discord is the host glue: it translates slash commands and
// component clicks into service calls carrying the caller's session
// identity, and registers sessions with the arbitration channel.
package discord

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/stormhall/qw-bot-discord/internal/domain/contest"
	qwerr "github.com/stormhall/qw-bot-discord/internal/errors"
	"github.com/stormhall/qw-bot-discord/internal/rating"
	"github.com/stormhall/qw-bot-discord/internal/rules"
	"github.com/stormhall/qw-bot-discord/internal/services/arbiter"
	contestsvc "github.com/stormhall/qw-bot-discord/internal/services/contest"
	"github.com/stormhall/qw-bot-discord/internal/services/storypoints"
)

// Handler handles all Discord interactions
type Handler struct {
	contests    contestsvc.Service
	storyPoints storypoints.Service
	channel     arbiter.Channel
	tableKey    string
}

// HandlerConfig holds configuration for the Discord handler
type HandlerConfig struct {
	ContestService    contestsvc.Service
	StoryPointService storypoints.Service
	Channel           arbiter.Channel
	DifficultyTable   string
}

// NewHandler creates a new Discord handler
func NewHandler(cfg *HandlerConfig) *Handler {
	if cfg.ContestService == nil {
		panic("contest service is required")
	}
	if cfg.StoryPointService == nil {
		panic("story point service is required")
	}
	if cfg.Channel == nil {
		panic("arbitration channel is required")
	}

	return &Handler{
		contests:    cfg.ContestService,
		storyPoints: cfg.StoryPointService,
		channel:     cfg.Channel,
		tableKey:    cfg.DifficultyTable,
	}
}

// RegisterCommands registers the slash commands, guild-scoped when guildID
// is set
func (h *Handler) RegisterCommands(s *discordgo.Session, appID, guildID string) error {
	difficultyChoices, err := h.difficultyChoices()
	if err != nil {
		return err
	}

	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "contest",
			Description: "Run a contest",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "Propose a contest with your tactic",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "tactic", Description: "What you are attempting", Required: true},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "rating", Description: "Tactic rating (1-20)", Required: true},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "masteries", Description: "Tactic masteries", Required: false},
						{Type: discordgo.ApplicationCommandOptionString, Name: "benefit", Description: "Benefit as Name:+5 or Name:+M", Required: false},
						{Type: discordgo.ApplicationCommandOptionString, Name: "consequence", Description: "Consequence as Name:-5", Required: false},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "difficulty",
					Description: "Set the resistance for the open contest (GM)",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "level", Description: "Difficulty level", Required: false, Choices: difficultyChoices},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "manual", Description: "Hand-entered resistance rank", Required: false},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "modifier", Description: "Extra difficulty modifier", Required: false},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "gm",
					Description: "Claim the arbiter seat for this table",
				},
			},
		},
		{
			Name:        "storypoints",
			Description: "Manage story points",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "refresh",
					Description: "Reset the shared pool to the party count (GM)",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "count", Description: "Party count", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "award",
					Description: "Award a story point to a player (GM)",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "player", Description: "Recipient", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Show your available story points",
				},
			},
		},
	}

	if _, err := s.ApplicationCommandBulkOverwrite(appID, guildID, commands); err != nil {
		return qwerr.Wrap(err, "failed to register commands")
	}
	return nil
}

func (h *Handler) difficultyChoices() ([]*discordgo.ApplicationCommandOptionChoice, error) {
	levels, err := rules.ListLevels(h.tableKey)
	if err != nil {
		return nil, err
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(levels)+1)
	for _, l := range levels {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: l.Label, Value: l.Key})
	}
	choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
		Name:  "Manual entry",
		Value: contest.ManualDifficultyLevel,
	})
	return choices, nil
}

// HandleInteraction dispatches every incoming interaction
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := interactionUserID(i)
	if userID == "" {
		return
	}

	// Every interacting user is a viewing session. The arbiter seat is
	// claimed explicitly, but a moderator fills a vacant seat on sight so
	// tables work without ceremony.
	h.channel.Join(userID)
	if _, taken := h.channel.ArbiterID(); !taken && hasManagePermission(i) {
		if err := h.channel.GrantArbiter(userID); err != nil {
			log.Printf("failed to seat arbiter %s: %v", userID, err)
		}
	}

	ctx := context.Background()

	var err error
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		err = h.handleCommand(ctx, s, i, userID)
	case discordgo.InteractionMessageComponent:
		err = h.handleComponent(ctx, s, i, userID)
	default:
		return
	}

	if err != nil {
		h.respondError(s, i, err)
	}
}

func (h *Handler) handleCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID string) error {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return qwerr.InvalidArgument("missing subcommand")
	}
	sub := data.Options[0]

	switch data.Name + " " + sub.Name {
	case "contest start":
		return h.handleContestStart(ctx, s, i, userID, sub)
	case "contest difficulty":
		return h.handleContestDifficulty(ctx, s, i, userID, sub)
	case "contest gm":
		if err := h.channel.GrantArbiter(userID); err != nil {
			return err
		}
		return respondEphemeral(s, i, "You hold the arbiter seat for this table.")
	case "storypoints refresh":
		count := int(sub.Options[0].IntValue())
		if err := h.storyPoints.RefreshPool(ctx, userID, i.ChannelID, count); err != nil {
			return err
		}
		return respondEphemeral(s, i, fmt.Sprintf("Story point pool refreshed to %d.", count))
	case "storypoints award":
		player := sub.Options[0].UserValue(s)
		if err := h.storyPoints.AwardToBalance(ctx, userID, i.ChannelID, player.ID); err != nil {
			return err
		}
		return respondEphemeral(s, i, fmt.Sprintf("Story point awarded to <@%s>.", player.ID))
	case "storypoints show":
		points, err := h.storyPoints.Points(ctx, i.ChannelID, userID)
		if err != nil {
			return err
		}
		return respondEphemeral(s, i, fmt.Sprintf("Story points available: %d", points))
	default:
		return qwerr.InvalidArgumentf("unknown command: %s %s", data.Name, sub.Name)
	}
}

func (h *Handler) handleContestStart(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID string, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	input := &contestsvc.CreateContestInput{
		ChannelID:       i.ChannelID,
		DifficultyLevel: contest.ManualDifficultyLevel,
	}

	var rank, masteries int
	for _, opt := range sub.Options {
		switch opt.Name {
		case "tactic":
			input.TacticName = opt.StringValue()
		case "rating":
			rank = int(opt.IntValue())
		case "masteries":
			masteries = int(opt.IntValue())
		case "benefit":
			b, err := parseBenefit(opt.StringValue(), contest.VariantBenefit)
			if err != nil {
				return err
			}
			input.Benefits = append(input.Benefits, b)
		case "consequence":
			b, err := parseBenefit(opt.StringValue(), contest.VariantConsequence)
			if err != nil {
				return err
			}
			input.Benefits = append(input.Benefits, b)
		}
	}
	input.Tactic = rating.New(rank, masteries)

	record, err := h.contests.CreateContest(ctx, userID, input)
	if err != nil {
		return err
	}

	return respondEphemeral(s, i, fmt.Sprintf("Contest posted: %s (%s)",
		record.TacticName, h.contests.FormatRating(record.Tactic, false)))
}

func (h *Handler) handleContestDifficulty(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID string, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	record, err := h.contests.LatestOpenContest(ctx, i.ChannelID)
	if err != nil {
		return err
	}

	diff := &contestsvc.NegotiationDiff{}
	for _, opt := range sub.Options {
		switch opt.Name {
		case "level":
			level := opt.StringValue()
			diff.DifficultyLevel = &level
		case "manual":
			manual := int(opt.IntValue())
			diff.ManualDifficulty = &manual
		case "modifier":
			modifier := int(opt.IntValue())
			diff.DifficultyModifier = &modifier
		}
	}

	committed, err := h.contests.UpdateNegotiation(ctx, userID, record.ID, diff)
	if err != nil {
		return err
	}

	return respondEphemeral(s, i, fmt.Sprintf("Resistance set to %s.",
		h.contests.FormatRating(committed.Resistance, false)))
}

func (h *Handler) handleComponent(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID string) error {
	data := i.MessageComponentData()

	parts := strings.Split(data.CustomID, ":")
	if len(parts) != 3 || parts[0] != "qw" {
		return nil
	}
	prefix := parts[0] + ":" + parts[1]
	contestID := parts[2]

	switch prefix {
	case customIDOver:
		over := true
		_, err := h.contests.UpdateNegotiation(ctx, userID, contestID, &contestsvc.NegotiationDiff{NegotiationOver: &over})
		if err != nil {
			return err
		}
	case customIDApprove:
		if _, err := h.contests.Approve(ctx, userID, contestID); err != nil {
			return err
		}
	case customIDWaiting:
		if _, err := h.contests.ToggleWaiting(ctx, userID, contestID); err != nil {
			return err
		}
	case customIDRoll:
		if _, err := h.contests.Roll(ctx, userID, contestID); err != nil {
			return err
		}
	case customIDStoryPoint:
		result, _, err := h.contests.SpendStoryPoint(ctx, userID, contestID)
		if err != nil {
			return err
		}
		if result == storypoints.SpendEmpty {
			return respondEphemeral(s, i, "No story points left to spend.")
		}
	case customIDBenefits:
		if err := h.applyBenefitSelection(ctx, userID, contestID, data.Values); err != nil {
			return err
		}
	default:
		return nil
	}

	// The committed mutation already re-rendered the card through the feed
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

// applyBenefitSelection reconciles the picker's selected values against the
// full benefit set, deselecting anything omitted
func (h *Handler) applyBenefitSelection(ctx context.Context, userID, contestID string, values []string) error {
	record, err := h.contests.GetContest(ctx, contestID)
	if err != nil {
		return err
	}

	selections := make(map[string]bool, len(record.Benefits))
	for id := range record.Benefits {
		selections[id] = false
	}
	for _, id := range values {
		selections[id] = true
	}

	_, err = h.contests.UpdateNegotiation(ctx, userID, contestID, &contestsvc.NegotiationDiff{
		BenefitSelections: selections,
	})
	return err
}

// parseBenefit parses "Name:+5" style input into a benefit modifier
func parseBenefit(input string, variant contest.Variant) (*contest.BenefitModifier, error) {
	name, value, found := strings.Cut(input, ":")
	if !found || strings.TrimSpace(name) == "" {
		return nil, qwerr.InvalidArgumentf("expected Name:+5 format, got %q", input)
	}

	r, err := rating.ParseModifier(strings.TrimSpace(value))
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	return &contest.BenefitModifier{
		ID:      strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		Name:    name,
		Variant: variant,
		Rating:  r,
	}, nil
}

func (h *Handler) respondError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	message := "Something went wrong."
	switch {
	case qwerr.IsPermissionDenied(err):
		message = "You are not allowed to do that."
	case qwerr.IsUnavailable(err):
		message = "No GM is seated at this table yet. A GM must run /contest gm first."
	case qwerr.IsFailedPrecondition(err), qwerr.IsInvalidArgument(err), qwerr.IsValidation(err), qwerr.IsNotFound(err):
		message = err.Error()
	default:
		log.Printf("interaction failed: %v", err)
	}

	if respondErr := respondEphemeral(s, i, message); respondErr != nil {
		log.Printf("failed to respond with error: %v", respondErr)
	}
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func hasManagePermission(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionManageServer != 0
}
