package discord

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/stormhall/qw-bot-discord/internal/config"
	"github.com/stormhall/qw-bot-discord/internal/domain/contest"
	"github.com/stormhall/qw-bot-discord/internal/rating"
)

// Component custom ID prefixes. The contest ID rides in the suffix.
const (
	customIDOver       = "qw:over"
	customIDApprove    = "qw:approve"
	customIDWaiting    = "qw:waiting"
	customIDRoll       = "qw:roll"
	customIDStoryPoint = "qw:storypoint"
	customIDBenefits   = "qw:benefits"
)

var outcomeColors = map[bool]int{
	true:  0x2e7d32, // victory green
	false: 0xc62828, // defeat red
}

// CardRenderer builds the contest card message from a record. Rendering is
// pure: the same record always yields the same embed and component states.
type CardRenderer struct {
	classic  bool
	useRunes bool
}

// NewCardRenderer creates a renderer bound to the active display options
func NewCardRenderer(cfg config.RulesConfig) *CardRenderer {
	return &CardRenderer{
		classic:  cfg.ClassicOutcomes,
		useRunes: cfg.UseRuneSymbols,
	}
}

func (c *CardRenderer) format(r rating.Rating, isModifier bool) string {
	return rating.Format(r, isModifier, c.useRunes)
}

func (c *CardRenderer) phaseLine(record *contest.Record) string {
	switch {
	case record.Resolved():
		return "Resolved"
	case record.ReadyToRoll:
		return "Ready to roll"
	case record.WaitingForParty:
		return "Negotiating — waiting for the party"
	default:
		return "Awaiting approval"
	}
}

// Embed renders the card body
func (c *CardRenderer) Embed(record *contest.Record) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: record.TacticName,
		Color: 0x546e7a,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Tactic", Value: c.format(record.Tactic, false), Inline: true},
			{Name: "Total", Value: c.format(record.Total, false), Inline: true},
			{Name: "Resistance", Value: c.format(record.Resistance, false), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: c.phaseLine(record)},
	}

	if record.SituationalModifier != 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Situational",
			Value:  c.format(rating.Rationalize(rating.New(record.SituationalModifier, 0), true), true),
			Inline: true,
		})
	}

	if selected := c.selectedBenefits(record); selected != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("Benefits risked: %d", record.BenefitsRisked),
			Value: selected,
		})
	}

	if record.StoryPointSpent {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Story point",
			Value: "Spent: +1 success",
		})
	}

	if record.Outcome != nil {
		embed.Color = outcomeColors[record.Outcome.Victory || record.Outcome.Tie]
		value := record.Outcome.Text
		if record.PartyRoll != 0 {
			value = fmt.Sprintf("%s\nRolled %d vs %d (%d successes to %d)",
				record.Outcome.Text,
				record.PartyRoll, record.ResistanceRoll,
				record.PartySuccesses, record.ResistanceSuccesses)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Outcome",
			Value: value,
		})
	}

	return embed
}

func (c *CardRenderer) selectedBenefits(record *contest.Record) string {
	names := make([]string, 0, len(record.Benefits))
	for _, b := range record.Benefits {
		if !b.Selected {
			continue
		}
		names = append(names, fmt.Sprintf("%s (%s)", b.Name, c.format(b.Rating, true)))
	}
	sort.Strings(names)
	return strings.Join(names, "\n")
}

// Components renders the card's buttons and benefit picker, with each
// control enabled only in the phase and for the role that may use it.
func (c *CardRenderer) Components(record *contest.Record) []discordgo.MessageComponent {
	if record.Closed {
		return nil
	}

	negotiating := !record.ReadyToRoll

	var components []discordgo.MessageComponent

	if negotiating && len(record.Benefits) > 0 {
		components = append(components, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{c.benefitPicker(record)},
		})
	}

	buttons := []discordgo.MessageComponent{
		discordgo.Button{
			Label:    "Over",
			Style:    discordgo.SecondaryButton,
			CustomID: fmt.Sprintf("%s:%s", customIDOver, record.ID),
			Disabled: !negotiating || !record.WaitingForParty,
		},
		discordgo.Button{
			Label:    "Approve",
			Style:    discordgo.PrimaryButton,
			CustomID: fmt.Sprintf("%s:%s", customIDApprove, record.ID),
			Disabled: !negotiating || record.WaitingForParty,
		},
		discordgo.Button{
			Label:    "Reopen",
			Style:    discordgo.SecondaryButton,
			CustomID: fmt.Sprintf("%s:%s", customIDWaiting, record.ID),
			Disabled: !negotiating,
		},
		discordgo.Button{
			Label:    "Roll",
			Style:    discordgo.SuccessButton,
			CustomID: fmt.Sprintf("%s:%s", customIDRoll, record.ID),
			Disabled: !record.ReadyToRoll,
		},
		discordgo.Button{
			Label:    "Spend Story Point",
			Style:    discordgo.SecondaryButton,
			CustomID: fmt.Sprintf("%s:%s", customIDStoryPoint, record.ID),
			Disabled: record.StoryPointSpent,
		},
	}
	components = append(components, discordgo.ActionsRow{Components: buttons})

	return components
}

func (c *CardRenderer) benefitPicker(record *contest.Record) discordgo.SelectMenu {
	ids := make([]string, 0, len(record.Benefits))
	for id := range record.Benefits {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	options := make([]discordgo.SelectMenuOption, 0, len(ids))
	for _, id := range ids {
		b := record.Benefits[id]
		options = append(options, discordgo.SelectMenuOption{
			Label:       fmt.Sprintf("%s (%s)", b.Name, c.format(b.Rating, true)),
			Value:       b.ID,
			Default:     b.Selected,
			Description: string(b.Variant),
		})
	}

	zero := 0
	return discordgo.SelectMenu{
		CustomID:    fmt.Sprintf("%s:%s", customIDBenefits, record.ID),
		Placeholder: "Risk benefits / accept consequences",
		MinValues:   &zero,
		MaxValues:   len(options),
		Options:     options,
	}
}
