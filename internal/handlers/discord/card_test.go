package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stormhall/qw-bot-discord/internal/config"
	"github.com/stormhall/qw-bot-discord/internal/domain/contest"
	"github.com/stormhall/qw-bot-discord/internal/rating"
)

func cardRecord() *contest.Record {
	return &contest.Record{
		ID:              "contest-1",
		OwnerID:         "player-1",
		TacticName:      "Sneak past the guards",
		ChannelID:       "table-1",
		WaitingForParty: true,
		Tactic:          rating.New(15, 0),
		Total:           rating.New(15, 0),
		Resistance:      rating.New(10, 0),
		Benefits: map[string]*contest.BenefitModifier{
			"b1": {ID: "b1", Name: "Cat burglar", Variant: contest.VariantBenefit, Rating: rating.New(5, 0)},
		},
		DifficultyLevel: contest.ManualDifficultyLevel,
	}
}

func buttonsByLabel(t *testing.T, components []discordgo.MessageComponent) map[string]discordgo.Button {
	t.Helper()

	buttons := map[string]discordgo.Button{}
	for _, c := range components {
		row, ok := c.(discordgo.ActionsRow)
		require.True(t, ok)
		for _, inner := range row.Components {
			if b, ok := inner.(discordgo.Button); ok {
				buttons[b.Label] = b
			}
		}
	}
	return buttons
}

func TestCardRenderer_Embed(t *testing.T) {
	renderer := NewCardRenderer(config.RulesConfig{})

	record := cardRecord()
	record.SituationalModifier = 3
	record.Benefits["b1"].Selected = true
	record.BenefitsRisked = 1

	embed := renderer.Embed(record)

	assert.Equal(t, "Sneak past the guards", embed.Title)
	assert.Equal(t, "Negotiating — waiting for the party", embed.Footer.Text)

	values := map[string]string{}
	for _, f := range embed.Fields {
		values[f.Name] = f.Value
	}
	assert.Equal(t, "15M0", values["Tactic"])
	assert.Equal(t, "10M0", values["Resistance"])
	assert.Equal(t, "+3", values["Situational"])
	assert.Equal(t, "Cat burglar (+5)", values["Benefits risked: 1"])
}

func TestCardRenderer_Embed_Outcome(t *testing.T) {
	renderer := NewCardRenderer(config.RulesConfig{})

	record := cardRecord()
	record.WaitingForParty = false
	record.Closed = true
	record.PartyRoll = 10
	record.ResistanceRoll = 15
	record.PartySuccesses = 1
	record.Outcome = &contest.Outcome{Victory: true, Kind: 2, Degrees: 1, Text: "Minor Victory"}

	embed := renderer.Embed(record)
	assert.Equal(t, "Resolved", embed.Footer.Text)

	var outcome string
	for _, f := range embed.Fields {
		if f.Name == "Outcome" {
			outcome = f.Value
		}
	}
	assert.Contains(t, outcome, "Minor Victory")
	assert.Contains(t, outcome, "Rolled 10 vs 15")
}

func TestCardRenderer_Components_Negotiating(t *testing.T) {
	renderer := NewCardRenderer(config.RulesConfig{})
	record := cardRecord()

	components := renderer.Components(record)
	buttons := buttonsByLabel(t, components)

	assert.False(t, buttons["Over"].Disabled)
	assert.True(t, buttons["Approve"].Disabled)
	assert.False(t, buttons["Reopen"].Disabled)
	assert.True(t, buttons["Roll"].Disabled)
	assert.False(t, buttons["Spend Story Point"].Disabled)
}

func TestCardRenderer_Components_AwaitingApproval(t *testing.T) {
	renderer := NewCardRenderer(config.RulesConfig{})
	record := cardRecord()
	record.WaitingForParty = false

	buttons := buttonsByLabel(t, renderer.Components(record))

	assert.True(t, buttons["Over"].Disabled)
	assert.False(t, buttons["Approve"].Disabled)
	assert.True(t, buttons["Roll"].Disabled)
}

func TestCardRenderer_Components_ReadyToRoll(t *testing.T) {
	renderer := NewCardRenderer(config.RulesConfig{})
	record := cardRecord()
	record.WaitingForParty = false
	record.ReadyToRoll = true

	components := renderer.Components(record)
	buttons := buttonsByLabel(t, components)

	assert.True(t, buttons["Over"].Disabled)
	assert.True(t, buttons["Approve"].Disabled)
	assert.True(t, buttons["Reopen"].Disabled)
	assert.False(t, buttons["Roll"].Disabled)

	// No benefit picker once negotiation is done
	for _, c := range components {
		row := c.(discordgo.ActionsRow)
		for _, inner := range row.Components {
			_, isMenu := inner.(discordgo.SelectMenu)
			assert.False(t, isMenu)
		}
	}
}

func TestCardRenderer_Components_Closed(t *testing.T) {
	renderer := NewCardRenderer(config.RulesConfig{})
	record := cardRecord()
	record.Closed = true

	assert.Empty(t, renderer.Components(record))
}

func TestCardRenderer_BenefitPicker(t *testing.T) {
	renderer := NewCardRenderer(config.RulesConfig{})
	record := cardRecord()
	record.Benefits["b1"].Selected = true

	components := renderer.Components(record)
	require.NotEmpty(t, components)

	row := components[0].(discordgo.ActionsRow)
	menu, ok := row.Components[0].(discordgo.SelectMenu)
	require.True(t, ok)

	assert.Equal(t, "qw:benefits:contest-1", menu.CustomID)
	require.Len(t, menu.Options, 1)
	assert.Equal(t, "Cat burglar (+5)", menu.Options[0].Label)
	assert.True(t, menu.Options[0].Default)
}

func TestParseBenefit(t *testing.T) {
	b, err := parseBenefit("Cat burglar:+5", contest.VariantBenefit)
	require.NoError(t, err)
	assert.Equal(t, "cat-burglar", b.ID)
	assert.Equal(t, "Cat burglar", b.Name)
	assert.Equal(t, rating.New(5, 0), b.Rating)

	b, err = parseBenefit("Old wound:-4", contest.VariantConsequence)
	require.NoError(t, err)
	assert.Equal(t, contest.VariantConsequence, b.Variant)
	assert.Equal(t, rating.New(-4, 0), b.Rating)

	_, err = parseBenefit("no separator", contest.VariantBenefit)
	require.Error(t, err)

	_, err = parseBenefit("Name:garbage", contest.VariantBenefit)
	require.Error(t, err)
}
