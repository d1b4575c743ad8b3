package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stormhall/qw-bot-discord/internal/rating"
	"github.com/stormhall/qw-bot-discord/internal/rules"
)

func TestGetDifficulty(t *testing.T) {
	tests := []struct {
		name     string
		table    string
		level    string
		override int
		want     rating.Rating
	}{
		{"base when level empty", "srd", "", 0, rating.New(14, 0)},
		{"base when level unknown", "srd", "bogus", 0, rating.New(14, 0)},
		{"moderate is base", "srd", "moderate", 0, rating.New(14, 0)},
		{"hard adds four", "srd", "hard", 0, rating.New(18, 0)},
		{"very hard rolls over", "srd", "very_hard", 0, rating.New(2, 1)},
		{"nearly impossible adds a mastery", "srd", "nearly_impossible", 0, rating.New(14, 1)},
		{"easy floors at eight", "srd", "easy", 0, rating.New(10, 0)},
		{"override replaces base rank", "srd", "hard", 10, rating.New(14, 0)},
		{"classic extreme", "classic", "extreme", 0, rating.New(14, 1)},
		{"gritty routine", "gritty", "routine", 0, rating.New(10, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rules.GetDifficulty(tt.table, tt.level, tt.override)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetDifficulty_ClampsToMin(t *testing.T) {
	// simple: -8 with a floor of 5. With an override of 10 the merged
	// result is 2, at or below the floor, so it clamps to exactly 5.
	got, err := rules.GetDifficulty("srd", "simple", 10)
	require.NoError(t, err)
	assert.Equal(t, rating.New(5, 0), got)

	// trivial drops the gritty base of 10 by a full mastery; merged -10
	// is below the floor of 1.
	got, err = rules.GetDifficulty("gritty", "trivial", 0)
	require.NoError(t, err)
	assert.Equal(t, rating.New(1, 0), got)
}

func TestGetDifficulty_UnknownTable(t *testing.T) {
	_, err := rules.GetDifficulty("homebrew", "hard", 0)
	require.Error(t, err)
}

func TestListLevels(t *testing.T) {
	options, err := rules.ListLevels("srd")
	require.NoError(t, err)
	require.Len(t, options, 6)

	assert.Equal(t, "simple", options[0].Key)
	assert.Contains(t, options[0].Label, "−8")
	assert.Contains(t, options[0].Label, "min 5")

	assert.Equal(t, "nearly_impossible", options[5].Key)
	assert.Contains(t, options[5].Label, "+M")
}

func TestOutcomeLabel(t *testing.T) {
	assert.Equal(t, "Minor Victory", rules.OutcomeLabel(rules.KindMinorVictory, 1, true))
	assert.Equal(t, "Complete Defeat", rules.OutcomeLabel(rules.KindCompleteDefeat, 5, true))
	assert.Equal(t, "Tie", rules.OutcomeLabel(rules.KindTie, 0, true))

	assert.Equal(t, "Degrees of Victory: 2", rules.OutcomeLabel(3, 2, false))
	assert.Equal(t, "Degrees of Defeat: 1", rules.OutcomeLabel(-2, 1, false))
	assert.Equal(t, "Tie", rules.OutcomeLabel(0, 0, false))
}
