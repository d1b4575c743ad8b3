// Package rules holds the immutable reference data for contest resolution:
// the selectable difficulty tables and the outcome label table.
package rules

import (
	"fmt"

	"github.com/stormhall/qw-bot-discord/internal/rating"
)

// DifficultyLevel is a named entry in a difficulty table. Modifier is a flat
// delta on the table's base difficulty. Min, when non-nil, floors the merged
// result: a level that would drop at or below Min clamps to exactly Min.
type DifficultyLevel struct {
	Key      string
	Name     string
	Modifier int
	Min      *int
}

// DifficultyTable is one selectable rule-set of difficulty levels.
type DifficultyTable struct {
	Key            string
	Name           string
	BaseLevel      string
	BaseDifficulty rating.Rating
	Levels         []DifficultyLevel
}

// LevelOption is a presentation entry for a difficulty picker.
type LevelOption struct {
	Key   string
	Label string
}

func intPtr(n int) *int { return &n }

// The three built-in rule-sets. Base difficulty tracks the current
// printing's default of 14; groups can override the base rank in settings.
var difficultyTables = map[string]DifficultyTable{
	"srd": {
		Key:            "srd",
		Name:           "SRD",
		BaseLevel:      "moderate",
		BaseDifficulty: rating.New(14, 0),
		Levels: []DifficultyLevel{
			{Key: "simple", Name: "Simple", Modifier: -8, Min: intPtr(5)},
			{Key: "easy", Name: "Easy", Modifier: -4, Min: intPtr(8)},
			{Key: "moderate", Name: "Moderate", Modifier: 0},
			{Key: "hard", Name: "Hard", Modifier: 4},
			{Key: "very_hard", Name: "Very Hard", Modifier: 8},
			{Key: "nearly_impossible", Name: "Nearly Impossible", Modifier: 20},
		},
	},
	"classic": {
		Key:            "classic",
		Name:           "Classic",
		BaseLevel:      "moderate",
		BaseDifficulty: rating.New(14, 0),
		Levels: []DifficultyLevel{
			{Key: "very_easy", Name: "Very Easy", Modifier: -12, Min: intPtr(6)},
			{Key: "easy", Name: "Easy", Modifier: -6, Min: intPtr(6)},
			{Key: "moderate", Name: "Moderate", Modifier: 0},
			{Key: "hard", Name: "Hard", Modifier: 6},
			{Key: "very_hard", Name: "Very Hard", Modifier: 12},
			{Key: "extreme", Name: "Extreme", Modifier: 20},
		},
	},
	"gritty": {
		Key:            "gritty",
		Name:           "Gritty",
		BaseLevel:      "routine",
		BaseDifficulty: rating.New(10, 0),
		Levels: []DifficultyLevel{
			{Key: "trivial", Name: "Trivial", Modifier: -20, Min: intPtr(1)},
			{Key: "routine", Name: "Routine", Modifier: 0},
			{Key: "demanding", Name: "Demanding", Modifier: 5},
			{Key: "punishing", Name: "Punishing", Modifier: 10},
			{Key: "heroic", Name: "Heroic", Modifier: 20},
		},
	},
}

// Table returns the difficulty table for the given rule-set key.
func Table(tableKey string) (DifficultyTable, error) {
	t, ok := difficultyTables[tableKey]
	if !ok {
		return DifficultyTable{}, fmt.Errorf("unknown difficulty table: %s", tableKey)
	}
	return t, nil
}

// TableKeys lists the available rule-set keys.
func TableKeys() []string {
	return []string{"srd", "classic", "gritty"}
}

// GetDifficulty resolves a named level against a table's base difficulty.
// An empty or unknown level falls back to the base difficulty unmodified.
// baseOverride, when positive, replaces the table's base rank.
func GetDifficulty(tableKey, level string, baseOverride int) (rating.Rating, error) {
	t, err := Table(tableKey)
	if err != nil {
		return rating.Rating{}, err
	}

	base := t.BaseDifficulty
	if baseOverride > 0 {
		base = rating.Split(baseOverride, false)
	}

	if level == "" {
		return base, nil
	}

	for _, l := range t.Levels {
		if l.Key != level {
			continue
		}
		result := rating.Add(base, rating.New(l.Modifier, 0))
		if l.Min != nil && rating.Merge(result) <= *l.Min {
			return rating.New(*l.Min, 0), nil
		}
		return result, nil
	}

	return base, nil
}

// ListLevels returns the table's levels in book order for a difficulty
// picker, labels carrying the signed modifier and floor when present.
func ListLevels(tableKey string) ([]LevelOption, error) {
	t, err := Table(tableKey)
	if err != nil {
		return nil, err
	}

	options := make([]LevelOption, 0, len(t.Levels))
	for _, l := range t.Levels {
		label := fmt.Sprintf("%s (%s)", l.Name,
			rating.Format(rating.Split(l.Modifier, true), true, false))
		if l.Min != nil {
			label = fmt.Sprintf("%s (%s, min %d)", l.Name,
				rating.Format(rating.Split(l.Modifier, true), true, false), *l.Min)
		}
		options = append(options, LevelOption{Key: l.Key, Label: label})
	}
	return options, nil
}
