package contest

import (
	"github.com/stormhall/qw-bot-discord/internal/config"
	"github.com/stormhall/qw-bot-discord/internal/dice"
	"github.com/stormhall/qw-bot-discord/internal/domain/contest"
	qwerr "github.com/stormhall/qw-bot-discord/internal/errors"
	"github.com/stormhall/qw-bot-discord/internal/rating"
	"github.com/stormhall/qw-bot-discord/internal/rules"
)

// Engine owns the derived-field computation and the roll/outcome algorithm.
// It is pure apart from the injected die roller: the same record and rolls
// always produce the same outcome.
type Engine struct {
	tableKey     string
	baseOverride int
	classic      bool
	roller       dice.Roller
}

// NewEngine creates an engine bound to the active rule-set options
func NewEngine(cfg config.RulesConfig, roller dice.Roller) *Engine {
	if roller == nil {
		panic("roller is required")
	}
	return &Engine{
		tableKey:     cfg.DifficultyTable,
		baseOverride: cfg.BaseDifficulty,
		classic:      cfg.ClassicOutcomes,
		roller:       roller,
	}
}

// Process recomputes every derived field from the negotiable and resistance
// fields. Called on each committed mutation so viewers always render
// consistent totals.
func (e *Engine) Process(record *contest.Record) error {
	total := rating.Add(record.Tactic, rating.New(record.SituationalModifier, 0))

	risked := 0
	for _, benefit := range record.Benefits {
		if !benefit.Selected {
			continue
		}
		total = rating.Add(total, benefit.Rating)
		if benefit.Variant == contest.VariantBenefit {
			risked++
		}
	}
	record.Total = total
	record.BenefitsRisked = risked

	var resistance rating.Rating
	if record.ManualEntry() {
		if record.ManualDifficulty != 0 {
			resistance = rating.Add(resistance, rating.New(record.ManualDifficulty, 0))
		}
	} else {
		base, err := rules.GetDifficulty(e.tableKey, record.DifficultyLevel, e.baseOverride)
		if err != nil {
			return err
		}
		resistance = base
	}
	resistance = rating.Add(resistance, rating.New(record.DifficultyModifier, 0))
	record.Resistance = resistance

	record.AssuredVictory = rating.Merge(record.Resistance) <= 0
	record.AssuredDefeat = rating.Merge(record.Total) <= 0
	record.Assured = record.AssuredVictory || record.AssuredDefeat

	return nil
}

// countSuccesses scores one side's roll against its target. A roll exactly
// equal to the target rank fires both checks and counts twice: that is the
// critical, not an off-by-one.
func countSuccesses(target rating.Rating, roll int, storyPointBonus bool) int {
	successes := target.Masteries
	if roll <= target.Rank {
		successes++
	}
	if roll == target.Rank {
		successes++
	}
	if storyPointBonus {
		successes++
	}
	return successes
}

// Resolve rolls the contest and publishes its outcome. Resolution is
// idempotent once rolls exist: re-invoking on an already-rolled record
// reuses the stored rolls instead of drawing again.
func (e *Engine) Resolve(record *contest.Record) error {
	if record.Closed {
		return qwerr.FailedPreconditionf("contest is already closed: %s", record.ID)
	}
	if !record.ReadyToRoll {
		return qwerr.FailedPreconditionf("contest is not ready to roll: %s", record.ID)
	}

	if err := e.Process(record); err != nil {
		return err
	}

	if record.AssuredVictory && record.AssuredDefeat {
		return qwerr.Validationf("contest %s has non-positive total and resistance; cannot resolve both sides assured", record.ID)
	}

	// Assured outcomes never consume the die roller
	if record.Assured {
		outcome := &contest.Outcome{}
		if record.AssuredDefeat {
			outcome.Defeat = true
			outcome.Kind = rules.KindCompleteDefeat
			outcome.Text = "Assured Defeat"
		} else {
			outcome.Victory = true
			outcome.Kind = rules.KindCompleteVictory
			outcome.Text = "Assured Victory"
		}
		outcome.CSSClass = rules.OutcomeCSSClass(outcome.Kind)
		record.Outcome = outcome
		record.Closed = true
		return nil
	}

	if record.PartyRoll == 0 {
		roll, err := e.roller.RollD20()
		if err != nil {
			return qwerr.Wrap(err, "failed to roll for party")
		}
		record.PartyRoll = roll
	}
	if record.ResistanceRoll == 0 {
		roll, err := e.roller.RollD20()
		if err != nil {
			return qwerr.Wrap(err, "failed to roll for resistance")
		}
		record.ResistanceRoll = roll
	}

	record.PartySuccesses = countSuccesses(record.Total, record.PartyRoll, record.StoryPointSpent)
	record.ResistanceSuccesses = countSuccesses(record.Resistance, record.ResistanceRoll, false)

	degrees := record.PartySuccesses - record.ResistanceSuccesses

	var kind int
	switch {
	case degrees == 0:
		// Equal successes: the lower raw roll wins
		switch {
		case record.PartyRoll < record.ResistanceRoll:
			kind = rules.KindMarginalVictory
		case record.PartyRoll > record.ResistanceRoll:
			kind = rules.KindMarginalDefeat
		default:
			kind = rules.KindTie
		}
	case degrees > 0:
		kind = degrees + 1
		if kind > rules.KindCompleteVictory {
			kind = rules.KindCompleteVictory
		}
	default:
		kind = degrees - 1
		if kind < rules.KindCompleteDefeat {
			kind = rules.KindCompleteDefeat
		}
	}

	absDegrees := degrees
	if absDegrees < 0 {
		absDegrees = -absDegrees
	}

	record.Outcome = &contest.Outcome{
		Victory:  kind > 0,
		Defeat:   kind < 0,
		Tie:      kind == 0,
		Degrees:  absDegrees,
		Kind:     kind,
		Text:     rules.OutcomeLabel(kind, absDegrees, e.classic),
		CSSClass: rules.OutcomeCSSClass(kind),
	}
	record.Closed = true

	return nil
}
