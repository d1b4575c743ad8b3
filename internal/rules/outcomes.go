package rules

import "fmt"

// Outcome kinds. Kind is the signed, clamped outcome band: negative for
// defeat, positive for victory, zero for a tie.
const (
	KindCompleteDefeat  = -4
	KindMajorDefeat     = -3
	KindMinorDefeat     = -2
	KindMarginalDefeat  = -1
	KindTie             = 0
	KindMarginalVictory = 1
	KindMinorVictory    = 2
	KindMajorVictory    = 3
	KindCompleteVictory = 4
)

var classicLabels = map[int]string{
	KindCompleteDefeat:  "Complete Defeat",
	KindMajorDefeat:     "Major Defeat",
	KindMinorDefeat:     "Minor Defeat",
	KindMarginalDefeat:  "Marginal Defeat",
	KindTie:             "Tie",
	KindMarginalVictory: "Marginal Victory",
	KindMinorVictory:    "Minor Victory",
	KindMajorVictory:    "Major Victory",
	KindCompleteVictory: "Complete Victory",
}

var outcomeCSSClasses = map[int]string{
	KindCompleteDefeat:  "complete-defeat",
	KindMajorDefeat:     "major-defeat",
	KindMinorDefeat:     "minor-defeat",
	KindMarginalDefeat:  "marginal-defeat",
	KindTie:             "tie",
	KindMarginalVictory: "marginal-victory",
	KindMinorVictory:    "minor-victory",
	KindMajorVictory:    "major-victory",
	KindCompleteVictory: "complete-victory",
}

// OutcomeLabel renders the outcome text for a kind. Classic mode uses the
// fixed band names from the older printing; degrees mode reports the raw
// degree count the way the current rules present it.
func OutcomeLabel(kind, degrees int, classic bool) string {
	if classic {
		return classicLabels[kind]
	}

	switch {
	case kind > 0:
		return fmt.Sprintf("Degrees of Victory: %d", degrees)
	case kind < 0:
		return fmt.Sprintf("Degrees of Defeat: %d", degrees)
	default:
		return "Tie"
	}
}

// OutcomeCSSClass names the style hook the host sheet attaches to the
// resolved card for a kind.
func OutcomeCSSClass(kind int) string {
	return outcomeCSSClasses[kind]
}
