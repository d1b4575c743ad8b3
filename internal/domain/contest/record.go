// Package contest defines the shared, mutable state of one contest in
// progress: the card every viewer renders and the arbiter commits to.
package contest

import (
	"time"

	"github.com/stormhall/qw-bot-discord/internal/rating"
)

// ManualDifficultyLevel is the sentinel difficulty level meaning the
// resistance is entered by hand instead of looked up from a table.
const ManualDifficultyLevel = "manual"

// Variant distinguishes a benefit from a consequence.
type Variant string

const (
	VariantBenefit     Variant = "benefit"
	VariantConsequence Variant = "consequence"
)

// BenefitModifier is one party-owned bonus or malus eligible for a contest.
// Selection is toggled by the proposing party during negotiation.
type BenefitModifier struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Variant  Variant       `json:"variant"`
	Rating   rating.Rating `json:"rating"`
	Selected bool          `json:"selected"`
}

// Outcome is the published result of a resolved contest. Exactly one of
// Victory, Defeat and Tie is set. Kind is the signed band in [-4,4];
// Degrees is the unsigned success-count difference.
type Outcome struct {
	Victory  bool   `json:"victory"`
	Defeat   bool   `json:"defeat"`
	Tie      bool   `json:"tie"`
	Degrees  int    `json:"degrees"`
	Kind     int    `json:"kind"`
	Text     string `json:"text"`
	CSSClass string `json:"cssClass"`
}

// Record is the contest card document. One record is shared by every viewer
// of the channel it was posted to; the arbiter is its only authoritative
// writer. Closed is terminal: no mutation is permitted once set.
type Record struct {
	ID         string `json:"id"`
	OwnerID    string `json:"owner_id"`
	TacticName string `json:"tactic_name"`

	// Transport handles. MessageID changes when the card is re-posted to
	// the bottom of the feed; ID stays stable across re-posts.
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`

	// Phase flags
	WaitingForParty bool `json:"waiting_for_party"`
	ReadyToRoll     bool `json:"ready_to_roll"`
	Closed          bool `json:"closed"`

	// Negotiable fields, owned by the proposing party
	Tactic              rating.Rating               `json:"tactic"`
	SituationalModifier int                         `json:"situational_modifier"`
	Benefits            map[string]*BenefitModifier `json:"benefits"`

	// Resistance fields, owned by the arbiter
	DifficultyLevel    string `json:"difficulty_level"`
	ManualDifficulty   int    `json:"manual_difficulty"`
	DifficultyModifier int    `json:"difficulty_modifier"`

	// Derived fields, recomputed on every mutation
	Total          rating.Rating `json:"total"`
	Resistance     rating.Rating `json:"resistance"`
	BenefitsRisked int           `json:"benefits_risked"`
	AssuredVictory bool          `json:"assured_victory"`
	AssuredDefeat  bool          `json:"assured_defeat"`
	Assured        bool          `json:"assured"`

	// Resolution fields, populated once rolled
	PartyRoll           int      `json:"party_roll"`
	ResistanceRoll      int      `json:"resistance_roll"`
	PartySuccesses      int      `json:"party_successes"`
	ResistanceSuccesses int      `json:"resistance_successes"`
	Outcome             *Outcome `json:"outcome,omitempty"`

	StoryPointSpent bool `json:"story_point_spent"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Resolved reports whether the contest has produced an outcome.
func (r *Record) Resolved() bool {
	return r.Outcome != nil
}

// IsOwner reports whether the given session is the proposing party.
func (r *Record) IsOwner(sessionID string) bool {
	return r.OwnerID == sessionID
}

// ManualEntry reports whether the resistance comes from a hand-entered
// difficulty rather than a named table level.
func (r *Record) ManualEntry() bool {
	return r.DifficultyLevel == ManualDifficultyLevel
}

// Benefit returns the modifier with the given id, or nil.
func (r *Record) Benefit(id string) *BenefitModifier {
	return r.Benefits[id]
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	clone := *r

	if r.Benefits != nil {
		clone.Benefits = make(map[string]*BenefitModifier, len(r.Benefits))
		for id, b := range r.Benefits {
			copied := *b
			clone.Benefits[id] = &copied
		}
	}

	if r.Outcome != nil {
		outcome := *r.Outcome
		clone.Outcome = &outcome
	}

	return &clone
}
