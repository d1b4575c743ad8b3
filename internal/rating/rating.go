// Package rating implements the "xMy" number system: a base rank in [1,20]
// plus a count of mastery levels, each mastery worth one full rollover of 20.
package rating

// Rating is a two-part skill level on the xMy scale. Either field may be
// transiently out of canonical range; Rationalize restores canonical form.
// The sign of the pair is uniform: both fields share one sign, or the rank
// is 0 and the masteries carry the sign.
type Rating struct {
	Rank      int `json:"rating"`
	Masteries int `json:"masteries"`
}

// New returns a rating with the given rank and mastery count.
func New(rank, masteries int) Rating {
	return Rating{Rank: rank, Masteries: masteries}
}

// IsZero reports whether both fields are exactly zero.
func (r Rating) IsZero() bool {
	return r.Rank == 0 && r.Masteries == 0
}

// Merge collapses a rating into a single raw total:
// sign * (|rank| + |masteries| * 20), negative if either field is negative.
func Merge(r Rating) int {
	sign := 1
	if r.Rank < 0 || r.Masteries < 0 {
		sign = -1
	}
	return sign * (abs(r.Rank) + abs(r.Masteries)*20)
}

// Split is the inverse of Merge for a raw total.
//
// With preserveZero, a total that is an exact multiple of 20 keeps a zero
// rank and the sign moves to the masteries; this rescues bare +M/-M
// modifiers. Otherwise a multiple of 20 rolls up to rank 20, the canonical
// form for non-modifier ratings.
func Split(total int, preserveZero bool) Rating {
	sign := 1
	if total < 0 {
		sign = -1
	}
	t := abs(total)

	if t == 0 {
		// avoids returning 20M0
		return Rating{}
	}

	if preserveZero {
		rank := t % 20
		masteries := t / 20
		if rank == 0 {
			return Rating{Rank: 0, Masteries: masteries * sign}
		}
		return Rating{Rank: rank * sign, Masteries: masteries}
	}

	rank := t % 20
	if rank == 0 {
		rank = 20
	}
	return Rating{Rank: rank * sign, Masteries: (t - 1) / 20}
}

// Add sums two ratings with rollover, returning canonical non-modifier form.
func Add(a, b Rating) Rating {
	return Split(Merge(a)+Merge(b), false)
}

// Rationalize restores a rating to canonical form. Modifiers keep a zero
// rank on exact multiples of 20 so +M stays +M instead of becoming +20.
func Rationalize(r Rating, isModifier bool) Rating {
	return Split(Merge(r), isModifier)
}

// Abs returns the magnitude of a rating.
func Abs(r Rating) Rating {
	if Merge(r) > 0 {
		return r
	}
	return Rating{Rank: abs(r.Rank), Masteries: abs(r.Masteries)}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
