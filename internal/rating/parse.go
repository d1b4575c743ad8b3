package rating

import (
	"strconv"
	"strings"

	qwerr "github.com/stormhall/qw-bot-discord/internal/errors"
)

// ParseModifier parses a user-entered modifier string such as "+5", "-4",
// "1M2", "+M", "M2" or "−2M1" into a rating in canonical modifier form.
// Missing or non-numeric operands are rejected rather than coerced.
func ParseModifier(s string) (Rating, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Rating{}, qwerr.InvalidArgument("modifier is empty")
	}

	sign := 1
	switch {
	case strings.HasPrefix(raw, minusSign):
		sign = -1
		raw = strings.TrimPrefix(raw, minusSign)
	case strings.HasPrefix(raw, "-"):
		sign = -1
		raw = strings.TrimPrefix(raw, "-")
	case strings.HasPrefix(raw, "+"):
		raw = strings.TrimPrefix(raw, "+")
	}
	if raw == "" {
		return Rating{}, qwerr.InvalidArgumentf("modifier %q has no value", s)
	}
	if strings.ContainsAny(raw, "+-"+minusSign) {
		return Rating{}, qwerr.InvalidArgumentf("modifier %q has a misplaced sign", s)
	}

	rankPart := raw
	masteryPart := ""
	if i := strings.IndexAny(raw, masterySymbol+masteryRuneSymbol); i >= 0 {
		rankPart = raw[:i]
		masteryPart = raw[i:]
		masteryPart = strings.TrimPrefix(masteryPart, masterySymbol)
		masteryPart = strings.TrimPrefix(masteryPart, masteryRuneSymbol)
	}

	rank := 0
	if rankPart != "" {
		n, err := strconv.Atoi(rankPart)
		if err != nil {
			return Rating{}, qwerr.InvalidArgumentf("modifier %q is not numeric", s)
		}
		rank = n
	}

	masteries := 0
	hasMasterySection := len(rankPart) != len(raw)
	if hasMasterySection {
		if masteryPart == "" {
			masteries = 1
		} else {
			n, err := strconv.Atoi(masteryPart)
			if err != nil {
				return Rating{}, qwerr.InvalidArgumentf("modifier %q has a bad mastery count", s)
			}
			masteries = n
		}
	}

	if rank == 0 && masteries == 0 && raw != "0" {
		return Rating{}, qwerr.InvalidArgumentf("modifier %q has no value", s)
	}

	r := Rating{Rank: rank * sign, Masteries: masteries}
	if rank == 0 {
		r.Masteries = masteries * sign
	}
	return Rationalize(r, true), nil
}
