package rating

import (
	"fmt"
	"strings"
)

// masterySymbol is the plain-text glyph for a mastery level. The rune glyph
// mirrors the tabletop books' mastery rune for groups that enable it.
const (
	masterySymbol     = "M"
	masteryRuneSymbol = "ᛗ"
	minusSign         = "−"
)

// Format renders a rating as sign-prefixed text.
//
// Non-modifiers render as the full "xMy" form, e.g. "15M0" or "3M2".
// Modifiers render compactly: "+1", "-4", a bare "+M" for a single mastery
// with no rank, "+M2" for several. The exact zero renders as "0". Negative
// values take a unicode minus prefix and the magnitude is shown unsigned.
func Format(r Rating, isModifier, useRuneSymbol bool) string {
	merged := Merge(r)
	if merged == 0 {
		return "0"
	}

	symbol := masterySymbol
	if useRuneSymbol {
		symbol = masteryRuneSymbol
	}

	var prefix string
	switch {
	case merged < 0:
		prefix = minusSign
	case isModifier:
		prefix = "+"
	}

	c := Abs(Rationalize(r, isModifier))

	if !isModifier {
		return fmt.Sprintf("%s%d%s%d", prefix, c.Rank, symbol, c.Masteries)
	}

	var b strings.Builder
	b.WriteString(prefix)
	if c.Rank != 0 {
		fmt.Fprintf(&b, "%d", c.Rank)
	}
	if c.Masteries > 0 {
		b.WriteString(symbol)
		if c.Masteries > 1 || c.Rank != 0 {
			fmt.Fprintf(&b, "%d", c.Masteries)
		}
	}
	return b.String()
}
