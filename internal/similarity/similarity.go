// Package similarity scores how alike two normalized titles are.
//
// The sync engine's fuzzy fallback treats two events on the same venue and
// date as the same show when their title similarity clears a fixed threshold.
// The strategy is pluggable so the threshold and algorithm stay unit-testable
// away from any HTTP concerns.
package similarity

import "strings"

// DefaultThreshold is the score at or above which two titles on the same
// venue and date are considered the same event.
const DefaultThreshold = 0.78

// Strategy scores two strings on [0, 1], where 1 means identical.
type Strategy interface {
	Score(a, b string) float64
}

// SequenceRatio implements the Ratcliff/Obershelp gestalt ratio: twice the
// number of matching characters over the total length of both strings, where
// matches are counted by repeatedly taking the longest common substring and
// recursing into the unmatched pieces on either side.
type SequenceRatio struct{}

// Score returns the normalized match ratio of a and b.
func (SequenceRatio) Score(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingRunes(ra, rb)) / float64(total)
}

// matchingRunes counts matched characters between a and b per
// Ratcliff/Obershelp, using an explicit work stack instead of recursion.
func matchingRunes(a, b []rune) int {
	type segment struct {
		aLo, aHi, bLo, bHi int
	}

	matches := 0
	stack := []segment{{0, len(a), 0, len(b)}}

	for len(stack) > 0 {
		seg := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		ai, bi, size := longestCommonSubstring(a, b, seg.aLo, seg.aHi, seg.bLo, seg.bHi)
		if size == 0 {
			continue
		}
		matches += size

		stack = append(stack,
			segment{seg.aLo, ai, seg.bLo, bi},
			segment{ai + size, seg.aHi, bi + size, seg.bHi},
		)
	}

	return matches
}

// longestCommonSubstring finds the longest run of identical runes within the
// given windows of a and b. Ties resolve to the earliest position in a, then
// in b, so scoring is deterministic.
func longestCommonSubstring(a, b []rune, aLo, aHi, bLo, bHi int) (bestA, bestB, bestSize int) {
	bestA, bestB = aLo, bLo

	// lengths[j] is the length of the common suffix ending at a[i-1], b[j-1]
	// for the current row.
	lengths := make([]int, bHi-bLo+1)

	for i := aLo; i < aHi; i++ {
		prevDiag := 0
		for j := bLo; j < bHi; j++ {
			cur := lengths[j-bLo+1]
			if a[i] == b[j] {
				run := prevDiag + 1
				lengths[j-bLo+1] = run
				if run > bestSize {
					bestSize = run
					bestA = i - run + 1
					bestB = j - run + 1
				}
			} else {
				lengths[j-bLo+1] = 0
			}
			prevDiag = cur
		}
	}

	return bestA, bestB, bestSize
}

// Similar is a convenience wrapper answering whether two strings clear the
// threshold under the given strategy.
func Similar(s Strategy, a, b string, threshold float64) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return s.Score(a, b) >= threshold
}
