package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreIdentical(t *testing.T) {
	var s SequenceRatio
	assert.Equal(t, 1.0, s.Score("horror trivia night", "horror trivia night"))
	assert.Equal(t, 1.0, s.Score("", ""))
}

func TestScoreDisjoint(t *testing.T) {
	var s SequenceRatio
	assert.Equal(t, 0.0, s.Score("abc", "xyz"))
}

func TestScoreKnownRatios(t *testing.T) {
	// Values match Python difflib.SequenceMatcher on the same inputs, which
	// is what the sync scripts historically used.
	var s SequenceRatio

	// "abcd" vs "bcde": longest block "bcd" (3 chars), 2*3/8 = 0.75.
	assert.InDelta(t, 0.75, s.Score("abcd", "bcde"), 1e-9)

	// One character of four differs: 2*3/8 = 0.75.
	assert.InDelta(t, 0.75, s.Score("abcd", "abcx"), 1e-9)
}

func TestScoreNearDuplicateTitles(t *testing.T) {
	var s SequenceRatio

	score := s.Score("aj mcqueen the color wild", "aj mcqueen color wild")
	assert.Greater(t, score, 0.85, "re-scraped lineup variants should score high")

	score = s.Score("horror trivia night", "goat yoga morning")
	assert.Less(t, score, 0.5, "unrelated events should score low")
}

func TestSimilarThresholdBoundary(t *testing.T) {
	var s SequenceRatio

	// similarity 0.9 on the same venue/date merges...
	assert.True(t, Similar(s, "punk rock flea market", "punk rock flea marke", DefaultThreshold))
	// ...similarity around 0.5 does not.
	assert.False(t, Similar(s, "horror trivia night", "goat yoga morning", DefaultThreshold))
}

func TestSimilarEmptyStringsNeverMatch(t *testing.T) {
	var s SequenceRatio
	assert.False(t, Similar(s, "", "", DefaultThreshold))
	assert.False(t, Similar(s, "something", "  ", DefaultThreshold))
}

func TestScoreSymmetryOnTypicalTitles(t *testing.T) {
	var s SequenceRatio
	a, b := "teen mortgage gino the goons", "teen mortgage the goons"
	assert.InDelta(t, s.Score(a, b), s.Score(b, a), 1e-9)
}
