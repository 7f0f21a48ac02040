package cadence

import "math"

const (
	charsPerWord = 5.0
	// minCharsPerMinute keeps the interval finite for tiny or zero rates.
	minCharsPerMinute = 5.0
)

// Budget spreads the time left over from a requested session length across
// sentence ends and paragraph breaks. All values are in seconds.
type Budget struct {
	PerSentence  float64
	PerParagraph float64
	// NewlineSentences is set when the text has no sentence marks and single
	// newlines were counted as sentence boundaries instead.
	NewlineSentences bool
}

// CharInterval returns the fixed per-character delay in seconds for a words-per-minute rate.
func CharInterval(wpm float64) float64 {
	return 60.0 / math.Max(minCharsPerMinute, wpm*charsPerWord)
}

// PlanBudget computes the extra delays needed for text typed at wpm to take
// roughly total seconds. A non-positive total means no target and yields a zero Budget.
func PlanBudget(text []rune, wpm, total float64) Budget {
	if total <= 0 {
		return Budget{}
	}
	baseTime := float64(len(text)) * CharInterval(wpm)
	// Natural jitter is assumed to roughly double the base time.
	jitterEstimate := baseTime
	budget := math.Max(0, total-(baseTime+jitterEstimate))

	sentences, paragraphs, singles := countBoundaries(text)
	var b Budget
	if sentences == 0 {
		sentences = singles
		b.NewlineSentences = singles > 0
	}
	slots := sentences + 2*paragraphs
	if slots == 0 {
		return b
	}
	unit := budget / float64(slots)
	b.PerSentence = unit
	b.PerParagraph = 2 * unit
	return b
}

// countBoundaries counts sentence marks, paragraph breaks (a newline directly
// after a newline) and newlines that do not close a paragraph break.
func countBoundaries(text []rune) (sentences, paragraphs, singles int) {
	for i, r := range text {
		switch {
		case isSentenceEnd(r):
			sentences++
		case r == '\n' && i > 0 && text[i-1] == '\n':
			paragraphs++
		case r == '\n':
			singles++
		}
	}
	return sentences, paragraphs, singles
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '?', '!', ';', ':':
		return true
	}
	return false
}
