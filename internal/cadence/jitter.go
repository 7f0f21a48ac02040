package cadence

import (
	"strings"
	"unicode"
)

// ThinkingThreshold is the smallest extra delay, in seconds, reported as "thinking".
const ThinkingThreshold = 0.8

const (
	minWordsPerPause = 3
	maxWordsPerPause = 5
)

var transitionWords = map[string]struct{}{
	"however":      {},
	"nevertheless": {},
	"because":      {},
	"but":          {},
	"therefore":    {},
}

// Pacer computes the randomized delay layered on top of the fixed
// per-character interval. It is not safe for concurrent use.
type Pacer struct {
	rnd    Rand
	budget Budget

	wordsSincePause int
	nextPauseAt     int
}

// NewPacer returns a Pacer with fresh counters.
func NewPacer(rnd Rand, budget Budget) *Pacer {
	p := &Pacer{rnd: rnd, budget: budget}
	p.nextPauseAt = intBetween(rnd, minWordsPerPause, maxWordsPerPause)
	return p
}

// Delay returns the extra seconds to wait after c was emitted. prev is the
// rune emitted before c, or zero at the start of the text; ahead is the text
// still to be typed.
func (p *Pacer) Delay(c, prev rune, ahead []rune) float64 {
	var delay float64

	if unicode.IsSpace(c) && prev != 0 && !unicode.IsSpace(prev) {
		p.wordsSincePause++
		if p.wordsSincePause >= p.nextPauseAt {
			delay += between(p.rnd, 1, 2)
			p.wordsSincePause = 0
			p.nextPauseAt = intBetween(p.rnd, minWordsPerPause, maxWordsPerPause)
		}
	}

	if c == ',' {
		delay += between(p.rnd, 1, 2)
	}

	if isSentenceEnd(c) {
		delay += between(p.rnd, 5, 10) + p.budget.PerSentence
	}

	if c == '\n' {
		if prev == '\n' {
			delay += between(p.rnd, 6, 12) + p.budget.PerParagraph
		} else if p.budget.NewlineSentences {
			delay += p.budget.PerSentence
		}
	}

	if _, ok := transitionWords[nextWord(ahead)]; ok {
		delay += between(p.rnd, 1, 2)
	}

	return delay
}

// Thinking reports whether an extra delay is long enough to surface as a pause.
func Thinking(delay float64) bool {
	return delay >= ThinkingThreshold
}

// nextWord skips leading whitespace and returns the following word in lower case.
func nextWord(ahead []rune) string {
	i := 0
	for i < len(ahead) && unicode.IsSpace(ahead[i]) {
		i++
	}
	var b strings.Builder
	for ; i < len(ahead); i++ {
		r := ahead[i]
		if !unicode.IsLetter(r) && r != '\'' && r != '-' {
			break
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
