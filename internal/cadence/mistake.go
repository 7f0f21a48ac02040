package cadence

import "unicode"

// CorrectionDelay is how long, in seconds, a wrong letter stays on screen before it is fixed.
const CorrectionDelay = 3.0

const (
	minLettersPerMistake = 50
	maxLettersPerMistake = 75

	alphabet = "abcdefghijklmnopqrstuvwxyz"
)

var neighborOffsets = []int{-2, -1, 1, 2}

// Mistakes decides when to fake a typo and which wrong letter to use.
type Mistakes struct {
	rnd     Rand
	enabled bool

	lettersSince int
	nextAt       int
}

// NewMistakes returns a simulator; a disabled one never triggers.
func NewMistakes(rnd Rand, enabled bool) *Mistakes {
	m := &Mistakes{rnd: rnd, enabled: enabled}
	if enabled {
		m.nextAt = intBetween(rnd, minLettersPerMistake, maxLettersPerMistake)
	}
	return m
}

// Due counts c when it is a letter and reports whether a mistake should be
// made on it. The counter resets and a new threshold is drawn whenever it fires.
func (m *Mistakes) Due(c rune) bool {
	if !m.enabled || !unicode.IsLetter(c) {
		return false
	}
	m.lettersSince++
	if m.lettersSince < m.nextAt {
		return false
	}
	m.lettersSince = 0
	m.nextAt = intBetween(m.rnd, minLettersPerMistake, maxLettersPerMistake)
	return true
}

// Substitute returns a letter one or two places away from c in the alphabet,
// keeping its case. ok is false when c has no such neighbor.
func (m *Mistakes) Substitute(c rune) (wrong rune, ok bool) {
	lower := unicode.ToLower(c)
	idx := -1
	for i, a := range alphabet {
		if a == lower {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, false
	}

	offsets := append([]int(nil), neighborOffsets...)
	m.rnd.Shuffle(len(offsets), func(i, j int) {
		offsets[i], offsets[j] = offsets[j], offsets[i]
	})
	for _, off := range offsets {
		n := idx + off
		if n < 0 || n >= len(alphabet) {
			continue
		}
		wrong = rune(alphabet[n])
		if unicode.IsUpper(c) {
			wrong = unicode.ToUpper(wrong)
		}
		return wrong, true
	}
	return 0, false
}
