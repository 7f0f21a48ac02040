package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
	isBreak bool
	cursor  bool
}

// buildStyledRunes styles the text for the preview: runes before cursor are
// typed, the word under the cursor is highlighted and the rest is pending. A
// negative cursor marks nothing as current.
func buildStyledRunes(text []rune, cursor int) []styledRune {
	words := findWords(text)
	currentWord := wordForCursor(words, cursor)

	out := make([]styledRune, 0, len(text))
	for i, r := range text {
		if r == '\n' {
			out = append(out, styledRune{isBreak: true, cursor: i == cursor})
			continue
		}
		displayed := r
		if r == '\t' {
			displayed = ' '
		}
		style := pendingStyle
		switch {
		case cursor < 0 || i < cursor:
			style = typedStyle
		case currentWord != nil && i >= currentWord.start && i < currentWord.end:
			style = currentWordStyle
		}
		if i == cursor {
			style = style.Underline(true)
		}
		out = append(out, styledRune{
			s:       style.Render(string(displayed)),
			width:   runewidth.RuneWidth(displayed),
			isSpace: isBlank(r),
			cursor:  i == cursor,
		})
	}
	return out
}

type wordRange struct {
	start int
	end   int
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n'
}

func findWords(text []rune) []wordRange {
	words := []wordRange{}
	start := -1
	for i, r := range text {
		if isBlank(r) {
			if start != -1 {
				words = append(words, wordRange{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(text)})
	}
	return words
}

func wordForCursor(words []wordRange, cursor int) *wordRange {
	if len(words) == 0 || cursor < 0 {
		return nil
	}
	for i, w := range words {
		if cursor < w.end {
			return &words[i]
		}
	}
	return nil
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks runes into lines no wider than width, preferring to
// break after a space, and reports the line holding the cursor.
func wrapStyledRunes(runes []styledRune, width int) (lines []string, cursorLine int) {
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1
	flush := func(items []styledRune) {
		for _, item := range items {
			if item.cursor {
				cursorLine = len(lines)
			}
		}
		lines = append(lines, renderStyledRunes(items))
	}

	for i := 0; i < len(runes); {
		item := runes[i]
		if item.isBreak {
			flush(append(line, item))
			line = line[:0]
			lineWidth = 0
			lastSpaceIdx = -1
			i++
			continue
		}
		if width > 0 && lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				flush(line[:lastSpaceIdx+1])
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				flush(line)
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	flush(line)
	return lines, cursorLine
}

// visibleLines returns at most height lines around the cursor line.
func visibleLines(lines []string, cursorLine, height int) []string {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	start := cursorLine - height/3
	start = max(0, min(start, len(lines)-height))
	return lines[start : start+height]
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
