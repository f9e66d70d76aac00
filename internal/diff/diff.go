// Package diff computes word-level deltas between two text snapshots
// using the sergi/go-diff library.
//
// The output preserves the standard diff reconstruction invariant:
// concatenating every segment that is not marked Added reproduces the
// old text, and concatenating every segment that is not marked Removed
// reproduces the new text.
package diff

import (
	"strings"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Segment is a contiguous run of text with a single change classification.
// At most one of Added and Removed is set; an unmarked segment is common
// to both snapshots.
type Segment struct {
	Text    string
	Added   bool
	Removed bool
}

// Words computes the word-level difference between oldText and newText.
// Whitespace runs are tokens of their own, so line breaks survive intact
// inside segments.
func Words(oldText, newText string) []Segment {
	if oldText == newText {
		if newText == "" {
			return nil
		}
		return []Segment{{Text: newText}}
	}

	oldTokens := tokenize(oldText)
	newTokens := tokenize(newText)

	// Map each distinct token to a rune so diffmatchpatch compares whole
	// words instead of characters. Same trick as its line-mode API.
	enc := newTokenEncoder()
	oldRunes := enc.encode(oldTokens)
	newRunes := enc.encode(newTokens)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes(oldRunes, newRunes, false)

	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		var sb strings.Builder
		for _, r := range d.Text {
			sb.WriteString(enc.token[r])
		}
		seg := Segment{Text: sb.String()}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			seg.Added = true
		case diffmatchpatch.DiffDelete:
			seg.Removed = true
		}
		if seg.Text != "" {
			segments = append(segments, seg)
		}
	}

	return mergeAdjacent(segments)
}

// SplitLines splits a segment's text on newlines for rendering.
// The empty trailing fragment produced by a terminal newline is dropped;
// interior empty lines are kept.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// tokenize splits text into alternating word and whitespace tokens.
// Concatenating the tokens reproduces the input exactly.
func tokenize(text string) []string {
	var tokens []string
	start := 0
	inSpace := false
	for i, r := range text {
		isSpace := unicode.IsSpace(r)
		if i == 0 {
			inSpace = isSpace
			continue
		}
		if isSpace != inSpace {
			tokens = append(tokens, text[start:i])
			start = i
			inSpace = isSpace
		}
	}
	if start < len(text) {
		tokens = append(tokens, text[start:])
	}
	return tokens
}

// tokenEncoder assigns each distinct token a rune, skipping the surrogate
// range so encoded values survive rune/string round trips inside the diff
// library.
type tokenEncoder struct {
	index map[string]rune
	token map[rune]string
	next  rune
}

func newTokenEncoder() *tokenEncoder {
	return &tokenEncoder{
		index: map[string]rune{},
		token: map[rune]string{},
		next:  1,
	}
}

func (e *tokenEncoder) encode(tokens []string) []rune {
	runes := make([]rune, 0, len(tokens))
	for _, tok := range tokens {
		r, ok := e.index[tok]
		if !ok {
			r = e.next
			e.next++
			if e.next == 0xD800 {
				e.next = 0xE000
			}
			e.index[tok] = r
			e.token[r] = tok
		}
		runes = append(runes, r)
	}
	return runes
}

// mergeAdjacent joins consecutive segments with the same classification.
func mergeAdjacent(segments []Segment) []Segment {
	if len(segments) < 2 {
		return segments
	}
	merged := segments[:1]
	for _, seg := range segments[1:] {
		last := &merged[len(merged)-1]
		if last.Added == seg.Added && last.Removed == seg.Removed {
			last.Text += seg.Text
			continue
		}
		merged = append(merged, seg)
	}
	return merged
}
