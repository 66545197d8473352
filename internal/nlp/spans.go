package nlp

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// sanitizeEntities drops malformed spans and returns the survivors sorted by
// position. A span survives when its offsets are sane, fall on rune and word
// boundaries, and its text matches the source slice.
func sanitizeEntities(text string, entities []Entity) []Entity {
	valid := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if e.Start < 0 || e.End > len(text) || e.Start >= e.End {
			continue
		}
		if !utf8.RuneStart(text[e.Start]) {
			continue
		}
		if e.End < len(text) && !utf8.RuneStart(text[e.End]) {
			continue
		}
		if text[e.Start:e.End] != e.Text {
			continue
		}
		if !wordBounded(text, e.Start, e.End) {
			continue
		}
		valid = append(valid, e)
	}

	sort.Slice(valid, func(i, j int) bool {
		if valid[i].Start != valid[j].Start {
			return valid[i].Start < valid[j].Start
		}
		return valid[i].End > valid[j].End
	})

	// Drop spans overlapping an already accepted one
	out := valid[:0]
	lastEnd := -1
	for _, e := range valid {
		if e.Start < lastEnd {
			continue
		}
		out = append(out, e)
		lastEnd = e.End
	}

	return out
}

// wordBounded reports whether [start, end) does not cut through a word
func wordBounded(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// anchorEntities resolves entity mentions that carry no offsets by substring
// search. Repeated mentions advance past the previous match so duplicates
// anchor to distinct occurrences. Mentions absent from the text are dropped.
func anchorEntities(text string, mentions []Entity) []Entity {
	next := make(map[string]int, len(mentions))
	anchored := make([]Entity, 0, len(mentions))

	for _, m := range mentions {
		if m.Text == "" {
			continue
		}
		from := next[m.Text]
		if from >= len(text) {
			continue
		}
		idx := strings.Index(text[from:], m.Text)
		if idx < 0 {
			continue
		}
		start := from + idx
		end := start + len(m.Text)
		next[m.Text] = end

		anchored = append(anchored, Entity{
			Text:  m.Text,
			Start: start,
			End:   end,
			Label: m.Label,
		})
	}

	return sanitizeEntities(text, anchored)
}
