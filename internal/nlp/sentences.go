package nlp

// defaultAbbreviations are tokens whose trailing period does not end a sentence
var defaultAbbreviations = []string{
	"Inc.", "Corp.", "Ltd.", "Co.", "LLC.", "No.", "U.S.", "U.K.",
	"Mr.", "Ms.", "Mrs.", "Dr.", "Jr.", "Sr.", "St.", "vs.", "etc.", "approx.",
}

func abbreviationSet(extra []string) map[string]bool {
	set := make(map[string]bool, len(defaultAbbreviations)+len(extra))
	for _, a := range defaultAbbreviations {
		set[a] = true
	}
	for _, a := range extra {
		if a != "" {
			set[a] = true
		}
	}
	return set
}

// splitSentences splits text into sentence spans (simple heuristic).
// A sentence ends at '.', '!' or '?' followed by whitespace or end of text,
// unless the token ending at the period is a known abbreviation.
func splitSentences(text string, abbrevs map[string]bool) []Span {
	var spans []Span
	start := 0

	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}

		next := i + 1
		if next < len(text) && !isSpaceByte(text[next]) {
			continue
		}
		if r == '.' && abbrevs[lastWord(text, i)] {
			continue
		}

		if s, ok := trimSpan(text, start, next); ok {
			spans = append(spans, s)
		}
		start = next
	}

	if s, ok := trimSpan(text, start, len(text)); ok {
		spans = append(spans, s)
	}

	return spans
}

// lastWord returns the whitespace-delimited token ending at the terminator,
// terminator included
func lastWord(text string, dot int) string {
	start := dot
	for start > 0 && !isSpaceByte(text[start-1]) {
		start--
	}
	return text[start : dot+1]
}

// trimSpan narrows [start, end) past surrounding whitespace
func trimSpan(text string, start, end int) (Span, bool) {
	for start < end && isSpaceByte(text[start]) {
		start++
	}
	for end > start && isSpaceByte(text[end-1]) {
		end--
	}
	if start >= end {
		return Span{}, false
	}
	return Span{Start: start, End: end}, true
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
