package perturb

import (
	"context"
	"strings"
	"unicode"

	"github.com/perturbia/perturbia/internal/model"
	"github.com/perturbia/perturbia/internal/nlp"
)

// SynonymPerturber replaces one content word with a synonym of the same
// part of speech. Dates, money figures, and entity mentions are masked so
// the factual payload of a statement is never paraphrased away.
type SynonymPerturber struct {
	nlp *nlp.Adapter
}

// NewSynonymPerturber creates a synonym perturber backed by the given
// NLP adapter
func NewSynonymPerturber(adapter *nlp.Adapter) *SynonymPerturber {
	return &SynonymPerturber{nlp: adapter}
}

// Kind identifies the perturbation
func (p *SynonymPerturber) Kind() model.PerturbationKind {
	return model.KindSynonym
}

// Perturb replaces one eligible content word. Candidates are visited in an
// RNG-shuffled order and the first word with a usable synonym wins; the
// synonym itself is also an RNG choice.
func (p *SynonymPerturber) Perturb(ctx context.Context, text string, rng *Rand) (Edit, bool) {
	tokens := p.nlp.Tokenize(ctx, text)
	if len(tokens) == 0 {
		return Edit{}, false
	}
	tags := p.nlp.Tag(ctx, tokens)
	masked := maskedSpans(ctx, p.nlp, text)

	var candidates []int
	for i, tok := range tokens {
		if replaceable(tok, tags[i], masked) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return Edit{}, false
	}

	for _, ci := range rng.Perm(len(candidates)) {
		tok := tokens[candidates[ci]]

		syns := p.lookup(ctx, tok.Text, tags[candidates[ci]])
		if len(syns) == 0 {
			continue
		}

		choice := syns[rng.IntN(len(syns))]
		if firstUpper(tok.Text) {
			choice = capitalize(choice)
		}

		return Edit{
			From:  tok.Text,
			To:    choice,
			Start: tok.Start,
			End:   tok.End,
		}, true
	}

	return Edit{}, false
}

// maskedSpans collects the byte ranges synonym replacement must not touch:
// every date match, money match, and entity mention in the statement
func maskedSpans(ctx context.Context, adapter *nlp.Adapter, text string) []span {
	var spans []span
	for _, d := range findDates(text) {
		spans = append(spans, span{start: d.start, end: d.end})
	}
	for _, n := range findNumbers(text) {
		spans = append(spans, span{start: n.start, end: n.end})
	}
	for _, e := range adapter.Entities(ctx, text) {
		spans = append(spans, span{start: e.Start, end: e.End})
	}
	return spans
}

// replaceable reports whether a token is an open-class word outside every
// masked span: longer than three letters, purely alphabetic, content POS
func replaceable(tok nlp.Token, pos nlp.PartOfSpeech, masked []span) bool {
	if !pos.Content() {
		return false
	}
	runes := []rune(tok.Text)
	if len(runes) <= 3 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	for _, s := range masked {
		if s.contains(tok.Start, tok.End) {
			return false
		}
	}
	return true
}

// stemRules recover a singular lookup form from a regular plural
var stemRules = []struct {
	suffix  string
	restore string
}{
	{suffix: "ies", restore: "y"},
	{suffix: "es"},
	{suffix: "s"},
}

// lookup fetches synonyms for a token, trying the surface form first and
// then a singular stem with the plural carried onto the results
func (p *SynonymPerturber) lookup(ctx context.Context, word string, pos nlp.PartOfSpeech) []string {
	lower := strings.ToLower(word)

	if syns := filterSynonyms(p.nlp.Synonyms(ctx, lower, pos), lower); len(syns) > 0 {
		return syns
	}

	for _, r := range stemRules {
		if !strings.HasSuffix(lower, r.suffix) {
			continue
		}
		stem := strings.TrimSuffix(lower, r.suffix) + r.restore
		if stem == lower || len(stem) < 3 {
			continue
		}
		raw := p.nlp.Synonyms(ctx, stem, pos)
		if len(raw) == 0 {
			continue
		}
		pluralized := make([]string, 0, len(raw))
		for _, s := range raw {
			s = strings.ToLower(strings.TrimSpace(s))
			// Words already ending in s are left as they are
			if s != "" && !strings.HasSuffix(s, "s") {
				s = pluralize(s)
			}
			pluralized = append(pluralized, s)
		}
		if syns := filterSynonyms(pluralized, lower); len(syns) > 0 {
			return syns
		}
	}

	return nil
}

// pluralize applies regular English plural orthography
func pluralize(w string) string {
	switch {
	case strings.HasSuffix(w, "sh"), strings.HasSuffix(w, "ch"),
		strings.HasSuffix(w, "x"), strings.HasSuffix(w, "z"):
		return w + "es"
	case len(w) > 1 && strings.HasSuffix(w, "y") && !isVowel(w[len(w)-2]):
		return w[:len(w)-1] + "ies"
	default:
		return w + "s"
	}
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// filterSynonyms normalizes a raw synonym list: lowercase, alphabetic,
// deduplicated, and never the word being replaced
func filterSynonyms(raw []string, exclude string) []string {
	var out []string
	seen := make(map[string]bool, len(raw))
	for _, s := range raw {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || s == exclude || seen[s] || !alphabetic(s) {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func alphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

func firstUpper(w string) bool {
	for _, r := range w {
		return unicode.IsUpper(r)
	}
	return false
}

func capitalize(w string) string {
	runes := []rune(w)
	if len(runes) == 0 {
		return w
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
