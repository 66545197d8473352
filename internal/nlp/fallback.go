package nlp

import (
	"context"
	"strings"
	"unicode"
)

// functionWords are closed-class words never eligible for synonym replacement
var functionWords = wordSet(
	// Articles and determiners
	"a", "an", "the", "this", "that", "these", "those", "each", "every",
	"any", "some", "no", "all", "both", "such", "other", "another",
	// Prepositions
	"of", "in", "on", "at", "by", "for", "with", "from", "to", "as",
	"into", "onto", "over", "under", "between", "among", "through",
	"during", "before", "after", "above", "below", "per", "via",
	"within", "without", "upon", "about", "against",
	// Conjunctions
	"and", "or", "but", "nor", "so", "yet", "if", "while", "because",
	"although", "though", "than", "whether", "when", "where",
	// Pronouns
	"it", "its", "he", "she", "his", "her", "hers", "they", "them",
	"their", "theirs", "we", "us", "our", "ours", "you", "your", "i",
	"me", "my", "who", "whom", "whose", "which", "what",
	// Auxiliaries and copulas
	"is", "are", "was", "were", "be", "been", "being", "am", "has",
	"have", "had", "having", "do", "does", "did", "will", "would",
	"shall", "should", "may", "might", "must", "can", "could", "not",
)

// organizationSuffixes mark a capitalized run as an organization
var organizationSuffixes = wordSet(
	"inc", "corp", "corporation", "ltd", "llc", "llp", "co", "company",
	"group", "holdings", "trust", "fund", "bank", "partners",
	"associates", "association", "capital", "ventures",
)

// monthNames are excluded from entity runs so date structures stay intact
var monthNames = wordSet(
	"january", "february", "march", "april", "may", "june", "july",
	"august", "september", "october", "november", "december",
)

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// Fallback implements Backend with regex and dictionary heuristics.
// It needs no external data or services and is always available.
type Fallback struct {
	abbrevs   map[string]bool
	thesaurus map[string][]string
}

// NewFallback creates the built-in fallback backend.
// Extra abbreviations extend the sentence splitter's default set.
func NewFallback(extraAbbrevs ...string) *Fallback {
	return &Fallback{
		abbrevs:   abbreviationSet(extraAbbrevs),
		thesaurus: builtinThesaurus(),
	}
}

// Name returns the backend name
func (f *Fallback) Name() string {
	return "fallback"
}

// Available always reports true
func (f *Fallback) Available(_ context.Context) bool {
	return true
}

// Tokenize splits text into maximal letter/digit runs with byte offsets
func (f *Fallback) Tokenize(_ context.Context, text string) []Token {
	var tokens []Token
	start := -1

	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, Token{Text: text[start:i], Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, Token{Text: text[start:], Start: start, End: len(text)})
	}

	return tokens
}

// Sentences splits text into sentence spans
func (f *Fallback) Sentences(_ context.Context, text string) []Span {
	return splitSentences(text, f.abbrevs)
}

// Tag classifies tokens with closed word lists and suffix heuristics
func (f *Fallback) Tag(_ context.Context, tokens []Token) []PartOfSpeech {
	tags := make([]PartOfSpeech, len(tokens))
	for i, tok := range tokens {
		tags[i] = classifyWord(tok.Text)
	}
	return tags
}

func classifyWord(w string) PartOfSpeech {
	if w == "" {
		return POSOther
	}
	if isAllDigits(w) {
		return POSNumber
	}
	lower := strings.ToLower(w)
	if functionWords[lower] {
		return POSFunction
	}
	if len(lower) > 3 && strings.HasSuffix(lower, "ly") {
		return POSAdverb
	}
	// Default content class; the thesaurus decides what is replaceable
	return POSNoun
}

func isAllDigits(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(w) > 0
}

// Entities finds capitalized-word runs and labels them person or organization
func (f *Fallback) Entities(ctx context.Context, text string) []Entity {
	tokens := f.Tokenize(ctx, text)

	var entities []Entity
	var run []Token

	flush := func() {
		if len(run) == 0 {
			return
		}
		entities = append(entities, Entity{
			Text:  text[run[0].Start:run[len(run)-1].End],
			Start: run[0].Start,
			End:   run[len(run)-1].End,
			Label: runLabel(run),
		})
		run = nil
	}

	for _, tok := range tokens {
		if !isNameToken(tok.Text) {
			flush()
			continue
		}
		// Runs only continue across plain spaces; punctuation breaks them
		if len(run) > 0 && !onlySpaces(text, run[len(run)-1].End, tok.Start) {
			flush()
		}
		run = append(run, tok)
	}
	flush()

	return entities
}

// isNameToken reports whether a token can belong to a capitalized entity run
func isNameToken(w string) bool {
	runes := []rune(w)
	if len(runes) < 2 || !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	lower := strings.ToLower(w)
	return !functionWords[lower] && !monthNames[lower]
}

func runLabel(run []Token) EntityLabel {
	for _, tok := range run {
		if organizationSuffixes[strings.ToLower(tok.Text)] {
			return LabelOrganization
		}
	}
	if len(run) > 2 {
		return LabelOrganization
	}
	return LabelPerson
}

func onlySpaces(text string, start, end int) bool {
	if start > end {
		return false
	}
	for i := start; i < end; i++ {
		if text[i] != ' ' {
			return false
		}
	}
	return true
}

// Synonyms returns dictionary synonyms; the built-in thesaurus ignores pos
func (f *Fallback) Synonyms(_ context.Context, word string, _ PartOfSpeech) []string {
	syns, ok := f.thesaurus[strings.ToLower(word)]
	if !ok {
		return nil
	}
	out := make([]string, len(syns))
	copy(out, syns)
	return out
}

// builtinThesaurus covers common statement vocabulary for degraded operation
func builtinThesaurus() map[string][]string {
	return map[string][]string{
		"acquire":       {"purchase", "obtain"},
		"acquired":      {"purchased", "obtained"},
		"agreement":     {"contract", "accord"},
		"announced":     {"declared", "disclosed"},
		"annual":        {"yearly"},
		"approved":      {"endorsed", "ratified", "sanctioned"},
		"approximately": {"roughly", "nearly"},
		"began":         {"started", "commenced"},
		"begin":         {"start", "commence"},
		"complete":      {"finish", "conclude"},
		"completed":     {"finished", "concluded"},
		"decline":       {"decrease", "drop"},
		"declined":      {"decreased", "dropped"},
		"decrease":      {"decline", "reduction"},
		"decreased":     {"declined", "dropped"},
		"disclosed":     {"reported", "revealed"},
		"earnings":      {"profits", "income"},
		"employee":      {"worker", "staffer"},
		"estimate":      {"projection", "forecast"},
		"expand":        {"grow", "enlarge"},
		"expect":        {"anticipate", "project"},
		"expected":      {"anticipated", "projected"},
		"firm":          {"company", "enterprise"},
		"grew":          {"rose", "climbed"},
		"growth":        {"expansion", "increase"},
		"held":          {"maintained", "retained"},
		"important":     {"significant", "essential"},
		"increase":      {"rise", "gain"},
		"increased":     {"rose", "climbed"},
		"large":         {"substantial", "sizable"},
		"merger":        {"consolidation", "amalgamation"},
		"obtained":      {"acquired", "secured"},
		"owned":         {"held", "possessed"},
		"primary":       {"main", "principal"},
		"profit":        {"gain", "surplus"},
		"provided":      {"supplied", "furnished"},
		"purchase":      {"acquisition", "buy"},
		"purchased":     {"acquired", "bought"},
		"quickly":       {"rapidly", "swiftly"},
		"received":      {"obtained", "collected"},
		"reported":      {"disclosed", "stated"},
		"require":       {"need", "demand"},
		"revenue":       {"income", "turnover"},
		"significant":   {"material", "notable"},
		"small":         {"modest", "minor"},
		"sold":          {"divested", "transferred"},
		"statement":     {"declaration", "assertion"},
		"total":         {"aggregate", "overall"},
	}
}
