package nlp

import (
	"context"

	"github.com/perturbia/perturbia/internal/model"
)

// Backend defines the interface for NLP capability providers.
// Implementations never return errors to callers: a capability that cannot
// answer returns an empty result, and the adapter falls back.
type Backend interface {
	// Name returns the backend name
	Name() string

	// Available checks if the backend is properly configured and usable.
	// Called once at adapter construction, never per statement.
	Available(ctx context.Context) bool

	// Tokenize splits text into word tokens with character offsets
	Tokenize(ctx context.Context, text string) []Token

	// Sentences splits text into sentence spans
	Sentences(ctx context.Context, text string) []Span

	// Tag assigns a part of speech to each token
	Tag(ctx context.Context, tokens []Token) []PartOfSpeech

	// Entities finds person and organization mentions with offsets
	Entities(ctx context.Context, text string) []Entity

	// Synonyms returns same-part-of-speech synonyms for a word
	Synonyms(ctx context.Context, word string, pos PartOfSpeech) []string
}

// Span is a half-open [Start, End) byte range within a text
type Span struct {
	Start int
	End   int
}

// Token is a word token with its position in the source text
type Token struct {
	Text  string
	Start int
	End   int
}

// PartOfSpeech is a coarse word class used for synonym filtering
type PartOfSpeech string

const (
	POSNoun      PartOfSpeech = "noun"
	POSVerb      PartOfSpeech = "verb"
	POSAdjective PartOfSpeech = "adj"
	POSAdverb    PartOfSpeech = "adv"
	POSFunction  PartOfSpeech = "function" // Articles, prepositions, pronouns, auxiliaries
	POSNumber    PartOfSpeech = "number"
	POSOther     PartOfSpeech = "other"
)

// Content reports whether the part of speech is eligible for synonym replacement
func (p PartOfSpeech) Content() bool {
	switch p {
	case POSNoun, POSVerb, POSAdjective, POSAdverb:
		return true
	}
	return false
}

// EntityLabel classifies a named entity
type EntityLabel string

const (
	LabelPerson       EntityLabel = "person"
	LabelOrganization EntityLabel = "organization"
)

// Entity is a named entity mention with its position in the source text
type Entity struct {
	Text  string
	Start int
	End   int
	Label EntityLabel
}

// Config holds NLP backend configuration
type Config struct {
	// Provider name: "lexicon", "openai", ""
	Provider string

	// LexiconDir is the data directory for the lexicon backend
	LexiconDir string

	// Model name for the OpenAI backend
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// RequestsPerSecond limits API request rate per capability
	RequestsPerSecond float64

	// Burst is the rate limiter burst size
	Burst int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:          "", // Fallbacks only by default
		Model:             "gpt-4o-mini",
		Timeout:           30,
		RequestsPerSecond: 4,
		Burst:             2,
	}
}

// ConfigFromModel converts model.NLPConfig to nlp.Config
func ConfigFromModel(mc model.NLPConfig) Config {
	return Config{
		Provider:          mc.Provider,
		LexiconDir:        mc.LexiconDir,
		Model:             mc.OpenAI.Model,
		APIKey:            mc.OpenAI.APIKey,
		BaseURL:           mc.OpenAI.BaseURL,
		Timeout:           mc.OpenAI.TimeoutSeconds,
		RequestsPerSecond: mc.OpenAI.RequestsPerSecond,
		Burst:             mc.OpenAI.Burst,
	}
}
