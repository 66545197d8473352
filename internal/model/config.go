package model

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Sentinel configuration errors, checked with errors.Is
var (
	ErrUnknownKind     = errors.New("unknown perturbation type")
	ErrUnknownOrder    = errors.New("unknown attempt order mode")
	ErrUnknownProvider = errors.New("unknown nlp provider")
	ErrNoKindsEnabled  = errors.New("no perturbation types enabled")
	ErrNegativeMax     = errors.New("max must be >= 0")
)

// OrderMode controls how perturbation types are tried per statement
type OrderMode string

const (
	OrderConfigured OrderMode = "configured" // Try types in configured order
	OrderRandom     OrderMode = "random"     // Shuffle types per statement from its seed stream
)

// Config holds the complete application configuration
type Config struct {
	Perturbation PerturbationConfig `yaml:"perturbation" mapstructure:"perturbation"`
	NLP          NLPConfig          `yaml:"nlp" mapstructure:"nlp"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Input        InputConfig        `yaml:"input" mapstructure:"input"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// PerturbationConfig controls the perturbation engine
type PerturbationConfig struct {
	EnabledTypes  []string `yaml:"enabled_types" mapstructure:"enabled_types"`   // Perturbation types to attempt, in order
	Order         string   `yaml:"order" mapstructure:"order"`                   // "configured" or "random"
	SentenceLevel bool     `yaml:"sentence_level" mapstructure:"sentence_level"` // Perturb one sentence at a time
	Seed          uint64   `yaml:"seed" mapstructure:"seed"`                     // RNG seed for reproducible runs
	Max           int      `yaml:"max" mapstructure:"max"`                       // Cap on perturbed statements (0 = unlimited)
}

// NLPConfig selects and configures the optional NLP backend
type NLPConfig struct {
	Provider   string       `yaml:"provider" mapstructure:"provider"`       // "", "lexicon", "openai"
	LexiconDir string       `yaml:"lexicon_dir" mapstructure:"lexicon_dir"` // Data directory for the lexicon backend
	OpenAI     OpenAIConfig `yaml:"openai" mapstructure:"openai"`
}

// OpenAIConfig configures the OpenAI-backed NLP provider
type OpenAIConfig struct {
	Model             string  `yaml:"model" mapstructure:"model"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey            string  `yaml:"-" mapstructure:"-"` // From OPENAI_API_KEY, never persisted
	TimeoutSeconds    int     `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// CacheConfig controls caching of NLP lookups
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir        string `yaml:"dir" mapstructure:"dir"` // Non-empty adds a persistent disk layer
	TTLMinutes int    `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
}

// ConcurrencyConfig controls parallel statement processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// InputConfig controls input preprocessing
type InputConfig struct {
	StripHTML bool `yaml:"strip_html" mapstructure:"strip_html"` // Extract visible text from HTML statements
}

// OutputConfig controls result rendering
type OutputConfig struct {
	Pretty  bool `yaml:"pretty" mapstructure:"pretty"` // Indent output JSON with four spaces
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Perturbation: PerturbationConfig{
			EnabledTypes: []string{
				string(KindDateFormat),
				string(KindEntityReorder),
				string(KindNumberRephrase),
				string(KindSynonym),
			},
			Order:         string(OrderConfigured),
			SentenceLevel: true,
			Seed:          42,
			Max:           0,
		},
		NLP: NLPConfig{
			Provider:   "", // Built-in fallbacks only
			LexiconDir: "",
			OpenAI: OpenAIConfig{
				Model:             "gpt-4o-mini",
				TimeoutSeconds:    30,
				RequestsPerSecond: 4,
				Burst:             2,
			},
		},
		Cache: CacheConfig{
			Enabled:    true,
			Dir:        "",
			TTLMinutes: 1440,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
		Input: InputConfig{
			StripHTML: false,
		},
		Output: OutputConfig{
			Pretty: true,
		},
	}
}

// Validate checks the configuration before any processing starts
func (c *Config) Validate() error {
	if len(c.Perturbation.EnabledTypes) == 0 {
		return ErrNoKindsEnabled
	}
	for _, t := range c.Perturbation.EnabledTypes {
		if _, err := ParseKind(t); err != nil {
			return errors.Wrapf(err, "%q", t)
		}
	}
	switch OrderMode(c.Perturbation.Order) {
	case OrderConfigured, OrderRandom:
	default:
		return errors.Wrapf(ErrUnknownOrder, "%q", c.Perturbation.Order)
	}
	if c.Perturbation.Max < 0 {
		return errors.Wrapf(ErrNegativeMax, "got %d", c.Perturbation.Max)
	}
	switch c.NLP.Provider {
	case "", "lexicon", "openai":
	default:
		return errors.Wrapf(ErrUnknownProvider, "%q (supported: lexicon, openai)", c.NLP.Provider)
	}
	return nil
}

// EnabledKinds converts the configured type names to kinds, preserving order
func (c *PerturbationConfig) EnabledKinds() ([]PerturbationKind, error) {
	kinds := make([]PerturbationKind, 0, len(c.EnabledTypes))
	seen := make(map[PerturbationKind]bool)
	for _, t := range c.EnabledTypes {
		k, err := ParseKind(t)
		if err != nil {
			return nil, errors.Wrapf(err, "%q", t)
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// CacheTTL returns the lookup cache TTL as a duration
func (c *CacheConfig) CacheTTL() time.Duration {
	if c.TTLMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.TTLMinutes) * time.Minute
}
