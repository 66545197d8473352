package nlp

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/perturbia/perturbia/internal/cache"
	"github.com/perturbia/perturbia/internal/model"
)

// NewBackend creates an NLP backend based on configuration.
// An empty provider name returns (nil, nil): the adapter then runs on
// fallbacks alone. An unknown provider name is a configuration error;
// a known provider that fails to load is reported as a plain error and
// the adapter downgrades it to capability degradation.
func NewBackend(config Config, lookups cache.Cache) (Backend, error) {
	switch strings.ToLower(config.Provider) {
	case "lexicon":
		return NewLexiconBackend(config.LexiconDir)

	case "openai":
		return NewOpenAIBackend(config, lookups)

	case "":
		return nil, nil

	default:
		return nil, errors.Wrapf(model.ErrUnknownProvider, "%q (supported: lexicon, openai)", config.Provider)
	}
}
