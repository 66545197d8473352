package nlp

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/perturbia/perturbia/internal/cache"
	"github.com/perturbia/perturbia/internal/model"
)

// Adapter routes NLP capability calls to the configured backend, falling
// back to the built-in heuristics whenever the backend cannot answer.
// It is constructed once before processing begins and is immutable and
// safe for concurrent use afterwards.
type Adapter struct {
	backend  Backend // nil when no backend is configured or it degraded
	fallback *Fallback
	degraded bool
	reason   string
}

// NewAdapter resolves and probes the configured backend exactly once.
// A backend that cannot load or is unreachable degrades the adapter to
// fallbacks with a single log line; only an unknown provider name is an
// error, since that is a configuration mistake.
func NewAdapter(ctx context.Context, config Config, lookups cache.Cache, logger *zap.Logger) (*Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &Adapter{fallback: NewFallback()}

	backend, err := NewBackend(config, lookups)
	if err != nil {
		if errors.Is(err, model.ErrUnknownProvider) {
			return nil, err
		}
		a.degraded = true
		a.reason = err.Error()
		logger.Info("nlp backend unavailable, using built-in fallbacks",
			zap.String("provider", config.Provider),
			zap.String("reason", a.reason))
		return a, nil
	}
	if backend == nil {
		// Fallbacks by configuration, not degradation
		return a, nil
	}

	if !backend.Available(ctx) {
		a.degraded = true
		a.reason = "availability probe failed"
		logger.Info("nlp backend unavailable, using built-in fallbacks",
			zap.String("provider", backend.Name()),
			zap.String("reason", a.reason))
		return a, nil
	}

	a.backend = backend
	logger.Debug("nlp backend ready", zap.String("provider", backend.Name()))
	return a, nil
}

// Degraded reports whether a configured backend had to be abandoned
func (a *Adapter) Degraded() bool {
	return a.degraded
}

// Reason returns why the adapter degraded, empty otherwise
func (a *Adapter) Reason() string {
	return a.reason
}

// BackendName names the active capability source
func (a *Adapter) BackendName() string {
	if a.backend != nil {
		return a.backend.Name()
	}
	return a.fallback.Name()
}

// Tokenize splits text into word tokens with offsets
func (a *Adapter) Tokenize(ctx context.Context, text string) []Token {
	if a.backend != nil {
		if tokens := a.backend.Tokenize(ctx, text); len(tokens) > 0 {
			return tokens
		}
	}
	return a.fallback.Tokenize(ctx, text)
}

// Sentences splits text into sentence spans
func (a *Adapter) Sentences(ctx context.Context, text string) []Span {
	if a.backend != nil {
		if spans := a.backend.Sentences(ctx, text); len(spans) > 0 {
			return spans
		}
	}
	return a.fallback.Sentences(ctx, text)
}

// Tag assigns a part of speech to each token
func (a *Adapter) Tag(ctx context.Context, tokens []Token) []PartOfSpeech {
	if len(tokens) == 0 {
		return nil
	}
	if a.backend != nil {
		if tags := a.backend.Tag(ctx, tokens); len(tags) == len(tokens) {
			return tags
		}
	}
	return a.fallback.Tag(ctx, tokens)
}

// Entities finds person and organization mentions. Results are sanitized:
// spans are in bounds, on word boundaries, non-overlapping and sorted.
func (a *Adapter) Entities(ctx context.Context, text string) []Entity {
	if a.backend != nil {
		if ents := a.backend.Entities(ctx, text); len(ents) > 0 {
			return sanitizeEntities(text, ents)
		}
	}
	return sanitizeEntities(text, a.fallback.Entities(ctx, text))
}

// Synonyms returns same-class synonyms for a word
func (a *Adapter) Synonyms(ctx context.Context, word string, pos PartOfSpeech) []string {
	if a.backend != nil {
		if syns := a.backend.Synonyms(ctx, word, pos); len(syns) > 0 {
			return syns
		}
	}
	return a.fallback.Synonyms(ctx, word, pos)
}
