package perturb

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/perturbia/perturbia/internal/model"
	"github.com/perturbia/perturbia/internal/nlp"
)

// Engine applies at most one perturbation per statement. Types are tried
// until one applies; a statement no type can handle passes through with an
// empty operations list.
type Engine struct {
	kinds    []model.PerturbationKind
	table    map[model.PerturbationKind]Perturber
	adapter  *nlp.Adapter
	order    model.OrderMode
	sentence bool
	seed     uint64
	logger   *zap.Logger
}

// NewEngine builds an engine from the perturbation config. Every enabled
// type must name a known perturbation and at least one must be enabled.
func NewEngine(cfg model.PerturbationConfig, adapter *nlp.Adapter, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	kinds, err := cfg.EnabledKinds()
	if err != nil {
		return nil, err
	}
	if len(kinds) == 0 {
		return nil, model.ErrNoKindsEnabled
	}

	table := map[model.PerturbationKind]Perturber{
		model.KindDateFormat:     NewDatePerturber(),
		model.KindNumberRephrase: NewNumberPerturber(),
		model.KindEntityReorder:  NewEntityPerturber(adapter),
		model.KindSynonym:        NewSynonymPerturber(adapter),
	}

	return &Engine{
		kinds:    kinds,
		table:    table,
		adapter:  adapter,
		order:    model.OrderMode(cfg.Order),
		sentence: cfg.SentenceLevel,
		seed:     cfg.Seed,
		logger:   logger,
	}, nil
}

// Kinds returns the enabled perturbation kinds in configured order
func (e *Engine) Kinds() []model.PerturbationKind {
	out := make([]model.PerturbationKind, len(e.kinds))
	copy(out, e.kinds)
	return out
}

// Perturb processes one statement. index selects the statement's RNG
// stream, so the outcome depends only on the seed, the statement's input
// position, its text, and the configuration.
func (e *Engine) Perturb(ctx context.Context, statement string, index int) model.StatementResult {
	result := model.NewResult(statement)
	if strings.TrimSpace(statement) == "" {
		return result
	}

	rng := NewRand(e.seed, index)

	kinds := e.kinds
	if e.order == model.OrderRandom {
		kinds = append([]model.PerturbationKind(nil), e.kinds...)
		rng.Shuffle(len(kinds), func(i, j int) {
			kinds[i], kinds[j] = kinds[j], kinds[i]
		})
	}

	segments := e.segments(ctx, statement, rng)

	for _, kind := range kinds {
		p := e.table[kind]
		for _, seg := range segments {
			edit, ok := p.Perturb(ctx, statement[seg.start:seg.end], rng)
			if !ok {
				continue
			}

			start := seg.start + edit.Start
			end := seg.start + edit.End
			result.UpdatedStatement = statement[:start] + edit.To + statement[end:]
			result.Operations = append(result.Operations, model.Operation{
				Target: kind,
				From:   edit.From,
				To:     edit.To,
			})

			e.logger.Debug("perturbation applied",
				zap.Int("statement", index),
				zap.String("type", kind.String()),
				zap.String("from", edit.From),
				zap.String("to", edit.To))

			return result
		}
	}

	return result
}

// segments returns the spans perturbers run against: the whole statement,
// or each sentence when sentence-level perturbation is on
func (e *Engine) segments(ctx context.Context, statement string, rng *Rand) []span {
	whole := []span{{start: 0, end: len(statement)}}
	if !e.sentence {
		return whole
	}

	sentences := e.adapter.Sentences(ctx, statement)
	if len(sentences) == 0 {
		return whole
	}

	segments := make([]span, len(sentences))
	for i, s := range sentences {
		segments[i] = span{start: s.Start, end: s.End}
	}
	if e.order == model.OrderRandom && len(segments) > 1 {
		rng.Shuffle(len(segments), func(i, j int) {
			segments[i], segments[j] = segments[j], segments[i]
		})
	}
	return segments
}
