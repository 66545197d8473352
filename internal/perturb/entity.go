package perturb

import (
	"context"
	"regexp"
	"strings"

	"github.com/perturbia/perturbia/internal/model"
	"github.com/perturbia/perturbia/internal/nlp"
)

// listSeparatorRe matches the text allowed between two entities of the same
// list: an Oxford comma, a plain comma, or a bare "and"
var listSeparatorRe = regexp.MustCompile(`^(?:,\s+and\s+|,\s+|\s+and\s+)$`)

// EntityPerturber swaps two names inside an enumeration such as
// "Smith, Johnson, and Lee". Swapping list members never changes what a
// statement asserts, only the order it mentions them in.
type EntityPerturber struct {
	nlp *nlp.Adapter
}

// NewEntityPerturber creates an entity reorder perturber backed by the
// given NLP adapter
func NewEntityPerturber(adapter *nlp.Adapter) *EntityPerturber {
	return &EntityPerturber{nlp: adapter}
}

// Kind identifies the perturbation
func (p *EntityPerturber) Kind() model.PerturbationKind {
	return model.KindEntityReorder
}

// Perturb swaps one pair in the leftmost entity list that has two distinct
// members. The pair is chosen uniformly from all distinct pairs.
func (p *EntityPerturber) Perturb(ctx context.Context, text string, rng *Rand) (Edit, bool) {
	entities := p.nlp.Entities(ctx, text)
	if len(entities) < 2 {
		return Edit{}, false
	}

	for _, run := range entityRuns(text, entities) {
		pairs := distinctPairs(run)
		if len(pairs) == 0 {
			continue
		}
		pick := pairs[rng.IntN(len(pairs))]
		return swapEdit(text, run, pick), true
	}

	return Edit{}, false
}

// entityRuns groups consecutive entities whose gap text is exactly a list
// separator. Only runs of two or more form a list.
func entityRuns(text string, entities []nlp.Entity) [][]nlp.Entity {
	var runs [][]nlp.Entity
	var run []nlp.Entity

	for _, e := range entities {
		if len(run) > 0 {
			gap := text[run[len(run)-1].End:e.Start]
			if listSeparatorRe.MatchString(gap) {
				run = append(run, e)
				continue
			}
			if len(run) >= 2 {
				runs = append(runs, run)
			}
			run = nil
		}
		run = append(run, e)
	}
	if len(run) >= 2 {
		runs = append(runs, run)
	}

	return runs
}

// entityPair indexes two swappable members of a run
type entityPair struct {
	i, j int
}

// distinctPairs lists every pair of run members whose surface texts differ.
// Swapping two identical mentions would produce a no-op edit.
func distinctPairs(run []nlp.Entity) []entityPair {
	var pairs []entityPair
	for i := 0; i < len(run); i++ {
		for j := i + 1; j < len(run); j++ {
			if run[i].Text != run[j].Text {
				pairs = append(pairs, entityPair{i: i, j: j})
			}
		}
	}
	return pairs
}

// swapEdit rebuilds the run with the picked pair exchanged, keeping every
// separator byte-for-byte
func swapEdit(text string, run []nlp.Entity, pick entityPair) Edit {
	start := run[0].Start
	end := run[len(run)-1].End

	var b strings.Builder
	for k, e := range run {
		if k > 0 {
			b.WriteString(text[run[k-1].End:e.Start])
		}
		switch k {
		case pick.i:
			b.WriteString(run[pick.j].Text)
		case pick.j:
			b.WriteString(run[pick.i].Text)
		default:
			b.WriteString(e.Text)
		}
	}

	return Edit{
		From:  text[start:end],
		To:    b.String(),
		Start: start,
		End:   end,
	}
}
