package perturb

import (
	"context"

	"github.com/perturbia/perturbia/internal/model"
)

// Edit describes one substring replacement within a text
type Edit struct {
	From  string // Exact substring being replaced
	To    string // Replacement text
	Start int    // Byte offset of From within the text
	End   int    // Byte offset just past From
}

// Perturber detects and transforms one class of surface pattern.
// Perturb returns the edit and true when the text contains an applicable
// pattern. False means not applicable; it is never an error condition,
// the orchestrator simply moves on to the next perturbation type.
type Perturber interface {
	// Kind identifies the perturbation this implementation performs
	Kind() model.PerturbationKind

	// Perturb finds one applicable pattern and returns the edit for it.
	// Random choices draw from rng so results are reproducible per statement.
	Perturb(ctx context.Context, text string, rng *Rand) (Edit, bool)
}

// span is a half-open [start, end) byte range
type span struct {
	start int
	end   int
}

func (s span) contains(start, end int) bool {
	return end > s.start && start < s.end
}
