package perturb

import (
	"context"
	"testing"

	"github.com/perturbia/perturbia/internal/nlp"
)

// newFallbackAdapter builds an adapter with no backend configured, so every
// capability uses the built-in fallbacks
func newFallbackAdapter(t *testing.T) *nlp.Adapter {
	t.Helper()
	adapter, err := nlp.NewAdapter(context.Background(), nlp.Config{}, nil, nil)
	if err != nil {
		t.Fatalf("NewAdapter() error = %v", err)
	}
	return adapter
}

func TestEntityPerturber_SwapsListPair(t *testing.T) {
	p := NewEntityPerturber(newFallbackAdapter(t))

	text := "Smith, Johnson, and Lee all approved the merger."
	edit, ok := p.Perturb(context.Background(), text, NewRand(42, 0))
	if !ok {
		t.Fatal("Expected an entity perturbation")
	}

	if edit.From != "Smith, Johnson, and Lee" {
		t.Errorf("Expected the whole list as From, got %q", edit.From)
	}
	if text[edit.Start:edit.End] != edit.From {
		t.Errorf("Edit offsets do not cover From: %q", text[edit.Start:edit.End])
	}

	// One pair swapped, separators untouched
	valid := map[string]bool{
		"Johnson, Smith, and Lee": true,
		"Lee, Johnson, and Smith": true,
		"Smith, Lee, and Johnson": true,
	}
	if !valid[edit.To] {
		t.Errorf("Expected a single pair swap, got %q", edit.To)
	}
}

func TestEntityPerturber_TwoMemberList(t *testing.T) {
	p := NewEntityPerturber(newFallbackAdapter(t))

	text := "Acme Corp and Beta LLC signed the agreement."
	edit, ok := p.Perturb(context.Background(), text, NewRand(42, 0))
	if !ok {
		t.Fatal("Expected an entity perturbation")
	}

	if edit.From != "Acme Corp and Beta LLC" {
		t.Errorf("Expected From %q, got %q", "Acme Corp and Beta LLC", edit.From)
	}
	if edit.To != "Beta LLC and Acme Corp" {
		t.Errorf("Expected To %q, got %q", "Beta LLC and Acme Corp", edit.To)
	}
}

func TestEntityPerturber_NotApplicable(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "single entity", text: "Smith approved the merger yesterday."},
		{name: "entities without list separators", text: "Smith met Johnson at the office."},
		{name: "identical members only", text: "Acme, Acme, and Acme formed a group."},
		{name: "no names at all", text: "the quarterly report was filed on time."},
		{name: "empty", text: ""},
	}

	p := NewEntityPerturber(newFallbackAdapter(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if edit, ok := p.Perturb(context.Background(), tt.text, NewRand(42, 0)); ok {
				t.Errorf("Expected no perturbation for %q, got %q -> %q", tt.text, edit.From, edit.To)
			}
		})
	}
}

func TestEntityPerturber_SkipsIdenticalRun(t *testing.T) {
	p := NewEntityPerturber(newFallbackAdapter(t))

	// The first list has no distinct pair; the later one does
	text := "Acme, Acme, and Acme retained Smith and Lee yesterday."
	edit, ok := p.Perturb(context.Background(), text, NewRand(42, 0))
	if !ok {
		t.Fatal("Expected an entity perturbation")
	}
	if edit.From != "Smith and Lee" {
		t.Errorf("Expected the later list, got %q", edit.From)
	}
	if edit.To != "Lee and Smith" {
		t.Errorf("Expected To %q, got %q", "Lee and Smith", edit.To)
	}
}

func TestEntityPerturber_Deterministic(t *testing.T) {
	p := NewEntityPerturber(newFallbackAdapter(t))
	text := "Smith, Johnson, and Lee all approved the merger."

	first, ok := p.Perturb(context.Background(), text, NewRand(7, 3))
	if !ok {
		t.Fatal("Expected an entity perturbation")
	}
	second, ok := p.Perturb(context.Background(), text, NewRand(7, 3))
	if !ok {
		t.Fatal("Expected an entity perturbation")
	}
	if first != second {
		t.Errorf("Same seed and index produced different edits: %+v vs %+v", first, second)
	}
}
