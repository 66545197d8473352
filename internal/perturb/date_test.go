package perturb

import (
	"context"
	"strings"
	"testing"
)

func TestDatePerturber_SpelledToNumeric(t *testing.T) {
	p := NewDatePerturber()

	text := "The merger was announced on December 31, 2023 by the board."
	edit, ok := p.Perturb(context.Background(), text, NewRand(42, 0))
	if !ok {
		t.Fatal("Expected a date perturbation")
	}

	if edit.From != "December 31, 2023" {
		t.Errorf("Expected From %q, got %q", "December 31, 2023", edit.From)
	}
	if edit.To != "12/31/2023" {
		t.Errorf("Expected To %q, got %q", "12/31/2023", edit.To)
	}
	if text[edit.Start:edit.End] != edit.From {
		t.Errorf("Edit offsets do not cover From: %q", text[edit.Start:edit.End])
	}
}

func TestDatePerturber_NumericToSpelled(t *testing.T) {
	p := NewDatePerturber()

	text := "The filing was submitted 01/15/2024 to the commission."
	edit, ok := p.Perturb(context.Background(), text, NewRand(42, 0))
	if !ok {
		t.Fatal("Expected a date perturbation")
	}

	if edit.From != "01/15/2024" {
		t.Errorf("Expected From %q, got %q", "01/15/2024", edit.From)
	}
	if edit.To != "January 15, 2024" {
		t.Errorf("Expected To %q, got %q", "January 15, 2024", edit.To)
	}
}

func TestDatePerturber_Forms(t *testing.T) {
	tests := []struct {
		name string
		text string
		from string
		to   string
	}{
		{
			name: "ordinal day suffix",
			text: "Payment is due March 3rd, 2021 at noon.",
			from: "March 3rd, 2021",
			to:   "03/03/2021",
		},
		{
			name: "no comma before year",
			text: "Payment is due March 3 2021 at noon.",
			from: "March 3 2021",
			to:   "03/03/2021",
		},
		{
			name: "lowercase month",
			text: "due by december 31, 2023 at the latest",
			from: "december 31, 2023",
			to:   "12/31/2023",
		},
		{
			name: "dash separators",
			text: "Recorded 12-31-2023 in the ledger.",
			from: "12-31-2023",
			to:   "December 31, 2023",
		},
		{
			name: "dot separators",
			text: "Recorded 12.31.2023 in the ledger.",
			from: "12.31.2023",
			to:   "December 31, 2023",
		},
		{
			name: "two digit year reads as 20YY",
			text: "Shipped 7/4/24 from the warehouse.",
			from: "7/4/24",
			to:   "July 4, 2024",
		},
		{
			name: "year in the nineteen hundreds",
			text: "Founded 06/12/1999 in Ohio.",
			from: "06/12/1999",
			to:   "June 12, 1999",
		},
	}

	p := NewDatePerturber()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edit, ok := p.Perturb(context.Background(), tt.text, NewRand(42, 0))
			if !ok {
				t.Fatal("Expected a date perturbation")
			}
			if edit.From != tt.from {
				t.Errorf("Expected From %q, got %q", tt.from, edit.From)
			}
			if edit.To != tt.to {
				t.Errorf("Expected To %q, got %q", tt.to, edit.To)
			}
		})
	}
}

func TestDatePerturber_NotApplicable(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "no date at all", text: "Revenue grew twelve percent year over year."},
		{name: "impossible numeric date", text: "Scheduled for 2/30/2023 originally."},
		{name: "impossible spelled date", text: "Scheduled for February 30, 2023 originally."},
		{name: "mixed separators", text: "Scheduled for 12-31/2023 originally."},
		{name: "month out of range", text: "Reference 13/01/2023 in the index."},
		{name: "four digit year out of range", text: "Projected for 12/31/2123 eventually."},
		{name: "empty", text: ""},
	}

	p := NewDatePerturber()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := p.Perturb(context.Background(), tt.text, NewRand(42, 0)); ok {
				t.Errorf("Expected no perturbation for %q", tt.text)
			}
		})
	}
}

func TestDatePerturber_LeftmostWins(t *testing.T) {
	p := NewDatePerturber()

	text := "Signed March 5, 2020 and effective 04/01/2020 company-wide."
	edit, ok := p.Perturb(context.Background(), text, NewRand(42, 0))
	if !ok {
		t.Fatal("Expected a date perturbation")
	}
	if edit.From != "March 5, 2020" {
		t.Errorf("Expected leftmost date to win, got %q", edit.From)
	}
}

func TestDatePerturber_SkipsInvalidCandidate(t *testing.T) {
	p := NewDatePerturber()

	// The first candidate fails calendar validation; the next one is used
	text := "Moved from 2/30/2023 to 3/15/2023 instead."
	edit, ok := p.Perturb(context.Background(), text, NewRand(42, 0))
	if !ok {
		t.Fatal("Expected a date perturbation")
	}
	if edit.From != "3/15/2023" {
		t.Errorf("Expected the valid candidate, got %q", edit.From)
	}
	if edit.To != "March 15, 2023" {
		t.Errorf("Expected To %q, got %q", "March 15, 2023", edit.To)
	}
}

func TestDatePerturber_RoundTrip(t *testing.T) {
	p := NewDatePerturber()
	ctx := context.Background()

	text := "Closed on 12/31/2023 as planned."
	first, ok := p.Perturb(ctx, text, NewRand(42, 0))
	if !ok {
		t.Fatal("Expected a date perturbation")
	}

	updated := text[:first.Start] + first.To + text[first.End:]
	if !strings.Contains(updated, "December 31, 2023") {
		t.Fatalf("Unexpected first rewrite: %q", updated)
	}

	second, ok := p.Perturb(ctx, updated, NewRand(42, 0))
	if !ok {
		t.Fatal("Expected a date perturbation on the rewritten text")
	}
	if second.To != "12/31/2023" {
		t.Errorf("Expected round trip back to %q, got %q", "12/31/2023", second.To)
	}
}
