package nlp

import "testing"

func TestSanitizeEntities(t *testing.T) {
	text := "Smith met Johnson."

	// Two good spans plus a text mismatch, a span cutting into a word,
	// and two out-of-bounds spans
	entities := []Entity{
		{Text: "Johnson", Start: 10, End: 17, Label: LabelPerson},
		{Text: "Smith", Start: 0, End: 5, Label: LabelPerson},
		{Text: "Smith", Start: 10, End: 17, Label: LabelPerson},
		{Text: "mith", Start: 1, End: 5, Label: LabelPerson},
		{Text: "Smith", Start: -1, End: 5, Label: LabelPerson},
		{Text: "Johnson.", Start: 10, End: 99, Label: LabelPerson},
	}

	got := sanitizeEntities(text, entities)

	want := []Entity{
		{Text: "Smith", Start: 0, End: 5, Label: LabelPerson},
		{Text: "Johnson", Start: 10, End: 17, Label: LabelPerson},
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d entities, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Entity %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestSanitizeEntities_DropsOverlaps(t *testing.T) {
	text := "Acme Group rose."

	entities := []Entity{
		{Text: "Acme", Start: 0, End: 4, Label: LabelOrganization},
		{Text: "Acme Group", Start: 0, End: 10, Label: LabelOrganization},
		{Text: "Group", Start: 5, End: 10, Label: LabelOrganization},
	}

	got := sanitizeEntities(text, entities)

	// The longest span at an offset wins; everything it covers is dropped
	if len(got) != 1 || got[0].Text != "Acme Group" {
		t.Errorf("Expected only the longest span, got %+v", got)
	}
}

func TestAnchorEntities(t *testing.T) {
	text := "Acme bought Acme Services from Smith."

	mentions := []Entity{
		{Text: "Acme", Label: LabelOrganization},
		{Text: "Acme", Label: LabelOrganization},
		{Text: "Smith", Label: LabelPerson},
		{Text: "Zeta", Label: LabelOrganization}, // Not present
		{Text: "", Label: LabelPerson},
	}

	got := anchorEntities(text, mentions)

	want := []Entity{
		{Text: "Acme", Start: 0, End: 4, Label: LabelOrganization},
		{Text: "Acme", Start: 12, End: 16, Label: LabelOrganization},
		{Text: "Smith", Start: 31, End: 36, Label: LabelPerson},
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d entities, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Entity %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestAnchorEntities_RejectsMidWordMatch(t *testing.T) {
	// "Lee" appears only inside "Fleet"; anchoring must not accept it
	got := anchorEntities("The Fleet sailed.", []Entity{{Text: "lee", Label: LabelPerson}})
	if len(got) != 0 {
		t.Errorf("Expected no entities, got %+v", got)
	}
}
