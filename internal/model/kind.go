package model

// PerturbationKind identifies one of the supported surface perturbations
type PerturbationKind string

const (
	KindDateFormat     PerturbationKind = "date_format"     // Rewrite a date between numeric and spelled forms
	KindEntityReorder  PerturbationKind = "entity_reorder"  // Swap two entities within a list
	KindNumberRephrase PerturbationKind = "number_rephrase" // Rewrite a number between compact and expanded forms
	KindSynonym        PerturbationKind = "synonym"         // Replace a content word with a synonym
)

// KnownKinds returns every supported perturbation kind in canonical order
func KnownKinds() []PerturbationKind {
	return []PerturbationKind{
		KindDateFormat,
		KindEntityReorder,
		KindNumberRephrase,
		KindSynonym,
	}
}

// ParseKind validates a kind name from configuration
func ParseKind(s string) (PerturbationKind, error) {
	for _, k := range KnownKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", ErrUnknownKind
}

func (k PerturbationKind) String() string {
	return string(k)
}
