package model

// StatementInput represents a single input record to perturb
type StatementInput struct {
	Statement string `json:"statement"` // The original statement text
}

// Operation records a single surface edit applied to a statement
// Key casing matches the downstream evaluation harness and must not change
type Operation struct {
	Target PerturbationKind `json:"Target"` // Which perturbation produced the edit
	From   string           `json:"From"`   // Exact substring of the original statement
	To     string           `json:"To"`     // Exact substring of the updated statement
}

// StatementResult pairs a statement with its perturbed form and the edit record
type StatementResult struct {
	Statement        string      `json:"statement"`         // Original text, verbatim
	UpdatedStatement string      `json:"updated_statement"` // Perturbed text (equal to Statement when nothing applied)
	Operations       []Operation `json:"operations"`        // Zero or one operations, never null
}

// NewResult creates a pass-through result for a statement.
// Operations is initialized empty so it marshals as [] rather than null.
func NewResult(statement string) StatementResult {
	return StatementResult{
		Statement:        statement,
		UpdatedStatement: statement,
		Operations:       []Operation{},
	}
}

// Perturbed reports whether the result carries an applied operation
func (r StatementResult) Perturbed() bool {
	return len(r.Operations) > 0
}
