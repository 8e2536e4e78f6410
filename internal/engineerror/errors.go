// Package engineerror defines the typed errors the engine surfaces to callers.
package engineerror

import "fmt"

// RuleValidationError reports a merchant rule rejected at write time. The rule
// is identified by its source position in the batch so operators can fix the
// offending entry without guessing.
type RuleValidationError struct {
	Index   int    // position of the rule in the submitted batch
	Pattern string
	Field   string // which rule field failed validation
	Reason  string
	Err     error
}

func (e *RuleValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rule %d: invalid %s %q: %s: %v", e.Index, e.Field, e.Pattern, e.Reason, e.Err)
	}
	return fmt.Sprintf("rule %d: invalid %s %q: %s", e.Index, e.Field, e.Pattern, e.Reason)
}

func (e *RuleValidationError) Unwrap() error {
	return e.Err
}

// UnknownDimensionError reports a rule or override referencing a category or
// subcategory code that does not exist in the dimension tables.
type UnknownDimensionError struct {
	Dimension string // "category" or "subcategory"
	Code      string
}

func (e *UnknownDimensionError) Error() string {
	return fmt.Sprintf("unknown %s code %q", e.Dimension, e.Code)
}

// EnrichmentError reports a failure while enriching a single parsed
// transaction. Batch runs log it and continue with the remaining rows.
type EnrichmentError struct {
	TransactionID string
	Stage         string
	Err           error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("enrichment of %s failed at %s: %v", e.TransactionID, e.Stage, e.Err)
}

func (e *EnrichmentError) Unwrap() error {
	return e.Err
}
