package checkout

import (
	"fmt"
	"strings"
)

// ValidationError blocks submission and names every offending field. No
// partial submission happens when validation fails.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("order validation failed: %s", strings.Join(e.Fields, ", "))
}

// SubmissionError means the order write did not happen. The cart is left
// untouched so the shopper can retry.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("order submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
