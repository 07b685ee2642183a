package features

import (
	"errors"
	"fmt"
)

var ErrNoEncoder = errors.New("features: encoder not provided")

// SchemaMismatchError reports a missing or invalid input field, or a
// feature column that cannot be aligned with the model's expected order.
type SchemaMismatchError struct {
	Field  string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	if e.Field == "" {
		return "schema mismatch: " + e.Reason
	}
	return fmt.Sprintf("schema mismatch: %s %s", e.Field, e.Reason)
}

func MissingField(field string) *SchemaMismatchError {
	return &SchemaMismatchError{Field: field, Reason: "is required"}
}

func IsSchemaMismatch(err error) bool {
	var sm *SchemaMismatchError
	return errors.As(err, &sm)
}
