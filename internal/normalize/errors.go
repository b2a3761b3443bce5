// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"errors"
	"fmt"

	"github.com/pdiddy/governance-engine/pkg/types"
)

var (
	ErrUnrecognizedLandCategory = errors.New("unrecognized land category")
	ErrAmbiguousLandCategory    = errors.New("ambiguous land category")
	ErrUnrecognizedPossession   = errors.New("unrecognized possession status")
	ErrMissingPossession        = errors.New("possession status missing and not derivable from remarks")
	ErrMissingOwner             = errors.New("owner name missing")
	ErrMissingParcel            = errors.New("khasra number missing")
)

// NormalizationError reports the field that caused a record to be rejected.
type NormalizationError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *NormalizationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("row %d: %s: %v", e.Row, e.Field, e.Err)
	}
	return fmt.Sprintf("row %d: %s %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *NormalizationError) Unwrap() error {
	return e.Err
}

// Rejection converts the error into the report row shown to operators.
func (e *NormalizationError) Rejection() types.Rejection {
	return types.Rejection{
		Row:    e.Row,
		Field:  e.Field,
		Value:  e.Value,
		Reason: e.Err.Error(),
	}
}
