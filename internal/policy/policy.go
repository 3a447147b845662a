// Package policy enforces the data-handling rules a column mapping must
// satisfy before any encryption or upload is permitted. It is the last line
// of defense against shipping forbidden fields, so its failures are terminal:
// a violation requires a human to change the mapping, never a retry.
package policy

import (
	"fmt"
	"sort"

	"github.com/cardstream/ingest/internal/classify"
)

// Violation codes, quoted to support staff when an upload is blocked.
const (
	CodeCvvForbidden = "POL001"
	CodeMissingPan   = "POL002"
)

// Violation is a terminal policy failure. Column is the offending column
// index for CodeCvvForbidden and -1 otherwise.
type Violation struct {
	Code   string
	Column int
	Reason string
}

func (v *Violation) Error() string {
	if v.Column >= 0 {
		return fmt.Sprintf("%s: %s (column %d)", v.Code, v.Reason, v.Column)
	}
	return fmt.Sprintf("%s: %s", v.Code, v.Reason)
}

// IsCvvForbidden reports whether err is a CVV policy violation.
func IsCvvForbidden(err error) bool {
	v, ok := err.(*Violation)
	return ok && v.Code == CodeCvvForbidden
}

// IsMissingPan reports whether err is a missing-PAN policy violation.
func IsMissingPan(err error) bool {
	v, ok := err.(*Violation)
	return ok && v.Code == CodeMissingPan
}

// Validate checks a column mapping against the hard rules:
//
//   - no column may be mapped to CVV (card verification codes must never be
//     ingested, stored, or transmitted)
//   - at least one column must be mapped to PAN
//
// Name and address fields are optional and never block validation. Validate
// is idempotent; the upload pipeline re-runs it immediately before streaming
// even when the caller already validated for user feedback.
func Validate(mapping classify.ColumnMapping) error {
	// Deterministic scan order so the reported column is stable when more
	// than one column violates.
	cols := make([]int, 0, len(mapping))
	for i := range mapping {
		cols = append(cols, i)
	}
	sort.Ints(cols)

	hasPan := false
	for _, i := range cols {
		switch mapping[i] {
		case classify.Cvv:
			return &Violation{
				Code:   CodeCvvForbidden,
				Column: i,
				Reason: "CVV values must never be uploaded; remove the CVV column from the mapping",
			}
		case classify.Pan:
			hasPan = true
		}
	}

	if !hasPan {
		return &Violation{
			Code:   CodeMissingPan,
			Column: -1,
			Reason: "mapping has no card number column; mark exactly which column holds the PAN",
		}
	}
	return nil
}
