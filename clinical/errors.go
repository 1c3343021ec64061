/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package clinical

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

var (
	ErrMissingDate              = errors.New("missing date")
	ErrInvalidDate              = errors.New("invalid date")
	ErrMedicationNameRequired   = errors.New("medication name is required")
	ErrMedicationEndBeforeStart = errors.New("medication end date is before its start date")
	ErrNilWriter                = errors.New("result writer is nil")
)

// ValidationError reports a submitted value that is not a finite number.
type ValidationError struct {
	ItemID   uuid.UUID
	ItemName string
	Value    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: not a number", e.Value, e.ItemName)
}

// NotFoundError reports a referenced test item that has no catalog entry.
type NotFoundError struct {
	ItemID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("test item %s not found", e.ItemID)
}

// AmbiguousDataError reports more than one stored result for the same
// (item, date) pair. It is only returned when the matrix is built with
// RejectDuplicates.
type AmbiguousDataError struct {
	ItemID    uuid.UUID
	Date      string
	ResultIDs []uuid.UUID
}

func (e *AmbiguousDataError) Error() string {
	return fmt.Sprintf("%d results stored for item %s on %s", len(e.ResultIDs), e.ItemID, e.Date)
}

// WriteKind names the sub-operation of an applied plan.
type WriteKind string

const (
	WriteCreate WriteKind = "create"
	WriteUpdate WriteKind = "update"
	WriteDelete WriteKind = "delete"
)

// FailedWrite describes one rejected sub-operation.
type FailedWrite struct {
	Kind     WriteKind
	ResultID uuid.UUID
	ItemIDs  []uuid.UUID
	Err      error
}

// PartialWriteFailure aggregates the sub-operations of an applied plan that
// failed. Operations not listed were applied.
type PartialWriteFailure struct {
	Failed    []FailedWrite
	Succeeded int
}

func (e *PartialWriteFailure) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Kind, f.Err))
	}

	return fmt.Sprintf("%d of %d result writes failed: %s",
		len(e.Failed), len(e.Failed)+e.Succeeded, strings.Join(parts, "; "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *PartialWriteFailure) Unwrap() []error {
	var combined error
	for _, f := range e.Failed {
		combined = multierr.Append(combined, f.Err)
	}

	return multierr.Errors(combined)
}

// Kinds returns the distinct kinds of failed writes in create, update, delete order.
func (e *PartialWriteFailure) Kinds() []WriteKind {
	seen := make(map[WriteKind]bool)
	for _, f := range e.Failed {
		seen[f.Kind] = true
	}

	var kinds []WriteKind
	for _, k := range []WriteKind{WriteCreate, WriteUpdate, WriteDelete} {
		if seen[k] {
			kinds = append(kinds, k)
		}
	}

	return kinds
}
