/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package clinical

import (
	"bytes"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateOp is a value to store for an item that has no result on the date.
type CreateOp struct {
	ItemID uuid.UUID
	Value  string
}

// UpdateOp replaces the value of an existing result.
type UpdateOp struct {
	ResultID uuid.UUID
	ItemID   uuid.UUID
	Value    string
}

// DeleteOp removes an existing result whose value was cleared.
type DeleteOp struct {
	ResultID uuid.UUID
	ItemID   uuid.UUID
}

// Plan holds the writes needed to make stored results match a submission.
type Plan struct {
	Date     time.Time
	ToCreate []CreateOp
	ToUpdate []UpdateOp
	ToDelete []DeleteOp
}

// Empty reports whether the plan has no writes.
func (p *Plan) Empty() bool {
	return len(p.ToCreate) == 0 && len(p.ToUpdate) == 0 && len(p.ToDelete) == 0
}

// Len returns the number of downstream write calls the plan needs.
func (p *Plan) Len() int {
	n := len(p.ToUpdate) + len(p.ToDelete)
	if len(p.ToCreate) > 0 {
		n++
	}

	return n
}

// ReconcileInput is one submitted edit batch for a single date.
type ReconcileInput struct {
	Date time.Time
	// Items are the editable items in form order.
	Items []TestItem
	// Submitted maps item id to the raw form value. A missing key is
	// treated as an empty value.
	Submitted map[uuid.UUID]string
	// Existing are the stored results of the patient. Results on other
	// dates are ignored.
	Existing []TestResult
}

// Reconcile diffs submitted values against stored results for one date.
// It fails before computing anything if a submitted item is not among the
// editable items or a non-empty value is not a number.
func Reconcile(in ReconcileInput) (*Plan, error) {
	editable := make(map[uuid.UUID]TestItem, len(in.Items))
	for _, item := range in.Items {
		editable[item.ID] = item
	}

	var unknown []uuid.UUID
	for id := range in.Submitted {
		if _, ok := editable[id]; !ok {
			unknown = append(unknown, id)
		}
	}

	if len(unknown) > 0 {
		slices.SortFunc(unknown, func(a, b uuid.UUID) int {
			return bytes.Compare(a[:], b[:])
		})
		return nil, &NotFoundError{ItemID: unknown[0]}
	}

	for _, item := range in.Items {
		value := strings.TrimSpace(in.Submitted[item.ID])
		if value == "" {
			continue
		}

		if _, ok := ParseValue(value); !ok {
			return nil, &ValidationError{ItemID: item.ID, ItemName: item.ItemName, Value: value}
		}
	}

	dateKey := DateKey(in.Date)
	existing := make(map[uuid.UUID]*TestResult)

	for i := range in.Existing {
		res := &in.Existing[i]
		if DateKey(res.TestDate) != dateKey {
			continue
		}
		existing[res.ItemID] = res
	}

	plan := &Plan{Date: DateOf(in.Date)}
	seen := make(map[uuid.UUID]struct{}, len(in.Items))

	for _, item := range in.Items {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}

		value := strings.TrimSpace(in.Submitted[item.ID])
		current, has := existing[item.ID]

		switch {
		case value == "" && has:
			plan.ToDelete = append(plan.ToDelete, DeleteOp{ResultID: current.ID, ItemID: item.ID})
		case value == "":
		case !has:
			plan.ToCreate = append(plan.ToCreate, CreateOp{ItemID: item.ID, Value: value})
		case strings.TrimSpace(current.ResultValue) != value:
			plan.ToUpdate = append(plan.ToUpdate, UpdateOp{ResultID: current.ID, ItemID: item.ID, Value: value})
		}
	}

	return plan, nil
}
