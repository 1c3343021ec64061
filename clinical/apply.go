/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package clinical

import (
	"bytes"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ResultWriter persists the writes of a reconciled plan.
type ResultWriter interface {
	CreateResults(ctx context.Context, patientID uuid.UUID, date time.Time, ops []CreateOp) error
	UpdateResult(ctx context.Context, patientID uuid.UUID, op UpdateOp) error
	DeleteResult(ctx context.Context, patientID uuid.UUID, op DeleteOp) error
}

// maxConcurrentWrites bounds the number of in-flight writes per plan.
const maxConcurrentWrites = 4

// ApplyPlan issues one create call for all new values and one call per
// update and delete. The calls are independent: each runs to completion
// whatever happens to the others, and nothing is rolled back. If any call
// fails the result is a *PartialWriteFailure.
func ApplyPlan(ctx context.Context, w ResultWriter, patientID uuid.UUID, plan *Plan) error {
	if w == nil {
		return ErrNilWriter
	}

	if plan == nil || plan.Empty() {
		return nil
	}

	var (
		mu     sync.Mutex
		failed []FailedWrite
		ok     int
	)

	record := func(f FailedWrite) {
		mu.Lock()
		defer mu.Unlock()

		if f.Err != nil {
			failed = append(failed, f)
			return
		}
		ok++
	}

	var g errgroup.Group
	g.SetLimit(maxConcurrentWrites)

	if len(plan.ToCreate) > 0 {
		itemIDs := make([]uuid.UUID, len(plan.ToCreate))
		for i, op := range plan.ToCreate {
			itemIDs[i] = op.ItemID
		}

		g.Go(func() error {
			err := w.CreateResults(ctx, patientID, plan.Date, plan.ToCreate)
			record(FailedWrite{Kind: WriteCreate, ItemIDs: itemIDs, Err: err})
			return nil
		})
	}

	for _, op := range plan.ToUpdate {
		g.Go(func() error {
			err := w.UpdateResult(ctx, patientID, op)
			record(FailedWrite{Kind: WriteUpdate, ResultID: op.ResultID, ItemIDs: []uuid.UUID{op.ItemID}, Err: err})
			return nil
		})
	}

	for _, op := range plan.ToDelete {
		g.Go(func() error {
			err := w.DeleteResult(ctx, patientID, op)
			record(FailedWrite{Kind: WriteDelete, ResultID: op.ResultID, ItemIDs: []uuid.UUID{op.ItemID}, Err: err})
			return nil
		})
	}

	_ = g.Wait()

	if len(failed) == 0 {
		return nil
	}

	sortFailures(failed)

	return &PartialWriteFailure{Failed: failed, Succeeded: ok}
}

func sortFailures(failed []FailedWrite) {
	rank := map[WriteKind]int{WriteCreate: 0, WriteUpdate: 1, WriteDelete: 2}

	slices.SortStableFunc(failed, func(a, b FailedWrite) int {
		if rank[a.Kind] != rank[b.Kind] {
			return rank[a.Kind] - rank[b.Kind]
		}
		return bytes.Compare(a.ResultID[:], b.ResultID[:])
	})
}
