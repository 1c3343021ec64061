/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ENO0123/hyoe-medical-records-system/clinical"
)

// PatientSnapshot is everything the result and medication pages of one
// patient read.
type PatientSnapshot struct {
	Patient     *PatientSummary
	Items       []clinical.TestItem
	Results     []clinical.TestResult
	Medications []clinical.Medication
}

// LoadPatientSnapshot checks the patient against the scope, then reads the
// catalog, results and medications concurrently.
func LoadPatientSnapshot(ctx context.Context, scope Scope, patientID uuid.UUID) (*PatientSnapshot, error) {
	patient, err := GetPatient(ctx, scope, patientID)
	if err != nil {
		return nil, err
	}

	snap := &PatientSnapshot{Patient: patient}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := CachedTestItems(gctx)
		snap.Items = items
		return err
	})

	g.Go(func() error {
		results, err := ListTestResults(gctx, patientID)
		snap.Results = results
		return err
	})

	g.Go(func() error {
		meds, err := ListMedications(gctx, patientID)
		snap.Medications = meds
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return snap, nil
}
