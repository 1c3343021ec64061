/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ENO0123/hyoe-medical-records-system/clinical"
)

// MedicationInput holds the editable fields of a medication.
type MedicationInput struct {
	MedicationName string
	StartDate      time.Time
	EndDate        *time.Time
	Notes          *string
}

func (in MedicationInput) validate() error {
	m := clinical.Medication{
		MedicationName: in.MedicationName,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
	}

	return m.Validate()
}

func dateOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	d := clinical.DateOf(*t)

	return &d
}

const medicationColumns = `
	id, patient_id, medication_name, start_date, end_date, notes, created_at, updated_at
`

func scanMedication(row pgx.Row) (clinical.Medication, error) {
	var m clinical.Medication

	err := row.Scan(&m.ID, &m.PatientID, &m.MedicationName, &m.StartDate, &m.EndDate, &m.Notes, &m.CreatedAt, &m.UpdatedAt)

	return m, err
}

// ========== Medication Operations ==========

// ListMedications returns the medications of a patient, most recent start
// first.
func ListMedications(ctx context.Context, patientID uuid.UUID) ([]clinical.Medication, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	rows, err := pool.Query(ctx, `
		SELECT `+medicationColumns+`
		FROM medications
		WHERE patient_id = $1
		ORDER BY start_date DESC, medication_name
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	defer rows.Close()

	var meds []clinical.Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan medication: %w", err)
		}
		meds = append(meds, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating medications: %w", err)
	}

	return meds, nil
}

// GetMedication returns one medication of a patient.
func GetMedication(ctx context.Context, patientID, id uuid.UUID) (*clinical.Medication, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	m, err := scanMedication(pool.QueryRow(ctx, `
		SELECT `+medicationColumns+` FROM medications WHERE id = $1 AND patient_id = $2
	`, id, patientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMedicationNotFound
		}
		return nil, fmt.Errorf("failed to get medication: %w", err)
	}

	return &m, nil
}

// CreateMedication records a medication for a patient.
func CreateMedication(ctx context.Context, patientID uuid.UUID, createdBy *uuid.UUID, input MedicationInput) (uuid.UUID, error) {
	if pool == nil {
		return uuid.Nil, ErrDatabaseConnectionNotInitialized
	}

	if err := input.validate(); err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID

	err := pool.QueryRow(ctx, `
		INSERT INTO medications (patient_id, medication_name, start_date, end_date, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, patientID, strings.TrimSpace(input.MedicationName), clinical.DateOf(input.StartDate),
		dateOrNil(input.EndDate), input.Notes, createdBy,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create medication: %w", err)
	}

	return id, nil
}

// UpdateMedication replaces the fields of a medication.
func UpdateMedication(ctx context.Context, patientID, id uuid.UUID, input MedicationInput) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	if err := input.validate(); err != nil {
		return err
	}

	tag, err := pool.Exec(ctx, `
		UPDATE medications
		SET medication_name = $1, start_date = $2, end_date = $3, notes = $4, updated_at = now()
		WHERE id = $5 AND patient_id = $6
	`, strings.TrimSpace(input.MedicationName), clinical.DateOf(input.StartDate),
		dateOrNil(input.EndDate), input.Notes, id, patientID)
	if err != nil {
		return fmt.Errorf("failed to update medication: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrMedicationNotFound
	}

	return nil
}

// DeleteMedication removes a medication.
func DeleteMedication(ctx context.Context, patientID, id uuid.UUID) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	tag, err := pool.Exec(ctx, `DELETE FROM medications WHERE id = $1 AND patient_id = $2`, id, patientID)
	if err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrMedicationNotFound
	}

	return nil
}
