/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ENO0123/hyoe-medical-records-system/clinical"
)

// VisitInput holds the editable fields of a visit.
type VisitInput struct {
	VisitDate      time.Time
	VisitType      VisitType
	ChiefComplaint *string
	Findings       *string
	Diagnosis      *string
	Treatment      *string
	Prescription   *string
	Notes          *string
}

const visitColumns = `
	id, patient_id, visit_date, visit_type, chief_complaint, findings, diagnosis,
	treatment, prescription, notes, created_by, created_at, updated_at
`

func scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit

	err := row.Scan(
		&v.ID, &v.PatientID, &v.VisitDate, &v.VisitType, &v.ChiefComplaint, &v.Findings, &v.Diagnosis,
		&v.Treatment, &v.Prescription, &v.Notes, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// ListVisits returns the visits of a patient, newest first.
func ListVisits(ctx context.Context, patientID uuid.UUID) ([]Visit, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	rows, err := pool.Query(ctx, `
		SELECT `+visitColumns+` FROM visits
		WHERE patient_id = $1
		ORDER BY visit_date DESC, created_at DESC
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits = append(visits, *v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating visits: %w", err)
	}

	return visits, nil
}

// GetVisit returns one visit of a patient.
func GetVisit(ctx context.Context, patientID, id uuid.UUID) (*Visit, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	v, err := scanVisit(pool.QueryRow(ctx, `SELECT `+visitColumns+` FROM visits WHERE id = $1 AND patient_id = $2`, id, patientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVisitNotFound
		}
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}

	return v, nil
}

// CreateVisit records a visit.
func CreateVisit(ctx context.Context, patientID uuid.UUID, createdBy *uuid.UUID, input VisitInput) (uuid.UUID, error) {
	if pool == nil {
		return uuid.Nil, ErrDatabaseConnectionNotInitialized
	}

	if !input.VisitType.Valid() {
		return uuid.Nil, ErrInvalidVisitType
	}

	var id uuid.UUID

	err := pool.QueryRow(ctx, `
		INSERT INTO visits (patient_id, visit_date, visit_type, chief_complaint, findings, diagnosis,
		                    treatment, prescription, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, patientID, clinical.DateOf(input.VisitDate), input.VisitType, input.ChiefComplaint, input.Findings,
		input.Diagnosis, input.Treatment, input.Prescription, input.Notes, createdBy,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create visit: %w", err)
	}

	return id, nil
}

// UpdateVisit replaces the fields of a visit.
func UpdateVisit(ctx context.Context, patientID, id uuid.UUID, input VisitInput) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	if !input.VisitType.Valid() {
		return ErrInvalidVisitType
	}

	tag, err := pool.Exec(ctx, `
		UPDATE visits
		SET visit_date = $1, visit_type = $2, chief_complaint = $3, findings = $4, diagnosis = $5,
		    treatment = $6, prescription = $7, notes = $8, updated_at = now()
		WHERE id = $9 AND patient_id = $10
	`, clinical.DateOf(input.VisitDate), input.VisitType, input.ChiefComplaint, input.Findings,
		input.Diagnosis, input.Treatment, input.Prescription, input.Notes, id, patientID)
	if err != nil {
		return fmt.Errorf("failed to update visit: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrVisitNotFound
	}

	return nil
}

// DeleteVisit removes a visit. Results linked to it keep their values.
func DeleteVisit(ctx context.Context, patientID, id uuid.UUID) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	tag, err := pool.Exec(ctx, `DELETE FROM visits WHERE id = $1 AND patient_id = $2`, id, patientID)
	if err != nil {
		return fmt.Errorf("failed to delete visit: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrVisitNotFound
	}

	return nil
}
