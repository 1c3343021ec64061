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

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateDoctorInput holds the fields for a new doctor.
type CreateDoctorInput struct {
	// DoctorCode is generated when empty.
	DoctorCode  string
	Name        string
	Email       string
	Affiliation *string
	Specialties *string
	Notes       *string
}

// UpdateDoctorInput holds the editable fields of a doctor. The doctor code
// cannot be changed.
type UpdateDoctorInput struct {
	Name        string
	Email       string
	Affiliation *string
	Specialties *string
	Notes       *string
}

const doctorColumns = `
	d.id, d.doctor_code, d.name, d.email, d.affiliation, d.specialties, d.notes,
	u.login_id, d.created_at, d.updated_at
`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor

	err := row.Scan(
		&d.ID, &d.DoctorCode, &d.Name, &d.Email, &d.Affiliation, &d.Specialties, &d.Notes,
		&d.LoginID, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &d, nil
}

// ========== Doctor Operations ==========

// ListDoctors returns all doctors ordered by code.
func ListDoctors(ctx context.Context) ([]Doctor, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	query := `SELECT ` + doctorColumns + `
		FROM doctors d
		LEFT JOIN users u ON u.doctor_id = d.id
		ORDER BY d.doctor_code ASC
	`

	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	defer rows.Close()

	var doctors []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan doctor: %w", err)
		}
		doctors = append(doctors, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating doctors: %w", err)
	}

	return doctors, nil
}

// GetDoctor returns a single doctor by ID.
func GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	query := `SELECT ` + doctorColumns + `
		FROM doctors d
		LEFT JOIN users u ON u.doctor_id = d.id
		WHERE d.id = $1
	`

	d, err := scanDoctor(pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	return d, nil
}

// CreateDoctor inserts a doctor, generating the next D-code if none is given.
func CreateDoctor(ctx context.Context, input CreateDoctorInput) (*Doctor, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrNameRequired
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	code := strings.TrimSpace(input.DoctorCode)
	if code == "" {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('doctors.doctor_code'))`); err != nil {
			return nil, fmt.Errorf("failed to lock doctor codes: %w", err)
		}

		last, err := lastCode(ctx, tx, "doctors", "doctor_code", doctorCodePrefix)
		if err != nil {
			return nil, err
		}
		code = nextCode(doctorCodePrefix, last)
	}

	var id uuid.UUID

	err = tx.QueryRow(ctx, `
		INSERT INTO doctors (doctor_code, name, email, affiliation, specialties, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, code, strings.TrimSpace(input.Name), strings.TrimSpace(input.Email),
		input.Affiliation, input.Specialties, input.Notes,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit doctor creation: %w", err)
	}

	logger.Info("Created doctor", "doctor_id", id, "doctor_code", code)

	return GetDoctor(ctx, id)
}

// UpdateDoctor updates a doctor's profile fields.
func UpdateDoctor(ctx context.Context, id uuid.UUID, input UpdateDoctorInput) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	if strings.TrimSpace(input.Name) == "" {
		return ErrNameRequired
	}

	tag, err := pool.Exec(ctx, `
		UPDATE doctors
		SET name = $1, email = $2, affiliation = $3, specialties = $4, notes = $5, updated_at = now()
		WHERE id = $6
	`, strings.TrimSpace(input.Name), strings.TrimSpace(input.Email),
		input.Affiliation, input.Specialties, input.Notes, id)
	if err != nil {
		return fmt.Errorf("failed to update doctor: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}

	return nil
}

// DeleteDoctor removes a doctor. Doctors with assigned patients cannot be
// deleted.
func DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	tag, err := pool.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		if isPgError(err, pgFKViolation) {
			return ErrDoctorHasPatients
		}
		return fmt.Errorf("failed to delete doctor: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}

	return nil
}
