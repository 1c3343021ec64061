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

// ListPatientsInput filters the patient list.
type ListPatientsInput struct {
	Scope Scope
	// Search matches name, kana or patient code.
	Search   string
	Statuses []PatientStatus
}

// CreatePatientInput holds the fields for a new patient.
type CreatePatientInput struct {
	// PatientCode is generated when empty.
	PatientCode string
	Name        string
	NameKana    *string
	Gender      clinical.Gender
	BirthDate   time.Time
	Phone       *string
	Email       *string
	Address     *string
	DoctorID    uuid.UUID
	Status      PatientStatus
	Notes       *string
}

// UpdatePatientInput holds the editable fields of a patient.
type UpdatePatientInput struct {
	Name      string
	NameKana  *string
	Gender    clinical.Gender
	BirthDate time.Time
	Phone     *string
	Email     *string
	Address   *string
	DoctorID  uuid.UUID
	Status    PatientStatus
	Notes     *string
}

const patientColumns = `
	p.id, p.patient_code, p.name, p.name_kana, p.gender, p.birth_date, p.phone, p.email, p.address,
	p.doctor_id, p.status, p.notes, p.created_at, p.updated_at
`

func scanPatientSummary(row pgx.Row) (*PatientSummary, error) {
	var p PatientSummary

	err := row.Scan(
		&p.ID, &p.PatientCode, &p.Name, &p.NameKana, &p.Gender, &p.BirthDate, &p.Phone, &p.Email, &p.Address,
		&p.DoctorID, &p.Status, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
		&p.DoctorName, &p.DoctorCode,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func validatePatient(name string, gender clinical.Gender, status PatientStatus) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}

	if _, ok := clinical.ParseGender(string(gender)); !ok {
		return ErrInvalidGender
	}

	if !status.Valid() {
		return ErrInvalidPatientStatus
	}

	return nil
}

// ========== Patient Operations ==========

// ListPatients returns the patients visible in the scope, matching the
// optional search text and statuses.
func ListPatients(ctx context.Context, input ListPatientsInput) ([]PatientSummary, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	query := `SELECT ` + patientColumns + `, d.name, d.doctor_code
		FROM patients p
		JOIN doctors d ON d.id = p.doctor_id
		WHERE ($1::uuid IS NULL OR p.doctor_id = $1)
		  AND ($2 = '' OR p.name ILIKE '%' || $2 || '%' OR p.name_kana ILIKE '%' || $2 || '%' OR p.patient_code ILIKE '%' || $2 || '%')
		  AND (cardinality($3::text[]) = 0 OR p.status = ANY($3))
		ORDER BY p.patient_code ASC
	`

	statuses := make([]string, 0, len(input.Statuses))
	for _, s := range input.Statuses {
		statuses = append(statuses, string(s))
	}

	rows, err := pool.Query(ctx, query, input.Scope.DoctorID, strings.TrimSpace(input.Search), statuses)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	var patients []PatientSummary
	for rows.Next() {
		p, err := scanPatientSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating patients: %w", err)
	}

	return patients, nil
}

// GetPatient returns a patient with the assigned doctor's name. Patients
// outside the scope are reported as not found.
func GetPatient(ctx context.Context, scope Scope, id uuid.UUID) (*PatientSummary, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	query := `SELECT ` + patientColumns + `, d.name, d.doctor_code
		FROM patients p
		JOIN doctors d ON d.id = p.doctor_id
		WHERE p.id = $1
	`

	p, err := scanPatientSummary(pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	if !scope.Allows(p.DoctorID) {
		return nil, ErrPatientNotFound
	}

	return p, nil
}

// CreatePatient inserts a patient, generating the next P-code if none is
// given.
func CreatePatient(ctx context.Context, input CreatePatientInput) (uuid.UUID, error) {
	if pool == nil {
		return uuid.Nil, ErrDatabaseConnectionNotInitialized
	}

	if input.Status == "" {
		input.Status = PatientNew
	}

	if err := validatePatient(input.Name, input.Gender, input.Status); err != nil {
		return uuid.Nil, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	code := strings.TrimSpace(input.PatientCode)
	if code == "" {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('patients.patient_code'))`); err != nil {
			return uuid.Nil, fmt.Errorf("failed to lock patient codes: %w", err)
		}

		last, err := lastCode(ctx, tx, "patients", "patient_code", patientCodePrefix)
		if err != nil {
			return uuid.Nil, err
		}
		code = nextCode(patientCodePrefix, last)
	}

	var id uuid.UUID

	err = tx.QueryRow(ctx, `
		INSERT INTO patients (patient_code, name, name_kana, gender, birth_date, phone, email, address, doctor_id, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, code, strings.TrimSpace(input.Name), input.NameKana, input.Gender, clinical.DateOf(input.BirthDate),
		input.Phone, input.Email, input.Address, input.DoctorID, input.Status, input.Notes,
	).Scan(&id)
	if err != nil {
		if isPgError(err, pgFKViolation) {
			return uuid.Nil, ErrDoctorNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to create patient: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit patient creation: %w", err)
	}

	logger.Info("Created patient", "patient_id", id, "patient_code", code)

	return id, nil
}

// UpdatePatient updates a patient visible in the scope.
func UpdatePatient(ctx context.Context, scope Scope, id uuid.UUID, input UpdatePatientInput) error {
	if err := validatePatient(input.Name, input.Gender, input.Status); err != nil {
		return err
	}

	if _, err := GetPatient(ctx, scope, id); err != nil {
		return err
	}

	_, err := pool.Exec(ctx, `
		UPDATE patients
		SET name = $1, name_kana = $2, gender = $3, birth_date = $4, phone = $5, email = $6,
		    address = $7, doctor_id = $8, status = $9, notes = $10, updated_at = now()
		WHERE id = $11
	`, strings.TrimSpace(input.Name), input.NameKana, input.Gender, clinical.DateOf(input.BirthDate),
		input.Phone, input.Email, input.Address, input.DoctorID, input.Status, input.Notes, id)
	if err != nil {
		if isPgError(err, pgFKViolation) {
			return ErrDoctorNotFound
		}
		return fmt.Errorf("failed to update patient: %w", err)
	}

	return nil
}

// DeletePatient removes a patient visible in the scope, together with
// their visits, results and medications.
func DeletePatient(ctx context.Context, scope Scope, id uuid.UUID) error {
	if _, err := GetPatient(ctx, scope, id); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	return nil
}
