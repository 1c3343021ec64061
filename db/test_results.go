/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ENO0123/hyoe-medical-records-system/clinical"
)

const testResultColumns = `
	r.id, r.patient_id, r.item_id, r.visit_id, r.test_date, r.result_value,
	r.result_comment, r.additional_comment, r.created_at, r.updated_at
`

func scanTestResult(row pgx.Row) (clinical.TestResult, error) {
	var r clinical.TestResult

	err := row.Scan(
		&r.ID, &r.PatientID, &r.ItemID, &r.VisitID, &r.TestDate, &r.ResultValue,
		&r.ResultComment, &r.AdditionalComment, &r.CreatedAt, &r.UpdatedAt,
	)

	return r, err
}

// ListTestResults returns every stored result of a patient ordered by test
// date, then insertion time.
func ListTestResults(ctx context.Context, patientID uuid.UUID) ([]clinical.TestResult, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	rows, err := pool.Query(ctx, `
		SELECT `+testResultColumns+`
		FROM test_results r
		WHERE r.patient_id = $1
		ORDER BY r.test_date, r.created_at
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list test results: %w", err)
	}
	defer rows.Close()

	var results []clinical.TestResult
	for rows.Next() {
		r, err := scanTestResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test result: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating test results: %w", err)
	}

	return results, nil
}

// ResultStore writes reconciled results of one patient. It implements
// clinical.ResultWriter.
type ResultStore struct {
	// CreatedBy is recorded on inserted rows.
	CreatedBy *uuid.UUID
}

var _ clinical.ResultWriter = (*ResultStore)(nil)

// CreateResults inserts all new values of a date in one transaction. A row
// already present for the same (patient, item, date) is overwritten.
func (s *ResultStore) CreateResults(ctx context.Context, patientID uuid.UUID, date time.Time, ops []clinical.CreateOp) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	for _, op := range ops {
		batch.Queue(`
			INSERT INTO test_results (patient_id, item_id, test_date, result_value, created_by)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (patient_id, item_id, test_date)
			DO UPDATE SET result_value = EXCLUDED.result_value, updated_at = now()
		`, patientID, op.ItemID, clinical.DateOf(date), strings.TrimSpace(op.Value), s.CreatedBy)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to create test results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit test results: %w", err)
	}

	return nil
}

// UpdateResult replaces the value of one stored result.
func (s *ResultStore) UpdateResult(ctx context.Context, patientID uuid.UUID, op clinical.UpdateOp) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	tag, err := pool.Exec(ctx, `
		UPDATE test_results SET result_value = $1, updated_at = now()
		WHERE id = $2 AND patient_id = $3
	`, strings.TrimSpace(op.Value), op.ResultID, patientID)
	if err != nil {
		return fmt.Errorf("failed to update test result: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrTestResultNotFound
	}

	return nil
}

// DeleteResult removes one stored result.
func (s *ResultStore) DeleteResult(ctx context.Context, patientID uuid.UUID, op clinical.DeleteOp) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	tag, err := pool.Exec(ctx, `DELETE FROM test_results WHERE id = $1 AND patient_id = $2`, op.ResultID, patientID)
	if err != nil {
		return fmt.Errorf("failed to delete test result: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrTestResultNotFound
	}

	return nil
}

// SetResultComments updates the free-text comments of a result.
func SetResultComments(ctx context.Context, patientID, resultID uuid.UUID, comment, additional string) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	tag, err := pool.Exec(ctx, `
		UPDATE test_results SET result_comment = $1, additional_comment = $2, updated_at = now()
		WHERE id = $3 AND patient_id = $4
	`, optionalString(comment), optionalString(additional), resultID, patientID)
	if err != nil {
		return fmt.Errorf("failed to update result comments: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrTestResultNotFound
	}

	return nil
}
