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

// CreateImageInput is the metadata of an uploaded result image.
type CreateImageInput struct {
	PatientID    uuid.UUID
	ItemID       uuid.UUID
	TestResultID *uuid.UUID
	TestDate     time.Time
	BlobKey      string
	FileName     string
	FileSize     int64
	MimeType     string
	CreatedBy    *uuid.UUID
}

const imageColumns = `
	id, patient_id, item_id, test_result_id, test_date, blob_key, file_name, file_size, mime_type,
	created_by, created_at
`

func scanImage(row pgx.Row) (*TestResultImage, error) {
	var img TestResultImage

	err := row.Scan(
		&img.ID, &img.PatientID, &img.ItemID, &img.TestResultID, &img.TestDate, &img.BlobKey,
		&img.FileName, &img.FileSize, &img.MimeType, &img.CreatedBy, &img.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &img, nil
}

// CreateImage stores the metadata of an image already written to the blob
// store.
func CreateImage(ctx context.Context, input CreateImageInput) (uuid.UUID, error) {
	if pool == nil {
		return uuid.Nil, ErrDatabaseConnectionNotInitialized
	}

	var id uuid.UUID

	err := pool.QueryRow(ctx, `
		INSERT INTO test_result_images (patient_id, item_id, test_result_id, test_date, blob_key,
		                                file_name, file_size, mime_type, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, input.PatientID, input.ItemID, input.TestResultID, clinical.DateOf(input.TestDate), input.BlobKey,
		input.FileName, input.FileSize, input.MimeType, input.CreatedBy,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create image: %w", err)
	}

	return id, nil
}

// ListImages returns the images attached to one cell of the result matrix.
func ListImages(ctx context.Context, patientID, itemID uuid.UUID, date time.Time) ([]TestResultImage, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	rows, err := pool.Query(ctx, `
		SELECT `+imageColumns+` FROM test_result_images
		WHERE patient_id = $1 AND item_id = $2 AND test_date = $3
		ORDER BY created_at
	`, patientID, itemID, clinical.DateOf(date))
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	var images []TestResultImage
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, *img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}

	return images, nil
}

// GetImage returns the metadata of one image of a patient.
func GetImage(ctx context.Context, patientID, id uuid.UUID) (*TestResultImage, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	img, err := scanImage(pool.QueryRow(ctx,
		`SELECT `+imageColumns+` FROM test_result_images WHERE id = $1 AND patient_id = $2`, id, patientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}

	return img, nil
}

// DeleteImage removes the metadata of an image.
func DeleteImage(ctx context.Context, patientID, id uuid.UUID) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	tag, err := pool.Exec(ctx, `DELETE FROM test_result_images WHERE id = $1 AND patient_id = $2`, id, patientID)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrImageNotFound
	}

	return nil
}
