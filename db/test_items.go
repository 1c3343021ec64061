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

	"github.com/ENO0123/hyoe-medical-records-system/clinical"
)

// TestItemInput holds the editable fields of a catalog item.
type TestItemInput struct {
	ItemCode           string
	ItemName           string
	Category           string
	Unit               string
	ReferenceMin       *float64
	ReferenceMax       *float64
	ReferenceMinMale   *float64
	ReferenceMaxMale   *float64
	ReferenceMinFemale *float64
	ReferenceMaxFemale *float64
	DisplayOrder       int
	Notes              *string
}

func (in *TestItemInput) normalize() error {
	in.ItemCode = strings.TrimSpace(in.ItemCode)
	in.ItemName = strings.TrimSpace(in.ItemName)
	in.Category = strings.TrimSpace(in.Category)
	in.Unit = strings.TrimSpace(in.Unit)

	if in.ItemCode == "" {
		return ErrItemCodeRequired
	}

	if in.ItemName == "" {
		return ErrNameRequired
	}

	if in.Category != "" && !clinical.ValidCategory(in.Category) {
		return ErrInvalidCategory
	}

	return nil
}

const testItemColumns = `
	id, item_code, item_name, category, unit,
	reference_min::float8, reference_max::float8,
	reference_min_male::float8, reference_max_male::float8,
	reference_min_female::float8, reference_max_female::float8,
	display_order, notes, created_at, updated_at
`

func scanTestItem(row pgx.Row) (clinical.TestItem, error) {
	var item clinical.TestItem

	err := row.Scan(
		&item.ID, &item.ItemCode, &item.ItemName, &item.Category, &item.Unit,
		&item.ReferenceMin, &item.ReferenceMax,
		&item.ReferenceMinMale, &item.ReferenceMaxMale,
		&item.ReferenceMinFemale, &item.ReferenceMaxFemale,
		&item.DisplayOrder, &item.Notes, &item.CreatedAt, &item.UpdatedAt,
	)

	return item, err
}

func queryTestItems(ctx context.Context, query string, args ...any) ([]clinical.TestItem, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list test items: %w", err)
	}
	defer rows.Close()

	var items []clinical.TestItem
	for rows.Next() {
		item, err := scanTestItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating test items: %w", err)
	}

	return items, nil
}

// ========== Test Item Operations ==========

// ListTestItems returns the whole catalog ordered by display order, then
// item code.
func ListTestItems(ctx context.Context) ([]clinical.TestItem, error) {
	return queryTestItems(ctx, `SELECT `+testItemColumns+` FROM test_items ORDER BY display_order, item_code`)
}

// ListTestItemsByCategory returns the catalog items of one category.
func ListTestItemsByCategory(ctx context.Context, category string) ([]clinical.TestItem, error) {
	return queryTestItems(ctx,
		`SELECT `+testItemColumns+` FROM test_items WHERE category = $1 ORDER BY display_order, item_code`,
		category)
}

// GetTestItem returns one catalog item.
func GetTestItem(ctx context.Context, id uuid.UUID) (*clinical.TestItem, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	item, err := scanTestItem(pool.QueryRow(ctx, `SELECT `+testItemColumns+` FROM test_items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestItemNotFound
		}
		return nil, fmt.Errorf("failed to get test item: %w", err)
	}

	return &item, nil
}

// CreateTestItem adds a catalog item.
func CreateTestItem(ctx context.Context, input TestItemInput) (uuid.UUID, error) {
	if pool == nil {
		return uuid.Nil, ErrDatabaseConnectionNotInitialized
	}

	if err := input.normalize(); err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID

	err := pool.QueryRow(ctx, `
		INSERT INTO test_items (
			item_code, item_name, category, unit,
			reference_min, reference_max,
			reference_min_male, reference_max_male,
			reference_min_female, reference_max_female,
			display_order, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`, input.ItemCode, input.ItemName, input.Category, input.Unit,
		input.ReferenceMin, input.ReferenceMax,
		input.ReferenceMinMale, input.ReferenceMaxMale,
		input.ReferenceMinFemale, input.ReferenceMaxFemale,
		input.DisplayOrder, input.Notes,
	).Scan(&id)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return uuid.Nil, fmt.Errorf("item code %q already exists: %w", input.ItemCode, err)
		}
		return uuid.Nil, fmt.Errorf("failed to create test item: %w", err)
	}

	invalidateCatalog()

	return id, nil
}

// UpdateTestItem replaces the fields of a catalog item.
func UpdateTestItem(ctx context.Context, id uuid.UUID, input TestItemInput) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	if err := input.normalize(); err != nil {
		return err
	}

	tag, err := pool.Exec(ctx, `
		UPDATE test_items
		SET item_code = $1, item_name = $2, category = $3, unit = $4,
		    reference_min = $5, reference_max = $6,
		    reference_min_male = $7, reference_max_male = $8,
		    reference_min_female = $9, reference_max_female = $10,
		    display_order = $11, notes = $12, updated_at = now()
		WHERE id = $13
	`, input.ItemCode, input.ItemName, input.Category, input.Unit,
		input.ReferenceMin, input.ReferenceMax,
		input.ReferenceMinMale, input.ReferenceMaxMale,
		input.ReferenceMinFemale, input.ReferenceMaxFemale,
		input.DisplayOrder, input.Notes, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update test item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrTestItemNotFound
	}

	invalidateCatalog()

	return nil
}

// DeleteTestItem removes a catalog item that no result or image refers to.
func DeleteTestItem(ctx context.Context, id uuid.UUID) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	tag, err := pool.Exec(ctx, `DELETE FROM test_items WHERE id = $1`, id)
	if err != nil {
		if isPgError(err, pgFKViolation) {
			return ErrTestItemInUse
		}
		return fmt.Errorf("failed to delete test item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrTestItemNotFound
	}

	invalidateCatalog()

	return nil
}
