/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	patientCodePrefix = "P"
	doctorCodePrefix  = "D"
	pgUniqueViolation = "23505"
	pgFKViolation     = "23503"
)

// nextCode returns the code following last, e.g. P007 -> P008. An empty or
// malformed last code starts the sequence at 001.
func nextCode(prefix, last string) string {
	n := 0
	if digits, ok := strings.CutPrefix(last, prefix); ok {
		if parsed, err := strconv.Atoi(digits); err == nil {
			n = parsed
		}
	}

	return fmt.Sprintf("%s%03d", prefix, n+1)
}

// lastCode returns the highest numeric code with prefix in table.column.
func lastCode(ctx context.Context, q pgx.Tx, table, column, prefix string) (string, error) {
	query := fmt.Sprintf(`
		SELECT %[1]s FROM %[2]s
		WHERE %[1]s ~ $1
		ORDER BY length(%[1]s) DESC, %[1]s DESC
		LIMIT 1
	`, pgx.Identifier{column}.Sanitize(), pgx.Identifier{table}.Sanitize())

	var code string

	err := q.QueryRow(ctx, query, "^"+prefix+"[0-9]+$").Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read last %s code: %w", table, err)
	}

	return code, nil
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// optionalString trims s and returns nil when it is empty.
func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	return &s
}
