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
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// CreateUserInput holds the fields for a new account.
type CreateUserInput struct {
	LoginID     string
	Password    string
	DisplayName string
	IsAdmin     bool
	DoctorID    *uuid.UUID
}

const userColumns = `
	id, login_id, password_hash, display_name, is_admin, doctor_id, last_signed_in_at, created_at, updated_at
`

func scanUser(row pgx.Row) (*User, error) {
	var u User

	err := row.Scan(
		&u.ID, &u.LoginID, &u.PasswordHash, &u.DisplayName, &u.IsAdmin, &u.DoctorID,
		&u.LastSignedInAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// HashPassword hashes a password with bcrypt after checking its length.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// ========== User Operations ==========

// CreateUser creates a new account.
func CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	loginID := strings.TrimSpace(input.LoginID)
	if loginID == "" || strings.TrimSpace(input.DisplayName) == "" {
		return nil, ErrNameRequired
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := scanUser(pool.QueryRow(ctx, `
		INSERT INTO users (login_id, password_hash, display_name, is_admin, doctor_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		loginID, hash, strings.TrimSpace(input.DisplayName), input.IsAdmin, input.DoctorID,
	))
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return nil, ErrLoginIDTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByID returns a user by ID.
func GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	user, err := scanUser(pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetUserByLoginID returns a user by login id.
func GetUserByLoginID(ctx context.Context, loginID string) (*User, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	user, err := scanUser(pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE login_id = $1`, strings.TrimSpace(loginID)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// Authenticate checks a login id and password. Unknown users and wrong
// passwords both return ErrInvalidCredentials.
func Authenticate(ctx context.Context, loginID, password string) (*User, error) {
	user, err := GetUserByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if _, err := pool.Exec(ctx, `UPDATE users SET last_signed_in_at = now() WHERE id = $1`, user.ID); err != nil {
		logger.Warn("Failed to record sign-in time", "user_id", user.ID, "error", err)
	}

	return user, nil
}

// SetUserPassword replaces the password of a user.
func SetUserPassword(ctx context.Context, id uuid.UUID, password string) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	tag, err := pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// SetDoctorLogin creates or updates the account linked to a doctor. An
// empty password keeps the current one.
func SetDoctorLogin(ctx context.Context, doctorID uuid.UUID, loginID, password string) (*User, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	doctor, err := GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	loginID = strings.TrimSpace(loginID)
	if loginID == "" {
		return nil, ErrNameRequired
	}

	var existing *User

	existing, err = scanUser(pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE doctor_id = $1`, doctorID))
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up doctor login: %w", err)
	}

	if existing == nil {
		return CreateUser(ctx, CreateUserInput{
			LoginID:     loginID,
			Password:    password,
			DisplayName: doctor.Name,
			DoctorID:    &doctorID,
		})
	}

	if _, err := pool.Exec(ctx,
		`UPDATE users SET login_id = $1, display_name = $2, updated_at = now() WHERE id = $3`,
		loginID, doctor.Name, existing.ID,
	); err != nil {
		if isPgError(err, pgUniqueViolation) {
			return nil, ErrLoginIDTaken
		}
		return nil, fmt.Errorf("failed to update doctor login: %w", err)
	}

	if password != "" {
		if err := SetUserPassword(ctx, existing.ID, password); err != nil {
			return nil, err
		}
	}

	return GetUserByID(ctx, existing.ID)
}
