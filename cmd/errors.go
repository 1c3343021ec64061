/*
 * Copyright 2025 Humaid Alqasimi
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import "errors"

var (
	errDatabaseURLRequired      = errors.New("database-url is required (set via --database-url or DATABASE_URL env var)")
	errMigrationNameRequired    = errors.New("migration name is required")
	errCSRFSecretRequired       = errors.New("CSRF_SECRET is required in production")
	errImageTokenSecretRequired = errors.New("IMAGE_TOKEN_SECRET is required in production")
	errInvalidRuntimeEnv        = errors.New(runtimeEnvVar + " must be one of: development, dev, production, prod")
	errLoginIDRequired          = errors.New("login-id is required")
	errPasswordRequired         = errors.New("password is required")
	errPasswordMismatch         = errors.New("passwords do not match")
)
