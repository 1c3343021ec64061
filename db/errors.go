/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import "errors"

var (
	ErrDatabaseURLEnvVarNotSet          = errors.New("DATABASE_URL environment variable not set")
	ErrDatabaseNameNotSpecified         = errors.New("database name not specified in DATABASE_URL")
	ErrDatabaseConnectionNotInitialized = errors.New("database connection not initialized")
	ErrNotFound                         = errors.New("record not found")
	ErrPatientNotFound                  = errors.New("patient not found")
	ErrDoctorNotFound                   = errors.New("doctor not found")
	ErrUserNotFound                     = errors.New("user not found")
	ErrTestItemNotFound                 = errors.New("test item not found")
	ErrTestResultNotFound               = errors.New("test result not found")
	ErrMedicationNotFound               = errors.New("medication not found")
	ErrVisitNotFound                    = errors.New("visit not found")
	ErrImageNotFound                    = errors.New("image not found")
	ErrDoctorHasPatients                = errors.New("doctor still has assigned patients")
	ErrTestItemInUse                    = errors.New("test item still has stored results")
	ErrLoginIDTaken                     = errors.New("login id already in use")
	ErrInvalidCredentials               = errors.New("invalid login id or password")
	ErrPasswordTooShort                 = errors.New("password must be at least 8 characters")
	ErrInvalidPatientStatus             = errors.New("invalid patient status")
	ErrInvalidVisitType                 = errors.New("invalid visit type")
	ErrInvalidGender                    = errors.New("invalid gender")
	ErrInvalidCategory                  = errors.New("invalid test item category")
	ErrNameRequired                     = errors.New("name is required")
	ErrItemCodeRequired                 = errors.New("item code is required")
)
