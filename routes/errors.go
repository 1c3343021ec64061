/*
 * Copyright 2025 Humaid Alqasimi
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import "errors"

var (
	errSessionUserMissing = errors.New("session user missing")
	errInvalidID          = errors.New("invalid id")
	errInvalidNumber      = errors.New("invalid number")
	errInvalidImageToken  = errors.New("invalid image token")
	errImageTokenSecret   = errors.New("image token secret is required")
)
