/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import "github.com/ENO0123/hyoe-medical-records-system/logging"

var logger = logging.Logger(logging.SourceWeb)
