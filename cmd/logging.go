/*
 * Copyright 2025 Humaid Alqasimi
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import "github.com/ENO0123/hyoe-medical-records-system/logging"

var appLogger = logging.Logger(logging.SourceApp)
var requestStdLogger = logging.StdLogger(logging.SourceWebRequest)
