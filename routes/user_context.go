/*
 * Copyright 2025 Humaid Alqasimi
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"net/http"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"

	"github.com/ENO0123/hyoe-medical-records-system/db"
)

// UserContextInjector loads session user metadata into templates.
func UserContextInjector() flamego.Handler {
	return func(s session.Session, data template.Data) {
		authenticated, _ := s.Get(db.SessionAuthenticatedKey).(bool)
		data["IsAuthenticated"] = authenticated
		if !authenticated {
			return
		}

		data["IsAdmin"] = sessionIsAdmin(s)
		data["DisplayName"], _ = s.Get(db.SessionDisplayNameKey).(string)
		_, isDoctor := s.Get(db.SessionDoctorIDKey).(string)
		data["IsDoctor"] = isDoctor
	}
}

// RequireAdmin blocks access for non-admin users.
func RequireAdmin(s session.Session, c flamego.Context) {
	if !sessionIsAdmin(s) {
		logAccessDenied(c, s, "not_admin", http.StatusSeeOther, "/")
		SetErrorFlash(s, "この操作には管理者権限が必要です")
		c.Redirect("/", http.StatusSeeOther)

		return
	}

	c.Next()
}
