/*
 * Copyright 2025 Humaid Alqasimi
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"
	"github.com/google/uuid"

	"github.com/ENO0123/hyoe-medical-records-system/db"
)

var authenticateFn = db.Authenticate

// LoginForm renders the login page
func LoginForm(s session.Session, c flamego.Context, t template.Template, data template.Data) {
	if authenticated, _ := s.Get(db.SessionAuthenticatedKey).(bool); authenticated {
		c.Redirect("/", http.StatusSeeOther)
		return
	}

	data["HeaderOnly"] = true
	t.HTML(http.StatusOK, "login")
}

// Login checks the submitted credentials and starts an authenticated
// session.
func Login(c flamego.Context, s session.Session) {
	if err := c.Request().ParseForm(); err != nil {
		SetErrorFlash(s, "フォームを読み取れませんでした")
		c.Redirect("/login", http.StatusSeeOther)

		return
	}

	form := c.Request().Form
	loginID := strings.TrimSpace(form.Get("login_id"))
	password := form.Get("password")

	if loginID == "" || password == "" {
		SetErrorFlash(s, "ログインIDとパスワードを入力してください")
		c.Redirect("/login", http.StatusSeeOther)

		return
	}

	user, err := authenticateFn(c.Request().Context(), loginID, password)
	if err != nil {
		if errors.Is(err, db.ErrInvalidCredentials) {
			logAccessDenied(c, s, "invalid_credentials", http.StatusSeeOther, "/login", "login_id", loginID)
		} else {
			logger.Error("Error authenticating user", "error", err)
		}

		SetErrorFlash(s, "ログインIDまたはパスワードが正しくありません")
		c.Redirect("/login", http.StatusSeeOther)

		return
	}

	if err := s.RegenerateID(c.ResponseWriter(), c.Request().Request); err != nil {
		logger.Error("Error regenerating session id", "error", err)
		SetErrorFlash(s, "ログインに失敗しました")
		c.Redirect("/login", http.StatusSeeOther)

		return
	}

	setSessionUser(s, user)
	logger.Info("User signed in", "user_id", user.ID, "is_admin", user.IsAdmin)

	c.Redirect("/", http.StatusSeeOther)
}

// Logout handles logout request
func Logout(s session.Session, c flamego.Context) {
	clearSessionUser(s)
	c.Redirect("/login", http.StatusSeeOther)
}

// RequireAuth is a middleware that checks if user is authenticated
func RequireAuth(s session.Session, c flamego.Context) {
	authenticated, ok := s.Get(db.SessionAuthenticatedKey).(bool)
	if !ok || !authenticated {
		logAccessDenied(c, s, "unauthenticated", http.StatusFound, "/login")
		c.Redirect("/login")

		return
	}

	c.Next()
}

func setSessionUser(s session.Session, user *db.User) {
	s.Set(db.SessionAuthenticatedKey, true)
	s.Set(db.SessionUserIDKey, user.ID.String())
	s.Set(db.SessionIsAdminKey, user.IsAdmin)
	s.Set(db.SessionDisplayNameKey, user.DisplayName)

	if user.DoctorID != nil {
		s.Set(db.SessionDoctorIDKey, user.DoctorID.String())
	} else {
		s.Delete(db.SessionDoctorIDKey)
	}
}

func clearSessionUser(s session.Session) {
	s.Delete(db.SessionAuthenticatedKey)
	s.Delete(db.SessionUserIDKey)
	s.Delete(db.SessionIsAdminKey)
	s.Delete(db.SessionDoctorIDKey)
	s.Delete(db.SessionDisplayNameKey)
}

func getSessionUserID(s session.Session) (string, bool) {
	if val := s.Get(db.SessionUserIDKey); val != nil {
		if userID, ok := val.(string); ok && userID != "" {
			return userID, true
		}
	}

	return "", false
}

// sessionUserUUID returns the signed-in user for created_by columns.
func sessionUserUUID(s session.Session) *uuid.UUID {
	userID, ok := getSessionUserID(s)
	if !ok {
		return nil
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return nil
	}

	return &id
}

func sessionIsAdmin(s session.Session) bool {
	isAdmin, _ := s.Get(db.SessionIsAdminKey).(bool)
	return isAdmin
}

// sessionScope returns the patients visible to the session user. A
// non-admin without a linked doctor sees no patients.
func sessionScope(s session.Session) db.Scope {
	if sessionIsAdmin(s) {
		return db.AllPatients
	}

	if raw, ok := s.Get(db.SessionDoctorIDKey).(string); ok {
		if doctorID, err := uuid.Parse(raw); err == nil {
			return db.DoctorScope(doctorID)
		}
	}

	return db.DoctorScope(uuid.Nil)
}
