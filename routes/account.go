/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"
	"github.com/google/uuid"

	"github.com/ENO0123/hyoe-medical-records-system/db"
)

var (
	getUserByIDFn     = db.GetUserByID
	setUserPasswordFn = db.SetUserPassword
)

// sessionInvalidator is implemented by session stores that can end the
// other sessions of a user.
type sessionInvalidator interface {
	InvalidateUserSessions(ctx context.Context, userID, currentID string) (int, error)
}

func currentUser(c flamego.Context, s session.Session) (*db.User, error) {
	raw, ok := getSessionUserID(s)
	if !ok {
		return nil, errSessionUserMissing
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errSessionUserMissing
	}

	return getUserByIDFn(c.Request().Context(), id)
}

// Account renders the password change page and the user's sessions.
func Account(c flamego.Context, s session.Session, store session.Store, t template.Template, data template.Data) {
	user, err := currentUser(c, s)
	if err != nil {
		logger.Error("Error resolving session user", "error", err)
		SetErrorFlash(s, "ユーザー情報の取得に失敗しました")
		c.Redirect("/", http.StatusSeeOther)

		return
	}

	data["IsAccount"] = true
	data["User"] = user

	sessions, err := userSessions(c.Request().Context(), store, user.ID.String(), s.ID(), time.Now())
	if err != nil {
		logger.Error("Error listing sessions", "user_id", user.ID, "error", err)
		data["Error"] = "セッション情報の取得に失敗しました"
	} else {
		data["Sessions"] = sessions
	}
	data["Breadcrumbs"] = []BreadcrumbItem{{Name: "アカウント", IsCurrent: true}}

	t.HTML(http.StatusOK, "account")
}

// ChangePassword replaces the password of the session user after checking
// the current one, then signs out the user's other sessions.
func ChangePassword(c flamego.Context, s session.Session, store session.Store) {
	if err := c.Request().ParseForm(); err != nil {
		SetErrorFlash(s, "フォームを読み取れませんでした")
		c.Redirect("/account", http.StatusSeeOther)

		return
	}

	form := c.Request().Form
	current := form.Get("current_password")
	next := form.Get("new_password")

	if next != form.Get("confirm_password") {
		SetErrorFlash(s, "新しいパスワードが一致しません")
		c.Redirect("/account", http.StatusSeeOther)

		return
	}

	user, err := currentUser(c, s)
	if err != nil {
		logger.Error("Error resolving session user", "error", err)
		SetErrorFlash(s, "ユーザー情報の取得に失敗しました")
		c.Redirect("/account", http.StatusSeeOther)

		return
	}

	ctx := c.Request().Context()

	if _, err := authenticateFn(ctx, user.LoginID, current); err != nil {
		logAccessDenied(c, s, "wrong_current_password", http.StatusSeeOther, "/account")
		SetErrorFlash(s, "現在のパスワードが正しくありません")
		c.Redirect("/account", http.StatusSeeOther)

		return
	}

	if err := setUserPasswordFn(ctx, user.ID, next); err != nil {
		if errors.Is(err, db.ErrPasswordTooShort) {
			SetErrorFlash(s, "パスワードは8文字以上にしてください")
		} else {
			logger.Error("Error setting password", "user_id", user.ID, "error", err)
			SetErrorFlash(s, "パスワードの変更に失敗しました")
		}
		c.Redirect("/account", http.StatusSeeOther)

		return
	}

	msg := "パスワードを変更しました"

	if invalidator, ok := store.(sessionInvalidator); ok {
		deleted, err := invalidator.InvalidateUserSessions(ctx, user.ID.String(), s.ID())
		if err != nil {
			logger.Error("Error invalidating sessions", "user_id", user.ID, "error", err)
		} else if deleted > 0 {
			msg = fmt.Sprintf("パスワードを変更し、他の%d件のセッションをログアウトしました", deleted)
		}
	}

	SetSuccessFlash(s, msg)
	c.Redirect("/account", http.StatusSeeOther)
}
