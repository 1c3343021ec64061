/*
 * Copyright 2025 Humaid Alqasimi
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/flamego/flamego"
	"github.com/flamego/session"

	"github.com/ENO0123/hyoe-medical-records-system/db"
)

// sessionLister is implemented by session stores that can enumerate the
// sessions of a user.
type sessionLister interface {
	ListUserSessions(ctx context.Context, userID string) ([]db.UserSession, error)
}

// SessionInfo represents a session on the account page
type SessionInfo struct {
	ExpiresAt time.Time
	ExpiresIn string
	Device    string
	IP        string
	IsCurrent bool
}

// SessionMetadataMiddleware captures and stores device and IP info in the session
func SessionMetadataMiddleware() flamego.Handler {
	return func(c flamego.Context, s session.Session) {
		deviceLabel := parseUserAgent(c.Request().Header.Get("User-Agent"))
		if val, ok := s.Get(db.SessionDeviceLabelKey).(string); !ok || val != deviceLabel {
			s.Set(db.SessionDeviceLabelKey, deviceLabel)
		}

		ip := clientIP(c)
		if val, ok := s.Get(db.SessionDeviceIPKey).(string); !ok || val != ip {
			s.Set(db.SessionDeviceIPKey, ip)
		}

		c.Next()
	}
}

// parseUserAgent creates a simple device label from User-Agent string
func parseUserAgent(ua string) string {
	if ua == "" {
		return "不明な端末"
	}

	ua = strings.ToLower(ua)
	os := "不明なOS"
	browser := "不明なブラウザ"

	switch {
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ios"):
		os = "iOS"
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "macintosh") || strings.Contains(ua, "mac os"):
		os = "macOS"
	case strings.Contains(ua, "linux"):
		os = "Linux"
	}

	switch {
	case strings.Contains(ua, "edg/"):
		browser = "Edge"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	}

	return os + " / " + browser
}

// formatRemaining renders a session lifetime like "あと5日3時間".
func formatRemaining(d time.Duration) string {
	if d < 0 {
		return "期限切れ"
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	switch {
	case days > 0 && hours > 0:
		return fmt.Sprintf("あと%d日%d時間", days, hours)
	case days > 0:
		return fmt.Sprintf("あと%d日", days)
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("あと%d時間%d分", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("あと%d時間", hours)
	}

	return fmt.Sprintf("あと%d分", minutes)
}

// userSessions returns the account page view of the sessions of userID.
func userSessions(ctx context.Context, store session.Store, userID, currentID string, now time.Time) ([]SessionInfo, error) {
	lister, ok := store.(sessionLister)
	if !ok {
		return nil, nil
	}

	sessions, err := lister.ListUserSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	infos := make([]SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, SessionInfo{
			ExpiresAt: sess.ExpiresAt,
			ExpiresIn: formatRemaining(sess.ExpiresAt.Sub(now)),
			Device:    sess.DeviceLabel,
			IP:        sess.DeviceIP,
			IsCurrent: sess.ID == currentID,
		})
	}

	return infos, nil
}

// InvalidateOtherSessions logs out all other sessions of the session user.
func InvalidateOtherSessions(c flamego.Context, s session.Session, store session.Store) {
	invalidator, ok := store.(sessionInvalidator)
	if !ok {
		SetErrorFlash(s, "セッション情報にアクセスできません")
		c.Redirect("/account", http.StatusSeeOther)

		return
	}

	userID, ok := getSessionUserID(s)
	if !ok {
		SetErrorFlash(s, "ユーザー情報の取得に失敗しました")
		c.Redirect("/account", http.StatusSeeOther)

		return
	}

	deleted, err := invalidator.InvalidateUserSessions(c.Request().Context(), userID, s.ID())
	if err != nil {
		logger.Error("Error invalidating sessions", "user_id", userID, "error", err)
		SetErrorFlash(s, "他のセッションのログアウトに失敗しました")
		c.Redirect("/account", http.StatusSeeOther)

		return
	}

	if deleted == 0 {
		SetWarningFlash(s, "他にログイン中のセッションはありません")
		c.Redirect("/account", http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, fmt.Sprintf("他の%d件のセッションをログアウトしました", deleted))
	c.Redirect("/account", http.StatusSeeOther)
}
