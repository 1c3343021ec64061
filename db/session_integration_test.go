// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-FileCopyrightText: 2025 ENO0123
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"net/http"
	"testing"
	"time"

	"github.com/flamego/session"
)

func TestPostgresSessionStoreLifecycle(t *testing.T) {
	resetDatabase(t)
	ctx := testContext()

	initer := PostgresSessionIniter()
	store, err := initer(ctx, PostgresSessionConfig{Lifetime: time.Hour})
	if err != nil {
		t.Fatalf("PostgresSessionIniter failed: %v", err)
	}
	pgStore := store.(*PostgresSessionStore)

	noopWriter := func(_ http.ResponseWriter, _ *http.Request, _ string) {}

	sess1 := session.NewBaseSession("sess1", session.GobEncoder, noopWriter)
	sess1.Set(SessionAuthenticatedKey, true)
	sess1.Set(SessionDeviceLabelKey, "macOS / Safari")
	sess1.Set(SessionDeviceIPKey, "127.0.0.1")
	sess1.Set(SessionUserIDKey, "user-1")
	sess1.Set(SessionDisplayNameKey, "田中 一郎")

	if err := pgStore.Save(ctx, sess1); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if !pgStore.Exist(ctx, "sess1") {
		t.Fatalf("expected session to exist")
	}

	readSess, err := pgStore.Read(ctx, "sess1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if readSess.Get("user_id") != "user-1" {
		t.Fatalf("expected user_id to match")
	}

	if err := pgStore.Touch(ctx, "sess1"); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}

	sess2 := session.NewBaseSession("sess2", session.GobEncoder, noopWriter)
	sess2.Set(SessionAuthenticatedKey, true)
	sess2.Set(SessionUserIDKey, "user-1")
	if err := pgStore.Save(ctx, sess2); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	other := session.NewBaseSession("sess3", session.GobEncoder, noopWriter)
	other.Set(SessionAuthenticatedKey, true)
	other.Set(SessionUserIDKey, "user-2")
	if err := pgStore.Save(ctx, other); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	valid, err := pgStore.ListUserSessions(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListUserSessions failed: %v", err)
	}
	if len(valid) != 2 {
		t.Fatalf("expected 2 sessions for user-1, got %d", len(valid))
	}

	var labeled bool
	for _, sess := range valid {
		if sess.ID == "sess1" && sess.DeviceLabel == "macOS / Safari" && sess.DeviceIP == "127.0.0.1" {
			labeled = true
		}
	}
	if !labeled {
		t.Fatalf("expected device metadata for sess1, got %+v", valid)
	}

	deleted, err := pgStore.InvalidateUserSessions(ctx, "user-1", "sess1")
	if err != nil {
		t.Fatalf("InvalidateUserSessions failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 session deleted, got %d", deleted)
	}

	if err := pgStore.Destroy(ctx, "sess1"); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}

	if pgStore.Exist(ctx, "sess1") {
		t.Fatalf("expected session to be removed")
	}

	if !pgStore.Exist(ctx, "sess3") {
		t.Fatalf("expected the other user's session to survive")
	}
}
