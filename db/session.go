/*
 * Copyright 2025 Humaid Alqasimi
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/flamego/session"
	"github.com/jackc/pgx/v5"
)

// Session keys shared by the web layer and the session store.
const (
	SessionUserIDKey        = "user_id"
	SessionAuthenticatedKey = "authenticated"
	SessionIsAdminKey       = "is_admin"
	SessionDoctorIDKey      = "doctor_id"
	SessionDisplayNameKey   = "display_name"
	SessionDeviceLabelKey   = "device_label"
	SessionDeviceIPKey      = "device_ip"
)

// ErrInvalidSessionConfig is returned when the session store receives an
// argument that is not a PostgresSessionConfig.
var ErrInvalidSessionConfig = errors.New("invalid PostgresSessionConfig")

// PostgresSessionConfig contains options for the PostgreSQL session store
type PostgresSessionConfig struct {
	// Lifetime is the duration to have no access to a session before being
	// recycled. Default is 7 days.
	Lifetime time.Duration
	// TableName is the name of the session table. Default is "web_sessions".
	TableName string
	Encoder   session.Encoder
	Decoder   session.Decoder
}

// PostgresSessionStore implements session.Store for PostgreSQL.
type PostgresSessionStore struct {
	lifetime time.Duration
	table    string
	encoder  session.Encoder
	decoder  session.Decoder
}

// PostgresSessionIniter returns the Initer for the PostgreSQL session store
func PostgresSessionIniter() session.Initer {
	return func(_ context.Context, args ...interface{}) (session.Store, error) {
		var config PostgresSessionConfig
		if len(args) > 0 {
			var ok bool
			config, ok = args[0].(PostgresSessionConfig)
			if !ok {
				return nil, ErrInvalidSessionConfig
			}
		}

		return NewPostgresSessionStore(config), nil
	}
}

// NewPostgresSessionStore fills in defaults and returns the store.
func NewPostgresSessionStore(config PostgresSessionConfig) *PostgresSessionStore {
	if config.Lifetime == 0 {
		config.Lifetime = 7 * 24 * time.Hour
	}
	if config.TableName == "" {
		config.TableName = "web_sessions"
	}
	if config.Encoder == nil {
		config.Encoder = session.GobEncoder
	}
	if config.Decoder == nil {
		config.Decoder = session.GobDecoder
	}

	return &PostgresSessionStore{
		lifetime: config.Lifetime,
		table:    pgx.Identifier{config.TableName}.Sanitize(),
		encoder:  config.Encoder,
		decoder:  config.Decoder,
	}
}

// Exist returns true if the session with given ID exists and hasn't expired
func (s *PostgresSessionStore) Exist(ctx context.Context, sid string) bool {
	if pool == nil {
		return false
	}

	var exists bool
	err := pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM `+s.table+` WHERE id = $1 AND expires_at > now())`,
		sid,
	).Scan(&exists)

	return err == nil && exists
}

// Read returns the session with given ID. A missing, expired or undecodable
// session yields a fresh session with the same ID.
func (s *PostgresSessionStore) Read(ctx context.Context, sid string) (session.Session, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	var data []byte
	err := pool.QueryRow(ctx,
		`SELECT data FROM `+s.table+` WHERE id = $1 AND expires_at > now()`,
		sid,
	).Scan(&data)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	// The cookie is written by the session middleware.
	idWriter := func(http.ResponseWriter, *http.Request, string) {}

	if len(data) == 0 {
		return session.NewBaseSession(sid, s.encoder, idWriter), nil
	}

	values, err := s.decoder(data)
	if err != nil {
		logger.Warn("Discarding undecodable session", "error", err)
		return session.NewBaseSession(sid, s.encoder, idWriter), nil
	}

	return session.NewBaseSessionWithData(sid, s.encoder, idWriter, values), nil
}

// Destroy deletes session with given ID from the session store completely
func (s *PostgresSessionStore) Destroy(ctx context.Context, sid string) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	_, err := pool.Exec(ctx, `DELETE FROM `+s.table+` WHERE id = $1`, sid)

	return err
}

// Touch updates the expiry time of the session with given ID
func (s *PostgresSessionStore) Touch(ctx context.Context, sid string) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	_, err := pool.Exec(ctx,
		`UPDATE `+s.table+` SET expires_at = $1 WHERE id = $2`,
		time.Now().Add(s.lifetime), sid,
	)

	return err
}

// Save persists session data to the session store
func (s *PostgresSessionStore) Save(ctx context.Context, sess session.Session) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	data, err := sess.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO `+s.table+` (id, data, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			data = EXCLUDED.data,
			expires_at = EXCLUDED.expires_at`,
		sess.ID(), data, time.Now().Add(s.lifetime),
	)

	return err
}

// GC performs a garbage collection operation on the session store
func (s *PostgresSessionStore) GC(ctx context.Context) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	_, err := pool.Exec(ctx, `DELETE FROM `+s.table+` WHERE expires_at < now()`)

	return err
}

// UserSession describes one live authenticated session of a user.
type UserSession struct {
	ID          string
	ExpiresAt   time.Time
	DeviceLabel string
	DeviceIP    string
}

// ListUserSessions returns the live authenticated sessions of a user,
// soonest expiry first.
func (s *PostgresSessionStore) ListUserSessions(ctx context.Context, userID string) ([]UserSession, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	rows, err := pool.Query(ctx,
		`SELECT id, data, expires_at FROM `+s.table+` WHERE expires_at > now() ORDER BY expires_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []UserSession
	for rows.Next() {
		var (
			sess UserSession
			data []byte
		)

		if err := rows.Scan(&sess.ID, &data, &sess.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		values, err := s.decoder(data)
		if err != nil {
			continue
		}

		if auth, _ := values[SessionAuthenticatedKey].(bool); !auth {
			continue
		}

		if uid, _ := values[SessionUserIDKey].(string); uid != userID {
			continue
		}

		sess.DeviceLabel, _ = values[SessionDeviceLabelKey].(string)
		sess.DeviceIP, _ = values[SessionDeviceIPKey].(string)
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

// InvalidateUserSessions deletes every authenticated session of a user
// except currentID.
func (s *PostgresSessionStore) InvalidateUserSessions(ctx context.Context, userID, currentID string) (int, error) {
	if pool == nil {
		return 0, ErrDatabaseConnectionNotInitialized
	}

	sessions, err := s.ListUserSessions(ctx, userID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, sess := range sessions {
		if sess.ID == currentID {
			continue
		}
		if err := s.Destroy(ctx, sess.ID); err != nil {
			return deleted, err
		}
		deleted++
	}

	return deleted, nil
}
