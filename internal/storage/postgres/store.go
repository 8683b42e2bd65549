package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"notifyScope/internal/model"
	"notifyScope/internal/storage"
)

// Store provides Postgres persistence for dapps, templates, and notifications.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables the notifier reads and writes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS dapps (
			id text PRIMARY KEY,
			name text NOT NULL,
			address text NOT NULL UNIQUE,
			logo text NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS content_templates (
			id bigserial PRIMARY KEY,
			dapp_id text NOT NULL REFERENCES dapps(id),
			event_name text NOT NULL,
			subject text NOT NULL,
			conjunction text NOT NULL,
			object text NOT NULL,
			extra_field text NOT NULL DEFAULT '',
			UNIQUE (dapp_id, event_name)
		);
		CREATE TABLE IF NOT EXISTS notifications (
			id bigserial PRIMARY KEY,
			dapp_id text NOT NULL,
			name text NOT NULL,
			content text NOT NULL,
			seen boolean NOT NULL DEFAULT false,
			time timestamptz NOT NULL,
			event_key text UNIQUE,
			created_at timestamptz NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// FindDapp returns the dapp registered for the given program address.
func (s *Store) FindDapp(ctx context.Context, address string) (model.Dapp, error) {
	var d model.Dapp
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, address, logo FROM dapps WHERE address = $1
	`, address).Scan(&d.ID, &d.Name, &d.Address, &d.Logo)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Dapp{}, storage.ErrNotFound
	}
	if err != nil {
		return model.Dapp{}, fmt.Errorf("find dapp: %w", err)
	}
	return d, nil
}

// FindTemplate returns the content template for a (dapp, event name) pair.
func (s *Store) FindTemplate(ctx context.Context, dappID, eventName string) (model.ContentTemplate, error) {
	var t model.ContentTemplate
	err := s.pool.QueryRow(ctx, `
		SELECT dapp_id, event_name, subject, conjunction, object, extra_field
		FROM content_templates
		WHERE dapp_id = $1 AND event_name = $2
	`, dappID, eventName).Scan(&t.DappID, &t.EventName, &t.Subject, &t.Conjunction, &t.Object, &t.ExtraField)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ContentTemplate{}, storage.ErrNotFound
	}
	if err != nil {
		return model.ContentTemplate{}, fmt.Errorf("find template: %w", err)
	}
	return t, nil
}

// InsertNotification persists a notification. Inserts carrying an event key
// that already exists are ignored and reported with inserted=false; an empty
// event key never conflicts.
func (s *Store) InsertNotification(ctx context.Context, n model.Notification) (model.Notification, bool, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO notifications (dapp_id, name, content, seen, time, event_key)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		ON CONFLICT (event_key) DO NOTHING
		RETURNING id, created_at
	`, n.DappID, n.Name, n.Content, n.Seen, n.Time, n.EventKey).Scan(&n.ID, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Notification{}, false, nil
	}
	if err != nil {
		return model.Notification{}, false, fmt.Errorf("insert notification: %w", err)
	}
	return n, true, nil
}

// ListNotifications returns notifications sorted by creation time, newest
// first.
func (s *Store) ListNotifications(ctx context.Context, offset, limit int) ([]model.Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, dapp_id, name, content, seen, time, COALESCE(event_key, ''), created_at
		FROM notifications
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.DappID, &n.Name, &n.Content, &n.Seen, &n.Time, &n.EventKey, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
