package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/callgate/callgate-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id           TEXT PRIMARY KEY,
	display_name TEXT NOT NULL DEFAULT '',
	device_token TEXT,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single writer connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function after the
// schema is applied. Useful for tests to seed directory entries.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	s, err := New(dbPath)
	if err != nil {
		return nil, err
	}

	if setup != nil {
		if err := setup(s.db); err != nil {
			s.db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetUserByID retrieves a directory entry by user ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	query := `
		SELECT id, display_name, device_token, created_at, updated_at
		FROM users
		WHERE id = ?
	`
	var u store.User
	var deviceToken sql.NullString
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.DisplayName, &deviceToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}

	if deviceToken.Valid && deviceToken.String != "" {
		u.DeviceToken = &deviceToken.String
	}
	return &u, nil
}

// UpsertDeviceToken registers a delivery address, creating the entry if needed.
func (s *SQLiteStore) UpsertDeviceToken(ctx context.Context, userID, displayName, deviceToken string) error {
	query := `
		INSERT INTO users (id, display_name, device_token)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			device_token = excluded.device_token,
			updated_at   = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, userID, displayName, deviceToken); err != nil {
		return fmt.Errorf("upsert device token: %w", err)
	}
	return nil
}

// ClearDeviceToken removes the user's delivery address.
func (s *SQLiteStore) ClearDeviceToken(ctx context.Context, userID string) error {
	query := `
		UPDATE users
		SET device_token = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("clear device token: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Ensure SQLiteStore implements store.Store
var _ store.Store = (*SQLiteStore)(nil)
