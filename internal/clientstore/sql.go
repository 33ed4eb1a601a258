package clientstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// registers the "stoolap" database/sql driver
	_ "github.com/stoolap/stoolap/pkg/driver"
)

const createStateTable = `CREATE TABLE IF NOT EXISTS client_state (name TEXT, value TEXT)`

// SQLStore keeps client state in an embedded stoolap database.
type SQLStore struct {
	db *sql.DB
}

// OpenSQLStore opens a stoolap database ("memory://" or "file://<path>")
// and ensures the state table exists.
func OpenSQLStore(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("stoolap", dsn)
	if err != nil {
		return nil, fmt.Errorf("open stoolap: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping stoolap: %w", err)
	}
	if _, err := db.ExecContext(ctx, createStateTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create client_state table: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM client_state WHERE name = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM client_state WHERE name = ?", key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO client_state (name, value) VALUES (?, ?)", key, value); err != nil {
		return fmt.Errorf("insert %s: %w", key, err)
	}
	return tx.Commit()
}

func (s *SQLStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM client_state WHERE name = ?", key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
