// Package sqlite persists sessions in a local SQLite database, one row per
// chat identity. Cached name lists are stored as JSON columns.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dvloznov/ledgerbot/internal/session"
)

const schema = `CREATE TABLE IF NOT EXISTS sessions (
	chat_id          INTEGER PRIMARY KEY,
	ledger_url       TEXT NOT NULL DEFAULT '',
	api_key          TEXT NOT NULL DEFAULT '',
	default_account  TEXT NOT NULL DEFAULT '',
	stage            TEXT NOT NULL,
	asset_accounts   TEXT NOT NULL DEFAULT '[]',
	expense_accounts TEXT NOT NULL DEFAULT '[]',
	revenue_accounts TEXT NOT NULL DEFAULT '[]',
	categories       TEXT NOT NULL DEFAULT '[]',
	updated_at       TIMESTAMP NOT NULL
)`

// Store is a SQLite-backed implementation of session.Store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping session database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure session schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Get implements the session.Store interface.
func (s *Store) Get(ctx context.Context, chatID int64) (*session.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT chat_id, ledger_url, api_key, default_account, stage,
		asset_accounts, expense_accounts, revenue_accounts, categories, updated_at
		FROM sessions WHERE chat_id = ?`, chatID)

	var (
		sess                             session.Session
		stage                            string
		assets, expenses, revenues, cats string
	)
	err := row.Scan(&sess.ChatID, &sess.LedgerURL, &sess.APIKey, &sess.DefaultAccount, &stage,
		&assets, &expenses, &revenues, &cats, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %d: %w", chatID, err)
	}

	sess.Stage = session.Stage(stage)
	for _, col := range []struct {
		raw  string
		dest *[]string
	}{
		{assets, &sess.AssetAccounts},
		{expenses, &sess.ExpenseAccounts},
		{revenues, &sess.RevenueAccounts},
		{cats, &sess.Categories},
	} {
		if err := json.Unmarshal([]byte(col.raw), col.dest); err != nil {
			return nil, fmt.Errorf("decode session %d name lists: %w", chatID, err)
		}
	}

	return &sess, nil
}

// Put implements the session.Store interface.
func (s *Store) Put(ctx context.Context, sess *session.Session) error {
	cols := make([]string, 0, 4)
	for _, list := range [][]string{sess.AssetAccounts, sess.ExpenseAccounts, sess.RevenueAccounts, sess.Categories} {
		if list == nil {
			list = []string{}
		}
		encoded, err := json.Marshal(list)
		if err != nil {
			return fmt.Errorf("encode session %d name lists: %w", sess.ChatID, err)
		}
		cols = append(cols, string(encoded))
	}

	_, err := s.db.ExecContext(ctx, `REPLACE INTO sessions
		(chat_id, ledger_url, api_key, default_account, stage,
		 asset_accounts, expense_accounts, revenue_accounts, categories, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ChatID, sess.LedgerURL, sess.APIKey, sess.DefaultAccount, string(sess.Stage),
		cols[0], cols[1], cols[2], cols[3], time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save session %d: %w", sess.ChatID, err)
	}
	return nil
}

// Delete implements the session.Store interface.
func (s *Store) Delete(ctx context.Context, chatID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE chat_id = ?`, chatID); err != nil {
		return fmt.Errorf("delete session %d: %w", chatID, err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ensure Store implements the session.Store interface.
var _ session.Store = (*Store)(nil)
