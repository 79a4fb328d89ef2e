package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"diamond-mines-backend/internal/models"
)

const createUsedCodesSQLite = `CREATE TABLE IF NOT EXISTS used_codes (
	code TEXT PRIMARY KEY,
	ip_address TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
)`

// SQLiteUsedCodeStore is a single-file used-code table for deployments
// without Redis or Postgres.
type SQLiteUsedCodeStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteUsedCodeStore(ctx context.Context, path string) (*SQLiteUsedCodeStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, createUsedCodesSQLite); err != nil {
		db.Close()
		return nil, fmt.Errorf("create used_codes table: %w", err)
	}
	return &SQLiteUsedCodeStore{db: db, now: time.Now}, nil
}

func (s *SQLiteUsedCodeStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteUsedCodeStore) Lookup(ctx context.Context, code string) (*models.RedemptionRecord, error) {
	var rec models.RedemptionRecord
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT code, ip_address, user_agent, created_at FROM used_codes WHERE code = ?`, code,
	).Scan(&rec.Code, &rec.RedeemedAtIP, &rec.UserAgent, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup used code: %w", err)
	}
	rec.Timestamp = time.UnixMilli(createdAt).UTC()
	return &rec, nil
}

func (s *SQLiteUsedCodeStore) Insert(ctx context.Context, code string, meta models.RedemptionMetadata) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO used_codes (code, ip_address, user_agent, created_at) VALUES (?, ?, ?, ?)`,
		code, meta.IP, meta.UserAgent, s.now().UTC().UnixMilli(),
	)
	if isUniqueViolation(err) {
		return ErrCodeAlreadyUsed
	}
	if err != nil {
		return fmt.Errorf("insert used code: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
