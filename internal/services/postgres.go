package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"

	"diamond-mines-backend/internal/models"
)

const pgUniqueViolation = "23505"

const createUsedCodesPostgres = `CREATE TABLE IF NOT EXISTS used_codes (
	code TEXT PRIMARY KEY,
	ip_address TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresUsedCodeStore keeps redemptions in a used_codes table whose
// primary key enforces one redemption per code.
type PostgresUsedCodeStore struct {
	db *sql.DB
}

func NewPostgresUsedCodeStore(ctx context.Context, dsn string) (*PostgresUsedCodeStore, error) {
	pgCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	// No server-side prepared statements, so poolers like PgBouncer work.
	pgCfg.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	db := stdlib.OpenDB(*pgCfg)
	db.SetConnMaxIdleTime(4 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, createUsedCodesPostgres); err != nil {
		db.Close()
		return nil, fmt.Errorf("create used_codes table: %w", err)
	}
	return &PostgresUsedCodeStore{db: db}, nil
}

func (p *PostgresUsedCodeStore) Close() error {
	return p.db.Close()
}

func (p *PostgresUsedCodeStore) Lookup(ctx context.Context, code string) (*models.RedemptionRecord, error) {
	var rec models.RedemptionRecord
	err := p.db.QueryRowContext(ctx,
		`SELECT code, ip_address, user_agent, created_at FROM used_codes WHERE code = $1`, code,
	).Scan(&rec.Code, &rec.RedeemedAtIP, &rec.UserAgent, &rec.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup used code: %w", err)
	}
	return &rec, nil
}

func (p *PostgresUsedCodeStore) Insert(ctx context.Context, code string, meta models.RedemptionMetadata) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO used_codes (code, ip_address, user_agent) VALUES ($1, $2, $3)`,
		code, meta.IP, meta.UserAgent,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrCodeAlreadyUsed
	}
	if err != nil {
		return fmt.Errorf("insert used code: %w", err)
	}
	return nil
}

// Delete removes a redemption; used by tests only.
func (p *PostgresUsedCodeStore) Delete(ctx context.Context, code string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM used_codes WHERE code = $1`, code)
	return err
}
