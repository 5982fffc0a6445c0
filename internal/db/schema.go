package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('ADMIN', 'EMPLOYEE')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_sessions (
		id BIGSERIAL PRIMARY KEY,
		session_date DATE NOT NULL UNIQUE,
		qr_code_token TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_logs (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		log_date DATE NOT NULL,
		log_time TIME NOT NULL,
		UNIQUE (user_id, log_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_logs_date ON attendance_logs (log_date)`,
}

// EnsureSchema creates the tables on boot. The UNIQUE constraints back the two
// per-date invariants: one session per calendar date, one log per (user, date).
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	for _, stmt := range schemaStatements {
		ctxExec, cancel := context.WithTimeout(ctx, timeout)
		_, err := pool.Exec(ctxExec, stmt)
		cancel()
		if err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
