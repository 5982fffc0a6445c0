package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prithwish249/qr-attendence/internal/models"
)

type SessionRepo struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewSessionRepo(pool *pgxpool.Pool, timeout time.Duration) *SessionRepo {
	return &SessionRepo{pool: pool, timeout: timeout}
}

// GetByDate returns the session for the given calendar date, or ErrNotFound.
func (r *SessionRepo) GetByDate(ctx context.Context, date string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT id, to_char(session_date, 'YYYY-MM-DD'), qr_code_token
		FROM attendance_sessions
		WHERE session_date = $1
	`, date)

	var session models.Session
	err := row.Scan(&session.ID, &session.Date, &session.QRCodeToken)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session by date: %w", err)
	}
	return &session, nil
}

func (r *SessionRepo) Create(ctx context.Context, date, token string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO attendance_sessions (session_date, qr_code_token)
		VALUES ($1, $2)
		RETURNING id, to_char(session_date, 'YYYY-MM-DD'), qr_code_token
	`, date, token)

	var session models.Session
	if err := row.Scan(&session.ID, &session.Date, &session.QRCodeToken); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return &session, nil
}

func (r *SessionRepo) DeleteByDate(ctx context.Context, date string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd, err := r.pool.Exec(ctx, "DELETE FROM attendance_sessions WHERE session_date = $1", date)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
