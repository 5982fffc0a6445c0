package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prithwish249/qr-attendence/internal/models"
)

type AttendanceRepo struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewAttendanceRepo(pool *pgxpool.Pool, timeout time.Duration) *AttendanceRepo {
	return &AttendanceRepo{pool: pool, timeout: timeout}
}

func (r *AttendanceRepo) HasLog(ctx context.Context, userID int64, date string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM attendance_logs WHERE user_id = $1 AND log_date = $2)
	`, userID, date)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("check attendance log: %w", err)
	}
	return exists, nil
}

func (r *AttendanceRepo) Insert(ctx context.Context, userID int64, date, checkInTime string) (*models.AttendanceLog, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO attendance_logs (user_id, log_date, log_time)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, to_char(log_date, 'YYYY-MM-DD'), to_char(log_time, 'HH24:MI:SS')
	`, userID, date, checkInTime)

	var log models.AttendanceLog
	if err := row.Scan(&log.ID, &log.UserID, &log.Date, &log.Time); err != nil {
		return nil, fmt.Errorf("insert attendance log: %w", err)
	}
	return &log, nil
}

func (r *AttendanceRepo) ListByUser(ctx context.Context, userID int64) ([]models.AttendanceLog, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, to_char(log_date, 'YYYY-MM-DD'), to_char(log_time, 'HH24:MI:SS')
		FROM attendance_logs
		WHERE user_id = $1
		ORDER BY log_date DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list logs by user: %w", err)
	}
	defer rows.Close()

	var logs []models.AttendanceLog
	for rows.Next() {
		var log models.AttendanceLog
		if err := rows.Scan(&log.ID, &log.UserID, &log.Date, &log.Time); err != nil {
			return nil, fmt.Errorf("scan log row: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate logs: %w", err)
	}
	return logs, nil
}

func (r *AttendanceRepo) ListByDate(ctx context.Context, date string) ([]models.AttendanceLog, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, to_char(log_date, 'YYYY-MM-DD'), to_char(log_time, 'HH24:MI:SS')
		FROM attendance_logs
		WHERE log_date = $1
	`, date)
	if err != nil {
		return nil, fmt.Errorf("list logs by date: %w", err)
	}
	defer rows.Close()

	var logs []models.AttendanceLog
	for rows.Next() {
		var log models.AttendanceLog
		if err := rows.Scan(&log.ID, &log.UserID, &log.Date, &log.Time); err != nil {
			return nil, fmt.Errorf("scan log row: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate logs: %w", err)
	}
	return logs, nil
}
