package services

import (
	"context"

	"github.com/prithwish249/qr-attendence/internal/models"
)

// Store interfaces are satisfied by the pgx repos and by test fakes.

type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListByRole(ctx context.Context, role string) ([]models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, username, role, passwordHash string) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type SessionStore interface {
	GetByDate(ctx context.Context, date string) (*models.Session, error)
	Create(ctx context.Context, date, token string) (*models.Session, error)
	DeleteByDate(ctx context.Context, date string) error
}

type AttendanceStore interface {
	HasLog(ctx context.Context, userID int64, date string) (bool, error)
	Insert(ctx context.Context, userID int64, date, checkInTime string) (*models.AttendanceLog, error)
	ListByUser(ctx context.Context, userID int64) ([]models.AttendanceLog, error)
	ListByDate(ctx context.Context, date string) ([]models.AttendanceLog, error)
}
