package services

import (
	"context"
	"errors"
	"time"

	"github.com/prithwish249/qr-attendence/internal/models"
	"github.com/prithwish249/qr-attendence/internal/repo"
	"github.com/prithwish249/qr-attendence/internal/utils"
)

// Submit statuses. The legacy contract distinguished these by message text
// only; the status field makes them machine-readable while the messages keep
// the original wording for older clients.
const (
	SubmitMarked    = "MARKED"
	SubmitDuplicate = "DUPLICATE"
)

type SubmitResult struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Username string `json:"username"`
	Time     string `json:"time,omitempty"`
}

type AttendanceService struct {
	sessions   SessionStore
	users      UserStore
	attendance AttendanceStore
	now        func() time.Time
}

func NewAttendanceService(sessions SessionStore, users UserStore, attendance AttendanceStore) *AttendanceService {
	return &AttendanceService{
		sessions:   sessions,
		users:      users,
		attendance: attendance,
		now:        time.Now,
	}
}

// Submit records a check-in for username against today's session token.
// Resubmitting on the same day is not an error: it reports DUPLICATE and
// leaves the stored log untouched.
func (s *AttendanceService) Submit(ctx context.Context, username, token string) (*SubmitResult, error) {
	now := s.now()
	today := now.Format(models.DateFormat)

	session, err := s.sessions.GetByDate(ctx, today)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, utils.NewAppError(404, "NO_SESSION", NoSessionMessage, nil)
	}
	if err != nil {
		return nil, utils.NewAppError(500, "INTERNAL_ERROR", "could not fetch today's session", nil)
	}

	if session.QRCodeToken != token {
		return nil, utils.NewAppError(400, "INVALID_TOKEN", "Invalid QR token", nil)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, utils.NewAppError(404, "NOT_FOUND", "User not found", nil)
	}
	if err != nil {
		return nil, utils.NewAppError(500, "INTERNAL_ERROR", "could not look up user", nil)
	}

	marked, err := s.attendance.HasLog(ctx, user.ID, today)
	if err != nil {
		return nil, utils.NewAppError(500, "INTERNAL_ERROR", "could not check attendance", nil)
	}
	if marked {
		return &SubmitResult{
			Status:   SubmitDuplicate,
			Message:  "Attendance already marked for today",
			Username: username,
		}, nil
	}

	log, err := s.attendance.Insert(ctx, user.ID, today, now.Format(models.TimeFormat))
	if err != nil {
		return nil, utils.NewAppError(500, "INTERNAL_ERROR", "could not record attendance", nil)
	}

	return &SubmitResult{
		Status:   SubmitMarked,
		Message:  "Attendance marked successfully",
		Username: username,
		Time:     log.Time,
	}, nil
}

// TodayReport builds the full roster view for today: every EMPLOYEE appears
// once, PRESENT with a check-in time when a log exists, ABSENT otherwise.
// ABSENT is derived here, never stored.
func (s *AttendanceService) TodayReport(ctx context.Context) ([]models.AttendanceRecord, error) {
	today := s.now().Format(models.DateFormat)

	employees, err := s.users.ListByRole(ctx, models.RoleEmployee)
	if err != nil {
		return nil, utils.NewAppError(500, "INTERNAL_ERROR", "could not list employees", nil)
	}

	logs, err := s.attendance.ListByDate(ctx, today)
	if err != nil {
		return nil, utils.NewAppError(500, "INTERNAL_ERROR", "could not list attendance logs", nil)
	}

	logByUser := make(map[int64]models.AttendanceLog, len(logs))
	for _, log := range logs {
		logByUser[log.UserID] = log
	}

	records := make([]models.AttendanceRecord, 0, len(employees))
	for _, employee := range employees {
		record := models.AttendanceRecord{
			UserID:   employee.ID,
			Username: employee.Username,
			Role:     employee.Role,
			Date:     today,
			Status:   models.StatusAbsent,
		}
		if log, ok := logByUser[employee.ID]; ok {
			checkIn := log.Time
			record.CheckInTime = &checkIn
			record.Status = models.StatusPresent
		}
		records = append(records, record)
	}
	return records, nil
}

// HistoryByUser lists all recorded check-ins for one user, newest first.
func (s *AttendanceService) HistoryByUser(ctx context.Context, userID int64) ([]models.AttendanceLog, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, utils.NewAppError(404, "NOT_FOUND", "User not found", nil)
		}
		return nil, utils.NewAppError(500, "INTERNAL_ERROR", "could not look up user", nil)
	}

	logs, err := s.attendance.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewAppError(500, "INTERNAL_ERROR", "could not list attendance logs", nil)
	}
	return logs, nil
}
