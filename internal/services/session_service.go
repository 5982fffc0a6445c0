package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/prithwish249/qr-attendence/internal/models"
	"github.com/prithwish249/qr-attendence/internal/repo"
	"github.com/prithwish249/qr-attendence/internal/utils"
)

// NoSessionMessage is the canonical body for the absent-session state. Clients
// key off it when the structured code is unavailable, so the wording is frozen.
const NoSessionMessage = "No session available for today"

type SessionService struct {
	sessions SessionStore
	now      func() time.Time
}

type SessionResult struct {
	Message string          `json:"message"`
	Session *models.Session `json:"session"`
}

func NewSessionService(sessions SessionStore) *SessionService {
	return &SessionService{sessions: sessions, now: time.Now}
}

func (s *SessionService) today() string {
	return s.now().Format(models.DateFormat)
}

// CreateToday is idempotent per calendar date: if a session already exists it
// is returned as-is rather than replaced, so an already-distributed QR code
// stays valid.
func (s *SessionService) CreateToday(ctx context.Context) (*SessionResult, error) {
	today := s.today()

	existing, err := s.sessions.GetByDate(ctx, today)
	if err == nil {
		return &SessionResult{Message: "Session already exists for today", Session: existing}, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, utils.NewAppError(500, "INTERNAL_ERROR", "could not check today's session", nil)
	}

	session, err := s.sessions.Create(ctx, today, uuid.NewString())
	if err != nil {
		return nil, utils.NewAppError(500, "INTERNAL_ERROR", "could not create session", nil)
	}
	return &SessionResult{Message: "New session created successfully", Session: session}, nil
}

// GetToday returns today's session. Absence maps to a 404 with code
// NO_SESSION, which clients treat as an expected state rather than a failure.
func (s *SessionService) GetToday(ctx context.Context) (*models.Session, error) {
	session, err := s.sessions.GetByDate(ctx, s.today())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, utils.NewAppError(404, "NO_SESSION", NoSessionMessage, nil)
	}
	if err != nil {
		return nil, utils.NewAppError(500, "INTERNAL_ERROR", "could not fetch today's session", nil)
	}
	return session, nil
}

func (s *SessionService) DeleteToday(ctx context.Context) (string, error) {
	err := s.sessions.DeleteByDate(ctx, s.today())
	if errors.Is(err, repo.ErrNotFound) {
		return "", utils.NewAppError(404, "NO_SESSION", "No session found for today", nil)
	}
	if err != nil {
		return "", utils.NewAppError(500, "INTERNAL_ERROR", "could not delete session", nil)
	}
	return "Today's session deleted successfully", nil
}
