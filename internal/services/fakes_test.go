package services

import (
	"context"
	"fmt"

	"github.com/prithwish249/qr-attendence/internal/models"
	"github.com/prithwish249/qr-attendence/internal/repo"
)

// In-memory stores backing the service tests.

type fakeUserStore struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[int64]*models.User), nextID: 1}
	for _, user := range users {
		u := user
		if u.ID == 0 {
			u.ID = s.nextID
		}
		s.users[u.ID] = &u
		if u.ID >= s.nextID {
			s.nextID = u.ID + 1
		}
	}
	return s
}

func (s *fakeUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			u := *user
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	u := *user
	return &u, nil
}

func (s *fakeUserStore) List(_ context.Context) ([]models.User, error) {
	var out []models.User
	for id := int64(1); id < s.nextID; id++ {
		if user, ok := s.users[id]; ok {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (s *fakeUserStore) ListByRole(_ context.Context, role string) ([]models.User, error) {
	var out []models.User
	for id := int64(1); id < s.nextID; id++ {
		if user, ok := s.users[id]; ok && user.Role == role {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (s *fakeUserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := s.GetByUsername(ctx, username)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (s *fakeUserStore) Create(_ context.Context, username, role, passwordHash string) (*models.User, error) {
	user := &models.User{ID: s.nextID, Username: username, Role: role, PasswordHash: passwordHash}
	s.users[user.ID] = user
	s.nextID++
	u := *user
	return &u, nil
}

func (s *fakeUserStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	user, ok := s.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

type fakeSessionStore struct {
	sessions map[string]*models.Session
	nextID   int64
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*models.Session), nextID: 1}
}

func (s *fakeSessionStore) GetByDate(_ context.Context, date string) (*models.Session, error) {
	session, ok := s.sessions[date]
	if !ok {
		return nil, repo.ErrNotFound
	}
	out := *session
	return &out, nil
}

func (s *fakeSessionStore) Create(_ context.Context, date, token string) (*models.Session, error) {
	session := &models.Session{ID: s.nextID, Date: date, QRCodeToken: token}
	s.sessions[date] = session
	s.nextID++
	out := *session
	return &out, nil
}

func (s *fakeSessionStore) DeleteByDate(_ context.Context, date string) error {
	if _, ok := s.sessions[date]; !ok {
		return repo.ErrNotFound
	}
	delete(s.sessions, date)
	return nil
}

type fakeAttendanceStore struct {
	logs   []models.AttendanceLog
	nextID int64
}

func newFakeAttendanceStore() *fakeAttendanceStore {
	return &fakeAttendanceStore{nextID: 1}
}

func (s *fakeAttendanceStore) HasLog(_ context.Context, userID int64, date string) (bool, error) {
	for _, log := range s.logs {
		if log.UserID == userID && log.Date == date {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeAttendanceStore) Insert(_ context.Context, userID int64, date, checkInTime string) (*models.AttendanceLog, error) {
	for _, log := range s.logs {
		if log.UserID == userID && log.Date == date {
			return nil, fmt.Errorf("duplicate log")
		}
	}
	log := models.AttendanceLog{ID: s.nextID, UserID: userID, Date: date, Time: checkInTime}
	s.logs = append(s.logs, log)
	s.nextID++
	return &log, nil
}

func (s *fakeAttendanceStore) ListByUser(_ context.Context, userID int64) ([]models.AttendanceLog, error) {
	var out []models.AttendanceLog
	for _, log := range s.logs {
		if log.UserID == userID {
			out = append(out, log)
		}
	}
	return out, nil
}

func (s *fakeAttendanceStore) ListByDate(_ context.Context, date string) ([]models.AttendanceLog, error) {
	var out []models.AttendanceLog
	for _, log := range s.logs {
		if log.Date == date {
			out = append(out, log)
		}
	}
	return out, nil
}
