package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/prithwish249/qr-attendence/internal/config"
	"github.com/prithwish249/qr-attendence/internal/http/middleware"
	"github.com/prithwish249/qr-attendence/internal/models"
	"github.com/prithwish249/qr-attendence/internal/repo"
	"github.com/prithwish249/qr-attendence/internal/services"
)

// In-memory stores so the full router stack runs without Postgres.

type memStores struct {
	users    map[int64]*models.User
	sessions map[string]*models.Session
	logs     []models.AttendanceLog
	nextUser int64
	nextSess int64
	nextLog  int64
}

func newMemStores() *memStores {
	return &memStores{
		users:    make(map[int64]*models.User),
		sessions: make(map[string]*models.Session),
		nextUser: 1,
		nextSess: 1,
		nextLog:  1,
	}
}

func (m *memStores) addUser(t *testing.T, username, password, role string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	user := &models.User{ID: m.nextUser, Username: username, Role: role, PasswordHash: string(hash)}
	m.users[user.ID] = user
	m.nextUser++
	return user
}

func (m *memStores) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			u := *user
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memStores) GetByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	u := *user
	return &u, nil
}

func (m *memStores) List(_ context.Context) ([]models.User, error) {
	var out []models.User
	for id := int64(1); id < m.nextUser; id++ {
		if user, ok := m.users[id]; ok {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (m *memStores) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	all, _ := m.List(ctx)
	var out []models.User
	for _, user := range all {
		if user.Role == role {
			out = append(out, user)
		}
	}
	return out, nil
}

func (m *memStores) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(ctx, username)
	return err == nil, nil
}

func (m *memStores) Create(_ context.Context, username, role, passwordHash string) (*models.User, error) {
	user := &models.User{ID: m.nextUser, Username: username, Role: role, PasswordHash: passwordHash}
	m.users[user.ID] = user
	m.nextUser++
	u := *user
	return &u, nil
}

func (m *memStores) Delete(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memStores) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	user, ok := m.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (m *memStores) GetByDate(_ context.Context, date string) (*models.Session, error) {
	session, ok := m.sessions[date]
	if !ok {
		return nil, repo.ErrNotFound
	}
	s := *session
	return &s, nil
}

func (m *memStores) CreateSession(_ context.Context, date, token string) (*models.Session, error) {
	session := &models.Session{ID: m.nextSess, Date: date, QRCodeToken: token}
	m.sessions[date] = session
	m.nextSess++
	s := *session
	return &s, nil
}

func (m *memStores) DeleteByDate(_ context.Context, date string) error {
	if _, ok := m.sessions[date]; !ok {
		return repo.ErrNotFound
	}
	delete(m.sessions, date)
	return nil
}

func (m *memStores) HasLog(_ context.Context, userID int64, date string) (bool, error) {
	for _, log := range m.logs {
		if log.UserID == userID && log.Date == date {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStores) Insert(_ context.Context, userID int64, date, checkInTime string) (*models.AttendanceLog, error) {
	log := models.AttendanceLog{ID: m.nextLog, UserID: userID, Date: date, Time: checkInTime}
	m.logs = append(m.logs, log)
	m.nextLog++
	return &log, nil
}

func (m *memStores) ListByUser(_ context.Context, userID int64) ([]models.AttendanceLog, error) {
	var out []models.AttendanceLog
	for _, log := range m.logs {
		if log.UserID == userID {
			out = append(out, log)
		}
	}
	return out, nil
}

func (m *memStores) ListByDate(_ context.Context, date string) ([]models.AttendanceLog, error) {
	var out []models.AttendanceLog
	for _, log := range m.logs {
		if log.Date == date {
			out = append(out, log)
		}
	}
	return out, nil
}

// sessionStoreShim adapts memStores to the SessionStore interface, whose
// Create collides with the user Create.
type sessionStoreShim struct{ *memStores }

func (s sessionStoreShim) Create(ctx context.Context, date, token string) (*models.Session, error) {
	return s.memStores.CreateSession(ctx, date, token)
}

func testRouter(t *testing.T) (*gin.Engine, *memStores) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stores := newMemStores()
	stores.addUser(t, "admin1", "pw", models.RoleAdmin)
	stores.addUser(t, "emp1", "pw", models.RoleEmployee)
	stores.addUser(t, "emp2", "pw", models.RoleEmployee)

	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpiry:          time.Hour,
		RateLimitPerMinute: 100,
		PasswordMinLen:     2,
	}

	sessions := sessionStoreShim{stores}
	router := NewRouter(Dependencies{
		Config:            cfg,
		AuthService:       services.NewAuthService(stores, cfg),
		SessionService:    services.NewSessionService(sessions),
		AttendanceService: services.NewAttendanceService(sessions, stores, stores),
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		RateLimiter:       middleware.NewRateLimiter(cfg.RateLimitPerMinute),
	})
	return router, stores
}

func login(t *testing.T, router *gin.Engine, username, password string) (string, map[string]any) {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d (%s)", username, resp.Code, resp.Body.String())
	}

	var parsed struct {
		AccessToken string         `json:"access_token"`
		User        map[string]any `json:"user"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("parse login response: %v", err)
	}
	return parsed.AccessToken, parsed.User
}

func doJSON(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestLoginReturnsIdentity(t *testing.T) {
	router, _ := testRouter(t)
	_, user := login(t, router, "admin1", "pw")

	if user["username"] != "admin1" || user["role"] != models.RoleAdmin {
		t.Fatalf("unexpected user payload %+v", user)
	}
	if id, ok := user["id"].(float64); !ok || int64(id) != 1 {
		t.Fatalf("unexpected id %v", user["id"])
	}
}

func TestLoginBadCredentials(t *testing.T) {
	router, _ := testRouter(t)
	body := `{"username":"admin1","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAdminRoutesFailClosed(t *testing.T) {
	router, stores := testRouter(t)
	employeeToken, _ := login(t, router, "emp1", "pw")

	adminRoutes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/admin/session/new"},
		{http.MethodDelete, "/api/admin/session/today"},
		{http.MethodGet, "/api/admin/session/qr"},
		{http.MethodGet, "/api/attendance/today"},
		{http.MethodGet, "/api/admin/users/all"},
		{http.MethodDelete, "/api/admin/users/1"},
		{http.MethodGet, "/api/admin/report/today/export"},
	}

	for _, route := range adminRoutes {
		if resp := doJSON(router, route.method, route.path, ""); resp.Code != http.StatusUnauthorized {
			t.Errorf("%s %s anonymous: expected 401, got %d", route.method, route.path, resp.Code)
		}
		if resp := doJSON(router, route.method, route.path, employeeToken); resp.Code != http.StatusForbidden {
			t.Errorf("%s %s as employee: expected 403, got %d", route.method, route.path, resp.Code)
		}
	}

	// The gate rejected before any handler ran: no session was created, no
	// user deleted.
	if len(stores.sessions) != 0 {
		t.Fatal("employee request must not create a session")
	}
	if _, ok := stores.users[1]; !ok {
		t.Fatal("employee request must not delete a user")
	}
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	router, _ := testRouter(t)
	adminToken, _ := login(t, router, "admin1", "pw")

	// No session yet: absent state, specific code and message.
	resp := doJSON(router, http.MethodGet, "/api/session/today", adminToken)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "NO_SESSION") ||
		!strings.Contains(resp.Body.String(), "No session available for today") {
		t.Fatalf("unexpected absent body %s", resp.Body.String())
	}

	resp = doJSON(router, http.MethodPost, "/api/admin/session/new", adminToken)
	if resp.Code != http.StatusOK {
		t.Fatalf("create session: %d (%s)", resp.Code, resp.Body.String())
	}
	var created struct {
		Session models.Session `json:"session"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	resp = doJSON(router, http.MethodGet, "/api/session/today", adminToken)
	if resp.Code != http.StatusOK {
		t.Fatalf("fetch session: %d", resp.Code)
	}
	var fetched models.Session
	if err := json.Unmarshal(resp.Body.Bytes(), &fetched); err != nil {
		t.Fatal(err)
	}
	if fetched.ID != created.Session.ID || fetched.QRCodeToken != created.Session.QRCodeToken {
		t.Fatalf("create/fetch mismatch: %+v vs %+v", created.Session, fetched)
	}

	resp = doJSON(router, http.MethodDelete, "/api/admin/session/today", adminToken)
	if resp.Code != http.StatusOK {
		t.Fatalf("delete session: %d", resp.Code)
	}
	resp = doJSON(router, http.MethodGet, "/api/session/today", adminToken)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected absent after delete, got %d", resp.Code)
	}
}

func TestSubmitAndReportOverHTTP(t *testing.T) {
	router, _ := testRouter(t)
	adminToken, _ := login(t, router, "admin1", "pw")
	employeeToken, _ := login(t, router, "emp1", "pw")

	resp := doJSON(router, http.MethodPost, "/api/admin/session/new", adminToken)
	var created struct {
		Session models.Session `json:"session"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	submitPath := "/api/attendance/submit?" + url.Values{
		"username": {"emp1"},
		"token":    {created.Session.QRCodeToken},
	}.Encode()

	resp = doJSON(router, http.MethodPost, submitPath, employeeToken)
	if resp.Code != http.StatusOK {
		t.Fatalf("submit: %d (%s)", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"status":"MARKED"`) {
		t.Fatalf("expected MARKED, got %s", resp.Body.String())
	}

	resp = doJSON(router, http.MethodPost, submitPath, employeeToken)
	if !strings.Contains(resp.Body.String(), `"status":"DUPLICATE"`) ||
		!strings.Contains(resp.Body.String(), "already marked") {
		t.Fatalf("expected DUPLICATE, got %s", resp.Body.String())
	}

	resp = doJSON(router, http.MethodGet, "/api/attendance/today", adminToken)
	if resp.Code != http.StatusOK {
		t.Fatalf("report: %d", resp.Code)
	}
	var records []models.AttendanceRecord
	if err := json.Unmarshal(resp.Body.Bytes(), &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 roster rows, got %d", len(records))
	}
}

func TestReportExportHeaders(t *testing.T) {
	router, _ := testRouter(t)
	adminToken, _ := login(t, router, "admin1", "pw")

	resp := doJSON(router, http.MethodGet, "/api/admin/report/today/export?format=csv", adminToken)
	if resp.Code != http.StatusOK {
		t.Fatalf("export: %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	disposition := resp.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "attendance_report_") || !strings.Contains(disposition, ".csv") {
		t.Fatalf("unexpected disposition %q", disposition)
	}
	if !strings.HasPrefix(resp.Body.String(), "Username,Role,Check-in Time,Status") {
		t.Fatalf("unexpected csv header: %s", resp.Body.String())
	}
}

func TestInvalidTokenSubmission(t *testing.T) {
	router, _ := testRouter(t)
	adminToken, _ := login(t, router, "admin1", "pw")
	employeeToken, _ := login(t, router, "emp1", "pw")

	doJSON(router, http.MethodPost, "/api/admin/session/new", adminToken)

	resp := doJSON(router, http.MethodPost, "/api/attendance/submit?username=emp1&token=bogus", employeeToken)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Invalid QR token") {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}
