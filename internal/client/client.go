// Package client is the Go counterpart of the attendance SPA: it holds the
// authenticated identity, gates navigation by role, and wraps every REST
// call the screens make. Nothing here retries automatically; a failed call
// surfaces at once and recovery is the caller repeating the action.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prithwish249/qr-attendence/internal/models"
)

type Client struct {
	baseURL  string
	http     *http.Client
	Identity *IdentityStore
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 15 * time.Second},
		Identity: NewIdentityStore(),
	}
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"user"`
}

// Login authenticates and initializes the identity store. Bad credentials
// come back as *AuthError; the store is left untouched in that case.
func (c *Client) Login(ctx context.Context, username, password string) (Identity, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return Identity{}, &ValidationError{Message: "username and password are required"}
	}

	body, resp, err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, false)
	if err != nil {
		return Identity{}, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return Identity{}, &AuthError{Message: errorMessage(body)}
	}
	if resp.StatusCode != http.StatusOK {
		return Identity{}, backendError(resp.StatusCode, body)
	}

	var parsed loginResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Identity{}, &BackendError{Message: "malformed login response"}
	}

	identity := Identity{ID: parsed.User.ID, Username: parsed.User.Username, Role: parsed.User.Role}
	c.Identity.set(identity, parsed.AccessToken)
	return identity, nil
}

// Logout drops the stored identity. The next Gate call redirects to login.
func (c *Client) Logout() {
	c.Identity.Clear()
}

type SessionResult struct {
	Message string          `json:"message"`
	Session *models.Session `json:"session"`
}

// CreateSession asks the backend for today's session, minting one if needed.
// Repeated calls are idempotent from the caller's perspective.
func (c *Client) CreateSession(ctx context.Context) (*SessionResult, error) {
	body, resp, err := c.do(ctx, http.MethodPost, "/api/admin/session/new", nil, true)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, backendError(resp.StatusCode, body)
	}

	var result SessionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &BackendError{Message: "malformed session response"}
	}
	return &result, nil
}

// FetchTodaySession returns today's session. Absence is the expected second
// return being false with a nil error: the backend's NO_SESSION answer (or
// its legacy text form) is a state, not a failure. Anything else non-2xx is
// a reportable error.
func (c *Client) FetchTodaySession(ctx context.Context) (*models.Session, bool, error) {
	body, resp, err := c.do(ctx, http.MethodGet, "/api/session/today", nil, true)
	if err != nil {
		return nil, false, err
	}
	if isNoSession(resp.StatusCode, body) {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, backendError(resp.StatusCode, body)
	}

	var session models.Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, false, &BackendError{Message: "malformed session response"}
	}
	return &session, true, nil
}

// CheckSessionAvailable probes for today's session; the scan screen disables
// scanning when it reports false.
func (c *Client) CheckSessionAvailable(ctx context.Context) (bool, error) {
	_, ok, err := c.FetchTodaySession(ctx)
	return ok, err
}

func (c *Client) DeleteSession(ctx context.Context) (string, error) {
	body, resp, err := c.do(ctx, http.MethodDelete, "/api/admin/session/today", nil, true)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", backendError(resp.StatusCode, body)
	}

	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return strings.TrimSpace(string(body)), nil
	}
	return parsed.Message, nil
}

// FetchQRCode downloads today's QR code as PNG bytes.
func (c *Client) FetchQRCode(ctx context.Context) ([]byte, error) {
	body, resp, err := c.do(ctx, http.MethodGet, "/api/admin/session/qr", nil, true)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, backendError(resp.StatusCode, body)
	}
	return body, nil
}

// SubmitAttendance posts a decoded token for the given username and
// classifies the backend's answer. The structured status field is preferred;
// free-text bodies fall back to substring matching on the legacy wording.
func (c *Client) SubmitAttendance(ctx context.Context, username, token string) (Outcome, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(token) == "" {
		return Outcome{}, &ValidationError{Message: "username and token are required"}
	}

	path := "/api/attendance/submit?" + url.Values{
		"username": {username},
		"token":    {token},
	}.Encode()
	body, _, err := c.do(ctx, http.MethodPost, path, nil, true)
	if err != nil {
		return Outcome{}, err
	}

	var structured struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &structured); err == nil {
		code := structured.Status
		message := structured.Message
		if code == "" {
			code = structured.Error.Code
			message = structured.Error.Message
		}
		if status, ok := classifyCode(code); ok {
			return Outcome{Status: status, Message: message}, nil
		}
		if message != "" {
			return Outcome{Status: classifyText(message), Message: message}, nil
		}
	}

	text := strings.TrimSpace(string(body))
	return Outcome{Status: classifyText(text), Message: text}, nil
}

// FetchTodayReport returns today's roster with derived statuses.
func (c *Client) FetchTodayReport(ctx context.Context) ([]models.AttendanceRecord, error) {
	body, resp, err := c.do(ctx, http.MethodGet, "/api/attendance/today", nil, true)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, backendError(resp.StatusCode, body)
	}

	var records []models.AttendanceRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &BackendError{Message: "malformed report response"}
	}
	return records, nil
}

type HistoryEntry struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

func (c *Client) FetchHistory(ctx context.Context, userID int64) ([]HistoryEntry, error) {
	body, resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/attendance/by-user/%d", userID), nil, true)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, backendError(resp.StatusCode, body)
	}

	var entries []HistoryEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &BackendError{Message: "malformed history response"}
	}
	return entries, nil
}

// ReportStats are the counters the report screen shows above the table.
type ReportStats struct {
	Total   int
	Present int
	Absent  int
}

// Stats derives the counters from an already-fetched record list.
func Stats(records []models.AttendanceRecord) ReportStats {
	stats := ReportStats{Total: len(records)}
	for _, record := range records {
		switch record.Status {
		case models.StatusPresent:
			stats.Present++
		case models.StatusAbsent:
			stats.Absent++
		}
	}
	return stats
}

type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// ListUsers fetches all accounts. Callers refetch after every mutation
// instead of patching the list locally.
func (c *Client) ListUsers(ctx context.Context) ([]UserSummary, error) {
	body, resp, err := c.do(ctx, http.MethodGet, "/api/admin/users/all", nil, true)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, backendError(resp.StatusCode, body)
	}

	var users []UserSummary
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, &BackendError{Message: "malformed users response"}
	}
	return users, nil
}

func (c *Client) AddUser(ctx context.Context, username, password, role string) (string, error) {
	if strings.TrimSpace(username) == "" || password == "" || strings.TrimSpace(role) == "" {
		return "", &ValidationError{Message: "username, password and role are required"}
	}

	body, resp, err := c.do(ctx, http.MethodPost, "/api/admin/users/add", map[string]string{
		"username": username,
		"password": password,
		"role":     role,
	}, true)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", backendError(resp.StatusCode, body)
	}

	var parsed struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &parsed)
	return parsed.Message, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int64) (string, error) {
	body, resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", id), nil, true)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", backendError(resp.StatusCode, body)
	}

	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return strings.TrimSpace(string(body)), nil
	}
	return parsed.Message, nil
}

func (c *Client) ChangePassword(ctx context.Context, id int64, newPassword string) (string, error) {
	if newPassword == "" {
		return "", &ValidationError{Message: "new password is required"}
	}

	body, resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/admin/users/%d/password", id), map[string]string{
		"password": newPassword,
	}, true)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", backendError(resp.StatusCode, body)
	}

	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return strings.TrimSpace(string(body)), nil
	}
	return parsed.Message, nil
}

// do issues one request and reads the full body. Every call site inspects
// the status itself; nothing is allowed to escape to a generic failure
// boundary unhandled.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}, authed bool) ([]byte, *http.Response, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, &BackendError{Message: "could not encode request"}
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, nil, &BackendError{Message: err.Error()}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if token := c.Identity.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, &BackendError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &BackendError{Message: err.Error()}
	}
	return body, resp, nil
}

// isNoSession recognizes the absent-session answer in both its structured
// and legacy text forms.
func isNoSession(status int, body []byte) bool {
	if status == http.StatusOK {
		return false
	}
	var structured struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &structured); err == nil && structured.Error.Code == "NO_SESSION" {
		return true
	}
	return strings.Contains(string(body), "No session available for today")
}

func errorMessage(body []byte) string {
	var structured struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &structured); err == nil && structured.Error.Message != "" {
		return structured.Error.Message
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "request failed"
	}
	return text
}

func backendError(status int, body []byte) error {
	var structured struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &structured); err == nil && structured.Error.Message != "" {
		return &BackendError{Status: status, Code: structured.Error.Code, Message: structured.Error.Message}
	}
	return &BackendError{Status: status, Message: errorMessage(body)}
}
