package client

import (
	"sync"

	"github.com/prithwish249/qr-attendence/internal/models"
)

// Identity is the authenticated principal held for the lifetime of a login.
type Identity struct {
	ID       int64
	Username string
	Role     string
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// IdentityStore holds the current identity and its access token between login
// and logout. It is an explicit object handed to whoever needs it, not a
// package-level singleton, so two clients never share authentication state.
type IdentityStore struct {
	mu          sync.RWMutex
	identity    *Identity
	accessToken string
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{}
}

func (s *IdentityStore) set(identity Identity, accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = &identity
	s.accessToken = accessToken
}

// Clear drops the identity and token. Safe to call when already anonymous.
func (s *IdentityStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	s.accessToken = ""
}

// Current returns the stored identity, or false when anonymous.
func (s *IdentityStore) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

func (s *IdentityStore) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// Decision is the outcome of a route-gate check.
type Decision int

const (
	// Allow renders the requested view.
	Allow Decision = iota
	// RedirectLogin sends an anonymous visitor to the login screen.
	RedirectLogin
	// RedirectUnauthorized sends an authenticated but under-privileged
	// visitor to the unauthorized screen. The protected view is never shown.
	RedirectUnauthorized
)

// Gate decides whether the current identity may enter a view requiring the
// given role. Pass an empty requiredRole for views open to any authenticated
// user. The decision is re-derived from the store on every call, so it is
// always consistent across logout/login.
func (s *IdentityStore) Gate(requiredRole string) Decision {
	identity, ok := s.Current()
	if !ok {
		return RedirectLogin
	}
	if requiredRole != "" && identity.Role != requiredRole {
		return RedirectUnauthorized
	}
	return Allow
}

// HomeRoute is the landing view after login, branching solely on role.
func (s *IdentityStore) HomeRoute() string {
	identity, ok := s.Current()
	if !ok {
		return "/login"
	}
	if identity.IsAdmin() {
		return "/admin"
	}
	return "/scan"
}
