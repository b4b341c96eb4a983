package petclient

import (
	"slices"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/limbo/virtualpet/pkg/entity"
)

// Claims mirror the token payload. They are decoded without verification and
// used for display only; the server re-checks roles on every request.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// Session holds the bearer token of one logged in user. Safe for concurrent use.
type Session struct {
	mu     sync.RWMutex
	token  string
	claims Claims
	now    func() time.Time
}

func NewSession() *Session {
	return &Session{now: time.Now}
}

// Set stores token after decoding its claims. An undecodable token is rejected
// and leaves the session as it was.
func (s *Session) Set(token string) error {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.claims = claims
	return nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Claims() (Claims, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.claims, s.token != ""
}

// IsAuthenticated reports whether a token is held and not yet expired by its own claims.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return false
	}
	if s.claims.ExpiresAt != nil && !s.now().Before(s.claims.ExpiresAt.Time) {
		return false
	}
	return true
}

func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && (slices.Contains(s.claims.Roles, entity.RoleAdmin) || slices.Contains(s.claims.Roles, "ADMIN"))
}

func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.claims = Claims{}
}
