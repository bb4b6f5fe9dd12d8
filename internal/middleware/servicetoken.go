package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ServiceToken guards the /internal routes peers call for lookups. Callers
// present "Authorization: Bearer <token>" and the token is checked against
// a bcrypt hash. Once a token has matched it is remembered so later
// requests skip the bcrypt cost.
type ServiceToken struct {
	hash   []byte
	logger *slog.Logger

	mu       sync.RWMutex
	verified []byte
}

// NewServiceToken returns a guard for hash. An empty hash disables the
// check.
func NewServiceToken(hash string, logger *slog.Logger) *ServiceToken {
	return &ServiceToken{hash: []byte(hash), logger: logger}
}

func (s *ServiceToken) valid(token string) bool {
	t := []byte(token)

	s.mu.RLock()
	verified := s.verified
	s.mu.RUnlock()
	if verified != nil && subtle.ConstantTimeCompare(verified, t) == 1 {
		return true
	}

	if bcrypt.CompareHashAndPassword(s.hash, t) != nil {
		return false
	}
	s.mu.Lock()
	s.verified = t
	s.mu.Unlock()
	return true
}

// Require rejects requests without a valid service token with 401.
func (s *ServiceToken) Require(next http.Handler) http.Handler {
	if len(s.hash) == 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" || !s.valid(token) {
			s.logger.Warn("rejected service request", "path", r.URL.Path, "remote", RealIP(r))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid service token"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
