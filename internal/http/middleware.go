package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"kasirpos/internal/auth"
	"kasirpos/internal/core"
	applog "kasirpos/internal/log"
)

type contextKey string

const sessionContextKey contextKey = "session"

// sessionFrom returns the authenticated session stored by the auth
// middleware. The zero session means the request was unauthenticated.
func sessionFrom(ctx context.Context) auth.Session {
	s, _ := ctx.Value(sessionContextKey).(auth.Session)
	return s
}

// public applies rate limiting and request logging only.
func (s *Server) public(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		if !s.rateLimiter.allow(clientIP) {
			applog.FromContext(r.Context()).
				WithComponent(applog.ComponentRateLimit).
				Warn("Rate limit exceeded",
					applog.FieldClientIP, clientIP,
					applog.FieldPath, r.URL.Path)
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		s.httpLog.LogHTTPStart(r.Context(), r, clientIP)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		s.httpLog.LogHTTPEnd(r.Context(), r, rec.status, time.Since(start).Milliseconds(), clientIP)
	}
}

// authed additionally requires a valid bearer token.
func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return s.public(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.bearerSession(r)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), sessionContextKey, session)))
	})
}

// admin requires a valid session with the admin role.
func (s *Server) admin(next http.HandlerFunc) http.HandlerFunc {
	return s.authed(func(w http.ResponseWriter, r *http.Request) {
		if sessionFrom(r.Context()).Role != core.RoleAdmin {
			respondError(w, http.StatusForbidden, "admin access required")
			return
		}
		next(w, r)
	})
}

func (s *Server) bearerSession(r *http.Request) (auth.Session, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return auth.Session{}, auth.ErrInvalidSession
	}
	return s.sessions.Validate(token)
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
