// internal/api/middleware.go
package api

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"

	"audit-dashboard/internal/ratelimit"
)

// requireBearer rejects requests whose Authorization header does not carry
// the configured shared secret. No detail beyond "unauthorized" leaks out.
func requireBearer(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				respondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			got := strings.TrimPrefix(auth, "Bearer ")
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				respondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimit applies the process-wide fixed-window limiter keyed by client IP.
// Relies on middleware.RealIP having rewritten RemoteAddr; after that rewrite
// the value may be a bare IP with no port, including bare IPv6.
func rateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if host, _, err := net.SplitHostPort(ip); err == nil {
				ip = host
			}
			if !limiter.Allow(ip) {
				respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
