// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-certregistry.
//
// go-certregistry is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package rest

import (
	"context"
	"net/http"
	"strings"
	"time"
)

type contextKey string

// principalKey carries the authenticated caller identity through the
// request context.
const principalKey contextKey = "principal"

// PrincipalHeader is the header consulted for the caller identity when API
// key authentication is disabled. Development use only.
const PrincipalHeader = "X-Registry-Principal"

// APIKeyHeader is the header carrying the caller's API key.
const APIKeyHeader = "X-API-Key"

// WithPrincipal returns a context carrying the caller identity.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// GetPrincipal returns the caller identity from the context, or the empty
// string if none was resolved.
func GetPrincipal(ctx context.Context) string {
	principal, _ := ctx.Value(principalKey).(string)
	return principal
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

// newResponseWriter creates a new responseWriter.
func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

// Write ensures WriteHeader is called.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// LoggingMiddleware logs HTTP requests using the configured logger.
func (s *Server) LoggingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			principal := GetPrincipal(r.Context())
			if principal == "" {
				principal = "anonymous"
			}

			s.logger.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration", time.Since(start).String(),
				"principal", principal)
		})
	}
}

// RecoveryMiddleware recovers from panics and returns a 500 error.
func (s *Server) RecoveryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					s.logger.Errorf("panic recovered: method=%s path=%s error=%v",
						r.Method, r.URL.Path, err)
					writeErrorWithMessage(w, ErrInternalError,
						"An unexpected error occurred", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware adds CORS headers to responses.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+APIKeyHeader+", "+PrincipalHeader)
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// AuthenticationMiddleware resolves the caller identity for API routes.
//
// When API keys are configured, the request must present a valid key via
// the X-API-Key header or an Authorization Bearer token, and the principal
// is the subject registered for that key. With no API keys configured,
// the principal is taken from the X-Registry-Principal header unverified.
//
// This resolves identity only. Role checks happen inside the registry,
// which evaluates the caller against stored role assignments on every
// mutating operation.
func (s *Server) AuthenticationMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var principal string

			if len(s.apiKeys) > 0 {
				key := r.Header.Get(APIKeyHeader)
				if key == "" {
					if bearer := r.Header.Get("Authorization"); strings.HasPrefix(bearer, "Bearer ") {
						key = strings.TrimPrefix(bearer, "Bearer ")
					}
				}

				subject, ok := s.apiKeys[key]
				if key == "" || !ok {
					s.logger.Warn("authentication failed",
						"method", r.Method,
						"path", r.URL.Path,
						"remote_addr", r.RemoteAddr)
					writeErrorWithMessage(w, ErrUnauthorized,
						"Authentication failed", http.StatusUnauthorized)
					return
				}
				principal = subject
			} else {
				principal = r.Header.Get(PrincipalHeader)
			}

			ctx := WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
