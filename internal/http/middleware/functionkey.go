package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/haugen-io/outbind/internal/config"
	"go.uber.org/zap"
)

// FunctionKeyAuth implements the Functions HTTP auth levels. At
// "anonymous" (the default) every request passes. At
// "function" or "admin" the matching key must arrive via the
// x-functions-key header or the code query parameter, which is how the
// Functions host accepts keys.
type FunctionKeyAuth struct {
	cfg    *config.AuthConfig
	logger *zap.Logger
}

// NewFunctionKeyAuth creates the auth middleware
func NewFunctionKeyAuth(cfg *config.AuthConfig, logger *zap.Logger) *FunctionKeyAuth {
	if cfg.Level != "anonymous" && cfg.FunctionKey == "" && cfg.AdminKey == "" {
		logger.Warn("auth level requires a key but none is configured; all requests will be rejected",
			zap.String("level", cfg.Level),
		)
	}
	return &FunctionKeyAuth{cfg: cfg, logger: logger}
}

// Authenticate checks the function key when the auth level requires one
func (a *FunctionKeyAuth) Authenticate(next http.Handler) http.Handler {
	if a.cfg.Level == "anonymous" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("x-functions-key")
		if key == "" {
			key = r.URL.Query().Get("code")
		}

		if !a.keyValid(key) {
			a.logger.Warn("request rejected: invalid or missing function key",
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized","message":"A valid function key is required"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *FunctionKeyAuth) keyValid(key string) bool {
	if key == "" {
		return false
	}
	// The admin key is accepted at every level, matching host key behavior
	if a.cfg.AdminKey != "" && equal(key, a.cfg.AdminKey) {
		return true
	}
	if a.cfg.Level == "function" && a.cfg.FunctionKey != "" && equal(key, a.cfg.FunctionKey) {
		return true
	}
	return false
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
