package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/chainspect/chainspect/internal/config"
)

// RequireAPIKey wraps next with API-key authentication per the service auth
// configuration. With mode "none" (or an empty expected key, which would
// otherwise lock everyone out) requests pass through unchanged.
func RequireAPIKey(auth config.AuthConfig, next http.Handler) http.Handler {
	if auth.Mode != "apikey" {
		return next
	}
	expected := auth.Key()
	if expected == "" {
		slog.Warn("api: auth mode apikey but key env is empty, auth disabled",
			"key_env", auth.KeyEnv)
		return next
	}
	header := auth.EffectiveHeader()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(header)
		if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			jsonErr(w, http.StatusUnauthorized, "invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}
