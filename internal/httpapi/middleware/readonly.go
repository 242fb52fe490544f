package middleware

import "net/http"

// ReadOnly blocks every request passed through it with a fixed
// "operation disabled" error. Mount it on the mutating routes of a
// deployment that should only serve status, stats and log reads.
func ReadOnly(enabled bool) func(http.Handler) http.Handler {
	if !enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"operation disabled"}`))
		})
	}
}
