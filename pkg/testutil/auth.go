package testutil

import (
	"crypto/subtle"
	"net/http"
)

// HeaderAPIKey mirrors the header the identity provider authenticates admin
// calls with.
const HeaderAPIKey = "X-API-KEY"

// Option configures a FakeIdP.
type Option func(f *FakeIdP)

// WithAPIKey makes the fake answer 401 to every request whose X-API-KEY
// header does not equal key, the way the real server guards admin routes.
func WithAPIKey(key string) Option {
	return func(f *FakeIdP) {
		f.Router.Use(requireAPIKey(key))
	}
}

func requireAPIKey(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(HeaderAPIKey)
			if subtle.ConstantTimeCompare([]byte(key), []byte(expected)) != 1 {
				WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "You are not signed in"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
