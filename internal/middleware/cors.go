// Package middleware holds HTTP middleware shared by the API routes.
package middleware

import (
	"net/http"
	"strings"
)

// CORS answers preflight requests and sets CORS headers for allowed origins.
// An entry of "*" allows every origin without credentials.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	wildcard, explicit := parseOrigins(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			_, listed := explicit[origin]

			if origin != "" && (listed || wildcard) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				// credentials only for explicitly listed origins
				if listed {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// OriginChecker returns a websocket origin check matching the CORS policy.
// Requests without an Origin header are accepted.
func OriginChecker(allowedOrigins []string) func(*http.Request) bool {
	wildcard, explicit := parseOrigins(allowedOrigins)
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}
		_, ok := explicit[origin]
		return ok
	}
}

func parseOrigins(allowedOrigins []string) (bool, map[string]struct{}) {
	wildcard := false
	explicit := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimSpace(o)
		switch o {
		case "":
		case "*":
			wildcard = true
		default:
			explicit[strings.TrimRight(o, "/")] = struct{}{}
		}
	}
	return wildcard, explicit
}
