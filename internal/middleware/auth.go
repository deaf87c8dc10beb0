package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dukerupert/familypulse/internal/auth"
	"github.com/dukerupert/familypulse/internal/store"
)

// RequireUser resolves the caller from the X-User-ID header set by the
// identity proxy in front of this service, and puts the user and family IDs
// on the request context. Requests without a resolvable user get 401.
func RequireUser(families *store.FamilyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
			if userID == "" {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			user, err := families.GetUser(userID)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if user == nil {
				http.Error(w, "unknown user", http.StatusUnauthorized)
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{
				UserID:   user.ID,
				FamilyID: user.FamilyID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSecret guards machine endpoints (cron triggers, internal senders)
// with a static bearer token. An empty configured secret disables the
// endpoint entirely rather than leaving it open.
func RequireSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "endpoint not configured", http.StatusServiceUnavailable)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
