// Package identity provides anonymous per-device learner identity.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/aztecedu/pathway-advisor/internal/store"
)

const (
	// AnonCookieName carries the anonymous learner ID between requests.
	AnonCookieName   = "advisor_anon_id"
	anonCookieMaxAge = 180 * 24 * time.Hour
)

type contextKey int

const learnerIDKey contextKey = iota

var anonIDPattern = regexp.MustCompile(`^anon_[a-f0-9]{32}$`)

// WithLearnerID returns a context carrying the learner ID.
func WithLearnerID(ctx context.Context, learnerID string) context.Context {
	return context.WithValue(ctx, learnerIDKey, learnerID)
}

// LearnerIDFromContext extracts the learner ID from the request context.
func LearnerIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(learnerIDKey).(string); ok {
		return v
	}
	return ""
}

// Middleware assigns an anonymous learner ID via cookie, creating the
// learner's default preferences row on first sight. No account or auth is
// involved; the ID only keys conversation history and preferences.
func Middleware(repo store.Repository, isDevelopment bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			learnerID := ""
			if c, err := r.Cookie(AnonCookieName); err == nil && anonIDPattern.MatchString(c.Value) {
				learnerID = c.Value
			}

			if learnerID == "" {
				learnerID = newAnonID()
				http.SetCookie(w, &http.Cookie{
					Name:     AnonCookieName,
					Value:    learnerID,
					Path:     "/",
					MaxAge:   int(anonCookieMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   !isDevelopment,
					SameSite: http.SameSiteLaxMode,
				})
			}

			if repo != nil {
				if _, err := repo.GetOrCreatePreferences(r.Context(), learnerID); err != nil {
					slog.Warn("failed to ensure learner preferences", "learner_id", learnerID, "error", err)
				}
			}

			next.ServeHTTP(w, r.WithContext(WithLearnerID(r.Context(), learnerID)))
		})
	}
}

func newAnonID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is unrecoverable for ID generation.
		panic("identity: failed to read random bytes: " + err.Error())
	}
	return "anon_" + hex.EncodeToString(buf)
}
