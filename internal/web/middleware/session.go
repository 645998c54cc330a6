package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/nonfiler/internal/core"
	"github.com/JonMunkholm/nonfiler/internal/logging"
)

// SessionSource looks up and creates visitor sessions.
type SessionSource interface {
	Session(id uuid.UUID) (*core.Session, bool)
	NewSession() *core.Session
}

// CookieOptions configures the session cookie.
type CookieOptions struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// Session resolves the visitor's session from its cookie, creating a new one
// when the cookie is missing, malformed or refers to an expired session.
// The session is stored in the request context for handlers and logging.
func Session(src SessionSource, opts CookieOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *core.Session

			if c, err := r.Cookie(opts.Name); err == nil {
				if id, err := uuid.Parse(c.Value); err == nil {
					sess, _ = src.Session(id)
				}
			}
			if sess == nil {
				sess = src.NewSession()
				logging.FromContext(r.Context()).Debug("session created", "session_id", sess.ID.String())
			}

			// Refresh on every request so the browser expiry tracks the idle TTL.
			http.SetCookie(w, &http.Cookie{
				Name:     opts.Name,
				Value:    sess.ID.String(),
				Path:     "/",
				MaxAge:   int(opts.TTL.Seconds()),
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := core.ContextWithSession(r.Context(), sess)
			ctx = logging.ContextWithSessionID(ctx, sess.ID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
