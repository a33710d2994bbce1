package middleware

import (
	"context"
	"net/http"

	"github.com/AdamBeresnev/tablecup/internal/httputil"
	"github.com/alexedwards/scs/v2"
)

// AdminSessionKey marks a session that logged in with the admin password.
const AdminSessionKey = "admin"

// RequireAdmin rejects requests whose session is not an admin session. It
// must run inside the session manager's LoadAndSave.
func RequireAdmin(sessionManager *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAdmin(r.Context(), sessionManager) {
				httputil.Unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func IsAdmin(ctx context.Context, sessionManager *scs.SessionManager) bool {
	return sessionManager.GetBool(ctx, AdminSessionKey)
}

// Login renews the session token before granting admin rights.
func Login(ctx context.Context, sessionManager *scs.SessionManager) error {
	if err := sessionManager.RenewToken(ctx); err != nil {
		return err
	}
	sessionManager.Put(ctx, AdminSessionKey, true)
	return nil
}

func Logout(ctx context.Context, sessionManager *scs.SessionManager) error {
	return sessionManager.Destroy(ctx)
}
