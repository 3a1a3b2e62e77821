package site

import (
	"context"
	"net/http"

	"inkwell/database"
)

const sessionTokenCookieName = "session_token"

// WithViewer resolves the session cookie to a user and stores it in the
// request context. Requests without a valid session pass through
// anonymously; a stale cookie gets cleared on the way.
func (s *Site) WithViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionTokenCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, found, err := database.UserBySessionToken(s.db, cookie.Value)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		if !found {
			http.SetCookie(w, &http.Cookie{
				Name:   sessionTokenCookieName,
				Value:  "",
				Path:   "/",
				MaxAge: -1,
			})
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), viewerContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireViewer redirects anonymous requests to the sign-in page.
// Authorization (ownership) is checked later by the handlers themselves;
// this middleware only guarantees there is someone to check against.
func (s *Site) RequireViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Viewer(r) == nil {
			http.Redirect(w, r, "/signin", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
