package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/Rakhulsr/go-blog/app/helpers"
	"github.com/Rakhulsr/go-blog/app/repositories"
	"github.com/Rakhulsr/go-blog/app/utils/sessions"
	"github.com/sirupsen/logrus"
)

// AuthMiddleware resolves the session's user id and puts the user into the
// request context. A session pointing at a vanished user is cleared.
func AuthMiddleware(store sessions.SessionStore, userRepo repositories.UserRepositoryImpl, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := store.GetUserID(r)
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := userRepo.FindByID(r.Context(), userID)
			if err != nil {
				log.WithError(err).WithField("user_id", userID).Error("AuthMiddleware: failed to load session user")
				next.ServeHTTP(w, r)
				return
			}
			if user == nil {
				log.WithField("user_id", userID).Warn("AuthMiddleware: session user no longer exists")
				if err := store.ClearSession(w, r); err != nil {
					log.WithError(err).Error("AuthMiddleware: failed to clear session")
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), helpers.ContextKeyUserID, user.ID)
			ctx = context.WithValue(ctx, helpers.ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLogin sends anonymous visitors to the login page.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if helpers.CurrentUserID(r) == "" {
			helpers.Redirect(w, r, "/login", "warning", "Please log in to access this page.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func MethodOverrideMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			override := r.Header.Get("X-HTTP-Method-Override")
			if override == "" && isURLEncodedForm(r) {
				_ = r.ParseForm()
				override = r.PostForm.Get("_method")
			}
			switch strings.ToUpper(override) {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = strings.ToUpper(override)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Multipart bodies are left for the handler to parse with its own size limit.
func isURLEncodedForm(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}
