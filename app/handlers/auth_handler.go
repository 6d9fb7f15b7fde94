package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Rakhulsr/go-blog/app/helpers"
	"github.com/Rakhulsr/go-blog/app/services"
	"github.com/Rakhulsr/go-blog/app/utils/breadcrumb"
	"github.com/Rakhulsr/go-blog/app/utils/sessions"
	"github.com/sirupsen/logrus"
	"github.com/unrolled/render"
)

type AuthHandler struct {
	render       *render.Render
	auth         *services.AuthService
	sessionStore sessions.SessionStore
	log          *logrus.Logger
}

func NewAuthHandler(r *render.Render, auth *services.AuthService, sessionStore sessions.SessionStore, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		render:       r,
		auth:         auth,
		sessionStore: sessionStore,
		log:          log,
	}
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, form map[string]string, errs map[string]string) {
	data := helpers.GetBaseData(r, map[string]interface{}{
		"Title":       "Login",
		"Breadcrumbs": breadcrumb.Home(breadcrumb.Breadcrumb{Name: "Login", URL: "/login"}),
		"IsAuthPage":  true,
		"Form":        form,
		"Errors":      errs,
	})
	_ = h.render.HTML(w, status, "auth/login", data)
}

func (h *AuthHandler) renderRegister(w http.ResponseWriter, r *http.Request, status int, form map[string]string, errs map[string]string) {
	data := helpers.GetBaseData(r, map[string]interface{}{
		"Title":       "Register",
		"Breadcrumbs": breadcrumb.Home(breadcrumb.Breadcrumb{Name: "Register", URL: "/register"}),
		"IsAuthPage":  true,
		"Form":        form,
		"Errors":      errs,
	})
	_ = h.render.HTML(w, status, "auth/register", data)
}

func (h *AuthHandler) LoginGetHandler(w http.ResponseWriter, r *http.Request) {
	if helpers.CurrentUserID(r) != "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, map[string]string{}, nil)
}

func (h *AuthHandler) LoginPostHandler(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("handler", "LoginPostHandler")
	if err := r.ParseForm(); err != nil {
		log.WithError(err).Warn("failed to parse form")
		helpers.Redirect(w, r, "/login", "error", "Could not read the submitted form.")
		return
	}

	input := services.LoginInput{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	user, err := h.auth.Authenticate(r.Context(), input)
	switch {
	case errors.Is(err, services.ErrNotFound):
		helpers.Redirect(w, r, "/register", "info", "No account uses that email yet. Please register.")
		return
	case errors.Is(err, services.ErrInvalidCredentials):
		h.renderLogin(w, r, http.StatusUnauthorized, map[string]string{"email": input.Email}, map[string]string{"form": "Login failed. Check your email and password."})
		return
	case errors.Is(err, services.ErrValidation):
		h.renderLogin(w, r, http.StatusUnprocessableEntity, map[string]string{"email": input.Email}, validationFields(err))
		return
	case err != nil:
		handleServiceError(h.render, log, w, r, err, "/login")
		return
	}

	if err := h.sessionStore.SetUserID(w, r, user.ID); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Error("failed to save session")
		helpers.Redirect(w, r, "/login", "error", "Could not start your session.")
		return
	}

	log.WithField("user_id", user.ID).Info("user logged in")
	helpers.Redirect(w, r, "/", "success", fmt.Sprintf("Welcome back, %s!", user.Username))
}

func (h *AuthHandler) RegisterGetHandler(w http.ResponseWriter, r *http.Request) {
	if helpers.CurrentUserID(r) != "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderRegister(w, r, http.StatusOK, map[string]string{}, nil)
}

func (h *AuthHandler) RegisterPostHandler(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("handler", "RegisterPostHandler")
	if err := r.ParseForm(); err != nil {
		log.WithError(err).Warn("failed to parse form")
		helpers.Redirect(w, r, "/register", "error", "Could not read the submitted form.")
		return
	}

	input := services.RegisterInput{
		Username:        r.PostFormValue("username"),
		FullName:        r.PostFormValue("fullname"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
	form := map[string]string{"username": input.Username, "fullname": input.FullName, "email": input.Email}

	user, err := h.auth.Register(r.Context(), input)
	switch {
	case errors.Is(err, services.ErrConflict):
		helpers.Redirect(w, r, "/register", "error", "That username or email is already taken.")
		return
	case errors.Is(err, services.ErrValidation):
		h.renderRegister(w, r, http.StatusUnprocessableEntity, form, validationFields(err))
		return
	case err != nil:
		handleServiceError(h.render, log, w, r, err, "/register")
		return
	}

	log.WithField("user_id", user.ID).Info("registration complete")
	helpers.Redirect(w, r, "/login", "success", "Your account has been created. You can now log in.")
}

func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionStore.ClearSession(w, r); err != nil {
		h.log.WithError(err).WithField("handler", "LogoutHandler").Error("failed to clear session")
	}
	helpers.Redirect(w, r, "/login", "success", "You have been logged out.")
}
