package handlers

import (
	"errors"
	"net/http"

	"github.com/Rakhulsr/go-blog/app/helpers"
	"github.com/Rakhulsr/go-blog/app/services"
	"github.com/sirupsen/logrus"
	"github.com/unrolled/render"
)

// renderError renders the shared error page for status.
func renderError(rnd *render.Render, w http.ResponseWriter, r *http.Request, status int, message string) {
	data := helpers.GetBaseData(r, map[string]interface{}{
		"Title":      http.StatusText(status),
		"StatusCode": status,
		"ErrorText":  message,
	})
	_ = rnd.HTML(w, status, "errors/error", data)
}

// handleServiceError maps the service sentinels onto a response. Validation
// errors are expected to be handled by the caller before reaching here.
func handleServiceError(rnd *render.Render, log *logrus.Entry, w http.ResponseWriter, r *http.Request, err error, back string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		renderError(rnd, w, r, http.StatusNotFound, "The page you were looking for does not exist.")
	case errors.Is(err, services.ErrPermissionDenied):
		log.WithError(err).Warn("permission denied")
		helpers.Redirect(w, r, back, "warning", "You are not allowed to do that.")
	case errors.Is(err, services.ErrValidation):
		helpers.Redirect(w, r, back, "error", validationMessage(err))
	default:
		log.WithError(err).Error("request failed")
		renderError(rnd, w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}

func validationMessage(err error) string {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		for _, msg := range verr.Fields {
			return msg
		}
	}
	return "The submitted data is not valid."
}

func validationFields(err error) map[string]string {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return map[string]string{"form": validationMessage(err)}
}

func NotFoundHandler(rnd *render.Render) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		renderError(rnd, w, r, http.StatusNotFound, "The page you were looking for does not exist.")
	})
}
