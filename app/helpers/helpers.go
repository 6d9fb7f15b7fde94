package helpers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Rakhulsr/go-blog/app/models"
	"github.com/Rakhulsr/go-blog/app/utils/breadcrumb"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"
	"golang.org/x/crypto/bcrypt"
)

type contextKey string

const (
	ContextKeyUserID contextKey = "userID"
	ContextKeyUser   contextKey = "userObject"
)

func CurrentUserID(r *http.Request) string {
	userID, _ := r.Context().Value(ContextKeyUserID).(string)
	return userID
}

func CurrentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(ContextKeyUser).(*models.User)
	return user
}

// GetBaseData fills the keys every layout render expects, leaving any key the
// page already set untouched.
func GetBaseData(r *http.Request, pageSpecificData map[string]interface{}) map[string]interface{} {
	if pageSpecificData == nil {
		pageSpecificData = make(map[string]interface{})
	}

	if _, exists := pageSpecificData["Title"]; !exists {
		pageSpecificData["Title"] = "Blog"
	}
	if _, exists := pageSpecificData["Breadcrumbs"]; !exists {
		pageSpecificData["Breadcrumbs"] = []breadcrumb.Breadcrumb{}
	}
	if _, exists := pageSpecificData["IsAuthPage"]; !exists {
		pageSpecificData["IsAuthPage"] = false
	}
	if _, exists := pageSpecificData["Errors"]; !exists {
		pageSpecificData["Errors"] = map[string]string{}
	}

	pageSpecificData["CSRFField"] = csrf.TemplateField(r)
	pageSpecificData["CurrentPath"] = r.URL.Path

	if user := CurrentUser(r); user != nil {
		pageSpecificData["CurrentUser"] = user
		pageSpecificData["IsLoggedIn"] = true
		pageSpecificData["UserID"] = user.ID
	} else {
		pageSpecificData["CurrentUser"] = nil
		pageSpecificData["IsLoggedIn"] = false
		pageSpecificData["UserID"] = ""
	}

	pageSpecificData["MessageStatus"] = r.URL.Query().Get("status")
	pageSpecificData["Message"] = r.URL.Query().Get("message")

	return pageSpecificData
}

// Redirect sends the user to path with a notice shown by the layout.
func Redirect(w http.ResponseWriter, r *http.Request, path, status, message string) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	target := fmt.Sprintf("%s%sstatus=%s&message=%s", path, sep, url.QueryEscape(status), url.QueryEscape(message))
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	errorMessages := make(map[string]string)
	for _, err := range errs {
		field := strings.ToLower(err.Field())
		switch err.Tag() {
		case "required":
			errorMessages[field] = fmt.Sprintf("%s is required.", err.Field())
		case "email":
			errorMessages[field] = fmt.Sprintf("%s must be a valid email address.", err.Field())
		case "min":
			errorMessages[field] = fmt.Sprintf("%s must be at least %s characters.", err.Field(), err.Param())
		case "max":
			errorMessages[field] = fmt.Sprintf("%s must be at most %s characters.", err.Field(), err.Param())
		case "eqfield":
			errorMessages[field] = fmt.Sprintf("%s must match %s.", err.Field(), err.Param())
		default:
			errorMessages[field] = fmt.Sprintf("%s failed the %s check.", err.Field(), err.Tag())
		}
	}
	return errorMessages
}

func PasswordCompare(hashPass string, password []byte) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashPass), password) == nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}
