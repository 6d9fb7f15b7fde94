package handlers

import (
	"errors"
	"net/http"

	"github.com/Rakhulsr/go-blog/app/helpers"
	"github.com/Rakhulsr/go-blog/app/services"
	"github.com/Rakhulsr/go-blog/app/utils/breadcrumb"
	"github.com/sirupsen/logrus"
	"github.com/unrolled/render"
)

type ProfileHandler struct {
	render  *render.Render
	posts   *services.PostService
	avatars *services.AvatarService
	log     *logrus.Logger
}

func NewProfileHandler(r *render.Render, posts *services.PostService, avatars *services.AvatarService, log *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{render: r, posts: posts, avatars: avatars, log: log}
}

func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := helpers.CurrentUser(r)
	posts, err := h.posts.ListByOwner(r.Context(), user.ID)
	if err != nil {
		handleServiceError(h.render, h.log.WithFields(logrus.Fields{"handler": "Profile", "user_id": user.ID}), w, r, err, "/")
		return
	}

	data := helpers.GetBaseData(r, map[string]interface{}{
		"Title":       "Profile",
		"Breadcrumbs": breadcrumb.Home(breadcrumb.Breadcrumb{Name: "Profile", URL: "/profile"}),
		"User":        user,
		"Posts":       posts,
	})
	_ = h.render.HTML(w, http.StatusOK, "profile", data)
}

func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID := helpers.CurrentUserID(r)
	log := h.log.WithFields(logrus.Fields{"handler": "UploadAvatar", "user_id": userID})

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxAvatarSize)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			helpers.Redirect(w, r, "/profile", "error", "Avatar must be at most 5 MB.")
			return
		}
		log.WithError(err).Warn("failed to parse upload")
		helpers.Redirect(w, r, "/profile", "error", "No file part.")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("avatar")
	if err != nil {
		helpers.Redirect(w, r, "/profile", "error", "No file part.")
		return
	}
	defer file.Close()

	if _, err := h.avatars.UploadAvatar(r.Context(), userID, header.Filename, file); err != nil {
		handleServiceError(h.render, log, w, r, err, "/profile")
		return
	}
	helpers.Redirect(w, r, "/profile", "success", "Avatar updated.")
}
