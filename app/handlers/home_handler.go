package handlers

import (
	"net/http"

	"github.com/Rakhulsr/go-blog/app/helpers"
	"github.com/Rakhulsr/go-blog/app/services"
	"github.com/Rakhulsr/go-blog/app/utils/breadcrumb"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/unrolled/render"
)

type HomeHandler struct {
	render *render.Render
	posts  *services.PostService
	log    *logrus.Logger
}

func NewHomeHandler(r *render.Render, posts *services.PostService, log *logrus.Logger) *HomeHandler {
	return &HomeHandler{render: r, posts: posts, log: log}
}

// Home lists what everyone else has written, newest first.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.listOthers(w, r, "home", "Home", nil)
}

func (h *HomeHandler) Blogs(w http.ResponseWriter, r *http.Request) {
	h.listOthers(w, r, "blogs", "Blogs", breadcrumb.Home(breadcrumb.Breadcrumb{Name: "Blogs", URL: "/blogs"}))
}

func (h *HomeHandler) listOthers(w http.ResponseWriter, r *http.Request, tmpl, title string, crumbs []breadcrumb.Breadcrumb) {
	userID := helpers.CurrentUserID(r)
	posts, err := h.posts.ListOthers(r.Context(), userID)
	if err != nil {
		handleServiceError(h.render, h.log.WithFields(logrus.Fields{"handler": tmpl, "user_id": userID}), w, r, err, "/")
		return
	}
	categories, err := h.posts.Categories(r.Context())
	if err != nil {
		handleServiceError(h.render, h.log.WithField("handler", tmpl), w, r, err, "/")
		return
	}

	pageData := map[string]interface{}{
		"Title":      title,
		"Posts":      posts,
		"Categories": categories,
	}
	if crumbs != nil {
		pageData["Breadcrumbs"] = crumbs
	}
	_ = h.render.HTML(w, http.StatusOK, tmpl, helpers.GetBaseData(r, pageData))
}

func (h *HomeHandler) Category(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	category, posts, err := h.posts.ListByCategory(r.Context(), slug)
	if err != nil {
		handleServiceError(h.render, h.log.WithFields(logrus.Fields{"handler": "Category", "slug": slug}), w, r, err, "/")
		return
	}
	categories, err := h.posts.Categories(r.Context())
	if err != nil {
		handleServiceError(h.render, h.log.WithField("handler", "Category"), w, r, err, "/")
		return
	}

	data := helpers.GetBaseData(r, map[string]interface{}{
		"Title":       category.Name,
		"Breadcrumbs": breadcrumb.Home(breadcrumb.Breadcrumb{Name: category.Name, URL: "/category/" + category.Slug}),
		"Category":    category,
		"Categories":  categories,
		"Posts":       posts,
	})
	_ = h.render.HTML(w, http.StatusOK, "posts/category", data)
}
