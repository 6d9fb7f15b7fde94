package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Rakhulsr/go-blog/app/helpers"
	"github.com/Rakhulsr/go-blog/app/models"
	"github.com/Rakhulsr/go-blog/app/services"
	"github.com/Rakhulsr/go-blog/app/utils/breadcrumb"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/unrolled/render"
)

type PostHandler struct {
	render   *render.Render
	posts    *services.PostService
	comments *services.CommentService
	log      *logrus.Logger
}

func NewPostHandler(r *render.Render, posts *services.PostService, comments *services.CommentService, log *logrus.Logger) *PostHandler {
	return &PostHandler{
		render:   r,
		posts:    posts,
		comments: comments,
		log:      log,
	}
}

func postInputFromForm(r *http.Request) services.PostInput {
	return services.PostInput{
		Title:       r.PostFormValue("title"),
		Content:     r.PostFormValue("content"),
		Image:       r.PostFormValue("image"),
		CategoryIDs: r.PostForm["categories"],
	}
}

func (h *PostHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, title, action string, input services.PostInput, errs map[string]string) {
	categories, err := h.posts.Categories(r.Context())
	if err != nil {
		h.log.WithError(err).Error("failed to load categories")
		renderError(h.render, w, r, http.StatusInternalServerError, "Could not load categories.")
		return
	}

	data := helpers.GetBaseData(r, map[string]interface{}{
		"Title":       title,
		"Breadcrumbs": breadcrumb.Home(breadcrumb.Breadcrumb{Name: title, URL: action}),
		"Action":      action,
		"Form":        input,
		"Categories":  categories,
		"Errors":      errs,
	})
	_ = h.render.HTML(w, status, "posts/form", data)
}

func (h *PostHandler) CreateGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, "New Post", "/create", services.PostInput{}, nil)
}

func (h *PostHandler) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	userID := helpers.CurrentUserID(r)
	log := h.log.WithFields(logrus.Fields{"handler": "CreatePostHandler", "user_id": userID})
	if err := r.ParseForm(); err != nil {
		helpers.Redirect(w, r, "/create", "error", "Could not read the submitted form.")
		return
	}

	input := postInputFromForm(r)
	post, err := h.posts.CreatePost(r.Context(), userID, input)
	if errors.Is(err, services.ErrValidation) {
		h.renderForm(w, r, http.StatusUnprocessableEntity, "New Post", "/create", input, validationFields(err))
		return
	}
	if err != nil {
		handleServiceError(h.render, log, w, r, err, "/create")
		return
	}

	helpers.Redirect(w, r, "/post/"+post.ID, "success", "Your post has been published.")
}

func (h *PostHandler) EditGetHandler(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]
	userID := helpers.CurrentUserID(r)
	log := h.log.WithFields(logrus.Fields{"handler": "EditGetHandler", "user_id": userID, "post_id": postID})

	post, err := h.posts.GetForEdit(r.Context(), userID, postID)
	if err != nil {
		handleServiceError(h.render, log, w, r, err, "/post/"+postID)
		return
	}

	input := services.PostInput{
		Title:       post.Title,
		Content:     post.Content,
		Image:       post.Image,
		CategoryIDs: post.CategoryIDs(),
	}
	h.renderForm(w, r, http.StatusOK, "Edit Post", "/edit/"+post.ID, input, nil)
}

func (h *PostHandler) EditPostHandler(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]
	userID := helpers.CurrentUserID(r)
	log := h.log.WithFields(logrus.Fields{"handler": "EditPostHandler", "user_id": userID, "post_id": postID})
	if err := r.ParseForm(); err != nil {
		helpers.Redirect(w, r, "/edit/"+postID, "error", "Could not read the submitted form.")
		return
	}

	input := postInputFromForm(r)
	_, err := h.posts.UpdatePost(r.Context(), userID, postID, input)
	if errors.Is(err, services.ErrValidation) {
		h.renderForm(w, r, http.StatusUnprocessableEntity, "Edit Post", "/edit/"+postID, input, validationFields(err))
		return
	}
	if err != nil {
		handleServiceError(h.render, log, w, r, err, "/post/"+postID)
		return
	}

	helpers.Redirect(w, r, "/post/"+postID, "success", "Your post has been updated.")
}

func (h *PostHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]
	userID := helpers.CurrentUserID(r)
	log := h.log.WithFields(logrus.Fields{"handler": "DeleteHandler", "user_id": userID, "post_id": postID})

	if err := h.posts.DeletePost(r.Context(), userID, postID); err != nil {
		handleServiceError(h.render, log, w, r, err, "/post/"+postID)
		return
	}
	helpers.Redirect(w, r, "/profile", "success", "Your post has been deleted.")
}

func (h *PostHandler) renderShow(w http.ResponseWriter, r *http.Request, status int, post *models.Post, errs map[string]string) {
	userID := helpers.CurrentUserID(r)
	thread, err := h.comments.Thread(r.Context(), post.ID)
	if err != nil {
		h.log.WithError(err).WithField("post_id", post.ID).Error("failed to load comments")
		renderError(h.render, w, r, http.StatusInternalServerError, "Could not load comments.")
		return
	}

	data := helpers.GetBaseData(r, map[string]interface{}{
		"Title":       post.Title,
		"Breadcrumbs": breadcrumb.Home(breadcrumb.Breadcrumb{Name: post.Title, URL: "/post/" + post.ID}),
		"Post":        post,
		"Thread":      thread,
		"CanEdit":     services.CanMutate(post, userID),
		"Errors":      errs,
	})
	_ = h.render.HTML(w, status, "posts/show", data)
}

func (h *PostHandler) ShowHandler(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]
	post, err := h.posts.Get(r.Context(), postID)
	if err != nil {
		handleServiceError(h.render, h.log.WithFields(logrus.Fields{"handler": "ShowHandler", "post_id": postID}), w, r, err, "/")
		return
	}
	h.renderShow(w, r, http.StatusOK, post, nil)
}

// CommentHandler adds a top-level comment from the form under the post.
func (h *PostHandler) CommentHandler(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]
	userID := helpers.CurrentUserID(r)
	log := h.log.WithFields(logrus.Fields{"handler": "CommentHandler", "user_id": userID, "post_id": postID})
	if err := r.ParseForm(); err != nil {
		helpers.Redirect(w, r, "/post/"+postID, "error", "Could not read the submitted form.")
		return
	}

	comment, err := h.comments.AddTopLevelComment(r.Context(), postID, userID, r.PostFormValue("text"))
	if err != nil {
		handleServiceError(h.render, log, w, r, err, "/post/"+postID)
		return
	}
	helpers.Redirect(w, r, fmt.Sprintf("/post/%s#comment-%s", postID, comment.ID), "success", "Comment added.")
}

func (h *PostHandler) ReplyHandler(w http.ResponseWriter, r *http.Request) {
	parentID := mux.Vars(r)["id"]
	userID := helpers.CurrentUserID(r)
	log := h.log.WithFields(logrus.Fields{"handler": "ReplyHandler", "user_id": userID, "comment_id": parentID})
	if err := r.ParseForm(); err != nil {
		helpers.Redirect(w, r, "/", "error", "Could not read the submitted form.")
		return
	}

	back := "/"
	if parent, err := h.comments.Get(r.Context(), parentID); err == nil {
		back = "/post/" + parent.PostID
	}

	reply, err := h.comments.AddReply(r.Context(), parentID, userID, r.PostFormValue("text"))
	if err != nil {
		handleServiceError(h.render, log, w, r, err, back)
		return
	}
	helpers.Redirect(w, r, fmt.Sprintf("/post/%s#comment-%s", reply.PostID, reply.ID), "success", "Reply added.")
}

func (h *PostHandler) DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	commentID := mux.Vars(r)["id"]
	userID := helpers.CurrentUserID(r)
	log := h.log.WithFields(logrus.Fields{"handler": "DeleteCommentHandler", "user_id": userID, "comment_id": commentID})

	comment, _, err := h.comments.DeleteSubtree(r.Context(), userID, commentID)
	if err != nil {
		back := "/"
		if comment != nil {
			back = "/post/" + comment.PostID
		}
		handleServiceError(h.render, log, w, r, err, back)
		return
	}
	helpers.Redirect(w, r, "/post/"+comment.PostID, "success", "Comment deleted.")
}
