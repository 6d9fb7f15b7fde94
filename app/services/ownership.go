package services

import "github.com/Rakhulsr/go-blog/app/models"

// CanMutate reports whether actorID owns the post. There is no override.
func CanMutate(post *models.Post, actorID string) bool {
	return post != nil && actorID != "" && post.UserID == actorID
}

// CanDeleteComment allows the comment's author and the owner of its post.
func CanDeleteComment(comment *models.Comment, post *models.Post, actorID string) bool {
	if comment == nil || actorID == "" {
		return false
	}
	return comment.UserID == actorID || CanMutate(post, actorID)
}
