package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rakhulsr/go-blog/app/models"
	"github.com/Rakhulsr/go-blog/app/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type CommentInput struct {
	Text string `validate:"required"`
}

// CommentNode is a comment with its replies, rebuilt from the flat table.
type CommentNode struct {
	models.Comment
	Replies []*CommentNode
}

type CommentService struct {
	comments  repositories.CommentRepositoryImpl
	posts     repositories.PostRepositoryImpl
	validator *validator.Validate
	log       *logrus.Logger
}

func NewCommentService(comments repositories.CommentRepositoryImpl, posts repositories.PostRepositoryImpl, log *logrus.Logger) *CommentService {
	return &CommentService{
		comments:  comments,
		posts:     posts,
		validator: newValidator(),
		log:       log,
	}
}

func (s *CommentService) validateText(text string) (string, error) {
	in := CommentInput{Text: strings.TrimSpace(text)}
	if err := validate(s.validator, &in); err != nil {
		return "", err
	}
	return in.Text, nil
}

// AddTopLevelComment attaches a parentless comment to an existing post. Any
// authenticated user may comment on any post.
func (s *CommentService) AddTopLevelComment(ctx context.Context, postID, authorID, text string) (*models.Comment, error) {
	text, err := s.validateText(text)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post %s: %w", postID, err)
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
	}

	comment := &models.Comment{Text: text, PostID: post.ID, UserID: authorID}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"comment_id": comment.ID, "post_id": post.ID, "user_id": authorID}).Info("comment added")
	return comment, nil
}

// AddReply answers parentCommentID. The reply always lands on the parent's post.
func (s *CommentService) AddReply(ctx context.Context, parentCommentID, authorID, text string) (*models.Comment, error) {
	text, err := s.validateText(text)
	if err != nil {
		return nil, err
	}

	parent, err := s.comments.GetByID(ctx, parentCommentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment %s: %w", parentCommentID, err)
	}
	if parent == nil {
		return nil, fmt.Errorf("%w: comment %s", ErrNotFound, parentCommentID)
	}

	reply := &models.Comment{
		Text:     text,
		PostID:   parent.PostID,
		UserID:   authorID,
		ParentID: &parent.ID,
	}
	if err := s.comments.Create(ctx, reply); err != nil {
		switch {
		case errors.Is(err, repositories.ErrParentNotFound):
			return nil, fmt.Errorf("%w: comment %s", ErrNotFound, parentCommentID)
		case errors.Is(err, repositories.ErrParentPostMismatch):
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"comment_id": reply.ID, "parent_id": parent.ID, "post_id": parent.PostID, "user_id": authorID}).Info("reply added")
	return reply, nil
}

func (s *CommentService) Get(ctx context.Context, commentID string) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, fmt.Errorf("%w: comment %s", ErrNotFound, commentID)
	}
	return comment, nil
}

// ListTopLevel returns the parentless comments of a post, oldest first.
func (s *CommentService) ListTopLevel(ctx context.Context, postID string) ([]models.Comment, error) {
	return s.comments.ListTopLevel(ctx, postID)
}

func (s *CommentService) Replies(ctx context.Context, commentID string) ([]models.Comment, error) {
	return s.comments.ListReplies(ctx, commentID)
}

// Thread loads a post's comments in one query and groups them by parent id.
// Comments whose parent is missing are dropped.
func (s *CommentService) Thread(ctx context.Context, postID string) ([]*CommentNode, error) {
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return BuildThread(comments), nil
}

// BuildThread turns a flat, creation-ordered slice into a forest. Sibling order is
// the input order.
func BuildThread(comments []models.Comment) []*CommentNode {
	nodes := make(map[string]*CommentNode, len(comments))
	for i := range comments {
		nodes[comments[i].ID] = &CommentNode{Comment: comments[i]}
	}

	roots := []*CommentNode{}
	for i := range comments {
		node := nodes[comments[i].ID]
		if node.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*node.ParentID]; ok {
			parent.Replies = append(parent.Replies, node)
		}
	}
	return roots
}

// DeleteSubtree removes the comment and every reply below it. Only the comment's
// author or the post owner may do so.
func (s *CommentService) DeleteSubtree(ctx context.Context, actorID, commentID string) (*models.Comment, int64, error) {
	comment, err := s.Get(ctx, commentID)
	if err != nil {
		return nil, 0, err
	}
	post, err := s.posts.GetByID(ctx, comment.PostID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load post %s: %w", comment.PostID, err)
	}
	if !CanDeleteComment(comment, post, actorID) {
		return comment, 0, fmt.Errorf("%w: comment %s", ErrPermissionDenied, commentID)
	}

	deleted, err := s.comments.DeleteSubtree(ctx, comment.ID)
	if err != nil {
		return comment, 0, err
	}
	s.log.WithFields(logrus.Fields{"comment_id": comment.ID, "post_id": comment.PostID, "user_id": actorID, "deleted": deleted}).Info("comment subtree deleted")
	return comment, deleted, nil
}
