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
	"gorm.io/gorm"
)

type PostInput struct {
	Title       string `validate:"required,min=3,max=100"`
	Content     string `validate:"required,min=10"`
	Image       string `validate:"omitempty,max=2048"`
	CategoryIDs []string
}

func (in *PostInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Image = strings.TrimSpace(in.Image)
}

type PostService struct {
	posts      repositories.PostRepositoryImpl
	categories repositories.CategoryRepositoryImpl
	validator  *validator.Validate
	log        *logrus.Logger
}

func NewPostService(posts repositories.PostRepositoryImpl, categories repositories.CategoryRepositoryImpl, log *logrus.Logger) *PostService {
	return &PostService{
		posts:      posts,
		categories: categories,
		validator:  newValidator(),
		log:        log,
	}
}

func (s *PostService) CreatePost(ctx context.Context, actorID string, input PostInput) (*models.Post, error) {
	input.normalize()
	if err := validate(s.validator, &input); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:   input.Title,
		Content: input.Content,
		Image:   input.Image,
		UserID:  actorID,
	}
	if err := s.posts.Create(ctx, post, input.CategoryIDs); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"post_id": post.ID, "user_id": actorID, "categories": len(post.Categories)}).Info("post created")
	return post, nil
}

// Get returns the post with its owner and categories.
func (s *PostService) Get(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post %s: %w", postID, err)
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
	}
	return post, nil
}

// GetForEdit loads the post only when actorID may mutate it.
func (s *PostService) GetForEdit(ctx context.Context, actorID, postID string) (*models.Post, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !CanMutate(post, actorID) {
		return nil, fmt.Errorf("%w: post %s", ErrPermissionDenied, postID)
	}
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, actorID, postID string, input PostInput) (*models.Post, error) {
	post, err := s.GetForEdit(ctx, actorID, postID)
	if err != nil {
		return nil, err
	}

	input.normalize()
	if err := validate(s.validator, &input); err != nil {
		return nil, err
	}

	post.Title = input.Title
	post.Content = input.Content
	post.Image = input.Image
	if err := s.posts.Update(ctx, post, input.CategoryIDs); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"post_id": post.ID, "user_id": actorID}).Info("post updated")
	return post, nil
}

// SetCategories replaces the post's categories with the ids that resolve.
func (s *PostService) SetCategories(ctx context.Context, actorID, postID string, categoryIDs []string) ([]models.Category, error) {
	if _, err := s.GetForEdit(ctx, actorID, postID); err != nil {
		return nil, err
	}
	categories, err := s.posts.SetCategories(ctx, postID, categoryIDs)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
		}
		return nil, err
	}
	return categories, nil
}

// DeletePost removes the post, all of its comments and its category links.
func (s *PostService) DeletePost(ctx context.Context, actorID, postID string) error {
	if _, err := s.GetForEdit(ctx, actorID, postID); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: post %s", ErrNotFound, postID)
		}
		return err
	}
	s.log.WithFields(logrus.Fields{"post_id": postID, "user_id": actorID}).Info("post deleted")
	return nil
}

// ListFeed returns posts written by anyone but userID, newest first.
func (s *PostService) ListFeed(ctx context.Context, userID string) ([]models.Post, error) {
	return s.posts.ListExcludingUser(ctx, userID)
}

func (s *PostService) ListOthers(ctx context.Context, userID string) ([]models.Post, error) {
	return s.ListFeed(ctx, userID)
}

func (s *PostService) ListByOwner(ctx context.Context, userID string) ([]models.Post, error) {
	return s.posts.ListByUser(ctx, userID)
}

func (s *PostService) ListByCategory(ctx context.Context, slug string) (*models.Category, []models.Post, error) {
	category, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if category == nil {
		return nil, nil, fmt.Errorf("%w: category %s", ErrNotFound, slug)
	}
	posts, err := s.posts.ListByCategorySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	return category, posts, nil
}

func (s *PostService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categories.GetAll(ctx)
}
