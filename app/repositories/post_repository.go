package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rakhulsr/go-blog/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepositoryImpl interface {
	Create(ctx context.Context, post *models.Post, categoryIDs []string) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Update(ctx context.Context, post *models.Post, categoryIDs []string) error
	SetCategories(ctx context.Context, postID string, categoryIDs []string) ([]models.Category, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]models.Post, error)
	ListExcludingUser(ctx context.Context, userID string) ([]models.Post, error)
	ListByCategorySlug(ctx context.Context, slug string) ([]models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepositoryImpl {
	return &postRepository{db: db}
}

// Create inserts the post and links the resolvable categories in one transaction.
func (r *postRepository) Create(ctx context.Context, post *models.Post, categoryIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		categories, err := replaceCategories(tx, post, categoryIDs)
		if err != nil {
			return err
		}
		post.Categories = categories
		return nil
	})
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Update writes title, content and image and replaces the category set. The owner
// column is never part of the update.
func (r *postRepository) Update(ctx context.Context, post *models.Post, categoryIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"title":      post.Title,
			"content":    post.Content,
			"image":      post.Image,
			"updated_at": time.Now(),
		}
		result := tx.Model(&models.Post{}).Where("id = ?", post.ID).Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update post %s: %w", post.ID, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		categories, err := replaceCategories(tx, post, categoryIDs)
		if err != nil {
			return err
		}
		post.Categories = categories
		return nil
	})
}

func (r *postRepository) SetCategories(ctx context.Context, postID string, categoryIDs []string) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		var err error
		categories, err = replaceCategories(tx, &models.Post{ID: postID}, categoryIDs)
		return err
	})
	return categories, err
}

// replaceCategories makes the post's category set exactly the resolvable ids.
func replaceCategories(tx *gorm.DB, post *models.Post, categoryIDs []string) ([]models.Category, error) {
	categories, err := resolveCategories(tx, categoryIDs)
	if err != nil {
		return nil, err
	}
	association := tx.Model(&models.Post{ID: post.ID}).Association("Categories")
	if len(categories) == 0 {
		err = association.Clear()
	} else {
		err = association.Replace(categories)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set categories of post %s: %w", post.ID, err)
	}
	return categories, nil
}

// Delete removes the post together with its comments and category links.
func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := deleteCommentsOfPost(tx, id); err != nil {
			return fmt.Errorf("failed to delete comments of post %s: %w", id, err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostCategory{}).Error; err != nil {
			return fmt.Errorf("failed to unlink categories of post %s: %w", id, err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Post{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete post %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *postRepository) ListByUser(ctx context.Context, userID string) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Categories").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListExcludingUser(ctx context.Context, userID string) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Categories").
		Where("user_id <> ?", userID).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByCategorySlug(ctx context.Context, slug string) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Joins("JOIN post_categories pc ON pc.post_id = posts.id").
		Joins("JOIN categories c ON c.id = pc.category_id").
		Where("c.slug = ?", slug).
		Preload("User").
		Preload("Categories").
		Order("posts.created_at DESC").
		Find(&posts).Error
	return posts, err
}
