package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rakhulsr/go-blog/app/models"
	"gorm.io/gorm"
)

var (
	ErrParentNotFound     = errors.New("parent comment not found")
	ErrParentPostMismatch = errors.New("parent comment belongs to another post")
)

type CommentRepositoryImpl interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListTopLevel(ctx context.Context, postID string) ([]models.Comment, error)
	ListReplies(ctx context.Context, commentID string) ([]models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	CountByPost(ctx context.Context, postID string) (int64, error)
	DeleteSubtree(ctx context.Context, id string) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepositoryImpl {
	return &commentRepository{db: db}
}

// Create inserts a comment. When ParentID is set the parent is re-read inside the
// transaction and must belong to comment.PostID.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if comment.ParentID != nil {
			var parent models.Comment
			if err := tx.Select("id", "post_id").First(&parent, "id = ?", *comment.ParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrParentNotFound
				}
				return err
			}
			if parent.PostID != comment.PostID {
				return ErrParentPostMismatch
			}
		}
		if err := tx.Omit("User").Create(comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		return nil
	})
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Preload("User").First(&comment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListTopLevel(ctx context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of post %s: %w", postID, err)
	}
	return comments, nil
}

func (r *commentRepository) ListReplies(ctx context.Context, commentID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("parent_id = ?", commentID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list replies of comment %s: %w", commentID, err)
	}
	return comments, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of post %s: %w", postID, err)
	}
	return comments, nil
}

func (r *commentRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// DeleteSubtree removes the comment and all of its descendants and reports how
// many rows went. A missing comment deletes nothing and returns 0.
func (r *commentRepository) DeleteSubtree(ctx context.Context, id string) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		levels, err := subtreeLevels(tx, []string{id})
		if err != nil {
			return err
		}
		deleted, err = deleteLevels(tx, levels)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete comment subtree %s: %w", id, err)
	}
	return deleted, nil
}

// subtreeLevels walks the reply relation breadth first. levels[0] holds the roots
// that exist, levels[i] the comments i replies deep.
func subtreeLevels(tx *gorm.DB, roots []string) ([][]string, error) {
	var levels [][]string
	seen := make(map[string]bool)

	var current []string
	if len(roots) > 0 {
		if err := tx.Model(&models.Comment{}).Where("id IN ?", roots).Pluck("id", &current).Error; err != nil {
			return nil, err
		}
	}

	for len(current) > 0 {
		level := make([]string, 0, len(current))
		for _, id := range current {
			if !seen[id] {
				seen[id] = true
				level = append(level, id)
			}
		}
		if len(level) == 0 {
			break
		}
		levels = append(levels, level)

		var next []string
		if err := tx.Model(&models.Comment{}).Where("parent_id IN ?", level).Pluck("id", &next).Error; err != nil {
			return nil, err
		}
		current = next
	}
	return levels, nil
}

// deleteLevels deletes the deepest level first so no row is removed while a
// reply still points at it.
func deleteLevels(tx *gorm.DB, levels [][]string) (int64, error) {
	var deleted int64
	for i := len(levels) - 1; i >= 0; i-- {
		result := tx.Where("id IN ?", levels[i]).Delete(&models.Comment{})
		if result.Error != nil {
			return deleted, result.Error
		}
		deleted += result.RowsAffected
	}
	return deleted, nil
}

// deleteCommentsOfPost removes every comment attached to postID, nested replies included.
func deleteCommentsOfPost(tx *gorm.DB, postID string) (int64, error) {
	var roots []string
	if err := tx.Model(&models.Comment{}).Where("post_id = ? AND parent_id IS NULL", postID).Pluck("id", &roots).Error; err != nil {
		return 0, err
	}
	levels, err := subtreeLevels(tx, roots)
	if err != nil {
		return 0, err
	}
	deleted, err := deleteLevels(tx, levels)
	if err != nil {
		return deleted, err
	}

	result := tx.Where("post_id = ?", postID).Delete(&models.Comment{})
	if result.Error != nil {
		return deleted, result.Error
	}
	return deleted + result.RowsAffected, nil
}
