package seeders

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/Rakhulsr/go-blog/app/db/fakers"
	"github.com/Rakhulsr/go-blog/app/helpers"
	"github.com/Rakhulsr/go-blog/app/models"
	"github.com/Rakhulsr/go-blog/app/repositories"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var DefaultCategories = []string{
	"Technology",
	"Programming",
	"Lifestyle",
	"Travel",
	"Food",
	"Science",
}

// DemoPassword is the password of every seeded demo user.
const DemoPassword = "password"

func SeedCategories(ctx context.Context, db *gorm.DB, log *logrus.Logger) ([]models.Category, error) {
	repo := repositories.NewCategoryRepository(db)
	categories := make([]models.Category, 0, len(DefaultCategories))
	for _, name := range DefaultCategories {
		c, err := repo.FirstOrCreateByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to seed category %s: %w", name, err)
		}
		categories = append(categories, *c)
	}
	log.WithField("count", len(categories)).Info("categories seeded")
	return categories, nil
}

// SeedDemo creates users, each with a couple of posts carrying a short comment
// thread written by the other users.
func SeedDemo(ctx context.Context, db *gorm.DB, users int, log *logrus.Logger) error {
	categories, err := SeedCategories(ctx, db, log)
	if err != nil {
		return err
	}

	hash, err := helpers.HashPassword(DemoPassword)
	if err != nil {
		return err
	}

	userRepo := repositories.NewUserRepository(db)
	postRepo := repositories.NewPostRepository(db)
	commentRepo := repositories.NewCommentRepository(db)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	created := make([]*models.User, 0, users)
	for len(created) < users {
		u := fakers.UserFaker(hash)
		err := userRepo.Create(ctx, u)
		if errors.Is(err, repositories.ErrDuplicateUsername) || errors.Is(err, repositories.ErrDuplicateEmail) {
			log.WithError(err).Debug("skipping duplicate demo user")
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		created = append(created, u)
	}

	var posts, comments int
	for _, owner := range created {
		for i := 0; i < 2; i++ {
			p := fakers.PostFaker(owner)
			if err := postRepo.Create(ctx, p, fakers.PickCategories(rng, categories, 1+rng.Intn(2))); err != nil {
				return fmt.Errorf("failed to seed post: %w", err)
			}
			posts++

			var parent *models.Comment
			for _, author := range created {
				if author.ID == owner.ID {
					continue
				}
				c := fakers.CommentFaker(p, author, parent)
				if err := commentRepo.Create(ctx, c); err != nil {
					return fmt.Errorf("failed to seed comment: %w", err)
				}
				comments++
				if rng.Intn(2) == 0 {
					parent = c
				} else {
					parent = nil
				}
			}
		}
	}

	log.WithFields(logrus.Fields{"users": len(created), "posts": posts, "comments": comments}).Info("demo data seeded")
	return nil
}
