package services

import (
	"testing"

	"github.com/Rakhulsr/go-blog/app/db/testdb"
	"github.com/Rakhulsr/go-blog/app/repositories"
	"github.com/Rakhulsr/go-blog/app/utils/logger"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	users    repositories.UserRepositoryImpl
	posts    *PostService
	comments *CommentService
	auth     *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t)
	log := logger.Discard()
	users := repositories.NewUserRepository(db)
	postRepo := repositories.NewPostRepository(db)
	commentRepo := repositories.NewCommentRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	return &fixture{
		db:       db,
		users:    users,
		posts:    NewPostService(postRepo, categoryRepo, log),
		comments: NewCommentService(commentRepo, postRepo, log),
		auth:     NewAuthService(users, log),
	}
}

func (f *fixture) count(t *testing.T, model interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Where(where, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func validPost(title string, categoryIDs ...string) PostInput {
	return PostInput{Title: title, Content: "a body long enough to pass", CategoryIDs: categoryIDs}
}
