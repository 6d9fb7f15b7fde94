package fakers

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/Rakhulsr/go-blog/app/models"
	"github.com/go-faker/faker/v4"
)

// UserFaker builds an unsaved user. The caller supplies the password hash so
// bcrypt runs once per seed run.
func UserFaker(passwordHash string) *models.User {
	username := strings.ToLower(faker.Username())
	if len(username) < 3 {
		username += "_user"
	}
	if len(username) > 50 {
		username = username[:50]
	}

	return &models.User{
		Username:     username,
		FullName:     faker.Name(),
		Email:        faker.Email(),
		PasswordHash: passwordHash,
	}
}

func PostFaker(owner *models.User) *models.Post {
	title := faker.Sentence()
	if len(title) > 100 {
		title = title[:100]
	}
	return &models.Post{
		Title:   strings.TrimSuffix(title, "."),
		Content: fmt.Sprintf("%s\n\n%s", faker.Paragraph(), faker.Paragraph()),
		UserID:  owner.ID,
	}
}

func CommentFaker(post *models.Post, author *models.User, parent *models.Comment) *models.Comment {
	c := &models.Comment{
		Text:   faker.Sentence(),
		PostID: post.ID,
		UserID: author.ID,
	}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	return c
}

// PickCategories returns up to n random category ids.
func PickCategories(rng *rand.Rand, categories []models.Category, n int) []string {
	ids := make([]string, 0, n)
	for _, i := range rng.Perm(len(categories)) {
		if len(ids) == n {
			break
		}
		ids = append(ids, categories[i].ID)
	}
	return ids
}
