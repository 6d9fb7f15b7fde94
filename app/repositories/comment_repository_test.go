package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rakhulsr/go-blog/app/db/testdb"
	"github.com/Rakhulsr/go-blog/app/models"
	"gorm.io/gorm"
)

func addComment(t *testing.T, repo CommentRepositoryImpl, post *models.Post, author *models.User, parent *models.Comment, text string) *models.Comment {
	t.Helper()
	c := &models.Comment{Text: text, PostID: post.ID, UserID: author.ID}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("create comment %q: %v", text, err)
	}
	return c
}

func countComments(t *testing.T, db *gorm.DB, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Comment{}).Where(where, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestCommentCreateRejectsParentFromOtherPost(t *testing.T) {
	db := testdb.Open(t)
	repo := NewCommentRepository(db)
	alice := testdb.User(t, db, "alice")
	p1 := testdb.Post(t, db, alice, "first")
	p2 := testdb.Post(t, db, alice, "second")

	parent := addComment(t, repo, p1, alice, nil, "root")

	stray := &models.Comment{Text: "reply", PostID: p2.ID, UserID: alice.ID, ParentID: &parent.ID}
	err := repo.Create(context.Background(), stray)
	if !errors.Is(err, ErrParentPostMismatch) {
		t.Fatalf("err = %v, want ErrParentPostMismatch", err)
	}
	if n := countComments(t, db, "post_id = ?", p2.ID); n != 0 {
		t.Fatalf("%d comments written on second post", n)
	}
}

func TestCommentCreateRejectsMissingParent(t *testing.T) {
	db := testdb.Open(t)
	repo := NewCommentRepository(db)
	alice := testdb.User(t, db, "alice")
	p := testdb.Post(t, db, alice, "first")

	missing := "does-not-exist"
	err := repo.Create(context.Background(), &models.Comment{Text: "x", PostID: p.ID, UserID: alice.ID, ParentID: &missing})
	if !errors.Is(err, ErrParentNotFound) {
		t.Fatalf("err = %v, want ErrParentNotFound", err)
	}
}

func TestListTopLevelExcludesRepliesAndOrdersByCreation(t *testing.T) {
	db := testdb.Open(t)
	repo := NewCommentRepository(db)
	alice := testdb.User(t, db, "alice")
	p := testdb.Post(t, db, alice, "first")

	base := time.Now().Add(-time.Hour)
	second := &models.Comment{Text: "second", PostID: p.ID, UserID: alice.ID, CreatedAt: base.Add(2 * time.Minute)}
	first := &models.Comment{Text: "first", PostID: p.ID, UserID: alice.ID, CreatedAt: base.Add(time.Minute)}
	for _, c := range []*models.Comment{second, first} {
		if err := repo.Create(context.Background(), c); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	addComment(t, repo, p, alice, first, "reply")

	top, err := repo.ListTopLevel(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(top) != 2 || top[0].Text != "first" || top[1].Text != "second" {
		t.Fatalf("top level = %+v", top)
	}
	if top[0].User.Username != "alice" {
		t.Fatalf("author not preloaded: %+v", top[0].User)
	}

	replies, err := repo.ListReplies(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("replies: %v", err)
	}
	if len(replies) != 1 || replies[0].Text != "reply" {
		t.Fatalf("replies = %+v", replies)
	}
}

func TestDeleteSubtreeRemovesDescendantsOnly(t *testing.T) {
	db := testdb.Open(t)
	repo := NewCommentRepository(db)
	alice := testdb.User(t, db, "alice")
	bob := testdb.User(t, db, "bob")
	p := testdb.Post(t, db, alice, "first")

	c1 := addComment(t, repo, p, alice, nil, "c1")
	c2 := addComment(t, repo, p, bob, c1, "c2")
	c3 := addComment(t, repo, p, alice, c2, "c3")
	addComment(t, repo, p, bob, c2, "c3b")
	sibling := addComment(t, repo, p, bob, nil, "sibling")
	siblingReply := addComment(t, repo, p, alice, sibling, "sibling reply")

	deleted, err := repo.DeleteSubtree(context.Background(), c1.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != 4 {
		t.Fatalf("deleted = %d, want 4", deleted)
	}
	for _, id := range []string{c1.ID, c2.ID, c3.ID} {
		if got, _ := repo.GetByID(context.Background(), id); got != nil {
			t.Fatalf("comment %s survived", id)
		}
	}
	for _, id := range []string{sibling.ID, siblingReply.ID} {
		if got, _ := repo.GetByID(context.Background(), id); got == nil {
			t.Fatalf("sibling comment %s was removed", id)
		}
	}
}

func TestDeleteSubtreeMissingCommentDeletesNothing(t *testing.T) {
	db := testdb.Open(t)
	repo := NewCommentRepository(db)

	deleted, err := repo.DeleteSubtree(context.Background(), "nope")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("deleted = %d", deleted)
	}
}
