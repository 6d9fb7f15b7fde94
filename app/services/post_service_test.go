package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Rakhulsr/go-blog/app/db/testdb"
	"github.com/Rakhulsr/go-blog/app/models"
)

func TestCreatePostValidates(t *testing.T) {
	f := newFixture(t)
	alice := testdb.User(t, f.db, "alice")

	_, err := f.posts.CreatePost(context.Background(), alice.ID, PostInput{Title: "  hi ", Content: "short"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Fields["title"] == "" || verr.Fields["content"] == "" {
		t.Fatalf("fields = %v, want title and content", verr.Fields)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("ValidationError does not unwrap to ErrValidation")
	}
	if n := f.count(t, &models.Post{}, "1 = 1"); n != 0 {
		t.Fatalf("%d posts written", n)
	}
}

func TestCanMutateOnEditAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testdb.User(t, f.db, "alice")
	bob := testdb.User(t, f.db, "bob")

	post, err := f.posts.CreatePost(ctx, alice.ID, validPost("original"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if !CanMutate(post, alice.ID) {
		t.Fatal("owner cannot mutate")
	}
	for _, actor := range []string{bob.ID, "", "someone-else"} {
		if CanMutate(post, actor) {
			t.Fatalf("actor %q can mutate", actor)
		}
	}

	_, err = f.posts.UpdatePost(ctx, bob.ID, post.ID, validPost("hijacked"))
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("update err = %v, want ErrPermissionDenied", err)
	}
	got, err := f.posts.Get(ctx, post.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "original" || got.UserID != alice.ID {
		t.Fatalf("post changed after denied update: %+v", got)
	}

	if err := f.posts.DeletePost(ctx, bob.ID, post.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("delete err = %v, want ErrPermissionDenied", err)
	}

	updated, err := f.posts.UpdatePost(ctx, alice.ID, post.ID, validPost("renamed"))
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Title != "renamed" || updated.UserID != alice.ID {
		t.Fatalf("updated = %+v", updated)
	}
}

func TestDeletePostScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testdb.User(t, f.db, "usera")
	b := testdb.User(t, f.db, "userb")
	tech := testdb.Category(t, f.db, "tech")
	life := testdb.Category(t, f.db, "life")

	p, err := f.posts.CreatePost(ctx, a.ID, validPost("tagged", tech.ID, life.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(p.Categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(p.Categories))
	}
	c1, err := f.comments.AddTopLevelComment(ctx, p.ID, b.ID, "first")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if _, err := f.comments.AddReply(ctx, c1.ID, a.ID, "answer"); err != nil {
		t.Fatalf("reply: %v", err)
	}

	if err := f.posts.DeletePost(ctx, b.ID, p.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if _, err := f.posts.Get(ctx, p.ID); err != nil {
		t.Fatalf("post gone after denied delete: %v", err)
	}

	if err := f.posts.DeletePost(ctx, a.ID, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.posts.Get(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete err = %v, want ErrNotFound", err)
	}
	if n := f.count(t, &models.Comment{}, "post_id = ?", p.ID); n != 0 {
		t.Fatalf("%d comments left", n)
	}
	if n := f.count(t, &models.PostCategory{}, "post_id = ?", p.ID); n != 0 {
		t.Fatalf("%d category links left", n)
	}
	if n := f.count(t, &models.Category{}, "1 = 1"); n != 2 {
		t.Fatalf("categories = %d, want 2 kept", n)
	}
}

func TestSetCategoriesIdempotentAndGuarded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testdb.User(t, f.db, "alice")
	bob := testdb.User(t, f.db, "bob")
	tech := testdb.Category(t, f.db, "tech")
	life := testdb.Category(t, f.db, "life")

	post, err := f.posts.CreatePost(ctx, alice.ID, validPost("tagged", tech.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ids := []string{life.ID, "missing", life.ID}
	first, err := f.posts.SetCategories(ctx, alice.ID, post.ID, ids)
	if err != nil {
		t.Fatalf("first set: %v", err)
	}
	second, err := f.posts.SetCategories(ctx, alice.ID, post.ID, ids)
	if err != nil {
		t.Fatalf("second set: %v", err)
	}
	if len(first) != 1 || len(second) != 1 || first[0].ID != second[0].ID || first[0].ID != life.ID {
		t.Fatalf("first = %v, second = %v", first, second)
	}
	got, _ := f.posts.Get(ctx, post.ID)
	if len(got.Categories) != 1 || got.Categories[0].ID != life.ID {
		t.Fatalf("stored categories = %v", got.Categories)
	}

	if _, err := f.posts.SetCategories(ctx, bob.ID, post.ID, nil); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if _, err := f.posts.SetCategories(ctx, alice.ID, "missing", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListFeedAndCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testdb.User(t, f.db, "alice")
	bob := testdb.User(t, f.db, "bob")
	tech := testdb.Category(t, f.db, "tech")

	if _, err := f.posts.CreatePost(ctx, alice.ID, validPost("by alice", tech.ID)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.posts.CreatePost(ctx, bob.ID, validPost("by bob")); err != nil {
		t.Fatal(err)
	}

	feed, err := f.posts.ListFeed(ctx, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(feed) != 1 || feed[0].Title != "by bob" {
		t.Fatalf("feed = %v", feed)
	}
	own, err := f.posts.ListByOwner(ctx, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(own) != 1 || own[0].Title != "by alice" {
		t.Fatalf("own = %v", own)
	}

	category, posts, err := f.posts.ListByCategory(ctx, "tech")
	if err != nil {
		t.Fatal(err)
	}
	if category.ID != tech.ID || len(posts) != 1 || posts[0].Title != "by alice" {
		t.Fatalf("category %v posts %v", category, posts)
	}
	if _, _, err := f.posts.ListByCategory(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
