package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/juxtarchive/juxtarchive/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *ArchiveDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, "juxtarchive.db")); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "nonexistent-db")
		_, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err == nil {
			t.Fatal("expected error when CreateIfNotExists=false and database does not exist")
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()

		db1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		if _, err := db1.InsertCommunity(context.Background(), &model.Community{ID: "c1", Name: "Plaza"}); err != nil {
			t.Fatalf("failed to insert community: %v", err)
		}
		if err := db1.Close(); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}

		db2, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db2.Close()

		c, err := db2.GetCommunityByID(context.Background(), "c1")
		if err != nil {
			t.Fatalf("failed to get community: %v", err)
		}
		if c == nil || c.Name != "Plaza" {
			t.Errorf("community = %+v, want name Plaza", c)
		}
	})
}

// TestInsertIdempotence tests that re-inserting an existing ID is a no-op
// that preserves the original field values.
func TestInsertIdempotence(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	original := &model.Post{
		ID:          "p1",
		AuthorPID:   100,
		CommunityID: "c1",
		Text:        "first sighting",
		Reactions:   5,
		ReplyCount:  1,
	}

	inserted, err := db.InsertPost(ctx, original)
	if err != nil {
		t.Fatalf("InsertPost() error = %v", err)
	}
	if !inserted {
		t.Error("first insert should report a new row")
	}

	dup := &model.Post{ID: "p1", AuthorPID: 999, CommunityID: "c9", Text: "imposter", Reactions: 0}
	inserted, err = db.InsertPost(ctx, dup)
	if err != nil {
		t.Fatalf("InsertPost() duplicate error = %v", err)
	}
	if inserted {
		t.Error("duplicate insert should be a no-op")
	}

	got, err := db.GetPostByID(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPostByID() error = %v", err)
	}
	if got == nil {
		t.Fatal("post not found after insert")
	}
	if got.Text != "first sighting" || got.AuthorPID != 100 || got.Reactions != 5 {
		t.Errorf("duplicate insert altered row: %+v", got)
	}
}

// TestUpdateIfExists tests refresh semantics: updates on unknown IDs are
// no-ops, updates on known IDs overwrite only the mutable fields.
func TestUpdateIfExists(t *testing.T) {
	t.Parallel()

	t.Run("unknown post id is a no-op", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		if err := db.UpdatePost(ctx, &model.Post{ID: "ghost", Reactions: 10}); err != nil {
			t.Fatalf("UpdatePost() on unknown id error = %v", err)
		}
		got, err := db.GetPostByID(ctx, "ghost")
		if err != nil {
			t.Fatalf("GetPostByID() error = %v", err)
		}
		if got != nil {
			t.Errorf("update must not create rows, got %+v", got)
		}
	})

	t.Run("known post keeps identity fields", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		p := &model.Post{ID: "p1", AuthorPID: 100, CommunityID: "c1", Text: "hello", Reactions: 1, ReplyCount: 0, ImageHash: "p:aa"}
		if _, err := db.InsertPost(ctx, p); err != nil {
			t.Fatal(err)
		}

		refreshed := &model.Post{ID: "p1", AuthorPID: 424242, CommunityID: "cX", Text: "rewritten", Reactions: 7, ReplyCount: 3, ImageHash: "p:bb"}
		if err := db.UpdatePost(ctx, refreshed); err != nil {
			t.Fatalf("UpdatePost() error = %v", err)
		}

		got, err := db.GetPostByID(ctx, "p1")
		if err != nil {
			t.Fatal(err)
		}
		if got.Reactions != 7 || got.ReplyCount != 3 || got.ImageHash != "p:bb" {
			t.Errorf("mutable fields not updated: %+v", got)
		}
		if got.AuthorPID != 100 || got.CommunityID != "c1" || got.Text != "hello" {
			t.Errorf("identity fields must be preserved: %+v", got)
		}
	})

	t.Run("known reply updates reactions and hash only", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		r := &model.Reply{ID: "r1", AuthorPID: 7, ParentPostID: "p1", Text: "hi", Reactions: 0}
		if _, err := db.InsertReply(ctx, r); err != nil {
			t.Fatal(err)
		}
		if err := db.UpdateReply(ctx, &model.Reply{ID: "r1", AuthorPID: 8, ParentPostID: "pX", Text: "nope", Reactions: 4, ImageHash: "p:cc"}); err != nil {
			t.Fatal(err)
		}

		got, err := db.GetReplyByID(ctx, "r1")
		if err != nil {
			t.Fatal(err)
		}
		if got.Reactions != 4 || got.ImageHash != "p:cc" {
			t.Errorf("mutable fields not updated: %+v", got)
		}
		if got.AuthorPID != 7 || got.ParentPostID != "p1" || got.Text != "hi" {
			t.Errorf("identity fields must be preserved: %+v", got)
		}
	})

	t.Run("user refresh overwrites profile", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		if _, err := db.InsertUser(ctx, &model.User{PID: 100, PNID: "old", DisplayName: "Old Name"}); err != nil {
			t.Fatal(err)
		}
		if err := db.UpdateUser(ctx, &model.User{PID: 100, PNID: "new", DisplayName: "New Name", MiiHash: "p:dd"}); err != nil {
			t.Fatal(err)
		}

		got, err := db.GetUserByPID(ctx, 100)
		if err != nil {
			t.Fatal(err)
		}
		if got.PNID != "new" || got.DisplayName != "New Name" || got.MiiHash != "p:dd" {
			t.Errorf("user refresh not applied: %+v", got)
		}
	})
}

// TestCursorUpdate tests cursor persistence.
func TestCursorUpdate(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.InsertCommunity(ctx, &model.Community{ID: "c1", Name: "Plaza"}); err != nil {
		t.Fatal(err)
	}

	if err := db.UpdateCommunityCursor(ctx, "c1", "p42"); err != nil {
		t.Fatalf("UpdateCommunityCursor() error = %v", err)
	}

	c, err := db.GetCommunityByID(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if c.Cursor != "p42" {
		t.Errorf("cursor = %q, want p42", c.Cursor)
	}

	// Updating an unknown community is a no-op.
	if err := db.UpdateCommunityCursor(ctx, "ghost", "p1"); err != nil {
		t.Errorf("UpdateCommunityCursor() on unknown community error = %v", err)
	}
}

// TestNotFound tests that point lookups return (nil, nil) for unknown IDs.
func TestNotFound(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	if c, err := db.GetCommunityByID(ctx, "nope"); err != nil || c != nil {
		t.Errorf("GetCommunityByID() = (%v, %v), want (nil, nil)", c, err)
	}
	if p, err := db.GetPostByID(ctx, "nope"); err != nil || p != nil {
		t.Errorf("GetPostByID() = (%v, %v), want (nil, nil)", p, err)
	}
	if r, err := db.GetReplyByID(ctx, "nope"); err != nil || r != nil {
		t.Errorf("GetReplyByID() = (%v, %v), want (nil, nil)", r, err)
	}
	if u, err := db.GetUserByPID(ctx, 12345); err != nil || u != nil {
		t.Errorf("GetUserByPID() = (%v, %v), want (nil, nil)", u, err)
	}
}

// seedContent inserts a small mixed corpus used by the query tests.
func seedContent(t *testing.T, db *ArchiveDB) {
	t.Helper()
	ctx := context.Background()

	posts := []model.Post{
		{ID: "p1", AuthorPID: 1, CommunityID: "c1", Text: "Splatoon is great", Reactions: 10, ReplyCount: 2, ImageHash: "p:aaaa"},
		{ID: "p2", AuthorPID: 2, CommunityID: "c1", Text: "drawing practice", Reactions: 3},
		{ID: "p3", AuthorPID: 1, CommunityID: "c2", Text: "GREAT game night", Reactions: 7},
	}
	for i := range posts {
		if _, err := db.InsertPost(ctx, &posts[i]); err != nil {
			t.Fatal(err)
		}
	}

	replies := []model.Reply{
		{ID: "r1", AuthorPID: 2, ParentPostID: "p1", Text: "so great", Reactions: 5, ImageHash: "p:aaaa"},
		{ID: "r2", AuthorPID: 3, ParentPostID: "p1", Text: "meh", Reactions: 1},
	}
	for i := range replies {
		if _, err := db.InsertReply(ctx, &replies[i]); err != nil {
			t.Fatal(err)
		}
	}
}

// TestContentQueries tests the post/reply union queries.
func TestContentQueries(t *testing.T) {
	t.Parallel()

	t.Run("by author spans posts and replies", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		seedContent(t, db)

		got, err := db.ContentByAuthor(context.Background(), 2, 50)
		if err != nil {
			t.Fatalf("ContentByAuthor() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d results, want 2 (one post, one reply)", len(got))
		}
		kinds := map[string]bool{}
		for _, c := range got {
			kinds[c.Kind] = true
		}
		if !kinds[model.KindPost] || !kinds[model.KindReply] {
			t.Errorf("expected both kinds, got %v", kinds)
		}
	})

	t.Run("by community includes replies under its posts", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		seedContent(t, db)

		got, err := db.ContentByCommunity(context.Background(), "c1", 50)
		if err != nil {
			t.Fatalf("ContentByCommunity() error = %v", err)
		}
		// p1, p2 and the two replies under p1.
		if len(got) != 4 {
			t.Errorf("got %d results, want 4", len(got))
		}
	})

	t.Run("keyword is case-insensitive", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		seedContent(t, db)

		got, err := db.ContentByKeyword(context.Background(), "great", 50)
		if err != nil {
			t.Fatalf("ContentByKeyword() error = %v", err)
		}
		// "Splatoon is great", "GREAT game night", "so great".
		if len(got) != 3 {
			t.Errorf("got %d results, want 3", len(got))
		}
	})

	t.Run("keyword respects the result cap", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		for i := 0; i < 60; i++ {
			p := model.Post{ID: fmt.Sprintf("bulk%d", i), AuthorPID: 9, CommunityID: "c9", Text: "common keyword"}
			if _, err := db.InsertPost(ctx, &p); err != nil {
				t.Fatal(err)
			}
		}

		got, err := db.ContentByKeyword(ctx, "common", 50)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 50 {
			t.Errorf("got %d results, want exactly the cap of 50", len(got))
		}
	})

	t.Run("exact hash never matches the empty hash", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		seedContent(t, db)

		got, err := db.ContentByImageHash(context.Background(), "", 50)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Errorf("empty hash matched %d rows, want 0", len(got))
		}

		got, err = db.ContentByImageHash(context.Background(), "p:aaaa", 50)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Errorf("got %d results for p:aaaa, want 2", len(got))
		}
	})

	t.Run("replies by parent", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		seedContent(t, db)

		got, err := db.RepliesByParent(context.Background(), "p1", 50)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Errorf("got %d replies, want 2", len(got))
		}
	})

	t.Run("top content ranks by reactions", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		seedContent(t, db)

		got, err := db.TopContent(context.Background(), 3)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 3 {
			t.Fatalf("got %d results, want 3", len(got))
		}
		if got[0].ID != "p1" || got[1].ID != "p3" || got[2].ID != "r1" {
			t.Errorf("ranking = [%s %s %s], want [p1 p3 r1]", got[0].ID, got[1].ID, got[2].ID)
		}
	})

	t.Run("all content returns the full corpus", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		seedContent(t, db)

		got, err := db.AllContent(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 5 {
			t.Errorf("got %d rows, want 5", len(got))
		}
	})
}

// TestSumReactionsByAuthor tests the derived author score.
func TestSumReactionsByAuthor(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	seedContent(t, db)
	ctx := context.Background()

	// Author 1: posts p1 (10) + p3 (7) = 17.
	sum, err := db.SumReactionsByAuthor(ctx, 1)
	if err != nil {
		t.Fatalf("SumReactionsByAuthor() error = %v", err)
	}
	if sum != 17 {
		t.Errorf("score = %d, want 17", sum)
	}

	// Author 2: post p2 (3) + reply r1 (5) = 8.
	sum, err = db.SumReactionsByAuthor(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if sum != 8 {
		t.Errorf("score = %d, want 8", sum)
	}

	// Unknown author scores zero, not an error.
	sum, err = db.SumReactionsByAuthor(ctx, 99999)
	if err != nil {
		t.Fatal(err)
	}
	if sum != 0 {
		t.Errorf("score = %d, want 0 for unknown author", sum)
	}
}

// TestUserQueries tests the user search family.
func TestUserQueries(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	users := []model.User{
		{PID: 1, PNID: "inkling99", DisplayName: "Squid Kid", MiiHash: "p:1111"},
		{PID: 2, PNID: "artist", DisplayName: "The Artist"},
		{PID: 3, PNID: "INKMASTER", DisplayName: "Ink Master", MiiHash: "p:2222"},
	}
	for i := range users {
		if _, err := db.InsertUser(ctx, &users[i]); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.UsersByPNID(ctx, "ink", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("UsersByPNID(ink) = %d results, want 2", len(got))
	}

	got, err = db.UsersByName(ctx, "artist", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].PID != 2 {
		t.Errorf("UsersByName(artist) = %+v, want PID 2", got)
	}

	got, err = db.UsersByMiiHash(ctx, "p:1111", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].PID != 1 {
		t.Errorf("UsersByMiiHash() = %+v, want PID 1", got)
	}

	got, err = db.AllUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("AllUsers() = %d results, want 3", len(got))
	}
}
