package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/juxtarchive/juxtarchive/internal/model"
)

// ArchiveDB provides SQLite-backed storage for the four archived entity
// kinds: communities, posts, replies, and users.
//
// Writes are idempotent: inserting an entity whose ID already exists is a
// no-op, not an error. The crawler and the query server open the same file
// from separate processes; SQLite's own write lock serializes them, so no
// application-level locking is introduced.
//
// Design decision: Each entity kind lives in its own independently consistent
// table. There is deliberately no cross-table transaction discipline: a reply
// may be stored before (or without) its parent post, mirroring the order in
// which the platform exposes content.
type ArchiveDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ArchiveDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. Recommended: the query server
	// reads while the crawler writes, and WAL keeps readers unblocked.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an ArchiveDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ArchiveDB, error) {
	dbPath := filepath.Join(dbDir, "juxtarchive.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation. busy_timeout makes the second process
	// wait for the write lock instead of failing immediately.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc&_pragma=busy_timeout(5000)"
	} else {
		dsn = dbPath + "?mode=rw&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection per process
	// avoids lock contention between our own goroutines.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &ArchiveDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *ArchiveDB) Close() error {
	return adb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (adb *ArchiveDB) createTables() error {
	schema := `
	-- Communities are discovered once and keep the incremental-scan cursor.
	CREATE TABLE IF NOT EXISTS communities (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		first_scan_amount INTEGER NOT NULL DEFAULT 0,
		cursor TEXT NOT NULL DEFAULT ''
	);

	-- Top-level posts, deduplicated by platform ID.
	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		author_pid INTEGER NOT NULL,
		community_id TEXT NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		reactions INTEGER NOT NULL DEFAULT 0,
		reply_count INTEGER NOT NULL DEFAULT 0,
		image_url TEXT NOT NULL DEFAULT '',
		image_hash TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_pid);
	CREATE INDEX IF NOT EXISTS idx_posts_community ON posts(community_id);
	CREATE INDEX IF NOT EXISTS idx_posts_image_hash ON posts(image_hash);
	CREATE INDEX IF NOT EXISTS idx_posts_reactions ON posts(reactions);

	-- Replies under posts. parent_post_id is best-effort: no FK constraint,
	-- a reply whose parent was never archived is stored anyway.
	CREATE TABLE IF NOT EXISTS replies (
		id TEXT PRIMARY KEY,
		author_pid INTEGER NOT NULL,
		parent_post_id TEXT NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		reactions INTEGER NOT NULL DEFAULT 0,
		image_url TEXT NOT NULL DEFAULT '',
		image_hash TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_replies_author ON replies(author_pid);
	CREATE INDEX IF NOT EXISTS idx_replies_parent ON replies(parent_post_id);
	CREATE INDEX IF NOT EXISTS idx_replies_image_hash ON replies(image_hash);

	-- Platform accounts, keyed by numeric principal ID.
	CREATE TABLE IF NOT EXISTS users (
		pid INTEGER PRIMARY KEY,
		pnid TEXT NOT NULL DEFAULT '',
		display_name TEXT NOT NULL DEFAULT '',
		mii_hash TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_users_pnid ON users(pnid);
	CREATE INDEX IF NOT EXISTS idx_users_mii_hash ON users(mii_hash);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// InsertCommunity inserts a community if its ID is not already present.
// Returns true if a new row was inserted.
//
// Design decision: INSERT OR IGNORE against the primary key replaces the
// read-then-insert check. Two processes racing on the same ID both succeed;
// exactly one row exists afterwards and the original field values win.
func (adb *ArchiveDB) InsertCommunity(ctx context.Context, c *model.Community) (bool, error) {
	result, err := adb.db.ExecContext(ctx, `
	INSERT OR IGNORE INTO communities (id, name, first_scan_amount, cursor)
	VALUES (?, ?, ?, ?)
	`, c.ID, c.Name, c.FirstScanAmount, c.Cursor)
	if err != nil {
		return false, fmt.Errorf("failed to insert community: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return n > 0, nil
}

// UpdateCommunityCursor advances a community's scan cursor.
// No-op if the community is unknown.
func (adb *ArchiveDB) UpdateCommunityCursor(ctx context.Context, id, cursor string) error {
	_, err := adb.db.ExecContext(ctx, `UPDATE communities SET cursor = ? WHERE id = ?`, cursor, id)
	if err != nil {
		return fmt.Errorf("failed to update community cursor: %w", err)
	}
	return nil
}

// UpdateCommunityFirstScanAmount records how many items the first complete
// scan of a community observed. Written once, after the initial pass.
func (adb *ArchiveDB) UpdateCommunityFirstScanAmount(ctx context.Context, id string, amount int) error {
	_, err := adb.db.ExecContext(ctx, `UPDATE communities SET first_scan_amount = ? WHERE id = ?`, amount, id)
	if err != nil {
		return fmt.Errorf("failed to update community first scan amount: %w", err)
	}
	return nil
}

// GetCommunityByID retrieves a community by ID.
// Returns (nil, nil) when the community is unknown.
func (adb *ArchiveDB) GetCommunityByID(ctx context.Context, id string) (*model.Community, error) {
	var c model.Community
	err := adb.db.QueryRowContext(ctx, `
	SELECT id, name, first_scan_amount, cursor FROM communities WHERE id = ?
	`, id).Scan(&c.ID, &c.Name, &c.FirstScanAmount, &c.Cursor)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get community: %w", err)
	}
	return &c, nil
}

// ListCommunities returns all known communities.
func (adb *ArchiveDB) ListCommunities(ctx context.Context) ([]model.Community, error) {
	rows, err := adb.db.QueryContext(ctx, `
	SELECT id, name, first_scan_amount, cursor FROM communities ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list communities: %w", err)
	}
	defer rows.Close()

	var communities []model.Community
	for rows.Next() {
		var c model.Community
		if err := rows.Scan(&c.ID, &c.Name, &c.FirstScanAmount, &c.Cursor); err != nil {
			return nil, fmt.Errorf("failed to scan community: %w", err)
		}
		communities = append(communities, c)
	}
	return communities, rows.Err()
}

// InsertPost inserts a post if its ID is not already present.
// Returns true if a new row was inserted.
func (adb *ArchiveDB) InsertPost(ctx context.Context, p *model.Post) (bool, error) {
	result, err := adb.db.ExecContext(ctx, `
	INSERT OR IGNORE INTO posts (id, author_pid, community_id, text, reactions, reply_count, image_url, image_hash)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.AuthorPID, p.CommunityID, p.Text, p.Reactions, p.ReplyCount, p.ImageURL, p.ImageHash)
	if err != nil {
		return false, fmt.Errorf("failed to insert post: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return n > 0, nil
}

// UpdatePost overwrites a post's mutable fields: reactions, reply count,
// and image hash. Identity fields (id, author, community, text, image URL)
// are never touched. No-op if the post is unknown.
func (adb *ArchiveDB) UpdatePost(ctx context.Context, p *model.Post) error {
	_, err := adb.db.ExecContext(ctx, `
	UPDATE posts SET reactions = ?, reply_count = ?, image_hash = ? WHERE id = ?
	`, p.Reactions, p.ReplyCount, p.ImageHash, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

// GetPostByID retrieves a post by ID. Returns (nil, nil) when unknown.
func (adb *ArchiveDB) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	err := adb.db.QueryRowContext(ctx, `
	SELECT id, author_pid, community_id, text, reactions, reply_count, image_url, image_hash
	FROM posts WHERE id = ?
	`, id).Scan(&p.ID, &p.AuthorPID, &p.CommunityID, &p.Text, &p.Reactions, &p.ReplyCount, &p.ImageURL, &p.ImageHash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &p, nil
}

// InsertReply inserts a reply if its ID is not already present.
// Returns true if a new row was inserted.
func (adb *ArchiveDB) InsertReply(ctx context.Context, r *model.Reply) (bool, error) {
	result, err := adb.db.ExecContext(ctx, `
	INSERT OR IGNORE INTO replies (id, author_pid, parent_post_id, text, reactions, image_url, image_hash)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.AuthorPID, r.ParentPostID, r.Text, r.Reactions, r.ImageURL, r.ImageHash)
	if err != nil {
		return false, fmt.Errorf("failed to insert reply: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return n > 0, nil
}

// UpdateReply overwrites a reply's mutable fields: reactions and image hash.
// No-op if the reply is unknown.
func (adb *ArchiveDB) UpdateReply(ctx context.Context, r *model.Reply) error {
	_, err := adb.db.ExecContext(ctx, `
	UPDATE replies SET reactions = ?, image_hash = ? WHERE id = ?
	`, r.Reactions, r.ImageHash, r.ID)
	if err != nil {
		return fmt.Errorf("failed to update reply: %w", err)
	}
	return nil
}

// GetReplyByID retrieves a reply by ID. Returns (nil, nil) when unknown.
func (adb *ArchiveDB) GetReplyByID(ctx context.Context, id string) (*model.Reply, error) {
	var r model.Reply
	err := adb.db.QueryRowContext(ctx, `
	SELECT id, author_pid, parent_post_id, text, reactions, image_url, image_hash
	FROM replies WHERE id = ?
	`, id).Scan(&r.ID, &r.AuthorPID, &r.ParentPostID, &r.Text, &r.Reactions, &r.ImageURL, &r.ImageHash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reply: %w", err)
	}
	return &r, nil
}

// InsertUser inserts a user if the PID is not already present.
// Returns true if a new row was inserted.
func (adb *ArchiveDB) InsertUser(ctx context.Context, u *model.User) (bool, error) {
	result, err := adb.db.ExecContext(ctx, `
	INSERT OR IGNORE INTO users (pid, pnid, display_name, mii_hash)
	VALUES (?, ?, ?, ?)
	`, u.PID, u.PNID, u.DisplayName, u.MiiHash)
	if err != nil {
		return false, fmt.Errorf("failed to insert user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return n > 0, nil
}

// UpdateUser overwrites a user's mutable fields: handle, display name, and
// Mii hash. The PID never changes. No-op if the user is unknown.
func (adb *ArchiveDB) UpdateUser(ctx context.Context, u *model.User) error {
	_, err := adb.db.ExecContext(ctx, `
	UPDATE users SET pnid = ?, display_name = ?, mii_hash = ? WHERE pid = ?
	`, u.PNID, u.DisplayName, u.MiiHash, u.PID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// GetUserByPID retrieves a user by PID. Returns (nil, nil) when unknown.
func (adb *ArchiveDB) GetUserByPID(ctx context.Context, pid int64) (*model.User, error) {
	var u model.User
	err := adb.db.QueryRowContext(ctx, `
	SELECT pid, pnid, display_name, mii_hash FROM users WHERE pid = ?
	`, pid).Scan(&u.PID, &u.PNID, &u.DisplayName, &u.MiiHash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}
