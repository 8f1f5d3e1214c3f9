package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/juxtarchive/juxtarchive/internal/model"
)

// contentColumns is the shared SELECT shape of the post/reply union.
// Posts contribute their community as the parent and their reply count;
// replies contribute their parent post and a reply count of zero.
const contentColumns = `
	SELECT id, 'post' AS kind, author_pid, community_id AS parent_id, text,
	       reactions, reply_count, image_url, image_hash
	FROM posts %s
	UNION ALL
	SELECT id, 'reply' AS kind, author_pid, parent_post_id AS parent_id, text,
	       reactions, 0 AS reply_count, image_url, image_hash
	FROM replies %s
`

// scanContent reads the union rows produced by contentColumns queries.
func scanContent(rows *sql.Rows) ([]model.Content, error) {
	defer rows.Close()

	var results []model.Content
	for rows.Next() {
		var c model.Content
		if err := rows.Scan(&c.ID, &c.Kind, &c.AuthorPID, &c.ParentID, &c.Text,
			&c.Reactions, &c.ReplyCount, &c.ImageURL, &c.ImageHash); err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

// ContentByAuthor returns posts and replies written by the given PID,
// capped at limit.
func (adb *ArchiveDB) ContentByAuthor(ctx context.Context, pid int64, limit int) ([]model.Content, error) {
	query := fmt.Sprintf(contentColumns, "WHERE author_pid = ?", "WHERE author_pid = ?") + " LIMIT ?"
	rows, err := adb.db.QueryContext(ctx, query, pid, pid, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query content by author: %w", err)
	}
	return scanContent(rows)
}

// ContentByCommunity returns posts in the given community together with the
// replies under them, capped at limit.
func (adb *ArchiveDB) ContentByCommunity(ctx context.Context, communityID string, limit int) ([]model.Content, error) {
	query := fmt.Sprintf(contentColumns,
		"WHERE community_id = ?",
		"WHERE parent_post_id IN (SELECT id FROM posts WHERE community_id = ?)",
	) + " LIMIT ?"
	rows, err := adb.db.QueryContext(ctx, query, communityID, communityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query content by community: %w", err)
	}
	return scanContent(rows)
}

// ContentByKeyword returns posts and replies whose text contains the keyword,
// case-insensitively, capped at limit.
//
// instr over lowered text instead of LIKE: keywords containing % or _ must
// match literally, not as wildcards.
func (adb *ArchiveDB) ContentByKeyword(ctx context.Context, keyword string, limit int) ([]model.Content, error) {
	cond := "WHERE instr(lower(text), lower(?)) > 0"
	query := fmt.Sprintf(contentColumns, cond, cond) + " LIMIT ?"
	rows, err := adb.db.QueryContext(ctx, query, keyword, keyword, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query content by keyword: %w", err)
	}
	return scanContent(rows)
}

// ContentByImageHash returns posts and replies whose stored perceptual hash
// equals the given hash exactly, capped at limit. This is the cheap equality
// path; ranked nearest-neighbor search lives in the imagehash package.
func (adb *ArchiveDB) ContentByImageHash(ctx context.Context, hash string, limit int) ([]model.Content, error) {
	cond := "WHERE image_hash = ? AND image_hash != ''"
	query := fmt.Sprintf(contentColumns, cond, cond) + " LIMIT ?"
	rows, err := adb.db.QueryContext(ctx, query, hash, hash, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query content by image hash: %w", err)
	}
	return scanContent(rows)
}

// RepliesByParent returns the replies under the given post, capped at limit.
func (adb *ArchiveDB) RepliesByParent(ctx context.Context, postID string, limit int) ([]model.Content, error) {
	rows, err := adb.db.QueryContext(ctx, `
	SELECT id, 'reply', author_pid, parent_post_id, text, reactions, 0, image_url, image_hash
	FROM replies WHERE parent_post_id = ? LIMIT ?
	`, postID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query replies by parent: %w", err)
	}
	return scanContent(rows)
}

// AllContent returns every archived post and reply with no cap.
//
// Only the similarity search engine should call this: it is a full table
// scan over both tables and the result set grows with the whole corpus.
func (adb *ArchiveDB) AllContent(ctx context.Context) ([]model.Content, error) {
	query := fmt.Sprintf(contentColumns, "", "")
	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query all content: %w", err)
	}
	return scanContent(rows)
}

// TopContent returns the posts and replies with the highest reaction counts.
func (adb *ArchiveDB) TopContent(ctx context.Context, limit int) ([]model.Content, error) {
	query := fmt.Sprintf(contentColumns, "", "") + " ORDER BY reactions DESC LIMIT ?"
	rows, err := adb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top content: %w", err)
	}
	return scanContent(rows)
}

// SumReactionsByAuthor returns the author's derived score: the sum of
// reaction counts across all their posts and replies. An author with no
// archived content scores zero; missing is not an error.
func (adb *ArchiveDB) SumReactionsByAuthor(ctx context.Context, pid int64) (int64, error) {
	var sum int64
	err := adb.db.QueryRowContext(ctx, `
	SELECT COALESCE((SELECT SUM(reactions) FROM posts WHERE author_pid = ?), 0)
	     + COALESCE((SELECT SUM(reactions) FROM replies WHERE author_pid = ?), 0)
	`, pid, pid).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum reactions by author: %w", err)
	}
	return sum, nil
}

// scanUsers reads user rows.
func scanUsers(rows *sql.Rows) ([]model.User, error) {
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.PID, &u.PNID, &u.DisplayName, &u.MiiHash); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UsersByPNID returns users whose handle contains the given fragment,
// case-insensitively, capped at limit.
func (adb *ArchiveDB) UsersByPNID(ctx context.Context, pnid string, limit int) ([]model.User, error) {
	rows, err := adb.db.QueryContext(ctx, `
	SELECT pid, pnid, display_name, mii_hash FROM users
	WHERE instr(lower(pnid), lower(?)) > 0 LIMIT ?
	`, pnid, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by pnid: %w", err)
	}
	return scanUsers(rows)
}

// UsersByName returns users whose display name contains the given fragment,
// case-insensitively, capped at limit.
func (adb *ArchiveDB) UsersByName(ctx context.Context, name string, limit int) ([]model.User, error) {
	rows, err := adb.db.QueryContext(ctx, `
	SELECT pid, pnid, display_name, mii_hash FROM users
	WHERE instr(lower(display_name), lower(?)) > 0 LIMIT ?
	`, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by name: %w", err)
	}
	return scanUsers(rows)
}

// UsersByMiiHash returns users whose stored avatar hash equals the given
// hash exactly, capped at limit.
func (adb *ArchiveDB) UsersByMiiHash(ctx context.Context, hash string, limit int) ([]model.User, error) {
	rows, err := adb.db.QueryContext(ctx, `
	SELECT pid, pnid, display_name, mii_hash FROM users
	WHERE mii_hash = ? AND mii_hash != '' LIMIT ?
	`, hash, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by mii hash: %w", err)
	}
	return scanUsers(rows)
}

// AllUsers returns every archived user with no cap.
// Like AllContent, this is reserved for the similarity search engine.
func (adb *ArchiveDB) AllUsers(ctx context.Context) ([]model.User, error) {
	rows, err := adb.db.QueryContext(ctx, `
	SELECT pid, pnid, display_name, mii_hash FROM users
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query all users: %w", err)
	}
	return scanUsers(rows)
}
