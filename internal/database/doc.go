// Package database provides SQLite-based persistence for the archive.
//
// ArchiveDB stores the four entity kinds (communities, posts, replies,
// users) in independent tables and guarantees idempotent writes keyed by
// platform ID: re-inserting a known entity is a no-op that preserves the
// originally archived field values, and updates touch only the fields the
// platform can change after archiving (reaction counts, reply counts,
// image hashes, user profiles).
//
// The query side exposes bounded search queries over the post/reply union
// ("content"), unbounded full-corpus reads for the similarity search
// engine, and the derived author score aggregate.
//
// The crawler process writes while the query server reads the same file;
// WAL mode plus SQLite's write lock serialize them without application
// locking.
package database
