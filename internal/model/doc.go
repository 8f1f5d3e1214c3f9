// Package model defines the core data structures shared across juxtarchive.
//
// This package contains the following main types:
//   - Community: A platform community with its incremental-scan cursor
//   - Post, Reply: Archived content, deduplicated by platform ID
//   - Content: The post/reply union view returned by search queries
//   - User: A platform account keyed by numeric PID
//   - RefreshRequest: The live-update message sent from the query server
//     to the crawler
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, database, extract, server) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for the query API and
// the live-update channel.
package model
