// Package server exposes the archive over a JSON HTTP API.
//
// # Architecture
//
// The Server type builds a gin routing table over the archive database.
// All endpoints are read-only; the archive is written exclusively by the
// scanner process.
//
// # Endpoints
//
//   - GET  /api/communities        community directory
//   - GET  /api/posts/:id          one post
//   - GET  /api/replies/:id        one reply
//   - GET  /api/users/:pid         one user profile
//   - GET  /api/users/:pid/score   summed reactions across a user's content
//   - GET  /api/top                highest-reaction content
//   - GET  /api/search/content     content search, dispatched on ?type=
//   - GET  /api/search/users       user search, dispatched on ?type=
//   - POST /api/reverse/content    reverse image search over content
//   - POST /api/reverse/miis       reverse image search over Mii avatars
//
// Point lookups answer 404 when the record is unknown; searches answer an
// empty array. A point-lookup hit additionally hints the scanner to
// re-fetch the record, so frequently viewed items stay fresh.
//
// # Result caps
//
// List queries default to a small cap suitable for interactive pages and
// accept an explicit limit parameter up to a hard API ceiling. Both caps
// are configurable.
package server
