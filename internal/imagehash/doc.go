// Package imagehash computes perceptual hashes for archived images and
// provides ranked nearest-neighbor search over the stored corpus.
//
// The same 64-bit perception hash is computed at ingestion time (by the
// crawler, for post images and Mii avatars) and at query time (by the
// query server, for uploaded reverse-search images), so distances between
// stored and query hashes are directly comparable. Distances are normalized
// to a 0-1 scale; records without a hash are pinned to the worst distance
// of 1.0 so they rank last.
//
// Exact-hash equality lookups do not live here: those are plain indexed
// queries in the database package.
package imagehash
