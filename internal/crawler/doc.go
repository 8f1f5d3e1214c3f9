// Package crawler implements the incremental archive scanner.
//
// # Architecture
//
// The package is designed around the Scanner type, which walks every known
// community in an endless sequential loop. Each community scan is one pass
// over the newest-first listing, ending when the feed is exhausted or the
// scan reaches the point where the previous pass started.
//
// # Cursor protocol
//
// Every community carries a stop cursor: the ID of the newest item the
// last complete pass saw. A pass records the first item it encounters,
// walks until end of data or until it meets the stored cursor, and then
// commits the recorded item as the new cursor. The commit happens only
// when the pass observed at least one item, so the cursor can never move
// backwards and an aborted pass changes nothing.
//
// # Error containment
//
// Failures are contained at the smallest useful unit:
//   - A malformed item is logged and skipped; the page continues
//   - A failed page fetch is logged and skipped; the walk resumes at the
//     next offset
//   - A failed community scan is logged; the loop moves on
//
// # Refreshes
//
// External callers can ask for a single post, reply, or user to be
// re-fetched out of band. Requests arrive on a channel and are drained
// between community scans on the scanner's own goroutine, so refreshes
// never race the scan against the database.
package crawler
