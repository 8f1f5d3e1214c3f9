// Package extract fetches rendered archive pages and extracts structured
// records from them.
//
// # Architecture
//
// The package is built around the Client type, which wraps an HTTP client
// pointed at a single archive base URL. Each Fetch method requests one page,
// parses it with goquery, and returns model records. Pages are rendered
// server-side, so extraction is pure CSS-selector work with no script
// evaluation.
//
// Design decision: We extract from rendered HTML rather than a JSON API
// because:
//  1. The archive source only serves HTML pages
//  2. goquery gives jQuery-style selectors, keeping selector maps readable
//  3. Selector-based extraction degrades gracefully when one block is
//     malformed (skip the block, keep the page)
//
// # Components
//
//   - Client: HTTP fetcher bound to one base URL
//   - FetchCommunities: community directory listing
//   - FetchPage: one page of a community's newest-first feed
//   - FetchThread: a post together with its replies
//   - FetchUser: a user profile with Mii avatar hash
//
// # End of data
//
// The feed endpoint answers 204 No Content past the last page. Fetch
// methods report this as ErrEndOfData so callers can distinguish the end
// of a feed from a transport failure.
//
// # Image hashing
//
// Attached images and Mii avatars are fetched and reduced to a perceptual
// hash at extraction time. Image failures never fail the page: a post whose
// image cannot be fetched or decoded is stored with an empty hash.
//
// # Usage
//
//	client, err := extract.NewClient("https://archive.example.com")
//	posts, err := client.FetchPage(ctx, "14866558073037299863", 0)
//	if errors.Is(err, extract.ErrEndOfData) {
//	    // feed exhausted
//	}
package extract
