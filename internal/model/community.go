package model

// Community represents a single community (title) on the archived platform.
// Communities are discovered once at crawler startup and never deleted.
type Community struct {
	// ID is the opaque platform identifier of the community.
	ID string `json:"id"`

	// Name is the human-readable community name.
	Name string `json:"name"`

	// Cursor is the ID of the first (newest) post observed during the most
	// recent completed scan pass. The platform lists content newest-first,
	// so everything strictly newer than the cursor is unseen. An empty
	// cursor means the community has never completed a pass and the next
	// pass walks the listing to the end.
	//
	// Cursor only moves forward in time: it is rewritten after each pass
	// that observed at least one item and left unchanged otherwise.
	Cursor string `json:"cursor"`

	// FirstScanAmount records how many posts existed when the community was
	// first discovered. Informational only; no logic depends on it.
	FirstScanAmount int `json:"first_scan_amount"`
}
