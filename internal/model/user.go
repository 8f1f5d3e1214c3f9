package model

// User represents a platform account. Users are archived the first time one
// of their posts or replies is seen.
type User struct {
	// PID is the unique numeric principal ID of the account.
	PID int64 `json:"pid"`

	// PNID is the account handle.
	PNID string `json:"pnid"`

	// DisplayName is the user-chosen display name.
	DisplayName string `json:"display_name"`

	// MiiHash is the perceptual hash of the account's Mii avatar image,
	// empty when the avatar could not be fetched. Overwritten by the
	// refresh path since users can change their avatar.
	MiiHash string `json:"mii_hash,omitempty"`

	// Distance is the normalized perceptual distance to a query avatar.
	// Only populated by similarity searches; zero otherwise.
	Distance float64 `json:"distance,omitempty"`
}
