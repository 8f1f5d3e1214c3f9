package extract

import "errors"

// ErrEndOfData signals that a paginated listing has no more pages.
// It is a sentinel, not a failure: the platform answers HTTP 204 past the
// last page, and scanners treat it as the normal termination of a walk.
// Check with errors.Is.
var ErrEndOfData = errors.New("end of data")
