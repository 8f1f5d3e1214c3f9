package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoBaseURL is returned when no platform base URL is configured.
	// The crawler and probe cannot fetch anything without one.
	ErrNoBaseURL = errors.New("no base URL specified: provide --url or set url in the config file")

	// ErrInvalidBaseURL is returned when the base URL is not an absolute
	// http or https URL.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute http(s) URL")

	// ErrInvalidPageSize is returned when the listing page size is not positive.
	ErrInvalidPageSize = errors.New("invalid page size: must be positive")

	// ErrInvalidResultLimit is returned when any query result cap is not
	// positive. A cap of zero would make every search return nothing.
	ErrInvalidResultLimit = errors.New("invalid result limit: must be positive")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidProbeOffset is returned when the probe's search upper bound
	// is not positive.
	ErrInvalidProbeOffset = errors.New("invalid probe max offset: must be positive")
)
