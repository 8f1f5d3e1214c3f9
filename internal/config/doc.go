// Package config provides configuration structures and utilities for
// juxtarchive. It defines the options shared by the crawler, the query
// server, and the pagination probe: the platform base URL, database
// location, listing page size, query result caps, and the addresses of
// the two long-running processes.
package config
