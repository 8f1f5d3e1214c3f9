// Package log provides service-tagged logging built on top of the standard
// slog package.
//
// juxtarchive runs as two cooperating processes (crawler and query server)
// whose output often ends up in the same journal. The ServiceHandler stamps
// every record with the originating service name so lines remain
// attributable without each call site repeating it.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, log.ServiceCrawler, verbose)
//	logger.Info("scanned community", "community", name, "new_posts", n)
package log
