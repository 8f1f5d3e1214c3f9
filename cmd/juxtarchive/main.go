// Package main provides the entry point for the juxtarchive CLI.
//
// juxtarchive incrementally archives a Miiverse-style community platform:
// it crawls community listings into a local SQLite archive, serves the
// archive over a JSON API with reverse image search, and can probe
// community sizes without crawling them.
//
// Usage:
//
//	juxtarchive crawl --url https://archive.example.com
//	juxtarchive serve
//	juxtarchive probe --url https://archive.example.com
//
// See --help for all available options.
package main

// main is the entry point for juxtarchive.
func main() {
	Execute()
}
