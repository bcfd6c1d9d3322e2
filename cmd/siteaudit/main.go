// Package main provides the entry point for the siteaudit CLI.
//
// siteaudit crawls a website and produces a technical audit: broken
// links, redirect chains, sitemap problems, on-page metadata issues,
// indexability verdicts, structured data coverage, and the internal
// link graph.
//
// Usage:
//
//	siteaudit audit https://example.com
//	siteaudit audit --json https://example.com
//
// See --help for all available options.
package main

// main is the entry point for siteaudit.
func main() {
	Execute()
}
