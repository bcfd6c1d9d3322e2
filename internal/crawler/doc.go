// Package crawler orchestrates a full site audit: robots and sitemap
// checks, rendered page fetching, per-page analysis, and link graph
// construction. A Session audits one site; BatchAuditor runs several
// sessions concurrently.
package crawler
