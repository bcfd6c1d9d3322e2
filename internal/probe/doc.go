// Package probe verifies URL reachability for the audit crawler.
//
// The Prober issues lightweight HEAD requests with redirect-following
// handled manually, hop by hop, so the full redirect chain is observable.
// Transient network failures are retried with exponential backoff; a URL
// that stays unreachable is recorded as a broken link in the session's
// report rather than surfaced as an error.
//
// Design decision: We disable the HTTP client's automatic redirect
// handling and follow Location headers ourselves because:
//  1. The full chain (including loops) must be recorded
//  2. A loop is a result to report, not an error to discard
//  3. Per-hop control lets us cap chain length explicitly
package probe
