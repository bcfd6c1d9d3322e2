// Package model defines the core data structures used throughout siteaudit.
//
// This package contains the following main types:
//   - PageRecord: Represents a crawled page with extracted metadata
//   - AuditReport: The main crawl result structure
//   - RedirectChain: An observed redirect sequence for a probed URL
//   - SchemaCatalog: Site-wide structured data classification
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, analyze, probe, report) need to use
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
