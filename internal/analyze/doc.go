// Package analyze inspects rendered page HTML and turns it into audit
// findings: on-page metadata, indexability verdicts, and structured data
// declarations. An Analyzer carries the cross-page duplicate trackers and
// writes site-wide counters into the session's report as pages arrive.
package analyze
