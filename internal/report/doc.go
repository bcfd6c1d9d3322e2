// Package report serializes completed audits.
//
// Two output styles exist:
//   - JSONWriter: the combined audit report as one JSON document, for
//     terminal piping and tool integration
//   - ArtifactWriter: the three per-site artifact files (technical
//     discovery, issues summary, page info) consumed by downstream
//     reporting collaborators
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) to follow the single responsibility
// principle. This allows adding new output formats without modifying
// the core data structures.
package report
