// Package linkgraph builds the internal link graph of a crawl: which
// in-scope pages link to which, how deep each page sits relative to the
// seed, and which pages nothing links to.
package linkgraph
