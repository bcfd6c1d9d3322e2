// Package sitemap validates XML sitemap trees.
//
// A sitemap may be a leaf urlset or an index referencing further sitemaps.
// The validator walks the tree recursively with a visited-set guard, so
// cyclic references terminate. Every problem found (unreachable sitemap,
// malformed XML, bad URL status, invalid lastmod or priority) is recorded
// as a free-text diagnostic on the session report; none of them stop the
// audit.
package sitemap
