package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// PageRecord represents a single crawled page and everything extracted from it.
// The record is created on first fetch; linking metrics mutate while the crawl
// is still discovering pages and are final once the crawl completes.
type PageRecord struct {
	// URL is the absolute URL of the page. It is the record's identity.
	URL string `json:"url"`

	// Fetched is true if rendered HTML was captured for this page.
	// When false, only probe and linking data is available (partial record).
	Fetched bool `json:"fetched"`

	// Metadata holds on-page metadata (title, description, headings, images).
	// Nil when the page could not be fetched.
	Metadata *Metadata `json:"metadata,omitempty"`

	// Indexability is the indexability verdict for the page.
	// Nil when the page could not be fetched.
	Indexability *Indexability `json:"indexability,omitempty"`

	// StructuredData holds structured data findings for the page.
	// Nil when the page could not be fetched.
	StructuredData *StructuredData `json:"structured_data,omitempty"`

	// Linking holds the page's position in the internal link graph.
	Linking LinkingMetrics `json:"linking_metrics"`
}

// Metadata holds on-page metadata extracted from the rendered HTML.
type Metadata struct {
	// TitleTag is the text of the <title> tag. Empty when missing.
	TitleTag string `json:"title_tag"`

	// MetaDescription is the content of the description meta tag.
	MetaDescription string `json:"meta_description"`

	// Headings maps heading level ("h1".."h6") to the heading texts
	// in document order. Levels with no headings are absent.
	Headings map[string][]string `json:"h_tags"`

	// Images lists every <img> on the page with its alt text.
	Images []Image `json:"images"`

	// FleschKincaidGrade is the reading grade level of the main content.
	// Nil when no main content element was found or scoring failed.
	FleschKincaidGrade *float64 `json:"flesch_kincaid_grade"`
}

// Image is an image reference found on a page.
type Image struct {
	// Src is the image source URL as written in the document.
	Src string `json:"src"`

	// Alt is the alt text. Empty alt text is a crawl issue.
	Alt string `json:"alt_text"`
}

// Indexability is the indexability verdict for a single page.
// The zero-issue verdict is: robots allowed, index,follow, canonical = self.
type Indexability struct {
	// RobotsAllowed is false when a robots.txt Disallow rule matches the URL.
	RobotsAllowed bool `json:"robots_txt_allowed"`

	// MetaRobots is the lowercased content of the robots meta tag,
	// or "index,follow" when the tag is absent.
	MetaRobots string `json:"meta_robots"`

	// Canonical is the declared canonical URL, or the page URL itself
	// when no canonical link is present.
	Canonical string `json:"canonical"`

	// CanonicalSelfReferencing is true when the canonical URL equals
	// the page's own URL.
	CanonicalSelfReferencing bool `json:"canonical_self_referencing"`

	// NoindexReason names why the page is not indexable, e.g.
	// "meta_robots_noindex". Empty for indexable pages.
	NoindexReason string `json:"noindex_reason,omitempty"`

	// CanonicalIssues lists canonical problems detected for the page:
	// "missing_canonical", "relative_url", "points_to_different_domain",
	// "points_to_different_url".
	CanonicalIssues []string `json:"canonical_issues"`
}

// Structured data implementation method names.
const (
	MethodJSONLD    = "json_ld"
	MethodMicrodata = "microdata"
	MethodRDFa      = "rdfa"
)

// Structured data validation statuses.
const (
	ValidationValid   = "valid"
	ValidationInvalid = "invalid"
)

// StructuredData holds the structured data findings for one page.
type StructuredData struct {
	// SchemaTypes lists the schema type names declared on the page,
	// in the order they were found.
	SchemaTypes []string `json:"schema_types"`

	// ImplementationMethod is the encoding style used on the page:
	// MethodJSONLD, MethodMicrodata, or MethodRDFa. Empty when the page
	// declares no structured data. A page is assumed to use one style;
	// detection stops at the first style found.
	ImplementationMethod string `json:"implementation_method,omitempty"`

	// ValidationStatus is ValidationValid or ValidationInvalid.
	ValidationStatus string `json:"validation_status"`

	// Errors lists parse or validation error strings.
	Errors []string `json:"errors,omitempty"`
}

// LinkingMetrics describes a page's position in the internal link graph.
type LinkingMetrics struct {
	// OutboundLinks is the number of distinct in-scope URLs this page links to.
	OutboundLinks int `json:"outbound_links"`

	// InboundLinks is the number of distinct in-scope pages linking here.
	InboundLinks int `json:"inbound_links"`

	// Depth is the link distance from the seed URL at which this page was
	// first discovered. The seed is 0. Undiscovered pages report -1.
	Depth int `json:"depth"`
}

// HashContent returns the SHA-256 hash of the given main-content text.
// The text is hashed as-is, without normalization, so two pages count as
// duplicates only when their extracted content is byte-identical.
func HashContent(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
