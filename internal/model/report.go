package model

import "time"

// AuditReport is the main crawl result structure. It contains everything
// collected during one audit of a site, keyed by URL where applicable.
//
// Design decision: We use a single large struct rather than many small ones
// to simplify serialization and database storage. The three artifact views
// (TechnicalDiscovery, IssuesSummary, PageInfo) are derived from it.
type AuditReport struct {
	// Domain is the scheme+host of the audited site, e.g. "https://example.com".
	Domain string `json:"domain"`

	// SeedURL is the URL the crawl started from.
	SeedURL string `json:"analyzed_url"`

	// CrawlTimestamp is when the audit started.
	CrawlTimestamp time.Time `json:"crawl_timestamp"`

	// Pages maps URL to the page record built for it. Seed and depth-1
	// pages carry full metadata; deeper discoveries carry linking data only.
	Pages map[string]*PageRecord `json:"pages"`

	// BrokenLinks groups unreachable links by HTTP status code string,
	// or by "error" for network failures.
	BrokenLinks map[string][]BrokenLink `json:"broken_links"`

	// RedirectChains maps originating URL to the redirect chain observed
	// while probing it. Only URLs with at least one hop appear here.
	RedirectChains map[string]*RedirectChain `json:"redirect_chains"`

	// RedirectLoops counts redirect chains that revisited a URL.
	RedirectLoops int `json:"redirect_loops"`

	// SitemapIssues lists free-text sitemap diagnostics in discovery order.
	// Never deduplicated.
	SitemapIssues []string `json:"sitemap_issues"`

	// OrphanPages lists discovered URLs with zero inbound internal links.
	// Populated once, after traversal completes.
	OrphanPages []string `json:"orphan_pages"`

	// DepthDistribution maps crawl depth to the number of pages first
	// discovered at that depth.
	DepthDistribution map[int]int `json:"depth_distribution"`

	// Schema is the site-wide structured data catalog.
	Schema *SchemaCatalog `json:"structured_data"`

	// CrawlIssues are the per-category issue counters for the crawl.
	CrawlIssues CrawlIssueSummary `json:"crawl_issues_summary"`

	// CanonicalIssues counts canonical problems by issue name.
	CanonicalIssues map[string]int `json:"canonical_issues_summary"`

	// Linking summarizes the internal link graph.
	Linking LinkingSummary `json:"internal_linking_summary"`
}

// CrawlIssueSummary holds the site-wide issue counters accumulated during a
// crawl. Every field is present in JSON output even when zero, so downstream
// consumers see a stable key set.
type CrawlIssueSummary struct {
	// MissingTitle counts pages with no <title> tag.
	MissingTitle int `json:"urls_missing_title_tag"`

	// MissingMetaDescription counts pages with no description meta tag.
	MissingMetaDescription int `json:"urls_missing_meta_description"`

	// MissingH1 counts pages with no <h1> heading.
	MissingH1 int `json:"urls_missing_h1"`

	// ImagesMissingAlt counts images without alt text, across all pages.
	ImagesMissingAlt int `json:"images_missing_alt_text"`

	// DuplicateTitles counts repeated title occurrences. Two pages sharing
	// a title count as one duplicate, three pages as two.
	DuplicateTitles int `json:"duplicate_titles"`

	// DuplicateMetaDescriptions counts repeated meta description occurrences.
	DuplicateMetaDescriptions int `json:"duplicate_meta_descriptions"`

	// DuplicateContent counts repeated main-content hash occurrences.
	DuplicateContent int `json:"duplicate_content"`

	// NonIndexable counts pages carrying a noindex meta-robots directive.
	NonIndexable int `json:"non_indexable_urls"`

	// RedirectLoops mirrors AuditReport.RedirectLoops for the issues view.
	RedirectLoops int `json:"redirect_loops"`
}

// LinkingSummary summarizes the internal link graph of a completed crawl.
type LinkingSummary struct {
	// TotalPages is the number of pages that had outbound links recorded.
	TotalPages int `json:"total_pages"`

	// TotalInternalLinks is the total count of recorded internal links.
	TotalInternalLinks int `json:"total_internal_links"`

	// OrphanPagesCount is len(AuditReport.OrphanPages).
	OrphanPagesCount int `json:"orphan_pages_count"`
}

// NewAuditReport creates an empty report for the given domain and seed URL
// with every map initialized, so callers never need nil checks before append.
func NewAuditReport(domain, seedURL string) *AuditReport {
	return &AuditReport{
		Domain:            domain,
		SeedURL:           seedURL,
		CrawlTimestamp:    time.Now(),
		Pages:             make(map[string]*PageRecord),
		BrokenLinks:       make(map[string][]BrokenLink),
		RedirectChains:    make(map[string]*RedirectChain),
		SitemapIssues:     []string{},
		OrphanPages:       []string{},
		DepthDistribution: make(map[int]int),
		Schema:            NewSchemaCatalog(),
		CanonicalIssues:   make(map[string]int),
	}
}

// TechnicalDiscovery is the technical-discovery artifact consumed by
// external reporting collaborators.
type TechnicalDiscovery struct {
	BrokenLinks       map[string][]BrokenLink   `json:"broken_links"`
	RedirectChains    map[string]*RedirectChain `json:"redirect_chains"`
	RedirectLoops     int                       `json:"redirect_loops"`
	SitemapIssues     []string                  `json:"sitemap_issues"`
	OrphanPages       []string                  `json:"orphan_pages"`
	DepthDistribution map[int]int               `json:"depth_distribution"`
	StructuredData    *SchemaCatalog            `json:"structured_data"`
}

// IssuesSummary is the issues artifact: per-category counters only.
type IssuesSummary struct {
	CrawlIssues     CrawlIssueSummary `json:"crawl_issues_summary"`
	CanonicalIssues map[string]int    `json:"canonical_issues_summary"`
	Linking         LinkingSummary    `json:"internal_linking_summary"`
}

// TechnicalDiscovery derives the technical-discovery view of the report.
func (r *AuditReport) TechnicalDiscovery() *TechnicalDiscovery {
	return &TechnicalDiscovery{
		BrokenLinks:       r.BrokenLinks,
		RedirectChains:    r.RedirectChains,
		RedirectLoops:     r.RedirectLoops,
		SitemapIssues:     r.SitemapIssues,
		OrphanPages:       r.OrphanPages,
		DepthDistribution: r.DepthDistribution,
		StructuredData:    r.Schema,
	}
}

// IssuesSummary derives the issues view of the report.
func (r *AuditReport) IssuesSummary() *IssuesSummary {
	return &IssuesSummary{
		CrawlIssues:     r.CrawlIssues,
		CanonicalIssues: r.CanonicalIssues,
		Linking:         r.Linking,
	}
}

// PageInfo derives the per-URL page-info view of the report.
// The map is keyed by URL; values alias the report's page records.
func (r *AuditReport) PageInfo() map[string]*PageRecord {
	return r.Pages
}
