package sitemap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"golang.org/x/net/html/charset"

	"github.com/siteaudit/siteaudit/internal/config"
	"github.com/siteaudit/siteaudit/internal/model"
	"github.com/siteaudit/siteaudit/internal/probe"
)

// lastmodLayouts are the accepted ISO-8601 forms for the <lastmod> field.
// The sitemaps protocol allows both date-only and full timestamps.
var lastmodLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Validator recursively verifies a sitemap tree and records every problem
// as a diagnostic on the session's report.
//
// Design decision: We query sitemap XML with xmlquery rather than
// encoding/xml struct tags because sitemap documents come with and without
// the protocol namespace, and XPath-style queries match on local names
// either way. Struct tags would need one set of types per namespace form.
type Validator struct {
	// client fetches sitemap documents.
	client *http.Client

	// prober checks each URL contained in a leaf urlset.
	prober *probe.Prober

	// report receives sitemap diagnostics.
	report *model.AuditReport

	// userAgent is the User-Agent header for sitemap fetches.
	userAgent string

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(v *Validator) {
		v.client = client
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(v *Validator) {
		v.userAgent = ua
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// New creates a Validator recording into the given report and probing
// contained URLs with the given prober.
func New(report *model.AuditReport, prober *probe.Prober, opts ...Option) *Validator {
	v := &Validator{
		prober:    prober,
		report:    report,
		userAgent: config.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(v)
	}

	if v.client == nil {
		v.client = &http.Client{Timeout: config.DefaultProbeTimeout}
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}

	return v
}

// Validate verifies the sitemap tree rooted at the domain's /sitemap.xml.
// The domain may be a bare host ("example.com") or carry a scheme; bare
// hosts are fetched over https. Validation never returns an error: every
// failure becomes a diagnostic and the audit continues.
func (v *Validator) Validate(ctx context.Context, domain string) {
	v.validateSitemap(ctx, sitemapURL(domain), make(map[string]bool))
}

// sitemapURL builds the sitemap URL for a domain or passes through a full
// sitemap URL unchanged.
func sitemapURL(domain string) string {
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		u, err := url.Parse(domain)
		if err == nil && strings.HasSuffix(u.Path, ".xml") {
			return domain
		}
		if err == nil {
			return fmt.Sprintf("%s://%s/sitemap.xml", u.Scheme, u.Host)
		}
	}
	return fmt.Sprintf("https://%s/sitemap.xml", domain)
}

// validateSitemap verifies one sitemap document, recursing into index
// entries. The visited set is keyed by sitemap URL so reference cycles
// terminate: a previously visited sitemap is a no-op.
func (v *Validator) validateSitemap(ctx context.Context, smURL string, visited map[string]bool) {
	if visited[smURL] {
		return
	}
	visited[smURL] = true

	v.logger.Debug("validating sitemap", "url", smURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, smURL, nil)
	if err != nil {
		v.issue("Error fetching sitemap: %v", err)
		return
	}
	req.Header.Set("User-Agent", v.userAgent)

	resp, err := v.client.Do(req)
	if err != nil {
		v.issue("Error fetching sitemap: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.issue("Sitemap not found at %s", smURL)
		return
	}

	doc, err := xmlquery.Parse(decodeBody(resp))
	if err != nil {
		v.issue("Invalid XML in sitemap: %v", err)
		return
	}

	root := xmlquery.FindOne(doc, "/*")
	if root == nil {
		v.issue("Invalid XML in sitemap: empty document at %s", smURL)
		return
	}

	if root.Data == "sitemapindex" {
		v.validateIndex(ctx, root, visited)
		return
	}
	v.validateURLSet(ctx, root)
}

// decodeBody converts the response body to UTF-8 when the Content-Type
// header declares a legacy charset. Bodies without a declared charset
// pass through untouched; the XML parser honors the document's own
// encoding declaration in that case.
func decodeBody(resp *http.Response) io.Reader {
	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return resp.Body
	}
	cs, ok := params["charset"]
	if !ok || strings.EqualFold(cs, "utf-8") {
		return resp.Body
	}
	decoded, err := charset.NewReaderLabel(cs, resp.Body)
	if err != nil {
		return resp.Body
	}
	return decoded
}

// validateIndex recurses into every sitemap referenced by an index
// document. Each referenced sitemap is validated in turn; sitemaps
// already visited in this tree are skipped by the guard.
func (v *Validator) validateIndex(ctx context.Context, root *xmlquery.Node, visited map[string]bool) {
	for _, loc := range xmlquery.Find(root, "//sitemap/loc") {
		ref := strings.TrimSpace(loc.InnerText())
		if ref == "" {
			continue
		}
		u, err := url.Parse(ref)
		if err != nil || u.Host == "" {
			v.issue("Invalid sitemap reference in index: %s", ref)
			continue
		}
		v.validateSitemap(ctx, ref, visited)
	}
}

// validateURLSet checks every entry of a leaf urlset: the contained URL
// must respond with 200 or 301, lastmod must parse as an ISO-8601 date,
// and priority (when present) must be a number in [0, 1].
func (v *Validator) validateURLSet(ctx context.Context, root *xmlquery.Node) {
	for _, entry := range xmlquery.Find(root, "//url") {
		if loc := xmlquery.FindOne(entry, "loc"); loc != nil {
			target := strings.TrimSpace(loc.InnerText())
			if target != "" {
				result := v.prober.Probe(ctx, target, true)
				if result.OK && result.StatusCode != http.StatusOK && result.StatusCode != http.StatusMovedPermanently {
					v.issue("Invalid status %d for sitemap URL: %s", result.StatusCode, target)
				}
			}
		}

		if lastmod := xmlquery.FindOne(entry, "lastmod"); lastmod != nil {
			v.checkLastmod(strings.TrimSpace(lastmod.InnerText()))
		}

		if priority := xmlquery.FindOne(entry, "priority"); priority != nil {
			v.checkPriority(strings.TrimSpace(priority.InnerText()))
		}
	}
}

// checkLastmod records a diagnostic unless the value parses in one of the
// accepted ISO-8601 layouts.
func (v *Validator) checkLastmod(value string) {
	for _, layout := range lastmodLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return
		}
	}
	v.issue("Invalid lastmod format in sitemap: %s", value)
}

// checkPriority records a diagnostic unless the value is a number in [0, 1].
func (v *Validator) checkPriority(value string) {
	prio, err := strconv.ParseFloat(value, 64)
	if err != nil {
		v.issue("Invalid priority format in sitemap: %s", value)
		return
	}
	if prio < 0 || prio > 1 {
		v.issue("Invalid priority value in sitemap: %s", value)
	}
}

// issue appends a formatted diagnostic to the report. Diagnostics are
// accumulated, never deduplicated.
func (v *Validator) issue(format string, args ...any) {
	v.report.SitemapIssues = append(v.report.SitemapIssues, fmt.Sprintf(format, args...))
}
