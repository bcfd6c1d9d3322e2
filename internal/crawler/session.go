package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/siteaudit/siteaudit/internal/analyze"
	"github.com/siteaudit/siteaudit/internal/config"
	"github.com/siteaudit/siteaudit/internal/linkgraph"
	"github.com/siteaudit/siteaudit/internal/model"
	"github.com/siteaudit/siteaudit/internal/probe"
	"github.com/siteaudit/siteaudit/internal/render"
	"github.com/siteaudit/siteaudit/internal/sitemap"
)

// Session audits a single site. It owns every piece of shared crawl
// state (report, link graph, trackers, visited set), so concurrent
// sessions never interfere with each other.
//
// Design decision: The crawl is an iterative worklist rather than
// recursion because:
// 1. The two-level depth policy is explicit in the loop, not implicit
//    in call structure
// 2. The visited set lives in one place instead of threading through
//    call parameters
// 3. Deeply linked sites cannot exhaust the stack
type Session struct {
	seedURL string
	domain  string

	cfg        *config.Config
	siteConfig config.SiteConfig
	fetcher    render.Fetcher
	httpClient *http.Client
	logger     *slog.Logger

	report   *model.AuditReport
	graph    *linkgraph.Graph
	prober   *probe.Prober
	analyzer *analyze.Analyzer
	visited  map[string]bool
	probed   map[string]bool

	proberOpts []probe.Option
}

// workItem is one pending page in the crawl worklist.
type workItem struct {
	url   string
	depth int
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithHTTPClient replaces the HTTP client used for robots.txt fetches.
func WithHTTPClient(client *http.Client) SessionOption {
	return func(s *Session) {
		s.httpClient = client
	}
}

// WithSessionLogger sets a custom logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithProberOptions appends extra options to the session's prober,
// after the session defaults.
func WithProberOptions(opts ...probe.Option) SessionOption {
	return func(s *Session) {
		s.proberOpts = append(s.proberOpts, opts...)
	}
}

// NewSession creates a Session for one seed URL. The fetcher is owned by
// the caller and may be shared between sessions; everything else is
// per-session.
func NewSession(seedURL string, fetcher render.Fetcher, cfg *config.Config, opts ...SessionOption) (*Session, error) {
	u, err := url.Parse(seedURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid seed URL %q", seedURL)
	}
	domain := fmt.Sprintf("%s://%s", u.Scheme, u.Host)

	s := &Session{
		seedURL:    seedURL,
		domain:     domain,
		cfg:        cfg,
		fetcher:    fetcher,
		httpClient: &http.Client{Timeout: cfg.ProbeTimeout},
		logger:     slog.Default(),
		report:     model.NewAuditReport(domain, seedURL),
		graph:      linkgraph.New(seedURL),
		visited:    make(map[string]bool),
		probed:     make(map[string]bool),
	}
	if cfg.SiteConfigs != nil {
		s.siteConfig = cfg.SiteConfigs.GetSiteConfig(u.Hostname())
	}
	for _, opt := range opts {
		opt(s)
	}

	// The prober disables redirect following on its client, so it gets
	// its own instead of sharing the session client.
	proberOpts := []probe.Option{
		probe.WithHTTPClient(&http.Client{Timeout: cfg.ProbeTimeout}),
		probe.WithUserAgent(cfg.UserAgent),
		probe.WithSiteConfig(s.siteConfig),
		probe.WithLogger(s.logger),
	}
	proberOpts = append(proberOpts, s.proberOpts...)
	s.prober = probe.New(s.report, proberOpts...)
	s.analyzer = analyze.New(s.report, analyze.WithLogger(s.logger))
	return s, nil
}

// Run executes the audit: robots and sitemap checks, then the two-level
// page crawl, then graph finalization. Page-level failures are recorded
// in the report and never abort the run; only context cancellation does.
func (s *Session) Run(ctx context.Context) (*model.AuditReport, error) {
	s.logger.Info("audit started", "target", s.seedURL)

	s.analyzer.SetRobots(s.fetchRobots(ctx))

	validator := sitemap.New(s.report, s.prober,
		sitemap.WithHTTPClient(s.httpClient),
		sitemap.WithUserAgent(s.cfg.UserAgent),
		sitemap.WithLogger(s.logger),
	)
	validator.Validate(ctx, s.domain)

	worklist := []workItem{{url: s.seedURL, depth: 0}}
	for len(worklist) > 0 {
		if err := ctx.Err(); err != nil {
			return s.report, err
		}
		item := worklist[0]
		worklist = worklist[1:]
		if s.visited[item.url] {
			continue
		}
		s.visited[item.url] = true

		discovered := s.auditPage(ctx, item)
		if item.depth == 0 {
			for _, link := range discovered {
				worklist = append(worklist, workItem{url: link, depth: 1})
			}
		}
	}

	s.finalize()
	s.logger.Info("audit complete",
		"target", s.seedURL,
		"pages", len(s.report.Pages),
		"sitemap_issues", len(s.report.SitemapIssues),
	)
	return s.report, nil
}

// auditPage fetches and analyzes one page, probes every link on it, and
// returns the in-scope links that qualify for expansion.
func (s *Session) auditPage(ctx context.Context, item workItem) []string {
	s.logger.Info("analyzing page", "url", item.url, "depth", item.depth)

	record := &model.PageRecord{URL: item.url}
	s.report.Pages[item.url] = record
	s.graph.Touch(item.url)

	html, err := s.fetcher.Fetch(ctx, item.url)
	if err != nil {
		s.logger.Warn("page fetch failed", "url", item.url, "error", err)
		return nil
	}
	doc, err := analyze.ParseHTML(html)
	if err != nil {
		s.logger.Warn("page parse failed", "url", item.url, "error", err)
		return nil
	}

	record.Fetched = true
	record.Metadata = s.analyzer.ExtractMetadata(doc, item.url)
	record.Indexability = s.analyzer.CheckIndexability(doc, item.url)
	record.StructuredData = s.analyzer.AnalyzeStructuredData(doc, item.url)

	return s.processLinks(ctx, doc, item.url)
}

// processLinks resolves, probes, and graphs every anchor on the page.
// A malformed href is skipped without touching the rest of the page's
// links. Each distinct URL is probed once per session.
func (s *Session) processLinks(ctx context.Context, doc *goquery.Document, pageURL string) []string {
	maxLinks := s.cfg.MaxLinksPerPage
	if s.siteConfig.MaxLinksPerPage != 0 {
		maxLinks = s.siteConfig.MaxLinksPerPage
	}

	var expandable []string
	processed := 0
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if ctx.Err() != nil {
			return false
		}
		if maxLinks > 0 && processed >= maxLinks {
			return false
		}

		href := a.AttrOr("href", "")
		target, ok := linkgraph.Resolve(pageURL, href)
		if !ok {
			return true
		}
		processed++

		internal := s.graph.InScope(target)
		if internal {
			s.graph.Record(pageURL, target)
			if !s.visited[target] {
				expandable = append(expandable, target)
			}
		}

		if !s.probed[target] {
			s.probed[target] = true
			s.prober.Probe(ctx, target, internal)
		}
		return true
	})
	return expandable
}

// fetchRobots retrieves robots.txt once per session. Missing or
// unreachable files yield empty rules, which allow everything.
func (s *Session) fetchRobots(ctx context.Context) *analyze.RobotsRules {
	robotsURL := s.domain + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return analyze.ParseRobots("")
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Debug("robots.txt fetch failed", "url", robotsURL, "error", err)
		return analyze.ParseRobots("")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return analyze.ParseRobots("")
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return analyze.ParseRobots("")
	}
	return analyze.ParseRobots(string(body))
}

// finalize computes the graph-derived report fields once traversal has
// stopped adding links.
func (s *Session) finalize() {
	for pageURL, record := range s.report.Pages {
		record.Linking = s.graph.Metrics(pageURL)
	}
	s.report.OrphanPages = s.graph.Orphans()
	s.report.DepthDistribution = s.graph.DepthDistribution()
	s.report.Linking = s.graph.Summary()
	s.report.CrawlIssues.RedirectLoops = s.report.RedirectLoops
}
