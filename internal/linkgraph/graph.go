package linkgraph

import (
	"net/url"
	"sort"
	"strings"

	"github.com/siteaudit/siteaudit/internal/model"
)

// skippedSchemes are link schemes that never produce crawlable URLs.
var skippedSchemes = []string{"mailto", "tel", "javascript", "data"}

// Graph is the internal link graph of one audit session. Pages enter the
// graph when a link to or from them is recorded. Depth is fixed at first
// discovery and never recomputed, so it reflects the shortest path the
// crawl actually took, not the shortest possible path.
type Graph struct {
	host string

	outbound map[string]map[string]struct{}
	inbound  map[string]map[string]struct{}
	depths   map[string]int
}

// New creates a graph scoped to the host of seedURL. The seed itself is
// registered at depth 0.
func New(seedURL string) *Graph {
	g := &Graph{
		host:     hostOf(seedURL),
		outbound: make(map[string]map[string]struct{}),
		inbound:  make(map[string]map[string]struct{}),
		depths:   make(map[string]int),
	}
	g.depths[seedURL] = 0
	return g
}

// Resolve turns an href found on basePage into an absolute URL.
// Returns ok=false for unparsable hrefs, schemeless results, and the
// schemes that never lead to pages (mailto, tel, javascript, data).
func Resolve(basePage, href string) (string, bool) {
	base, err := url.Parse(basePage)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme == "" {
		return "", false
	}
	for _, scheme := range skippedSchemes {
		if strings.HasPrefix(abs.Scheme, scheme) {
			return "", false
		}
	}
	return abs.String(), true
}

// InScope reports whether an absolute URL belongs to the audited site:
// same host as the seed, or its www. variant.
func (g *Graph) InScope(absURL string) bool {
	host := hostOf(absURL)
	return host == g.host || host == "www."+g.host
}

// Record adds an in-scope link from one page to another. The target's
// depth is assigned on first discovery as the source's depth plus one.
func (g *Graph) Record(from, to string) {
	if g.outbound[from] == nil {
		g.outbound[from] = make(map[string]struct{})
	}
	g.outbound[from][to] = struct{}{}

	if g.inbound[to] == nil {
		g.inbound[to] = make(map[string]struct{})
	}
	g.inbound[to][from] = struct{}{}

	if _, known := g.depths[to]; !known {
		g.depths[to] = g.Depth(from) + 1
	}
}

// Touch registers a page with outbound tracking even if it links to
// nothing, so leaf pages still appear in orphan and depth statistics.
func (g *Graph) Touch(page string) {
	if g.outbound[page] == nil {
		g.outbound[page] = make(map[string]struct{})
	}
}

// Depth returns the crawl depth of a page, or -1 if it was never
// discovered.
func (g *Graph) Depth(page string) int {
	if d, ok := g.depths[page]; ok {
		return d
	}
	return -1
}

// Metrics returns the per-page linking metrics for a page.
func (g *Graph) Metrics(page string) model.LinkingMetrics {
	return model.LinkingMetrics{
		OutboundLinks: len(g.outbound[page]),
		InboundLinks:  len(g.inbound[page]),
		Depth:         g.Depth(page),
	}
}

// Orphans returns the tracked pages with zero inbound links, sorted.
// Call after traversal completes; links recorded later would invalidate
// the result.
func (g *Graph) Orphans() []string {
	var orphans []string
	for page := range g.outbound {
		if len(g.inbound[page]) == 0 {
			orphans = append(orphans, page)
		}
	}
	sort.Strings(orphans)
	return orphans
}

// DepthDistribution maps crawl depth to the number of tracked pages
// first discovered at that depth.
func (g *Graph) DepthDistribution() map[int]int {
	dist := make(map[int]int)
	for page := range g.outbound {
		if d := g.Depth(page); d >= 0 {
			dist[d]++
		}
	}
	return dist
}

// Summary returns the site-wide linking summary.
func (g *Graph) Summary() model.LinkingSummary {
	total := 0
	for _, targets := range g.outbound {
		total += len(targets)
	}
	return model.LinkingSummary{
		TotalPages:         len(g.outbound),
		TotalInternalLinks: total,
		OrphanPagesCount:   len(g.Orphans()),
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
