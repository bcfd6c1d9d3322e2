package analyze

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/siteaudit/siteaudit/internal/model"
)

// Canonical issue names recorded per page and counted site-wide.
const (
	issueMissingCanonical  = "missing_canonical"
	issueRelativeURL       = "relative_url"
	issueDifferentDomain   = "points_to_different_domain"
	issueDifferentURL      = "points_to_different_url"
	noindexReasonMetaTag   = "meta_robots_noindex"
	defaultRobotsDirective = "index,follow"
)

// CheckIndexability derives the indexability verdict for a page and
// updates the session's canonical and non-indexable counters.
func (a *Analyzer) CheckIndexability(doc *goquery.Document, pageURL string) *model.Indexability {
	idx := &model.Indexability{
		RobotsAllowed:            a.robots.Allowed(pageURL),
		MetaRobots:               defaultRobotsDirective,
		Canonical:                pageURL,
		CanonicalSelfReferencing: true,
		CanonicalIssues:          []string{},
	}

	if content, ok := doc.Find(`meta[name="robots"]`).First().Attr("content"); ok && content != "" {
		idx.MetaRobots = strings.ToLower(content)
		if strings.Contains(idx.MetaRobots, "noindex") {
			idx.NoindexReason = noindexReasonMetaTag
			a.report.CrawlIssues.NonIndexable++
		}
	}

	a.checkCanonical(doc, pageURL, idx)
	return idx
}

// checkCanonical runs the canonical link checks in order. The
// different-URL issue is suppressed when an earlier check already
// flagged the canonical, so each page reports the most specific problem.
func (a *Analyzer) checkCanonical(doc *goquery.Document, pageURL string, idx *model.Indexability) {
	href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href")
	if !ok || href == "" {
		a.canonicalIssue(idx, issueMissingCanonical)
		return
	}
	idx.Canonical = href

	if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
		a.canonicalIssue(idx, issueRelativeURL)
	}

	canonicalHost := hostOf(href)
	if canonicalHost != "" && canonicalHost != hostOf(pageURL) {
		a.canonicalIssue(idx, issueDifferentDomain)
	}

	if href != pageURL {
		idx.CanonicalSelfReferencing = false
		if len(idx.CanonicalIssues) == 0 {
			a.canonicalIssue(idx, issueDifferentURL)
		}
	}
}

func (a *Analyzer) canonicalIssue(idx *model.Indexability, name string) {
	idx.CanonicalIssues = append(idx.CanonicalIssues, name)
	a.report.CanonicalIssues[name]++
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
