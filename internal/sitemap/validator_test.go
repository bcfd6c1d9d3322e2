package sitemap

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/siteaudit/siteaudit/internal/model"
	"github.com/siteaudit/siteaudit/internal/probe"
)

// newValidator wires a validator and prober onto a fresh report with fast
// retry settings.
func newValidator(report *model.AuditReport) *Validator {
	prober := probe.New(report, probe.WithBackoff(time.Millisecond, 5*time.Millisecond, 2.0))
	return New(report, prober)
}

// issuesContaining counts sitemap issues containing the given substring.
func issuesContaining(report *model.AuditReport, substr string) int {
	count := 0
	for _, issue := range report.SitemapIssues {
		if strings.Contains(issue, substr) {
			count++
		}
	}
	return count
}

// TestValidateLeafSitemap exercises URL status, lastmod, and priority
// checks on a single urlset document.
func TestValidateLeafSitemap(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url>
    <loc>%[1]s/page</loc>
    <lastmod>2024-06-01</lastmod>
    <priority>0.8</priority>
  </url>
  <url>
    <loc>%[1]s/gone</loc>
    <lastmod>yesterday</lastmod>
    <priority>1.5</priority>
  </url>
  <url>
    <loc>%[1]s/page</loc>
    <priority>abc</priority>
  </url>
</urlset>`, server.URL)
	})

	report := model.NewAuditReport(server.URL, server.URL)
	newValidator(report).Validate(context.Background(), server.URL)

	if got := issuesContaining(report, "Invalid status 404"); got != 1 {
		t.Errorf("expected 1 bad-status issue, got %d: %v", got, report.SitemapIssues)
	}
	if got := issuesContaining(report, "Invalid lastmod format"); got != 1 {
		t.Errorf("expected 1 lastmod issue, got %d: %v", got, report.SitemapIssues)
	}
	if got := issuesContaining(report, "Invalid priority value"); got != 1 {
		t.Errorf("expected 1 priority-range issue, got %d: %v", got, report.SitemapIssues)
	}
	if got := issuesContaining(report, "Invalid priority format"); got != 1 {
		t.Errorf("expected 1 priority-format issue, got %d: %v", got, report.SitemapIssues)
	}
}

// TestValidateSitemapIndex verifies that an index referencing a healthy
// and a missing leaf records one issue and still validates the healthy
// leaf.
func TestValidateSitemapIndex(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>%[1]s/sitemap-good.xml</loc></sitemap>
  <sitemap><loc>%[1]s/sitemap-missing.xml</loc></sitemap>
</sitemapindex>`, server.URL)
	})
	mux.HandleFunc("/sitemap-good.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<urlset><url><loc>%s/page</loc></url></urlset>`, server.URL)
	})
	// /sitemap-missing.xml has no handler and returns 404.

	report := model.NewAuditReport(server.URL, server.URL)
	newValidator(report).Validate(context.Background(), server.URL)

	if got := issuesContaining(report, "Sitemap not found"); got != 1 {
		t.Errorf("expected 1 not-found issue, got %d: %v", got, report.SitemapIssues)
	}
	// The healthy leaf was still validated: its URL produced no issue,
	// so not-found is the only diagnostic.
	if len(report.SitemapIssues) != 1 {
		t.Errorf("expected exactly 1 issue, got %v", report.SitemapIssues)
	}
}

// TestValidateSitemapCycle verifies that mutually referencing indexes
// terminate via the visited-set guard.
func TestValidateSitemapCycle(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	var fetches int
	index := func(target string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			fetches++
			fmt.Fprintf(w, `<sitemapindex><sitemap><loc>%s</loc></sitemap></sitemapindex>`, target)
		}
	}
	mux.HandleFunc("/sitemap.xml", index(server.URL+"/sitemap-b.xml"))
	mux.HandleFunc("/sitemap-b.xml", index(server.URL+"/sitemap.xml"))

	report := model.NewAuditReport(server.URL, server.URL)

	done := make(chan struct{})
	go func() {
		defer close(done)
		newValidator(report).Validate(context.Background(), server.URL)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("cyclic sitemap validation did not terminate")
	}

	if fetches != 2 {
		t.Errorf("expected each sitemap fetched once, got %d fetches", fetches)
	}
}

// TestValidateSitemapErrors covers the non-200 and malformed XML paths.
func TestValidateSitemapErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing sitemap", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		report := model.NewAuditReport(server.URL, server.URL)
		newValidator(report).Validate(context.Background(), server.URL)

		if got := issuesContaining(report, "Sitemap not found"); got != 1 {
			t.Errorf("expected not-found issue, got %v", report.SitemapIssues)
		}
	})

	t.Run("malformed xml", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<urlset><url></wrong>`)
		}))
		defer server.Close()

		report := model.NewAuditReport(server.URL, server.URL)
		newValidator(report).Validate(context.Background(), server.URL)

		if got := issuesContaining(report, "Invalid XML"); got != 1 {
			t.Errorf("expected invalid-XML issue, got %v", report.SitemapIssues)
		}
	})

	t.Run("unreachable host", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		dead := server.URL
		server.Close()

		report := model.NewAuditReport(dead, dead)
		newValidator(report).Validate(context.Background(), dead)

		if got := issuesContaining(report, "Error fetching sitemap"); got != 1 {
			t.Errorf("expected fetch-error issue, got %v", report.SitemapIssues)
		}
	})
}
