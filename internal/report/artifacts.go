package report

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/siteaudit/siteaudit/internal/model"
)

// Artifact file name suffixes, one per derived report view.
const (
	suffixTechnicalDiscovery = "technical-discovery.json"
	suffixIssues             = "issues.json"
	suffixPageInfo           = "page-info.json"
)

// ArtifactWriter writes the three per-site artifact documents to a
// directory. File names are prefixed with the audited host, e.g.
// "example.com-issues.json", so audits of several sites can share one
// output directory.
type ArtifactWriter struct {
	dir string
}

// NewArtifactWriter creates an ArtifactWriter targeting dir. An empty
// dir means the current directory.
func NewArtifactWriter(dir string) *ArtifactWriter {
	if dir == "" {
		dir = "."
	}
	return &ArtifactWriter{dir: dir}
}

// Write emits the technical discovery, issues summary, and page info
// documents. Returns the total bytes written across all three files.
func (w *ArtifactWriter) Write(report *model.AuditReport) (int, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	prefix := hostLabel(report.Domain)
	total := 0

	documents := []struct {
		suffix string
		value  any
	}{
		{suffixTechnicalDiscovery, report.TechnicalDiscovery()},
		{suffixIssues, report.IssuesSummary()},
		{suffixPageInfo, report.PageInfo()},
	}
	for _, doc := range documents {
		n, err := w.writeFile(prefix+"-"+doc.suffix, doc.value)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Paths returns the artifact file paths that Write produces for the
// given report.
func (w *ArtifactWriter) Paths(report *model.AuditReport) []string {
	prefix := hostLabel(report.Domain)
	return []string{
		filepath.Join(w.dir, prefix+"-"+suffixTechnicalDiscovery),
		filepath.Join(w.dir, prefix+"-"+suffixIssues),
		filepath.Join(w.dir, prefix+"-"+suffixPageInfo),
	}
}

func (w *ArtifactWriter) writeFile(name string, v any) (int, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal %s: %w", name, err)
	}
	data = append(data, '\n')

	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", name, err)
	}
	return len(data), nil
}

// hostLabel extracts a file-name-safe host from a domain URL.
// "https://example.com" becomes "example.com".
func hostLabel(domain string) string {
	u, err := url.Parse(domain)
	if err != nil || u.Host == "" {
		return "site"
	}
	return u.Host
}
