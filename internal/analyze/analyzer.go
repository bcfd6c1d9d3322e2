package analyze

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/siteaudit/siteaudit/internal/model"
)

// Analyzer extracts findings from rendered pages and accumulates the
// cross-page state (duplicate trackers, issue counters, schema catalog)
// into the session's report. One Analyzer exists per audit session and
// is not safe for concurrent use.
type Analyzer struct {
	report *model.AuditReport
	robots *RobotsRules
	logger *slog.Logger

	// Duplicate trackers map the seen value to the URLs exhibiting it.
	// The first occurrence registers the value; every later occurrence
	// increments the matching duplicate counter by one.
	titlesSeen       map[string][]string
	descriptionsSeen map[string][]string
	contentSeen      map[string][]string

	detectors []schemaDetector
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithRobots supplies the parsed robots.txt rules for the site. Without
// rules every URL is considered allowed.
func WithRobots(rules *RobotsRules) Option {
	return func(a *Analyzer) {
		a.robots = rules
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// New creates an Analyzer recording into the given report.
func New(report *model.AuditReport, opts ...Option) *Analyzer {
	a := &Analyzer{
		report:           report,
		logger:           slog.Default(),
		titlesSeen:       make(map[string][]string),
		descriptionsSeen: make(map[string][]string),
		contentSeen:      make(map[string][]string),
	}
	a.detectors = []schemaDetector{
		jsonLDDetector{},
		microdataDetector{},
		rdfaDetector{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetRobots installs the robots.txt rules once they have been fetched.
// Pages analyzed before this call were checked against the allow-all
// default.
func (a *Analyzer) SetRobots(rules *RobotsRules) {
	a.robots = rules
}

// ParseHTML parses rendered HTML into a queryable document.
func ParseHTML(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}
