package analyze

import (
	"net/url"
	"strings"
)

// RobotsRules holds the Disallow rules parsed from a site's robots.txt.
// The zero value (and nil) allows everything, matching the behavior for
// sites with no robots.txt at all.
type RobotsRules struct {
	disallowed []string
}

// ParseRobots extracts Disallow directives from robots.txt content.
// Agent groups are ignored: a path disallowed for any agent counts as
// disallowed for the audit.
func ParseRobots(content string) *RobotsRules {
	rules := &RobotsRules{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		key, value, found := strings.Cut(line, ":")
		if !found || !strings.EqualFold(strings.TrimSpace(key), "disallow") {
			continue
		}
		path := strings.TrimSpace(value)
		if path != "" {
			rules.disallowed = append(rules.disallowed, path)
		}
	}
	return rules
}

// Allowed reports whether rawURL may be crawled. A URL is disallowed when
// its path starts with any Disallow rule's path prefix.
func (r *RobotsRules) Allowed(rawURL string) bool {
	if r == nil || len(r.disallowed) == 0 {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	for _, rule := range r.disallowed {
		if strings.HasPrefix(path, rule) {
			return false
		}
	}
	return true
}
