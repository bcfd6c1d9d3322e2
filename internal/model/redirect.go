package model

// RedirectChain records the full redirect sequence observed while probing a
// URL. A chain is only recorded when at least one redirect hop occurred.
type RedirectChain struct {
	// Chain is the ordered list of URLs visited, ending with the URL that
	// produced the final response. Always has at least one element.
	Chain []string `json:"chain"`

	// Count is the number of redirect hops (len(Chain) - 1).
	Count int `json:"count"`

	// LatencySeconds is the wall-clock time spent following the chain.
	LatencySeconds float64 `json:"latency"`

	// FinalStatus is the HTTP status of the terminal response.
	FinalStatus int `json:"final_status"`

	// HasLoop is true when the chain revisits a URL before reaching its
	// final response, i.e. the set of visited URLs is smaller than the
	// sequence.
	HasLoop bool `json:"has_loop"`
}

// DetectLoop reports whether the chain contains a repeated URL and updates
// HasLoop accordingly.
func (rc *RedirectChain) DetectLoop() bool {
	seen := make(map[string]bool, len(rc.Chain))
	for _, u := range rc.Chain {
		if seen[u] {
			rc.HasLoop = true
			return true
		}
		seen[u] = true
	}
	rc.HasLoop = false
	return false
}

// BrokenLinkStatusError is the BrokenLinks key used for URLs that failed with
// a network error rather than an HTTP status.
const BrokenLinkStatusError = "error"

// BrokenLink is a single unreachable or erroring link discovered during the
// crawl. Entries are grouped by status code (or BrokenLinkStatusError) in
// the report's BrokenLinks map.
type BrokenLink struct {
	// URL is the link target that failed.
	URL string `json:"url"`

	// IsInternal is true when the link targets the crawl's own domain.
	IsInternal bool `json:"is_internal"`

	// RedirectChain is the redirect chain observed before the failure,
	// if any hops occurred.
	RedirectChain *RedirectChain `json:"redirect_chain,omitempty"`

	// Error is the network error string for BrokenLinkStatusError entries.
	Error string `json:"error,omitempty"`
}
