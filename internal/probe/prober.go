package probe

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/siteaudit/siteaudit/internal/config"
	"github.com/siteaudit/siteaudit/internal/model"
)

// maxHops caps the number of redirect hops followed for a single probe.
// Chains longer than this are recorded as-is with the last observed status.
const maxHops = 10

// Prober checks URL reachability and records outcomes into the session's
// audit report. All mutation happens on the crawl goroutine; the Prober
// itself holds no cross-session state.
type Prober struct {
	// client is the HTTP client used for probe requests. Its redirect
	// handling is disabled; the Prober follows Location headers itself.
	client *http.Client

	// report receives broken links, redirect chains, and the loop counter.
	report *model.AuditReport

	// userAgent is the User-Agent header for probe requests.
	userAgent string

	// cookie is an optional Cookie header from the site configuration.
	cookie string

	// headers are optional extra request headers from the site configuration.
	headers map[string]string

	// attempts is the number of tries per URL before the URL is recorded
	// as an "error" broken link.
	attempts int

	// backoffBase, backoffMultiplier, and backoffCap tune the delay
	// between retries.
	backoffBase       time.Duration
	backoffMultiplier float64
	backoffCap        time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// Result is the outcome of probing one URL.
type Result struct {
	// URL is the probed URL.
	URL string

	// OK is true when a final HTTP response was obtained, regardless of
	// its status code. False means the URL failed at the network level
	// after all retries.
	OK bool

	// StatusCode is the status of the terminal response when OK.
	StatusCode int

	// FinalURL is the URL that produced the terminal response.
	FinalURL string

	// Chain is the redirect chain, present when at least one hop occurred.
	Chain *model.RedirectChain
}

// Option configures a Prober.
type Option func(*Prober)

// WithHTTPClient replaces the default HTTP client. The client's redirect
// policy is overridden; callers only control transport and timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Prober) {
		p.client = client
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(p *Prober) {
		p.userAgent = ua
	}
}

// WithSiteConfig applies per-site cookie and header overrides.
func WithSiteConfig(site config.SiteConfig) Option {
	return func(p *Prober) {
		p.cookie = site.Cookie
		p.headers = site.Headers
	}
}

// WithAttempts sets the number of attempts per URL. Values below 1 are
// ignored.
func WithAttempts(n int) Option {
	return func(p *Prober) {
		if n >= 1 {
			p.attempts = n
		}
	}
}

// WithBackoff tunes the retry delay schedule. Used by tests to avoid
// multi-second waits.
func WithBackoff(base, maxDelay time.Duration, multiplier float64) Option {
	return func(p *Prober) {
		p.backoffBase = base
		p.backoffCap = maxDelay
		p.backoffMultiplier = multiplier
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prober) {
		p.logger = logger
	}
}

// New creates a Prober that records outcomes into the given report.
func New(report *model.AuditReport, opts ...Option) *Prober {
	p := &Prober{
		report:            report,
		userAgent:         config.DefaultUserAgent,
		attempts:          config.DefaultProbeAttempts,
		backoffBase:       config.DefaultBackoffBase,
		backoffMultiplier: config.DefaultBackoffMultiplier,
		backoffCap:        config.DefaultBackoffCap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.client == nil {
		p.client = &http.Client{Timeout: config.DefaultProbeTimeout}
	}
	// Redirects are followed manually in followChain.
	p.client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// Probe checks the reachability of rawURL. Network failures are retried
// with exponential backoff; after the final attempt the URL is recorded
// as an "error" broken link and Probe returns a Result with OK=false.
// HTTP statuses >= 400 are recorded as broken links under their numeric
// status. Redirect chains with one or more hops are recorded, and chains
// revisiting a URL increment the session's redirect loop counter.
func (p *Prober) Probe(ctx context.Context, rawURL string, isInternal bool) *Result {
	var result *Result

	operation := func() error {
		r, err := p.followChain(ctx, rawURL)
		if err != nil {
			return err
		}
		result = r
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.backoffBase
	bo.Multiplier = p.backoffMultiplier
	bo.MaxInterval = p.backoffCap
	bo.RandomizationFactor = 0

	err := backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(p.attempts-1)), ctx))
	if err != nil {
		// Persistent network failure: downgrade to a broken-link record.
		p.logger.Debug("probe failed after retries", "url", rawURL, "error", err)
		p.report.BrokenLinks[model.BrokenLinkStatusError] = append(
			p.report.BrokenLinks[model.BrokenLinkStatusError],
			model.BrokenLink{URL: rawURL, IsInternal: isInternal, Error: err.Error()},
		)
		return &Result{URL: rawURL, OK: false}
	}

	p.record(result, isInternal)
	return result
}

// followChain issues one probe attempt, following redirects hop by hop.
// It returns an error only for network-level failures, which are the
// retryable category.
func (p *Prober) followChain(ctx context.Context, rawURL string) (*Result, error) {
	chain := []string{rawURL}
	seen := map[string]bool{rawURL: true}
	current := rawURL
	start := time.Now()

	var status int
	var looped bool

	for hop := 0; hop < maxHops; hop++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, current, nil)
		if err != nil {
			// A malformed URL will not become valid on retry.
			return nil, backoff.Permanent(err)
		}
		p.setHeaders(req)

		resp, err := p.client.Do(req)
		if err != nil {
			return nil, err
		}
		resp.Body.Close()
		status = resp.StatusCode

		if status < 300 || status >= 400 {
			break
		}

		loc := resp.Header.Get("Location")
		if loc == "" {
			break
		}
		next, err := resp.Request.URL.Parse(loc)
		if err != nil {
			break
		}

		current = next.String()
		chain = append(chain, current)
		if seen[current] {
			// The chain revisited a URL: record the loop and stop
			// following. The loop is the chain's terminal result.
			looped = true
			break
		}
		seen[current] = true
	}

	result := &Result{
		URL:        rawURL,
		OK:         true,
		StatusCode: status,
		FinalURL:   current,
	}

	if len(chain) > 1 {
		result.Chain = &model.RedirectChain{
			Chain:          chain,
			Count:          len(chain) - 1,
			LatencySeconds: time.Since(start).Seconds(),
			FinalStatus:    status,
			HasLoop:        looped,
		}
		result.Chain.DetectLoop()
	}

	return result, nil
}

// record files the probe outcome into the session report.
func (p *Prober) record(r *Result, isInternal bool) {
	if r.Chain != nil {
		p.report.RedirectChains[r.URL] = r.Chain
		if r.Chain.HasLoop {
			p.report.RedirectLoops++
		}
	}

	if r.StatusCode >= 400 {
		key := strconv.Itoa(r.StatusCode)
		p.report.BrokenLinks[key] = append(p.report.BrokenLinks[key], model.BrokenLink{
			URL:           r.URL,
			IsInternal:    isInternal,
			RedirectChain: p.report.RedirectChains[r.URL],
		})
	}
}

// setHeaders applies the configured User-Agent, cookie, and extra headers.
func (p *Prober) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", p.userAgent)
	if p.cookie != "" {
		req.Header.Set("Cookie", p.cookie)
	}
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}
}
