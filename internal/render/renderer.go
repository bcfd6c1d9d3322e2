package render

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/siteaudit/siteaudit/internal/config"
)

// Fetcher retrieves the rendered HTML for a page. Implementations own
// whatever browser or transport resources they need; Close releases them.
type Fetcher interface {
	// Fetch navigates to pageURL and returns the serialized DOM after
	// scripts have run. A non-nil error marks the page as unfetchable,
	// not the whole crawl.
	Fetch(ctx context.Context, pageURL string) (string, error)

	// Close shuts down the underlying browser or transport.
	Close()
}

// RodFetcher renders pages via a headless Chromium process managed by
// Rod. A single browser is shared across pages; each Fetch opens and
// closes its own tab. Create with New; call Close when the crawl ends.
type RodFetcher struct {
	browser *rod.Browser

	pageLoadTimeout time.Duration
	bodyWaitTimeout time.Duration
	settleDelay     time.Duration
	userAgent       string
	cookie          string
	headers         map[string]string
	logger          *slog.Logger
}

// Option configures a RodFetcher.
type Option func(*RodFetcher)

// WithTimeouts overrides the navigation timeout, the wait for the body
// element, and the post-load settle delay.
func WithTimeouts(pageLoad, bodyWait, settle time.Duration) Option {
	return func(f *RodFetcher) {
		f.pageLoadTimeout = pageLoad
		f.bodyWaitTimeout = bodyWait
		f.settleDelay = settle
	}
}

// WithUserAgent sets the User-Agent reported by the browser.
func WithUserAgent(ua string) Option {
	return func(f *RodFetcher) {
		f.userAgent = ua
	}
}

// WithSiteConfig applies per-site cookie and header overrides to every
// page the fetcher opens.
func WithSiteConfig(sc config.SiteConfig) Option {
	return func(f *RodFetcher) {
		f.cookie = sc.Cookie
		f.headers = sc.Headers
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *RodFetcher) {
		f.logger = logger
	}
}

// New launches a headless Chromium process and connects to it. Launch or
// connection failure is the one error that aborts an audit session, so
// callers should treat it as fatal.
func New(opts ...Option) (*RodFetcher, error) {
	f := &RodFetcher{
		pageLoadTimeout: config.DefaultPageLoadTimeout,
		bodyWaitTimeout: config.DefaultBodyWaitTimeout,
		settleDelay:     config.DefaultSettleDelay,
		userAgent:       config.DefaultUserAgent,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}

	controlURL, err := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Launch()
	if err != nil {
		return nil, fmt.Errorf("launch headless browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to headless browser: %w", err)
	}
	f.browser = browser
	return f, nil
}

// Fetch navigates to pageURL in a fresh tab, waits for the document body
// and a settle delay so late scripts can mutate the DOM, then returns
// the rendered HTML.
func (f *RodFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	page, err := stealth.Page(f.browser)
	if err != nil {
		return "", fmt.Errorf("create tab: %w", err)
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, f.pageLoadTimeout)
	defer cancel()
	page = page.Context(navCtx)

	if err := f.applyOverrides(page, pageURL); err != nil {
		return "", err
	}

	if err := page.Navigate(pageURL); err != nil {
		return "", fmt.Errorf("navigate to %s: %w", pageURL, err)
	}

	bodyCtx, cancelBody := context.WithTimeout(ctx, f.bodyWaitTimeout)
	defer cancelBody()
	if _, err := page.Context(bodyCtx).Element("body"); err != nil {
		return "", fmt.Errorf("wait for body of %s: %w", pageURL, err)
	}

	select {
	case <-time.After(f.settleDelay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("read HTML of %s: %w", pageURL, err)
	}
	f.logger.Debug("rendered page", "url", pageURL, "bytes", len(html))
	return html, nil
}

// applyOverrides installs the user agent, extra headers, and the site
// cookie on the page before navigation.
func (f *RodFetcher) applyOverrides(page *rod.Page, pageURL string) error {
	if f.userAgent != "" {
		ua := &proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent}
		if err := page.SetUserAgent(ua); err != nil {
			return fmt.Errorf("set user agent: %w", err)
		}
	}

	if len(f.headers) > 0 {
		pairs := make([]string, 0, len(f.headers)*2)
		for k, v := range f.headers {
			pairs = append(pairs, k, v)
		}
		if _, err := page.SetExtraHeaders(pairs); err != nil {
			return fmt.Errorf("set extra headers: %w", err)
		}
	}

	if f.cookie != "" {
		u, err := url.Parse(pageURL)
		if err != nil {
			return fmt.Errorf("parse page URL for cookie: %w", err)
		}
		name, value := splitCookie(f.cookie)
		err = page.SetCookies([]*proto.NetworkCookieParam{{
			Name:   name,
			Value:  value,
			Domain: u.Hostname(),
			Path:   "/",
		}})
		if err != nil {
			return fmt.Errorf("set cookie: %w", err)
		}
	}
	return nil
}

// splitCookie splits a "name=value" pair. A bare value is stored under
// the name "cookie" so misconfigured sites still get something sent.
func splitCookie(raw string) (name, value string) {
	for i := 0; i < len(raw); i++ {
		if raw[i] == '=' {
			return raw[:i], raw[i+1:]
		}
	}
	return "cookie", raw
}

// Close shuts down the headless browser process.
func (f *RodFetcher) Close() {
	_ = f.browser.Close()
}
