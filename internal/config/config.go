package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values mirror the behavior of typical site-audit tooling: probes are
// retried generously, page rendering waits are bounded, and crawl volume is
// capped at two effective levels.
const (
	// DefaultProbeTimeout is the timeout for a single reachability probe.
	// Probes are lightweight HEAD requests, so 10 seconds is generous.
	DefaultProbeTimeout = 10 * time.Second

	// DefaultProbeAttempts is the number of attempts per probed URL.
	// After this many failures the URL is recorded as a broken link
	// rather than raised as an error.
	DefaultProbeAttempts = 3

	// DefaultBackoffBase is the initial delay between probe retries.
	DefaultBackoffBase = 4 * time.Second

	// DefaultBackoffMultiplier doubles the delay on each retry.
	DefaultBackoffMultiplier = 2.0

	// DefaultBackoffCap is the maximum delay between probe retries.
	DefaultBackoffCap = 10 * time.Second

	// DefaultPageLoadTimeout is the maximum time to wait for browser
	// navigation to complete for a single page.
	DefaultPageLoadTimeout = 30 * time.Second

	// DefaultBodyWaitTimeout is the maximum time to wait for the document
	// body to appear after navigation.
	DefaultBodyWaitTimeout = 30 * time.Second

	// DefaultSettleDelay is the extra wait after the body appears, giving
	// client-rendered content time to settle before the HTML is captured.
	DefaultSettleDelay = 2 * time.Second

	// DefaultMaxLinksPerPage caps how many discovered links are processed
	// per page. 0 means unlimited.
	DefaultMaxLinksPerPage = 0

	// DefaultBatchSize is the number of concurrent audits when multiple
	// seed URLs are given. Each audit owns a browser tab and its own
	// session state, so this is kept modest.
	DefaultBatchSize = 3

	// DefaultUserAgent identifies siteaudit in HTTP probe requests.
	DefaultUserAgent = "Mozilla/5.0 (compatible; siteaudit/1.0)"

	// AppName is the application name used for XDG directory paths.
	AppName = "siteaudit"
)

// Config holds all configuration options for siteaudit.
// This struct is populated from CLI flags and passed through the application
// via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., ProbeConfig, RenderConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// Targets is the list of seed URLs to audit.
	// Must contain at least one absolute http(s) URL.
	Targets []string

	// ProbeTimeout is the timeout for a single URL reachability probe.
	ProbeTimeout time.Duration

	// PageLoadTimeout is the browser navigation timeout per page.
	PageLoadTimeout time.Duration

	// SettleDelay is the wait applied after navigation so client-rendered
	// content can settle before HTML capture.
	SettleDelay time.Duration

	// MaxLinksPerPage caps link processing per page. 0 means unlimited.
	MaxLinksPerPage int

	// BatchSize is the number of concurrent audits for multiple targets.
	BatchSize int

	// UserAgent is the User-Agent header sent with probe requests.
	UserAgent string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .siteaudit in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the
	// config file. Populated by LoadConfigFile and used during audits.
	SiteConfigs *File

	// JSONReport enables combined JSON report output to stdout.
	JSONReport bool

	// OutputDir is the directory where the three artifact documents
	// (technical discovery, issues summary, page info) are written.
	// Empty means the current directory.
	OutputDir string

	// DBDir is the directory path for storing the SQLite audit history
	// database. Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to persist completed audits.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeouts, batch
// size). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		ProbeTimeout:    DefaultProbeTimeout,
		PageLoadTimeout: DefaultPageLoadTimeout,
		SettleDelay:     DefaultSettleDelay,
		MaxLinksPerPage: DefaultMaxLinksPerPage,
		BatchSize:       DefaultBatchSize,
		UserAgent:       DefaultUserAgent,
	}
}

// Validate checks if the configuration is valid.
// It returns the first validation error found, or nil when the
// configuration is usable.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.ProbeTimeout <= 0 || c.PageLoadTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.SettleDelay < 0 {
		return ErrInvalidSettleDelay
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxLinksPerPage < 0 {
		return ErrInvalidMaxLinks
	}
	return nil
}

// XDGDataDir returns the XDG data directory for siteaudit.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/siteaudit
// On macOS: ~/Library/Application Support/siteaudit
// On Windows: %LOCALAPPDATA%\siteaudit
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for siteaudit.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
