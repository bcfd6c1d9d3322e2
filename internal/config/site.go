package config

// SiteConfig holds site-specific configuration for a single domain.
// This allows customizing audit behavior per site, e.g. sending an
// authentication cookie so gated pages can be crawled.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send when probing this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in probe requests
	// to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MaxLinksPerPage overrides the global per-page link cap for this
	// site. If zero, the global value is used.
	MaxLinksPerPage int `yaml:"maxLinksPerPage,omitempty"`
}

// File represents the structure of the .siteaudit configuration file.
type File struct {
	// Sites maps domains to their site-specific configurations.
	// Keys are bare hostnames (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific domain.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(domain string) SiteConfig {
	result := cf.Defaults

	if siteConfig, ok := cf.Sites[domain]; ok {
		if siteConfig.Cookie != "" {
			result.Cookie = siteConfig.Cookie
		}
		if siteConfig.MaxLinksPerPage != 0 {
			result.MaxLinksPerPage = siteConfig.MaxLinksPerPage
		}
		if len(siteConfig.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range siteConfig.Headers {
				result.Headers[k] = v
			}
		}
	}

	return result
}
