// Package config provides configuration structures and utilities for
// siteaudit. It defines the main configuration options for crawling,
// probing, rendering, and report output, plus the per-site YAML
// configuration file.
package config
