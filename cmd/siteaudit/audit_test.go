package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/siteaudit/siteaudit/internal/config"
)

// TestNewAuditCmd tests the audit command creation.
func TestNewAuditCmd(t *testing.T) {
	t.Parallel()

	cmd := NewAuditCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "audit [url...]" {
			t.Errorf("expected use 'audit [url...]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has timeout flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("timeout")
		if flag == nil {
			t.Fatal("expected timeout flag")
		}
		if flag.Shorthand != "t" {
			t.Errorf("expected shorthand 't', got %q", flag.Shorthand)
		}
	})

	t.Run("has page-timeout flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("page-timeout") == nil {
			t.Fatal("expected page-timeout flag")
		}
	})

	t.Run("has settle flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("settle") == nil {
			t.Fatal("expected settle flag")
		}
	})

	t.Run("has max-links flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("max-links")
		if flag == nil {
			t.Fatal("expected max-links flag")
		}
		if flag.Shorthand != "l" {
			t.Errorf("expected shorthand 'l', got %q", flag.Shorthand)
		}
	})

	t.Run("has batch flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("batch")
		if flag == nil {
			t.Fatal("expected batch flag")
		}
		if flag.Shorthand != "b" {
			t.Errorf("expected shorthand 'b', got %q", flag.Shorthand)
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
	})

	t.Run("has no-save flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("no-save")
		if flag == nil {
			t.Fatal("expected no-save flag")
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})

	t.Run("does not have db-dir flag (uses XDG)", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("db-dir") != nil {
			t.Error("db-dir flag should not exist (always uses XDG data directory)")
		}
	})
}

// TestGetVerboseFlag tests the verbose flag retrieval.
func TestGetVerboseFlag(t *testing.T) {
	t.Run("returns false when flag not set", func(t *testing.T) {
		cmd := NewAuditCmd()
		if getVerboseFlag(cmd) {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		_ = root.PersistentFlags().Set("verbose", "true")

		auditCmd, _, err := root.Find([]string{"audit"})
		if err != nil {
			t.Fatalf("failed to find audit command: %v", err)
		}

		if !getVerboseFlag(auditCmd) {
			t.Error("expected true from parent verbose flag")
		}
	})
}

// TestBuildConfig tests configuration building from flags.
func TestBuildConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewAuditCmd()
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if len(cfg.Targets) != 1 || cfg.Targets[0] != "https://example.com" {
			t.Errorf("expected targets [https://example.com], got %v", cfg.Targets)
		}
		if cfg.ProbeTimeout != config.DefaultProbeTimeout {
			t.Errorf("expected probe timeout %v, got %v", config.DefaultProbeTimeout, cfg.ProbeTimeout)
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to default to true")
		}
		if cfg.DBDir == "" {
			t.Error("expected non-empty DBDir")
		}
	})

	t.Run("builds config with custom timeouts", func(t *testing.T) {
		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("timeout", "5s")
		_ = cmd.Flags().Set("page-timeout", "45s")
		_ = cmd.Flags().Set("settle", "500ms")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.ProbeTimeout != 5*time.Second {
			t.Errorf("expected probe timeout 5s, got %v", cfg.ProbeTimeout)
		}
		if cfg.PageLoadTimeout != 45*time.Second {
			t.Errorf("expected page load timeout 45s, got %v", cfg.PageLoadTimeout)
		}
		if cfg.SettleDelay != 500*time.Millisecond {
			t.Errorf("expected settle delay 500ms, got %v", cfg.SettleDelay)
		}
	})

	t.Run("builds config with custom link cap", func(t *testing.T) {
		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("max-links", "50")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.MaxLinksPerPage != 50 {
			t.Errorf("expected MaxLinksPerPage 50, got %d", cfg.MaxLinksPerPage)
		}
	})

	t.Run("builds config with custom batch size", func(t *testing.T) {
		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("batch", "5")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.BatchSize != 5 {
			t.Errorf("expected BatchSize 5, got %d", cfg.BatchSize)
		}
	})

	t.Run("builds config with JSON flag", func(t *testing.T) {
		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("json", "true")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.JSONReport {
			t.Error("expected JSONReport to be true")
		}
	})

	t.Run("builds config with no-save flag", func(t *testing.T) {
		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("no-save", "true")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.SaveToDB {
			t.Error("expected SaveToDB to be false with --no-save")
		}
	})

	t.Run("builds config with multiple targets", func(t *testing.T) {
		cmd := NewAuditCmd()
		cfg, err := buildConfig(cmd, []string{
			"https://a.example.com", "https://b.example.com", "https://c.example.com",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Targets) != 3 {
			t.Errorf("expected 3 targets, got %d", len(cfg.Targets))
		}
	})

	t.Run("builds config with valid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "siteaudit.yaml")

		content := []byte(`
defaults:
  maxLinksPerPage: 100
sites:
  example.com:
    cookie: session=xyz
`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("config", configPath)
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.SiteConfigs == nil {
			t.Fatal("expected SiteConfigs to be loaded")
		}
		if cfg.SiteConfigs.Defaults.MaxLinksPerPage != 100 {
			t.Errorf("expected default link cap 100, got %d", cfg.SiteConfigs.Defaults.MaxLinksPerPage)
		}
	})

	t.Run("returns error for missing explicit config file", func(t *testing.T) {
		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("config", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := buildConfig(cmd, []string{"https://example.com"})
		if err == nil {
			t.Fatal("expected error for missing config file")
		}
	})

	t.Run("returns error for invalid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "invalid.yaml")

		if err := os.WriteFile(configPath, []byte(`{invalid yaml`), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("config", configPath)
		_, err := buildConfig(cmd, []string{"https://example.com"})
		if err == nil {
			t.Fatal("expected error for invalid config file")
		}
	})

	t.Run("builds config with output directory", func(t *testing.T) {
		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("output", "reports")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.OutputDir != "reports" {
			t.Errorf("expected OutputDir 'reports', got %q", cfg.OutputDir)
		}
	})
}

// TestSiteConfigFor tests site configuration resolution for targets.
func TestSiteConfigFor(t *testing.T) {
	t.Parallel()

	t.Run("returns empty config for nil SiteConfigs", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{SiteConfigs: nil}
		result := siteConfigFor(cfg, "https://example.com")
		if result.Cookie != "" {
			t.Error("expected empty cookie")
		}
	})

	t.Run("returns exact match by hostname", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			SiteConfigs: &config.File{
				Sites: map[string]config.SiteConfig{
					"example.com": {
						Cookie:          "session=abc",
						MaxLinksPerPage: 50,
					},
				},
			},
		}
		result := siteConfigFor(cfg, "https://example.com/landing")
		if result.Cookie != "session=abc" {
			t.Errorf("expected cookie 'session=abc', got %q", result.Cookie)
		}
		if result.MaxLinksPerPage != 50 {
			t.Errorf("expected link cap 50, got %d", result.MaxLinksPerPage)
		}
	})

	t.Run("returns defaults when no site match", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			SiteConfigs: &config.File{
				Defaults: config.SiteConfig{Cookie: "default=cookie"},
				Sites:    map[string]config.SiteConfig{},
			},
		}
		result := siteConfigFor(cfg, "https://other.example.com")
		if result.Cookie != "default=cookie" {
			t.Errorf("expected cookie 'default=cookie', got %q", result.Cookie)
		}
	})
}
