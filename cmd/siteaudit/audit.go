package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/siteaudit/siteaudit/internal/config"
	"github.com/siteaudit/siteaudit/internal/crawler"
	"github.com/siteaudit/siteaudit/internal/database"
	"github.com/siteaudit/siteaudit/internal/log"
	"github.com/siteaudit/siteaudit/internal/model"
	"github.com/siteaudit/siteaudit/internal/render"
	"github.com/siteaudit/siteaudit/internal/report"
)

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [url...]",
		Short: "Audit one or more websites",
		Long: `Audit crawls each given site through a headless browser and analyzes it.

The seed page and every page it links to are rendered and inspected for:
- Broken links, redirect chains, and redirect loops
- Sitemap problems (missing files, bad URLs, invalid lastmod/priority)
- Missing or duplicated titles, descriptions, and headings
- Indexability problems (robots.txt, noindex, canonical issues)
- Structured data coverage (JSON-LD, microdata, RDFa)
- Internal linking (crawl depth, orphan pages)

Three JSON artifacts are written per site: <host>-technical-discovery.json,
<host>-issues.json, and <host>-page-info.json.

Examples:
  # Audit a single site
  siteaudit audit https://example.com

  # Audit several sites concurrently
  siteaudit audit https://example.com https://example.org

  # Print the combined report as JSON on stdout
  siteaudit audit --json https://example.com

  # Use a custom configuration file and output directory
  siteaudit audit -c myconfig.yaml -o reports/ https://example.com

Configuration file (.siteaudit) example:
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"`,
		Args: cobra.ArbitraryArgs,
		RunE: runAuditCmd,
	}

	// Probe behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultProbeTimeout,
		"Timeout for each URL reachability probe")

	// Render behavior flags
	cmd.Flags().Duration("page-timeout", config.DefaultPageLoadTimeout,
		"Browser navigation timeout per page")
	cmd.Flags().Duration("settle", config.DefaultSettleDelay,
		"Extra wait after page load before HTML capture")

	// Crawl volume flags
	cmd.Flags().IntP("max-links", "l", config.DefaultMaxLinksPerPage,
		"Maximum links processed per page (0 = unlimited)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent audits")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .siteaudit in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Print the combined report as JSON on stdout")
	cmd.Flags().StringP("output", "o", "",
		"Directory for the artifact documents (default: current directory)")
	cmd.Flags().Bool("no-save", false,
		"Do not store the audit in the local history database")

	return cmd
}

// runAuditCmd executes the audit command.
func runAuditCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Handle interrupt signals for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAudit(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ProbeTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}
	cfg.PageLoadTimeout, err = cmd.Flags().GetDuration("page-timeout")
	if err != nil {
		return nil, err
	}
	cfg.SettleDelay, err = cmd.Flags().GetDuration("settle")
	if err != nil {
		return nil, err
	}
	cfg.MaxLinksPerPage, err = cmd.Flags().GetInt("max-links")
	if err != nil {
		return nil, err
	}
	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	cfg.OutputDir, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}
	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	cfg.DBDir = config.XDGDataDir()
	cfg.Verbose = getVerboseFlag(cmd)

	// Load site-specific configurations from the config file.
	// An explicitly specified path must exist; otherwise a missing file
	// just means no site-specific settings.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.Targets = args
	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// runAudit executes the audit for all configured targets.
func runAudit(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Targets) == 0 {
		return errors.New("no targets provided (specify one or more site URLs as arguments)")
	}

	logger.Info("starting audit",
		"targets", cfg.Targets,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	var db *database.AuditDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Each target gets its own browser so per-site cookies and headers
	// apply to rendering too. All browsers are closed when the batch
	// finishes.
	var mu sync.Mutex
	var fetchers []render.Fetcher
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, f := range fetchers {
			f.Close()
		}
	}()

	factory := func(target string) (*crawler.Session, error) {
		siteConfig := siteConfigFor(cfg, target)
		fetcher, err := render.New(
			render.WithTimeouts(cfg.PageLoadTimeout, cfg.PageLoadTimeout, cfg.SettleDelay),
			render.WithUserAgent(cfg.UserAgent),
			render.WithSiteConfig(siteConfig),
			render.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("browser launch failed: %w", err)
		}
		mu.Lock()
		fetchers = append(fetchers, fetcher)
		mu.Unlock()

		return crawler.NewSession(target, fetcher, cfg,
			crawler.WithSessionLogger(logger))
	}

	batch := crawler.NewBatchAuditor(factory,
		crawler.WithConcurrency(cfg.BatchSize),
		crawler.WithBatchLogger(logger),
	)

	start := time.Now()
	reports, err := batch.Run(ctx, cfg.Targets)
	if err != nil {
		return err
	}

	completed := 0
	for i, auditReport := range reports {
		if auditReport == nil {
			fmt.Fprintf(os.Stderr, "Audit failed for %s\n", cfg.Targets[i])
			continue
		}
		completed++

		if err := outputReport(cfg, auditReport); err != nil {
			logger.Error("report output failed", "target", cfg.Targets[i], "error", err)
		}
		if err := saveAuditReport(ctx, db, auditReport, logger); err != nil {
			logger.Error("failed to save audit", "target", cfg.Targets[i], "error", err)
		}
	}

	fmt.Printf("Audited %d/%d sites in %s\n",
		completed, len(cfg.Targets), time.Since(start).Round(time.Millisecond))

	if completed == 0 {
		return errors.New("no audits completed")
	}
	return nil
}

// siteConfigFor resolves the merged site configuration for a target URL.
func siteConfigFor(cfg *config.Config, target string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}
	u, err := url.Parse(target)
	if err != nil {
		return cfg.SiteConfigs.Defaults
	}
	return cfg.SiteConfigs.GetSiteConfig(u.Hostname())
}

// outputReport writes the artifact documents and, when requested, the
// combined JSON report to stdout.
func outputReport(cfg *config.Config, auditReport *model.AuditReport) error {
	artifacts := report.NewArtifactWriter(cfg.OutputDir)
	writers := []report.Writer{artifacts}
	if cfg.JSONReport {
		writers = append(writers, report.NewJSONWriter(os.Stdout, report.WithPrettyPrint()))
	}

	if _, err := report.NewMultiWriter(writers...).Write(auditReport); err != nil {
		return fmt.Errorf("write report for %s: %w", auditReport.Domain, err)
	}

	for _, path := range artifacts.Paths(auditReport) {
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}

// saveAuditReport stores the audit in the history database if enabled.
func saveAuditReport(ctx context.Context, db *database.AuditDB, auditReport *model.AuditReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}
	id, err := db.SaveAuditReport(ctx, auditReport)
	if err != nil {
		return err
	}
	logger.Info("audit stored", "domain", auditReport.Domain, "id", id)
	return nil
}
