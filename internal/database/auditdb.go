package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/siteaudit/siteaudit/internal/model"
)

// AuditDB provides SQLite-based storage for audit reports and per-page
// findings.
//
// Design decision: We use a single database file for all audited sites
// rather than one file per site. This keeps history queries across sites
// trivial and simplifies backup/restore operations.
type AuditDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures AuditDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an AuditDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*AuditDB, error) {
	dbPath := filepath.Join(dbDir, "siteaudit.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite DSN: mode=rw prevents creating new files,
	// mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AuditDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *AuditDB) Close() error {
	return adb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (adb *AuditDB) createTables() error {
	schema := `
	-- Audit reports store complete audit results as JSON
	CREATE TABLE IF NOT EXISTS audit_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		domain TEXT NOT NULL,
		seed_url TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		issue_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_domain ON audit_reports(domain);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON audit_reports(timestamp);

	-- Page rows allow per-URL history queries without parsing report JSON
	CREATE TABLE IF NOT EXISTS audit_pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		report_id INTEGER NOT NULL REFERENCES audit_reports(id),
		url TEXT NOT NULL,
		fetched INTEGER NOT NULL,
		title TEXT,
		depth INTEGER,
		inbound_links INTEGER,
		outbound_links INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_pages_report ON audit_pages(report_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON audit_pages(url);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveAuditReport persists a completed audit: the full report as JSON
// plus one row per page for cheap history queries. Both are written in
// one transaction. Returns the stored report's ID.
func (adb *AuditDB) SaveAuditReport(ctx context.Context, report *model.AuditReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}
	issueJSON, err := json.Marshal(report.IssuesSummary())
	if err != nil {
		return 0, fmt.Errorf("failed to serialize issue summary: %w", err)
	}

	tx, err := adb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	result, err := tx.ExecContext(ctx,
		`INSERT INTO audit_reports (domain, seed_url, timestamp, report_json, issue_summary)
		 VALUES (?, ?, ?, ?, ?)`,
		report.Domain,
		report.SeedURL,
		report.CrawlTimestamp.UTC().Format("2006-01-02 15:04:05"),
		string(reportJSON),
		string(issueJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert audit report: %w", err)
	}
	reportID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read report id: %w", err)
	}

	for url, page := range report.Pages {
		title := ""
		if page.Metadata != nil {
			title = page.Metadata.TitleTag
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO audit_pages (report_id, url, fetched, title, depth, inbound_links, outbound_links)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			reportID,
			url,
			page.Fetched,
			title,
			page.Linking.Depth,
			page.Linking.InboundLinks,
			page.Linking.OutboundLinks,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert page row for %s: %w", url, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit audit report: %w", err)
	}
	return reportID, nil
}

// GetLatestReport retrieves the most recent audit report for a domain.
// Returns nil without error when the domain has never been audited.
func (adb *AuditDB) GetLatestReport(ctx context.Context, domain string) (*model.AuditReport, error) {
	var reportJSON string
	err := adb.db.QueryRowContext(ctx,
		`SELECT report_json FROM audit_reports
		 WHERE domain = ?
		 ORDER BY timestamp DESC, id DESC
		 LIMIT 1`,
		domain,
	).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit report: %w", err)
	}

	var report model.AuditReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// GetReportByID retrieves an audit report by its database ID.
func (adb *AuditDB) GetReportByID(ctx context.Context, id int64) (*model.AuditReport, error) {
	var reportJSON string
	err := adb.db.QueryRowContext(ctx,
		`SELECT report_json FROM audit_reports WHERE id = ?`, id,
	).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit report: %w", err)
	}

	var report model.AuditReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// ListAuditedDomains returns every domain with at least one stored audit.
func (adb *AuditDB) ListAuditedDomains(ctx context.Context) ([]string, error) {
	rows, err := adb.db.QueryContext(ctx,
		`SELECT DISTINCT domain FROM audit_reports ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, domain)
	}
	return domains, rows.Err()
}

// HasRecentAudit checks if a domain was audited within the given duration.
func (adb *AuditDB) HasRecentAudit(ctx context.Context, domain string, within time.Duration) (bool, error) {
	modifier := fmt.Sprintf("-%d seconds", int(within.Seconds()))

	var count int
	err := adb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_reports
		 WHERE domain = ? AND timestamp > datetime('now', ?)`,
		domain, modifier,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check recent audit: %w", err)
	}
	return count > 0, nil
}

// AuditMetadata contains summary information about a stored audit.
// This is used for displaying audit history without loading full reports.
type AuditMetadata struct {
	// ID is the unique identifier of the audit in the database.
	ID int64

	// Domain is the audited site.
	Domain string

	// Timestamp is when the audit was performed.
	Timestamp time.Time

	// Issues is the stored issue summary, zero-valued when the row
	// predates summary storage.
	Issues model.IssuesSummary
}

// GetAuditHistory retrieves audit metadata for a domain, newest first.
// This is cheaper than loading full reports when only the summaries are
// needed.
func (adb *AuditDB) GetAuditHistory(ctx context.Context, domain string) ([]AuditMetadata, error) {
	rows, err := adb.db.QueryContext(ctx,
		`SELECT id, domain, timestamp, issue_summary
		 FROM audit_reports
		 WHERE domain = ?
		 ORDER BY timestamp DESC, id DESC`,
		domain,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit history: %w", err)
	}
	defer rows.Close()

	var results []AuditMetadata
	for rows.Next() {
		var meta AuditMetadata
		var timestamp string
		var issueJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Domain, &timestamp, &issueJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)

		if issueJSON.Valid && issueJSON.String != "" {
			// A malformed summary leaves the zero value rather than
			// failing the whole history query.
			_ = json.Unmarshal([]byte(issueJSON.String), &meta.Issues) //nolint:errcheck
		}
		results = append(results, meta)
	}
	return results, rows.Err()
}

// PageHistory is one stored page row from a past audit.
type PageHistory struct {
	ReportID      int64
	URL           string
	Fetched       bool
	Title         string
	Depth         int
	InboundLinks  int
	OutboundLinks int
}

// GetPageHistory retrieves the stored page rows for a URL across all
// audits, newest report first.
func (adb *AuditDB) GetPageHistory(ctx context.Context, url string) ([]PageHistory, error) {
	rows, err := adb.db.QueryContext(ctx,
		`SELECT report_id, url, fetched, title, depth, inbound_links, outbound_links
		 FROM audit_pages
		 WHERE url = ?
		 ORDER BY report_id DESC`,
		url,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get page history: %w", err)
	}
	defer rows.Close()

	var results []PageHistory
	for rows.Next() {
		var p PageHistory
		if err := rows.Scan(&p.ReportID, &p.URL, &p.Fetched, &p.Title, &p.Depth, &p.InboundLinks, &p.OutboundLinks); err != nil {
			return nil, fmt.Errorf("failed to scan page row: %w", err)
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
