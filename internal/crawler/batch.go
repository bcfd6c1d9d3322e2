package crawler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/siteaudit/siteaudit/internal/model"
)

// BatchAuditor runs audits for multiple seed URLs concurrently.
//
// Design decision: A separate BatchAuditor rather than batch support in
// Session because:
// 1. It keeps Session focused on auditing one site
// 2. Each target gets a fresh session, so no crawl state leaks between
//    sites
// 3. The concurrency limit lives in one place
type BatchAuditor struct {
	// sessionFactory creates a fresh session for each target.
	sessionFactory func(target string) (*Session, error)

	// concurrency is the maximum number of simultaneous audits.
	concurrency int

	logger *slog.Logger
}

// BatchOption configures a BatchAuditor.
type BatchOption func(*BatchAuditor)

// WithBatchLogger sets a custom logger for batch-level events.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchAuditor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of simultaneous audits.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchAuditor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchAuditor creates a BatchAuditor. The factory is called once per
// target so every audit owns its state.
func NewBatchAuditor(sessionFactory func(target string) (*Session, error), opts ...BatchOption) *BatchAuditor {
	b := &BatchAuditor{
		sessionFactory: sessionFactory,
		concurrency:    3,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run audits all targets and returns their reports in input order.
// A failed audit leaves a nil slot in the results and does not stop the
// other audits; only context cancellation aborts the batch.
func (b *BatchAuditor) Run(ctx context.Context, targets []string) ([]*model.AuditReport, error) {
	b.logger.Info("starting batch audit",
		"targets", len(targets),
		"concurrency", b.concurrency,
	)
	start := time.Now()

	results := make([]*model.AuditReport, len(targets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			session, err := b.sessionFactory(target)
			if err != nil {
				b.logger.Warn("audit setup failed", "target", target, "error", err)
				return nil
			}

			report, err := session.Run(ctx)
			results[i] = report
			if err != nil {
				b.logger.Warn("audit aborted", "target", target, "error", err)
				if ctx.Err() != nil {
					return err
				}
			}
			return nil
		})
	}

	err := g.Wait()
	b.logger.Info("batch audit complete",
		"targets", len(targets),
		"elapsed", time.Since(start),
	)
	return results, err
}
