// internal/reaper/reaper.go

// Package reaper implements the inactive-account sweep: a scheduled
// batch job that scans every account, and for each one inactive past
// the threshold cascades deletion across all owned collections before
// removing the account itself. Accounts are independent units of work;
// one failed cascade never aborts the run.
package reaper

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"studytrack/internal/accounts"
	"studytrack/internal/common/logger"
	"studytrack/internal/common/metrics"
	"studytrack/internal/models"
	"studytrack/internal/store"
)

// DefaultInactiveDays is the inactivity threshold used when the config
// leaves it unset.
const DefaultInactiveDays = 40

// DefaultWorkers bounds the per-account cascade concurrency so the
// sweep cannot overwhelm the remote store's rate limits.
const DefaultWorkers = 4

// ownedCollections are cascaded, in no particular order, before the
// account document itself.
var ownedCollections = []string{
	store.CollectionAssignments,
	store.CollectionProjects,
	store.CollectionInternships,
}

// Config tunes one sweep.
type Config struct {
	InactiveDays int
	Workers      int
	DryRun       bool
}

// Result summarizes one sweep for observability.
type Result struct {
	Scanned  int           `json:"scanned"`
	Eligible int           `json:"eligible"`
	Reaped   int           `json:"reaped"`
	Failed   int           `json:"failed"`
	DryRun   bool          `json:"dryRun"`
	Duration time.Duration `json:"duration"`
}

// Notifier receives the run summary after a sweep completes.
type Notifier interface {
	PublishSummary(ctx context.Context, result Result) error
}

// Reaper is the batch job. Construct once, Run per schedule tick.
type Reaper struct {
	backend  store.Backend
	accounts *accounts.Service
	cfg      Config
	log      logger.Logger
	notifier Notifier
	now      func() time.Time
}

// New builds a reaper over the given backend. Zero config fields fall
// back to the defaults.
func New(backend store.Backend, accountSvc *accounts.Service, cfg Config, log logger.Logger) *Reaper {
	if cfg.InactiveDays <= 0 {
		cfg.InactiveDays = DefaultInactiveDays
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return &Reaper{
		backend:  backend,
		accounts: accountSvc,
		cfg:      cfg,
		log:      log.WithFields(map[string]interface{}{"job": "inactive-account-reaper"}),
		now:      time.Now,
	}
}

// SetNotifier attaches an optional run-summary notifier.
func (r *Reaper) SetNotifier(n Notifier) {
	r.notifier = n
}

// SetClock overrides the clock, for tests.
func (r *Reaper) SetClock(now func() time.Time) {
	r.now = now
}

// Run executes one sweep. The returned error covers only the account
// stream itself; per-account failures are isolated and reported in the
// Result counts.
func (r *Reaper) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	now := r.now()
	threshold := time.Duration(r.cfg.InactiveDays) * 24 * time.Hour

	result := Result{DryRun: r.cfg.DryRun}
	var reaped, failed atomic.Int64

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				if err := r.reapAccount(ctx, id); err != nil {
					failed.Add(1)
					metrics.ReaperAccountsFailed.Inc()
					r.log.Error("cascade failed, account left for next run", map[string]interface{}{
						"account": id,
						"error":   err.Error(),
					})
					continue
				}
				reaped.Add(1)
				metrics.ReaperAccountsReaped.Inc()
			}
		}()
	}

	streamErr := r.accounts.ForEach(ctx, func(a models.Account) error {
		result.Scanned++
		metrics.ReaperAccountsScanned.Inc()

		// Accounts with no recorded activity are never reaped.
		if a.LastActiveAt == nil {
			return nil
		}
		if now.Sub(*a.LastActiveAt) < threshold {
			return nil
		}
		result.Eligible++
		if r.cfg.DryRun {
			r.log.Info("would reap account", map[string]interface{}{
				"account":    a.ID,
				"lastActive": a.LastActiveAt.Format(time.RFC3339),
			})
			return nil
		}
		select {
		case jobs <- a.ID:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	close(jobs)
	wg.Wait()

	result.Reaped = int(reaped.Load())
	result.Failed = int(failed.Load())
	result.Duration = time.Since(start)
	metrics.ReaperRunDuration.Observe(result.Duration.Seconds())

	r.log.Info("sweep finished", map[string]interface{}{
		"scanned":  result.Scanned,
		"eligible": result.Eligible,
		"reaped":   result.Reaped,
		"failed":   result.Failed,
		"dryRun":   result.DryRun,
		"duration": result.Duration.String(),
	})

	if r.notifier != nil {
		if err := r.notifier.PublishSummary(ctx, result); err != nil {
			r.log.Warn("summary notification failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if streamErr != nil {
		return result, fmt.Errorf("account scan aborted: %w", streamErr)
	}
	return result, nil
}

// reapAccount cascades one account: every owned collection is purged
// first (as a parallel batch, each record independent), and the account
// document is removed strictly last, so an interrupted cascade can
// never leave records with a dangling owner.
func (r *Reaper) reapAccount(ctx context.Context, accountID string) error {
	errs := make(chan error, len(ownedCollections))
	var wg sync.WaitGroup
	for _, collection := range ownedCollections {
		wg.Add(1)
		go func(collection string) {
			defer wg.Done()
			errs <- r.purgeOwned(ctx, collection, accountID)
		}(collection)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return err
		}
	}

	if err := r.backend.Delete(ctx, store.CollectionAccounts, accountID); err != nil && !store.IsNotFound(err) {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

// purgeOwned deletes every record owned by accountID in one collection.
// Only identifiers are read; payloads are never decoded. Already-absent
// records count as deleted, so a partially completed cascade is safe to
// retry on the next run.
func (r *Reaper) purgeOwned(ctx context.Context, collection, accountID string) error {
	docs, err := r.backend.List(ctx, collection, store.Query{OwnerID: accountID})
	if err != nil {
		return fmt.Errorf("list %s: %w", collection, err)
	}
	for _, doc := range docs {
		if err := r.backend.Delete(ctx, collection, doc.ID); err != nil && !store.IsNotFound(err) {
			return fmt.Errorf("delete %s/%s: %w", collection, doc.ID, err)
		}
	}
	return nil
}
