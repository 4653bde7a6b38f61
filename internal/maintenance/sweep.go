// Package maintenance runs a scheduled consistency sweep over the vector
// store and its sidecar corpus. The sweep is read-only: it reports drift
// (records without sidecars, orphaned sidecars, duplicate URLs) so an operator
// can act on it, but never repairs anything itself.
package maintenance

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/TatievskiArik/Article-RAG-System/internal/store"
)

// DefaultSchedule runs the sweep hourly.
const DefaultSchedule = "@hourly"

// lockWait bounds how long a sweep waits for the store lock. A crashed lock
// holder must not wedge the scheduler.
const lockWait = 30 * time.Second

// Report summarizes one sweep.
type Report struct {
	Records         int      // records in the main store
	Sidecars        int      // decodable sidecar documents
	MissingSidecars []string // URLs stored without a sidecar
	OrphanSidecars  []string // sidecar URLs missing from the store
	DuplicateURLs   []string // URLs appearing more than once in the store
}

// Clean reports whether the sweep found no drift.
func (r *Report) Clean() bool {
	return len(r.MissingSidecars) == 0 && len(r.OrphanSidecars) == 0 && len(r.DuplicateURLs) == 0
}

// Sweeper owns the cron schedule and runs sweeps against one store.
type Sweeper struct {
	store    *store.Store
	schedule string
	cron     *cron.Cron
}

// NewSweeper creates a sweeper. An empty schedule uses DefaultSchedule.
func NewSweeper(st *store.Store, schedule string) *Sweeper {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Sweeper{store: st, schedule: schedule, cron: cron.New()}
}

// Start schedules the sweep and starts the cron runner.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		report, err := s.Sweep(ctx)
		if err != nil {
			log.Printf("maintenance: sweep failed: %v", err)
			return
		}
		logReport(report)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("maintenance: sweep scheduled (%s)", s.schedule)
	return nil
}

// Stop halts the scheduler, waiting for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Sweep compares the main store against the sidecar corpus once.
func (s *Sweeper) Sweep(ctx context.Context) (*Report, error) {
	records, err := s.store.SnapshotTimeout(ctx, lockWait)
	if err != nil {
		return nil, err
	}
	summaries, err := s.store.List()
	if err != nil {
		return nil, err
	}

	sidecarURLs := make(map[string]bool, len(summaries))
	for _, sum := range summaries {
		sidecarURLs[sum.URL] = true
	}

	report := &Report{Records: len(records), Sidecars: len(summaries)}
	seen := make(map[string]int, len(records))
	for _, rec := range records {
		seen[rec.Article.URL]++
		if !sidecarURLs[rec.Article.URL] {
			report.MissingSidecars = append(report.MissingSidecars, rec.Article.URL)
		}
	}
	for url, count := range seen {
		if count > 1 {
			report.DuplicateURLs = append(report.DuplicateURLs, url)
		}
	}
	for _, sum := range summaries {
		if seen[sum.URL] == 0 {
			report.OrphanSidecars = append(report.OrphanSidecars, sum.URL)
		}
	}
	return report, nil
}

func logReport(r *Report) {
	if r.Clean() {
		log.Printf("maintenance: sweep clean (%d records, %d sidecars)", r.Records, r.Sidecars)
		return
	}
	log.Printf("maintenance: sweep found drift: %d records, %d sidecars, %d missing sidecars, %d orphan sidecars, %d duplicate URLs",
		r.Records, r.Sidecars, len(r.MissingSidecars), len(r.OrphanSidecars), len(r.DuplicateURLs))
	for _, url := range r.MissingSidecars {
		log.Printf("maintenance: record without sidecar: %s", url)
	}
	for _, url := range r.OrphanSidecars {
		log.Printf("maintenance: sidecar without record: %s", url)
	}
	for _, url := range r.DuplicateURLs {
		log.Printf("maintenance: duplicate store records: %s", url)
	}
}
