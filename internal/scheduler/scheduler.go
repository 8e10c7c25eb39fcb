// Package scheduler refreshes imported ICS sources into the event store on
// a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"eventcal/internal/ics"
	appLog "eventcal/internal/log"
	"eventcal/internal/model"
)

// Fetcher is the part of ics.Fetcher the refresher needs.
type Fetcher interface {
	FetchAll(ctx context.Context, sources []ics.Source) ([]ics.FetchResult, []error)
}

// Sink receives the parsed events of one source.
type Sink interface {
	ReplaceSource(sourceID string, events []model.Event)
}

// Refresher fetches and parses every source and hands the events to the
// sink. Runs never overlap; a tick that finds a run in progress is skipped.
type Refresher struct {
	fetcher Fetcher
	sink    Sink
	sources []ics.Source
	loc     *time.Location

	running sync.Mutex
	cron    *cron.Cron
}

func NewRefresher(f Fetcher, sink Sink, sources []ics.Source, loc *time.Location) *Refresher {
	if loc == nil {
		loc = time.Local
	}
	return &Refresher{fetcher: f, sink: sink, sources: sources, loc: loc}
}

// RunOnce performs one refresh. Sources that fail to fetch or parse keep
// their previous events; their errors are joined into the result.
func (r *Refresher) RunOnce(ctx context.Context) error {
	if !r.running.TryLock() {
		appLog.Info("refresh skipped; previous run still in progress")
		return nil
	}
	defer r.running.Unlock()

	if len(r.sources) == 0 {
		return nil
	}
	started := time.Now()
	results, errs := r.fetcher.FetchAll(ctx, r.sources)
	total := 0
	for _, res := range results {
		events, err := ics.ParseICS(res.Source, res.Body, r.loc)
		if err != nil {
			errs = append(errs, fmt.Errorf("parse %s: %w", res.Source.ID, err))
			continue
		}
		r.sink.ReplaceSource(res.Source.ID, events)
		total += len(events)
	}
	appLog.Info("refresh completed", "sources", len(r.sources), "ok", len(results), "events", total, "elapsed", time.Since(started))
	return errors.Join(errs...)
}

// Start runs RunOnce on the cron spec (standard five fields or descriptors
// like "@every 15m") until ctx is done.
func (r *Refresher) Start(ctx context.Context, spec string) error {
	c := cron.New(cron.WithLocation(r.loc), cron.WithLogger(cronLogger{}))
	if _, err := c.AddFunc(spec, func() {
		if err := r.RunOnce(ctx); err != nil {
			appLog.Error("scheduled refresh failed", err)
		}
	}); err != nil {
		return fmt.Errorf("refresh schedule %q: %w", spec, err)
	}
	r.cron = c
	c.Start()
	appLog.Info("refresh scheduler started", "spec", spec)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		appLog.Info("refresh scheduler stopped")
	}()
	return nil
}

// Next is the time of the next scheduled run, zero before Start.
func (r *Refresher) Next() time.Time {
	if r.cron == nil {
		return time.Time{}
	}
	entries := r.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// ValidateSpec reports whether spec is a usable schedule.
func ValidateSpec(spec string) error {
	_, err := cron.ParseStandard(spec)
	return err
}

// cronLogger routes cron's own logging through the app logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}
