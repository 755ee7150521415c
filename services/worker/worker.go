// Package worker drives collection runs: every collector to completion, one
// after another, each find upserted into the store and published.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"oldtimerfinder/internal/collector"
	"oldtimerfinder/logger"
	"oldtimerfinder/services/publisher"
	"oldtimerfinder/services/store"
)

// ErrAlreadyRunning is returned when a run is triggered while another run is
// still in progress. It is a no-op signal, not a failure.
var ErrAlreadyRunning = errors.New("collection run already in progress")

// RunStatus is the externally visible scheduler state.
type RunStatus struct {
	IsRunning  bool   `json:"is_running"`
	LastRun    string `json:"last_run,omitempty"`
	NextRun    string `json:"next_run,omitempty"`
	LastResult string `json:"last_result,omitempty"`
}

// Worker owns the run loop. Run state is a compare-and-swap transition
// (idle -> running -> idle); overlapping runs are impossible.
type Worker struct {
	ctx        context.Context
	collectors []collector.Collector
	store      *store.Store
	publisher  publisher.Publisher
	interval   time.Duration

	running atomic.Bool
	mu      sync.Mutex
	status  RunStatus
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	collectors []collector.Collector,
	st *store.Store,
	pub publisher.Publisher,
	interval time.Duration,
) *Worker {
	return &Worker{
		ctx:        ctx,
		collectors: collectors,
		store:      st,
		publisher:  pub,
		interval:   interval,
	}
}

// Start runs collection immediately and then on every interval tick until
// the context is cancelled.
func (w *Worker) Start() error {
	log := logger.ForWorker()

	for {
		start := time.Now()
		if err := w.RunOnce(); err != nil {
			log.Warn().Err(err).Msg("Run skipped")
		} else {
			log.Info().Dur("elapsed", time.Since(start)).Msg("Collection run finished")
		}

		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		case <-time.After(w.interval):
		}
	}
}

// RunOnce performs one synchronous collection run. It returns
// ErrAlreadyRunning when another run holds the state.
func (w *Worker) RunOnce() error {
	if !w.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	w.run()
	return nil
}

// TriggerAsync starts a run in the background. The caller gets the
// already-running signal immediately instead of after the run.
func (w *Worker) TriggerAsync() error {
	if !w.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	go w.run()
	return nil
}

// Status returns a copy of the current scheduler state.
func (w *Worker) Status() RunStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := w.status
	st.IsRunning = w.running.Load()
	return st
}

// run assumes the running state is already claimed and releases it on exit.
func (w *Worker) run() {
	defer w.running.Store(false)

	log := logger.ForWorker()
	started := time.Now()

	w.mu.Lock()
	w.status.LastRun = started.Format(time.RFC3339)
	w.mu.Unlock()

	totalFound := 0
	totalSaved := 0

	for _, c := range w.collectors {
		select {
		case <-w.ctx.Done():
			w.setResult("cancelled")
			return
		default:
		}

		found, saved := w.collectAndStore(c)
		totalFound += found
		totalSaved += saved
	}

	if w.publisher != nil {
		if err := w.publisher.TrimStreams(); err != nil {
			log.Error().Err(err).Msg("Stream trimming failed")
		}
	}

	w.setResult("success")
	w.mu.Lock()
	w.status.NextRun = started.Add(w.interval).Format(time.RFC3339)
	w.mu.Unlock()

	log.Info().
		Int("found", totalFound).
		Int("saved", totalSaved).
		Dur("elapsed", time.Since(started)).
		Msg("Run totals")
}

// collectAndStore runs one collector and persists its finds. A failing
// collector contributes zero records and never halts the run.
func (w *Worker) collectAndStore(c collector.Collector) (found, saved int) {
	log := logger.ForCollector(c.GetName())

	ads, err := c.FetchAds()
	if err != nil {
		log.Error().Err(err).Msg("Collection failed")
		if logErr := w.store.LogScrape(c.GetCountry(), c.GetSource(), 0, 0, "error: "+err.Error()); logErr != nil {
			log.Error().Err(logErr).Msg("History log failed")
		}
		return 0, 0
	}

	for i := range ads {
		ad := &ads[i]

		changed, err := w.store.Upsert(ad)
		if err != nil {
			log.Error().Err(err).Str("external_id", ad.ExternalID).Msg("Upsert failed")
			continue
		}
		if !changed {
			log.Warn().Str("url", ad.SourceURL).Msg("Record missing identity fields, skipped")
			continue
		}
		saved++

		if w.publisher != nil {
			payload, err := json.Marshal(ad)
			if err != nil {
				log.Error().Err(err).Msg("Marshal failed")
				continue
			}
			if err := w.publisher.Publish(c.GetSource(), payload); err != nil {
				log.Error().Err(err).Msg("Publish failed")
			}
		}
	}

	if err := w.store.LogScrape(c.GetCountry(), c.GetSource(), len(ads), saved, "success"); err != nil {
		log.Error().Err(err).Msg("History log failed")
	}

	log.Info().Int("found", len(ads)).Int("saved", saved).Msg("Collector finished")
	return len(ads), saved
}

func (w *Worker) setResult(result string) {
	w.mu.Lock()
	w.status.LastResult = result
	w.mu.Unlock()
}
