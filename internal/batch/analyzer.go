// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package batch

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/jpillora/backoff"

	"github.com/sambio/activityengine/internal/metrics"
	"github.com/sambio/activityengine/internal/repository"
	"github.com/sambio/activityengine/pkg/log"
	"github.com/sambio/activityengine/pkg/schema"
)

const (
	defaultChunkSize    = 64
	defaultChunkTimeout = 5 * time.Minute
	defaultRetryCount   = 3
	maxWorkerCount      = 8
)

// Analyzer is BatchAnalyzer: it owns the read-only BatchContext, the
// persistence collaborators, and the worker-pool/chunking parameters.
// The controller (RunBatch) constructs everything top-down and never
// shares mutable state with a worker.
type Analyzer struct {
	Context *BatchContext
	Repos   *repository.Repositories
	Driver  string

	WorkerCount  int
	ChunkSize    int
	ChunkTimeout time.Duration
	RetryCount   int
}

// NewAnalyzer builds an Analyzer from cfg, picking worker count as
// CPU count - 1 capped at 8 when cfg.WorkerCount is unset.
func NewAnalyzer(batchCtx *BatchContext, repos *repository.Repositories, driver string, cfg schema.ProgramConfig) *Analyzer {
	workers := cfg.WorkerCount
	if workers <= 0 {
		workers = runtime.NumCPU() - 1
		if workers < 1 {
			workers = 1
		}
	}
	if workers > maxWorkerCount {
		workers = maxWorkerCount
	}

	return &Analyzer{
		Context:      batchCtx,
		Repos:        repos,
		Driver:       driver,
		WorkerCount:  workers,
		ChunkSize:    defaultChunkSize,
		ChunkTimeout: defaultChunkTimeout,
		RetryCount:   defaultRetryCount,
	}
}

// itemResult is one work item's outcome, produced by a worker and
// consumed by the controller to build the Report.
type itemResult struct {
	EmployeeID string
	Date       string
	Metrics    *schema.DailyMetrics
	Kind       ErrorKind
	Summary    string
}

// RunBatch executes the seven-step BatchAnalyzer pipeline: resolve work
// items, preload source data once, partition them into chunks, classify
// and derive metrics per item on a worker pool, persist successful
// results per chunk with retry, recompute OrgDailyAggregate rows from
// everything written, and assemble the Report. ctx governs
// cancellation; a cancellation mid-run stops dispatch, drains in-flight
// chunks, and returns a Report flagged Cancelled.
func (a *Analyzer) RunBatch(ctx context.Context, req BatchRequest) (*Report, error) {
	start := time.Now()
	defer observeRunDuration(start)
	report := &Report{}

	items, err := resolveWorkItems(a.Repos.Sources, req, a.Context.Location)
	if err != nil {
		return nil, err
	}
	report.Attempted = len(items)
	if len(items) == 0 {
		report.finish(start)
		return report, nil
	}

	employees := uniqueEmployees(items)
	rangeStart, rangeEnd, err := parseRequestRange(req, a.Context.Location)
	if err != nil {
		return nil, err
	}

	data, err := preload(a.Repos.Sources, a.Context.Meals, a.Context.Equipment, employees, rangeStart, rangeEnd, a.Context.Location)
	if err != nil {
		return nil, err
	}
	a.Context.data = data

	chunks := partition(items, a.ChunkSize)
	chunkCh := make(chan []workItem, len(chunks))
	for _, c := range chunks {
		chunkCh <- c
	}
	close(chunkCh)

	resultCh := make(chan itemResult, a.ChunkSize)
	var wg sync.WaitGroup
	for i := 0; i < a.WorkerCount; i++ {
		wg.Add(1)
		go a.worker(ctx, chunkCh, resultCh, &wg)
	}
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	succeeded := make([]schema.DailyMetrics, 0, len(items))
	for res := range resultCh {
		if res.Kind == "" {
			report.Succeeded++
			succeeded = append(succeeded, *res.Metrics)
		} else {
			report.Failed++
			report.Failures = append(report.Failures, Failure{
				EmployeeID: res.EmployeeID,
				Date:       res.Date,
				ErrorKind:  res.Kind,
				Summary:    res.Summary,
			})
		}
	}

	if ctx.Err() != nil {
		report.Cancelled = true
	}

	if err := a.recomputeAggregates(succeeded); err != nil {
		log.Errorf("batch: aggregate recompute failed: %v", err)
	}

	if err := a.Repos.Log.Insert(repository.ProcessingLogEntry{
		StartedAt: start,
		EndedAt:   time.Now(),
		Attempted: report.Attempted,
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
		Status:    report.Status(),
	}); err != nil {
		log.Errorf("batch: processing_log insert failed: %v", err)
	}

	report.finish(start)
	return report, nil
}

// worker pulls whole chunks off chunkCh, processes every item, and
// persists the chunk's successful rows as one transaction with
// exponential-backoff retry before reporting per-item outcomes.
func (a *Analyzer) worker(ctx context.Context, chunkCh <-chan []workItem, resultCh chan<- itemResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for chunk := range chunkCh {
		if ctx.Err() != nil {
			for _, item := range chunk {
				resultCh <- itemResult{EmployeeID: item.EmployeeID, Date: item.Date, Kind: KindCancelled, Summary: "batch cancelled before dispatch"}
			}
			continue
		}

		chunkStart := time.Now()
		chunkCtx, cancel := context.WithTimeout(ctx, a.ChunkTimeout)
		rows := make([]schema.DailyMetrics, 0, len(chunk))
		results := make([]itemResult, 0, len(chunk))

		for _, item := range chunk {
			if chunkCtx.Err() != nil {
				results = append(results, itemResult{EmployeeID: item.EmployeeID, Date: item.Date, Kind: KindCancelled, Summary: "chunk timed out"})
				continue
			}

			m, err := a.processItem(item)
			if err != nil {
				results = append(results, itemResult{EmployeeID: item.EmployeeID, Date: item.Date, Kind: classify(err), Summary: err.Error()})
				continue
			}
			rows = append(rows, m)
			results = append(results, itemResult{EmployeeID: item.EmployeeID, Date: item.Date, Metrics: &m, Kind: ""})
		}

		if len(rows) > 0 {
			if err := a.persistWithRetry(chunkCtx, rows); err != nil {
				log.Errorf("batch: persistence exhausted for chunk: %v", err)
				for i := range results {
					if results[i].Kind == "" {
						results[i] = itemResult{EmployeeID: results[i].EmployeeID, Date: results[i].Date, Kind: KindPersistence, Summary: err.Error()}
					}
				}
			}
		}

		cancel()
		observeChunkDuration(chunkStart)
		observeOutcome(results)
		for _, r := range results {
			resultCh <- r
		}
	}
}

// processItem runs §4.2-4.5 for one (employee, date) and derives its
// DailyMetrics row.
func (a *Analyzer) processItem(item workItem) (schema.DailyMetrics, error) {
	gate, nextGate, meal, nextMeal, equip, nextEquip := a.Context.data.forDate(item.EmployeeID, item.Date, a.Context.Location)

	tl, err := a.Context.Sequence.Build(item.EmployeeID, item.Date, gate, meal, equip, nextGate, nextMeal, nextEquip)
	if err != nil {
		return schema.DailyMetrics{}, err
	}

	seqEvents := make([]schema.SequenceEvent, len(tl.Events))
	for i, e := range tl.Events {
		seqEvents[i] = e.SequenceEvent
	}

	classified, err := a.Context.Classifier.Classify(seqEvents)
	if err != nil {
		return schema.DailyMetrics{}, err
	}
	tl.Events = classified

	claimed := a.Context.data.claimedHours(item.EmployeeID, item.Date)
	return metrics.Derive(tl, claimed, a.Context.ProcessingVersion, time.Now()), nil
}

// persistWithRetry upserts rows as one chunk-sized transaction, retrying
// up to RetryCount times with exponential backoff on transient failure.
func (a *Analyzer) persistWithRetry(ctx context.Context, rows []schema.DailyMetrics) error {
	b := &backoff.Backoff{Min: 100 * time.Millisecond, Max: 5 * time.Second, Factor: 2, Jitter: true}

	var lastErr error
	for attempt := 0; attempt <= a.RetryCount; attempt++ {
		if err := a.Repos.Metrics.UpsertChunk(rows); err != nil {
			lastErr = err
			persistRetriesTotal.Inc()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.Duration()):
			}
			continue
		}
		return nil
	}
	return lastErr
}

func uniqueEmployees(items []workItem) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if !seen[it.EmployeeID] {
			seen[it.EmployeeID] = true
			out = append(out, it.EmployeeID)
		}
	}
	return out
}

func parseRequestRange(req BatchRequest, loc *time.Location) (time.Time, time.Time, error) {
	s, err := time.ParseInLocation("2006-01-02", req.StartDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, ConfigError("invalid start_date %q: %v", req.StartDate, err)
	}
	e, err := time.ParseInLocation("2006-01-02", req.EndDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, ConfigError("invalid end_date %q: %v", req.EndDate, err)
	}
	return s, e, nil
}

func partition(items []workItem, size int) [][]workItem {
	if size <= 0 {
		size = defaultChunkSize
	}
	var chunks [][]workItem
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[i:end])
	}
	return chunks
}
