// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package repository

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sambio/activityengine/pkg/schema"
)

// MetricsRepository owns the daily_metrics sink. BatchAnalyzer opens
// one MetricsTransaction per chunk and upserts every item's DailyMetrics
// row into it, rather than one transaction per row, for the same
// throughput reason a bulk job-insert transaction would.
type MetricsRepository struct {
	repo   *Repository
	driver string
}

func NewMetricsRepository(repo *Repository, driver string) *MetricsRepository {
	return &MetricsRepository{repo: repo, driver: driver}
}

// UpsertChunk writes rows in one transaction, rolling back and
// returning the first error on any failed row so the caller can retry
// the whole chunk.
func (r *MetricsRepository) UpsertChunk(rows []schema.DailyMetrics) error {
	if len(rows) == 0 {
		return nil
	}

	txn, err := r.repo.BeginMetricsTransaction(r.driver)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if err := txn.Upsert(row); err != nil {
			_ = txn.Rollback()
			return err
		}
	}

	return txn.Commit()
}

// DeleteBefore removes every daily_metrics row with analysis_date
// strictly before cutoff (YYYY-MM-DD), for the retention job.
func (r *MetricsRepository) DeleteBefore(cutoff string) (int64, error) {
	res, err := r.repo.DB.Exec(`DELETE FROM daily_metrics WHERE analysis_date < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("repository: delete daily_metrics before %s: %w", cutoff, err)
	}
	return res.RowsAffected()
}

// AggregateRepository owns the org_daily_aggregate sink's
// replace-on-write semantics: a recompute deletes then reinserts the row
// for each (org_scope, org_id, date) key it covers inside one transaction.
type AggregateRepository struct {
	db *sqlx.DB
}

func NewAggregateRepository(db *sqlx.DB) *AggregateRepository {
	return &AggregateRepository{db: db}
}

// Replace deletes the org_daily_aggregate row for each (scope, org_id,
// date) key in rows and inserts rows in their place, atomically. Rows
// for other org ids of the same scope and date are left as they are.
func (r *AggregateRepository) Replace(scope schema.OrgScope, date string, rows []schema.OrgDailyAggregate) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("repository: begin aggregate replace: %w", err)
	}

	for _, row := range rows {
		if _, err := tx.Exec(
			`DELETE FROM org_daily_aggregate WHERE org_scope = ? AND org_id = ? AND analysis_date = ?`,
			scope, row.OrgID, date,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("repository: delete org_daily_aggregate: %w", err)
		}
	}

	const insert = `
		INSERT INTO org_daily_aggregate (
			org_scope, org_id, analysis_date, employee_count, sample_size,
			avg_total_hours, avg_actual_work_hours, avg_focused_work_hours, avg_efficiency_ratio,
			day_shift_count, night_shift_count, cross_day_count, updated_at
		) VALUES (
			:org_scope, :org_id, :analysis_date, :employee_count, :sample_size,
			:avg_total_hours, :avg_actual_work_hours, :avg_focused_work_hours, :avg_efficiency_ratio,
			:day_shift_count, :night_shift_count, :cross_day_count, :updated_at
		)`

	stmt, err := tx.PrepareNamed(insert)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("repository: prepare org_daily_aggregate insert: %w", err)
	}

	for _, row := range rows {
		if _, err := stmt.Exec(row); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("repository: insert org_daily_aggregate: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: commit aggregate replace: %w", err)
	}
	return nil
}

// DeleteBefore removes every org_daily_aggregate row with analysis_date
// strictly before cutoff (YYYY-MM-DD), for the retention job.
func (r *AggregateRepository) DeleteBefore(cutoff string) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM org_daily_aggregate WHERE analysis_date < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("repository: delete org_daily_aggregate before %s: %w", cutoff, err)
	}
	return res.RowsAffected()
}

// ProcessingLogEntry is one row of the processing_log sink: one entry
// per batch run, independent of the per-(employee,date) rows it wrote.
type ProcessingLogEntry struct {
	StartedAt time.Time `db:"started_at"`
	EndedAt   time.Time `db:"ended_at"`
	Attempted int       `db:"attempted"`
	Succeeded int       `db:"succeeded"`
	Failed    int       `db:"failed"`
	Status    string    `db:"status"`
}

// ProcessingLogRepository records one row per batch run for operator
// audit and the idempotence check in spec scenario 6.
type ProcessingLogRepository struct {
	db *sqlx.DB
}

func NewProcessingLogRepository(db *sqlx.DB) *ProcessingLogRepository {
	return &ProcessingLogRepository{db: db}
}

func (r *ProcessingLogRepository) Insert(e ProcessingLogEntry) error {
	const insert = `
		INSERT INTO processing_log (started_at, ended_at, attempted, succeeded, failed, status)
		VALUES (:started_at, :ended_at, :attempted, :succeeded, :failed, :status)`
	if _, err := r.db.NamedExec(insert, e); err != nil {
		return fmt.Errorf("repository: insert processing_log: %w", err)
	}
	return nil
}
