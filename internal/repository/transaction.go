// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/sambio/activityengine/pkg/log"
	"github.com/sambio/activityengine/pkg/schema"
)

// metricsUpsertSQLite is the sqlite3 upsert-by-(employee_id,
// analysis_date) statement. mysql uses the equivalent ON DUPLICATE KEY
// UPDATE form in metricsUpsertMySQL.
const metricsUpsertSQLite = `
INSERT INTO daily_metrics (
	employee_id, analysis_date, total_hours, actual_work_hours, focused_work_hours,
	work_minutes, meeting_minutes, meal_minutes, movement_minutes, rest_minutes, idle_minutes,
	breakfast_minutes, lunch_minutes, dinner_minutes, midnight_meal_minutes,
	breakfast_count, lunch_count, dinner_count, midnight_meal_count,
	claimed_hours, efficiency_ratio, shift_type, cross_day, data_reliability,
	tag_count, processing_version, updated_at
) VALUES (
	:employee_id, :analysis_date, :total_hours, :actual_work_hours, :focused_work_hours,
	:work_minutes, :meeting_minutes, :meal_minutes, :movement_minutes, :rest_minutes, :idle_minutes,
	:breakfast_minutes, :lunch_minutes, :dinner_minutes, :midnight_meal_minutes,
	:breakfast_count, :lunch_count, :dinner_count, :midnight_meal_count,
	:claimed_hours, :efficiency_ratio, :shift_type, :cross_day, :data_reliability,
	:tag_count, :processing_version, :updated_at
)
ON CONFLICT (employee_id, analysis_date) DO UPDATE SET
	total_hours = excluded.total_hours,
	actual_work_hours = excluded.actual_work_hours,
	focused_work_hours = excluded.focused_work_hours,
	work_minutes = excluded.work_minutes,
	meeting_minutes = excluded.meeting_minutes,
	meal_minutes = excluded.meal_minutes,
	movement_minutes = excluded.movement_minutes,
	rest_minutes = excluded.rest_minutes,
	idle_minutes = excluded.idle_minutes,
	breakfast_minutes = excluded.breakfast_minutes,
	lunch_minutes = excluded.lunch_minutes,
	dinner_minutes = excluded.dinner_minutes,
	midnight_meal_minutes = excluded.midnight_meal_minutes,
	breakfast_count = excluded.breakfast_count,
	lunch_count = excluded.lunch_count,
	dinner_count = excluded.dinner_count,
	midnight_meal_count = excluded.midnight_meal_count,
	claimed_hours = excluded.claimed_hours,
	efficiency_ratio = excluded.efficiency_ratio,
	shift_type = excluded.shift_type,
	cross_day = excluded.cross_day,
	data_reliability = excluded.data_reliability,
	tag_count = excluded.tag_count,
	processing_version = excluded.processing_version,
	updated_at = excluded.updated_at
`

const metricsUpsertMySQL = `
INSERT INTO daily_metrics (
	employee_id, analysis_date, total_hours, actual_work_hours, focused_work_hours,
	work_minutes, meeting_minutes, meal_minutes, movement_minutes, rest_minutes, idle_minutes,
	breakfast_minutes, lunch_minutes, dinner_minutes, midnight_meal_minutes,
	breakfast_count, lunch_count, dinner_count, midnight_meal_count,
	claimed_hours, efficiency_ratio, shift_type, cross_day, data_reliability,
	tag_count, processing_version, updated_at
) VALUES (
	:employee_id, :analysis_date, :total_hours, :actual_work_hours, :focused_work_hours,
	:work_minutes, :meeting_minutes, :meal_minutes, :movement_minutes, :rest_minutes, :idle_minutes,
	:breakfast_minutes, :lunch_minutes, :dinner_minutes, :midnight_meal_minutes,
	:breakfast_count, :lunch_count, :dinner_count, :midnight_meal_count,
	:claimed_hours, :efficiency_ratio, :shift_type, :cross_day, :data_reliability,
	:tag_count, :processing_version, :updated_at
)
ON DUPLICATE KEY UPDATE
	total_hours = VALUES(total_hours),
	actual_work_hours = VALUES(actual_work_hours),
	focused_work_hours = VALUES(focused_work_hours),
	work_minutes = VALUES(work_minutes),
	meeting_minutes = VALUES(meeting_minutes),
	meal_minutes = VALUES(meal_minutes),
	movement_minutes = VALUES(movement_minutes),
	rest_minutes = VALUES(rest_minutes),
	idle_minutes = VALUES(idle_minutes),
	breakfast_minutes = VALUES(breakfast_minutes),
	lunch_minutes = VALUES(lunch_minutes),
	dinner_minutes = VALUES(dinner_minutes),
	midnight_meal_minutes = VALUES(midnight_meal_minutes),
	breakfast_count = VALUES(breakfast_count),
	lunch_count = VALUES(lunch_count),
	dinner_count = VALUES(dinner_count),
	midnight_meal_count = VALUES(midnight_meal_count),
	claimed_hours = VALUES(claimed_hours),
	efficiency_ratio = VALUES(efficiency_ratio),
	shift_type = VALUES(shift_type),
	cross_day = VALUES(cross_day),
	data_reliability = VALUES(data_reliability),
	tag_count = VALUES(tag_count),
	processing_version = VALUES(processing_version),
	updated_at = VALUES(updated_at)
`

// MetricsTransaction batches a chunk's worth of DailyMetrics upserts
// into one SQL transaction, the same "bundle writes for sqlite speed"
// idiom a job-insert transaction would use, generalized past
// a single named insert to a driver-dependent upsert statement.
type MetricsTransaction struct {
	tx   *sqlx.Tx
	stmt *sqlx.NamedStmt
}

// BeginMetricsTransaction opens a transaction and prepares the
// driver-appropriate upsert statement.
func (r *Repository) BeginMetricsTransaction(driver string) (*MetricsTransaction, error) {
	tx, err := r.DB.Beginx()
	if err != nil {
		log.Warn("repository: error beginning metrics transaction")
		return nil, err
	}

	upsert := metricsUpsertSQLite
	if driver == "mysql" {
		upsert = metricsUpsertMySQL
	}

	stmt, err := tx.PrepareNamed(upsert)
	if err != nil {
		log.Warn("repository: error preparing metrics upsert")
		_ = tx.Rollback()
		return nil, err
	}

	return &MetricsTransaction{tx: tx, stmt: stmt}, nil
}

// Upsert writes one DailyMetrics row within the open transaction.
func (t *MetricsTransaction) Upsert(m schema.DailyMetrics) error {
	if _, err := t.stmt.Exec(m); err != nil {
		log.Errorf("repository: error upserting daily metrics row: %v", err)
		return err
	}
	return nil
}

// Commit commits the batched writes.
func (t *MetricsTransaction) Commit() error {
	if err := t.tx.Commit(); err != nil {
		log.Warn("repository: error committing metrics transaction")
		return err
	}
	return nil
}

// Rollback discards the batched writes, used when any row of the chunk
// fails to upsert.
func (t *MetricsTransaction) Rollback() error {
	return t.tx.Rollback()
}
