// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package repository

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/sambio/activityengine/pkg/schema"
)

// openTestDB opens a fresh in-memory sqlite3 database and applies the
// embedded schema directly (bypassing golang-migrate's version
// bookkeeping, which needs a durable file to be meaningful).
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	raw, err := ReadMigrationSQL("sqlite3")
	require.NoError(t, err)
	_, err = db.Exec(raw)
	require.NoError(t, err)

	return db
}

func TestSourceRepositoryLoadGateEvents(t *testing.T) {
	db := openTestDB(t)
	sources := NewSourceRepository(db)

	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	_, err := db.Exec(
		`INSERT INTO gate_events (employee_id, timestamp, location_code, location_name, direction) VALUES
		 (?, ?, 'G1', 'Main Gate', 'entry'),
		 (?, ?, 'G1', 'Main Gate', 'exit')`,
		"E1", base, "E1", base.Add(8*time.Hour),
	)
	require.NoError(t, err)

	rows, err := sources.LoadGateEvents("E1", base.Add(-time.Hour), base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "E1", rows[0].EmployeeID)
	require.True(t, rows[0].Timestamp.Equal(base))
}

func TestMetricsRepositoryUpsertChunk(t *testing.T) {
	db := openTestDB(t)
	repo := &Repository{DB: db}
	metrics := NewMetricsRepository(repo, "sqlite3")

	row := schema.DailyMetrics{
		EmployeeID:   "E1",
		AnalysisDate: "2026-03-02",
		TotalHours:   8,
		UpdatedAt:    time.Now().UTC(),
	}

	require.NoError(t, metrics.UpsertChunk([]schema.DailyMetrics{row}))

	row.TotalHours = 9
	require.NoError(t, metrics.UpsertChunk([]schema.DailyMetrics{row}))

	var got []schema.DailyMetrics
	require.NoError(t, db.Select(&got, `SELECT * FROM daily_metrics WHERE employee_id = 'E1' AND analysis_date = '2026-03-02'`))
	require.Len(t, got, 1)
	require.Equal(t, 9.0, got[0].TotalHours)
}

func TestAggregateRepositoryReplace(t *testing.T) {
	db := openTestDB(t)
	agg := NewAggregateRepository(db)

	now := time.Now().UTC()
	rows := []schema.OrgDailyAggregate{
		{OrgScope: schema.ScopeTeam, OrgID: "T1", Date: "2026-03-02", EmployeeCount: 5, UpdatedAt: now},
	}
	require.NoError(t, agg.Replace(schema.ScopeTeam, "2026-03-02", rows))

	rows[0].EmployeeCount = 6
	require.NoError(t, agg.Replace(schema.ScopeTeam, "2026-03-02", rows))

	var got []schema.OrgDailyAggregate
	require.NoError(t, db.Select(&got, `SELECT * FROM org_daily_aggregate WHERE org_scope = 'team' AND analysis_date = '2026-03-02'`))
	require.Len(t, got, 1)
	require.Equal(t, 6, got[0].EmployeeCount)
}

func TestProcessingLogInsert(t *testing.T) {
	db := openTestDB(t)
	logs := NewProcessingLogRepository(db)

	now := time.Now().UTC()
	require.NoError(t, logs.Insert(ProcessingLogEntry{
		StartedAt: now,
		EndedAt:   now.Add(time.Minute),
		Attempted: 10,
		Succeeded: 9,
		Failed:    1,
		Status:    "partial",
	}))

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM processing_log`))
	require.Equal(t, 1, count)
}
