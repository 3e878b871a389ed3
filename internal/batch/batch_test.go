// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package batch

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/sambio/activityengine/internal/classifier"
	"github.com/sambio/activityengine/internal/equipmentsource"
	"github.com/sambio/activityengine/internal/mealsource"
	"github.com/sambio/activityengine/internal/repository"
	"github.com/sambio/activityengine/internal/sequencebuilder"
	"github.com/sambio/activityengine/internal/tagmapper"
	"github.com/sambio/activityengine/pkg/schema"
)

func testAnalyzer(t *testing.T) (*Analyzer, *sqlx.DB) {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	raw, err := repository.ReadMigrationSQL("sqlite3")
	require.NoError(t, err)
	_, err = db.Exec(raw)
	require.NoError(t, err)

	repo := &repository.Repository{DB: db}
	repos := repository.NewRepositories(repo, "sqlite3")

	mapper := tagmapper.New()
	cfg := schema.MealWindowConfig{
		Breakfast: schema.TimeWindow{Start: "06:30", End: "09:00"},
		Lunch:     schema.TimeWindow{Start: "11:20", End: "13:20"},
		Dinner:    schema.TimeWindow{Start: "17:00", End: "20:00"},
		Midnight:  schema.TimeWindow{Start: "23:30", End: "01:00"},
	}

	batchCtx := &BatchContext{
		Mapper:            mapper,
		Meals:             mealsource.New(cfg),
		Equipment:         equipmentsource.New(),
		Sequence:          sequencebuilder.New(mapper, 0, 120*time.Minute),
		Classifier:        classifier.New(cfg),
		Location:          time.UTC,
		ProcessingVersion: "test",
	}

	a := &Analyzer{
		Context:      batchCtx,
		Repos:        repos,
		Driver:       "sqlite3",
		WorkerCount:  2,
		ChunkSize:    defaultChunkSize,
		ChunkTimeout: defaultChunkTimeout,
		RetryCount:   defaultRetryCount,
	}
	return a, db
}

func seedSimpleDayShift(t *testing.T, db *sqlx.DB) {
	t.Helper()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	_, err := db.Exec(`INSERT INTO gate_events (employee_id, timestamp, location_code, location_name, direction) VALUES
		('E1', ?, 'gate-in', 'main-gate-in', 'entry'),
		('E1', ?, 'meeting-1', 'meeting room', ''),
		('E1', ?, 'g1', 'main-work-area', ''),
		('E1', ?, 'g1', 'main-work-area', ''),
		('E1', ?, 'gate-out', 'main-gate-out', 'exit')`,
		day.Add(8*time.Hour+2*time.Minute),
		day.Add(9*time.Hour),
		day.Add(10*time.Hour+30*time.Minute),
		day.Add(12*time.Hour+45*time.Minute),
		day.Add(18*time.Hour+5*time.Minute),
	)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO meal_transactions (employee_id, purchase_time, serving_counter, restaurant_name, takeout_flag, meal_category) VALUES
		('E1', ?, 'cafeteria-1', '', 'no', 'lunch')`,
		day.Add(12*time.Hour+10*time.Minute),
	)
	require.NoError(t, err)
}

func TestRunBatchIdempotence(t *testing.T) {
	a, db := testAnalyzer(t)
	seedSimpleDayShift(t, db)

	req := BatchRequest{
		StartDate: "2026-03-02",
		EndDate:   "2026-03-02",
		Scope:     ScopeSpec{Kind: ScopeEmployees, Employees: []string{"E1"}},
	}

	report1, err := a.RunBatch(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, report1.Attempted)
	require.Equal(t, 1, report1.Succeeded)
	require.Equal(t, 0, report1.Failed)

	var first schema.DailyMetrics
	require.NoError(t, db.Get(&first, `SELECT * FROM daily_metrics WHERE employee_id='E1' AND analysis_date='2026-03-02'`))

	report2, err := a.RunBatch(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, report2.Succeeded)

	var second schema.DailyMetrics
	require.NoError(t, db.Get(&second, `SELECT * FROM daily_metrics WHERE employee_id='E1' AND analysis_date='2026-03-02'`))

	require.Equal(t, first.TotalHours, second.TotalHours)
	require.Equal(t, first.ActualWorkHours, second.ActualWorkHours)
	require.Equal(t, first.LunchCount, second.LunchCount)

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM daily_metrics WHERE employee_id='E1'`))
	require.Equal(t, 1, count)
}

func TestRunBatchEmptyScopeReturnsEmptyReport(t *testing.T) {
	a, _ := testAnalyzer(t)
	report, err := a.RunBatch(context.Background(), BatchRequest{
		StartDate: "2026-03-02",
		EndDate:   "2026-03-02",
		Scope:     ScopeSpec{Kind: ScopeEmployees, Employees: nil},
	})
	require.NoError(t, err)
	require.Equal(t, 0, report.Attempted)
}
