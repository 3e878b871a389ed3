// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package repository is the persistence layer: one sqlx connection
// shared by a SourceRepository (reads gate_events/meal_transactions/
// equipment_logs/attendance_claims), a MetricsRepository (upserts
// daily_metrics), an AggregateRepository (replaces org_daily_aggregate
// rows), and a ProcessingLogRepository (appends processing_log rows).
package repository

// Repositories bundles the four sink/source collaborators BatchAnalyzer
// needs, all sharing one Repository's connection.
type Repositories struct {
	Sources   *SourceRepository
	Metrics   *MetricsRepository
	Aggregate *AggregateRepository
	Log       *ProcessingLogRepository
}

// NewRepositories wires all four collaborators against repo's
// connection, using driver to pick the upsert dialect.
func NewRepositories(repo *Repository, driver string) *Repositories {
	return &Repositories{
		Sources:   NewSourceRepository(repo.DB),
		Metrics:   NewMetricsRepository(repo, driver),
		Aggregate: NewAggregateRepository(repo.DB),
		Log:       NewProcessingLogRepository(repo.DB),
	}
}
