// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package taskManager runs BatchAnalyzer on a schedule and prunes old
// DailyMetrics/OrgDailyAggregate rows, the long-lived-service counterpart
// to the one-shot CLI invocation in cmd/activity-batch.
package taskManager

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/sambio/activityengine/internal/batch"
	"github.com/sambio/activityengine/internal/repository"
	"github.com/sambio/activityengine/pkg/log"
	"github.com/sambio/activityengine/pkg/schema"
)

var s gocron.Scheduler

// Start builds the scheduler and registers the nightly batch run plus,
// when cfg.RetentionDays is set, the retention job. The analyzer's
// BatchContext must already have WatchAll registered by the caller.
func Start(analyzer *batch.Analyzer, repos *repository.Repositories, cfg schema.ProgramConfig) error {
	var err error
	s, err = gocron.NewScheduler()
	if err != nil {
		return err
	}

	if cfg.Schedule != "" {
		registerNightlyBatch(analyzer, cfg.Schedule)
	} else {
		log.Info("taskManager: no schedule configured, nightly batch run disabled")
	}

	if cfg.RetentionDays > 0 {
		registerRetention(repos, cfg.RetentionDays)
	}

	s.Start()
	return nil
}

// Shutdown stops the scheduler, waiting for any in-flight job to finish.
func Shutdown() error {
	if s == nil {
		return nil
	}
	return s.Shutdown()
}

// registerNightlyBatch runs a whole-organization batch for the previous
// facility-local day on cronExpr (five-field cron syntax).
func registerNightlyBatch(analyzer *batch.Analyzer, cronExpr string) {
	log.Infof("taskManager: register nightly batch service with schedule %q", cronExpr)

	s.NewJob(gocron.CronJob(cronExpr, false),
		gocron.NewTask(
			func() {
				loc := analyzer.Context.Location
				yesterday := time.Now().In(loc).AddDate(0, 0, -1).Format("2006-01-02")

				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
				defer cancel()

				report, err := analyzer.RunBatch(ctx, batch.BatchRequest{
					StartDate: yesterday,
					EndDate:   yesterday,
					Scope:     batch.ScopeSpec{Kind: batch.ScopeWhole},
				})
				if err != nil {
					log.Errorf("taskManager: nightly batch failed: %v", err)
					return
				}
				log.Infof("taskManager: nightly batch for %s: attempted=%d succeeded=%d failed=%d",
					yesterday, report.Attempted, report.Succeeded, report.Failed)
			}))
}

// registerRetention deletes DailyMetrics/OrgDailyAggregate rows older
// than retentionDays, once a day.
func registerRetention(repos *repository.Repositories, retentionDays int) {
	log.Infof("taskManager: register retention service, keeping %d days", retentionDays)

	s.NewJob(gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 30, 0))),
		gocron.NewTask(
			func() {
				cutoff := time.Now().AddDate(0, 0, -retentionDays).Format("2006-01-02")

				n, err := repos.Metrics.DeleteBefore(cutoff)
				if err != nil {
					log.Errorf("taskManager: retention delete daily_metrics failed: %v", err)
				} else {
					log.Infof("taskManager: retention removed %d daily_metrics rows before %s", n, cutoff)
				}

				n, err = repos.Aggregate.DeleteBefore(cutoff)
				if err != nil {
					log.Errorf("taskManager: retention delete org_daily_aggregate failed: %v", err)
				} else {
					log.Infof("taskManager: retention removed %d org_daily_aggregate rows before %s", n, cutoff)
				}
			}))
}
