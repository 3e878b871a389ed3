// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sambio/activityengine/internal/batch"
	"github.com/sambio/activityengine/internal/config"
	"github.com/sambio/activityengine/internal/httpapi"
	"github.com/sambio/activityengine/internal/repository"
	"github.com/sambio/activityengine/internal/taskManager"
	"github.com/sambio/activityengine/pkg/log"
)

// Process exit codes for the one-shot CLI path: 0 every item succeeded,
// 1 some items failed or the run was cancelled, 2 the run never started
// (configuration or preload error).
const (
	exitSuccess = 0
	exitPartial = 1
	exitFatal   = 2
)

func main() {
	cliInit()

	log.SetLogLevel(flagLogLevel)
	log.SetLogDateTime(flagLogDateTime)

	if err := config.Init(flagConfigFile); err != nil {
		log.Fatal(err)
	}

	if flagMigrateDB {
		if err := repository.MigrateDB(config.Keys.DBDriver, config.Keys.DB); err != nil {
			log.Fatal(err)
		}
		log.Print("schema migration applied")
		return
	}

	repository.Connect(config.Keys.DBDriver, config.Keys.DB)
	repo := repository.GetConnection()
	repos := repository.NewRepositories(repo, config.Keys.DBDriver)

	batchCtx, err := batch.NewBatchContext(config.Keys)
	if err != nil {
		log.Fatal(err)
	}
	batchCtx.WatchAll()

	analyzer := batch.NewAnalyzer(batchCtx, repos, config.Keys.DBDriver, config.Keys)

	if flagStartDate != "" {
		os.Exit(runOneShot(analyzer))
	}

	if !flagServer {
		log.Fatal("nothing to do: pass -start-date for a one-shot run or -server to run as a service")
	}

	runServer(analyzer, repos)
}

func runOneShot(analyzer *batch.Analyzer) int {
	req, err := buildBatchRequest()
	if err != nil {
		log.Error(err)
		return exitFatal
	}

	ctx, cancel := context.WithTimeout(context.Background(), 6*time.Hour)
	defer cancel()

	report, err := analyzer.RunBatch(ctx, req)
	if err != nil {
		log.Errorf("batch run failed: %v", err)
		return exitFatal
	}

	log.Infof("batch run finished: attempted=%d succeeded=%d failed=%d duration=%s",
		report.Attempted, report.Succeeded, report.Failed, report.Duration)
	for _, f := range report.Failures {
		log.Warnf("  %s/%s: %s: %s", f.EmployeeID, f.Date, f.ErrorKind, f.Summary)
	}

	switch report.Status() {
	case "success":
		return exitSuccess
	default:
		return exitPartial
	}
}

func buildBatchRequest() (batch.BatchRequest, error) {
	if flagEndDate == "" {
		flagEndDate = flagStartDate
	}

	var kind batch.ScopeKind
	switch flagScopeKind {
	case "whole":
		kind = batch.ScopeWhole
	case "center":
		kind = batch.ScopeCenterID
	case "team":
		kind = batch.ScopeTeamID
	case "group":
		kind = batch.ScopeGroupID
	case "employees":
		kind = batch.ScopeEmployees
	default:
		return batch.BatchRequest{}, fmt.Errorf("unknown -scope %q", flagScopeKind)
	}

	var employees []string
	if flagEmployees != "" {
		employees = strings.Split(flagEmployees, ",")
	}

	return batch.BatchRequest{
		StartDate:   flagStartDate,
		EndDate:     flagEndDate,
		Scope:       batch.ScopeSpec{Kind: kind, OrgID: flagOrgID, Employees: employees},
		ClaimFilter: flagClaimFilter,
	}, nil
}

// runServer starts the scheduler and HTTP API and blocks until SIGINT/
// SIGTERM, mirroring a common listener-then-signal-wait
// shape.
func runServer(analyzer *batch.Analyzer, repos *repository.Repositories) {
	if err := taskManager.Start(analyzer, repos, config.Keys); err != nil {
		log.Fatal(err)
	}

	api := httpapi.New(analyzer)
	r := mux.NewRouter()
	api.MountRoutes(r)
	r.Use(handlers.RecoveryHandler(handlers.PrintRecoveryStack(true)))

	server := http.Server{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Handler:      r,
		Addr:         config.Keys.Addr,
	}

	listener, err := net.Listen("tcp", config.Keys.Addr)
	if err != nil {
		log.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()
	log.Printf("HTTP server listening at %s", config.Keys.Addr)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	if err := taskManager.Shutdown(); err != nil {
		log.Errorf("scheduler shutdown: %v", err)
	}
	if err := server.Shutdown(context.Background()); err != nil {
		log.Errorf("http server shutdown: %v", err)
	}
	wg.Wait()
	log.Print("graceful shutdown completed")
}
