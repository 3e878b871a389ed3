// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package repository

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/qustavo/sqlhooks/v2"

	"github.com/sambio/activityengine/pkg/log"
)

var (
	instanceOnce sync.Once
	instance     *Repository
)

// Repository is the sqlx handle shared by SourceRepository, MetricsRepository,
// AggregateRepository, and ProcessingLog. One process holds exactly one
// Repository, constructed once via Connect at startup and handed to
// BatchAnalyzer by reference, a single DB-connection singleton
// generalized past one job-archive connection.
type Repository struct {
	DB *sqlx.DB
}

// Connect opens the configured driver, registers an sqlhooks-wrapped
// sqlite3 driver for query timing/logging (mirrors dbConnection.go's
// sqlite3WithHooks registration), applies driver-appropriate pool limits,
// and checks the schema is at the version the embedded migrations expect.
// Connect is idempotent; only the first call's (driver, db) pair takes
// effect.
func Connect(driver string, db string) *Repository {
	var err error
	var dbHandle *sqlx.DB

	instanceOnce.Do(func() {
		switch driver {
		case "sqlite3":
			sql.Register("sqlite3WithHooks", sqlhooks.Wrap(&sqlite3.SQLiteDriver{}, &queryHooks{}))
			dbHandle, err = sqlx.Open("sqlite3WithHooks", fmt.Sprintf("%s?_foreign_keys=on", db))
			if err != nil {
				log.Fatal(err)
			}
			// sqlite does not multiplex writers; one connection avoids
			// lock-contention errors under the worker pool's concurrent
			// persistence calls.
			dbHandle.SetMaxOpenConns(1)
		case "mysql":
			dbHandle, err = sqlx.Open("mysql", fmt.Sprintf("%s?multiStatements=true&parseTime=true", db))
			if err != nil {
				log.Fatalf("sqlx.Open() error: %v", err)
			}
			dbHandle.SetConnMaxLifetime(3 * time.Minute)
			dbHandle.SetMaxOpenConns(16)
			dbHandle.SetMaxIdleConns(16)
		default:
			log.Fatalf("unsupported database driver: %s", driver)
		}

		instance = &Repository{DB: dbHandle}
		checkSchemaVersion(driver, dbHandle.DB)
	})

	return instance
}

// GetConnection returns the Repository constructed by Connect. It exits
// the process via log.Fatalf if called before Connect, a fail-fast
// singleton access pattern.
func GetConnection() *Repository {
	if instance == nil {
		log.Fatalf("repository: Connect must be called before GetConnection")
	}
	return instance
}

// queryHooks implements sqlhooks.Hooks, logging every query and its elapsed time at debug level.
// Registered the same way as a no-op Hooks{} struct would be;
// this one actually measures instead of being a structural placeholder.
type queryHooks struct{}
