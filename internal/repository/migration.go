// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package repository

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/sambio/activityengine/pkg/log"
)

// schemaVersion is the migration version the running binary expects.
// Bump alongside new files under migrations/.
const schemaVersion uint = 1

//go:embed migrations/*
var migrationFiles embed.FS

func newMigrate(driverName string, db *sql.DB) (*migrate.Migrate, error) {
	switch driverName {
	case "sqlite3":
		driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
		if err != nil {
			return nil, err
		}
		d, err := iofs.New(migrationFiles, "migrations/sqlite3")
		if err != nil {
			return nil, err
		}
		return migrate.NewWithInstance("iofs", d, "sqlite3", driver)
	case "mysql":
		driver, err := mysql.WithInstance(db, &mysql.Config{})
		if err != nil {
			return nil, err
		}
		d, err := iofs.New(migrationFiles, "migrations/mysql")
		if err != nil {
			return nil, err
		}
		return migrate.NewWithInstance("iofs", d, "mysql", driver)
	default:
		return nil, fmt.Errorf("repository: unsupported database driver %q", driverName)
	}
}

func checkSchemaVersion(driverName string, db *sql.DB) {
	m, err := newMigrate(driverName, db)
	if err != nil {
		log.Fatal(err)
	}

	v, _, err := m.Version()
	if err != nil {
		if err == migrate.ErrNilVersion {
			log.Warn("repository: database has no schema yet; run with -migrate-db")
			return
		}
		log.Fatal(err)
	}

	if v != schemaVersion {
		log.Warnf("repository: schema version %d, binary expects %d; run with -migrate-db", v, schemaVersion)
	}
}

// ReadMigrationSQL returns the single init-migration file's contents for
// driver, for tests that apply schema directly to an in-memory database
// rather than through golang-migrate's version bookkeeping.
func ReadMigrationSQL(driver string) (string, error) {
	raw, err := migrationFiles.ReadFile(fmt.Sprintf("migrations/%s/000001_init.up.sql", driver))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// MigrateDB applies all pending migrations for driver, opening its own
// short-lived connection string (independent of Connect/GetConnection).
func MigrateDB(driverName string, db string) error {
	var m *migrate.Migrate
	var err error

	switch driverName {
	case "sqlite3":
		d, ferr := iofs.New(migrationFiles, "migrations/sqlite3")
		if ferr != nil {
			return ferr
		}
		m, err = migrate.NewWithSourceInstance("iofs", d, fmt.Sprintf("sqlite3://%s?_foreign_keys=on", db))
	case "mysql":
		d, ferr := iofs.New(migrationFiles, "migrations/mysql")
		if ferr != nil {
			return ferr
		}
		m, err = migrate.NewWithSourceInstance("iofs", d, fmt.Sprintf("mysql://%s?multiStatements=true", db))
	default:
		return fmt.Errorf("repository: unsupported database driver %q", driverName)
	}
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
