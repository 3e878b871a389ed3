// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package taskManager

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/sambio/activityengine/internal/batch"
	"github.com/sambio/activityengine/internal/repository"
	"github.com/sambio/activityengine/pkg/schema"
)

func TestStartShutdownWithoutSchedule(t *testing.T) {
	db, err := sqlx.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	raw, err := repository.ReadMigrationSQL("sqlite3")
	require.NoError(t, err)
	_, err = db.Exec(raw)
	require.NoError(t, err)

	repo := &repository.Repository{DB: db}
	repos := repository.NewRepositories(repo, "sqlite3")

	analyzer := &batch.Analyzer{
		Context: &batch.BatchContext{Location: time.UTC},
		Repos:   repos,
		Driver:  "sqlite3",
	}

	require.NoError(t, Start(analyzer, repos, schema.ProgramConfig{RetentionDays: 30}))
	require.NoError(t, Shutdown())
}
