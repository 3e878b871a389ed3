// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/sambio/activityengine/internal/batch"
	"github.com/sambio/activityengine/internal/httpapi"
	"github.com/sambio/activityengine/internal/repository"
)

func setup(t *testing.T) *httpapi.Api {
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
		Context:      &batch.BatchContext{Location: time.UTC},
		Repos:        repos,
		Driver:       "sqlite3",
		WorkerCount:  1,
		ChunkSize:    64,
		ChunkTimeout: time.Minute,
		RetryCount:   1,
	}

	return httpapi.New(analyzer)
}

func TestHealthz(t *testing.T) {
	api := setup(t)
	r := mux.NewRouter()
	api.MountRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)

	require.Equal(t, http.StatusOK, rw.Code)
}

func TestPostBatchThenGetReturnsAccepted(t *testing.T) {
	api := setup(t)
	r := mux.NewRouter()
	api.MountRoutes(r)

	body, err := json.Marshal(map[string]any{
		"startDate": "2026-03-02",
		"endDate":   "2026-03-02",
		"scopeKind": "employees",
		"employees": []string{"E1"},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/batch", bytes.NewReader(body))
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)

	require.Equal(t, http.StatusAccepted, rw.Code)

	var posted map[string]any
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &posted))
	id, _ := posted["id"].(string)
	require.NotEmpty(t, id)

	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/batch/"+id, nil)
	getRW := httptest.NewRecorder()
	r.ServeHTTP(getRW, getReq)
	require.Equal(t, http.StatusOK, getRW.Code)
}

func TestGetBatchUnknownIDReturnsNotFound(t *testing.T) {
	api := setup(t)
	r := mux.NewRouter()
	api.MountRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/batch/does-not-exist", nil)
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)

	require.Equal(t, http.StatusNotFound, rw.Code)
}
