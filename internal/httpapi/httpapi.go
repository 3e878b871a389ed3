// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package httpapi mounts the batch-invocation surface: triggering a
// run, polling its report, and the operator-facing health/metrics
// endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sambio/activityengine/internal/batch"
	"github.com/sambio/activityengine/pkg/log"
)

// ErrorResponse is the JSON body written on any non-2xx response,
// grounded on a conventional REST error-response shape.
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// runState tracks one batch invocation from submission through
// completion, polled by GET /api/v1/batch/{id}.
type runState struct {
	ID        string        `json:"id"`
	Status    string        `json:"status"` // "running", "success", "partial", "cancelled", "failed"
	Report    *batch.Report `json:"report,omitempty"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"startedAt"`
}

// Api mounts BatchAnalyzer behind an HTTP surface. Runs are tracked
// in-memory only; a restart loses history. This is a best-effort
// in-process tracker, not a durable queue.
type Api struct {
	Analyzer *batch.Analyzer

	mu   sync.Mutex
	runs map[string]*runState
}

func New(analyzer *batch.Analyzer) *Api {
	return &Api{Analyzer: analyzer, runs: make(map[string]*runState)}
}

// MountRoutes registers the batch-invocation and operator routes on r.
func (a *Api) MountRoutes(r *mux.Router) {
	sub := r.PathPrefix("/api/v1").Subrouter()
	sub.HandleFunc("/batch", a.postBatch).Methods(http.MethodPost)
	sub.HandleFunc("/batch/{id}", a.getBatch).Methods(http.MethodGet)

	r.HandleFunc("/healthz", a.healthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

// batchRequestBody is the wire shape of POST /api/v1/batch.
type batchRequestBody struct {
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	ScopeKind   string   `json:"scopeKind"` // "whole", "center", "team", "group", "employees"
	OrgID       string   `json:"orgId,omitempty"`
	Employees   []string `json:"employees,omitempty"`
	ClaimFilter bool     `json:"claimFilter,omitempty"`
}

func (b batchRequestBody) toBatchRequest() (batch.BatchRequest, error) {
	var kind batch.ScopeKind
	switch b.ScopeKind {
	case "whole", "":
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
		return batch.BatchRequest{}, fmt.Errorf("unknown scopeKind %q", b.ScopeKind)
	}

	return batch.BatchRequest{
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
		Scope:       batch.ScopeSpec{Kind: kind, OrgID: b.OrgID, Employees: b.Employees},
		ClaimFilter: b.ClaimFilter,
	}, nil
}

// postBatch starts a batch run in the background and returns its id
// immediately; poll GET /api/v1/batch/{id} for the outcome.
func (a *Api) postBatch(rw http.ResponseWriter, r *http.Request) {
	var body batchRequestBody
	if err := decode(r.Body, &body); err != nil {
		handleError(fmt.Errorf("parsing request body failed: %w", err), http.StatusBadRequest, rw)
		return
	}

	req, err := body.toBatchRequest()
	if err != nil {
		handleError(err, http.StatusBadRequest, rw)
		return
	}

	id := uuid.NewString()
	state := &runState{ID: id, Status: "running", StartedAt: time.Now()}

	a.mu.Lock()
	a.runs[id] = state
	a.mu.Unlock()

	go a.run(id, req)

	rw.Header().Add("Content-Type", "application/json")
	rw.WriteHeader(http.StatusAccepted)
	json.NewEncoder(rw).Encode(state)
}

func (a *Api) run(id string, req batch.BatchRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), 6*time.Hour)
	defer cancel()

	report, err := a.Analyzer.RunBatch(ctx, req)

	a.mu.Lock()
	defer a.mu.Unlock()
	state := a.runs[id]
	if err != nil {
		state.Status = "failed"
		state.Error = err.Error()
		log.Errorf("httpapi: batch run %s failed: %v", id, err)
		return
	}
	state.Report = report
	state.Status = report.Status()
}

func (a *Api) getBatch(rw http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	a.mu.Lock()
	state, ok := a.runs[id]
	a.mu.Unlock()

	if !ok {
		handleError(fmt.Errorf("no batch run with id %q", id), http.StatusNotFound, rw)
		return
	}

	rw.Header().Add("Content-Type", "application/json")
	json.NewEncoder(rw).Encode(state)
}

func (a *Api) healthz(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Add("Content-Type", "application/json")
	json.NewEncoder(rw).Encode(map[string]string{"status": "ok"})
}

func handleError(err error, statusCode int, rw http.ResponseWriter) {
	log.Warnf("httpapi: %s", err.Error())
	rw.Header().Add("Content-Type", "application/json")
	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(ErrorResponse{
		Status: http.StatusText(statusCode),
		Error:  err.Error(),
	})
}

func decode(r io.Reader, val interface{}) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(val)
}
