// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package batch

import "time"

// Failure is one work item's error kind and a short human summary, the
// shape runBatch's report enumerates failed items with.
type Failure struct {
	EmployeeID string
	Date       string
	ErrorKind  ErrorKind
	Summary    string
}

// Report is runBatch's return value: counts, wall-clock duration,
// throughput, and the list of failures. Cancelled is set when the
// batch ended early on a cancellation signal rather than running to
// completion.
type Report struct {
	Attempted int
	Succeeded int
	Failed    int

	StartedAt time.Time
	EndedAt   time.Time
	Duration  time.Duration
	Throughput float64 // items/second

	Cancelled bool
	Failures  []Failure
}

// Status renders the report's outcome as the processing_log status
// column / the process exit-code policy of the invocation surface:
// "success" (exit 0), "partial" (exit 1, Failed > 0), or "cancelled".
func (r *Report) Status() string {
	switch {
	case r.Cancelled:
		return "cancelled"
	case r.Failed > 0:
		return "partial"
	default:
		return "success"
	}
}

func (r *Report) finish(start time.Time) {
	r.StartedAt = start
	r.EndedAt = time.Now()
	r.Duration = r.EndedAt.Sub(r.StartedAt)
	if r.Duration > 0 {
		r.Throughput = float64(r.Attempted) / r.Duration.Seconds()
	}
}
