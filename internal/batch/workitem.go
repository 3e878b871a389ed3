// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package batch

import (
	"time"

	"github.com/sambio/activityengine/internal/repository"
	"github.com/sambio/activityengine/pkg/schema"
)

// workItem is a single (employee, date) pair to analyze.
type workItem struct {
	EmployeeID string
	Date       string // YYYY-MM-DD, facility-local
}

// dateRange expands [start, end] (inclusive, YYYY-MM-DD) into the list
// of calendar dates in loc.
func dateRange(start, end string, loc *time.Location) ([]string, error) {
	s, err := time.ParseInLocation("2006-01-02", start, loc)
	if err != nil {
		return nil, ConfigError("invalid start_date %q: %v", start, err)
	}
	e, err := time.ParseInLocation("2006-01-02", end, loc)
	if err != nil {
		return nil, ConfigError("invalid end_date %q: %v", end, err)
	}
	if e.Before(s) {
		return nil, ConfigError("end_date %q before start_date %q", end, start)
	}

	var dates []string
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates, nil
}

// resolveEmployees expands scope into a concrete, deduplicated employee
// ID list.
func resolveEmployees(sources *repository.SourceRepository, scope ScopeSpec, start, end time.Time) ([]string, error) {
	switch scope.Kind {
	case ScopeEmployees:
		return dedup(scope.Employees), nil
	case ScopeWhole:
		ids, err := sources.DistinctEmployeeIDs(start, end.AddDate(0, 0, 1))
		if err != nil {
			return nil, PreloadError("resolve whole-org employee list: %v", err)
		}
		return ids, nil
	case ScopeCenterID:
		ids, err := sources.EmployeesByOrg(schema.ScopeCenter, scope.OrgID)
		if err != nil {
			return nil, PreloadError("resolve center=%s employee list: %v", scope.OrgID, err)
		}
		return ids, nil
	case ScopeTeamID:
		ids, err := sources.EmployeesByOrg(schema.ScopeTeam, scope.OrgID)
		if err != nil {
			return nil, PreloadError("resolve team=%s employee list: %v", scope.OrgID, err)
		}
		return ids, nil
	case ScopeGroupID:
		ids, err := sources.EmployeesByOrg(schema.ScopeGroup, scope.OrgID)
		if err != nil {
			return nil, PreloadError("resolve group=%s employee list: %v", scope.OrgID, err)
		}
		return ids, nil
	default:
		return nil, ConfigError("unknown scope kind %q", scope.Kind)
	}
}

func dedup(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// resolveWorkItems builds the full (employee, date) cross product,
// optionally dropping items whose employee has no positive
// claimed-hours row for that date when claimFilter is set.
func resolveWorkItems(sources *repository.SourceRepository, req BatchRequest, loc *time.Location) ([]workItem, error) {
	dates, err := dateRange(req.StartDate, req.EndDate, loc)
	if err != nil {
		return nil, err
	}
	start, _ := time.ParseInLocation("2006-01-02", req.StartDate, loc)
	end, _ := time.ParseInLocation("2006-01-02", req.EndDate, loc)

	employees, err := resolveEmployees(sources, req.Scope, start, end)
	if err != nil {
		return nil, err
	}

	items := make([]workItem, 0, len(employees)*len(dates))
	for _, emp := range employees {
		var claims map[string]float64
		if req.ClaimFilter {
			rows, err := sources.LoadAttendanceClaims(emp, req.StartDate, req.EndDate)
			if err != nil {
				return nil, PreloadError("load attendance claims for %s: %v", emp, err)
			}
			claims = make(map[string]float64, len(rows))
			for _, r := range rows {
				claims[r.WorkDate] = r.ClaimedHours
			}
		}

		for _, d := range dates {
			if req.ClaimFilter && claims[d] <= 0 {
				continue
			}
			items = append(items, workItem{EmployeeID: emp, Date: d})
		}
	}

	return items, nil
}
