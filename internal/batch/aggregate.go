// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package batch

import (
	"fmt"
	"time"

	"github.com/sambio/activityengine/pkg/schema"
)

// aggKey groups DailyMetrics rows into one OrgDailyAggregate row.
type aggKey struct {
	scope schema.OrgScope
	orgID string
	date  string
}

type aggAccumulator struct {
	employeeCount   int
	sampleSize      int
	sumTotalHours   float64
	sumActualHours  float64
	sumFocusedHours float64
	sumEfficiency   float64
	dayShiftCount   int
	nightShiftCount int
	crossDayCount   int
}

// recomputeAggregates implements step 6: scan the newly written
// DailyMetrics rows and recompute OrgDailyAggregate for every
// (org_scope, org_id, date) they cover, replacing the prior row for each
// key; keys sharing an (org_scope, date) are replaced together in one
// transaction. Only rows for dates/scopes
// actually touched by this batch are replaced; other dates' aggregates
// are left untouched.
func (a *Analyzer) recomputeAggregates(rows []schema.DailyMetrics) error {
	if len(rows) == 0 {
		return nil
	}

	membership := make(map[string]schema.EmployeeOrgMembership, len(rows))
	accum := make(map[aggKey]*aggAccumulator)

	for _, m := range rows {
		mem, ok := membership[m.EmployeeID]
		if !ok {
			var err error
			mem, err = a.Repos.Sources.OrgMembershipFor(m.EmployeeID)
			if err != nil {
				// No directory row: the employee is excluded from org
				// rollups but their DailyMetrics row still stands.
				mem = schema.EmployeeOrgMembership{EmployeeID: m.EmployeeID}
			}
			membership[m.EmployeeID] = mem
		}

		for _, key := range aggKeysFor(mem, m.AnalysisDate) {
			acc, ok := accum[key]
			if !ok {
				acc = &aggAccumulator{}
				accum[key] = acc
			}
			acc.employeeCount++
			acc.sampleSize++
			acc.sumTotalHours += m.TotalHours
			acc.sumActualHours += m.ActualWorkHours
			acc.sumFocusedHours += m.FocusedWorkHours
			acc.sumEfficiency += m.EfficiencyRatio
			if m.ShiftType == schema.ShiftNight {
				acc.nightShiftCount++
			} else {
				acc.dayShiftCount++
			}
			if m.CrossDay {
				acc.crossDayCount++
			}
		}
	}

	byScopeDate := make(map[string][]schema.OrgDailyAggregate)
	now := time.Now()
	for key, acc := range accum {
		n := float64(acc.employeeCount)
		row := schema.OrgDailyAggregate{
			OrgScope:            key.scope,
			OrgID:               key.orgID,
			Date:                key.date,
			EmployeeCount:       acc.employeeCount,
			SampleSize:          acc.sampleSize,
			AvgTotalHours:       acc.sumTotalHours / n,
			AvgActualWorkHours:  acc.sumActualHours / n,
			AvgFocusedWorkHours: acc.sumFocusedHours / n,
			AvgEfficiencyRatio:  acc.sumEfficiency / n,
			DayShiftCount:       acc.dayShiftCount,
			NightShiftCount:     acc.nightShiftCount,
			CrossDayCount:       acc.crossDayCount,
			UpdatedAt:           now,
		}
		groupKey := fmt.Sprintf("%s\x00%s", key.scope, key.date)
		byScopeDate[groupKey] = append(byScopeDate[groupKey], row)
	}

	for _, group := range byScopeDate {
		if err := a.Repos.Aggregate.Replace(group[0].OrgScope, group[0].Date, group); err != nil {
			return fmt.Errorf("batch: replace org_daily_aggregate for %s/%s: %w", group[0].OrgScope, group[0].Date, err)
		}
	}
	return nil
}

// aggKeysFor returns the (scope, org_id) keys an employee's row feeds,
// one per org level (center, team, group) that has a non-empty ID.
func aggKeysFor(mem schema.EmployeeOrgMembership, date string) []aggKey {
	var keys []aggKey
	if mem.CenterID != "" {
		keys = append(keys, aggKey{schema.ScopeCenter, mem.CenterID, date})
	}
	if mem.TeamID != "" {
		keys = append(keys, aggKey{schema.ScopeTeam, mem.TeamID, date})
	}
	if mem.GroupID != "" {
		keys = append(keys, aggKey{schema.ScopeGroup, mem.GroupID, date})
	}
	return keys
}
