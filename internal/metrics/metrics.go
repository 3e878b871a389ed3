// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics derives a DailyMetrics row from one employee-day's
// classified DailyTimeline.
package metrics

import (
	"time"

	"github.com/sambio/activityengine/pkg/schema"
)

// reliabilityDenominator is the tag_count a day needs to reach 100%
// data_reliability.
const reliabilityDenominator = 80.0

// defaultClaimDenominatorHours is the assumed shift length used for
// efficiency_ratio when no attendance claim is available.
const defaultClaimDenominatorHours = 8.0

// nightWindowStartMinute/nightWindowEndMinute bound [20:00, 08:00) in
// minutes-of-day, the shift-classification window from the work-time
// conservation property.
const (
	nightWindowStartMinute = 20 * 60
	nightWindowEndMinute   = 8 * 60
)

// Derive computes the DailyMetrics row for tl. claimedHours is the
// employee's self-reported hours for the day, or 0 if none was found.
// processingVersion stamps which rule-table/tag-table version produced
// the row.
func Derive(tl *schema.DailyTimeline, claimedHours float64, processingVersion string, now time.Time) schema.DailyMetrics {
	m := schema.DailyMetrics{
		EmployeeID:        tl.EmployeeID,
		AnalysisDate:      tl.Date,
		TotalHours:        tl.TotalHours,
		CrossDay:          tl.CrossDay,
		ClaimedHours:      claimedHours,
		ProcessingVersion: processingVersion,
		TagCount:          len(tl.Events),
		UpdatedAt:         now,
	}

	var nightWorkMinutes, workFamilyMinutes float64
	for _, e := range tl.Events {
		min := e.DurationMinutes
		switch {
		case e.State == schema.StateWorkConfirmed:
			m.FocusedWorkHours += min / 60
			m.WorkMinutes += min
		case e.State.IsWorkTime():
			m.WorkMinutes += min
		}
		if e.State.IsWorkTime() {
			m.ActualWorkHours += min / 60
			workFamilyMinutes += min
			if inNightWindow(e.Timestamp) {
				nightWorkMinutes += min
			}
		}

		switch e.State {
		case schema.StateMeeting, schema.StateEducation:
			m.MeetingMinutes += min
		case schema.StateTransit:
			m.MovementMinutes += min
		case schema.StateRest:
			m.RestMinutes += min
		case schema.StateIdle, schema.StateNonWork:
			m.IdleMinutes += min
		case schema.StateBreakfast:
			m.BreakfastMinutes += min
			m.BreakfastCount++
		case schema.StateLunch:
			m.LunchMinutes += min
			m.LunchCount++
		case schema.StateDinner:
			m.DinnerMinutes += min
			m.DinnerCount++
		case schema.StateMidnightMeal:
			m.MidnightMealMinutes += min
			m.MidnightMealCount++
		}
	}

	m.MealMinutes = m.BreakfastMinutes + m.LunchMinutes + m.DinnerMinutes + m.MidnightMealMinutes

	if claimedHours > 0 {
		m.EfficiencyRatio = m.ActualWorkHours / claimedHours
	} else {
		m.EfficiencyRatio = m.ActualWorkHours / defaultClaimDenominatorHours
	}

	m.ShiftType = schema.ShiftDay
	if tl.CrossDay || (workFamilyMinutes > 0 && nightWorkMinutes/workFamilyMinutes >= 0.5) {
		m.ShiftType = schema.ShiftNight
	}

	m.DataReliability = float64(m.TagCount) / reliabilityDenominator * 100
	if m.DataReliability > 100 {
		m.DataReliability = 100
	}

	return m
}

// inNightWindow reports whether t's clock time falls in [20:00, 08:00).
func inNightWindow(t time.Time) bool {
	minute := t.Hour()*60 + t.Minute()
	return minute >= nightWindowStartMinute || minute < nightWindowEndMinute
}
