// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package batch

import (
	"time"

	"github.com/sambio/activityengine/internal/equipmentsource"
	"github.com/sambio/activityengine/internal/mealsource"
	"github.com/sambio/activityengine/internal/repository"
	"github.com/sambio/activityengine/pkg/schema"
)

// employeeDay indexes one employee's three source streams by
// facility-local calendar date. Workers only ever read from this
// structure; the bulk reads that built it happen once, before any
// worker starts.
type employeeDay struct {
	gate      map[string][]schema.GateEvent
	meals     map[string][]schema.TaggedEvent
	equipment map[string][]schema.TaggedEvent
	claims    map[string]float64
}

// preloadedData is BatchContext's cached view of every source stream
// for every employee covered by the batch, for the full date range plus
// one trailing day (consulted only for night-shift stitching).
type preloadedData struct {
	byEmployee map[string]*employeeDay
}

// preload reads gate_events, meal_transactions, and equipment_logs for
// every employee in employees across [start, end] inclusive (plus one
// trailing day for night-shift lookahead), once per employee, and
// buckets the rows by calendar date in loc. This is the one-time bulk
// read step 2 of the execution model; workers never call back into
// sources.
func preload(sources *repository.SourceRepository, meals *mealsource.Source, equipment *equipmentsource.Source, employees []string, start, end time.Time, loc *time.Location) (*preloadedData, error) {
	data := &preloadedData{byEmployee: make(map[string]*employeeDay, len(employees))}

	from := start
	to := end.AddDate(0, 0, 2) // covers the next-day lookahead for the last date in range

	for _, emp := range employees {
		gateRows, err := sources.LoadGateEvents(emp, from, to)
		if err != nil {
			return nil, PreloadError("load gate events for %s: %v", emp, err)
		}
		mealRows, err := sources.LoadMealTransactions(emp, from, to)
		if err != nil {
			return nil, PreloadError("load meal transactions for %s: %v", emp, err)
		}
		equipRows, err := sources.LoadEquipmentLogs(emp, from, to)
		if err != nil {
			return nil, PreloadError("load equipment logs for %s: %v", emp, err)
		}
		claimRows, err := sources.LoadAttendanceClaims(emp, start.Format("2006-01-02"), end.Format("2006-01-02"))
		if err != nil {
			return nil, PreloadError("load attendance claims for %s: %v", emp, err)
		}

		claims := make(map[string]float64, len(claimRows))
		for _, c := range claimRows {
			claims[c.WorkDate] = c.ClaimedHours
		}

		ed := &employeeDay{
			gate:      bucketGate(gateRows, loc),
			meals:     bucketTagged(meals.Meals(mealRows), loc),
			equipment: bucketTagged(equipment.Equipment(equipRows), loc),
			claims:    claims,
		}
		data.byEmployee[emp] = ed
	}

	return data, nil
}

func bucketGate(rows []schema.GateEvent, loc *time.Location) map[string][]schema.GateEvent {
	out := make(map[string][]schema.GateEvent)
	for _, r := range rows {
		d := r.Timestamp.In(loc).Format("2006-01-02")
		out[d] = append(out[d], r)
	}
	return out
}

func bucketTagged(rows []schema.TaggedEvent, loc *time.Location) map[string][]schema.TaggedEvent {
	out := make(map[string][]schema.TaggedEvent)
	for _, r := range rows {
		d := r.Timestamp.In(loc).Format("2006-01-02")
		out[d] = append(out[d], r)
	}
	return out
}

// forDate returns employeeID's gate/meal/equipment slices for date and
// the following date, the six inputs sequencebuilder.Builder.Build
// expects. Missing entries resolve to nil slices.
func (d *preloadedData) forDate(employeeID, date string, loc *time.Location) (
	gate, nextGate []schema.GateEvent,
	meal, nextMeal []schema.TaggedEvent,
	equip, nextEquip []schema.TaggedEvent,
) {
	ed, ok := d.byEmployee[employeeID]
	if !ok {
		return nil, nil, nil, nil, nil, nil
	}

	t, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, nil, nil, nil, nil, nil
	}
	next := t.AddDate(0, 0, 1).Format("2006-01-02")

	return ed.gate[date], ed.gate[next], ed.meals[date], ed.meals[next], ed.equipment[date], ed.equipment[next]
}

// claimedHours returns employeeID's self-reported claimed hours for
// date, or 0 if no attendance_claims row was preloaded for that day.
func (d *preloadedData) claimedHours(employeeID, date string) float64 {
	ed, ok := d.byEmployee[employeeID]
	if !ok {
		return 0
	}
	return ed.claims[date]
}
