// Copyright (C) 2023 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sequencebuilder merges gate, meal, and equipment events into
// a single chronologically ordered per-employee-day sequence and
// assigns inter-event durations.
package sequencebuilder

import (
	"fmt"
	"sort"
	"time"

	"github.com/sambio/activityengine/internal/tagmapper"
	"github.com/sambio/activityengine/pkg/errs"
	"github.com/sambio/activityengine/pkg/schema"
)

const (
	coalesceWindow    = 60 * time.Second
	defaultLastDur    = 5 * time.Minute
	nightShiftEveningCutoff = 20 * 60 // 20:00 in minutes-of-day
	nightShiftMorningCutoff = 8 * 60  // 08:00 in minutes-of-day
)

// Builder merges and durations a single employee-day's event streams.
// MinGap/MaxGap bound assigned durations; they default to 0 and 120
// minutes when zero.
type Builder struct {
	Mapper *tagmapper.Mapper
	MinGap time.Duration
	MaxGap time.Duration
}

// New returns a Builder using m for gate-event tag resolution and the
// configured gap bounds (0 for either falls back to the default 0/120
// minute bounds).
func New(m *tagmapper.Mapper, minGap, maxGap time.Duration) *Builder {
	if maxGap <= 0 {
		maxGap = 120 * time.Minute
	}
	return &Builder{Mapper: m, MinGap: minGap, MaxGap: maxGap}
}

// Build runs the merge/coalesce/duration pipeline for one employee-day.
// todayGate/todayMeals/todayEquipment cover [date 00:00, date+1 00:00);
// nextDay* cover the early hours of date+1 and are consulted only for
// night-shift stitching. date is returned unchanged unless a night
// shift is detected, in which case the timeline still keys to date (the
// earlier day) with CrossDay set.
func (b *Builder) Build(
	employeeID string,
	date string,
	todayGate []schema.GateEvent,
	todayMeals []schema.TaggedEvent,
	todayEquipment []schema.TaggedEvent,
	nextDayGate []schema.GateEvent,
	nextDayMeals []schema.TaggedEvent,
	nextDayEquipment []schema.TaggedEvent,
) (*schema.DailyTimeline, error) {
	if err := checkGateOrder(todayGate); err != nil {
		return nil, err
	}
	if err := checkTaggedOrder(todayMeals); err != nil {
		return nil, err
	}
	if err := checkTaggedOrder(todayEquipment); err != nil {
		return nil, err
	}

	tagged := b.tagGateEvents(todayGate)
	tagged = append(tagged, todayMeals...)
	tagged = append(tagged, todayEquipment...)
	tagged = mergeByTimestamp(tagged)

	crossDay := false
	if len(tagged) > 0 {
		last := tagged[len(tagged)-1]
		if minuteOfDay(last.Timestamp) >= nightShiftEveningCutoff {
			nextTagged := b.tagGateEvents(nextDayGate)
			nextTagged = append(nextTagged, nextDayMeals...)
			nextTagged = append(nextTagged, nextDayEquipment...)
			nextTagged = mergeByTimestamp(nextTagged)
			nextTagged = filterBeforeMorningCutoff(nextTagged)
			if len(nextTagged) > 0 {
				tagged = append(tagged, nextTagged...)
				crossDay = true
			}
		}
	}

	merged := mergeByTimestamp(tagged)
	merged = coalesce(merged)
	seq := b.assignDurations(merged)

	tl := &schema.DailyTimeline{
		EmployeeID: employeeID,
		Date:       date,
		CrossDay:   crossDay,
	}
	tl.Events = make([]schema.ClassifiedEvent, 0, len(seq))
	for _, e := range seq {
		tl.Events = append(tl.Events, schema.ClassifiedEvent{SequenceEvent: e})
	}
	if len(seq) > 0 {
		tl.FirstTagTime = seq[0].Timestamp
		tl.LastTagTime = seq[len(seq)-1].Timestamp
		hours := tl.LastTagTime.Sub(tl.FirstTagTime).Hours()
		if hours > 24 {
			hours = 24
		}
		tl.TotalHours = hours
	}
	return tl, nil
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func filterBeforeMorningCutoff(events []schema.TaggedEvent) []schema.TaggedEvent {
	out := events[:0:0]
	for _, e := range events {
		if minuteOfDay(e.Timestamp) < nightShiftMorningCutoff {
			out = append(out, e)
		}
	}
	return out
}

func (b *Builder) tagGateEvents(gates []schema.GateEvent) []schema.TaggedEvent {
	out := make([]schema.TaggedEvent, 0, len(gates))
	for _, g := range gates {
		tag := b.Mapper.Map(g.LocationCode, g.LocationName, g.Direction)
		out = append(out, schema.TaggedEvent{
			EmployeeID:  g.EmployeeID,
			Timestamp:   g.Timestamp,
			Source:      schema.SourceGate,
			RawLocation: g.LocationName,
			Tag:         tag,
			Direction:   g.Direction,
		})
	}
	return out
}

func checkGateOrder(gates []schema.GateEvent) error {
	for i := 1; i < len(gates); i++ {
		if gates[i].Timestamp.Before(gates[i-1].Timestamp) {
			return fmt.Errorf("%w: gate stream not sorted at index %d", errs.ErrInputOrder, i)
		}
	}
	return nil
}

func checkTaggedOrder(events []schema.TaggedEvent) error {
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.Before(events[i-1].Timestamp) {
			return fmt.Errorf("%w: event stream not sorted at index %d", errs.ErrInputOrder, i)
		}
	}
	return nil
}

// mergeByTimestamp stable-sorts by timestamp; ties are broken by
// source priority (equipment > meal > gate) via sort.SliceStable's
// less function, which only orders strictly-before pairs and leaves
// equal timestamps in their append order otherwise, so we sort
// priority first within equal timestamps explicitly.
func mergeByTimestamp(events []schema.TaggedEvent) []schema.TaggedEvent {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Timestamp.Equal(events[j].Timestamp) {
			return schema.SourcePriority(events[i].Source) > schema.SourcePriority(events[j].Source)
		}
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events
}

// coalesce drops duplicate events that land within coalesceWindow of
// each other and share the same tag, keeping the highest-priority one.
func coalesce(events []schema.TaggedEvent) []schema.TaggedEvent {
	if len(events) == 0 {
		return events
	}
	out := make([]schema.TaggedEvent, 0, len(events))
	out = append(out, events[0])
	for _, e := range events[1:] {
		last := &out[len(out)-1]
		if e.Tag == last.Tag && e.Timestamp.Sub(last.Timestamp) < coalesceWindow {
			if schema.SourcePriority(e.Source) > schema.SourcePriority(last.Source) {
				*last = e
			}
			continue
		}
		out = append(out, e)
	}
	return out
}

// assignDurations computes duration[i] = timestamp[i+1] - timestamp[i],
// bounded to [minGap, maxGap]; the last event gets its own source hint
// when present, else a 5-minute default.
func (b *Builder) assignDurations(events []schema.TaggedEvent) []schema.SequenceEvent {
	out := make([]schema.SequenceEvent, len(events))
	for i, e := range events {
		var dur time.Duration
		if i < len(events)-1 {
			dur = events[i+1].Timestamp.Sub(e.Timestamp)
			if dur < b.MinGap {
				dur = b.MinGap
			}
			if dur > b.MaxGap {
				dur = b.MaxGap
			}
		} else {
			dur = e.DurationHint
			if dur <= 0 {
				dur = defaultLastDur
			}
		}
		out[i] = schema.SequenceEvent{TaggedEvent: e, DurationMinutes: dur.Minutes()}
	}
	return out
}
