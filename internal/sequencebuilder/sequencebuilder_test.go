// Copyright (C) 2023 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package sequencebuilder

import (
	"testing"
	"time"

	"github.com/sambio/activityengine/internal/tagmapper"
	"github.com/sambio/activityengine/pkg/errs"
	"github.com/sambio/activityengine/pkg/schema"
	"github.com/stretchr/testify/require"
)

func at(hh, mm int) time.Time {
	return time.Date(2025, 6, 15, hh, mm, 0, 0, time.UTC)
}

func nextAt(hh, mm int) time.Time {
	return time.Date(2025, 6, 16, hh, mm, 0, 0, time.UTC)
}

func TestBuildRejectsUnsortedGateStream(t *testing.T) {
	b := New(tagmapper.New(), 0, 0)
	_, err := b.Build("E1", "2025-06-15",
		[]schema.GateEvent{
			{EmployeeID: "E1", Timestamp: at(9, 0), LocationCode: "A"},
			{EmployeeID: "E1", Timestamp: at(8, 0), LocationCode: "B"},
		}, nil, nil, nil, nil, nil)
	require.ErrorIs(t, err, errs.ErrInputOrder)
}

func TestBuildAssignsGapDurations(t *testing.T) {
	b := New(tagmapper.New(), 0, 0)
	tl, err := b.Build("E1", "2025-06-15",
		[]schema.GateEvent{
			{EmployeeID: "E1", Timestamp: at(8, 0), LocationCode: "G", LocationName: "main-gate-in", Direction: schema.DirectionEntry},
			{EmployeeID: "E1", Timestamp: at(9, 0), LocationCode: "W", LocationName: "main work area"},
			{EmployeeID: "E1", Timestamp: at(18, 0), LocationCode: "G", LocationName: "main-gate-out", Direction: schema.DirectionExit},
		}, nil, nil, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, tl.Events, 3)
	require.InDelta(t, 60, tl.Events[0].DurationMinutes, 0.01)
	require.InDelta(t, 120, tl.Events[1].DurationMinutes, 0.01) // 9:00->18:00 gap capped at MaxGap
	require.InDelta(t, 5, tl.Events[2].DurationMinutes, 0.01) // last event, no hint -> default
	require.False(t, tl.CrossDay)
}

func TestBuildCapsDurationAt120Minutes(t *testing.T) {
	b := New(tagmapper.New(), 0, 0)
	tl, err := b.Build("E1", "2025-06-15",
		[]schema.GateEvent{
			{EmployeeID: "E1", Timestamp: at(8, 0), LocationCode: "A"},
			{EmployeeID: "E1", Timestamp: at(12, 0), LocationCode: "B"},
		}, nil, nil, nil, nil, nil)
	require.NoError(t, err)
	require.InDelta(t, 120, tl.Events[0].DurationMinutes, 0.01)
}

func TestBuildCoalescesDuplicateWithinWindow(t *testing.T) {
	b := New(tagmapper.New(), 0, 0)
	tl, err := b.Build("E1", "2025-06-15",
		[]schema.GateEvent{
			{EmployeeID: "E1", Timestamp: at(9, 0), LocationCode: "A", LocationName: "main work area"},
		},
		[]schema.TaggedEvent{
			{EmployeeID: "E1", Timestamp: at(9, 0).Add(30 * time.Second), Source: schema.SourceMeal, Tag: schema.TagMainArea},
		}, nil, nil, nil, nil)
	require.NoError(t, err)
	// same tag within 60s -> coalesced to one event
	require.Len(t, tl.Events, 1)
}

func TestBuildNightShiftStitchesAcrossMidnight(t *testing.T) {
	b := New(tagmapper.New(), 0, 0)
	tl, err := b.Build("E1", "2025-06-15",
		[]schema.GateEvent{
			{EmployeeID: "E1", Timestamp: at(20, 0), LocationCode: "G", Direction: schema.DirectionEntry, LocationName: "main-gate-in"},
			{EmployeeID: "E1", Timestamp: at(22, 0), LocationCode: "W", LocationName: "main work area"},
		}, nil, nil,
		[]schema.GateEvent{
			{EmployeeID: "E1", Timestamp: nextAt(5, 30), LocationCode: "W", LocationName: "main work area"},
			{EmployeeID: "E1", Timestamp: nextAt(6, 0), LocationCode: "G", Direction: schema.DirectionExit, LocationName: "main-gate-out"},
		}, nil, nil)
	require.NoError(t, err)
	require.True(t, tl.CrossDay)
	require.Equal(t, "2025-06-15", tl.Date)
	require.Len(t, tl.Events, 4)
}

func TestBuildNoStitchWhenNextDayEventsAreLate(t *testing.T) {
	b := New(tagmapper.New(), 0, 0)
	tl, err := b.Build("E1", "2025-06-15",
		[]schema.GateEvent{
			{EmployeeID: "E1", Timestamp: at(20, 30), LocationCode: "W", LocationName: "main work area"},
		}, nil, nil,
		[]schema.GateEvent{
			// after the 08:00 morning cutoff -> not a continuation of this shift
			{EmployeeID: "E1", Timestamp: nextAt(9, 0), LocationCode: "W", LocationName: "main work area"},
		}, nil, nil)
	require.NoError(t, err)
	require.False(t, tl.CrossDay)
	require.Len(t, tl.Events, 1)
}
