// Copyright (C) 2023 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package classifier

import (
	"testing"
	"time"

	"github.com/sambio/activityengine/pkg/errs"
	"github.com/sambio/activityengine/pkg/schema"
	"github.com/stretchr/testify/require"
)

func defaultWindows() schema.MealWindowConfig {
	return schema.MealWindowConfig{
		Breakfast: schema.TimeWindow{Start: "06:30", End: "09:00"},
		Lunch:     schema.TimeWindow{Start: "11:20", End: "13:20"},
		Dinner:    schema.TimeWindow{Start: "17:00", End: "20:00"},
		Midnight:  schema.TimeWindow{Start: "23:30", End: "01:00"},
	}
}

func seq(tag schema.Tag, t time.Time, minutes float64) schema.SequenceEvent {
	return schema.SequenceEvent{
		TaggedEvent:     schema.TaggedEvent{EmployeeID: "E1", Timestamp: t, Tag: tag, Source: schema.SourceGate},
		DurationMinutes: minutes,
	}
}

func at(hh, mm int) time.Time { return time.Date(2025, 6, 15, hh, mm, 0, 0, time.UTC) }

func TestClassifyEmptyInput(t *testing.T) {
	c := New(defaultWindows())
	out, err := c.Classify(nil)
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestClassifyRejectsUnsortedInput(t *testing.T) {
	c := New(defaultWindows())
	_, err := c.Classify([]schema.SequenceEvent{
		seq(schema.TagMainArea, at(9, 0), 30),
		seq(schema.TagMainArea, at(8, 0), 30),
	})
	require.ErrorIs(t, err, errs.ErrInputOrder)
}

func TestClassifyOTagDominance(t *testing.T) {
	c := New(defaultWindows())
	out, err := c.Classify([]schema.SequenceEvent{
		seq(schema.TagMainArea, at(9, 0), 30),
		seq(schema.TagConfirmed, at(9, 30), 15),
	})
	require.NoError(t, err)
	require.Equal(t, schema.StateWorkConfirmed, out[1].State)
	require.GreaterOrEqual(t, out[1].Confidence, 0.98)
}

func TestClassifyConfirmedWorkFollowedByMainAreaIsWork(t *testing.T) {
	c := New(defaultWindows())
	out, err := c.Classify([]schema.SequenceEvent{
		seq(schema.TagConfirmed, at(9, 0), 15),
		seq(schema.TagMainArea, at(9, 15), 30),
	})
	require.NoError(t, err)
	require.Equal(t, schema.StateWork, out[1].State)
}

func TestClassifyMealWindowOverride(t *testing.T) {
	c := New(defaultWindows())
	out, err := c.Classify([]schema.SequenceEvent{
		seq(schema.TagCorridor, at(11, 50), 5),
		seq(schema.TagMealDineIn, at(11, 55), 30),
	})
	require.NoError(t, err)
	require.Equal(t, schema.StateLunch, out[1].State)
}

func TestClassifyTakeoutMealIsTransit(t *testing.T) {
	c := New(defaultWindows())
	out, err := c.Classify([]schema.SequenceEvent{
		seq(schema.TagMealTakeOut, at(12, 0), 10),
	})
	require.NoError(t, err)
	require.Equal(t, schema.StateTransit, out[0].State)
	require.Equal(t, 1.0, out[0].Confidence)
}

func TestClassifyMeetingRoomDurationBoostsConfidence(t *testing.T) {
	c := New(defaultWindows())
	out, err := c.Classify([]schema.SequenceEvent{
		seq(schema.TagMeeting, at(10, 0), 45),
		seq(schema.TagMeeting, at(10, 45), 20),
	})
	require.NoError(t, err)
	require.Equal(t, schema.StateMeeting, out[1].State)
	require.InDelta(t, 0.95, out[1].Confidence, 0.001)
}

func TestClassifyShortEventPenalty(t *testing.T) {
	c := New(defaultWindows())
	out, err := c.Classify([]schema.SequenceEvent{
		seq(schema.TagMainArea, at(9, 0), 1),
	})
	require.NoError(t, err)
	require.InDelta(t, 0.7*0.8, out[0].Confidence, 0.001)
}

func TestClassifyUnconfirmedLongWorkAnomaly(t *testing.T) {
	c := New(defaultWindows())
	out, err := c.Classify([]schema.SequenceEvent{
		seq(schema.TagMainArea, at(8, 0), 150),
	})
	require.NoError(t, err)
	require.Equal(t, schema.AnomalyUnconfirmedLongWork, out[0].Anomaly)
	require.InDelta(t, 0.7*0.7, out[0].Confidence, 0.001)
}

func TestClassifyLongWorkNearOTagIsNotAnomalous(t *testing.T) {
	c := New(defaultWindows())
	out, err := c.Classify([]schema.SequenceEvent{
		seq(schema.TagConfirmed, at(8, 0), 5),
		seq(schema.TagMainArea, at(8, 5), 150),
	})
	require.NoError(t, err)
	require.NotEqual(t, schema.AnomalyUnconfirmedLongWork, out[1].Anomaly)
}

func TestClassifyTailgatingAnomaly(t *testing.T) {
	c := New(defaultWindows())
	out, err := c.Classify([]schema.SequenceEvent{
		seq(schema.TagCorridor, at(8, 0), 10),
		seq(schema.TagCorridor, at(8, 15), 10),
		seq(schema.TagCorridor, at(8, 30), 10),
		seq(schema.TagCorridor, at(8, 45), 10),
		seq(schema.TagCorridor, at(8, 45).Add(45*time.Minute), 10),
	})
	require.NoError(t, err)
	for _, e := range out {
		require.Equal(t, schema.AnomalyTailgating, e.Anomaly)
		require.LessOrEqual(t, e.Confidence, 0.5)
	}
}

func TestClassifyConfirmedWorkBoostsNearbyWork(t *testing.T) {
	c := New(defaultWindows())
	out, err := c.Classify([]schema.SequenceEvent{
		seq(schema.TagMainArea, at(9, 0), 30),
		seq(schema.TagConfirmed, at(9, 30), 15),
		seq(schema.TagMainArea, at(9, 45), 30),
	})
	require.NoError(t, err)
	require.Equal(t, schema.StateWork, out[2].State)
	require.InDelta(t, unconfirmedCap, out[2].Confidence, 0.001)
}

func TestClassifyUnknownFallback(t *testing.T) {
	c := New(defaultWindows())
	out, err := c.Classify([]schema.SequenceEvent{
		seq(schema.TagWelfare, at(9, 0), 30),
	})
	require.NoError(t, err)
	require.Equal(t, schema.StateUnknown, out[0].State)
}

func TestLoadRuleTableMissingFileKeepsDefaults(t *testing.T) {
	c := New(defaultWindows())
	err := c.LoadRuleTable("/nonexistent/rule-table.json")
	require.NoError(t, err)
	require.NotEmpty(t, c.rules)
}
