// Copyright (C) 2023 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package equipmentsource derives confirmed-work (O) tag events from
// equipment-operation and activity logs.
package equipmentsource

import (
	"time"

	"github.com/sambio/activityengine/pkg/schema"
)

// Source converts equipment/activity log entries into TaggedEvents. It
// holds no state; every O event carries the log's own duration (if
// present) as a hint for SequenceBuilder.
type Source struct{}

// New returns a ready-to-use Source.
func New() *Source { return &Source{} }

// Equipment converts log entries (assumed already filtered to one
// employee-day) into TaggedEvents, one per entry, preserving input
// order.
func (s *Source) Equipment(entries []schema.EquipmentLogEntry) []schema.TaggedEvent {
	events := make([]schema.TaggedEvent, 0, len(entries))
	for _, e := range entries {
		var hint time.Duration
		if e.DurationMinutes != nil {
			hint = time.Duration(*e.DurationMinutes * float64(time.Minute))
		}

		events = append(events, schema.TaggedEvent{
			EmployeeID:   e.EmployeeID,
			Timestamp:    e.Timestamp,
			Source:       schema.SourceEquipment,
			RawLocation:  e.EquipmentID,
			Tag:          schema.TagConfirmed,
			Direction:    schema.DirectionNone,
			DurationHint: hint,
			Metadata: map[string]string{
				"activityType": e.ActivityType,
				"equipmentId":  e.EquipmentID,
			},
		})
	}
	return events
}
