// Copyright (C) 2023 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package classifier

import "github.com/sambio/activityengine/pkg/schema"

// defaultRuleTable is the shipped priority-ordered classification table,
// in table order (first match wins). Priority 1 (O/M1/M2 elevation) is
// handled directly in classifyOne and is not repeated here; this table
// starts at priority 2.
func defaultRuleTable() []schema.RuleRow {
	return []schema.RuleRow{
		{FromTag: schema.TagConfirmed, ToTag: schema.TagMainArea, State: schema.StateWork, BaseConfidence: 0.95, Note: "priority 2: O->G1"},
		{FromTag: schema.TagEntryGate, ToTag: schema.TagPrep,
			TimeWindow:     &schema.TimeWindow{Start: "07:00", End: "09:00"},
			State:          schema.StatePreparation, BaseConfidence: 0.90, Note: "priority 5: T2->G2 morning"},
		{FromTag: schema.TagMainArea, ToTag: schema.TagExitGate,
			TimeWindow:     &schema.TimeWindow{Start: "19:00", End: "21:00"},
			State:          schema.StateExit, BaseConfidence: 0.90, Note: "priority 5: G1->T3 evening"},
		{FromTag: schema.TagEntryGate, State: schema.StateEntry, BaseConfidence: 0.90, Note: "priority 10: T2->*"},
		{ToTag: schema.TagExitGate, State: schema.StateExit, BaseConfidence: 0.90, Note: "priority 10: *->T3"},
		{FromTag: schema.TagMainArea, ToTag: schema.TagMeeting, State: schema.StateMeeting, BaseConfidence: 0.90, Note: "priority 15: G1->G3"},
		{FromTag: schema.TagMeeting, ToTag: schema.TagMeeting,
			DurationWindow: &schema.DurationWindow{MinMinutes: 10},
			State:          schema.StateMeeting, BaseConfidence: 0.95, Note: "priority 15: G3->G3 dur>=10min"},
		{FromTag: schema.TagMainArea, ToTag: schema.TagTraining, State: schema.StateEducation, BaseConfidence: 0.90, Note: "priority 15: G1->G4"},
		{FromTag: schema.TagMainArea, ToTag: schema.TagRest, State: schema.StateRest, BaseConfidence: 0.80, Note: "priority 20: G1->N1"},
		{FromTag: schema.TagRest, ToTag: schema.TagMainArea, State: schema.StateWork, BaseConfidence: 0.80, Note: "priority 20: N1->G1"},
		{FromTag: schema.TagCorridor, ToTag: schema.TagCorridor,
			DurationWindow: &schema.DurationWindow{MaxMinutes: 30},
			State:          schema.StateTransit, BaseConfidence: 0.70, Note: "priority 30: T1->T1 dur<=30min"},
		{FromTag: schema.TagMainArea, ToTag: schema.TagCorridor, State: schema.StateTransit, BaseConfidence: 0.80, Note: "priority 30: G1->T1"},
		{ToTag: schema.TagMainArea, State: schema.StateWork, BaseConfidence: 0.70, Note: "priority 40: *->G1"},
		{State: schema.StateUnknown, BaseConfidence: 0.50, Note: "priority 99: fallback"},
	}
}
