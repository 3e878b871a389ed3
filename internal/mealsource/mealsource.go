// Copyright (C) 2023 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mealsource derives dine-in (M1) and take-out (M2) tag events
// from cafeteria transaction records.
package mealsource

import (
	"strings"
	"time"

	"github.com/sambio/activityengine/pkg/schema"
)

// takeoutKeywords flags a serving-counter or restaurant name as
// take-out when any of these substrings appear, case-insensitively.
var takeoutKeywords = []string{"takeout", "take out", "to go", "togo"}

const (
	takeoutDuration      = 10 * time.Minute
	dineInDuration       = 30 * time.Minute
	midnightMealDuration = 20 * time.Minute
)

// Source derives meal tag events using a configured midnight-meal
// window; MealWindows.Midnight decides whether a dine-in transaction
// falls in the midnight slot and gets the shorter 20-minute hint.
type Source struct {
	Midnight schema.TimeWindow
}

// New builds a Source using the midnight window from cfg.
func New(cfg schema.MealWindowConfig) *Source {
	return &Source{Midnight: cfg.Midnight}
}

// Meals converts transactions (assumed already filtered to one
// employee-day) into TaggedEvents, preserving input order.
func (s *Source) Meals(transactions []schema.MealTransaction) []schema.TaggedEvent {
	events := make([]schema.TaggedEvent, 0, len(transactions))
	for _, tx := range transactions {
		takeout := isTakeout(tx)
		tag := schema.TagMealDineIn
		hint := dineInDuration
		if takeout {
			tag = schema.TagMealTakeOut
			hint = takeoutDuration
		} else if s.inMidnightWindow(tx.PurchaseTime) {
			hint = midnightMealDuration
		}

		events = append(events, schema.TaggedEvent{
			EmployeeID:   tx.EmployeeID,
			Timestamp:    tx.PurchaseTime,
			Source:       schema.SourceMeal,
			RawLocation:  tx.ServingCounter,
			Tag:          tag,
			Direction:    schema.DirectionNone,
			DurationHint: hint,
			Metadata: map[string]string{
				"restaurantName": tx.RestaurantName,
				"mealCategory":   tx.MealCategory,
			},
		})
	}
	return events
}

// isTakeout applies the three-signal check: an explicit takeout flag, a
// take-out keyword in the serving counter, or one in the restaurant
// name. Any one signal is sufficient.
func isTakeout(tx schema.MealTransaction) bool {
	switch strings.ToLower(strings.TrimSpace(tx.TakeoutFlag)) {
	case "y", "yes", "1", "true":
		return true
	}
	if containsKeyword(tx.ServingCounter) {
		return true
	}
	if containsKeyword(tx.RestaurantName) {
		return true
	}
	return false
}

func containsKeyword(s string) bool {
	if s == "" {
		return false
	}
	low := strings.ToLower(s)
	for _, kw := range takeoutKeywords {
		if strings.Contains(low, kw) {
			return true
		}
	}
	return false
}

// inMidnightWindow reports whether t's clock time falls in the
// (possibly midnight-crossing) midnight meal window.
func (s *Source) inMidnightWindow(t time.Time) bool {
	if s.Midnight.Start == "" || s.Midnight.End == "" {
		return false
	}
	start, ok1 := parseClock(s.Midnight.Start)
	end, ok2 := parseClock(s.Midnight.End)
	if !ok1 || !ok2 {
		return false
	}
	cur := t.Hour()*60 + t.Minute()
	if start <= end {
		return cur >= start && cur <= end
	}
	// window crosses midnight, e.g. 23:30-01:30
	return cur >= start || cur <= end
}

func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
