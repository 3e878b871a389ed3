// Copyright (C) 2023 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package mealsource

import (
	"testing"
	"time"

	"github.com/sambio/activityengine/pkg/schema"
	"github.com/stretchr/testify/require"
)

func meals() schema.MealWindowConfig {
	return schema.MealWindowConfig{
		Breakfast: schema.TimeWindow{Start: "06:30", End: "09:00"},
		Lunch:     schema.TimeWindow{Start: "11:20", End: "13:20"},
		Dinner:    schema.TimeWindow{Start: "17:00", End: "20:00"},
		Midnight:  schema.TimeWindow{Start: "23:30", End: "01:00"},
	}
}

func at(hh, mm int) time.Time {
	return time.Date(2025, 6, 15, hh, mm, 0, 0, time.UTC)
}

func TestMealsDineInDefaultDuration(t *testing.T) {
	s := New(meals())
	got := s.Meals([]schema.MealTransaction{
		{EmployeeID: "E1", PurchaseTime: at(12, 10), ServingCounter: "hall-b"},
	})
	require.Len(t, got, 1)
	require.Equal(t, schema.TagMealDineIn, got[0].Tag)
	require.Equal(t, dineInDuration, got[0].DurationHint)
}

func TestMealsTakeoutByFlag(t *testing.T) {
	s := New(meals())
	got := s.Meals([]schema.MealTransaction{
		{EmployeeID: "E1", PurchaseTime: at(11, 50), TakeoutFlag: "Y"},
	})
	require.Equal(t, schema.TagMealTakeOut, got[0].Tag)
	require.Equal(t, takeoutDuration, got[0].DurationHint)
}

func TestMealsTakeoutByCounterKeyword(t *testing.T) {
	s := New(meals())
	got := s.Meals([]schema.MealTransaction{
		{EmployeeID: "E1", PurchaseTime: at(12, 0), ServingCounter: "Take Out Window 2"},
	})
	require.Equal(t, schema.TagMealTakeOut, got[0].Tag)
}

func TestMealsTakeoutByRestaurantKeyword(t *testing.T) {
	s := New(meals())
	got := s.Meals([]schema.MealTransaction{
		{EmployeeID: "E1", PurchaseTime: at(12, 0), RestaurantName: "Corner To Go"},
	})
	require.Equal(t, schema.TagMealTakeOut, got[0].Tag)
}

func TestMealsMidnightDineInShorterDuration(t *testing.T) {
	s := New(meals())
	got := s.Meals([]schema.MealTransaction{
		{EmployeeID: "E1", PurchaseTime: at(0, 15)},
	})
	require.Equal(t, schema.TagMealDineIn, got[0].Tag)
	require.Equal(t, midnightMealDuration, got[0].DurationHint)
}
