// Copyright (C) 2023 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package equipmentsource

import (
	"testing"
	"time"

	"github.com/sambio/activityengine/pkg/schema"
	"github.com/stretchr/testify/require"
)

func TestEquipmentTagsAreAlwaysConfirmed(t *testing.T) {
	s := New()
	dur := 45.0
	got := s.Equipment([]schema.EquipmentLogEntry{
		{EmployeeID: "E1", Timestamp: time.Date(2025, 6, 15, 10, 5, 0, 0, time.UTC), ActivityType: "weld", DurationMinutes: &dur},
		{EmployeeID: "E1", Timestamp: time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC), ActivityType: "inspect"},
	})

	require.Len(t, got, 2)
	require.Equal(t, schema.TagConfirmed, got[0].Tag)
	require.Equal(t, 45*time.Minute, got[0].DurationHint)
	require.Equal(t, schema.TagConfirmed, got[1].Tag)
	require.Zero(t, got[1].DurationHint)
}
