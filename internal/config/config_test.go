// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sambio/activityengine/pkg/schema"
	"github.com/stretchr/testify/require"
)

func TestInitMissingFileKeepsDefaults(t *testing.T) {
	Keys = defaultKeysForTest()

	err := Init(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)
	require.Equal(t, ":8090", Keys.Addr)
	require.Equal(t, "sqlite3", Keys.DBDriver)
}

func TestInitOverridesDefaults(t *testing.T) {
	Keys = defaultKeysForTest()

	dir := t.TempDir()
	fp := filepath.Join(dir, "config.json")
	body := []byte(`{
		"addr": ":9090",
		"dbDriver": "mysql",
		"db": "activity:secret@tcp(127.0.0.1:3306)/activity",
		"timeZone": "Asia/Seoul",
		"workerCount": 8
	}`)
	require.NoError(t, os.WriteFile(fp, body, 0o644))

	require.NoError(t, Init(fp))
	require.Equal(t, ":9090", Keys.Addr)
	require.Equal(t, "mysql", Keys.DBDriver)
	require.Equal(t, "Asia/Seoul", Keys.TimeZone)
	require.Equal(t, 8, Keys.WorkerCount)
	require.Equal(t, 60, Keys.CoalesceWindowSeconds) // untouched field keeps its default
}

func TestInitRejectsEmptyDB(t *testing.T) {
	Keys = defaultKeysForTest()
	Keys.Validate = false

	dir := t.TempDir()
	fp := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(fp, []byte(`{"db": ""}`), 0o644))

	err := Init(fp)
	require.Error(t, err)
}

func defaultKeysForTest() schema.ProgramConfig {
	return schema.ProgramConfig{
		Addr:                        ":8090",
		DBDriver:                    "sqlite3",
		DB:                          "./var/activity.db",
		Validate:                    true,
		TimeZone:                    "Local",
		RuleTablePath:               "./var/rule-table.json",
		TagTablePath:                "./var/location-mappings.json",
		KeywordConfigPath:           "./var/keyword-config.json",
		CoalesceWindowSeconds:       60,
		MinEventGapMinutes:          0,
		MaxEventGapMinutes:          120,
		NightShiftBoundary:          "08:00",
		MidnightMealDurationMinutes: 20,
		WorkerCount:                 4,
		RetentionDays:               0,
		MealWindows: schema.MealWindowConfig{
			Breakfast: schema.TimeWindow{Start: "06:30", End: "09:00"},
			Lunch:     schema.TimeWindow{Start: "11:20", End: "13:20"},
			Dinner:    schema.TimeWindow{Start: "17:00", End: "20:00"},
			Midnight:  schema.TimeWindow{Start: "23:30", End: "01:00"},
		},
	}
}
