// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sambio/activityengine/pkg/schema"
)

// Keys holds the effective configuration after Init. Callers read it
// directly as a package-level singleton.
var Keys schema.ProgramConfig = schema.ProgramConfig{
	Addr:                  ":8090",
	DBDriver:              "sqlite3",
	DB:                    "./var/activity.db",
	Validate:              true,
	TimeZone:              "Local",
	RuleTablePath:         "./var/rule-table.json",
	TagTablePath:          "./var/location-mappings.json",
	KeywordConfigPath:     "./var/keyword-config.json",
	CoalesceWindowSeconds: 60,
	MinEventGapMinutes:    0,
	MaxEventGapMinutes:    120,
	NightShiftBoundary:    "08:00",
	MidnightMealDurationMinutes: 20,
	WorkerCount:           4,
	RetentionDays:         0,
	MealWindows: schema.MealWindowConfig{
		Breakfast: schema.TimeWindow{Start: "06:30", End: "09:00"},
		Lunch:     schema.TimeWindow{Start: "11:20", End: "13:20"},
		Dinner:    schema.TimeWindow{Start: "17:00", End: "20:00"},
		Midnight:  schema.TimeWindow{Start: "23:30", End: "01:00"},
	},
}

// Init reads flagConfigFile, validates it against the program-config
// schema when Keys.Validate is set, and decodes it over the defaults
// above. A missing file is not an error; Keys keeps its zero-config
// defaults.
func Init(flagConfigFile string) error {
	raw, err := os.ReadFile(flagConfigFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: read %q: %w", flagConfigFile, err)
	}

	if Keys.Validate {
		if err := schema.Validate(schema.ProgramConfigKind, bytes.NewReader(raw)); err != nil {
			return fmt.Errorf("config: validate %q: %w", flagConfigFile, err)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&Keys); err != nil {
		return fmt.Errorf("config: decode %q: %w", flagConfigFile, err)
	}

	if Keys.DB == "" {
		return fmt.Errorf("config: db path must not be empty")
	}

	return nil
}
