package schema

import "time"

// LocationMapping is a single override row mapping a (location_code,
// location_name) pair directly to a tag, bypassing TagMapper's keyword
// rules. The set is loaded once per batch and is effectively immutable
// for the lifetime of that batch.
type LocationMapping struct {
	LocationCode string  `json:"locationCode" db:"location_code"`
	LocationName string  `json:"locationName,omitempty" db:"location_name"`
	Tag          Tag     `json:"tag" db:"tag"`
	Confidence   float64 `json:"confidence" db:"confidence"`
	RuleNote     string  `json:"ruleNote,omitempty" db:"rule_note"`
}

// RawEvent is a per-employee timestamped record as read from one of the
// three source collaborators. Gate events carry unmapped locations; meal
// and equipment events arrive already classified with their
// source-specific tag.
type RawEvent struct {
	EmployeeID   string      `json:"employeeId" db:"employee_id"`
	Timestamp    time.Time   `json:"timestamp" db:"timestamp"`
	Source       EventSource `json:"source" db:"source"`
	LocationCode string      `json:"locationCode,omitempty" db:"location_code"`
	LocationName string      `json:"locationName,omitempty" db:"location_name"`
	Direction    Direction   `json:"direction,omitempty" db:"direction"`

	// PresetTag is set by MealTagSource/EquipmentTagSource, which already
	// know their tag (M1/M2/O) at read time; TagMapper only runs over gate
	// events, which leave this empty.
	PresetTag Tag `json:"presetTag,omitempty" db:"-"`

	// DurationHint carries a source-supplied duration (meal-duration
	// policy, equipment log's own duration field) that SequenceBuilder
	// consults only for the last event of a day.
	DurationHint time.Duration `json:"-" db:"-"`

	// Metadata carries source-specific auxiliary fields (e.g. activity
	// type, restaurant name) that do not affect classification but are
	// useful for diagnostics.
	Metadata map[string]string `json:"metadata,omitempty" db:"-"`
}

// TaggedEvent is a RawEvent after tag assignment. Tag is never the zero
// value.
type TaggedEvent struct {
	EmployeeID   string
	Timestamp    time.Time
	Source       EventSource
	RawLocation  string
	Tag          Tag
	Direction    Direction
	DurationHint time.Duration
	Metadata     map[string]string
}

// SequenceEvent is a TaggedEvent augmented with the gap-derived duration to
// the next event in the same employee-day sequence.
type SequenceEvent struct {
	TaggedEvent
	DurationMinutes float64
}

// ClassifiedEvent is a SequenceEvent augmented with the StateClassifier's
// decision.
type ClassifiedEvent struct {
	SequenceEvent
	State      ActivityState
	Confidence float64
	Anomaly    AnomalyKind
}

// DailyTimeline is the ordered, classified event sequence for one
// (employee, date), plus the derived first/last tag times and elapsed
// hours.
type DailyTimeline struct {
	EmployeeID    string
	Date          string // facility-local calendar date, YYYY-MM-DD, of the *starting* day
	Events        []ClassifiedEvent
	FirstTagTime  time.Time
	LastTagTime   time.Time
	TotalHours    float64
	CrossDay      bool
}
