package schema

import "time"

// DailyMetrics is the per (employee, date) derived-metrics row. Unique
// key (EmployeeID, AnalysisDate); re-running the same (employee, date)
// overwrites the prior row (upsert semantics).
type DailyMetrics struct {
	EmployeeID   string    `json:"employeeId" db:"employee_id"`
	AnalysisDate string    `json:"analysisDate" db:"analysis_date"` // YYYY-MM-DD, facility-local

	TotalHours       float64 `json:"totalHours" db:"total_hours"`
	ActualWorkHours  float64 `json:"actualWorkHours" db:"actual_work_hours"`
	FocusedWorkHours float64 `json:"focusedWorkHours" db:"focused_work_hours"`

	WorkMinutes     float64 `json:"workMinutes" db:"work_minutes"`
	MeetingMinutes  float64 `json:"meetingMinutes" db:"meeting_minutes"`
	MealMinutes     float64 `json:"mealMinutes" db:"meal_minutes"`
	MovementMinutes float64 `json:"movementMinutes" db:"movement_minutes"`
	RestMinutes     float64 `json:"restMinutes" db:"rest_minutes"`
	IdleMinutes     float64 `json:"idleMinutes" db:"idle_minutes"`

	BreakfastMinutes    float64 `json:"breakfastMinutes" db:"breakfast_minutes"`
	LunchMinutes        float64 `json:"lunchMinutes" db:"lunch_minutes"`
	DinnerMinutes       float64 `json:"dinnerMinutes" db:"dinner_minutes"`
	MidnightMealMinutes float64 `json:"midnightMealMinutes" db:"midnight_meal_minutes"`

	BreakfastCount    int `json:"breakfastCount" db:"breakfast_count"`
	LunchCount        int `json:"lunchCount" db:"lunch_count"`
	DinnerCount       int `json:"dinnerCount" db:"dinner_count"`
	MidnightMealCount int `json:"midnightMealCount" db:"midnight_meal_count"`

	ClaimedHours    float64   `json:"claimedHours,omitempty" db:"claimed_hours"`
	EfficiencyRatio float64   `json:"efficiencyRatio" db:"efficiency_ratio"`
	ShiftType       ShiftType `json:"shiftType" db:"shift_type"`
	CrossDay        bool      `json:"crossDay" db:"cross_day"`
	DataReliability float64   `json:"dataReliability" db:"data_reliability"`

	// TagCount is the number of TaggedEvent rows the timeline contained;
	// it is the numerator of DataReliability and is kept for
	// auditability.
	TagCount int `json:"tagCount" db:"tag_count"`

	// ProcessingVersion stamps which rule-table/tag-table version
	// produced this row, so operators can tell which rows need
	// recomputation after a rule change.
	ProcessingVersion string `json:"processingVersion" db:"processing_version"`

	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// OrgScope is one of the three organizational rollup levels.
type OrgScope string

const (
	ScopeCenter OrgScope = "center"
	ScopeTeam   OrgScope = "team"
	ScopeGroup  OrgScope = "group"
)

// OrgDailyAggregate is the per (org_scope, org_id, date) rollup row.
// Replace-on-write semantics: a recompute deletes and reinserts the row
// for that key within one transaction.
type OrgDailyAggregate struct {
	OrgScope OrgScope `json:"orgScope" db:"org_scope"`
	OrgID    string   `json:"orgId" db:"org_id"`
	Date     string   `json:"date" db:"analysis_date"`

	EmployeeCount int `json:"employeeCount" db:"employee_count"`
	SampleSize    int `json:"sampleSize" db:"sample_size"`

	AvgTotalHours       float64 `json:"avgTotalHours" db:"avg_total_hours"`
	AvgActualWorkHours  float64 `json:"avgActualWorkHours" db:"avg_actual_work_hours"`
	AvgFocusedWorkHours float64 `json:"avgFocusedWorkHours" db:"avg_focused_work_hours"`
	AvgEfficiencyRatio  float64 `json:"avgEfficiencyRatio" db:"avg_efficiency_ratio"`

	DayShiftCount   int `json:"dayShiftCount" db:"day_shift_count"`
	NightShiftCount int `json:"nightShiftCount" db:"night_shift_count"`
	CrossDayCount   int `json:"crossDayCount" db:"cross_day_count"`

	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// AttendanceClaim is a self-reported attendance record, optional input to
// DailyMetrics.ClaimedHours and to BatchAnalyzer's claim_filter policy.
type AttendanceClaim struct {
	EmployeeID   string  `json:"employeeId" db:"employee_id"`
	WorkDate     string  `json:"workDate" db:"work_date"`
	ClaimedHours float64 `json:"claimedHours" db:"claimed_hours"`
}
