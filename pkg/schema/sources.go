package schema

import "time"

// MealTransaction is one cafeteria purchase row, the external input to
// MealTagSource.
type MealTransaction struct {
	EmployeeID     string    `json:"employeeId" db:"employee_id"`
	PurchaseTime   time.Time `json:"purchaseTime" db:"purchase_time"`
	ServingCounter string    `json:"servingCounter,omitempty" db:"serving_counter"`
	RestaurantName string    `json:"restaurantName,omitempty" db:"restaurant_name"`
	TakeoutFlag    string    `json:"takeoutFlag,omitempty" db:"takeout_flag"`
	MealCategory   string    `json:"mealCategory,omitempty" db:"meal_category"`
}

// EquipmentLogEntry is one equipment/activity-log row, the external
// input to EquipmentTagSource.
type EquipmentLogEntry struct {
	EmployeeID      string        `json:"employeeId" db:"employee_id"`
	Timestamp       time.Time     `json:"timestamp" db:"timestamp"`
	ActivityType    string        `json:"activityType,omitempty" db:"activity_type"`
	EquipmentID     string        `json:"equipmentId,omitempty" db:"equipment_id"`
	DurationMinutes *float64      `json:"durationMinutes,omitempty" db:"duration_minutes"`
}

// GateEvent is one physical access-gate read, the external input to
// TagMapper/SequenceBuilder's gate stream.
type GateEvent struct {
	EmployeeID   string    `json:"employeeId" db:"employee_id"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	LocationCode string    `json:"locationCode" db:"location_code"`
	LocationName string    `json:"locationName,omitempty" db:"location_name"`
	Direction    Direction `json:"direction,omitempty" db:"direction"`
}

// EmployeeOrgMembership is the directory row BatchAnalyzer's scope
// resolver consults to turn a center=X/team=X/group=X scope spec into a
// concrete employee_id list. Not named as a source table in the
// external-interfaces contract, but required to make org-scoped batch
// invocation resolvable; an employee belongs to exactly one of each
// level at a time.
type EmployeeOrgMembership struct {
	EmployeeID string `json:"employeeId" db:"employee_id"`
	CenterID   string `json:"centerId" db:"center_id"`
	TeamID     string `json:"teamId" db:"team_id"`
	GroupID    string `json:"groupId" db:"group_id"`
}
