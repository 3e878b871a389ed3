package schema

// ActivityState is the closed set of symbols describing what the employee
// is doing during an interval. Every state carries a static IsWorkTime
// classification (see IsWorkTime below); the set never grows at runtime.
type ActivityState string

const (
	StateWork         ActivityState = "WORK"
	StateWorkConfirmed ActivityState = "WORK_CONFIRMED"
	StatePreparation  ActivityState = "PREPARATION"
	StateMeeting      ActivityState = "MEETING"
	StateEducation    ActivityState = "EDUCATION"
	StateRest         ActivityState = "REST"
	StateBreakfast    ActivityState = "BREAKFAST"
	StateLunch        ActivityState = "LUNCH"
	StateDinner       ActivityState = "DINNER"
	StateMidnightMeal ActivityState = "MIDNIGHT_MEAL"
	StateTransit      ActivityState = "TRANSIT"
	StateEntry        ActivityState = "ENTRY"
	StateExit         ActivityState = "EXIT"
	StateNonWork      ActivityState = "NON_WORK"
	StateIdle         ActivityState = "IDLE"
	StateUnknown      ActivityState = "UNKNOWN"
)

// workFamily is the static table backing IsWorkTime: WORK, WORK_CONFIRMED,
// PREPARATION, MEETING, EDUCATION count as working time; everything else
// (meals, rest, transit, entry/exit, idle, unknown) does not.
var workFamily = map[ActivityState]bool{
	StateWork:          true,
	StateWorkConfirmed: true,
	StatePreparation:   true,
	StateMeeting:       true,
	StateEducation:     true,
}

// IsWorkTime reports whether s belongs to the work family, the subset of
// activity states counted as working time.
func (s ActivityState) IsWorkTime() bool {
	return workFamily[s]
}

// mealFamily is the subset of states that represent a meal interval.
var mealFamily = map[ActivityState]bool{
	StateBreakfast:    true,
	StateLunch:        true,
	StateDinner:       true,
	StateMidnightMeal: true,
}

// IsMeal reports whether s is one of the four meal states.
func (s ActivityState) IsMeal() bool {
	return mealFamily[s]
}

// Valid reports whether s is a member of the closed activity-state alphabet.
func (s ActivityState) Valid() bool {
	switch s {
	case StateWork, StateWorkConfirmed, StatePreparation, StateMeeting, StateEducation,
		StateRest, StateBreakfast, StateLunch, StateDinner, StateMidnightMeal,
		StateTransit, StateEntry, StateExit, StateNonWork, StateIdle, StateUnknown:
		return true
	default:
		return false
	}
}

// AnomalyKind names a detected anomalous pattern on a ClassifiedEvent.
type AnomalyKind string

const (
	AnomalyNone              AnomalyKind = ""
	AnomalyUnconfirmedLongWork AnomalyKind = "unconfirmed_long_work"
	AnomalyTailgating        AnomalyKind = "tailgating"
)

// ShiftType classifies a day's dominant work window.
type ShiftType string

const (
	ShiftDay   ShiftType = "day"
	ShiftNight ShiftType = "night"
)
