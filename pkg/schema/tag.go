package schema

// Tag is a canonical symbol describing the kind of a timestamped event's
// location or activity. The set is closed; there is no "other" tag besides
// the documented fallback G1.
type Tag string

const (
	TagMainArea   Tag = "G1" // main work area
	TagPrep       Tag = "G2" // work preparation (lockers, gowning)
	TagMeeting    Tag = "G3" // meeting / collaboration
	TagTraining   Tag = "G4" // training
	TagRest       Tag = "N1" // rest / break area
	TagWelfare    Tag = "N2" // welfare / convenience
	TagCorridor   Tag = "T1" // corridor / elevator transit
	TagEntryGate  Tag = "T2" // perimeter entry
	TagExitGate   Tag = "T3" // perimeter exit
	TagMealDineIn Tag = "M1" // dine-in meal
	TagMealTakeOut Tag = "M2" // take-out meal
	TagConfirmed  Tag = "O"  // confirmed work (equipment operation / activity log)
)

// Valid reports whether t is a member of the closed tag alphabet.
func (t Tag) Valid() bool {
	switch t {
	case TagMainArea, TagPrep, TagMeeting, TagTraining, TagRest, TagWelfare,
		TagCorridor, TagEntryGate, TagExitGate, TagMealDineIn, TagMealTakeOut, TagConfirmed:
		return true
	default:
		return false
	}
}

// AllTags enumerates the closed tag alphabet, highest-semantic-weight last.
func AllTags() []Tag {
	return []Tag{
		TagMainArea, TagPrep, TagMeeting, TagTraining, TagRest, TagWelfare,
		TagCorridor, TagEntryGate, TagExitGate, TagMealDineIn, TagMealTakeOut, TagConfirmed,
	}
}

// EventSource identifies which collaborator produced a RawEvent.
type EventSource string

const (
	SourceGate      EventSource = "gate"
	SourceMeal      EventSource = "meal"
	SourceEquipment EventSource = "equipment"
)

// priority orders sources for tie-breaking when events land within the
// same coalescing window: equipment > meal > gate.
func (s EventSource) priority() int {
	switch s {
	case SourceEquipment:
		return 3
	case SourceMeal:
		return 2
	case SourceGate:
		return 1
	default:
		return 0
	}
}

// SourcePriority is the exported form of EventSource.priority, used by
// SequenceBuilder for merge tie-breaking.
func SourcePriority(s EventSource) int { return s.priority() }

// Direction is the gate-read direction, when known.
type Direction string

const (
	DirectionEntry Direction = "entry"
	DirectionExit  Direction = "exit"
	DirectionNone  Direction = "none"
)
