package models

// AttendanceStatus is a profile's answer to an event. Distinct from
// CrewStatus: the two lifecycles are not the same domain.
type AttendanceStatus string

const (
	AttendancePending AttendanceStatus = "Pending"
	AttendanceIn      AttendanceStatus = "In"
	AttendanceOut     AttendanceStatus = "Out"
	AttendanceMaybe   AttendanceStatus = "Maybe"
)

// Valid reports whether s is a known attendance answer.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePending, AttendanceIn, AttendanceOut, AttendanceMaybe:
		return true
	}
	return false
}

// CrewEvent records one profile's attendance response to one event. At most
// one non-deleted row per (event, profile) pair, enforced by a partial
// unique index.
type CrewEvent struct {
	Base

	EventID   uint    `gorm:"not null;uniqueIndex:uq_crew_event_pair,where:is_deleted = false" json:"eventId"`
	ProfileID uint    `gorm:"not null;uniqueIndex:uq_crew_event_pair,where:is_deleted = false" json:"profileId"`
	Event     Event   `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Profile   Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`

	Status AttendanceStatus `gorm:"not null;size:20;default:'Pending'" json:"status"`
}
