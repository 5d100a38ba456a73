package models

// CrewStatus is the lifecycle state of a crew membership. Invitations and
// join requests start Pending and are moved to Accepted or Rejected by a
// boat admin.
type CrewStatus string

const (
	CrewStatusPending  CrewStatus = "P"
	CrewStatusAccepted CrewStatus = "A"
	CrewStatusRejected CrewStatus = "R"
)

// Valid reports whether s is one of the three known states.
func (s CrewStatus) Valid() bool {
	switch s {
	case CrewStatusPending, CrewStatusAccepted, CrewStatusRejected:
		return true
	}
	return false
}

// BoatCrew links one profile to one boat. At most one non-deleted row may
// exist per (profile, boat) pair; the partial unique index is the source of
// truth for that invariant, application checks are pre-validation only.
type BoatCrew struct {
	Base

	ProfileID uint    `gorm:"not null;uniqueIndex:uq_boat_crew_pair,where:is_deleted = false" json:"profileId"`
	BoatID    uint    `gorm:"not null;uniqueIndex:uq_boat_crew_pair,where:is_deleted = false" json:"boatId"`
	Profile   Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
	Boat      Boat    `gorm:"foreignKey:BoatID" json:"boat,omitempty"`

	IsAdmin bool       `gorm:"default:false" json:"isAdmin"`
	Status  CrewStatus `gorm:"not null;size:1;default:'P'" json:"status"`

	// Per-member display color override; nil falls back to the boat default.
	CalendarColor *string `gorm:"size:7" json:"calendarColor,omitempty"`
}
