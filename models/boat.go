package models

// Boat is a vessel owned by exactly one profile. It is the aggregation root
// for crew memberships and events.
type Boat struct {
	Base

	Name        string `gorm:"not null;size:200" json:"name"`
	Description string `gorm:"size:1000" json:"description"`

	// Owner
	ProfileID uint    `gorm:"not null;index" json:"profileId"`
	Profile   Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`

	// Short display name for calendar cells
	ShortName string `gorm:"size:3" json:"shortName"`

	// Default display color (#RRGGBB). Crew members may override per
	// membership, see BoatCrew.CalendarColor.
	CalendarColor string `gorm:"size:7" json:"calendarColor"`

	Image string `json:"image"`

	// Relations
	BoatCrews []BoatCrew `gorm:"foreignKey:BoatID" json:"boatCrews,omitempty"`
	Events    []Event    `gorm:"foreignKey:BoatID" json:"events,omitempty"`
}
