package models

// EventType labels events ("Race", "Cruise", ...). A nil ProfileID makes the
// type global: usable by anyone and not deletable. Name is unique per
// (name, profile) pair, case-insensitively.
type EventType struct {
	Base

	Name string `gorm:"not null;size:200" json:"name"`

	ProfileID *uint    `json:"profileId,omitempty"`
	Profile   *Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}

// IsGlobal reports whether the type is system-wide.
func (et *EventType) IsGlobal() bool {
	return et.ProfileID == nil
}
