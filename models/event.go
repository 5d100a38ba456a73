package models

import "time"

// Event is a scheduled activity on one boat.
type Event struct {
	Base

	Name        string    `gorm:"not null;size:200" json:"name"`
	StartDate   time.Time `gorm:"index" json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Location    string    `gorm:"not null;size:300" json:"location"`
	Description string    `gorm:"size:1000" json:"description"`

	MinCrew     int `json:"minCrew"`
	MaxCrew     int `json:"maxCrew"`
	DesiredCrew int `json:"desiredCrew"`

	BoatID uint `gorm:"not null;index" json:"boatId"`
	Boat   Boat `gorm:"foreignKey:BoatID" json:"boat,omitempty"`

	EventTypeID uint      `gorm:"not null" json:"eventTypeId"`
	EventType   EventType `gorm:"foreignKey:EventTypeID" json:"eventType,omitempty"`
}
