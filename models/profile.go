package models

// Profile represents a club member
type Profile struct {
	Base

	// Login identifier issued by the identity provider (Auth0 subject)
	LoginID string `gorm:"uniqueIndex;not null;size:100" json:"loginId"`

	Name  string `gorm:"not null;size:200" json:"name"`
	Email string `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Phone string `json:"phone"`

	// Postal address
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`

	// Avatar URL
	Image string `json:"image"`

	// Relations
	Boats     []Boat     `gorm:"foreignKey:ProfileID" json:"boats,omitempty"`
	BoatCrews []BoatCrew `gorm:"foreignKey:ProfileID" json:"boatCrews,omitempty"`
}
