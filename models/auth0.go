package models

import "time"

// Auth0User mirrors a user record pushed from the identity provider via the
// server-to-server webhook. Optionally linked to a Profile by email.
type Auth0User struct {
	Base

	Auth0UserID   string `gorm:"uniqueIndex;not null;size:100" json:"auth0UserId"`
	Email         string `gorm:"not null;size:255" json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	Username      string `gorm:"size:100" json:"username"`
	PhoneNumber   string `gorm:"size:20" json:"phoneNumber"`
	PhoneVerified bool   `json:"phoneVerified"`

	Name       string `gorm:"size:200" json:"name"`
	Nickname   string `gorm:"size:200" json:"nickname"`
	GivenName  string `gorm:"size:100" json:"givenName"`
	FamilyName string `gorm:"size:100" json:"familyName"`
	Picture    string `gorm:"size:500" json:"picture"`

	Auth0CreatedAt time.Time  `json:"auth0CreatedAt"`
	Auth0UpdatedAt time.Time  `json:"auth0UpdatedAt"`
	LastLogin      *time.Time `json:"lastLogin,omitempty"`
	LastIP         string     `gorm:"size:45" json:"lastIp"`
	LoginsCount    int        `json:"loginsCount"`
	Blocked        bool       `json:"blocked"`

	Identities []Auth0Identity `gorm:"foreignKey:Auth0UserRecordID" json:"identities,omitempty"`

	// Link to the club profile, resolved by email at push time.
	ProfileID *uint    `json:"profileId,omitempty"`
	Profile   *Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}

// Auth0Identity is one federated identity (connection) of an Auth0User.
type Auth0Identity struct {
	Base

	Auth0UserRecordID uint   `gorm:"not null;index" json:"auth0UserRecordId"`
	Provider          string `gorm:"not null;size:100" json:"provider"`
	IsSocial          bool   `json:"isSocial"`
	Connection        string `gorm:"not null;size:200" json:"connection"`
	UserID            string `gorm:"not null;size:100" json:"userId"`
}
