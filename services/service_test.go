package services

import (
	"io"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"crewmanager/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

func testLog() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

func seedProfile(t *testing.T, db *gorm.DB, name string) models.Profile {
	t.Helper()

	profile := models.Profile{
		LoginID: "login-" + name,
		Name:    name,
		Email:   name + "@club.example",
	}
	require.NoError(t, db.Create(&profile).Error)
	return profile
}

func seedBoat(t *testing.T, db *gorm.DB, name string, ownerID uint) models.Boat {
	t.Helper()

	boat := models.Boat{Name: name, ProfileID: ownerID, CalendarColor: "#336699"}
	require.NoError(t, db.Create(&boat).Error)
	return boat
}

func seedEventType(t *testing.T, db *gorm.DB, name string) models.EventType {
	t.Helper()

	eventType := models.EventType{Name: name}
	require.NoError(t, db.Create(&eventType).Error)
	return eventType
}

func seedCrew(t *testing.T, db *gorm.DB, profileID, boatID uint, status models.CrewStatus, isAdmin bool) models.BoatCrew {
	t.Helper()

	crew := models.BoatCrew{ProfileID: profileID, BoatID: boatID, Status: status, IsAdmin: isAdmin}
	require.NoError(t, db.Create(&crew).Error)
	return crew
}
