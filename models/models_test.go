package models

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSoftDelete(t *testing.T) {
	var b Base
	now := time.Now().UTC()

	b.SoftDelete("alice", now)
	assert.True(t, b.IsDeleted)
	require.NotNil(t, b.DeletedAt)
	assert.Equal(t, now, *b.DeletedAt)
	require.NotNil(t, b.DeletedBy)
	assert.Equal(t, "alice", *b.DeletedBy)
}

func TestMessageRootID(t *testing.T) {
	root := Message{Base: Base{ID: 7}}
	assert.Equal(t, uint(7), root.RootID())

	rootID := uint(7)
	reply := Message{Base: Base{ID: 9}, RootMessageID: &rootID}
	assert.Equal(t, uint(7), reply.RootID())
}

func TestStatusValidation(t *testing.T) {
	assert.True(t, CrewStatusPending.Valid())
	assert.True(t, CrewStatusAccepted.Valid())
	assert.True(t, CrewStatusRejected.Valid())
	assert.False(t, CrewStatus("X").Valid())

	assert.True(t, AttendanceIn.Valid())
	assert.True(t, AttendanceOut.Valid())
	assert.True(t, AttendanceMaybe.Valid())
	assert.True(t, AttendancePending.Valid())
	assert.False(t, AttendanceStatus("Z").Valid())

	assert.True(t, ChannelInApp.Valid())
	assert.True(t, ChannelEmail.Valid())
	assert.False(t, MessageChannel("Fax").Valid())
}

func TestSeedGlobalEventTypesIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, SeedGlobalEventTypes(db))
	require.NoError(t, SeedGlobalEventTypes(db))

	var count int64
	require.NoError(t, db.Model(&EventType{}).Where("profile_id IS NULL").Count(&count).Error)
	assert.Equal(t, int64(5), count)
}

func TestPairUniquenessIgnoresDeletedRows(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	profile := Profile{LoginID: "alice", Name: "Alice", Email: "alice@club.example"}
	require.NoError(t, db.Create(&profile).Error)
	boat := Boat{Name: "Windward", ProfileID: profile.ID}
	require.NoError(t, db.Create(&boat).Error)

	first := BoatCrew{ProfileID: profile.ID, BoatID: boat.ID, Status: CrewStatusAccepted}
	require.NoError(t, db.Create(&first).Error)

	dup := BoatCrew{ProfileID: profile.ID, BoatID: boat.ID, Status: CrewStatusPending}
	err = db.Create(&dup).Error
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	first.SoftDelete("alice", time.Now().UTC())
	require.NoError(t, db.Save(&first).Error)

	// The partial index only covers live rows.
	again := BoatCrew{ProfileID: profile.ID, BoatID: boat.ID, Status: CrewStatusPending}
	require.NoError(t, db.Create(&again).Error)
}
