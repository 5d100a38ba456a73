package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crewmanager/apperrors"
	"crewmanager/models"
)

func TestCreateEventChecksReferences(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, testLog())
	owner := seedProfile(t, db, "Alice")
	boat := seedBoat(t, db, "Windward", owner.ID)
	eventType := seedEventType(t, db, "Race")

	params := EventParams{
		Name:        "Spring Regatta",
		StartDate:   time.Now().Add(24 * time.Hour),
		EndDate:     time.Now().Add(30 * time.Hour),
		Location:    "Harbor",
		BoatID:      boat.ID,
		EventTypeID: eventType.ID,
	}

	event, err := svc.CreateEvent("Alice", params)
	require.NoError(t, err)
	assert.NotZero(t, event.ID)

	params.BoatID = 999
	_, err = svc.CreateEvent("Alice", params)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	params.BoatID = boat.ID
	params.EventTypeID = 999
	_, err = svc.CreateEvent("Alice", params)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestRecordResponseDuplicateConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, testLog())
	owner := seedProfile(t, db, "Alice")
	boat := seedBoat(t, db, "Windward", owner.ID)
	eventType := seedEventType(t, db, "Race")

	event, err := svc.CreateEvent("Alice", EventParams{
		Name:        "Spring Regatta",
		StartDate:   time.Now().Add(24 * time.Hour),
		EndDate:     time.Now().Add(30 * time.Hour),
		Location:    "Harbor",
		BoatID:      boat.ID,
		EventTypeID: eventType.ID,
	})
	require.NoError(t, err)

	_, err = svc.RecordResponse("Alice", ResponseParams{EventID: event.ID, ProfileID: owner.ID, Status: models.AttendanceIn})
	require.NoError(t, err)

	_, err = svc.RecordResponse("Alice", ResponseParams{EventID: event.ID, ProfileID: owner.ID, Status: models.AttendanceOut})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestRecordResponseDefaultsToPending(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, testLog())
	owner := seedProfile(t, db, "Alice")
	boat := seedBoat(t, db, "Windward", owner.ID)
	eventType := seedEventType(t, db, "Race")

	event, err := svc.CreateEvent("Alice", EventParams{
		Name:        "Night Sail",
		StartDate:   time.Now().Add(24 * time.Hour),
		EndDate:     time.Now().Add(30 * time.Hour),
		Location:    "Harbor",
		BoatID:      boat.ID,
		EventTypeID: eventType.ID,
	})
	require.NoError(t, err)

	resp, err := svc.RecordResponse("Alice", ResponseParams{EventID: event.ID, ProfileID: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, models.AttendancePending, resp.Status)

	_, err = svc.UpdateResponse("Alice", resp.ID, models.AttendanceStatus("X"))
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestListUpcomingCountsConfirmedCrew(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, testLog())
	owner := seedProfile(t, db, "Alice")
	crew1 := seedProfile(t, db, "Bob")
	crew2 := seedProfile(t, db, "Carol")
	decliner := seedProfile(t, db, "Dave")
	boat := seedBoat(t, db, "Windward", owner.ID)
	eventType := seedEventType(t, db, "Race")

	event, err := svc.CreateEvent("Alice", EventParams{
		Name:        "Spring Regatta",
		StartDate:   time.Now().Add(48 * time.Hour),
		EndDate:     time.Now().Add(54 * time.Hour),
		Location:    "Harbor",
		BoatID:      boat.ID,
		EventTypeID: eventType.ID,
	})
	require.NoError(t, err)

	for _, p := range []struct {
		id     uint
		status models.AttendanceStatus
	}{
		{crew1.ID, models.AttendanceIn},
		{crew2.ID, models.AttendanceIn},
		{decliner.ID, models.AttendanceOut},
	} {
		_, err = svc.RecordResponse("test", ResponseParams{EventID: event.ID, ProfileID: p.id, Status: p.status})
		require.NoError(t, err)
	}

	views, err := svc.ListUpcoming([]uint{boat.ID}, 7)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, int64(2), views[0].CrewCount)
}

func TestListUpcomingWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, testLog())
	owner := seedProfile(t, db, "Alice")
	boat := seedBoat(t, db, "Windward", owner.ID)
	eventType := seedEventType(t, db, "Cruise")

	mk := func(name string, start time.Time) {
		_, err := svc.CreateEvent("Alice", EventParams{
			Name:        name,
			StartDate:   start,
			EndDate:     start.Add(4 * time.Hour),
			Location:    "Harbor",
			BoatID:      boat.ID,
			EventTypeID: eventType.ID,
		})
		require.NoError(t, err)
	}

	mk("Soon", time.Now().Add(48*time.Hour))
	mk("Far", time.Now().Add(40*24*time.Hour))
	mk("Past", time.Now().Add(-48*time.Hour))

	views, err := svc.ListUpcoming([]uint{boat.ID}, 30)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Soon", views[0].Name)
}

func TestListMyEvents(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, testLog())
	owner := seedProfile(t, db, "Alice")
	member := seedProfile(t, db, "Bob")
	outsider := seedProfile(t, db, "Carol")
	boat := seedBoat(t, db, "Windward", owner.ID)
	otherBoat := seedBoat(t, db, "Leeward", outsider.ID)
	eventType := seedEventType(t, db, "Race")
	seedCrew(t, db, member.ID, boat.ID, models.CrewStatusAccepted, false)

	event, err := svc.CreateEvent("Alice", EventParams{
		Name:        "Spring Regatta",
		StartDate:   time.Now().Add(24 * time.Hour),
		EndDate:     time.Now().Add(30 * time.Hour),
		Location:    "Harbor",
		BoatID:      boat.ID,
		EventTypeID: eventType.ID,
	})
	require.NoError(t, err)

	_, err = svc.CreateEvent("Carol", EventParams{
		Name:        "Other Club Outing",
		StartDate:   time.Now().Add(24 * time.Hour),
		EndDate:     time.Now().Add(30 * time.Hour),
		Location:    "Elsewhere",
		BoatID:      otherBoat.ID,
		EventTypeID: eventType.ID,
	})
	require.NoError(t, err)

	_, err = svc.RecordResponse("Bob", ResponseParams{EventID: event.ID, ProfileID: member.ID, Status: models.AttendanceIn})
	require.NoError(t, err)

	views, err := svc.ListMyEvents(member.ID, false)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, event.ID, views[0].ID)
	assert.Equal(t, models.AttendanceIn, views[0].MyStatus)
	assert.Equal(t, int64(1), views[0].CrewCount)

	// No answer recorded renders as Pending.
	views, err = svc.ListMyEvents(owner.ID, false)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, models.AttendancePending, views[0].MyStatus)
}

func TestListMyEventsGraceWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, testLog())
	owner := seedProfile(t, db, "Alice")
	boat := seedBoat(t, db, "Windward", owner.ID)
	eventType := seedEventType(t, db, "Cruise")

	mk := func(name string, end time.Time) {
		event := models.Event{
			Name:        name,
			StartDate:   end.Add(-4 * time.Hour),
			EndDate:     end,
			BoatID:      boat.ID,
			EventTypeID: eventType.ID,
		}
		require.NoError(t, db.Create(&event).Error)
	}

	mk("Just finished", time.Now().Add(-2*time.Hour))
	mk("Long gone", time.Now().Add(-48*time.Hour))

	views, err := svc.ListMyEvents(owner.ID, false)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Just finished", views[0].Name)

	views, err = svc.ListMyEvents(owner.ID, true)
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestDeleteResponseThenRespondAgain(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, testLog())
	owner := seedProfile(t, db, "Alice")
	boat := seedBoat(t, db, "Windward", owner.ID)
	eventType := seedEventType(t, db, "Race")

	event, err := svc.CreateEvent("Alice", EventParams{
		Name:        "Spring Regatta",
		StartDate:   time.Now().Add(24 * time.Hour),
		EndDate:     time.Now().Add(30 * time.Hour),
		Location:    "Harbor",
		BoatID:      boat.ID,
		EventTypeID: eventType.ID,
	})
	require.NoError(t, err)

	resp, err := svc.RecordResponse("Alice", ResponseParams{EventID: event.ID, ProfileID: owner.ID, Status: models.AttendanceIn})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteResponse("Alice", resp.ID))

	_, err = svc.RecordResponse("Alice", ResponseParams{EventID: event.ID, ProfileID: owner.ID, Status: models.AttendanceMaybe})
	require.NoError(t, err)
}
