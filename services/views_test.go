package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"crewmanager/models"
)

func TestResolveCalendarColor(t *testing.T) {
	boat := models.Boat{CalendarColor: "#112233"}

	assert.Equal(t, "#112233", ResolveCalendarColor(&boat, nil))

	empty := ""
	assert.Equal(t, "#112233", ResolveCalendarColor(&boat, &empty))

	override := "#ff0000"
	assert.Equal(t, "#ff0000", ResolveCalendarColor(&boat, &override))
}

func TestAssembleBoatViewsDeduplicatesAndSorts(t *testing.T) {
	owned := []models.Boat{
		{Base: models.Base{ID: 1}, Name: "Windward", ProfileID: 10, CalendarColor: "#111111"},
	}
	crewed := []models.Boat{
		{Base: models.Base{ID: 1}, Name: "Windward", ProfileID: 10, CalendarColor: "#111111"},
		{Base: models.Base{ID: 2}, Name: "Leeward", ProfileID: 20, CalendarColor: "#222222"},
	}
	overrides := map[uint]string{2: "#abcdef"}

	views := AssembleBoatViews(10, owned, crewed, overrides)
	assert.Len(t, views, 2)

	assert.Equal(t, "Leeward", views[0].Name)
	assert.Equal(t, "#abcdef", views[0].CalendarColor)
	assert.False(t, views[0].IsOwner)

	assert.Equal(t, "Windward", views[1].Name)
	assert.Equal(t, "#111111", views[1].CalendarColor)
	assert.True(t, views[1].IsOwner)
}

func TestAnnotateMyEvents(t *testing.T) {
	events := []models.Event{
		{
			Base:   models.Base{ID: 1},
			Name:   "Regatta",
			BoatID: 5,
			Boat:   models.Boat{CalendarColor: "#00aa00"},
		},
		{
			Base:   models.Base{ID: 2},
			Name:   "Cruise",
			BoatID: 6,
			Boat:   models.Boat{CalendarColor: "#0000aa"},
		},
	}
	counts := map[uint]int64{1: 3}
	responses := map[uint]models.AttendanceStatus{1: models.AttendanceIn}
	overrides := map[uint]string{6: "#custom"}

	views := AnnotateMyEvents(events, counts, responses, overrides)
	assert.Len(t, views, 2)

	assert.Equal(t, int64(3), views[0].CrewCount)
	assert.Equal(t, models.AttendanceIn, views[0].MyStatus)
	assert.Equal(t, "#00aa00", views[0].CalendarColor)

	assert.Zero(t, views[1].CrewCount)
	assert.Equal(t, models.AttendancePending, views[1].MyStatus)
	assert.Equal(t, "#custom", views[1].CalendarColor)
}

func TestBuildMessageViewReadState(t *testing.T) {
	message := models.Message{
		Base:            models.Base{ID: 1},
		SenderProfileID: 10,
		Body:            "hello",
		Recipients: []models.MessageRecipient{
			{RecipientProfileID: 20, IsRead: false},
			{RecipientProfileID: 30, IsRead: true},
		},
	}

	sender := buildMessageView(&message, 10)
	assert.Equal(t, "Sent", sender.Type)
	assert.True(t, sender.IsRead)

	unread := buildMessageView(&message, 20)
	assert.Equal(t, "Received", unread.Type)
	assert.False(t, unread.IsRead)

	read := buildMessageView(&message, 30)
	assert.True(t, read.IsRead)

	// A viewer without a delivery row never renders as unread.
	bystander := buildMessageView(&message, 40)
	assert.True(t, bystander.IsRead)
}

func TestLatestPerThread(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rootA := uint(1)
	rootB := uint(4)

	msgs := []models.Message{
		{Base: models.Base{ID: 1, CreatedAt: base}, RootMessageID: &rootA},
		{Base: models.Base{ID: 2, CreatedAt: base.Add(time.Hour)}, RootMessageID: &rootA},
		{Base: models.Base{ID: 3, CreatedAt: base.Add(2 * time.Hour)}, RootMessageID: &rootA},
		{Base: models.Base{ID: 4, CreatedAt: base.Add(30 * time.Minute)}, RootMessageID: &rootB},
	}

	latest := latestPerThread(msgs)
	assert.Len(t, latest, 2)

	// Newest thread activity first.
	assert.Equal(t, uint(3), latest[0].ID)
	assert.Equal(t, uint(4), latest[1].ID)
}

func TestAssembleRecipientsDeduplicates(t *testing.T) {
	crewMates := []models.Profile{
		{Base: models.Base{ID: 1}, Name: "Zoe", Email: "zoe@club.example"},
		{Base: models.Base{ID: 2}, Name: "Amy", Email: "amy@club.example"},
	}
	owners := []models.Profile{
		{Base: models.Base{ID: 2}, Name: "Amy", Email: "amy@club.example"},
		{Base: models.Base{ID: 3}, Name: "Ben", Email: "ben@club.example"},
	}

	views := assembleRecipients(crewMates, owners)
	assert.Len(t, views, 3)
	assert.Equal(t, "Amy", views[0].Name)
	assert.Equal(t, "Ben", views[1].Name)
	assert.Equal(t, "Zoe", views[2].Name)
}
