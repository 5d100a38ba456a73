package services

import (
	"sort"

	"crewmanager/models"
)

// BoatView is a boat as seen by one profile: the calendar color is resolved
// to that viewer's override when one is set, else the boat default.
type BoatView struct {
	models.Boat
	CalendarColor string `json:"calendarColor"`
	IsOwner       bool   `json:"isOwner"`
}

// ResolveCalendarColor picks the viewer's override over the boat default.
func ResolveCalendarColor(boat *models.Boat, override *string) string {
	if override != nil && *override != "" {
		return *override
	}
	return boat.CalendarColor
}

// AssembleBoatViews merges owned and crewed boats into one de-duplicated,
// name-sorted list with per-viewer colors. Pure so it is testable without
// storage.
func AssembleBoatViews(viewerID uint, owned, crewed []models.Boat, overrides map[uint]string) []BoatView {
	seen := make(map[uint]bool, len(owned)+len(crewed))
	views := make([]BoatView, 0, len(owned)+len(crewed))

	add := func(boat models.Boat) {
		if seen[boat.ID] {
			return
		}
		seen[boat.ID] = true

		var override *string
		if color, ok := overrides[boat.ID]; ok {
			override = &color
		}
		views = append(views, BoatView{
			Boat:          boat,
			CalendarColor: ResolveCalendarColor(&boat, override),
			IsOwner:       boat.ProfileID == viewerID,
		})
	}

	for _, boat := range owned {
		add(boat)
	}
	for _, boat := range crewed {
		add(boat)
	}

	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	return views
}

// EventView annotates an event with its confirmed crew count.
type EventView struct {
	models.Event
	CrewCount int64 `json:"crewCount"`
}

// MyEventView is an event as seen by one profile: attendance answer,
// confirmed count and the viewer-resolved calendar color.
type MyEventView struct {
	models.Event
	CrewCount     int64                   `json:"crewCount"`
	MyStatus      models.AttendanceStatus `json:"myStatus"`
	CalendarColor string                  `json:"calendarColor"`
}

// AnnotateMyEvents builds the per-viewer event views from pre-fetched rows:
// counts keyed by event id, responses keyed by event id, color overrides
// keyed by boat id.
func AnnotateMyEvents(events []models.Event, counts map[uint]int64, responses map[uint]models.AttendanceStatus, overrides map[uint]string) []MyEventView {
	views := make([]MyEventView, 0, len(events))
	for _, event := range events {
		status, ok := responses[event.ID]
		if !ok {
			status = models.AttendancePending
		}

		var override *string
		if color, found := overrides[event.BoatID]; found {
			override = &color
		}

		views = append(views, MyEventView{
			Event:         event,
			CrewCount:     counts[event.ID],
			MyStatus:      status,
			CalendarColor: ResolveCalendarColor(&event.Boat, override),
		})
	}
	return views
}
