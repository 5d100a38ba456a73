package services

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"crewmanager/apperrors"
	"crewmanager/models"
)

// EventService schedules events per boat and tracks attendance responses.
type EventService struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewEventService(db *gorm.DB, log *logrus.Entry) *EventService {
	return &EventService{db: db, log: log}
}

// listMyEventsGrace keeps events visible for a while after they end.
const listMyEventsGrace = 12 * time.Hour

type EventParams struct {
	Name        string    `json:"name" validate:"required,max=200"`
	StartDate   time.Time `json:"startDate" validate:"required"`
	EndDate     time.Time `json:"endDate" validate:"required"`
	Location    string    `json:"location" validate:"required,max=300"`
	Description string    `json:"description" validate:"max=1000"`
	MinCrew     int       `json:"minCrew" validate:"min=0"`
	MaxCrew     int       `json:"maxCrew" validate:"min=0"`
	DesiredCrew int       `json:"desiredCrew" validate:"min=0"`
	BoatID      uint      `json:"boatId" validate:"required"`
	EventTypeID uint      `json:"eventTypeId" validate:"required"`
}

func (s *EventService) checkEventRefs(boatID, eventTypeID uint) error {
	var count int64
	if err := s.db.Model(&models.Boat{}).Scopes(models.NotDeleted).
		Where("id = ?", boatID).Count(&count).Error; err != nil {
		return apperrors.Internal(err)
	}
	if count == 0 {
		return apperrors.Validation("invalid boatId: boat does not exist")
	}

	if err := s.db.Model(&models.EventType{}).Scopes(models.NotDeleted).
		Where("id = ?", eventTypeID).Count(&count).Error; err != nil {
		return apperrors.Internal(err)
	}
	if count == 0 {
		return apperrors.Validation("invalid eventTypeId: event type does not exist")
	}
	return nil
}

func (s *EventService) CreateEvent(actor string, p EventParams) (*models.Event, error) {
	if err := s.checkEventRefs(p.BoatID, p.EventTypeID); err != nil {
		return nil, err
	}

	event := models.Event{
		Name:        p.Name,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Location:    p.Location,
		Description: p.Description,
		MinCrew:     p.MinCrew,
		MaxCrew:     p.MaxCrew,
		DesiredCrew: p.DesiredCrew,
		BoatID:      p.BoatID,
		EventTypeID: p.EventTypeID,
	}
	event.CreatedBy = &actor

	if err := s.db.Create(&event).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return &event, nil
}

func (s *EventService) UpdateEvent(actor string, eventID uint, p EventParams) (*models.Event, error) {
	var event models.Event
	if err := s.db.Scopes(models.NotDeleted).First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("event not found")
		}
		return nil, apperrors.Internal(err)
	}

	if err := s.checkEventRefs(p.BoatID, p.EventTypeID); err != nil {
		return nil, err
	}

	event.Name = p.Name
	event.StartDate = p.StartDate
	event.EndDate = p.EndDate
	event.Location = p.Location
	event.Description = p.Description
	event.MinCrew = p.MinCrew
	event.MaxCrew = p.MaxCrew
	event.DesiredCrew = p.DesiredCrew
	event.BoatID = p.BoatID
	event.EventTypeID = p.EventTypeID
	event.Touch(actor, time.Now().UTC())

	if err := s.db.Save(&event).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return &event, nil
}

func (s *EventService) DeleteEvent(actor string, eventID uint) error {
	var event models.Event
	if err := s.db.Scopes(models.NotDeleted).First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("event not found")
		}
		return apperrors.Internal(err)
	}

	event.SoftDelete(actor, time.Now().UTC())
	if err := s.db.Save(&event).Error; err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// crewCounts maps event id to the number of non-deleted "In" responses.
func (s *EventService) crewCounts(eventIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}

	type row struct {
		EventID uint
		N       int64
	}
	var rows []row
	if err := s.db.Model(&models.CrewEvent{}).Scopes(models.NotDeleted).
		Select("event_id, COUNT(*) AS n").
		Where("event_id IN ? AND status = ?", eventIDs, models.AttendanceIn).
		Group("event_id").
		Find(&rows).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	for _, r := range rows {
		counts[r.EventID] = r.N
	}
	return counts, nil
}

// ListUpcoming returns events starting within the next windowDays on the
// given boats, each annotated with its confirmed crew count.
func (s *EventService) ListUpcoming(boatIDs []uint, windowDays int) ([]EventView, error) {
	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, windowDays)

	query := s.db.Scopes(models.NotDeleted).
		Preload("Boat").
		Preload("EventType").
		Where("start_date >= ? AND start_date <= ?", now, cutoff)
	if len(boatIDs) > 0 {
		query = query.Where("boat_id IN ?", boatIDs)
	}

	var events []models.Event
	if err := query.Order("start_date").Find(&events).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	counts, err := s.crewCounts(eventIDs(events))
	if err != nil {
		return nil, err
	}

	views := make([]EventView, 0, len(events))
	for _, event := range events {
		views = append(views, EventView{Event: event, CrewCount: counts[event.ID]})
	}
	return views, nil
}

// ListMyEvents returns events on boats the profile owns or crews on
// (accepted or still invited), annotated with the profile's own answer,
// confirmed counts and viewer-resolved colors. Past events drop out after a
// 12 hour grace unless includePast is set.
func (s *EventService) ListMyEvents(profileID uint, includePast bool) ([]MyEventView, error) {
	var ownedIDs []uint
	if err := s.db.Model(&models.Boat{}).Scopes(models.NotDeleted).
		Where("profile_id = ?", profileID).
		Pluck("id", &ownedIDs).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	var crewIDs []uint
	if err := s.db.Model(&models.BoatCrew{}).Scopes(models.NotDeleted).
		Where("profile_id = ? AND status IN ?", profileID,
			[]models.CrewStatus{models.CrewStatusAccepted, models.CrewStatusPending}).
		Pluck("boat_id", &crewIDs).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	boatIDs := append(ownedIDs, crewIDs...)
	if len(boatIDs) == 0 {
		return []MyEventView{}, nil
	}

	query := s.db.Scopes(models.NotDeleted).
		Preload("Boat").
		Preload("EventType").
		Where("boat_id IN ?", boatIDs)
	if !includePast {
		query = query.Where("end_date >= ?", time.Now().UTC().Add(-listMyEventsGrace))
	}

	var events []models.Event
	if err := query.Order("start_date").Find(&events).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	ids := eventIDs(events)
	counts, err := s.crewCounts(ids)
	if err != nil {
		return nil, err
	}

	responses := make(map[uint]models.AttendanceStatus)
	if len(ids) > 0 {
		var rows []models.CrewEvent
		if err := s.db.Scopes(models.NotDeleted).
			Where("profile_id = ? AND event_id IN ?", profileID, ids).
			Find(&rows).Error; err != nil {
			return nil, apperrors.Internal(err)
		}
		for _, row := range rows {
			responses[row.EventID] = row.Status
		}
	}

	var overrideRows []models.BoatCrew
	if err := s.db.Scopes(models.NotDeleted).
		Where("profile_id = ? AND calendar_color IS NOT NULL", profileID).
		Find(&overrideRows).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	overrides := make(map[uint]string, len(overrideRows))
	for _, row := range overrideRows {
		if row.CalendarColor != nil {
			overrides[row.BoatID] = *row.CalendarColor
		}
	}

	return AnnotateMyEvents(events, counts, responses, overrides), nil
}

type ResponseParams struct {
	EventID   uint                    `json:"eventId" validate:"required"`
	ProfileID uint                    `json:"profileId" validate:"required"`
	Status    models.AttendanceStatus `json:"status"`
}

// RecordResponse stores a profile's first answer to an event. A second
// answer for the same pair is a conflict; the partial unique index backs
// the check up under concurrency.
func (s *EventService) RecordResponse(actor string, p ResponseParams) (*models.CrewEvent, error) {
	if p.Status == "" {
		p.Status = models.AttendancePending
	}
	if !p.Status.Valid() {
		return nil, apperrors.Validation("invalid attendance status %q", p.Status)
	}

	var count int64
	if err := s.db.Model(&models.CrewEvent{}).Scopes(models.NotDeleted).
		Where("event_id = ? AND profile_id = ?", p.EventID, p.ProfileID).
		Count(&count).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	if count > 0 {
		return nil, apperrors.Conflict("response already exists for this event and profile")
	}

	crewEvent := models.CrewEvent{
		EventID:   p.EventID,
		ProfileID: p.ProfileID,
		Status:    p.Status,
	}
	crewEvent.CreatedBy = &actor

	if err := s.db.Create(&crewEvent).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("response already exists for this event and profile")
		}
		return nil, apperrors.Internal(err)
	}
	return &crewEvent, nil
}

func (s *EventService) UpdateResponse(actor string, crewEventID uint, status models.AttendanceStatus) (*models.CrewEvent, error) {
	if !status.Valid() {
		return nil, apperrors.Validation("invalid attendance status %q", status)
	}

	var crewEvent models.CrewEvent
	if err := s.db.Scopes(models.NotDeleted).First(&crewEvent, crewEventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("attendance response not found")
		}
		return nil, apperrors.Internal(err)
	}

	crewEvent.Status = status
	crewEvent.Touch(actor, time.Now().UTC())
	if err := s.db.Save(&crewEvent).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return &crewEvent, nil
}

func (s *EventService) DeleteResponse(actor string, crewEventID uint) error {
	var crewEvent models.CrewEvent
	if err := s.db.Scopes(models.NotDeleted).First(&crewEvent, crewEventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("attendance response not found")
		}
		return apperrors.Internal(err)
	}

	crewEvent.SoftDelete(actor, time.Now().UTC())
	if err := s.db.Save(&crewEvent).Error; err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func eventIDs(events []models.Event) []uint {
	ids := make([]uint, len(events))
	for i, event := range events {
		ids[i] = event.ID
	}
	return ids
}
