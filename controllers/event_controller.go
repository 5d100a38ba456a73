package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"crewmanager/middleware"
	"crewmanager/models"
	"crewmanager/services"
	"crewmanager/utils"
)

type EventController struct {
	db     *gorm.DB
	log    *logrus.Entry
	events *services.EventService
}

func NewEventController(db *gorm.DB, log *logrus.Entry) *EventController {
	return &EventController{db: db, log: log, events: services.NewEventService(db, log)}
}

// GetEvents returns all events, paginated, soonest first.
func (ec *EventController) GetEvents(c *fiber.Ctx) error {
	page, pageSize := utils.PageParams(c)

	var events []models.Event
	if err := ec.db.Scopes(models.NotDeleted).
		Preload("Boat").
		Preload("EventType").
		Order("start_date").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&events).Error; err != nil {
		return utils.HandleError(c, ec.log, err)
	}

	var totalCount int64
	if err := ec.db.Model(&models.Event{}).Scopes(models.NotDeleted).Count(&totalCount).Error; err != nil {
		return utils.HandleError(c, ec.log, err)
	}

	return c.JSON(utils.ListResponse(events, page, pageSize, totalCount))
}

func (ec *EventController) GetEvent(c *fiber.Ctx) error {
	var event models.Event
	err := ec.db.Scopes(models.NotDeleted).
		Preload("Boat").
		Preload("EventType").
		First(&event, utils.ParseUint(c.Params("id"))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Event not found"})
	}
	if err != nil {
		return utils.HandleError(c, ec.log, err)
	}
	return c.JSON(event)
}

func (ec *EventController) GetEventsByBoat(c *fiber.Ctx) error {
	var events []models.Event
	err := ec.db.Scopes(models.NotDeleted).
		Preload("EventType").
		Where("boat_id = ?", utils.ParseUint(c.Params("boatId"))).
		Order("start_date").
		Find(&events).Error
	if err != nil {
		return utils.HandleError(c, ec.log, err)
	}
	return c.JSON(events)
}

// GetUpcomingEvents lists events starting within the window, optionally
// restricted to a comma-separated boatIds filter. Defaults to 30 days.
func (ec *EventController) GetUpcomingEvents(c *fiber.Ctx) error {
	days := c.QueryInt("days", 30)
	if days <= 0 {
		days = 30
	}

	var boatIDs []uint
	if raw := c.Query("boatIds"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if id := utils.ParseUint(strings.TrimSpace(part)); id != 0 {
				boatIDs = append(boatIDs, id)
			}
		}
	}

	views, err := ec.events.ListUpcoming(boatIDs, days)
	if err != nil {
		return utils.HandleError(c, ec.log, err)
	}
	return c.JSON(views)
}

// GetMyEvents lists events on the boats a profile owns or crews on,
// annotated with the profile's answer and resolved colors.
func (ec *EventController) GetMyEvents(c *fiber.Ctx) error {
	profileID := utils.ParseUint(c.Query("profileId"))
	if profileID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "profileId parameter required"})
	}

	views, err := ec.events.ListMyEvents(profileID, c.QueryBool("includePast", false))
	if err != nil {
		return utils.HandleError(c, ec.log, err)
	}
	return c.JSON(views)
}

// SearchEvents filters by name substring, boat and event type.
func (ec *EventController) SearchEvents(c *fiber.Ctx) error {
	query := ec.db.Scopes(models.NotDeleted).Preload("Boat").Preload("EventType")

	if name := c.Query("name"); name != "" {
		query = query.Where("name ILIKE ?", "%"+name+"%")
	}
	if boatID := c.Query("boatId"); boatID != "" {
		query = query.Where("boat_id = ?", utils.ParseUint(boatID))
	}
	if eventTypeID := c.Query("eventTypeId"); eventTypeID != "" {
		query = query.Where("event_type_id = ?", utils.ParseUint(eventTypeID))
	}

	var events []models.Event
	if err := query.Order("start_date").Find(&events).Error; err != nil {
		return utils.HandleError(c, ec.log, err)
	}
	return c.JSON(events)
}

func (ec *EventController) CreateEvent(c *fiber.Ctx) error {
	var req services.EventParams
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	event, err := ec.events.CreateEvent(middleware.Actor(c), req)
	if err != nil {
		return utils.HandleError(c, ec.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

func (ec *EventController) UpdateEvent(c *fiber.Ctx) error {
	var req services.EventParams
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	event, err := ec.events.UpdateEvent(middleware.Actor(c), utils.ParseUint(c.Params("id")), req)
	if err != nil {
		return utils.HandleError(c, ec.log, err)
	}
	return c.JSON(event)
}

func (ec *EventController) DeleteEvent(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))
	if err := ec.events.DeleteEvent(middleware.Actor(c), id); err != nil {
		return utils.HandleError(c, ec.log, err)
	}
	return c.JSON(fiber.Map{"message": "Event deleted successfully", "id": id})
}
