package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"crewmanager/middleware"
	"crewmanager/models"
	"crewmanager/services"
	"crewmanager/utils"
)

type CrewEventController struct {
	db     *gorm.DB
	log    *logrus.Entry
	events *services.EventService
}

func NewCrewEventController(db *gorm.DB, log *logrus.Entry) *CrewEventController {
	return &CrewEventController{db: db, log: log, events: services.NewEventService(db, log)}
}

func (ce *CrewEventController) GetCrewEvent(c *fiber.Ctx) error {
	var crewEvent models.CrewEvent
	err := ce.db.Scopes(models.NotDeleted).
		Preload("Profile").
		Preload("Event").
		First(&crewEvent, utils.ParseUint(c.Params("id"))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Attendance response not found"})
	}
	if err != nil {
		return utils.HandleError(c, ce.log, err)
	}
	return c.JSON(crewEvent)
}

func (ce *CrewEventController) GetCrewEventsByEvent(c *fiber.Ctx) error {
	var crewEvents []models.CrewEvent
	err := ce.db.Scopes(models.NotDeleted).
		Preload("Profile").
		Where("event_id = ?", utils.ParseUint(c.Params("eventId"))).
		Order("created_at").
		Find(&crewEvents).Error
	if err != nil {
		return utils.HandleError(c, ce.log, err)
	}
	return c.JSON(crewEvents)
}

func (ce *CrewEventController) GetCrewEventsByProfile(c *fiber.Ctx) error {
	var crewEvents []models.CrewEvent
	err := ce.db.Scopes(models.NotDeleted).
		Preload("Event").
		Where("profile_id = ?", utils.ParseUint(c.Params("profileId"))).
		Order("created_at DESC").
		Find(&crewEvents).Error
	if err != nil {
		return utils.HandleError(c, ce.log, err)
	}
	return c.JSON(crewEvents)
}

func (ce *CrewEventController) CreateCrewEvent(c *fiber.Ctx) error {
	var req services.ResponseParams
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	crewEvent, err := ce.events.RecordResponse(middleware.Actor(c), req)
	if err != nil {
		return utils.HandleError(c, ce.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(crewEvent)
}

type updateResponseRequest struct {
	Status models.AttendanceStatus `json:"status" validate:"required"`
}

func (ce *CrewEventController) UpdateCrewEvent(c *fiber.Ctx) error {
	var req updateResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	crewEvent, err := ce.events.UpdateResponse(middleware.Actor(c), utils.ParseUint(c.Params("id")), req.Status)
	if err != nil {
		return utils.HandleError(c, ce.log, err)
	}
	return c.JSON(crewEvent)
}

func (ce *CrewEventController) DeleteCrewEvent(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))
	if err := ce.events.DeleteResponse(middleware.Actor(c), id); err != nil {
		return utils.HandleError(c, ce.log, err)
	}
	return c.JSON(fiber.Map{"message": "Attendance response removed successfully", "id": id})
}
