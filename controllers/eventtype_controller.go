package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"crewmanager/middleware"
	"crewmanager/models"
	"crewmanager/utils"
)

type EventTypeController struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewEventTypeController(db *gorm.DB, log *logrus.Entry) *EventTypeController {
	return &EventTypeController{db: db, log: log}
}

type eventTypeRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	ProfileID *uint  `json:"profileId"`
}

// GetEventTypes returns every global type plus all profile-owned ones.
func (tc *EventTypeController) GetEventTypes(c *fiber.Ctx) error {
	var types []models.EventType
	if err := tc.db.Scopes(models.NotDeleted).Order("name").Find(&types).Error; err != nil {
		return utils.HandleError(c, tc.log, err)
	}
	return c.JSON(types)
}

func (tc *EventTypeController) GetEventType(c *fiber.Ctx) error {
	var eventType models.EventType
	err := tc.db.Scopes(models.NotDeleted).First(&eventType, utils.ParseUint(c.Params("id"))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Event type not found"})
	}
	if err != nil {
		return utils.HandleError(c, tc.log, err)
	}
	return c.JSON(eventType)
}

// GetEventTypesByProfile returns the global types together with the
// profile's own custom types.
func (tc *EventTypeController) GetEventTypesByProfile(c *fiber.Ctx) error {
	var types []models.EventType
	err := tc.db.Scopes(models.NotDeleted).
		Where("profile_id IS NULL OR profile_id = ?", utils.ParseUint(c.Params("profileId"))).
		Order("name").
		Find(&types).Error
	if err != nil {
		return utils.HandleError(c, tc.log, err)
	}
	return c.JSON(types)
}

// CreateEventType adds a custom type. Names are unique case-insensitively
// within the visible set (globals plus the owner's own types).
func (tc *EventTypeController) CreateEventType(c *fiber.Ctx) error {
	var req eventTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	scope := tc.db.Model(&models.EventType{}).Scopes(models.NotDeleted).
		Where("LOWER(name) = LOWER(?)", req.Name)
	if req.ProfileID != nil {
		scope = scope.Where("profile_id IS NULL OR profile_id = ?", *req.ProfileID)
	} else {
		scope = scope.Where("profile_id IS NULL")
	}

	var count int64
	if err := scope.Count(&count).Error; err != nil {
		return utils.HandleError(c, tc.log, err)
	}
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Event type with this name already exists"})
	}

	actor := middleware.Actor(c)
	eventType := models.EventType{Name: req.Name, ProfileID: req.ProfileID}
	eventType.CreatedBy = &actor

	if err := tc.db.Create(&eventType).Error; err != nil {
		return utils.HandleError(c, tc.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(eventType)
}

// DeleteEventType removes a custom type. Global types cannot be deleted,
// custom types only by their owning profile, and a type still referenced by
// events stays.
func (tc *EventTypeController) DeleteEventType(c *fiber.Ctx) error {
	var eventType models.EventType
	err := tc.db.Scopes(models.NotDeleted).First(&eventType, utils.ParseUint(c.Params("id"))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Event type not found"})
	}
	if err != nil {
		return utils.HandleError(c, tc.log, err)
	}

	if eventType.IsGlobal() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Global event types cannot be deleted"})
	}
	if *eventType.ProfileID != utils.ParseUint(c.Query("profileId")) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Event type belongs to another profile"})
	}

	var refs int64
	err = tc.db.Model(&models.Event{}).Scopes(models.NotDeleted).
		Where("event_type_id = ?", eventType.ID).
		Count(&refs).Error
	if err != nil {
		return utils.HandleError(c, tc.log, err)
	}
	if refs > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Event type is still referenced by events"})
	}

	eventType.SoftDelete(middleware.Actor(c), time.Now().UTC())
	if err := tc.db.Save(&eventType).Error; err != nil {
		return utils.HandleError(c, tc.log, err)
	}
	return c.JSON(fiber.Map{"message": "Event type deleted successfully", "id": eventType.ID})
}
