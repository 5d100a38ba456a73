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

type BoatController struct {
	db   *gorm.DB
	log  *logrus.Entry
	crew *services.CrewService
}

func NewBoatController(db *gorm.DB, log *logrus.Entry) *BoatController {
	return &BoatController{db: db, log: log, crew: services.NewCrewService(db, log)}
}

// GetBoats returns all boats, paginated.
func (bc *BoatController) GetBoats(c *fiber.Ctx) error {
	page, pageSize := utils.PageParams(c)

	var boats []models.Boat
	if err := bc.db.Scopes(models.NotDeleted).
		Preload("Profile").
		Order("name").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&boats).Error; err != nil {
		return utils.HandleError(c, bc.log, err)
	}

	var totalCount int64
	if err := bc.db.Model(&models.Boat{}).Scopes(models.NotDeleted).Count(&totalCount).Error; err != nil {
		return utils.HandleError(c, bc.log, err)
	}

	return c.JSON(utils.ListResponse(boats, page, pageSize, totalCount))
}

func (bc *BoatController) GetBoat(c *fiber.Ctx) error {
	var boat models.Boat
	err := bc.db.Scopes(models.NotDeleted).
		Preload("Profile").
		First(&boat, utils.ParseUint(c.Params("id"))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Boat not found"})
	}
	if err != nil {
		return utils.HandleError(c, bc.log, err)
	}
	return c.JSON(boat)
}

// GetBoatsByProfile returns the boats a profile owns or crews on, with the
// calendar color resolved for that profile.
func (bc *BoatController) GetBoatsByProfile(c *fiber.Ctx) error {
	views, err := bc.crew.ListBoatsForProfile(utils.ParseUint(c.Params("profileId")))
	if err != nil {
		return utils.HandleError(c, bc.log, err)
	}
	return c.JSON(views)
}

func (bc *BoatController) CreateBoat(c *fiber.Ctx) error {
	var req services.CreateBoatParams
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	boat, err := bc.crew.CreateBoat(middleware.Actor(c), req)
	if err != nil {
		return utils.HandleError(c, bc.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(boat)
}

func (bc *BoatController) UpdateBoat(c *fiber.Ctx) error {
	var req services.UpdateBoatParams
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	boat, err := bc.crew.UpdateBoat(middleware.Actor(c), utils.ParseUint(c.Params("id")), req)
	if err != nil {
		return utils.HandleError(c, bc.log, err)
	}
	return c.JSON(boat)
}

func (bc *BoatController) DeleteBoat(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))
	if err := bc.crew.DeleteBoat(middleware.Actor(c), id); err != nil {
		return utils.HandleError(c, bc.log, err)
	}
	return c.JSON(fiber.Map{"message": "Boat deleted successfully", "id": id})
}

// SearchBoats filters by name substring and/or owner.
func (bc *BoatController) SearchBoats(c *fiber.Ctx) error {
	query := bc.db.Scopes(models.NotDeleted).Preload("Profile")

	if name := c.Query("name"); name != "" {
		query = query.Where("name ILIKE ?", "%"+name+"%")
	}
	if profileID := c.Query("profileId"); profileID != "" {
		query = query.Where("profile_id = ?", utils.ParseUint(profileID))
	}

	var boats []models.Boat
	if err := query.Order("name").Find(&boats).Error; err != nil {
		return utils.HandleError(c, bc.log, err)
	}
	return c.JSON(boats)
}

// SearchAllBoats matches the query against name, short name and
// description.
func (bc *BoatController) SearchAllBoats(c *fiber.Ctx) error {
	q := c.Query("query")
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Query parameter required"})
	}

	var boats []models.Boat
	err := bc.db.Scopes(models.NotDeleted).
		Preload("Profile").
		Where("name ILIKE ? OR short_name ILIKE ? OR description ILIKE ?",
			"%"+q+"%", "%"+q+"%", "%"+q+"%").
		Order("name").
		Find(&boats).Error
	if err != nil {
		return utils.HandleError(c, bc.log, err)
	}
	return c.JSON(boats)
}

type crewColorRequest struct {
	ProfileID uint   `json:"profileId" validate:"required"`
	Color     string `json:"color" validate:"required,max=7"`
}

// SetCrewColor updates the boat default color when the caller owns the
// boat, or the caller's own membership override otherwise.
func (bc *BoatController) SetCrewColor(c *fiber.Ctx) error {
	var req crewColorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	err := bc.crew.SetCrewColor(middleware.Actor(c), utils.ParseUint(c.Params("id")), req.ProfileID, req.Color)
	if err != nil {
		return utils.HandleError(c, bc.log, err)
	}
	return c.JSON(fiber.Map{"message": "Color updated successfully"})
}
