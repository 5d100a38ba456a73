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

type BoatCrewController struct {
	db   *gorm.DB
	log  *logrus.Entry
	crew *services.CrewService
}

func NewBoatCrewController(db *gorm.DB, log *logrus.Entry) *BoatCrewController {
	return &BoatCrewController{db: db, log: log, crew: services.NewCrewService(db, log)}
}

// GetBoatCrews returns all memberships, paginated.
func (cc *BoatCrewController) GetBoatCrews(c *fiber.Ctx) error {
	page, pageSize := utils.PageParams(c)

	var crews []models.BoatCrew
	if err := cc.db.Scopes(models.NotDeleted).
		Preload("Profile").
		Preload("Boat").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&crews).Error; err != nil {
		return utils.HandleError(c, cc.log, err)
	}

	var totalCount int64
	if err := cc.db.Model(&models.BoatCrew{}).Scopes(models.NotDeleted).Count(&totalCount).Error; err != nil {
		return utils.HandleError(c, cc.log, err)
	}

	return c.JSON(utils.ListResponse(crews, page, pageSize, totalCount))
}

func (cc *BoatCrewController) GetBoatCrew(c *fiber.Ctx) error {
	var crew models.BoatCrew
	err := cc.db.Scopes(models.NotDeleted).
		Preload("Profile").
		Preload("Boat").
		First(&crew, utils.ParseUint(c.Params("id"))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Crew membership not found"})
	}
	if err != nil {
		return utils.HandleError(c, cc.log, err)
	}
	return c.JSON(crew)
}

func (cc *BoatCrewController) GetCrewByBoat(c *fiber.Ctx) error {
	var crews []models.BoatCrew
	err := cc.db.Scopes(models.NotDeleted).
		Preload("Profile").
		Where("boat_id = ?", utils.ParseUint(c.Params("boatId"))).
		Order("created_at").
		Find(&crews).Error
	if err != nil {
		return utils.HandleError(c, cc.log, err)
	}
	return c.JSON(crews)
}

func (cc *BoatCrewController) GetCrewByProfile(c *fiber.Ctx) error {
	var crews []models.BoatCrew
	err := cc.db.Scopes(models.NotDeleted).
		Preload("Boat").
		Where("profile_id = ?", utils.ParseUint(c.Params("profileId"))).
		Order("created_at").
		Find(&crews).Error
	if err != nil {
		return utils.HandleError(c, cc.log, err)
	}
	return c.JSON(crews)
}

// GetAdminsByBoat returns the accepted admin memberships of a boat.
func (cc *BoatCrewController) GetAdminsByBoat(c *fiber.Ctx) error {
	var crews []models.BoatCrew
	err := cc.db.Scopes(models.NotDeleted).
		Preload("Profile").
		Where("boat_id = ? AND is_admin = ? AND status = ?",
			utils.ParseUint(c.Params("boatId")), true, models.CrewStatusAccepted).
		Order("created_at").
		Find(&crews).Error
	if err != nil {
		return utils.HandleError(c, cc.log, err)
	}
	return c.JSON(crews)
}

// GetPendingRequests returns the pending memberships on every boat the
// caller administers. The acting profile comes from the query so clients
// can render any admin's queue.
func (cc *BoatCrewController) GetPendingRequests(c *fiber.Ctx) error {
	profileID := utils.ParseUint(c.Query("profileId"))
	if profileID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "profileId parameter required"})
	}

	pending, err := cc.crew.ListPendingRequests(profileID)
	if err != nil {
		return utils.HandleError(c, cc.log, err)
	}
	return c.JSON(pending)
}

func (cc *BoatCrewController) CreateBoatCrew(c *fiber.Ctx) error {
	var req services.InviteCrewParams
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	crew, err := cc.crew.InviteOrRequestCrew(middleware.Actor(c), req)
	if err != nil {
		return utils.HandleError(c, cc.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(crew)
}

func (cc *BoatCrewController) UpdateBoatCrew(c *fiber.Ctx) error {
	var req services.UpdateCrewParams
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	crew, err := cc.crew.UpdateCrew(middleware.Actor(c), utils.ParseUint(c.Params("id")), req)
	if err != nil {
		return utils.HandleError(c, cc.log, err)
	}
	return c.JSON(crew)
}

func (cc *BoatCrewController) DeleteBoatCrew(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))
	if err := cc.crew.RemoveCrew(middleware.Actor(c), id); err != nil {
		return utils.HandleError(c, cc.log, err)
	}
	return c.JSON(fiber.Map{"message": "Crew membership removed successfully", "id": id})
}
