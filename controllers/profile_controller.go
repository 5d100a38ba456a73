package controller

import (
	"errors"
	"time"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"crewmanager/middleware"
	"crewmanager/models"
	"crewmanager/utils"
)

type ProfileController struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewProfileController(db *gorm.DB, log *logrus.Entry) *ProfileController {
	return &ProfileController{db: db, log: log}
}

type profileRequest struct {
	LoginID string `json:"loginId" validate:"required,max=100"`
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=30"`
	Address string `json:"address" validate:"max=300"`
	City    string `json:"city" validate:"max=100"`
	State   string `json:"state" validate:"max=100"`
	Zip     string `json:"zip" validate:"max=20"`
	Image   string `json:"image" validate:"max=500"`
}

// GetProfiles returns all profiles, paginated.
func (pc *ProfileController) GetProfiles(c *fiber.Ctx) error {
	page, pageSize := utils.PageParams(c)

	var profiles []models.Profile
	if err := pc.db.Scopes(models.NotDeleted).
		Order("name").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&profiles).Error; err != nil {
		return utils.HandleError(c, pc.log, err)
	}

	var totalCount int64
	if err := pc.db.Model(&models.Profile{}).Scopes(models.NotDeleted).Count(&totalCount).Error; err != nil {
		return utils.HandleError(c, pc.log, err)
	}

	return c.JSON(utils.ListResponse(profiles, page, pageSize, totalCount))
}

func (pc *ProfileController) GetProfile(c *fiber.Ctx) error {
	var profile models.Profile
	err := pc.db.Scopes(models.NotDeleted).First(&profile, utils.ParseUint(c.Params("id"))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
	}
	if err != nil {
		return utils.HandleError(c, pc.log, err)
	}
	return c.JSON(profile)
}

// GetProfileByEmail looks a profile up by exact email, case-insensitive.
func (pc *ProfileController) GetProfileByEmail(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email parameter required"})
	}

	var profile models.Profile
	err := pc.db.Scopes(models.NotDeleted).
		Where("LOWER(email) = LOWER(?)", email).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
	}
	if err != nil {
		return utils.HandleError(c, pc.log, err)
	}
	return c.JSON(profile)
}

// SearchProfiles filters by name and/or email substring.
func (pc *ProfileController) SearchProfiles(c *fiber.Ctx) error {
	query := pc.db.Scopes(models.NotDeleted)

	if name := c.Query("name"); name != "" {
		query = query.Where("name ILIKE ?", "%"+name+"%")
	}
	if email := c.Query("email"); email != "" {
		query = query.Where("email ILIKE ?", "%"+email+"%")
	}

	var profiles []models.Profile
	if err := query.Order("name").Find(&profiles).Error; err != nil {
		return utils.HandleError(c, pc.log, err)
	}
	return c.JSON(profiles)
}

// SearchAllProfiles matches one query string against name, email and phone.
func (pc *ProfileController) SearchAllProfiles(c *fiber.Ctx) error {
	q := c.Query("query")
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Query parameter required"})
	}

	var profiles []models.Profile
	err := pc.db.Scopes(models.NotDeleted).
		Where("name ILIKE ? OR email ILIKE ? OR phone ILIKE ?",
			"%"+q+"%", "%"+q+"%", "%"+q+"%").
		Order("name").
		Find(&profiles).Error
	if err != nil {
		return utils.HandleError(c, pc.log, err)
	}
	return c.JSON(profiles)
}

func (pc *ProfileController) CreateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := checkmail.ValidateFormat(req.Email); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email format"})
	}

	var count int64
	err := pc.db.Model(&models.Profile{}).Scopes(models.NotDeleted).
		Where("LOWER(email) = LOWER(?) OR login_id = ?", req.Email, req.LoginID).
		Count(&count).Error
	if err != nil {
		return utils.HandleError(c, pc.log, err)
	}
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Profile with this email or login already exists"})
	}

	actor := middleware.Actor(c)
	profile := models.Profile{
		LoginID: req.LoginID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Zip:     req.Zip,
		Image:   req.Image,
	}
	profile.CreatedBy = &actor

	if err := pc.db.Create(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Profile with this email or login already exists"})
		}
		return utils.HandleError(c, pc.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(profile)
}

func (pc *ProfileController) UpdateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := checkmail.ValidateFormat(req.Email); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email format"})
	}

	var profile models.Profile
	err := pc.db.Scopes(models.NotDeleted).First(&profile, utils.ParseUint(c.Params("id"))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
	}
	if err != nil {
		return utils.HandleError(c, pc.log, err)
	}

	profile.LoginID = req.LoginID
	profile.Name = req.Name
	profile.Email = req.Email
	profile.Phone = req.Phone
	profile.Address = req.Address
	profile.City = req.City
	profile.State = req.State
	profile.Zip = req.Zip
	profile.Image = req.Image
	profile.Touch(middleware.Actor(c), time.Now().UTC())

	if err := pc.db.Save(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Profile with this email or login already exists"})
		}
		return utils.HandleError(c, pc.log, err)
	}
	return c.JSON(profile)
}

func (pc *ProfileController) DeleteProfile(c *fiber.Ctx) error {
	var profile models.Profile
	err := pc.db.Scopes(models.NotDeleted).First(&profile, utils.ParseUint(c.Params("id"))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
	}
	if err != nil {
		return utils.HandleError(c, pc.log, err)
	}

	profile.SoftDelete(middleware.Actor(c), time.Now().UTC())
	if err := pc.db.Save(&profile).Error; err != nil {
		return utils.HandleError(c, pc.log, err)
	}
	return c.JSON(fiber.Map{"message": "Profile deleted successfully", "id": profile.ID})
}
