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

// Auth0PushController receives user records pushed from the identity
// provider over the API-key protected webhook surface.
type Auth0PushController struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewAuth0PushController(db *gorm.DB, log *logrus.Entry) *Auth0PushController {
	return &Auth0PushController{db: db, log: log}
}

type auth0IdentityPayload struct {
	Provider   string `json:"provider" validate:"required,max=100"`
	IsSocial   bool   `json:"isSocial"`
	Connection string `json:"connection" validate:"required,max=200"`
	UserID     string `json:"user_id" validate:"required,max=100"`
}

type auth0UserPayload struct {
	Auth0UserID   string                 `json:"user_id" validate:"required,max=100"`
	Email         string                 `json:"email" validate:"required,email"`
	EmailVerified bool                   `json:"email_verified"`
	Username      string                 `json:"username" validate:"max=100"`
	PhoneNumber   string                 `json:"phone_number" validate:"max=20"`
	PhoneVerified bool                   `json:"phone_verified"`
	Name          string                 `json:"name" validate:"max=200"`
	Nickname      string                 `json:"nickname" validate:"max=200"`
	GivenName     string                 `json:"given_name" validate:"max=100"`
	FamilyName    string                 `json:"family_name" validate:"max=100"`
	Picture       string                 `json:"picture" validate:"max=500"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	LastLogin     *time.Time             `json:"last_login"`
	LastIP        string                 `json:"last_ip" validate:"max=45"`
	LoginsCount   int                    `json:"logins_count"`
	Blocked       bool                   `json:"blocked"`
	Identities    []auth0IdentityPayload `json:"identities" validate:"dive"`
}

func (ac *Auth0PushController) apply(user *models.Auth0User, p auth0UserPayload) {
	user.Auth0UserID = p.Auth0UserID
	user.Email = p.Email
	user.EmailVerified = p.EmailVerified
	user.Username = p.Username
	user.PhoneNumber = p.PhoneNumber
	user.PhoneVerified = p.PhoneVerified
	user.Name = p.Name
	user.Nickname = p.Nickname
	user.GivenName = p.GivenName
	user.FamilyName = p.FamilyName
	user.Picture = p.Picture
	user.Auth0CreatedAt = p.CreatedAt
	user.Auth0UpdatedAt = p.UpdatedAt
	user.LastLogin = p.LastLogin
	user.LastIP = p.LastIP
	user.LoginsCount = p.LoginsCount
	user.Blocked = p.Blocked
}

// linkProfile resolves the club profile with the same email, if any.
func (ac *Auth0PushController) linkProfile(user *models.Auth0User) error {
	var profile models.Profile
	err := ac.db.Scopes(models.NotDeleted).
		Where("LOWER(email) = LOWER(?)", user.Email).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user.ProfileID = nil
		return nil
	}
	if err != nil {
		return err
	}
	user.ProfileID = &profile.ID
	return nil
}

// UpsertUser creates or refreshes the mirrored record for one pushed user.
// Identities are replaced wholesale on every push.
func (ac *Auth0PushController) UpsertUser(c *fiber.Ctx) error {
	var req auth0UserPayload
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	actor := middleware.Actor(c)
	created := false

	var user models.Auth0User
	err := ac.db.Scopes(models.NotDeleted).
		Where("auth0_user_id = ?", req.Auth0UserID).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		created = true
		user = models.Auth0User{}
		user.CreatedBy = &actor
	} else if err != nil {
		return utils.HandleError(c, ac.log, err)
	}

	ac.apply(&user, req)
	if err := ac.linkProfile(&user); err != nil {
		return utils.HandleError(c, ac.log, err)
	}
	if !created {
		user.Touch(actor, time.Now().UTC())
	}

	txErr := ac.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		if err := tx.Where("auth0_user_record_id = ?", user.ID).
			Delete(&models.Auth0Identity{}).Error; err != nil {
			return err
		}
		for _, identity := range req.Identities {
			row := models.Auth0Identity{
				Auth0UserRecordID: user.ID,
				Provider:          identity.Provider,
				IsSocial:          identity.IsSocial,
				Connection:        identity.Connection,
				UserID:            identity.UserID,
			}
			row.CreatedBy = &actor
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return utils.HandleError(c, ac.log, txErr)
	}

	ac.log.WithFields(logrus.Fields{
		"auth0UserId": user.Auth0UserID,
		"created":     created,
	}).Info("Auth0 user pushed")

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(user)
}

func (ac *Auth0PushController) GetUser(c *fiber.Ctx) error {
	var user models.Auth0User
	err := ac.db.Scopes(models.NotDeleted).
		Preload("Identities").
		Preload("Profile").
		Where("auth0_user_id = ?", c.Params("auth0UserId")).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Auth0 user not found"})
	}
	if err != nil {
		return utils.HandleError(c, ac.log, err)
	}
	return c.JSON(user)
}

func (ac *Auth0PushController) DeleteUser(c *fiber.Ctx) error {
	var user models.Auth0User
	err := ac.db.Scopes(models.NotDeleted).
		Where("auth0_user_id = ?", c.Params("auth0UserId")).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Auth0 user not found"})
	}
	if err != nil {
		return utils.HandleError(c, ac.log, err)
	}

	user.SoftDelete(middleware.Actor(c), time.Now().UTC())
	if err := ac.db.Save(&user).Error; err != nil {
		return utils.HandleError(c, ac.log, err)
	}
	return c.JSON(fiber.Map{"message": "Auth0 user deleted successfully", "id": user.ID})
}
