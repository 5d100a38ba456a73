package services

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"crewmanager/apperrors"
	"crewmanager/models"
)

// CrewService manages boats, crew memberships and per-member calendar
// colors.
type CrewService struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewCrewService(db *gorm.DB, log *logrus.Entry) *CrewService {
	return &CrewService{db: db, log: log}
}

type CreateBoatParams struct {
	Name          string `json:"name" validate:"required,max=200"`
	Description   string `json:"description" validate:"max=1000"`
	ProfileID     uint   `json:"profileId" validate:"required"`
	ShortName     string `json:"shortName" validate:"max=3"`
	CalendarColor string `json:"calendarColor" validate:"max=7"`
	Image         string `json:"image"`
}

// CreateBoat creates a boat and the companion crew row granting the owner
// an accepted admin membership, in one transaction.
func (s *CrewService) CreateBoat(actor string, p CreateBoatParams) (*models.Boat, error) {
	var exists int64
	if err := s.db.Model(&models.Profile{}).Scopes(models.NotDeleted).
		Where("id = ?", p.ProfileID).Count(&exists).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	if exists == 0 {
		return nil, apperrors.Validation("invalid profileId: profile does not exist")
	}

	boat := models.Boat{
		Name:          p.Name,
		Description:   p.Description,
		ProfileID:     p.ProfileID,
		ShortName:     p.ShortName,
		CalendarColor: p.CalendarColor,
		Image:         p.Image,
	}
	boat.CreatedBy = &actor

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&boat).Error; err != nil {
			return err
		}
		ownerCrew := models.BoatCrew{
			ProfileID: p.ProfileID,
			BoatID:    boat.ID,
			IsAdmin:   true,
			Status:    models.CrewStatusAccepted,
		}
		ownerCrew.CreatedBy = &actor
		return tx.Create(&ownerCrew).Error
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.log.WithFields(logrus.Fields{"boat_id": boat.ID, "owner_id": p.ProfileID}).Info("boat created")
	return &boat, nil
}

type UpdateBoatParams struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
	ProfileID   uint   `json:"profileId" validate:"required"`
	ShortName   string `json:"shortName" validate:"max=3"`
	Image       string `json:"image"`
}

func (s *CrewService) UpdateBoat(actor string, boatID uint, p UpdateBoatParams) (*models.Boat, error) {
	var boat models.Boat
	if err := s.db.Scopes(models.NotDeleted).First(&boat, boatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("boat not found")
		}
		return nil, apperrors.Internal(err)
	}

	var exists int64
	if err := s.db.Model(&models.Profile{}).Scopes(models.NotDeleted).
		Where("id = ?", p.ProfileID).Count(&exists).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	if exists == 0 {
		return nil, apperrors.Validation("invalid profileId: profile does not exist")
	}

	boat.Name = p.Name
	boat.Description = p.Description
	boat.ProfileID = p.ProfileID
	boat.ShortName = p.ShortName
	boat.Image = p.Image
	boat.Touch(actor, time.Now().UTC())

	if err := s.db.Save(&boat).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return &boat, nil
}

func (s *CrewService) DeleteBoat(actor string, boatID uint) error {
	var boat models.Boat
	if err := s.db.Scopes(models.NotDeleted).First(&boat, boatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("boat not found")
		}
		return apperrors.Internal(err)
	}

	var referenced int64
	if err := s.db.Model(&models.Event{}).Scopes(models.NotDeleted).
		Where("boat_id = ?", boatID).Count(&referenced).Error; err != nil {
		return apperrors.Internal(err)
	}
	if referenced > 0 {
		return apperrors.Conflict("boat has scheduled events and cannot be deleted")
	}

	boat.SoftDelete(actor, time.Now().UTC())
	if err := s.db.Save(&boat).Error; err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

type InviteCrewParams struct {
	ProfileID uint              `json:"profileId" validate:"required"`
	BoatID    uint              `json:"boatId" validate:"required"`
	IsAdmin   bool              `json:"isAdmin"`
	Status    models.CrewStatus `json:"status"`
}

// InviteOrRequestCrew creates a membership row, Pending by default. The
// existence check is a convenience; the partial unique index catches races.
func (s *CrewService) InviteOrRequestCrew(actor string, p InviteCrewParams) (*models.BoatCrew, error) {
	if p.Status == "" {
		p.Status = models.CrewStatusPending
	}
	if !p.Status.Valid() {
		return nil, apperrors.Validation("invalid crew status %q", p.Status)
	}

	var count int64
	if err := s.db.Model(&models.Profile{}).Scopes(models.NotDeleted).
		Where("id = ?", p.ProfileID).Count(&count).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	if count == 0 {
		return nil, apperrors.NotFound("profile not found")
	}

	if err := s.db.Model(&models.Boat{}).Scopes(models.NotDeleted).
		Where("id = ?", p.BoatID).Count(&count).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	if count == 0 {
		return nil, apperrors.NotFound("boat not found")
	}

	if err := s.db.Model(&models.BoatCrew{}).Scopes(models.NotDeleted).
		Where("profile_id = ? AND boat_id = ?", p.ProfileID, p.BoatID).
		Count(&count).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	if count > 0 {
		return nil, apperrors.Conflict("profile is already crew on this boat")
	}

	crew := models.BoatCrew{
		ProfileID: p.ProfileID,
		BoatID:    p.BoatID,
		IsAdmin:   p.IsAdmin,
		Status:    p.Status,
	}
	crew.CreatedBy = &actor

	if err := s.db.Create(&crew).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("profile is already crew on this boat")
		}
		return nil, apperrors.Internal(err)
	}
	return &crew, nil
}

type UpdateCrewParams struct {
	Status  *models.CrewStatus `json:"status"`
	IsAdmin *bool              `json:"isAdmin"`
	BoatID  *uint              `json:"boatId"`
}

func (s *CrewService) UpdateCrew(actor string, crewID uint, p UpdateCrewParams) (*models.BoatCrew, error) {
	var crew models.BoatCrew
	if err := s.db.Scopes(models.NotDeleted).First(&crew, crewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("boat crew assignment not found")
		}
		return nil, apperrors.Internal(err)
	}

	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, apperrors.Validation("invalid crew status %q", *p.Status)
		}
		crew.Status = *p.Status
	}
	if p.IsAdmin != nil {
		crew.IsAdmin = *p.IsAdmin
	}
	if p.BoatID != nil {
		var count int64
		if err := s.db.Model(&models.Boat{}).Scopes(models.NotDeleted).
			Where("id = ?", *p.BoatID).Count(&count).Error; err != nil {
			return nil, apperrors.Internal(err)
		}
		if count == 0 {
			return nil, apperrors.NotFound("boat not found")
		}
		crew.BoatID = *p.BoatID
	}

	crew.Touch(actor, time.Now().UTC())
	if err := s.db.Save(&crew).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("profile is already crew on this boat")
		}
		return nil, apperrors.Internal(err)
	}
	return &crew, nil
}

// RemoveCrew soft-deletes the membership; the boat and profile are
// untouched.
func (s *CrewService) RemoveCrew(actor string, crewID uint) error {
	var crew models.BoatCrew
	if err := s.db.Scopes(models.NotDeleted).First(&crew, crewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("boat crew assignment not found")
		}
		return apperrors.Internal(err)
	}

	crew.SoftDelete(actor, time.Now().UTC())
	if err := s.db.Save(&crew).Error; err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// ListBoatsForProfile returns the union of boats the profile owns and boats
// where it holds an accepted membership, with the calendar color resolved
// for that viewer.
func (s *CrewService) ListBoatsForProfile(profileID uint) ([]BoatView, error) {
	var owned []models.Boat
	if err := s.db.Scopes(models.NotDeleted).
		Where("profile_id = ?", profileID).
		Order("name").
		Find(&owned).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	var crewed []models.Boat
	if err := s.db.
		Joins("JOIN boat_crews ON boat_crews.boat_id = boats.id").
		Where("boat_crews.profile_id = ? AND boat_crews.status = ? AND boat_crews.is_deleted = ?",
			profileID, models.CrewStatusAccepted, false).
		Where("boats.is_deleted = ?", false).
		Order("boats.name").
		Find(&crewed).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	overrides, err := s.colorOverrides(profileID)
	if err != nil {
		return nil, err
	}

	return AssembleBoatViews(profileID, owned, crewed, overrides), nil
}

// colorOverrides maps boat id to the profile's non-null color override.
func (s *CrewService) colorOverrides(profileID uint) (map[uint]string, error) {
	var rows []models.BoatCrew
	if err := s.db.Scopes(models.NotDeleted).
		Where("profile_id = ? AND calendar_color IS NOT NULL", profileID).
		Find(&rows).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	overrides := make(map[uint]string, len(rows))
	for _, row := range rows {
		if row.CalendarColor != nil {
			overrides[row.BoatID] = *row.CalendarColor
		}
	}
	return overrides, nil
}

// ListPendingRequests returns Pending memberships on boats where the given
// profile is an accepted admin, newest first. An admin of no boats gets an
// empty list, not an error.
func (s *CrewService) ListPendingRequests(adminProfileID uint) ([]models.BoatCrew, error) {
	var boatIDs []uint
	if err := s.db.Model(&models.BoatCrew{}).Scopes(models.NotDeleted).
		Where("profile_id = ? AND is_admin = ? AND status = ?", adminProfileID, true, models.CrewStatusAccepted).
		Pluck("boat_id", &boatIDs).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	if len(boatIDs) == 0 {
		return []models.BoatCrew{}, nil
	}

	var pending []models.BoatCrew
	if err := s.db.Scopes(models.NotDeleted).
		Preload("Profile").
		Preload("Boat").
		Where("boat_id IN ? AND status = ?", boatIDs, models.CrewStatusPending).
		Order("created_at DESC").
		Find(&pending).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return pending, nil
}

// SetCrewColor records a calendar color for the acting profile on a boat:
// the boat default when acting as owner, the membership override otherwise.
func (s *CrewService) SetCrewColor(actor string, boatID, actingProfileID uint, color string) error {
	if len(color) > 7 {
		return apperrors.Validation("color must be at most 7 characters")
	}

	var boat models.Boat
	if err := s.db.Scopes(models.NotDeleted).First(&boat, boatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("boat not found")
		}
		return apperrors.Internal(err)
	}

	now := time.Now().UTC()

	if boat.ProfileID == actingProfileID {
		boat.CalendarColor = color
		boat.Touch(actor, now)
		if err := s.db.Save(&boat).Error; err != nil {
			return apperrors.Internal(err)
		}
		return nil
	}

	var crew models.BoatCrew
	err := s.db.Scopes(models.NotDeleted).
		Where("boat_id = ? AND profile_id = ?", boatID, actingProfileID).
		First(&crew).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("profile is not associated with this boat")
		}
		return apperrors.Internal(err)
	}

	crew.CalendarColor = &color
	crew.Touch(actor, now)
	if err := s.db.Save(&crew).Error; err != nil {
		return apperrors.Internal(err)
	}
	return nil
}
