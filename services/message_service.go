package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"crewmanager/apperrors"
	"crewmanager/models"
	"crewmanager/utils"
)

// MessageService sends, threads and reads messages with per-recipient
// delivery and read tracking.
type MessageService struct {
	db     *gorm.DB
	log    *logrus.Entry
	mailer utils.Mailer

	// strict fails a send when a recipient id does not resolve; lenient
	// (the historical behavior) skips it.
	strict bool
}

func NewMessageService(db *gorm.DB, log *logrus.Entry, mailer utils.Mailer, strict bool) *MessageService {
	return &MessageService{db: db, log: log, mailer: mailer, strict: strict}
}

type SendParams struct {
	SenderProfileID     uint                  `json:"senderProfileId" validate:"required"`
	RecipientProfileIDs []uint                `json:"recipientProfileIds" validate:"required,min=1"`
	Subject             *string               `json:"subject" validate:"omitempty,max=255"`
	Body                string                `json:"body" validate:"required"`
	Channel             models.MessageChannel `json:"channel"`
	TargetEventID       *uint                 `json:"targetEventId"`
}

// Send creates a new thread: the message's root is patched to its own id
// right after insert, inside the same transaction. Recipient rows are
// created for every id that resolves to a live profile.
func (s *MessageService) Send(actor string, p SendParams) (*models.Message, error) {
	if p.Channel == "" {
		p.Channel = models.ChannelInApp
	}
	if !p.Channel.Valid() {
		return nil, apperrors.Validation("invalid channel %q", p.Channel)
	}

	var count int64
	if err := s.db.Model(&models.Profile{}).Scopes(models.NotDeleted).
		Where("id = ?", p.SenderProfileID).Count(&count).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	if count == 0 {
		return nil, apperrors.Validation("invalid sender profile id")
	}

	recipients, err := s.resolveRecipients(p.RecipientProfileIDs)
	if err != nil {
		return nil, err
	}

	message := models.Message{
		SenderProfileID: p.SenderProfileID,
		Subject:         p.Subject,
		Body:            p.Body,
		Channel:         p.Channel,
		TargetEventID:   p.TargetEventID,
	}
	message.CreatedBy = &actor

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		// Self-referential root for new threads
		message.RootMessageID = &message.ID
		if err := tx.Model(&message).Update("root_message_id", message.ID).Error; err != nil {
			return err
		}

		for _, recipient := range recipients {
			row := models.MessageRecipient{
				MessageID:          message.ID,
				RecipientProfileID: recipient.ID,
				Status:             models.DeliverySent,
				IsRead:             false,
			}
			row.CreatedBy = &actor
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if p.Channel == models.ChannelEmail {
		s.deliverEmail(&message, recipients)
	}

	s.log.WithFields(logrus.Fields{
		"message_id": message.ID,
		"sender_id":  p.SenderProfileID,
		"recipients": len(recipients),
	}).Info("message sent")
	return &message, nil
}

type ReplyParams struct {
	SenderProfileID uint                  `json:"senderProfileId" validate:"required"`
	Body            string                `json:"body" validate:"required"`
	Channel         models.MessageChannel `json:"channel"`
}

// Reply answers the parent's sender only. The reply inherits the parent's
// thread root and target event, and prefixes the subject with "Re: ".
func (s *MessageService) Reply(actor string, parentMessageID uint, p ReplyParams) (*models.Message, error) {
	if p.Channel == "" {
		p.Channel = models.ChannelInApp
	}
	if !p.Channel.Valid() {
		return nil, apperrors.Validation("invalid channel %q", p.Channel)
	}

	var parent models.Message
	if err := s.db.Scopes(models.NotDeleted).First(&parent, parentMessageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("parent message not found")
		}
		return nil, apperrors.Internal(err)
	}

	var count int64
	if err := s.db.Model(&models.Profile{}).Scopes(models.NotDeleted).
		Where("id = ?", p.SenderProfileID).Count(&count).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	if count == 0 {
		return nil, apperrors.Validation("invalid sender profile id")
	}

	parentSubject := ""
	if parent.Subject != nil {
		parentSubject = *parent.Subject
	}
	subject := "Re: " + parentSubject

	root := parent.RootID()
	reply := models.Message{
		SenderProfileID: p.SenderProfileID,
		Subject:         &subject,
		Body:            p.Body,
		Channel:         p.Channel,
		TargetEventID:   parent.TargetEventID,
		ParentMessageID: &parent.ID,
		RootMessageID:   &root,
	}
	reply.CreatedBy = &actor

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reply).Error; err != nil {
			return err
		}
		row := models.MessageRecipient{
			MessageID:          reply.ID,
			RecipientProfileID: parent.SenderProfileID,
			Status:             models.DeliverySent,
			IsRead:             false,
		}
		row.CreatedBy = &actor
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if p.Channel == models.ChannelEmail {
		var target models.Profile
		if err := s.db.Scopes(models.NotDeleted).First(&target, parent.SenderProfileID).Error; err == nil {
			s.deliverEmail(&reply, []models.Profile{target})
		}
	}

	return &reply, nil
}

// resolveRecipients loads the live profiles behind the requested ids,
// de-duplicated. In strict mode an unresolved id fails the send.
func (s *MessageService) resolveRecipients(ids []uint) ([]models.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var profiles []models.Profile
	if err := s.db.Scopes(models.NotDeleted).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	if s.strict {
		found := make(map[uint]bool, len(profiles))
		for _, p := range profiles {
			found[p.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, apperrors.Validation("recipient profile %d does not exist", id)
			}
		}
	}
	return profiles, nil
}

// deliverEmail pushes an Email-channel message out through SMTP and records
// the per-recipient outcome. Delivery problems never fail the send; they
// are captured on the recipient row.
func (s *MessageService) deliverEmail(message *models.Message, recipients []models.Profile) {
	subject := ""
	if message.Subject != nil {
		subject = *message.Subject
	}

	for _, recipient := range recipients {
		var ref string
		var sendErr error
		if s.mailer == nil {
			sendErr = fmt.Errorf("email delivery not configured")
		} else {
			ref, sendErr = s.mailer.Send(recipient.Email, recipient.Name, subject, message.Body)
		}

		updates := map[string]interface{}{"status": models.DeliveryDelivered}
		if ref != "" {
			updates["external_reference_id"] = ref
		}
		if sendErr != nil {
			updates["status"] = models.DeliveryFailed
			updates["failure_reason"] = sendErr.Error()
			s.log.WithError(sendErr).WithField("recipient_id", recipient.ID).Warn("email delivery failed")
		}

		if err := s.db.Model(&models.MessageRecipient{}).
			Where("message_id = ? AND recipient_profile_id = ?", message.ID, recipient.ID).
			Updates(updates).Error; err != nil {
			s.log.WithError(err).Warn("failed to record delivery status")
		}
	}
}

// ListForProfile returns one of the three mailbox views. "sent" and "inbox"
// list individual messages newest first; "all" collapses each thread to its
// latest message.
func (s *MessageService) ListForProfile(profileID uint, box string) ([]MessageView, error) {
	switch box {
	case "sent":
		var messages []models.Message
		if err := s.db.Scopes(models.NotDeleted).
			Preload("Sender").
			Preload("Recipients.Recipient").
			Where("sender_profile_id = ?", profileID).
			Order("created_at DESC").
			Find(&messages).Error; err != nil {
			return nil, apperrors.Internal(err)
		}
		views := make([]MessageView, 0, len(messages))
		for i := range messages {
			views = append(views, buildMessageView(&messages[i], profileID))
		}
		return views, nil

	case "inbox":
		var rows []models.MessageRecipient
		if err := s.db.Scopes(models.NotDeleted).
			Preload("Message.Sender").
			Preload("Message.Recipients.Recipient").
			Where("recipient_profile_id = ?", profileID).
			Order("created_at DESC").
			Find(&rows).Error; err != nil {
			return nil, apperrors.Internal(err)
		}
		views := make([]MessageView, 0, len(rows))
		for i := range rows {
			view := buildMessageView(&rows[i].Message, profileID)
			view.IsRead = rows[i].IsRead
			view.Type = "Received"
			views = append(views, view)
		}
		return views, nil

	default: // unified
		var messages []models.Message
		if err := s.db.Scopes(models.NotDeleted).
			Preload("Sender").
			Preload("Recipients.Recipient").
			Where("sender_profile_id = ? OR id IN (?)", profileID,
				s.db.Model(&models.MessageRecipient{}).Scopes(models.NotDeleted).
					Select("message_id").
					Where("recipient_profile_id = ?", profileID)).
			Order("created_at DESC").
			Find(&messages).Error; err != nil {
			return nil, apperrors.Internal(err)
		}

		threads := latestPerThread(messages)
		views := make([]MessageView, 0, len(threads))
		for i := range threads {
			views = append(views, buildMessageView(&threads[i], profileID))
		}
		return views, nil
	}
}

// GetDetails returns one message with its full thread, oldest first. Only
// the sender and recipients may read it; viewing as a recipient marks the
// delivery row read.
func (s *MessageService) GetDetails(messageID, profileID uint) (*MessageDetails, error) {
	var message models.Message
	err := s.db.Scopes(models.NotDeleted).
		Preload("Sender").
		Preload("Recipients.Recipient").
		First(&message, messageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("message not found")
		}
		return nil, apperrors.Internal(err)
	}

	isSender := message.SenderProfileID == profileID
	isRecipient := false
	for _, r := range message.Recipients {
		if r.RecipientProfileID == profileID {
			isRecipient = true
			break
		}
	}
	if !isSender && !isRecipient {
		return nil, apperrors.Forbidden("not a participant of this message")
	}

	if isRecipient {
		if err := s.db.Model(&models.MessageRecipient{}).
			Where("message_id = ? AND recipient_profile_id = ? AND is_read = ?", messageID, profileID, false).
			Update("is_read", true).Error; err != nil {
			s.log.WithError(err).Warn("failed to mark message read on view")
		}
	}

	root := message.RootID()
	var threadMessages []models.Message
	if err := s.db.Scopes(models.NotDeleted).
		Preload("Sender").
		Where("root_message_id = ? OR id = ?", root, root).
		Order("created_at").
		Find(&threadMessages).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	thread := make([]ThreadEntry, 0, len(threadMessages))
	for _, m := range threadMessages {
		thread = append(thread, ThreadEntry{
			ID:         m.ID,
			Body:       m.Body,
			CreatedAt:  m.CreatedAt,
			SenderID:   m.SenderProfileID,
			SenderName: m.Sender.Name,
		})
	}

	return &MessageDetails{
		ID:         message.ID,
		Subject:    message.Subject,
		Body:       message.Body,
		CreatedAt:  message.CreatedAt,
		Sender:     ProfileRef{ID: message.SenderProfileID, Name: message.Sender.Name},
		Recipients: recipientRefs(message.Recipients),
		Thread:     thread,
	}, nil
}

// MarkRead flags the recipient's delivery row read.
func (s *MessageService) MarkRead(messageID, profileID uint) error {
	var row models.MessageRecipient
	err := s.db.Scopes(models.NotDeleted).
		Where("message_id = ? AND recipient_profile_id = ?", messageID, profileID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("recipient entry not found")
		}
		return apperrors.Internal(err)
	}

	if err := s.db.Model(&row).Update("is_read", true).Error; err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// UnreadCount counts the profile's unread, non-deleted delivery rows.
func (s *MessageService) UnreadCount(profileID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.MessageRecipient{}).Scopes(models.NotDeleted).
		Where("recipient_profile_id = ? AND is_read = ?", profileID, false).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return count, nil
}

// RecipientView is one addressable profile in the compose picker.
type RecipientView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}

// ListAvailableRecipients returns every other profile sharing at least one
// boat with the given profile, where sharing means accepted crew or owner
// on both sides. De-duplicated and sorted by name.
func (s *MessageService) ListAvailableRecipients(profileID uint) ([]RecipientView, error) {
	var crewBoatIDs []uint
	if err := s.db.Model(&models.BoatCrew{}).Scopes(models.NotDeleted).
		Where("profile_id = ? AND status = ?", profileID, models.CrewStatusAccepted).
		Pluck("boat_id", &crewBoatIDs).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	var ownedBoatIDs []uint
	if err := s.db.Model(&models.Boat{}).Scopes(models.NotDeleted).
		Where("profile_id = ?", profileID).
		Pluck("id", &ownedBoatIDs).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	boatIDs := append(crewBoatIDs, ownedBoatIDs...)
	if len(boatIDs) == 0 {
		return []RecipientView{}, nil
	}

	var crewMates []models.Profile
	if err := s.db.
		Joins("JOIN boat_crews ON boat_crews.profile_id = profiles.id").
		Where("boat_crews.boat_id IN ? AND boat_crews.status = ? AND boat_crews.is_deleted = ?",
			boatIDs, models.CrewStatusAccepted, false).
		Where("profiles.is_deleted = ? AND profiles.id <> ?", false, profileID).
		Find(&crewMates).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	var owners []models.Profile
	if err := s.db.
		Joins("JOIN boats ON boats.profile_id = profiles.id").
		Where("boats.id IN ? AND boats.is_deleted = ?", boatIDs, false).
		Where("profiles.is_deleted = ? AND profiles.id <> ?", false, profileID).
		Find(&owners).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	return assembleRecipients(crewMates, owners), nil
}
