package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"crewmanager/config"
	"crewmanager/middleware"
	"crewmanager/services"
	"crewmanager/utils"
)

type MessageController struct {
	db       *gorm.DB
	log      *logrus.Entry
	messages *services.MessageService
}

func NewMessageController(db *gorm.DB, log *logrus.Entry) *MessageController {
	mailer := utils.NewMailer(config.AppConfig.SMTP)
	svc := services.NewMessageService(db, log, mailer, config.AppConfig.StrictRecipients)
	return &MessageController{db: db, log: log, messages: svc}
}

func (mc *MessageController) SendMessage(c *fiber.Ctx) error {
	var req services.SendParams
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	message, err := mc.messages.Send(middleware.Actor(c), req)
	if err != nil {
		return utils.HandleError(c, mc.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

func (mc *MessageController) ReplyToMessage(c *fiber.Ctx) error {
	var req services.ReplyParams
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	message, err := mc.messages.Reply(middleware.Actor(c), utils.ParseUint(c.Params("id")), req)
	if err != nil {
		return utils.HandleError(c, mc.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetMessages lists a profile's mailbox. box selects "sent", "inbox" or the
// default unified view showing the latest message of each thread.
func (mc *MessageController) GetMessages(c *fiber.Ctx) error {
	profileID := utils.ParseUint(c.Query("profileId"))
	if profileID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "profileId parameter required"})
	}

	views, err := mc.messages.ListForProfile(profileID, c.Query("box"))
	if err != nil {
		return utils.HandleError(c, mc.log, err)
	}
	return c.JSON(views)
}

// GetMessage returns one message with its full thread and marks it read for
// the viewing recipient.
func (mc *MessageController) GetMessage(c *fiber.Ctx) error {
	profileID := utils.ParseUint(c.Query("profileId"))
	if profileID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "profileId parameter required"})
	}

	details, err := mc.messages.GetDetails(utils.ParseUint(c.Params("id")), profileID)
	if err != nil {
		return utils.HandleError(c, mc.log, err)
	}
	return c.JSON(details)
}

func (mc *MessageController) MarkMessageRead(c *fiber.Ctx) error {
	profileID := utils.ParseUint(c.Query("profileId"))
	if profileID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "profileId parameter required"})
	}

	if err := mc.messages.MarkRead(utils.ParseUint(c.Params("id")), profileID); err != nil {
		return utils.HandleError(c, mc.log, err)
	}
	return c.JSON(fiber.Map{"message": "Message marked as read"})
}

func (mc *MessageController) GetUnreadCount(c *fiber.Ctx) error {
	profileID := utils.ParseUint(c.Query("profileId"))
	if profileID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "profileId parameter required"})
	}

	count, err := mc.messages.UnreadCount(profileID)
	if err != nil {
		return utils.HandleError(c, mc.log, err)
	}
	return c.JSON(fiber.Map{"unreadCount": count})
}

// GetAvailableRecipients lists the profiles reachable from the caller's
// boats: fellow crew and boat owners, excluding the caller.
func (mc *MessageController) GetAvailableRecipients(c *fiber.Ctx) error {
	profileID := utils.ParseUint(c.Query("profileId"))
	if profileID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "profileId parameter required"})
	}

	recipients, err := mc.messages.ListAvailableRecipients(profileID)
	if err != nil {
		return utils.HandleError(c, mc.log, err)
	}
	return c.JSON(recipients)
}
