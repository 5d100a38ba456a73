package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	controller "crewmanager/controllers"
	"crewmanager/middleware"
)

// SetupRoutes wires the HTTP surface. Resource routes sit behind the bearer
// token check; the identity-push webhook sits behind the API key and its
// rate limiter.
func SetupRoutes(app *fiber.App, db *gorm.DB, log *logrus.Logger) {
	profileController := controller.NewProfileController(db, log.WithField("controller", "profile"))
	boatController := controller.NewBoatController(db, log.WithField("controller", "boat"))
	boatCrewController := controller.NewBoatCrewController(db, log.WithField("controller", "boatcrew"))
	eventController := controller.NewEventController(db, log.WithField("controller", "event"))
	eventTypeController := controller.NewEventTypeController(db, log.WithField("controller", "eventtype"))
	crewEventController := controller.NewCrewEventController(db, log.WithField("controller", "crewevent"))
	messageController := controller.NewMessageController(db, log.WithField("controller", "message"))
	auth0PushController := controller.NewAuth0PushController(db, log.WithField("controller", "auth0push"))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "time": time.Now().UTC()})
	})

	api := app.Group("/api", middleware.Protected())

	profiles := api.Group("/profiles")
	profiles.Get("/", profileController.GetProfiles)
	profiles.Get("/search", profileController.SearchProfiles)
	profiles.Get("/search-all", profileController.SearchAllProfiles)
	profiles.Get("/by-email", profileController.GetProfileByEmail)
	profiles.Get("/:id", profileController.GetProfile)
	profiles.Post("/", profileController.CreateProfile)
	profiles.Put("/:id", profileController.UpdateProfile)
	profiles.Delete("/:id", profileController.DeleteProfile)

	boats := api.Group("/boats")
	boats.Get("/", boatController.GetBoats)
	boats.Get("/search", boatController.SearchBoats)
	boats.Get("/search-all", boatController.SearchAllBoats)
	boats.Get("/by-profile/:profileId", boatController.GetBoatsByProfile)
	boats.Get("/:id", boatController.GetBoat)
	boats.Post("/", boatController.CreateBoat)
	boats.Put("/:id", boatController.UpdateBoat)
	boats.Put("/:id/crew-color", boatController.SetCrewColor)
	boats.Delete("/:id", boatController.DeleteBoat)

	boatCrews := api.Group("/boatcrews")
	boatCrews.Get("/", boatCrewController.GetBoatCrews)
	boatCrews.Get("/pending-requests", boatCrewController.GetPendingRequests)
	boatCrews.Get("/by-boat/:boatId", boatCrewController.GetCrewByBoat)
	boatCrews.Get("/by-boat/:boatId/admins", boatCrewController.GetAdminsByBoat)
	boatCrews.Get("/by-profile/:profileId", boatCrewController.GetCrewByProfile)
	boatCrews.Get("/:id", boatCrewController.GetBoatCrew)
	boatCrews.Post("/", boatCrewController.CreateBoatCrew)
	boatCrews.Put("/:id", boatCrewController.UpdateBoatCrew)
	boatCrews.Delete("/:id", boatCrewController.DeleteBoatCrew)

	events := api.Group("/events")
	events.Get("/", eventController.GetEvents)
	events.Get("/upcoming", eventController.GetUpcomingEvents)
	events.Get("/my-events", eventController.GetMyEvents)
	events.Get("/search", eventController.SearchEvents)
	events.Get("/by-boat/:boatId", eventController.GetEventsByBoat)
	events.Get("/:id", eventController.GetEvent)
	events.Post("/", eventController.CreateEvent)
	events.Put("/:id", eventController.UpdateEvent)
	events.Delete("/:id", eventController.DeleteEvent)

	eventTypes := api.Group("/eventtypes")
	eventTypes.Get("/", eventTypeController.GetEventTypes)
	eventTypes.Get("/by-profile/:profileId", eventTypeController.GetEventTypesByProfile)
	eventTypes.Get("/:id", eventTypeController.GetEventType)
	eventTypes.Post("/", eventTypeController.CreateEventType)
	eventTypes.Delete("/:id", eventTypeController.DeleteEventType)

	crewEvents := api.Group("/crewevents")
	crewEvents.Get("/by-event/:eventId", crewEventController.GetCrewEventsByEvent)
	crewEvents.Get("/by-profile/:profileId", crewEventController.GetCrewEventsByProfile)
	crewEvents.Get("/:id", crewEventController.GetCrewEvent)
	crewEvents.Post("/", crewEventController.CreateCrewEvent)
	crewEvents.Put("/:id", crewEventController.UpdateCrewEvent)
	crewEvents.Delete("/:id", crewEventController.DeleteCrewEvent)

	messages := api.Group("/messages")
	messages.Get("/", messageController.GetMessages)
	messages.Get("/unread-count", messageController.GetUnreadCount)
	messages.Get("/recipients", messageController.GetAvailableRecipients)
	messages.Get("/:id", messageController.GetMessage)
	messages.Post("/", messageController.SendMessage)
	messages.Post("/:id/reply", messageController.ReplyToMessage)
	messages.Put("/:id/read", messageController.MarkMessageRead)

	auth0 := app.Group("/api/auth0push", middleware.APIKeyAuth(), middleware.WebhookRateLimiter())
	auth0.Post("/users", auth0PushController.UpsertUser)
	auth0.Get("/users/:auth0UserId", auth0PushController.GetUser)
	auth0.Put("/users", auth0PushController.UpsertUser)
	auth0.Delete("/users/:auth0UserId", auth0PushController.DeleteUser)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Route not found"})
	})
}
