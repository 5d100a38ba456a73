package models

import "gorm.io/gorm"

// Migrate creates or updates the schema for all entities.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Profile{},
		&Boat{},
		&BoatCrew{},
		&EventType{},
		&Event{},
		&CrewEvent{},
		&Message{},
		&MessageRecipient{},
		&Auth0User{},
		&Auth0Identity{},
	)
}

// SeedGlobalEventTypes inserts the system-wide event types (ProfileID nil,
// not deletable) if they are missing.
func SeedGlobalEventTypes(db *gorm.DB) error {
	names := []string{"Race", "Cruise", "Training", "Maintenance", "Social"}
	for _, name := range names {
		et := EventType{Name: name}
		if err := db.FirstOrCreate(&et, "name = ? AND profile_id IS NULL", name).Error; err != nil {
			return err
		}
	}
	return nil
}
