package database

import (
	"log"

	"cardiactrader/internal/models"
)

func AutoMigrate() error {
	err := DB.AutoMigrate(
		&models.GameSession{},
		&models.Round{},
		&models.Stock{},
		&models.Holding{},
		&models.Transaction{},
		&models.UnlockedTool{},
	)

	if err != nil {
		log.Printf("Failed to auto-migrate: %v", err)
		return err
	}

	log.Println("Database migration completed successfully")
	return nil
}
