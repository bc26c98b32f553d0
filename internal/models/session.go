package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GameSessionStatus string
type DifficultyLevel string

const (
	GameSessionStatusActive    GameSessionStatus = "active"
	GameSessionStatusCompleted GameSessionStatus = "completed"
	GameSessionStatusAbandoned GameSessionStatus = "abandoned"

	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// Valid reports whether the difficulty is one of the known levels.
func (d DifficultyLevel) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// IsTerminal reports whether the session can no longer change state.
func (s GameSessionStatus) IsTerminal() bool {
	return s == GameSessionStatusCompleted || s == GameSessionStatusAbandoned
}

// GameSession represents one complete multi-round game attempt by a player.
// The player identifier comes from the caller's auth layer; the core never
// authenticates.
type GameSession struct {
	ID              uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	PlayerID        uuid.UUID         `json:"player_id" gorm:"type:uuid;not null;index:idx_player_status"`
	CurrentRound    int               `json:"current_round" gorm:"not null;default:1"`
	StartingCapital decimal.Decimal   `json:"starting_capital" gorm:"type:numeric(12,2);not null"`
	CurrentCapital  decimal.Decimal   `json:"current_capital" gorm:"type:numeric(12,2);not null"`
	Status          GameSessionStatus `json:"status" gorm:"not null;default:'active';index:idx_player_status"`
	Difficulty      DifficultyLevel   `json:"difficulty" gorm:"not null;default:'medium'"`
	StartedAt       time.Time         `json:"started_at"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (GameSession) TableName() string {
	return "game_sessions"
}

func (gs *GameSession) BeforeCreate(tx *gorm.DB) error {
	if gs.ID == uuid.Nil {
		gs.ID = uuid.New()
	}
	if gs.StartedAt.IsZero() {
		gs.StartedAt = time.Now()
	}
	return nil
}
