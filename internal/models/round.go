package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RoundStatus string

const (
	RoundStatusWaiting   RoundStatus = "waiting"
	RoundStatusActive    RoundStatus = "active"
	RoundStatusCompleted RoundStatus = "completed"
	RoundStatusAbandoned RoundStatus = "abandoned"
)

// Round is one timed sub-game within a session. A round is created when it
// starts and becomes immutable once completed.
type Round struct {
	ID              uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	GameSessionID   uuid.UUID       `json:"game_session_id" gorm:"type:uuid;not null;uniqueIndex:idx_session_round"`
	RoundNumber     int             `json:"round_number" gorm:"not null;uniqueIndex:idx_session_round"`
	Status          RoundStatus     `json:"status" gorm:"not null;default:'waiting'"`
	CapitalAtStart  decimal.Decimal `json:"capital_at_start" gorm:"type:numeric(12,2);not null"`
	CapitalAtEnd    decimal.Decimal `json:"capital_at_end" gorm:"type:numeric(12,2)"`
	ProfitLoss      decimal.Decimal `json:"profit_loss" gorm:"type:numeric(12,2)"`
	DurationSeconds int             `json:"duration_seconds"`
	StartedAt       time.Time       `json:"started_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (Round) TableName() string {
	return "rounds"
}

func (r *Round) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	return nil
}
