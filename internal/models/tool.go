package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ToolType string

const (
	ToolTypeHint      ToolType = "hint"
	ToolTypeTimeBoost ToolType = "time_boost"
)

// UnlockedTool tracks a consumable ability earned by performance. Repeated
// unlocks increment UsesRemaining; the row is deleted when it reaches zero.
type UnlockedTool struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	GameSessionID   uuid.UUID `json:"game_session_id" gorm:"type:uuid;not null;uniqueIndex:idx_session_tool"`
	ToolType        ToolType  `json:"tool_type" gorm:"not null;uniqueIndex:idx_session_tool"`
	UnlockedAtRound int       `json:"unlocked_at_round" gorm:"not null"`
	UsesRemaining   int       `json:"uses_remaining" gorm:"not null;default:1"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (UnlockedTool) TableName() string {
	return "unlocked_tools"
}

func (ut *UnlockedTool) BeforeCreate(tx *gorm.DB) error {
	if ut.ID == uuid.Nil {
		ut.ID = uuid.New()
	}
	return nil
}
