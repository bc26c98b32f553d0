package tools

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cardiactrader/internal/models"
)

// ToolDAO handles database operations for unlocked tools
type ToolDAO struct {
	db *gorm.DB
}

// ToolDAOInterface defines the contract for unlocked-tool data access
type ToolDAOInterface interface {
	Create(tool *models.UnlockedTool) error
	Update(tool *models.UnlockedTool) error
	Delete(tool *models.UnlockedTool) error
	GetBySessionAndType(sessionID uuid.UUID, toolType models.ToolType) (*models.UnlockedTool, error)
	ListBySession(sessionID uuid.UUID) ([]models.UnlockedTool, error)
}

// NewToolDAO creates a new tool DAO instance
func NewToolDAO(db *gorm.DB) ToolDAOInterface {
	return &ToolDAO{db: db}
}

// Create creates a new unlocked-tool record
func (dao *ToolDAO) Create(tool *models.UnlockedTool) error {
	if err := dao.db.Create(tool).Error; err != nil {
		return fmt.Errorf("failed to create unlocked tool: %w", err)
	}
	return nil
}

// Update updates an existing unlocked-tool record
func (dao *ToolDAO) Update(tool *models.UnlockedTool) error {
	if err := dao.db.Save(tool).Error; err != nil {
		return fmt.Errorf("failed to update unlocked tool: %w", err)
	}
	return nil
}

// Delete deletes an unlocked-tool record
func (dao *ToolDAO) Delete(tool *models.UnlockedTool) error {
	if err := dao.db.Delete(tool).Error; err != nil {
		return fmt.Errorf("failed to delete unlocked tool: %w", err)
	}
	return nil
}

// GetBySessionAndType gets the tool record for a (session, tool type) pair, or
// gorm.ErrRecordNotFound when the tool was never unlocked.
func (dao *ToolDAO) GetBySessionAndType(sessionID uuid.UUID, toolType models.ToolType) (*models.UnlockedTool, error) {
	var tool models.UnlockedTool
	err := dao.db.Where("game_session_id = ? AND tool_type = ?", sessionID, toolType).
		First(&tool).Error
	if err != nil {
		return nil, err
	}
	return &tool, nil
}

// ListBySession gets all unlocked tools of a session
func (dao *ToolDAO) ListBySession(sessionID uuid.UUID) ([]models.UnlockedTool, error) {
	var unlocked []models.UnlockedTool
	if err := dao.db.Where("game_session_id = ?", sessionID).Find(&unlocked).Error; err != nil {
		return nil, fmt.Errorf("failed to list unlocked tools: %w", err)
	}
	return unlocked, nil
}
