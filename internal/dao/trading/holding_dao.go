package trading

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cardiactrader/internal/models"
)

// HoldingDAO handles database operations for holdings
type HoldingDAO struct {
	db *gorm.DB
}

// HoldingDAOInterface defines the contract for holding data access
type HoldingDAOInterface interface {
	GetBySessionAndStock(sessionID, stockID uuid.UUID) (*models.Holding, error)
	ListBySession(sessionID uuid.UUID) ([]models.Holding, error)
	CreateWithTx(tx *gorm.DB, holding *models.Holding) error
	UpdateWithTx(tx *gorm.DB, holding *models.Holding) error
	DeleteWithTx(tx *gorm.DB, holding *models.Holding) error
	GetBySessionAndStockWithTx(tx *gorm.DB, sessionID, stockID uuid.UUID) (*models.Holding, error)
}

// NewHoldingDAO creates a new holding DAO instance
func NewHoldingDAO(db *gorm.DB) HoldingDAOInterface {
	return &HoldingDAO{db: db}
}

// GetBySessionAndStock gets the holding for a (session, stock) pair, or
// gorm.ErrRecordNotFound when the player holds no shares.
func (dao *HoldingDAO) GetBySessionAndStock(sessionID, stockID uuid.UUID) (*models.Holding, error) {
	return dao.GetBySessionAndStockWithTx(dao.db, sessionID, stockID)
}

// ListBySession gets all holdings of a session
func (dao *HoldingDAO) ListBySession(sessionID uuid.UUID) ([]models.Holding, error) {
	var holdings []models.Holding
	if err := dao.db.Where("game_session_id = ?", sessionID).Find(&holdings).Error; err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	return holdings, nil
}

// CreateWithTx creates a new holding record within a transaction
func (dao *HoldingDAO) CreateWithTx(tx *gorm.DB, holding *models.Holding) error {
	if err := tx.Create(holding).Error; err != nil {
		return fmt.Errorf("failed to create holding: %w", err)
	}
	return nil
}

// UpdateWithTx updates an existing holding record within a transaction
func (dao *HoldingDAO) UpdateWithTx(tx *gorm.DB, holding *models.Holding) error {
	if err := tx.Save(holding).Error; err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}
	return nil
}

// DeleteWithTx deletes a holding record within a transaction
func (dao *HoldingDAO) DeleteWithTx(tx *gorm.DB, holding *models.Holding) error {
	if err := tx.Delete(holding).Error; err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	return nil
}

// GetBySessionAndStockWithTx gets a holding within a transaction
func (dao *HoldingDAO) GetBySessionAndStockWithTx(tx *gorm.DB, sessionID, stockID uuid.UUID) (*models.Holding, error) {
	var holding models.Holding
	err := tx.Where("game_session_id = ? AND stock_id = ?", sessionID, stockID).
		First(&holding).Error
	if err != nil {
		return nil, err
	}
	return &holding, nil
}
