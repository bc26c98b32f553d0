package game

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cardiactrader/internal/models"
)

// RoundDAO handles database operations for rounds
type RoundDAO struct {
	db *gorm.DB
}

// RoundDAOInterface defines the contract for round data access
type RoundDAOInterface interface {
	Create(round *models.Round) error
	Update(round *models.Round) error
	GetBySessionAndNumber(sessionID uuid.UUID, roundNumber int) (*models.Round, error)
	GetActiveBySession(sessionID uuid.UUID) (*models.Round, error)
	ListBySession(sessionID uuid.UUID) ([]models.Round, error)
	UpdateWithTx(tx *gorm.DB, round *models.Round) error
}

// NewRoundDAO creates a new round DAO instance
func NewRoundDAO(db *gorm.DB) RoundDAOInterface {
	return &RoundDAO{db: db}
}

// Create creates a new round record
func (dao *RoundDAO) Create(round *models.Round) error {
	if err := dao.db.Create(round).Error; err != nil {
		return fmt.Errorf("failed to create round: %w", err)
	}
	return nil
}

// Update updates an existing round record
func (dao *RoundDAO) Update(round *models.Round) error {
	if err := dao.db.Save(round).Error; err != nil {
		return fmt.Errorf("failed to update round: %w", err)
	}
	return nil
}

// GetBySessionAndNumber retrieves one round by its session and round number
func (dao *RoundDAO) GetBySessionAndNumber(sessionID uuid.UUID, roundNumber int) (*models.Round, error) {
	var round models.Round
	err := dao.db.Where("game_session_id = ? AND round_number = ?", sessionID, roundNumber).
		First(&round).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// GetActiveBySession retrieves the single active round of a session, or
// gorm.ErrRecordNotFound when no round is active.
func (dao *RoundDAO) GetActiveBySession(sessionID uuid.UUID) (*models.Round, error) {
	var round models.Round
	err := dao.db.Where("game_session_id = ? AND status = ?", sessionID, models.RoundStatusActive).
		First(&round).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// ListBySession lists all rounds of a session in round-number order
func (dao *RoundDAO) ListBySession(sessionID uuid.UUID) ([]models.Round, error) {
	var rounds []models.Round
	err := dao.db.Where("game_session_id = ?", sessionID).
		Order("round_number ASC").
		Find(&rounds).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	return rounds, nil
}

// UpdateWithTx updates a round record within a transaction
func (dao *RoundDAO) UpdateWithTx(tx *gorm.DB, round *models.Round) error {
	if err := tx.Save(round).Error; err != nil {
		return fmt.Errorf("failed to update round: %w", err)
	}
	return nil
}
