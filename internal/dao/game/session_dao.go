package game

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cardiactrader/internal/models"
)

// SessionDAO handles database operations for game sessions
type SessionDAO struct {
	db *gorm.DB
}

// SessionDAOInterface defines the contract for game session data access
type SessionDAOInterface interface {
	Create(session *models.GameSession) error
	Update(session *models.GameSession) error
	GetByID(sessionID uuid.UUID) (*models.GameSession, error)
	GetActiveByPlayer(playerID uuid.UUID) ([]models.GameSession, error)
	GetLatestActiveByPlayer(playerID uuid.UUID) (*models.GameSession, error)
	UpdateWithTx(tx *gorm.DB, session *models.GameSession) error
}

// NewSessionDAO creates a new session DAO instance
func NewSessionDAO(db *gorm.DB) SessionDAOInterface {
	return &SessionDAO{db: db}
}

// Create creates a new game session record
func (dao *SessionDAO) Create(session *models.GameSession) error {
	if err := dao.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create game session: %w", err)
	}
	return nil
}

// Update updates an existing game session record
func (dao *SessionDAO) Update(session *models.GameSession) error {
	if err := dao.db.Save(session).Error; err != nil {
		return fmt.Errorf("failed to update game session: %w", err)
	}
	return nil
}

// GetByID retrieves a game session by ID
func (dao *SessionDAO) GetByID(sessionID uuid.UUID) (*models.GameSession, error) {
	var session models.GameSession
	if err := dao.db.First(&session, "id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// GetActiveByPlayer gets all active sessions for a player
func (dao *SessionDAO) GetActiveByPlayer(playerID uuid.UUID) ([]models.GameSession, error) {
	var sessions []models.GameSession
	err := dao.db.Where("player_id = ? AND status = ?", playerID, models.GameSessionStatusActive).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get active sessions: %w", err)
	}
	return sessions, nil
}

// GetLatestActiveByPlayer gets the most recently started active session for a
// player, or gorm.ErrRecordNotFound when none exists.
func (dao *SessionDAO) GetLatestActiveByPlayer(playerID uuid.UUID) (*models.GameSession, error) {
	var session models.GameSession
	err := dao.db.Where("player_id = ? AND status = ?", playerID, models.GameSessionStatusActive).
		Order("started_at DESC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateWithTx updates a game session record within a transaction
func (dao *SessionDAO) UpdateWithTx(tx *gorm.DB, session *models.GameSession) error {
	if err := tx.Save(session).Error; err != nil {
		return fmt.Errorf("failed to update game session: %w", err)
	}
	return nil
}
