package trading

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cardiactrader/internal/models"
)

// TransactionDAO handles database operations for trade audit records.
// Transactions are append-only; there is no update path.
type TransactionDAO struct {
	db *gorm.DB
}

// TransactionDAOInterface defines the contract for transaction data access
type TransactionDAOInterface interface {
	CreateWithTx(tx *gorm.DB, transaction *models.Transaction) error
	ListBySession(sessionID uuid.UUID, limit int) ([]models.Transaction, error)
}

// NewTransactionDAO creates a new transaction DAO instance
func NewTransactionDAO(db *gorm.DB) TransactionDAOInterface {
	return &TransactionDAO{db: db}
}

// CreateWithTx creates a new transaction record within a transaction
func (dao *TransactionDAO) CreateWithTx(tx *gorm.DB, transaction *models.Transaction) error {
	if err := tx.Create(transaction).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// ListBySession gets the trade history of a session, newest first
func (dao *TransactionDAO) ListBySession(sessionID uuid.UUID, limit int) ([]models.Transaction, error) {
	var transactions []models.Transaction
	query := dao.db.Where("game_session_id = ?", sessionID).Order("timestamp DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, nil
}
