package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionTypeBuy  TransactionType = "buy"
	TransactionTypeSell TransactionType = "sell"
)

// Holding is a player's current position in one stock within one session.
// AveragePrice is the shares-weighted cost basis, recomputed on every buy and
// left untouched on sell. A holding at zero shares is deleted.
type Holding struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	GameSessionID uuid.UUID       `json:"game_session_id" gorm:"type:uuid;not null;uniqueIndex:idx_session_stock"`
	StockID       uuid.UUID       `json:"stock_id" gorm:"type:uuid;not null;uniqueIndex:idx_session_stock"`
	Shares        int             `json:"shares" gorm:"not null"`
	AveragePrice  decimal.Decimal `json:"average_price" gorm:"type:numeric(12,2);not null"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Holding) TableName() string {
	return "holdings"
}

func (h *Holding) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// Transaction is an immutable audit record of one executed trade.
type Transaction struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	GameSessionID uuid.UUID       `json:"game_session_id" gorm:"type:uuid;not null;index"`
	StockID       uuid.UUID       `json:"stock_id" gorm:"type:uuid;not null;index"`
	Type          TransactionType `json:"type" gorm:"not null"`
	Shares        int             `json:"shares" gorm:"not null"`
	PricePerShare decimal.Decimal `json:"price_per_share" gorm:"type:numeric(12,2);not null"`
	TotalValue    decimal.Decimal `json:"total_value" gorm:"type:numeric(12,2);not null"`
	Timestamp     time.Time       `json:"timestamp" gorm:"not null"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}
	return nil
}
