package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StockSector string

const (
	SectorTech    StockSector = "tech"
	SectorMedical StockSector = "medical"
	SectorFinance StockSector = "finance"
)

// Multiplier returns the sector price multiplier applied on top of the
// hidden-count valuation. Finance is the base sector.
func (s StockSector) Multiplier() decimal.Decimal {
	switch s {
	case SectorTech:
		return decimal.NewFromFloat(1.5)
	case SectorMedical:
		return decimal.NewFromFloat(1.3)
	default:
		return decimal.NewFromInt(1)
	}
}

// Stock is a catalog entry. HiddenCount and BasePrice are the ground truth
// derived from the puzzle oracle and must not be exposed to the player until
// the round-end reveal; MarketPrice is the noisy observable price.
type Stock struct {
	ID          uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	Symbol      string           `json:"symbol" gorm:"uniqueIndex;not null;size:10"`
	CompanyName string           `json:"company_name" gorm:"not null;size:100"`
	Sector      StockSector      `json:"sector" gorm:"not null"`
	ImageData   string           `json:"image_data" gorm:"type:text"`
	HiddenCount *int             `json:"-" gorm:"column:hidden_count"`
	BasePrice   *decimal.Decimal `json:"-" gorm:"type:numeric(12,2)"`
	MarketPrice *decimal.Decimal `json:"market_price,omitempty" gorm:"type:numeric(12,2)"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (Stock) TableName() string {
	return "stocks"
}

func (s *Stock) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
