package market

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cardiactrader/internal/models"
)

// StockDAO handles database operations for the stock catalog
type StockDAO struct {
	db *gorm.DB
}

// StockDAOInterface defines the contract for stock data access
type StockDAOInterface interface {
	Create(stock *models.Stock) error
	Update(stock *models.Stock) error
	GetByID(stockID uuid.UUID) (*models.Stock, error)
	GetBySymbol(symbol string) (*models.Stock, error)
	ListAll() ([]models.Stock, error)
}

// NewStockDAO creates a new stock DAO instance
func NewStockDAO(db *gorm.DB) StockDAOInterface {
	return &StockDAO{db: db}
}

// Create creates a new stock record
func (dao *StockDAO) Create(stock *models.Stock) error {
	if err := dao.db.Create(stock).Error; err != nil {
		return fmt.Errorf("failed to create stock: %w", err)
	}
	return nil
}

// Update updates an existing stock record
func (dao *StockDAO) Update(stock *models.Stock) error {
	if err := dao.db.Save(stock).Error; err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	return nil
}

// GetByID retrieves a stock by ID
func (dao *StockDAO) GetByID(stockID uuid.UUID) (*models.Stock, error) {
	var stock models.Stock
	if err := dao.db.First(&stock, "id = ?", stockID).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

// GetBySymbol retrieves a stock by its unique symbol
func (dao *StockDAO) GetBySymbol(symbol string) (*models.Stock, error) {
	var stock models.Stock
	if err := dao.db.Where("symbol = ?", symbol).First(&stock).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

// ListAll lists the whole catalog in symbol order
func (dao *StockDAO) ListAll() ([]models.Stock, error) {
	var stocks []models.Stock
	if err := dao.db.Order("symbol ASC").Find(&stocks).Error; err != nil {
		return nil, fmt.Errorf("failed to list stocks: %w", err)
	}
	return stocks, nil
}
