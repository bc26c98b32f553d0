package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cardiactrader/internal/apperrors"
	gameDAO "cardiactrader/internal/dao/game"
	marketDAO "cardiactrader/internal/dao/market"
	tradingDAO "cardiactrader/internal/dao/trading"
	marketEngine "cardiactrader/internal/engines/market"
	tradingEngine "cardiactrader/internal/engines/trading"
	"cardiactrader/internal/models"
)

// HoldingView is one portfolio line with its profit/loss against cost basis.
type HoldingView struct {
	StockID              uuid.UUID       `json:"stock_id"`
	Symbol               string          `json:"symbol"`
	CompanyName          string          `json:"company_name"`
	Shares               int             `json:"shares"`
	AveragePrice         decimal.Decimal `json:"average_price"`
	CurrentPrice         decimal.Decimal `json:"current_price"`
	TotalValue           decimal.Decimal `json:"total_value"`
	ProfitLoss           decimal.Decimal `json:"profit_loss"`
	ProfitLossPercentage decimal.Decimal `json:"profit_loss_percentage"`
}

// Portfolio is the full valuation of a session: cash plus holdings at current
// prices. TotalPortfolioValue is the figure round completion settles against.
type Portfolio struct {
	Cash                decimal.Decimal `json:"cash"`
	TotalStockValue     decimal.Decimal `json:"total_stock_value"`
	TotalPortfolioValue decimal.Decimal `json:"total_portfolio_value"`
	Holdings            []HoldingView   `json:"holdings"`
}

// TradingService is the ledger surface: executes orders through the trade
// engine under the session lock and values portfolios.
type TradingService struct {
	sessionDAO     gameDAO.SessionDAOInterface
	stockDAO       marketDAO.StockDAOInterface
	holdingDAO     tradingDAO.HoldingDAOInterface
	transactionDAO tradingDAO.TransactionDAOInterface
	engine         tradingEngine.TradeEngineInterface
	pricing        *marketEngine.PricingEngine
	locks          *SessionLocks
}

// NewTradingService creates a new trading service
func NewTradingService(
	sessionDAO gameDAO.SessionDAOInterface,
	stockDAO marketDAO.StockDAOInterface,
	holdingDAO tradingDAO.HoldingDAOInterface,
	transactionDAO tradingDAO.TransactionDAOInterface,
	engine tradingEngine.TradeEngineInterface,
	pricing *marketEngine.PricingEngine,
	locks *SessionLocks,
) *TradingService {
	return &TradingService{
		sessionDAO:     sessionDAO,
		stockDAO:       stockDAO,
		holdingDAO:     holdingDAO,
		transactionDAO: transactionDAO,
		engine:         engine,
		pricing:        pricing,
		locks:          locks,
	}
}

// Buy executes a buy order at the current market price.
func (ts *TradingService) Buy(sessionID, stockID uuid.UUID, shares int) (*tradingEngine.TradeReceipt, error) {
	unlock := ts.locks.Lock(sessionID)
	defer unlock()
	return ts.engine.ExecuteBuy(sessionID, stockID, shares)
}

// Sell executes a sell order at the current market price.
func (ts *TradingService) Sell(sessionID, stockID uuid.UUID, shares int) (*tradingEngine.TradeReceipt, error) {
	unlock := ts.locks.Lock(sessionID)
	defer unlock()
	return ts.engine.ExecuteSell(sessionID, stockID, shares)
}

// GetTransactions returns the session's trade history, newest first.
func (ts *TradingService) GetTransactions(sessionID uuid.UUID, limit int) ([]models.Transaction, error) {
	if _, err := ts.loadSession(sessionID); err != nil {
		return nil, err
	}
	return ts.transactionDAO.ListBySession(sessionID, limit)
}

// GetPortfolio values the session: cash plus every holding at its current
// market price. A stock whose market price is temporarily unset is valued at
// its true price instead of erroring.
func (ts *TradingService) GetPortfolio(sessionID uuid.UUID) (*Portfolio, error) {
	session, err := ts.loadSession(sessionID)
	if err != nil {
		return nil, err
	}

	holdings, err := ts.holdingDAO.ListBySession(sessionID)
	if err != nil {
		return nil, err
	}

	cash := session.CurrentCapital
	totalStockValue := decimal.Zero
	views := make([]HoldingView, 0, len(holdings))

	for i := range holdings {
		holding := &holdings[i]

		stock, err := ts.stockDAO.GetByID(holding.StockID)
		if err != nil {
			return nil, fmt.Errorf("failed to load stock for holding: %w", err)
		}

		currentPrice := ts.currentPrice(stock)
		sharesDec := decimal.NewFromInt(int64(holding.Shares))

		totalValue := currentPrice.Mul(sharesDec).Round(2)
		costBasis := holding.AveragePrice.Mul(sharesDec).Round(2)
		profitLoss := totalValue.Sub(costBasis)

		profitLossPct := decimal.Zero
		if costBasis.IsPositive() {
			profitLossPct = profitLoss.DivRound(costBasis, 4).Mul(decimal.NewFromInt(100))
		}

		views = append(views, HoldingView{
			StockID:              stock.ID,
			Symbol:               stock.Symbol,
			CompanyName:          stock.CompanyName,
			Shares:               holding.Shares,
			AveragePrice:         holding.AveragePrice,
			CurrentPrice:         currentPrice,
			TotalValue:           totalValue,
			ProfitLoss:           profitLoss,
			ProfitLossPercentage: profitLossPct,
		})
		totalStockValue = totalStockValue.Add(totalValue)
	}

	return &Portfolio{
		Cash:                cash,
		TotalStockValue:     totalStockValue,
		TotalPortfolioValue: cash.Add(totalStockValue),
		Holdings:            views,
	}, nil
}

// currentPrice is the market price when set, the true-value calculation when
// only the hidden count is known, and zero otherwise.
func (ts *TradingService) currentPrice(stock *models.Stock) decimal.Decimal {
	if stock.MarketPrice != nil {
		return *stock.MarketPrice
	}
	if stock.HiddenCount != nil {
		return ts.pricing.TruePrice(*stock.HiddenCount, stock.Sector)
	}
	return decimal.Zero
}

func (ts *TradingService) loadSession(sessionID uuid.UUID) (*models.GameSession, error) {
	session, err := ts.sessionDAO.GetByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}
