package trading

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cardiactrader/internal/apperrors"
	gameDAO "cardiactrader/internal/dao/game"
	marketDAO "cardiactrader/internal/dao/market"
	tradingDAO "cardiactrader/internal/dao/trading"
	"cardiactrader/internal/models"
)

// TxRunner is the transaction boundary the engine needs; *gorm.DB satisfies it.
type TxRunner interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// TradeReceipt is returned to the caller after a successful buy or sell.
type TradeReceipt struct {
	TransactionID uuid.UUID              `json:"transaction_id"`
	StockID       uuid.UUID              `json:"stock_id"`
	StockSymbol   string                 `json:"stock_symbol"`
	Type          models.TransactionType `json:"type"`
	Shares        int                    `json:"shares"`
	PricePerShare decimal.Decimal        `json:"price_per_share"`
	TotalValue    decimal.Decimal        `json:"total_value"`
	RemainingCash decimal.Decimal        `json:"remaining_cash"`
	Timestamp     time.Time              `json:"timestamp"`
	Message       string                 `json:"message"`
}

// TradeEngine executes buy and sell orders against a session's cash balance.
// Every order runs inside one database transaction: the cash debit/credit,
// the holding mutation and the audit record commit together or not at all.
type TradeEngine struct {
	sessionDAO     gameDAO.SessionDAOInterface
	stockDAO       marketDAO.StockDAOInterface
	holdingDAO     tradingDAO.HoldingDAOInterface
	transactionDAO tradingDAO.TransactionDAOInterface
	db             TxRunner
}

// TradeEngineInterface defines the contract for order execution
type TradeEngineInterface interface {
	ExecuteBuy(sessionID, stockID uuid.UUID, shares int) (*TradeReceipt, error)
	ExecuteSell(sessionID, stockID uuid.UUID, shares int) (*TradeReceipt, error)
}

// NewTradeEngine creates a new trade engine
func NewTradeEngine(
	sessionDAO gameDAO.SessionDAOInterface,
	stockDAO marketDAO.StockDAOInterface,
	holdingDAO tradingDAO.HoldingDAOInterface,
	transactionDAO tradingDAO.TransactionDAOInterface,
	db TxRunner,
) TradeEngineInterface {
	return &TradeEngine{
		sessionDAO:     sessionDAO,
		stockDAO:       stockDAO,
		holdingDAO:     holdingDAO,
		transactionDAO: transactionDAO,
		db:             db,
	}
}

// ExecuteBuy buys shares at the current market price. The purchase is rejected
// when it would drive the session's cash below zero; spending the cash down to
// exactly zero is allowed.
func (te *TradeEngine) ExecuteBuy(sessionID, stockID uuid.UUID, shares int) (*TradeReceipt, error) {
	if shares < 1 {
		return nil, apperrors.ErrInvalidShares
	}
	session, stock, err := te.loadOrderTargets(sessionID, stockID)
	if err != nil {
		return nil, err
	}

	price := *stock.MarketPrice
	cost := price.Mul(decimal.NewFromInt(int64(shares))).Round(2)

	if cost.GreaterThan(session.CurrentCapital) {
		return nil, &apperrors.InsufficientFundsError{
			Available: session.CurrentCapital,
			Required:  cost,
		}
	}

	transaction := &models.Transaction{
		GameSessionID: sessionID,
		StockID:       stockID,
		Type:          models.TransactionTypeBuy,
		Shares:        shares,
		PricePerShare: price,
		TotalValue:    cost,
		Timestamp:     time.Now(),
	}

	err = te.db.Transaction(func(tx *gorm.DB) error {
		session.CurrentCapital = session.CurrentCapital.Sub(cost)
		if err := te.sessionDAO.UpdateWithTx(tx, session); err != nil {
			return err
		}

		if err := te.applyBuyToHolding(tx, sessionID, stockID, shares, price, cost); err != nil {
			return err
		}

		return te.transactionDAO.CreateWithTx(tx, transaction)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute buy order: %w", err)
	}

	log.Printf("Executed buy: session=%s stock=%s shares=%d price=%s cost=%s remaining=%s",
		sessionID, stock.Symbol, shares, price.StringFixed(2), cost.StringFixed(2),
		session.CurrentCapital.StringFixed(2))

	return &TradeReceipt{
		TransactionID: transaction.ID,
		StockID:       stockID,
		StockSymbol:   stock.Symbol,
		Type:          models.TransactionTypeBuy,
		Shares:        shares,
		PricePerShare: price,
		TotalValue:    cost,
		RemainingCash: session.CurrentCapital,
		Timestamp:     transaction.Timestamp,
		Message:       fmt.Sprintf("Successfully purchased %d shares of %s", shares, stock.Symbol),
	}, nil
}

// ExecuteSell sells shares at the current market price. The average price of
// the remaining holding is not recomputed on sell; the cost basis only moves
// on buys.
func (te *TradeEngine) ExecuteSell(sessionID, stockID uuid.UUID, shares int) (*TradeReceipt, error) {
	if shares < 1 {
		return nil, apperrors.ErrInvalidShares
	}
	session, stock, err := te.loadOrderTargets(sessionID, stockID)
	if err != nil {
		return nil, err
	}

	holding, err := te.holdingDAO.GetBySessionAndStock(sessionID, stockID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.InsufficientSharesError{Owned: 0, Requested: shares}
		}
		return nil, fmt.Errorf("failed to load holding: %w", err)
	}
	if holding.Shares < shares {
		return nil, &apperrors.InsufficientSharesError{Owned: holding.Shares, Requested: shares}
	}

	price := *stock.MarketPrice
	revenue := price.Mul(decimal.NewFromInt(int64(shares))).Round(2)

	transaction := &models.Transaction{
		GameSessionID: sessionID,
		StockID:       stockID,
		Type:          models.TransactionTypeSell,
		Shares:        shares,
		PricePerShare: price,
		TotalValue:    revenue,
		Timestamp:     time.Now(),
	}

	err = te.db.Transaction(func(tx *gorm.DB) error {
		session.CurrentCapital = session.CurrentCapital.Add(revenue)
		if err := te.sessionDAO.UpdateWithTx(tx, session); err != nil {
			return err
		}

		holding.Shares -= shares
		if holding.Shares == 0 {
			if err := te.holdingDAO.DeleteWithTx(tx, holding); err != nil {
				return err
			}
		} else {
			if err := te.holdingDAO.UpdateWithTx(tx, holding); err != nil {
				return err
			}
		}

		return te.transactionDAO.CreateWithTx(tx, transaction)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute sell order: %w", err)
	}

	log.Printf("Executed sell: session=%s stock=%s shares=%d price=%s revenue=%s remaining=%s",
		sessionID, stock.Symbol, shares, price.StringFixed(2), revenue.StringFixed(2),
		session.CurrentCapital.StringFixed(2))

	return &TradeReceipt{
		TransactionID: transaction.ID,
		StockID:       stockID,
		StockSymbol:   stock.Symbol,
		Type:          models.TransactionTypeSell,
		Shares:        shares,
		PricePerShare: price,
		TotalValue:    revenue,
		RemainingCash: session.CurrentCapital,
		Timestamp:     transaction.Timestamp,
		Message:       fmt.Sprintf("Successfully sold %d shares of %s", shares, stock.Symbol),
	}, nil
}

// loadOrderTargets resolves the session and stock for an order and rejects
// orders on sessions that are no longer active or stocks without a price.
func (te *TradeEngine) loadOrderTargets(sessionID, stockID uuid.UUID) (*models.GameSession, *models.Stock, error) {
	session, err := te.sessionDAO.GetByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.Status != models.GameSessionStatusActive {
		return nil, nil, &apperrors.InvalidStateError{Reason: "session not active"}
	}

	stock, err := te.stockDAO.GetByID(stockID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrStockNotFound
		}
		return nil, nil, fmt.Errorf("failed to load stock: %w", err)
	}
	if stock.MarketPrice == nil {
		return nil, nil, apperrors.ErrPriceNotSet
	}

	return session, stock, nil
}

// applyBuyToHolding creates the holding on first purchase or folds the new lot
// into the shares-weighted average price: (oldAvg*oldShares + cost) / total,
// rounded to 2 decimal places half-up.
func (te *TradeEngine) applyBuyToHolding(tx *gorm.DB, sessionID, stockID uuid.UUID, shares int, price, cost decimal.Decimal) error {
	holding, err := te.holdingDAO.GetBySessionAndStockWithTx(tx, sessionID, stockID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return te.holdingDAO.CreateWithTx(tx, &models.Holding{
			GameSessionID: sessionID,
			StockID:       stockID,
			Shares:        shares,
			AveragePrice:  price,
		})
	}
	if err != nil {
		return err
	}

	oldValue := holding.AveragePrice.Mul(decimal.NewFromInt(int64(holding.Shares)))
	totalShares := holding.Shares + shares

	holding.AveragePrice = oldValue.Add(cost).
		DivRound(decimal.NewFromInt(int64(totalShares)), 2)
	holding.Shares = totalShares

	return te.holdingDAO.UpdateWithTx(tx, holding)
}
