package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cardiactrader/internal/apperrors"
	"cardiactrader/internal/models"
)

func TestBuyAndSellThroughService(t *testing.T) {
	f := newFixture(t)
	sessionID := f.seedSession(t, "medium")
	stockID := f.seedStock(t, "HTCH", "tech", "50", nil)

	receipt, err := f.trading.Buy(sessionID, stockID, 10)
	if err != nil {
		t.Fatalf("Buy failed: %v", err)
	}
	if !receipt.RemainingCash.Equal(decimal.RequireFromString("9500")) {
		t.Errorf("cash after buy = %s, want 9500", receipt.RemainingCash)
	}

	receipt, err = f.trading.Sell(sessionID, stockID, 10)
	if err != nil {
		t.Fatalf("Sell failed: %v", err)
	}
	if !receipt.RemainingCash.Equal(decimal.RequireFromString("10000")) {
		t.Errorf("cash after round trip = %s, want 10000", receipt.RemainingCash)
	}
}

func TestGetTransactionsNewestFirst(t *testing.T) {
	f := newFixture(t)
	sessionID := f.seedSession(t, "medium")
	stockID := f.seedStock(t, "HTCH", "tech", "50", nil)

	if _, err := f.trading.Buy(sessionID, stockID, 5); err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if _, err := f.trading.Sell(sessionID, stockID, 2); err != nil {
		t.Fatalf("sell failed: %v", err)
	}

	txns, err := f.trading.GetTransactions(sessionID, 10)
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txns))
	}
	if txns[0].Type != models.TransactionTypeSell || txns[1].Type != models.TransactionTypeBuy {
		t.Errorf("transactions not newest first: %s, %s", txns[0].Type, txns[1].Type)
	}

	limited, err := f.trading.GetTransactions(sessionID, 1)
	if err != nil {
		t.Fatalf("GetTransactions with limit failed: %v", err)
	}
	if len(limited) != 1 || limited[0].Type != models.TransactionTypeSell {
		t.Errorf("limit not applied from the newest end")
	}
}

func TestGetPortfolio(t *testing.T) {
	f := newFixture(t)
	sessionID := f.seedSession(t, "medium")
	stockID := f.seedStock(t, "HTCH", "tech", "50", nil)

	if _, err := f.trading.Buy(sessionID, stockID, 10); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	// Price moves to 60 after the buy.
	stock, _ := f.stocks.GetByID(stockID)
	newPrice := decimal.RequireFromString("60")
	stock.MarketPrice = &newPrice
	if err := f.stocks.Update(stock); err != nil {
		t.Fatalf("failed to reprice: %v", err)
	}

	portfolio, err := f.trading.GetPortfolio(sessionID)
	if err != nil {
		t.Fatalf("GetPortfolio failed: %v", err)
	}

	if !portfolio.Cash.Equal(decimal.RequireFromString("9500")) {
		t.Errorf("cash = %s, want 9500", portfolio.Cash)
	}
	if !portfolio.TotalStockValue.Equal(decimal.RequireFromString("600")) {
		t.Errorf("stock value = %s, want 600", portfolio.TotalStockValue)
	}
	if !portfolio.TotalPortfolioValue.Equal(decimal.RequireFromString("10100")) {
		t.Errorf("portfolio value = %s, want 10100", portfolio.TotalPortfolioValue)
	}

	if len(portfolio.Holdings) != 1 {
		t.Fatalf("got %d holdings, want 1", len(portfolio.Holdings))
	}
	line := portfolio.Holdings[0]
	if !line.ProfitLoss.Equal(decimal.RequireFromString("100")) {
		t.Errorf("profit = %s, want 100", line.ProfitLoss)
	}
	// 100 / 500 = 20%
	if !line.ProfitLossPercentage.Equal(decimal.RequireFromString("20")) {
		t.Errorf("profit pct = %s, want 20", line.ProfitLossPercentage)
	}
}

func TestGetPortfolioTruePriceFallback(t *testing.T) {
	f := newFixture(t)
	sessionID := f.seedSession(t, "medium")

	// Market price unset but hidden count known: the holding is valued at the
	// true price, 4 * 100 * 1.3 = 520.
	stockID := f.seedStock(t, "CRDC", "medical", "", intPtr(4))
	holding := &models.Holding{
		GameSessionID: sessionID,
		StockID:       stockID,
		Shares:        2,
		AveragePrice:  decimal.RequireFromString("500"),
	}
	if err := f.holdings.CreateWithTx(nil, holding); err != nil {
		t.Fatalf("failed to seed holding: %v", err)
	}

	portfolio, err := f.trading.GetPortfolio(sessionID)
	if err != nil {
		t.Fatalf("GetPortfolio failed: %v", err)
	}
	if !portfolio.Holdings[0].CurrentPrice.Equal(decimal.RequireFromString("520")) {
		t.Errorf("current price = %s, want true price 520", portfolio.Holdings[0].CurrentPrice)
	}
	if !portfolio.TotalStockValue.Equal(decimal.RequireFromString("1040")) {
		t.Errorf("stock value = %s, want 1040", portfolio.TotalStockValue)
	}
}

func TestGetPortfolioZeroCostBasis(t *testing.T) {
	f := newFixture(t)
	sessionID := f.seedSession(t, "medium")
	stockID := f.seedStock(t, "FREE", "finance", "10", nil)

	holding := &models.Holding{
		GameSessionID: sessionID,
		StockID:       stockID,
		Shares:        5,
		AveragePrice:  decimal.Zero,
	}
	if err := f.holdings.CreateWithTx(nil, holding); err != nil {
		t.Fatalf("failed to seed holding: %v", err)
	}

	portfolio, err := f.trading.GetPortfolio(sessionID)
	if err != nil {
		t.Fatalf("GetPortfolio failed: %v", err)
	}
	// Division by a zero cost basis must not blow up; the percentage is zero.
	if !portfolio.Holdings[0].ProfitLossPercentage.IsZero() {
		t.Errorf("profit pct = %s, want 0", portfolio.Holdings[0].ProfitLossPercentage)
	}
	if !portfolio.Holdings[0].ProfitLoss.Equal(decimal.RequireFromString("50")) {
		t.Errorf("profit = %s, want 50", portfolio.Holdings[0].ProfitLoss)
	}
}

func TestGetPortfolioUnknownSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.trading.GetPortfolio(uuid.New())
	if !errors.Is(err, apperrors.ErrSessionNotFound) {
		t.Errorf("got %v, want ErrSessionNotFound", err)
	}
}

func TestConcurrentBuysSerializeUnderSessionLock(t *testing.T) {
	f := newFixture(t)
	sessionID := f.seedSession(t, "medium")
	stockID := f.seedStock(t, "HTCH", "tech", "50", nil)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.trading.Buy(sessionID, stockID, 5); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent buy failed: %v", err)
	}

	// Neither buy may lose its update: cash and the holding must match the
	// serialized result of two 5-share buys at 50.
	session, _ := f.sessions.GetByID(sessionID)
	if !session.CurrentCapital.Equal(decimal.RequireFromString("9500")) {
		t.Errorf("cash = %s, want 9500", session.CurrentCapital)
	}
	holding, err := f.holdings.GetBySessionAndStock(sessionID, stockID)
	if err != nil {
		t.Fatalf("failed to load holding: %v", err)
	}
	if holding.Shares != 10 {
		t.Errorf("shares = %d, want 10", holding.Shares)
	}
	if !holding.AveragePrice.Equal(decimal.RequireFromString("50")) {
		t.Errorf("average price = %s, want 50", holding.AveragePrice)
	}

	txns, _ := f.trading.GetTransactions(sessionID, 10)
	if len(txns) != 2 {
		t.Errorf("got %d transactions, want 2", len(txns))
	}
}

func TestGetPortfolioEmpty(t *testing.T) {
	f := newFixture(t)
	sessionID := f.seedSession(t, "medium")

	portfolio, err := f.trading.GetPortfolio(sessionID)
	if err != nil {
		t.Fatalf("GetPortfolio failed: %v", err)
	}
	if len(portfolio.Holdings) != 0 {
		t.Errorf("got %d holdings, want 0", len(portfolio.Holdings))
	}
	if !portfolio.TotalPortfolioValue.Equal(f.cfg.StartingCapital) {
		t.Errorf("portfolio value = %s, want %s", portfolio.TotalPortfolioValue, f.cfg.StartingCapital)
	}
}
