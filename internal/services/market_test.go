package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"cardiactrader/internal/apperrors"
)

func TestInitializeRoundStocks(t *testing.T) {
	f := newFixture(t)
	sessionID := f.seedSession(t, "medium")

	views, err := f.market.InitializeRoundStocks(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("InitializeRoundStocks failed: %v", err)
	}

	if len(views) != f.cfg.StockCount {
		t.Fatalf("got %d stocks, want %d", len(views), f.cfg.StockCount)
	}
	if f.fetcher.calls != f.cfg.StockCount {
		t.Errorf("oracle called %d times, want %d", f.fetcher.calls, f.cfg.StockCount)
	}
	if f.market.OracleFallbacks() != 0 {
		t.Errorf("fallbacks = %d, want 0", f.market.OracleFallbacks())
	}

	for _, view := range views {
		if view.MarketPrice == nil {
			t.Errorf("stock %s has no market price after init", view.Symbol)
		}
		if view.ImageData == "" {
			t.Errorf("stock %s has no puzzle image", view.Symbol)
		}
		if view.SharesOwned != 0 {
			t.Errorf("stock %s starts with %d shares owned", view.Symbol, view.SharesOwned)
		}
	}

	// The persisted rows must carry the ground truth.
	stocks, _ := f.stocks.ListAll()
	for _, stock := range stocks {
		if stock.HiddenCount == nil || *stock.HiddenCount != 7 {
			t.Errorf("stock %s hidden count = %v, want 7", stock.Symbol, stock.HiddenCount)
		}
		if stock.BasePrice == nil {
			t.Errorf("stock %s has no base price", stock.Symbol)
		}
	}
}

func TestInitializeRoundStocksReusesCatalogRows(t *testing.T) {
	f := newFixture(t)
	sessionID := f.seedSession(t, "easy")

	if _, err := f.market.InitializeRoundStocks(context.Background(), sessionID); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if _, err := f.market.InitializeRoundStocks(context.Background(), sessionID); err != nil {
		t.Fatalf("second init failed: %v", err)
	}

	stocks, _ := f.stocks.ListAll()
	if len(stocks) != f.cfg.StockCount {
		t.Errorf("catalog grew to %d rows across rounds, want %d", len(stocks), f.cfg.StockCount)
	}
}

func TestInitializeRoundStocksOracleFallback(t *testing.T) {
	f := newFixture(t)
	f.fetcher.err = apperrors.ErrExternalServiceUnavailable
	sessionID := f.seedSession(t, "medium")

	views, err := f.market.InitializeRoundStocks(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("init must not fail when the oracle is down: %v", err)
	}

	if f.market.OracleFallbacks() != int64(f.cfg.StockCount) {
		t.Errorf("fallbacks = %d, want %d", f.market.OracleFallbacks(), f.cfg.StockCount)
	}

	for _, view := range views {
		if view.MarketPrice == nil {
			t.Errorf("stock %s unpriced after fallback", view.Symbol)
		}
		if view.ImageData != "" {
			t.Errorf("stock %s has an image despite oracle outage", view.Symbol)
		}
	}

	stocks, _ := f.stocks.ListAll()
	for _, stock := range stocks {
		if stock.HiddenCount == nil {
			t.Fatalf("stock %s has no hidden count after fallback", stock.Symbol)
		}
		if *stock.HiddenCount < 1 || *stock.HiddenCount > 10 {
			t.Errorf("fallback count %d outside [1, 10]", *stock.HiddenCount)
		}
	}
}

func TestGetAvailableStocksEmptyCatalog(t *testing.T) {
	f := newFixture(t)
	sessionID := f.seedSession(t, "medium")

	views, err := f.market.GetAvailableStocks(sessionID)
	if err != nil {
		t.Fatalf("GetAvailableStocks failed: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("got %d stocks before any round started, want 0", len(views))
	}
}

func TestGetAvailableStocksUnknownSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.market.GetAvailableStocks(uuid.New())
	if !errors.Is(err, apperrors.ErrSessionNotFound) {
		t.Errorf("got %v, want ErrSessionNotFound", err)
	}
}

func TestGetAvailableStocksMergesHoldings(t *testing.T) {
	f := newFixture(t)
	sessionID := f.seedSession(t, "medium")

	views, err := f.market.InitializeRoundStocks(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if _, err := f.trading.Buy(sessionID, views[0].ID, 3); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	views, err = f.market.GetAvailableStocks(sessionID)
	if err != nil {
		t.Fatalf("GetAvailableStocks failed: %v", err)
	}

	var owned int
	for _, view := range views {
		if view.SharesOwned > 0 {
			owned++
			if view.AveragePrice == nil {
				t.Errorf("stock %s owned without average price", view.Symbol)
			}
			if view.TotalValue.IsZero() {
				t.Errorf("stock %s owned with zero total value", view.Symbol)
			}
		}
	}
	if owned != 1 {
		t.Errorf("%d stocks show shares owned, want 1", owned)
	}
}

func TestRevealTrueValues(t *testing.T) {
	f := newFixture(t)
	sessionID := f.seedSession(t, "hard")

	if _, err := f.market.InitializeRoundStocks(context.Background(), sessionID); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	first, err := f.market.RevealTrueValues(sessionID, 1)
	if err != nil {
		t.Fatalf("RevealTrueValues failed: %v", err)
	}

	// Hidden count is 7 everywhere, so the revealed price is exactly
	// 7 * 100 * sector multiplier.
	wantBySector := map[string]string{
		"tech":    "1050",
		"medical": "910",
		"finance": "700",
	}
	for _, view := range first {
		want := wantBySector[string(view.Sector)]
		if view.MarketPrice == nil || view.MarketPrice.String() != want {
			t.Errorf("stock %s revealed at %v, want %s", view.Symbol, view.MarketPrice, want)
		}
	}

	// Idempotent: a second reveal yields identical prices.
	second, err := f.market.RevealTrueValues(sessionID, 1)
	if err != nil {
		t.Fatalf("second reveal failed: %v", err)
	}
	for i := range first {
		if !first[i].MarketPrice.Equal(*second[i].MarketPrice) {
			t.Errorf("stock %s moved between reveals: %s vs %s",
				first[i].Symbol, first[i].MarketPrice, second[i].MarketPrice)
		}
	}
}

func TestRevealTrueValuesSkipsUnpricedStocks(t *testing.T) {
	f := newFixture(t)
	sessionID := f.seedSession(t, "medium")
	f.seedStock(t, "XTRA", "finance", "", nil)

	views, err := f.market.RevealTrueValues(sessionID, 1)
	if err != nil {
		t.Fatalf("RevealTrueValues failed: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d views, want 1", len(views))
	}
	if views[0].MarketPrice != nil {
		t.Errorf("stock without hidden count was priced at %s", views[0].MarketPrice)
	}
}

func TestUpdateMarketPricesIsNoOp(t *testing.T) {
	f := newFixture(t)
	sessionID := f.seedSession(t, "medium")

	if _, err := f.market.InitializeRoundStocks(context.Background(), sessionID); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	before, _ := f.stocks.ListAll()

	if err := f.market.UpdateMarketPrices(sessionID); err != nil {
		t.Fatalf("UpdateMarketPrices failed: %v", err)
	}

	after, _ := f.stocks.ListAll()
	for i := range before {
		if !before[i].MarketPrice.Equal(*after[i].MarketPrice) {
			t.Errorf("stock %s price changed: %s vs %s",
				before[i].Symbol, before[i].MarketPrice, after[i].MarketPrice)
		}
	}
}
