package services

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cardiactrader/internal/config"
	"cardiactrader/internal/dao/daotest"
	marketEngine "cardiactrader/internal/engines/market"
	tradingEngine "cardiactrader/internal/engines/trading"
	"cardiactrader/internal/models"
)

// stubFetcher replaces the heart API in tests.
type stubFetcher struct {
	puzzle HeartPuzzle
	err    error
	calls  int
}

func (s *stubFetcher) FetchPuzzle(ctx context.Context) (*HeartPuzzle, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	p := s.puzzle
	return &p, nil
}

// fixture wires the full service stack against in-memory stores.
type fixture struct {
	sessions  *daotest.SessionStore
	rounds    *daotest.RoundStore
	stocks    *daotest.StockStore
	holdings  *daotest.HoldingStore
	txns      *daotest.TransactionStore
	toolStore *daotest.ToolStore

	fetcher *stubFetcher
	cfg     config.GameConfig
	locks   *SessionLocks

	market  *MarketService
	trading *TradingService
	tools   *ToolService
	game    *GameService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		sessions:  daotest.NewSessionStore(),
		rounds:    daotest.NewRoundStore(),
		stocks:    daotest.NewStockStore(),
		holdings:  daotest.NewHoldingStore(),
		txns:      daotest.NewTransactionStore(),
		toolStore: daotest.NewToolStore(),
		fetcher:   &stubFetcher{puzzle: HeartPuzzle{HeartCount: 7, ImageData: "data:image/png;base64,abc"}},
		cfg:       config.DefaultGameConfig(),
	}

	pricing := marketEngine.NewPricingEngine(f.cfg.HeartUnitValue, rand.New(rand.NewSource(1)))
	engine := tradingEngine.NewTradeEngine(f.sessions, f.stocks, f.holdings, f.txns, daotest.Runner{})
	locks := NewSessionLocks()
	f.locks = locks

	f.market = NewMarketService(f.sessions, f.stocks, f.holdings, pricing, f.fetcher, f.cfg)
	f.trading = NewTradingService(f.sessions, f.stocks, f.holdings, f.txns, engine, pricing, locks)
	f.tools = NewToolService(f.toolStore, f.sessions, f.stocks, f.cfg, locks)
	f.game = NewGameService(f.sessions, f.rounds, f.market, f.trading, f.tools, f.cfg, locks, daotest.Runner{})

	return f
}

// startGame creates a session directly in the store, bypassing the
// abandon-previous step of StartNewGame.
func (f *fixture) seedSession(t *testing.T, difficulty models.DifficultyLevel) uuid.UUID {
	t.Helper()
	session := &models.GameSession{
		PlayerID:        uuid.New(),
		CurrentRound:    1,
		StartingCapital: f.cfg.StartingCapital,
		CurrentCapital:  f.cfg.StartingCapital,
		Status:          models.GameSessionStatusActive,
		Difficulty:      difficulty,
	}
	if err := f.sessions.Create(session); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return session.ID
}

// seedStock creates a priced stock outside the catalog flow.
func (f *fixture) seedStock(t *testing.T, symbol string, sector models.StockSector, marketPrice string, hiddenCount *int) uuid.UUID {
	t.Helper()
	stock := &models.Stock{
		Symbol:      symbol,
		CompanyName: symbol + " Corp",
		Sector:      sector,
		HiddenCount: hiddenCount,
	}
	if marketPrice != "" {
		price := decimal.RequireFromString(marketPrice)
		stock.MarketPrice = &price
	}
	if err := f.stocks.Create(stock); err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}
	return stock.ID
}

func (f *fixture) setCash(t *testing.T, sessionID uuid.UUID, amount string) {
	t.Helper()
	session, err := f.sessions.GetByID(sessionID)
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	session.CurrentCapital = decimal.RequireFromString(amount)
	if err := f.sessions.Update(session); err != nil {
		t.Fatalf("failed to update session: %v", err)
	}
}

func intPtr(v int) *int { return &v }
