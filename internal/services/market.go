package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cardiactrader/internal/apperrors"
	"cardiactrader/internal/config"
	gameDAO "cardiactrader/internal/dao/game"
	marketDAO "cardiactrader/internal/dao/market"
	tradingDAO "cardiactrader/internal/dao/trading"
	marketEngine "cardiactrader/internal/engines/market"
	"cardiactrader/internal/models"
)

// stockCatalog is the fixed set of companies a round draws from.
var stockCatalog = []struct {
	Symbol      string
	CompanyName string
	Sector      models.StockSector
}{
	{"HTCH", "Heart-Tech Inc", models.SectorTech},
	{"CRDC", "Cardiac Systems", models.SectorMedical},
	{"PLSE", "Pulse Dynamics", models.SectorTech},
	{"BEAT", "HeartBeat Finance", models.SectorFinance},
	{"RYTM", "Rhythm Corp", models.SectorMedical},
}

// StockView is the player-visible projection of a stock with the caller's
// holding merged in. Hidden count and base price are never included.
type StockView struct {
	ID           uuid.UUID          `json:"id"`
	Symbol       string             `json:"symbol"`
	CompanyName  string             `json:"company_name"`
	Sector       models.StockSector `json:"sector"`
	ImageData    string             `json:"image_data,omitempty"`
	MarketPrice  *decimal.Decimal   `json:"market_price,omitempty"`
	SharesOwned  int                `json:"shares_owned"`
	AveragePrice *decimal.Decimal   `json:"average_price,omitempty"`
	TotalValue   decimal.Decimal    `json:"total_value"`
}

// MarketService manages the stock catalog and the pricing lifecycle of a
// round: hidden counts from the oracle, noisy market prices during the round,
// true values at reveal.
type MarketService struct {
	sessionDAO gameDAO.SessionDAOInterface
	stockDAO   marketDAO.StockDAOInterface
	holdingDAO tradingDAO.HoldingDAOInterface
	pricing    *marketEngine.PricingEngine
	fetcher    PuzzleFetcher
	cfg        config.GameConfig

	fallbacks atomic.Int64
}

// NewMarketService creates a new market service
func NewMarketService(
	sessionDAO gameDAO.SessionDAOInterface,
	stockDAO marketDAO.StockDAOInterface,
	holdingDAO tradingDAO.HoldingDAOInterface,
	pricing *marketEngine.PricingEngine,
	fetcher PuzzleFetcher,
	cfg config.GameConfig,
) *MarketService {
	return &MarketService{
		sessionDAO: sessionDAO,
		stockDAO:   stockDAO,
		holdingDAO: holdingDAO,
		pricing:    pricing,
		fetcher:    fetcher,
		cfg:        cfg,
	}
}

// InitializeRoundStocks assigns every catalog slot a fresh hidden count and a
// noisy market price scaled by the session's difficulty. Oracle outages do not
// block round start: each failed fetch is logged, counted and substituted with
// a locally generated count.
func (ms *MarketService) InitializeRoundStocks(ctx context.Context, sessionID uuid.UUID) ([]StockView, error) {
	session, err := ms.loadSession(sessionID)
	if err != nil {
		return nil, err
	}

	variance := ms.cfg.PriceVariance[session.Difficulty]

	count := ms.cfg.StockCount
	if count > len(stockCatalog) {
		count = len(stockCatalog)
	}

	views := make([]StockView, 0, count)
	for i := 0; i < count; i++ {
		entry := stockCatalog[i]

		stock, err := ms.stockDAO.GetBySymbol(entry.Symbol)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			stock = &models.Stock{
				Symbol:      entry.Symbol,
				CompanyName: entry.CompanyName,
				Sector:      entry.Sector,
			}
			if err := ms.stockDAO.Create(stock); err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, fmt.Errorf("failed to load stock %s: %w", entry.Symbol, err)
		}

		heartCount, imageData := ms.resolvePuzzle(ctx, entry.Symbol)

		basePrice := ms.pricing.TruePrice(heartCount, stock.Sector)
		marketPrice := ms.pricing.MarketPrice(basePrice, variance)

		stock.HiddenCount = &heartCount
		stock.BasePrice = &basePrice
		stock.MarketPrice = &marketPrice
		stock.ImageData = imageData

		if err := ms.stockDAO.Update(stock); err != nil {
			return nil, err
		}

		view, err := ms.buildView(sessionID, stock)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	return views, nil
}

// resolvePuzzle asks the oracle for a hidden count and falls back to a local
// random count on failure. The substitution is logged and counted so it stays
// distinguishable from genuine oracle answers in operations, while the player
// cannot tell the difference.
func (ms *MarketService) resolvePuzzle(ctx context.Context, symbol string) (heartCount int, imageData string) {
	puzzle, err := ms.fetcher.FetchPuzzle(ctx)
	if err != nil {
		ms.fallbacks.Add(1)
		log.Printf("Heart API unavailable for stock %s, substituting random count: %v", symbol, err)
		return ms.pricing.FallbackHeartCount(), ""
	}
	return puzzle.HeartCount, puzzle.ImageData
}

// OracleFallbacks reports how many hidden counts were substituted locally
// because the oracle was unreachable.
func (ms *MarketService) OracleFallbacks() int64 {
	return ms.fallbacks.Load()
}

// GetAvailableStocks returns the catalog with market prices and the caller's
// holdings merged in. When no catalog exists yet the answer is empty:
// round start is the only stock-creation trigger.
func (ms *MarketService) GetAvailableStocks(sessionID uuid.UUID) ([]StockView, error) {
	if _, err := ms.loadSession(sessionID); err != nil {
		return nil, err
	}

	stocks, err := ms.stockDAO.ListAll()
	if err != nil {
		return nil, err
	}

	views := make([]StockView, 0, len(stocks))
	for i := range stocks {
		view, err := ms.buildView(sessionID, &stocks[i])
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// RevealTrueValues sets every priced stock's market price to its true value.
// The operation is idempotent: a second call yields the same revealed prices.
func (ms *MarketService) RevealTrueValues(sessionID uuid.UUID, roundNumber int) ([]StockView, error) {
	if _, err := ms.loadSession(sessionID); err != nil {
		return nil, err
	}

	stocks, err := ms.stockDAO.ListAll()
	if err != nil {
		return nil, err
	}

	views := make([]StockView, 0, len(stocks))
	for i := range stocks {
		stock := &stocks[i]
		if stock.HiddenCount != nil {
			truePrice := ms.pricing.TruePrice(*stock.HiddenCount, stock.Sector)
			stock.MarketPrice = &truePrice
			if err := ms.stockDAO.Update(stock); err != nil {
				return nil, err
			}
		}

		view, err := ms.buildView(sessionID, stock)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	log.Printf("Revealed true values for session %s round %d (%d stocks)", sessionID, roundNumber, len(views))
	return views, nil
}

// UpdateMarketPrices is a reserved extension point for intra-round price
// fluctuation. It must stay side-effect-free while unimplemented.
func (ms *MarketService) UpdateMarketPrices(sessionID uuid.UUID) error {
	return nil
}

func (ms *MarketService) loadSession(sessionID uuid.UUID) (*models.GameSession, error) {
	session, err := ms.sessionDAO.GetByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

func (ms *MarketService) buildView(sessionID uuid.UUID, stock *models.Stock) (StockView, error) {
	view := StockView{
		ID:          stock.ID,
		Symbol:      stock.Symbol,
		CompanyName: stock.CompanyName,
		Sector:      stock.Sector,
		ImageData:   stock.ImageData,
		MarketPrice: stock.MarketPrice,
		TotalValue:  decimal.Zero,
	}

	holding, err := ms.holdingDAO.GetBySessionAndStock(sessionID, stock.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return view, nil
	}
	if err != nil {
		return StockView{}, fmt.Errorf("failed to load holding: %w", err)
	}

	view.SharesOwned = holding.Shares
	view.AveragePrice = &holding.AveragePrice
	if stock.MarketPrice != nil {
		view.TotalValue = stock.MarketPrice.Mul(decimal.NewFromInt(int64(holding.Shares))).Round(2)
	}
	return view, nil
}
