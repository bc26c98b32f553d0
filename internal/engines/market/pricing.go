package market

import (
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"

	"cardiactrader/internal/models"
)

const (
	// Fallback heart counts are drawn uniformly from [MinFallbackCount, MaxFallbackCount]
	// when the puzzle oracle is unreachable.
	MinFallbackCount = 1
	MaxFallbackCount = 10
)

// PricingEngine derives stock prices from hidden heart counts. The true value
// is count * unit value * sector multiplier; the observable market price
// perturbs the true value with Gaussian noise scaled by difficulty.
type PricingEngine struct {
	unitValue decimal.Decimal

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPricingEngine creates a pricing engine. rng may be seeded for
// deterministic tests; pass rand.New(rand.NewSource(time.Now().UnixNano()))
// in production wiring.
func NewPricingEngine(unitValue decimal.Decimal, rng *rand.Rand) *PricingEngine {
	return &PricingEngine{
		unitValue: unitValue,
		rng:       rng,
	}
}

// TruePrice computes the hidden true value of a stock,
// rounded to 2 decimal places half-up.
func (pe *PricingEngine) TruePrice(heartCount int, sector models.StockSector) decimal.Decimal {
	return decimal.NewFromInt(int64(heartCount)).
		Mul(pe.unitValue).
		Mul(sector.Multiplier()).
		Round(2)
}

// MarketPrice perturbs a base price with noise drawn from N(0, variance),
// rounded to 2 decimal places half-up. variance 0 returns the base price.
func (pe *PricingEngine) MarketPrice(basePrice decimal.Decimal, variance float64) decimal.Decimal {
	pe.mu.Lock()
	noise := pe.rng.NormFloat64() * variance
	pe.mu.Unlock()

	return basePrice.
		Mul(decimal.NewFromFloat(1 + noise)).
		Round(2)
}

// FallbackHeartCount substitutes a locally generated count when the oracle is
// unavailable. The caller is responsible for flagging the substitution.
func (pe *PricingEngine) FallbackHeartCount() int {
	pe.mu.Lock()
	defer pe.mu.Unlock()
	return pe.rng.Intn(MaxFallbackCount-MinFallbackCount+1) + MinFallbackCount
}
