package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cardiactrader/internal/apperrors"
	"cardiactrader/internal/config"
	gameDAO "cardiactrader/internal/dao/game"
	tradingEngine "cardiactrader/internal/engines/trading"
	"cardiactrader/internal/models"
)

// SessionView is the caller-facing projection of a game session.
type SessionView struct {
	ID              uuid.UUID                `json:"id"`
	PlayerID        uuid.UUID                `json:"player_id"`
	CurrentRound    int                      `json:"current_round"`
	StartingCapital decimal.Decimal          `json:"starting_capital"`
	CurrentCapital  decimal.Decimal          `json:"current_capital"`
	Status          models.GameSessionStatus `json:"status"`
	Difficulty      models.DifficultyLevel   `json:"difficulty"`
	HasActiveRound  bool                     `json:"has_active_round"`
}

// RoundStart is returned when a round begins.
type RoundStart struct {
	RoundID         uuid.UUID       `json:"round_id"`
	GameSessionID   uuid.UUID       `json:"game_session_id"`
	RoundNumber     int             `json:"round_number"`
	Capital         decimal.Decimal `json:"capital"`
	DurationSeconds int             `json:"duration_seconds"`
	AvailableStocks []StockView     `json:"available_stocks"`
	StartTime       int64           `json:"start_time"`
}

// RoundResult is returned when a round completes.
type RoundResult struct {
	RoundID              uuid.UUID       `json:"round_id"`
	RoundNumber          int             `json:"round_number"`
	CapitalAtStart       decimal.Decimal `json:"capital_at_start"`
	CapitalAtEnd         decimal.Decimal `json:"capital_at_end"`
	ProfitLoss           decimal.Decimal `json:"profit_loss"`
	ProfitLossPercentage decimal.Decimal `json:"profit_loss_percentage"`
	RevealedStocks       []StockView     `json:"revealed_stocks"`
	UnlockedTools        []string        `json:"unlocked_tools"`
	GameComplete         bool            `json:"game_complete"`
	NextRoundNumber      *int            `json:"next_round_number,omitempty"`
}

// GameService is the round/session state machine. Sessions move
// active -> {completed, abandoned}; rounds move active -> {completed,
// abandoned}. All mutating operations on one session are serialized through
// the session lock so a completion racing an abandonment resolves cleanly.
type GameService struct {
	sessionDAO gameDAO.SessionDAOInterface
	roundDAO   gameDAO.RoundDAOInterface
	marketSvc  *MarketService
	tradingSvc *TradingService
	toolSvc    *ToolService
	cfg        config.GameConfig
	locks      *SessionLocks
	db         tradingEngine.TxRunner
}

// NewGameService creates a new game service
func NewGameService(
	sessionDAO gameDAO.SessionDAOInterface,
	roundDAO gameDAO.RoundDAOInterface,
	marketSvc *MarketService,
	tradingSvc *TradingService,
	toolSvc *ToolService,
	cfg config.GameConfig,
	locks *SessionLocks,
	db tradingEngine.TxRunner,
) *GameService {
	return &GameService{
		sessionDAO: sessionDAO,
		roundDAO:   roundDAO,
		marketSvc:  marketSvc,
		tradingSvc: tradingSvc,
		toolSvc:    toolSvc,
		cfg:        cfg,
		locks:      locks,
		db:         db,
	}
}

// StartNewGame abandons any active session the player has and creates a fresh
// one with the configured starting capital. A player has at most one active
// session at a time.
func (gs *GameService) StartNewGame(playerID uuid.UUID, difficulty models.DifficultyLevel) (*SessionView, error) {
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}
	if !difficulty.Valid() {
		return nil, fmt.Errorf("unknown difficulty level: %s", difficulty)
	}

	if err := gs.AbandonActiveSessions(playerID); err != nil {
		return nil, err
	}

	session := &models.GameSession{
		PlayerID:        playerID,
		CurrentRound:    1,
		StartingCapital: gs.cfg.StartingCapital,
		CurrentCapital:  gs.cfg.StartingCapital,
		Status:          models.GameSessionStatusActive,
		Difficulty:      difficulty,
		StartedAt:       time.Now(),
	}
	if err := gs.sessionDAO.Create(session); err != nil {
		return nil, err
	}

	log.Printf("Started new game: session=%s player=%s difficulty=%s capital=%s",
		session.ID, playerID, difficulty, session.CurrentCapital.StringFixed(2))

	return gs.buildSessionView(session)
}

// StartRound initializes the stock catalog for the session's current round
// and opens the round. The round timer is a pure function of difficulty.
func (gs *GameService) StartRound(ctx context.Context, sessionID uuid.UUID) (*RoundStart, error) {
	unlock := gs.locks.Lock(sessionID)
	defer unlock()

	session, err := gs.loadActiveSession(sessionID)
	if err != nil {
		return nil, err
	}

	if session.CurrentRound > gs.cfg.TotalRounds {
		return nil, &apperrors.InvalidStateError{Reason: "all rounds completed"}
	}

	if _, err := gs.roundDAO.GetActiveBySession(sessionID); err == nil {
		return nil, &apperrors.InvalidStateError{Reason: "a round is already active"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check active round: %w", err)
	}

	stocks, err := gs.marketSvc.InitializeRoundStocks(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize round stocks: %w", err)
	}

	round := &models.Round{
		GameSessionID:  sessionID,
		RoundNumber:    session.CurrentRound,
		Status:         models.RoundStatusActive,
		CapitalAtStart: session.CurrentCapital,
		StartedAt:      time.Now(),
	}
	if err := gs.roundDAO.Create(round); err != nil {
		return nil, err
	}

	log.Printf("Started round %d for session %s", round.RoundNumber, sessionID)

	return &RoundStart{
		RoundID:         round.ID,
		GameSessionID:   sessionID,
		RoundNumber:     round.RoundNumber,
		Capital:         session.CurrentCapital,
		DurationSeconds: gs.cfg.RoundDurationSeconds[session.Difficulty],
		AvailableStocks: stocks,
		StartTime:       round.StartedAt.UnixMilli(),
	}, nil
}

// CompleteRound reveals true values, settles the round against the portfolio
// valuation, advances or completes the session, and evaluates the profit
// against the difficulty's unlock thresholds.
func (gs *GameService) CompleteRound(sessionID uuid.UUID, roundNumber int) (*RoundResult, error) {
	unlock := gs.locks.Lock(sessionID)
	defer unlock()

	session, err := gs.loadActiveSession(sessionID)
	if err != nil {
		return nil, err
	}

	round, err := gs.roundDAO.GetBySessionAndNumber(sessionID, roundNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to load round: %w", err)
	}
	if round.Status != models.RoundStatusActive {
		return nil, &apperrors.InvalidStateError{Reason: fmt.Sprintf("round %d is not active", roundNumber)}
	}

	revealed, err := gs.marketSvc.RevealTrueValues(sessionID, roundNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to reveal true values: %w", err)
	}

	portfolio, err := gs.tradingSvc.GetPortfolio(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to value portfolio: %w", err)
	}

	now := time.Now()
	capitalAtEnd := portfolio.TotalPortfolioValue
	profitLoss := capitalAtEnd.Sub(round.CapitalAtStart)

	round.CapitalAtEnd = capitalAtEnd
	round.ProfitLoss = profitLoss
	round.Status = models.RoundStatusCompleted
	round.CompletedAt = &now
	round.DurationSeconds = int(now.Sub(round.StartedAt).Seconds())

	gameComplete := roundNumber >= gs.cfg.TotalRounds
	session.CurrentCapital = capitalAtEnd
	if gameComplete {
		session.Status = models.GameSessionStatusCompleted
		session.CompletedAt = &now
	} else {
		session.CurrentRound = roundNumber + 1
	}

	err = gs.db.Transaction(func(tx *gorm.DB) error {
		if err := gs.roundDAO.UpdateWithTx(tx, round); err != nil {
			return err
		}
		return gs.sessionDAO.UpdateWithTx(tx, session)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to settle round: %w", err)
	}

	unlocked, err := gs.evaluateUnlocks(sessionID, session.Difficulty, profitLoss, roundNumber)
	if err != nil {
		return nil, err
	}

	profitLossPct := decimal.Zero
	if round.CapitalAtStart.IsPositive() {
		profitLossPct = profitLoss.DivRound(round.CapitalAtStart, 4).Mul(decimal.NewFromInt(100))
	}

	var nextRound *int
	if !gameComplete {
		next := roundNumber + 1
		nextRound = &next
	}

	log.Printf("Completed round %d for session %s: profit=%s complete=%t",
		roundNumber, sessionID, profitLoss.StringFixed(2), gameComplete)

	return &RoundResult{
		RoundID:              round.ID,
		RoundNumber:          roundNumber,
		CapitalAtStart:       round.CapitalAtStart,
		CapitalAtEnd:         capitalAtEnd,
		ProfitLoss:           profitLoss,
		ProfitLossPercentage: profitLossPct,
		RevealedStocks:       revealed,
		UnlockedTools:        unlocked,
		GameComplete:         gameComplete,
		NextRoundNumber:      nextRound,
	}, nil
}

// AbandonActiveSessions transitions every active session of the player to
// abandoned. Used on an external logout signal and when starting a new game.
func (gs *GameService) AbandonActiveSessions(playerID uuid.UUID) error {
	sessions, err := gs.sessionDAO.GetActiveByPlayer(playerID)
	if err != nil {
		return err
	}

	for i := range sessions {
		id := sessions[i].ID

		unlock := gs.locks.Lock(id)
		err := gs.abandonLocked(id, playerID)
		unlock()
		if err != nil {
			return err
		}
	}
	return nil
}

// abandonLocked re-reads the session under the lock: a completion that won the
// lock first has already settled the session, and terminal states stay
// terminal, so the abandonment becomes a no-op. The session's in-flight round,
// if any, is abandoned with it.
func (gs *GameService) abandonLocked(sessionID, playerID uuid.UUID) error {
	session, err := gs.sessionDAO.GetByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load session: %w", err)
	}
	if session.Status != models.GameSessionStatusActive {
		return nil
	}

	now := time.Now()
	session.Status = models.GameSessionStatusAbandoned
	session.CompletedAt = &now
	if err := gs.sessionDAO.Update(session); err != nil {
		return err
	}

	round, err := gs.roundDAO.GetActiveBySession(sessionID)
	if err == nil {
		round.Status = models.RoundStatusAbandoned
		round.CompletedAt = &now
		round.DurationSeconds = int(now.Sub(round.StartedAt).Seconds())
		if err := gs.roundDAO.Update(round); err != nil {
			return err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check active round: %w", err)
	}

	log.Printf("Abandoned session %s for player %s", sessionID, playerID)
	return nil
}

// GetCurrentSession returns the player's most recently started active
// session, or nil when there is none.
func (gs *GameService) GetCurrentSession(playerID uuid.UUID) (*SessionView, error) {
	session, err := gs.sessionDAO.GetLatestActiveByPlayer(playerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load current session: %w", err)
	}
	return gs.buildSessionView(session)
}

// evaluateUnlocks grants tools whose difficulty-scaled profit threshold the
// round met, returning the names of newly granted tools.
func (gs *GameService) evaluateUnlocks(sessionID uuid.UUID, difficulty models.DifficultyLevel, profit decimal.Decimal, roundNumber int) ([]string, error) {
	unlocked := []string{}

	if profit.GreaterThanOrEqual(gs.cfg.HintThreshold[difficulty]) {
		if err := gs.toolSvc.UnlockTool(sessionID, models.ToolTypeHint, roundNumber); err != nil {
			return nil, fmt.Errorf("failed to unlock hint: %w", err)
		}
		unlocked = append(unlocked, string(models.ToolTypeHint))
	}
	if profit.GreaterThanOrEqual(gs.cfg.TimeBoostThreshold[difficulty]) {
		if err := gs.toolSvc.UnlockTool(sessionID, models.ToolTypeTimeBoost, roundNumber); err != nil {
			return nil, fmt.Errorf("failed to unlock time boost: %w", err)
		}
		unlocked = append(unlocked, string(models.ToolTypeTimeBoost))
	}

	return unlocked, nil
}

// loadActiveSession loads a session and rejects terminal ones: an abandoned
// or completed session fails all future round operations.
func (gs *GameService) loadActiveSession(sessionID uuid.UUID) (*models.GameSession, error) {
	session, err := gs.sessionDAO.GetByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.Status != models.GameSessionStatusActive {
		return nil, &apperrors.InvalidStateError{Reason: "session not active"}
	}
	return session, nil
}

func (gs *GameService) buildSessionView(session *models.GameSession) (*SessionView, error) {
	hasActiveRound := false
	if _, err := gs.roundDAO.GetActiveBySession(session.ID); err == nil {
		hasActiveRound = true
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check active round: %w", err)
	}

	return &SessionView{
		ID:              session.ID,
		PlayerID:        session.PlayerID,
		CurrentRound:    session.CurrentRound,
		StartingCapital: session.StartingCapital,
		CurrentCapital:  session.CurrentCapital,
		Status:          session.Status,
		Difficulty:      session.Difficulty,
		HasActiveRound:  hasActiveRound,
	}, nil
}
