package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cardiactrader/internal/apperrors"
	"cardiactrader/internal/config"
	gameDAO "cardiactrader/internal/dao/game"
	marketDAO "cardiactrader/internal/dao/market"
	toolsDAO "cardiactrader/internal/dao/tools"
	"cardiactrader/internal/models"
)

// HintResult is the range a hint narrows the hidden count down to.
type HintResult struct {
	LowerBound int    `json:"lower_bound"`
	UpperBound int    `json:"upper_bound"`
	Message    string `json:"message"`
}

// ToolService tracks consumable abilities unlocked by performance. Unlocks
// happen inside round completion, which already holds the session lock, so
// UnlockTool does not lock; the Use* operations do.
type ToolService struct {
	toolDAO    toolsDAO.ToolDAOInterface
	sessionDAO gameDAO.SessionDAOInterface
	stockDAO   marketDAO.StockDAOInterface
	cfg        config.GameConfig
	locks      *SessionLocks
}

// NewToolService creates a new tool service
func NewToolService(
	toolDAO toolsDAO.ToolDAOInterface,
	sessionDAO gameDAO.SessionDAOInterface,
	stockDAO marketDAO.StockDAOInterface,
	cfg config.GameConfig,
	locks *SessionLocks,
) *ToolService {
	return &ToolService{
		toolDAO:    toolDAO,
		sessionDAO: sessionDAO,
		stockDAO:   stockDAO,
		cfg:        cfg,
		locks:      locks,
	}
}

// UnlockTool grants one use of a tool, incrementing uses on repeated unlocks.
func (ts *ToolService) UnlockTool(sessionID uuid.UUID, toolType models.ToolType, roundNumber int) error {
	if _, err := ts.loadSession(sessionID); err != nil {
		return err
	}

	tool, err := ts.toolDAO.GetBySessionAndType(sessionID, toolType)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Unlocked %s for session %s at round %d", toolType, sessionID, roundNumber)
		return ts.toolDAO.Create(&models.UnlockedTool{
			GameSessionID:   sessionID,
			ToolType:        toolType,
			UnlockedAtRound: roundNumber,
			UsesRemaining:   1,
		})
	}
	if err != nil {
		return fmt.Errorf("failed to load tool: %w", err)
	}

	tool.UsesRemaining++
	return ts.toolDAO.Update(tool)
}

// IsAvailable reports whether the session has at least one use of the tool.
func (ts *ToolService) IsAvailable(sessionID uuid.UUID, toolType models.ToolType) (bool, error) {
	tool, err := ts.toolDAO.GetBySessionAndType(sessionID, toolType)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load tool: %w", err)
	}
	return tool.UsesRemaining > 0, nil
}

// ListUnlocked returns every tool the session currently holds.
func (ts *ToolService) ListUnlocked(sessionID uuid.UUID) ([]models.UnlockedTool, error) {
	if _, err := ts.loadSession(sessionID); err != nil {
		return nil, err
	}
	return ts.toolDAO.ListBySession(sessionID)
}

// UseHint consumes one hint use and narrows the stock's hidden count down to
// [count-2, count+2], clamped at a lower bound of 1.
func (ts *ToolService) UseHint(sessionID, stockID uuid.UUID) (*HintResult, error) {
	unlock := ts.locks.Lock(sessionID)
	defer unlock()

	stock, err := ts.stockDAO.GetByID(stockID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStockNotFound
		}
		return nil, fmt.Errorf("failed to load stock: %w", err)
	}
	if stock.HiddenCount == nil {
		return nil, &apperrors.InvalidStateError{Reason: "stock has no hidden value yet"}
	}

	if err := ts.consumeUse(sessionID, models.ToolTypeHint); err != nil {
		return nil, err
	}

	lower := *stock.HiddenCount - 2
	if lower < 1 {
		lower = 1
	}
	upper := *stock.HiddenCount + 2

	return &HintResult{
		LowerBound: lower,
		UpperBound: upper,
		Message:    fmt.Sprintf("The heart count is between %d and %d", lower, upper),
	}, nil
}

// UseTimeBoost consumes one time-boost use and returns the new round duration:
// the difficulty's base duration plus the added seconds.
func (ts *ToolService) UseTimeBoost(sessionID uuid.UUID, secondsToAdd int) (int, error) {
	unlock := ts.locks.Lock(sessionID)
	defer unlock()

	session, err := ts.loadSession(sessionID)
	if err != nil {
		return 0, err
	}

	if err := ts.consumeUse(sessionID, models.ToolTypeTimeBoost); err != nil {
		return 0, err
	}

	return ts.cfg.RoundDurationSeconds[session.Difficulty] + secondsToAdd, nil
}

// consumeUse decrements one use, deleting the record when it hits zero.
func (ts *ToolService) consumeUse(sessionID uuid.UUID, toolType models.ToolType) error {
	tool, err := ts.toolDAO.GetBySessionAndType(sessionID, toolType)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrToolNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load tool: %w", err)
	}
	if tool.UsesRemaining <= 0 {
		return apperrors.ErrToolNotFound
	}

	tool.UsesRemaining--
	if tool.UsesRemaining == 0 {
		return ts.toolDAO.Delete(tool)
	}
	return ts.toolDAO.Update(tool)
}

func (ts *ToolService) loadSession(sessionID uuid.UUID) (*models.GameSession, error) {
	session, err := ts.sessionDAO.GetByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}
