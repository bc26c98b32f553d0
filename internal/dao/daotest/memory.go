// Package daotest provides in-memory DAO implementations for tests that
// exercise engines and services without a database. The WithTx variants
// ignore the transaction handle; tests pair them with RunnerFunc below.
package daotest

import (
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cardiactrader/internal/models"
)

// Runner satisfies the transaction-runner contract by invoking the function
// with a nil handle. Memory DAOs never dereference it.
type Runner struct{}

func (Runner) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	return fc(nil)
}

// SessionStore is an in-memory session DAO.
type SessionStore struct {
	Sessions map[uuid.UUID]models.GameSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{Sessions: make(map[uuid.UUID]models.GameSession)}
}

func (s *SessionStore) Create(session *models.GameSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}
	s.Sessions[session.ID] = *session
	return nil
}

func (s *SessionStore) Update(session *models.GameSession) error {
	if _, ok := s.Sessions[session.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.Sessions[session.ID] = *session
	return nil
}

func (s *SessionStore) GetByID(sessionID uuid.UUID) (*models.GameSession, error) {
	session, ok := s.Sessions[sessionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &session, nil
}

func (s *SessionStore) GetActiveByPlayer(playerID uuid.UUID) ([]models.GameSession, error) {
	var out []models.GameSession
	for _, session := range s.Sessions {
		if session.PlayerID == playerID && session.Status == models.GameSessionStatusActive {
			out = append(out, session)
		}
	}
	return out, nil
}

func (s *SessionStore) GetLatestActiveByPlayer(playerID uuid.UUID) (*models.GameSession, error) {
	active, _ := s.GetActiveByPlayer(playerID)
	if len(active) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].StartedAt.After(active[j].StartedAt)
	})
	latest := active[0]
	return &latest, nil
}

func (s *SessionStore) UpdateWithTx(tx *gorm.DB, session *models.GameSession) error {
	return s.Update(session)
}

// RoundStore is an in-memory round DAO.
type RoundStore struct {
	Rounds map[uuid.UUID]models.Round
}

func NewRoundStore() *RoundStore {
	return &RoundStore{Rounds: make(map[uuid.UUID]models.Round)}
}

func (s *RoundStore) Create(round *models.Round) error {
	if round.ID == uuid.Nil {
		round.ID = uuid.New()
	}
	if round.StartedAt.IsZero() {
		round.StartedAt = time.Now()
	}
	s.Rounds[round.ID] = *round
	return nil
}

func (s *RoundStore) Update(round *models.Round) error {
	if _, ok := s.Rounds[round.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.Rounds[round.ID] = *round
	return nil
}

func (s *RoundStore) GetBySessionAndNumber(sessionID uuid.UUID, roundNumber int) (*models.Round, error) {
	for _, round := range s.Rounds {
		if round.GameSessionID == sessionID && round.RoundNumber == roundNumber {
			r := round
			return &r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *RoundStore) GetActiveBySession(sessionID uuid.UUID) (*models.Round, error) {
	for _, round := range s.Rounds {
		if round.GameSessionID == sessionID && round.Status == models.RoundStatusActive {
			r := round
			return &r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *RoundStore) ListBySession(sessionID uuid.UUID) ([]models.Round, error) {
	var out []models.Round
	for _, round := range s.Rounds {
		if round.GameSessionID == sessionID {
			out = append(out, round)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoundNumber < out[j].RoundNumber })
	return out, nil
}

func (s *RoundStore) UpdateWithTx(tx *gorm.DB, round *models.Round) error {
	return s.Update(round)
}

// StockStore is an in-memory stock DAO.
type StockStore struct {
	Stocks map[uuid.UUID]models.Stock
}

func NewStockStore() *StockStore {
	return &StockStore{Stocks: make(map[uuid.UUID]models.Stock)}
}

func (s *StockStore) Create(stock *models.Stock) error {
	if stock.ID == uuid.Nil {
		stock.ID = uuid.New()
	}
	s.Stocks[stock.ID] = *stock
	return nil
}

func (s *StockStore) Update(stock *models.Stock) error {
	if _, ok := s.Stocks[stock.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.Stocks[stock.ID] = *stock
	return nil
}

func (s *StockStore) GetByID(stockID uuid.UUID) (*models.Stock, error) {
	stock, ok := s.Stocks[stockID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &stock, nil
}

func (s *StockStore) GetBySymbol(symbol string) (*models.Stock, error) {
	for _, stock := range s.Stocks {
		if stock.Symbol == symbol {
			st := stock
			return &st, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *StockStore) ListAll() ([]models.Stock, error) {
	out := make([]models.Stock, 0, len(s.Stocks))
	for _, stock := range s.Stocks {
		out = append(out, stock)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// HoldingStore is an in-memory holding DAO.
type HoldingStore struct {
	Holdings map[uuid.UUID]models.Holding
}

func NewHoldingStore() *HoldingStore {
	return &HoldingStore{Holdings: make(map[uuid.UUID]models.Holding)}
}

func (s *HoldingStore) GetBySessionAndStock(sessionID, stockID uuid.UUID) (*models.Holding, error) {
	for _, holding := range s.Holdings {
		if holding.GameSessionID == sessionID && holding.StockID == stockID {
			h := holding
			return &h, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *HoldingStore) ListBySession(sessionID uuid.UUID) ([]models.Holding, error) {
	var out []models.Holding
	for _, holding := range s.Holdings {
		if holding.GameSessionID == sessionID {
			out = append(out, holding)
		}
	}
	return out, nil
}

func (s *HoldingStore) CreateWithTx(tx *gorm.DB, holding *models.Holding) error {
	if holding.ID == uuid.Nil {
		holding.ID = uuid.New()
	}
	s.Holdings[holding.ID] = *holding
	return nil
}

func (s *HoldingStore) UpdateWithTx(tx *gorm.DB, holding *models.Holding) error {
	if _, ok := s.Holdings[holding.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.Holdings[holding.ID] = *holding
	return nil
}

func (s *HoldingStore) DeleteWithTx(tx *gorm.DB, holding *models.Holding) error {
	delete(s.Holdings, holding.ID)
	return nil
}

func (s *HoldingStore) GetBySessionAndStockWithTx(tx *gorm.DB, sessionID, stockID uuid.UUID) (*models.Holding, error) {
	return s.GetBySessionAndStock(sessionID, stockID)
}

// TransactionStore is an in-memory transaction DAO.
type TransactionStore struct {
	Transactions []models.Transaction
}

func NewTransactionStore() *TransactionStore {
	return &TransactionStore{}
}

func (s *TransactionStore) CreateWithTx(tx *gorm.DB, transaction *models.Transaction) error {
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}
	if transaction.Timestamp.IsZero() {
		transaction.Timestamp = time.Now()
	}
	s.Transactions = append(s.Transactions, *transaction)
	return nil
}

func (s *TransactionStore) ListBySession(sessionID uuid.UUID, limit int) ([]models.Transaction, error) {
	var out []models.Transaction
	for i := len(s.Transactions) - 1; i >= 0; i-- {
		if s.Transactions[i].GameSessionID == sessionID {
			out = append(out, s.Transactions[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// ToolStore is an in-memory tool DAO.
type ToolStore struct {
	Tools map[uuid.UUID]models.UnlockedTool
}

func NewToolStore() *ToolStore {
	return &ToolStore{Tools: make(map[uuid.UUID]models.UnlockedTool)}
}

func (s *ToolStore) Create(tool *models.UnlockedTool) error {
	if tool.ID == uuid.Nil {
		tool.ID = uuid.New()
	}
	s.Tools[tool.ID] = *tool
	return nil
}

func (s *ToolStore) Update(tool *models.UnlockedTool) error {
	if _, ok := s.Tools[tool.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.Tools[tool.ID] = *tool
	return nil
}

func (s *ToolStore) Delete(tool *models.UnlockedTool) error {
	delete(s.Tools, tool.ID)
	return nil
}

func (s *ToolStore) GetBySessionAndType(sessionID uuid.UUID, toolType models.ToolType) (*models.UnlockedTool, error) {
	for _, tool := range s.Tools {
		if tool.GameSessionID == sessionID && tool.ToolType == toolType {
			t := tool
			return &t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *ToolStore) ListBySession(sessionID uuid.UUID) ([]models.UnlockedTool, error) {
	var out []models.UnlockedTool
	for _, tool := range s.Tools {
		if tool.GameSessionID == sessionID {
			out = append(out, tool)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ToolType < out[j].ToolType })
	return out, nil
}
