package handlers

import (
	"net/http"
	"strconv"

	"cardiactrader/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TradingHandler struct {
	tradingService *services.TradingService
}

func NewTradingHandler(tradingService *services.TradingService) *TradingHandler {
	return &TradingHandler{
		tradingService: tradingService,
	}
}

type TradeRequest struct {
	StockID uuid.UUID `json:"stock_id" binding:"required"`
	Shares  int       `json:"shares" binding:"required"`
}

// POST /api/v1/trading/:sessionId/buy
func (th *TradingHandler) Buy(c *gin.Context) {
	sessionID, ok := pathUUID(c, "sessionId")
	if !ok {
		return
	}

	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := th.tradingService.Buy(sessionID, req.StockID, req.Shares)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, receipt)
}

// POST /api/v1/trading/:sessionId/sell
func (th *TradingHandler) Sell(c *gin.Context) {
	sessionID, ok := pathUUID(c, "sessionId")
	if !ok {
		return
	}

	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := th.tradingService.Sell(sessionID, req.StockID, req.Shares)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, receipt)
}

// GET /api/v1/trading/:sessionId/portfolio
func (th *TradingHandler) GetPortfolio(c *gin.Context) {
	sessionID, ok := pathUUID(c, "sessionId")
	if !ok {
		return
	}

	portfolio, err := th.tradingService.GetPortfolio(sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, portfolio)
}

// GET /api/v1/trading/:sessionId/transactions
func (th *TradingHandler) GetTransactions(c *gin.Context) {
	sessionID, ok := pathUUID(c, "sessionId")
	if !ok {
		return
	}

	limitStr := c.DefaultQuery("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 50
	}

	transactions, err := th.tradingService.GetTransactions(sessionID, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// RegisterTradingRoutes registers all trading routes
func RegisterTradingRoutes(router *gin.RouterGroup, handler *TradingHandler) {
	trading := router.Group("/trading")
	{
		trading.POST("/:sessionId/buy", handler.Buy)
		trading.POST("/:sessionId/sell", handler.Sell)
		trading.GET("/:sessionId/portfolio", handler.GetPortfolio)
		trading.GET("/:sessionId/transactions", handler.GetTransactions)
	}
}
