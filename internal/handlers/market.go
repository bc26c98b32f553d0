package handlers

import (
	"net/http"

	"cardiactrader/internal/services"

	"github.com/gin-gonic/gin"
)

type MarketHandler struct {
	marketService *services.MarketService
}

func NewMarketHandler(marketService *services.MarketService) *MarketHandler {
	return &MarketHandler{
		marketService: marketService,
	}
}

// GET /api/v1/market/:sessionId/stocks
func (mh *MarketHandler) GetStocks(c *gin.Context) {
	sessionID, ok := pathUUID(c, "sessionId")
	if !ok {
		return
	}

	stocks, err := mh.marketService.GetAvailableStocks(sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stocks": stocks,
		"count":  len(stocks),
	})
}

// RegisterMarketRoutes registers all market data routes
func RegisterMarketRoutes(router *gin.RouterGroup, handler *MarketHandler) {
	market := router.Group("/market")
	{
		market.GET("/:sessionId/stocks", handler.GetStocks)
	}
}
