package handlers

import (
	"net/http"

	"cardiactrader/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ToolHandler struct {
	toolService *services.ToolService
}

func NewToolHandler(toolService *services.ToolService) *ToolHandler {
	return &ToolHandler{
		toolService: toolService,
	}
}

type UseHintRequest struct {
	StockID uuid.UUID `json:"stock_id" binding:"required"`
}

type UseTimeBoostRequest struct {
	SecondsToAdd int `json:"seconds_to_add" binding:"required"`
}

// GET /api/v1/tools/:sessionId
func (th *ToolHandler) ListTools(c *gin.Context) {
	sessionID, ok := pathUUID(c, "sessionId")
	if !ok {
		return
	}

	tools, err := th.toolService.ListUnlocked(sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tools": tools,
		"count": len(tools),
	})
}

// POST /api/v1/tools/:sessionId/hint
func (th *ToolHandler) UseHint(c *gin.Context) {
	sessionID, ok := pathUUID(c, "sessionId")
	if !ok {
		return
	}

	var req UseHintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hint, err := th.toolService.UseHint(sessionID, req.StockID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, hint)
}

// POST /api/v1/tools/:sessionId/timeboost
func (th *ToolHandler) UseTimeBoost(c *gin.Context) {
	sessionID, ok := pathUUID(c, "sessionId")
	if !ok {
		return
	}

	var req UseTimeBoostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SecondsToAdd <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "seconds_to_add must be positive"})
		return
	}

	newDuration, err := th.toolService.UseTimeBoost(sessionID, req.SecondsToAdd)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"seconds_added":        req.SecondsToAdd,
		"new_duration_seconds": newDuration,
	})
}

// RegisterToolRoutes registers all tool routes
func RegisterToolRoutes(router *gin.RouterGroup, handler *ToolHandler) {
	tools := router.Group("/tools")
	{
		tools.GET("/:sessionId", handler.ListTools)
		tools.POST("/:sessionId/hint", handler.UseHint)
		tools.POST("/:sessionId/timeboost", handler.UseTimeBoost)
	}
}
