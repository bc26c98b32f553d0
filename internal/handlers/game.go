package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"cardiactrader/internal/models"
	"cardiactrader/internal/services"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	gameService *services.GameService
}

func NewGameHandler(gameService *services.GameService) *GameHandler {
	return &GameHandler{
		gameService: gameService,
	}
}

type StartGameRequest struct {
	Difficulty string `json:"difficulty"`
}

// POST /api/v1/game/start
func (gh *GameHandler) StartGame(c *gin.Context) {
	player, ok := playerID(c)
	if !ok {
		return
	}

	// Empty body means default difficulty
	var req StartGameRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	difficulty := models.DifficultyLevel(req.Difficulty)
	if req.Difficulty != "" && !difficulty.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "difficulty must be one of: easy, medium, hard"})
		return
	}

	session, err := gh.gameService.StartNewGame(player, difficulty)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// POST /api/v1/game/:sessionId/round/start
func (gh *GameHandler) StartRound(c *gin.Context) {
	sessionID, ok := pathUUID(c, "sessionId")
	if !ok {
		return
	}

	round, err := gh.gameService.StartRound(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, round)
}

// POST /api/v1/game/:sessionId/round/:roundNumber/complete
func (gh *GameHandler) CompleteRound(c *gin.Context) {
	sessionID, ok := pathUUID(c, "sessionId")
	if !ok {
		return
	}

	roundNumber, err := strconv.Atoi(c.Param("roundNumber"))
	if err != nil || roundNumber < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid roundNumber parameter"})
		return
	}

	result, err := gh.gameService.CompleteRound(sessionID, roundNumber)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GET /api/v1/game/current
func (gh *GameHandler) GetCurrentSession(c *gin.Context) {
	player, ok := playerID(c)
	if !ok {
		return
	}

	session, err := gh.gameService.GetCurrentSession(player)
	if err != nil {
		writeError(c, err)
		return
	}
	if session == nil {
		c.JSON(http.StatusOK, gin.H{"session": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session})
}

// POST /api/v1/game/abandon
func (gh *GameHandler) AbandonSessions(c *gin.Context) {
	player, ok := playerID(c)
	if !ok {
		return
	}

	if err := gh.gameService.AbandonActiveSessions(player); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Active sessions abandoned"})
}

// RegisterGameRoutes registers all game lifecycle routes
func RegisterGameRoutes(router *gin.RouterGroup, handler *GameHandler) {
	game := router.Group("/game")
	{
		game.POST("/start", handler.StartGame)
		game.GET("/current", handler.GetCurrentSession)
		game.POST("/abandon", handler.AbandonSessions)
		game.POST("/:sessionId/round/start", handler.StartRound)
		game.POST("/:sessionId/round/:roundNumber/complete", handler.CompleteRound)
	}
}
