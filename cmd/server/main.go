package main

import (
	"log"
	"math/rand"
	"time"

	"cardiactrader/internal/config"
	"cardiactrader/internal/database"
	gameDAO "cardiactrader/internal/dao/game"
	marketDAO "cardiactrader/internal/dao/market"
	tradingDAO "cardiactrader/internal/dao/trading"
	toolsDAO "cardiactrader/internal/dao/tools"
	marketEngine "cardiactrader/internal/engines/market"
	tradingEngine "cardiactrader/internal/engines/trading"
	"cardiactrader/internal/handlers"
	"cardiactrader/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to database
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run database migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// CORS middleware for development
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Player-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	db := database.GetDB()

	// Initialize DAOs
	sessionDAO := gameDAO.NewSessionDAO(db)
	roundDAO := gameDAO.NewRoundDAO(db)
	stockDAO := marketDAO.NewStockDAO(db)
	holdingDAO := tradingDAO.NewHoldingDAO(db)
	transactionDAO := tradingDAO.NewTransactionDAO(db)
	toolDAO := toolsDAO.NewToolDAO(db)

	// Initialize engines
	pricingEngine := marketEngine.NewPricingEngine(cfg.Game.HeartUnitValue,
		rand.New(rand.NewSource(time.Now().UnixNano())))
	tradeEngine := tradingEngine.NewTradeEngine(sessionDAO, stockDAO, holdingDAO, transactionDAO, db)

	// Initialize services
	locks := services.NewSessionLocks()
	heartService := services.NewHeartService(cfg.HeartAPIURL, cfg.HeartAPITimeout)
	marketService := services.NewMarketService(sessionDAO, stockDAO, holdingDAO, pricingEngine, heartService, cfg.Game)
	tradingService := services.NewTradingService(sessionDAO, stockDAO, holdingDAO, transactionDAO, tradeEngine, pricingEngine, locks)
	toolService := services.NewToolService(toolDAO, sessionDAO, stockDAO, cfg.Game, locks)
	gameService := services.NewGameService(sessionDAO, roundDAO, marketService, tradingService, toolService, cfg.Game, locks, db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	gameHandler := handlers.NewGameHandler(gameService)
	marketHandler := handlers.NewMarketHandler(marketService)
	tradingHandler := handlers.NewTradingHandler(tradingService)
	toolHandler := handlers.NewToolHandler(toolService)

	// Health check endpoint
	r.GET("/health", healthHandler.Health)

	// API routes group
	api := r.Group("/api/v1")
	{
		api.GET("/health", healthHandler.Health)

		handlers.RegisterGameRoutes(api, gameHandler)
		handlers.RegisterMarketRoutes(api, marketHandler)
		handlers.RegisterTradingRoutes(api, tradingHandler)
		handlers.RegisterToolRoutes(api, toolHandler)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
