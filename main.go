package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"osrs-flipper/internal/api"
	"osrs-flipper/internal/config"
	"osrs-flipper/internal/database"
	"osrs-flipper/internal/logger"
	"osrs-flipper/internal/quant"
	"osrs-flipper/internal/services/flipper"
	"osrs-flipper/internal/services/predictor"
	"osrs-flipper/internal/services/wiki"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	tradingCfg, err := quant.LoadTradingConfig(cfg.TradingConfigPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load trading config")
	}

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	store := database.NewFlipStore(db)

	market := wiki.NewClient(cfg.WikiUserAgent, tradingCfg, log)
	pred := predictor.NewHTTPPredictor(cfg.PredictorURL, log)
	if pred == nil {
		log.Info("Predictor disabled, using neutral confidence")
	}

	suggester := flipper.NewSuggester(store, market, asPredictor(pred), tradingCfg, log)
	reconciler := flipper.NewReconciler(store, tradingCfg, log)
	handler := api.NewAPIHandler(suggester, reconciler, store, log)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(corsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	api.SetupRoutes(r.Group("/api/v1"), handler)

	log.WithField("port", cfg.Port).Info("Starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("Server failed")
	}
}

// asPredictor keeps a nil *HTTPPredictor from becoming a non-nil interface.
func asPredictor(p *predictor.HTTPPredictor) predictor.Predictor {
	if p == nil {
		return nil
	}
	return p
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
