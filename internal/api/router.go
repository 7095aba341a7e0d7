package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/fpl-advisor/internal/api/handlers"
	"github.com/jstittsworth/fpl-advisor/internal/api/middleware"
	"github.com/jstittsworth/fpl-advisor/internal/providers"
	"github.com/jstittsworth/fpl-advisor/internal/services"
	"github.com/jstittsworth/fpl-advisor/pkg/config"
)

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, cfg *config.Config, cache *services.CacheService, fpl *providers.FPLClient, fetcher *services.DataFetcherService, ingestion *services.IngestionService, advisor *services.AdvisorService, logger *logrus.Logger) {
	authHandler := handlers.NewAuthHandler(fpl, cfg.JWTSecret, logger)
	playersHandler := handlers.NewPlayersHandler(fetcher)
	projectionsHandler := handlers.NewProjectionsHandler(fetcher, cache, logger)
	lineupHandler := handlers.NewLineupHandler(fetcher)
	transfersHandler := handlers.NewTransfersHandler(fetcher, ingestion, logger)
	liveHandler := handlers.NewLiveHandler(fetcher, cfg.OverallPopulation)
	advisorHandler := handlers.NewAdvisorHandler(fetcher, ingestion, advisor, logger)

	// Session tokens
	authHandler.RegisterRoutes(group)

	// Player pool and projections
	group.GET("/players", playersHandler.GetPlayers)
	group.GET("/players/:id", playersHandler.GetPlayer)
	group.GET("/projections", projectionsHandler.GetProjections)

	// Engine endpoints
	group.POST("/lineup/optimize", lineupHandler.OptimizeLineup)
	group.POST("/transfers/solve", transfersHandler.SolveTransfers)
	group.POST("/live/subs", liveHandler.ApplyAutoSubs)
	group.GET("/live/rank", liveHandler.EstimateRank)

	// Advisory report is tied to a manager entry, so it sits behind auth.
	auth := group.Group("")
	auth.Use(middleware.AuthRequired(cfg.JWTSecret))
	{
		auth.GET("/advisor/report", advisorHandler.GetReport)
	}
}
