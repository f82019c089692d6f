package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aidra-health/aidra/internal/config"
	"github.com/aidra-health/aidra/internal/facility"
	"github.com/aidra-health/aidra/internal/handlers"
	wshandler "github.com/aidra-health/aidra/internal/handlers/websocket"
	"github.com/aidra-health/aidra/pkg/Logger"
	"github.com/aidra-health/aidra/pkg/assessor"
)

// Dependencies bundles everything the route handlers need.
type Dependencies struct {
	Assessor       assessor.Assessor
	FacilityClient *facility.Client
	WSHandler      *wshandler.Handler
	Registry       *wshandler.Registry
	Configs        *config.Settings
	Logger         *Logger.Logger
}

func NewServerDependencies(
	a assessor.Assessor,
	fc *facility.Client,
	ws *wshandler.Handler,
	registry *wshandler.Registry,
	cfg *config.Settings,
	logger *Logger.Logger,
) Dependencies {
	return Dependencies{
		Assessor:       a,
		FacilityClient: fc,
		WSHandler:      ws,
		Registry:       registry,
		Configs:        cfg,
		Logger:         logger,
	}
}

func InitializeRoutes(r *gin.Engine, dep Dependencies) {
	r.GET("/", func(ctx *gin.Context) { ctx.JSON(200, gin.H{"message": "Server healthy"}) })
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{
			"status":      "ok",
			"connections": dep.Registry.Count(),
		})
	})

	secret := dep.Configs.Auth.JWTSecret
	tokenTTL := time.Duration(dep.Configs.Auth.TokenTTLHours) * time.Hour
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}

	// Anonymous token issue for the consumer app
	r.POST("/api/v1/token", func(ctx *gin.Context) {
		token, userID, err := handlers.MintGuestToken(secret, tokenTTL)
		if err != nil {
			dep.Logger.Errorf("token mint failed: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Could not issue token"})
			return
		}
		ctx.JSON(http.StatusOK, handlers.TokenResponse{Token: token, UserID: userID})
	})

	consult := handlers.NewConsultHandler(dep.Assessor, dep.FacilityClient, dep.Logger)

	api := r.Group("/api/v1", handlers.AuthMiddleware(secret, dep.Logger))
	api.POST("/consult", consult.HandleConsult)
	api.GET("/facilities", consult.HandleFacilities)

	// Voice consultation websocket
	r.GET("/ws", handlers.AuthMiddleware(secret, dep.Logger), dep.WSHandler.HandleConnection)
}
