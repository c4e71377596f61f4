package api

import (
	"github.com/gin-gonic/gin"
	"github.com/ollie/capvote/internal/api/handler"
	"github.com/ollie/capvote/internal/api/middleware"
	"github.com/ollie/capvote/internal/config"
	"github.com/ollie/capvote/internal/logger"
	"github.com/ollie/capvote/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	captionService *service.CaptionService,
	voteService *service.VoteService,
	pipelineBackend service.PipelineBackend,
	cfg *config.Config,
	log *logger.Logger,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	captionHandler := handler.NewCaptionHandler(captionService, voteService)
	voteHandler := handler.NewVoteHandler(voteService)
	pipelineHandler := handler.NewPipelineHandler(pipelineBackend)

	optionalAuth := middleware.Auth(cfg.Auth.JWTSecret, false)
	requiredAuth := middleware.Auth(cfg.Auth.JWTSecret, true)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/captions", optionalAuth, captionHandler.List)
		v1.GET("/captions/:id", optionalAuth, captionHandler.Get)
		v1.POST("/captions/:id/vote", requiredAuth, voteHandler.Submit)
	}

	// Pipeline proxy routes; the bearer token is validated here and then
	// forwarded upstream by the remote backend.
	pipelineGroup := r.Group("/api/pipeline", requiredAuth)
	{
		pipelineGroup.POST("/generate-presigned-url", pipelineHandler.GeneratePresignedURL)
		pipelineGroup.POST("/upload-image-from-url", pipelineHandler.RegisterImage)
		pipelineGroup.POST("/generate-captions", pipelineHandler.GenerateCaptions)
	}

	return r
}
