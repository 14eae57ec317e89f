package handler

import (
	"net/http"

	"pride-notify/internal/handler/api"
	"pride-notify/internal/handler/middleware"
	"pride-notify/internal/pkg/config"
	"pride-notify/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	logger *middleware.Logger,
	reportHandler *api.ReportHandler,
	dispatchHandler *api.DispatchHandler,
	sendHandler *api.SendHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, reportHandler, dispatchHandler, sendHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.Metrics())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, reportHandler *api.ReportHandler, dispatchHandler *api.DispatchHandler, sendHandler *api.SendHandler, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	logs := engine.Group("/api/logs")
	logs.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(jwt.RoleViewer))
	{
		addRoutes(logs, []route{
			{Method: http.MethodGet, Path: "/:variant", Handler: reportHandler.List},
			{Method: http.MethodGet, Path: "/:variant/export", Handler: reportHandler.Export},
		})
	}

	internal := engine.Group("/internal")
	{
		addRoutes(internal, []route{
			{
				Method:  http.MethodPost,
				Path:    "/dispatch/:category",
				Handler: dispatchHandler.Trigger,
				Mw:      []gin.HandlerFunc{authMiddleware.RequireAPIKey()},
			},
			{
				Method:  http.MethodPost,
				Path:    "/send/sms",
				Handler: sendHandler.SMS,
				Mw:      []gin.HandlerFunc{authMiddleware.RequireAPIKey()},
			},
			{
				Method:  http.MethodPost,
				Path:    "/send/email",
				Handler: sendHandler.Email,
				Mw:      []gin.HandlerFunc{authMiddleware.RequireAPIKey()},
			},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
