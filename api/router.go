package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/ytfile-go/api/handlers"
	"github.com/yourusername/ytfile-go/api/middleware"
	"github.com/yourusername/ytfile-go/internal/app"
	"github.com/yourusername/ytfile-go/internal/domain"
	"github.com/yourusername/ytfile-go/pkg/logger"
)

// Dependencies are the services the HTTP API is built on
type Dependencies struct {
	Presenter      *app.Presenter
	History        *app.HistoryService
	InfoFetcher    domain.InfoFetcher
	DefaultSaveDir string
	LogsDir        string
	MultiLogger    *logger.MultiLogger
	Logger         *zap.Logger
}

// SetupRouter sets up the HTTP router and subscribes the event hub to the presenter
func SetupRouter(deps Dependencies) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.Logger(deps.Logger, deps.MultiLogger))
	router.Use(middleware.Recovery(deps.Logger, deps.MultiLogger))
	router.Use(middleware.CORS())

	healthHandler := handlers.NewHealthHandler(deps.Presenter)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	hub := handlers.NewEventHub(deps.Presenter.Snapshot, deps.Logger)
	deps.Presenter.Subscribe(hub.Broadcast)

	v1 := router.Group("/api/v1")
	{
		downloadHandler := handlers.NewDownloadHandler(deps.Presenter, deps.DefaultSaveDir, deps.Logger)
		v1.POST("/downloads", downloadHandler.Submit)
		v1.GET("/state", downloadHandler.State)
		v1.GET("/events/ws", hub.HandleWebSocket)

		if deps.InfoFetcher != nil {
			infoHandler := handlers.NewInfoHandler(deps.InfoFetcher, deps.Logger)
			v1.GET("/info", infoHandler.GetInfo)
		}

		if deps.History != nil {
			historyHandler := handlers.NewHistoryHandler(deps.History, deps.Logger)
			history := v1.Group("/history")
			{
				history.GET("", historyHandler.List)
				history.GET("/:id", historyHandler.Get)
				history.DELETE("/:id", historyHandler.Delete)
			}
		}

		logHandler := handlers.NewLogHandler(deps.LogsDir)
		logs := v1.Group("/logs")
		{
			logs.GET("/categories", logHandler.GetCategories)
			logs.GET("/:category", logHandler.GetLogs)
			logs.GET("/:category/search", logHandler.SearchLogs)
			logs.GET("/:category/export", logHandler.ExportLogs)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "not found"})
	})

	return router
}
