package server

import (
	"time"

	httpHandler "viewtube/interfaces/http"
	"viewtube/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries what the router needs from configuration
type RouterConfig struct {
	SecretKey    string
	AllowOrigins []string
}

func InitiateRouter(
	cfg RouterConfig,
	videoHandler httpHandler.IVideoHandler,
	healthHandler httpHandler.IHealthHandler,
	stream gin.HandlerFunc,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler.Healthz)

	api := router.Group("api")
	{
		api.GET("/videos", videoHandler.ListVideos)
		api.GET("/videos/:id", videoHandler.GetVideo)
		api.GET("/selected", videoHandler.GetSelected)
		if stream != nil {
			api.GET("/stream", stream)
		}
	}

	secured := api.Group("")
	secured.Use(middleware.Auth(cfg.SecretKey))
	{
		secured.POST("/videos", videoHandler.CreateVideo)
		secured.POST("/videos/reload", videoHandler.Reload)
		secured.PATCH("/videos/:id", videoHandler.UpdateVideo)
		secured.DELETE("/videos/:id", videoHandler.DeleteVideo)
		secured.POST("/videos/:id/like", videoHandler.LikeVideo)
		secured.POST("/videos/:id/view", videoHandler.ViewVideo)
		secured.PUT("/selected/:id", videoHandler.SelectVideo)
		secured.DELETE("/selected", videoHandler.ClearSelected)
	}

	return router
}
