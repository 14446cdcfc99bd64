package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Foysal-Munsy/careerostad-messaging/internal/auth"
	"github.com/Foysal-Munsy/careerostad-messaging/internal/config"
	"github.com/Foysal-Munsy/careerostad-messaging/internal/core"
)

// NewServer builds the HTTP server: auth endpoints, the message REST
// API, and the websocket push channel.
func NewServer(gateway *core.Gateway, registry *core.Registry, authService *auth.Service, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	apiHandlers := NewAPIHandlers(authService, logger)
	messageHandlers := NewMessageHandlers(gateway, logger)

	api := router.Group("/api")
	api.POST("/register", apiHandlers.Register)
	api.POST("/login", apiHandlers.Login)

	authed := api.Group("", AuthMiddleware(authService, logger))
	authed.POST("/messages", messageHandlers.Send)
	authed.GET("/messages", messageHandlers.List)
	authed.GET("/conversations", messageHandlers.Conversations)

	router.GET("/ws", gin.WrapH(NewWSHandler(registry, authService, cfg.WSMessageRateLimit, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
