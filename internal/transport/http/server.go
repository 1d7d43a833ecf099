package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chatter-project/chatter-server/internal/config"
	"github.com/chatter-project/chatter-server/internal/core"
)

// NewServer builds the HTTP server exposing the session protocol and the
// WebSocket registration endpoint.
func NewServer(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(hub, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter wires the gin engine with every route.
func NewRouter(hub *core.Hub, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(LoggerMiddleware(logger), gin.Recovery())

	session := NewSessionHandlers(hub, logger)
	ws := NewWSHandler(hub, logger)

	router.GET("/health_check", session.HealthCheck)
	router.GET("/ws", ws.Serve)

	router.POST("/login", session.Login)
	router.POST("/create_room", session.CreateRoom)
	router.POST("/get_room", session.GetRoom)
	router.POST("/join_room", session.JoinRoom)
	router.POST("/send_msg", session.SendMsg)
	router.POST("/leave_room", session.LeaveRoom)
	router.POST("/exit_app", session.ExitApp)
	router.POST("/heartbeat", session.Heartbeat)

	return router
}
