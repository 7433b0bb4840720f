package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter registers the routes. ws handles the websocket upgrade.
func NewRouter(h *Handler, ws gin.HandlerFunc, allowedOrigins []string, logger logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger), CORS(allowedOrigins))

	r.GET("/", h.Health)
	r.GET("/health", h.Health)
	r.POST("/start", h.Start)
	r.GET("/ws", ws)
	return r
}
