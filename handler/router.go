package handler

import (
	"io/fs"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tieubaoca/chatwidget/service"
)

const (
	EndPointIndex       = "/"
	EndPointStatic      = "/static"
	EndPointHealth      = "/health"
	EndPointAgent       = "/langroid/agent"
	EndPointCompletions = "/langroid/agent/completions"
	EndPointWebSocket   = "/langroid/agent/ws"
)

// SetupRouter wires every route of the chat server.
func SetupRouter(agents *service.AgentManager, assets fs.FS) (*gin.Engine, error) {
	corsHandler := NewCorsHandler()
	agentHandler := NewAgentHandler(agents)
	pageHandler := NewPageHandler(assets)
	wsService := service.NewWebSocketService(agents)

	static, err := pageHandler.Static()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger, corsHandler.CorsMiddleware)

	router.GET(EndPointIndex, pageHandler.ServeIndex)
	router.StaticFS(EndPointStatic, static)
	router.GET(EndPointHealth, agentHandler.HandleHealth)

	router.POST(EndPointAgent, agentHandler.HandleCreateAgent)
	router.POST(EndPointCompletions, agentHandler.HandleCompletions)
	router.GET(EndPointWebSocket, gin.WrapF(wsService.HandleChat))

	return router, nil
}

// requestLogger tags each request with an id and logs it once it is done.
func requestLogger(c *gin.Context) {
	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	c.Writer.Header().Set("X-Request-ID", id)

	start := time.Now()
	c.Next()

	log.WithFields(log.Fields{
		"request_id": id,
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"status":     c.Writer.Status(),
	}).WithDuration(time.Since(start)).Info("request")
}
