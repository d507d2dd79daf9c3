package signal

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the relay server's HTTP surface: the websocket endpoint
// plus a small read-only REST API over the registry.
func NewRouter(s *Server) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"sessions": s.registry.Len(),
		})
	})

	r.GET("/api/sessions", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.registry.Snapshot())
	})

	r.GET("/ws", func(c *gin.Context) {
		s.HandleWebSocket(c.Writer, c.Request)
	})

	return r
}

// Start runs the relay server on addr until the listener fails.
func (s *Server) Start(addr string) error {
	return NewRouter(s).Run(addr)
}
