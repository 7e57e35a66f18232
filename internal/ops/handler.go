package ops

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"dramahub/internal/catalog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // feed is token-guarded, origin does not matter
	},
}

type Handler struct {
	Store  *catalog.Store
	Hub    *Hub
	Tokens TokenService
	Key    string // shared ops key exchanged for a JWT; empty disables the protected surface
	Log    *zap.SugaredLogger
}

func NewHandler(store *catalog.Store, hub *Hub, tokens TokenService, key string, log *zap.SugaredLogger) *Handler {
	return &Handler{Store: store, Hub: hub, Tokens: tokens, Key: key, Log: log}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)
	r.GET("/ready", h.ready)
	r.POST("/auth/token", h.token)

	protected := r.Group("/ops")
	protected.Use(AuthMiddleware(h.Tokens))
	protected.GET("/stats", h.stats)
	protected.GET("/ws", h.feed)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ready",
		"dramas":         h.Store.Size(),
		"episodes":       h.Store.TotalEpisodes(),
		"feed_clients":   h.Hub.Count(),
		"ops_configured": h.Key != "",
	})
}

type tokenReq struct {
	Key string `json:"key"`
}

func (h *Handler) token(c *gin.Context) {
	if h.Key == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "ops access not configured"})
		return
	}

	var req tokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Key), []byte(h.Key)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid key"})
		return
	}

	token, exp, err := h.Tokens.Sign("opsctl")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": exp.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"dramas":       h.Store.Size(),
		"episodes":     h.Store.TotalEpisodes(),
		"feed_clients": h.Hub.Count(),
	})
}

func (h *Handler) feed(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	h.Hub.Add(ws)
	h.Log.Infow("feed client connected", "clients", h.Hub.Count())

	_ = ws.WriteMessage(
		websocket.TextMessage,
		[]byte(`{"type":"welcome","feed":"ingest"}`+"\n"),
	)

	// Keep the connection open; inbound frames are ignored.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	h.Hub.Remove(ws)
	h.Log.Infow("feed client disconnected", "clients", h.Hub.Count())
}
