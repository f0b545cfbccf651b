package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/krishimitra/agrichat/internal/api/handlers"
	"github.com/krishimitra/agrichat/internal/api/middleware"
)

type Deps struct {
	Chat         *handlers.ChatHandler
	Conversation *handlers.ConversationHandler
	Media        *handlers.MediaHandler
	WS           *handlers.WSHandler

	// RequireAuth wraps everything but /ping behind bearer-token auth.
	RequireAuth bool
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	g := r.Group("/")
	if d.RequireAuth {
		g.Use(middleware.JWTAuth())
	}

	g.POST("/chat", d.Chat.Submit)

	g.GET("/conversation", d.Conversation.List)
	g.POST("/conversation/clear", d.Conversation.Clear)

	g.POST("/audio", d.Media.Audio)
	g.POST("/upload", d.Media.Upload)

	// WebSocket (realtime voice)
	if d.WS != nil {
		g.GET("/ws/chat", d.WS.ChatWS)
	}
}
