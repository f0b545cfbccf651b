package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/krishimitra/agrichat/internal/chat"
)

type ConversationHandler struct {
	svc *chat.Service
}

func NewConversationHandler(svc *chat.Service) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// List returns the whole log in chronological order.
func (h *ConversationHandler) List(c *gin.Context) {
	rows, err := h.svc.GetConversation(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(rows),
		"turns": rows,
	})
}

// Clear empties the log. Safe to call on an already-empty log.
func (h *ConversationHandler) Clear(c *gin.Context) {
	if err := h.svc.ClearConversation(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}
