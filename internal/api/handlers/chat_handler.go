package handlers

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/krishimitra/agrichat/internal/chat"
	"github.com/krishimitra/agrichat/internal/providers/tts"
	"github.com/krishimitra/agrichat/internal/utils"
)

type ChatHandler struct {
	svc *chat.Service
	tts tts.Provider // nil when speak-back is not configured
	log *logrus.Logger
}

func NewChatHandler(svc *chat.Service, synth tts.Provider, log *logrus.Logger) *ChatHandler {
	if log == nil {
		log = logrus.New()
	}
	return &ChatHandler{svc: svc, tts: synth, log: log}
}

type ChatRequest struct {
	Message  string `json:"message" binding:"required"`
	Language string `json:"language"`
	Speak    bool   `json:"speak"`
}

type ChatResponse struct {
	Reply       string `json:"reply"`
	WasAccepted bool   `json:"was_accepted"`
	AudioBase64 string `json:"audio_base64,omitempty"`
}

// Submit runs one cycle of the pipeline for a typed message.
func (h *ChatHandler) Submit(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ChatHandler.Submit", "message is required", err))
		return
	}

	res, err := h.svc.SubmitUtterance(c.Request.Context(), req.Message, req.Language)
	if err != nil {
		writeError(c, err)
		return
	}

	out := ChatResponse{Reply: res.DisplayText, WasAccepted: res.WasAccepted}

	if req.Speak && h.tts != nil {
		lang := utils.NormalizeLanguage(req.Language)
		audio, err := h.tts.Synthesize(c.Request.Context(), res.DisplayText, lang)
		if err != nil {
			// reply still stands; speech is best effort
			h.log.WithError(err).Warn("speech synthesis failed")
		} else {
			out.AudioBase64 = base64.StdEncoding.EncodeToString(audio)
		}
	}

	c.JSON(http.StatusOK, out)
}
