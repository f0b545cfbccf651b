package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/krishimitra/agrichat/internal/services"
	"github.com/krishimitra/agrichat/internal/utils"
	"github.com/krishimitra/agrichat/internal/workers"
)

// WSHandler is the realtime voice front door: audio chunks come in over the
// socket, go onto the Redis stream for the worker pool, and transcripts plus
// answers come back over the same socket via pub/sub.
type WSHandler struct {
	transcripts services.TranscriptService
	redis       *redis.Client
	upgrader    websocket.Upgrader
	log         *logrus.Logger
}

func NewWSHandler(transcripts services.TranscriptService, rdb *redis.Client, log *logrus.Logger) *WSHandler {
	if log == nil {
		log = logrus.New()
	}
	return &WSHandler{
		transcripts: transcripts,
		redis:       rdb,
		log:         log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsClientMsg struct {
	Type        string `json:"type"` // "audio_chunk"
	ChunkIndex  int64  `json:"chunk_index"`
	AudioBase64 string `json:"audio_base64"`
	AudioURL    string `json:"audio_url"`
	Language    string `json:"language"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (h *WSHandler) ChatWS(c *gin.Context) {
	if h.redis == nil || h.transcripts == nil {
		writeError(c, utils.E(utils.CodeUnavailable, "WSHandler.ChatWS", "realtime voice is not configured", nil))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	ws := &wsConn{c: conn}
	defer conn.Close()

	channelID := uuid.NewString()
	log := h.log.WithField("channel_id", channelID)

	ready, _ := json.Marshal(map[string]any{"type": "ready", "channel_id": channelID})
	if err := ws.writeText(ready); err != nil {
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// forward worker output for this channel back to the socket
	sub := h.redis.Subscribe(ctx,
		"chat:"+channelID+":response",
		"chat:"+channelID+":status",
	)
	defer sub.Close()

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if err := ws.writeText([]byte(msg.Payload)); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg wsClientMsg
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Type != "audio_chunk" {
			continue
		}
		if msg.ChunkIndex <= 0 || (msg.AudioBase64 == "" && msg.AudioURL == "") {
			continue
		}

		var audioURL, audioB64 *string
		if msg.AudioURL != "" {
			audioURL = &msg.AudioURL
		}
		if msg.AudioBase64 != "" {
			audioB64 = &msg.AudioBase64
		}

		if _, err := h.transcripts.InsertAudioChunk(ctx, channelID, msg.ChunkIndex, msg.Language, audioURL, audioB64); err != nil {
			log.WithError(err).Warn("failed to buffer audio chunk")
			continue
		}

		if err := h.redis.XAdd(ctx, &redis.XAddArgs{
			Stream: workers.AudioStream,
			Values: map[string]any{
				"channel_id":   channelID,
				"chunk_index":  msg.ChunkIndex,
				"language":     msg.Language,
				"audio_base64": msg.AudioBase64,
				"audio_url":    msg.AudioURL,
			},
		}).Err(); err != nil {
			log.WithError(err).Error("failed to enqueue audio chunk")
		}
	}
}
