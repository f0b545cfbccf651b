package workers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/krishimitra/agrichat/internal/chat"
	"github.com/krishimitra/agrichat/internal/providers/stt"
	"github.com/krishimitra/agrichat/internal/services"
	"github.com/krishimitra/agrichat/internal/utils"
)

// AudioStream is the Redis stream the websocket handler feeds.
const AudioStream = "audio:stream"

// AudioWorkerPool consumes audio chunks from the stream, transcribes them,
// runs the transcript through the gated pipeline, and publishes progress and
// the final answer on the chunk's channel.
type AudioWorkerPool struct {
	Redis       *redis.Client
	Transcripts services.TranscriptService
	Chat        *chat.Service
	STT         stt.Provider
	NumWorkers  int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *AudioWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Transcripts == nil || p.Chat == nil || p.STT == nil {
		return errors.New("AudioWorkerPool missing dependency: Redis/Transcripts/Chat/STT must be set")
	}
	if p.Stream == "" {
		p.Stream = AudioStream
	}
	if p.Group == "" {
		p.Group = "audio-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 5
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *AudioWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *AudioWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		v, ok := msg.Values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	channelID := getStr("channel_id")
	chunkIndexStr := getStr("chunk_index")
	if channelID == "" || chunkIndexStr == "" {
		return
	}
	chunkIndex, _ := strconv.ParseInt(chunkIndexStr, 10, 64)

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":    msg.ID,
		"channel_id":  channelID,
		"chunk_index": chunkIndex,
	})

	respCh := "chat:" + channelID + ":response"
	statusCh := "chat:" + channelID + ":status"

	language := getStr("language")
	sttLanguage := utils.NormalizeLanguage(language)

	publishStatus := func(status, message string) {
		payload, _ := json.Marshal(map[string]any{
			"type":        "status",
			"status":      status,
			"message":     message,
			"chunk_index": chunkIndex,
		})
		_ = p.Redis.Publish(ctx, statusCh, string(payload)).Err()
	}

	// Fetch audio
	var audioBytes []byte
	if b64 := getStr("audio_base64"); b64 != "" {
		raw := b64
		if i := strings.Index(raw, ","); i >= 0 {
			raw = raw[i+1:] // strip data:...;base64,
		}
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			log.WithError(err).Warn("base64 decode failed")
			publishStatus("failed", "invalid audio_base64")
			return
		}
		audioBytes = decoded
	} else if url := getStr("audio_url"); url != "" {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			log.WithError(err).Warn("audio_url fetch failed")
			publishStatus("failed", "failed to fetch audio_url")
			return
		}
		defer resp.Body.Close()

		const maxBytes = 10 << 20
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
		if len(body) == 0 {
			publishStatus("failed", "empty audio")
			return
		}
		audioBytes = body
	} else {
		return
	}

	// STT
	_ = p.Transcripts.MarkSTT(ctx, channelID, chunkIndex, "", 0, "processing")
	publishStatus("processing", "stt processing")

	text, conf, err := p.STT.Transcribe(ctx, audioBytes, sttLanguage)
	if err != nil {
		log.WithError(err).Error("stt failed")
		_ = p.Transcripts.MarkSTT(ctx, channelID, chunkIndex, "", 0, "failed")
		publishStatus("failed", "stt failed")
		return
	}
	if strings.TrimSpace(text) == "" {
		_ = p.Transcripts.MarkSTT(ctx, channelID, chunkIndex, "", conf, "failed")
		publishStatus("failed", "could not understand the audio")
		return
	}

	_ = p.Transcripts.MarkSTT(ctx, channelID, chunkIndex, text, conf, "done")
	sttPayload, _ := json.Marshal(map[string]any{
		"type":        "transcript",
		"chunk_index": chunkIndex,
		"text":        text,
		"confidence":  conf,
	})
	_ = p.Redis.Publish(ctx, respCh, string(sttPayload)).Err()

	// Gated pipeline
	start := time.Now()
	_ = p.Transcripts.MarkAnswer(ctx, channelID, chunkIndex, "", false, "processing", 0)
	publishStatus("processing", "generating answer")

	res, err := p.Chat.SubmitTranscript(ctx, text, language)
	if err != nil {
		log.WithError(err).Error("pipeline failed")
		_ = p.Transcripts.MarkAnswer(ctx, channelID, chunkIndex, "", false, "failed", time.Since(start).Milliseconds())
		publishStatus("failed", "pipeline failed")
		return
	}

	procMS := time.Since(start).Milliseconds()
	_ = p.Transcripts.MarkAnswer(ctx, channelID, chunkIndex, res.DisplayText, res.WasAccepted, "done", procMS)

	donePayload, _ := json.Marshal(map[string]any{
		"type":               "answer",
		"chunk_index":        chunkIndex,
		"reply":              res.DisplayText,
		"was_accepted":       res.WasAccepted,
		"processing_time_ms": procMS,
	})
	_ = p.Redis.Publish(ctx, respCh, string(donePayload)).Err()
	publishStatus("done", "chunk processed")
}
