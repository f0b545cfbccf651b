package services

import (
	"context"
	"time"

	"github.com/krishimitra/agrichat/internal/models"
	mongorepo "github.com/krishimitra/agrichat/internal/repositories/mongo"
	"github.com/krishimitra/agrichat/internal/utils"
)

// TranscriptService does the status bookkeeping for audio chunks flowing
// through the async voice path.
type TranscriptService interface {
	InsertAudioChunk(ctx context.Context, channelID string, chunkIndex int64, language string, audioURL, audioBase64 *string) (*models.TranscriptChunk, error)
	MarkSTT(ctx context.Context, channelID string, chunkIndex int64, transcript string, confidence float64, status string) error
	MarkAnswer(ctx context.Context, channelID string, chunkIndex int64, answer string, wasAccepted bool, status string, processingMS int64) error
	ListByChannel(ctx context.Context, channelID string, limit int64) ([]models.TranscriptChunk, error)
}

type transcriptService struct {
	chunks mongorepo.TranscriptRepository
	ttl    time.Duration
}

func NewTranscriptService(chunks mongorepo.TranscriptRepository, ttl time.Duration) TranscriptService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &transcriptService{chunks: chunks, ttl: ttl}
}

func (s *transcriptService) InsertAudioChunk(ctx context.Context, channelID string, chunkIndex int64, language string, audioURL, audioBase64 *string) (*models.TranscriptChunk, error) {
	const op = "TranscriptService.InsertAudioChunk"

	if channelID == "" || chunkIndex <= 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "channel_id is required and chunk_index must be > 0", nil)
	}

	now := time.Now().UTC()
	doc := &models.TranscriptChunk{
		ChannelID:   channelID,
		ChunkIndex:  chunkIndex,
		Language:    language,
		AudioURL:    audioURL,
		AudioBase64: audioBase64,

		STTStatus:    "pending",
		AnswerStatus: "pending",

		Timestamp: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.chunks.InsertChunk(ctx, doc); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to insert audio chunk", err)
	}
	return doc, nil
}

func (s *transcriptService) MarkSTT(ctx context.Context, channelID string, chunkIndex int64, transcript string, confidence float64, status string) error {
	const op = "TranscriptService.MarkSTT"

	if channelID == "" || chunkIndex <= 0 || status == "" {
		return utils.E(utils.CodeInvalidArgument, op, "channel_id, chunk_index (>0), and status are required", nil)
	}
	if err := s.chunks.UpdateSTT(ctx, channelID, chunkIndex, transcript, confidence, status); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update stt fields", err)
	}
	return nil
}

func (s *transcriptService) MarkAnswer(ctx context.Context, channelID string, chunkIndex int64, answer string, wasAccepted bool, status string, processingMS int64) error {
	const op = "TranscriptService.MarkAnswer"

	if channelID == "" || chunkIndex <= 0 || status == "" {
		return utils.E(utils.CodeInvalidArgument, op, "channel_id, chunk_index (>0), and status are required", nil)
	}
	if err := s.chunks.UpdateAnswer(ctx, channelID, chunkIndex, answer, wasAccepted, status, processingMS); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update answer fields", err)
	}
	return nil
}

func (s *transcriptService) ListByChannel(ctx context.Context, channelID string, limit int64) ([]models.TranscriptChunk, error) {
	const op = "TranscriptService.ListByChannel"

	if channelID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "channel_id is required", nil)
	}
	out, err := s.chunks.ListByChannel(ctx, channelID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list transcript chunks", err)
	}
	return out, nil
}
