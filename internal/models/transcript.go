package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TranscriptChunk tracks one audio chunk through the async voice path:
// received audio -> speech-to-text -> gated answer. Documents expire via the
// TTL index on ExpiresAt.
type TranscriptChunk struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChannelID  string             `bson:"channel_id" json:"channel_id"`
	ChunkIndex int64              `bson:"chunk_index" json:"chunk_index"`

	AudioURL    *string `bson:"audio_url,omitempty" json:"audio_url,omitempty"`
	AudioBase64 *string `bson:"audio_base64,omitempty" json:"audio_base64,omitempty"`
	Language    string  `bson:"language,omitempty" json:"language,omitempty"`

	Transcript    string  `bson:"transcript,omitempty" json:"transcript,omitempty"`
	STTStatus     string  `bson:"stt_status" json:"stt_status"` // pending|processing|done|failed
	STTConfidence float64 `bson:"stt_confidence,omitempty" json:"stt_confidence,omitempty"`

	AnswerStatus string `bson:"answer_status" json:"answer_status"` // pending|processing|done|failed
	Answer       string `bson:"answer,omitempty" json:"answer,omitempty"`
	WasAccepted  bool   `bson:"was_accepted,omitempty" json:"was_accepted,omitempty"`

	ProcessingTimeMS int64     `bson:"processing_time_ms,omitempty" json:"processing_time_ms,omitempty"`
	Timestamp        time.Time `bson:"timestamp" json:"timestamp"`

	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"` // for TTL index
}
