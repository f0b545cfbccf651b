package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/krishimitra/agrichat/internal/models"
)

type TranscriptRepository interface {
	InsertChunk(ctx context.Context, c *models.TranscriptChunk) error
	UpdateSTT(ctx context.Context, channelID string, chunkIndex int64, transcript string, confidence float64, status string) error
	UpdateAnswer(ctx context.Context, channelID string, chunkIndex int64, answer string, wasAccepted bool, status string, processingMS int64) error
	ListByChannel(ctx context.Context, channelID string, limit int64) ([]models.TranscriptChunk, error)
}

type transcriptRepo struct {
	col *mongo.Collection
}

func NewTranscriptRepo(db *mongo.Database) TranscriptRepository {
	return &transcriptRepo{col: db.Collection("transcript_chunks")}
}

func (r *transcriptRepo) InsertChunk(ctx context.Context, c *models.TranscriptChunk) error {
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, c)
	return err
}

func (r *transcriptRepo) UpdateSTT(ctx context.Context, channelID string, chunkIndex int64, transcript string, confidence float64, status string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"channel_id": channelID, "chunk_index": chunkIndex},
		bson.M{"$set": bson.M{
			"transcript":     transcript,
			"stt_confidence": confidence,
			"stt_status":     status,
		}},
	)
	return err
}

func (r *transcriptRepo) UpdateAnswer(ctx context.Context, channelID string, chunkIndex int64, answer string, wasAccepted bool, status string, processingMS int64) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"channel_id": channelID, "chunk_index": chunkIndex},
		bson.M{"$set": bson.M{
			"answer":             answer,
			"was_accepted":       wasAccepted,
			"answer_status":      status,
			"processing_time_ms": processingMS,
		}},
	)
	return err
}

func (r *transcriptRepo) ListByChannel(ctx context.Context, channelID string, limit int64) ([]models.TranscriptChunk, error) {
	if limit <= 0 {
		limit = 200
	}

	cur, err := r.col.Find(ctx,
		bson.M{"channel_id": channelID},
		options.Find().
			SetSort(bson.D{{Key: "chunk_index", Value: 1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.TranscriptChunk
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
