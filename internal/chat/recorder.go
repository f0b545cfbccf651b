package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/krishimitra/agrichat/internal/models"
)

// TurnStore is the ordered append-only conversation log. AppendPair must make
// both records visible together — readers never observe a half pair.
type TurnStore interface {
	AppendPair(ctx context.Context, user, assistant *models.Turn) error
	ListAll(ctx context.Context) ([]models.Turn, error)
	DeleteAll(ctx context.Context) error
}

// Recorder writes one (user, assistant) pair per cycle. The mutex makes the
// pair append a critical section so concurrent cycles never interleave their
// records, and keeps the sequence numbers monotonic.
type Recorder struct {
	store TurnStore

	mu  sync.Mutex
	seq int64
}

// NewRecorder seeds the sequence counter from whatever the store already
// holds.
func NewRecorder(ctx context.Context, store TurnStore) (*Recorder, error) {
	existing, err := store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return &Recorder{store: store, seq: int64(len(existing))}, nil
}

// RecordCycle appends the user record and then the assistant record.
// meta is attached to both records.
func (r *Recorder) RecordCycle(ctx context.Context, userText, assistantText string, meta datatypes.JSON) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	user := &models.Turn{
		ID:        uuid.NewString(),
		Role:      models.RoleUser,
		Text:      userText,
		Seq:       r.seq,
		Timestamp: now,
		Metadata:  meta,
	}
	assistant := &models.Turn{
		ID:        uuid.NewString(),
		Role:      models.RoleAssistant,
		Text:      assistantText,
		Seq:       r.seq + 1,
		Timestamp: now,
		Metadata:  meta,
	}

	if err := r.store.AppendPair(ctx, user, assistant); err != nil {
		return err
	}
	r.seq += 2
	return nil
}

// ListAll returns all records in chronological append order.
func (r *Recorder) ListAll(ctx context.Context) ([]models.Turn, error) {
	return r.store.ListAll(ctx)
}

// ClearAll empties the log. Clearing an empty log is a no-op.
func (r *Recorder) ClearAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.DeleteAll(ctx); err != nil {
		return err
	}
	r.seq = 0
	return nil
}
