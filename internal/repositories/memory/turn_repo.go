// Package memory holds an in-process TurnStore, used by tests and by runs
// without a database.
package memory

import (
	"context"
	"sync"

	"github.com/krishimitra/agrichat/internal/models"
)

type TurnRepo struct {
	mu   sync.RWMutex
	rows []models.Turn
}

func NewTurnRepo() *TurnRepo {
	return &TurnRepo{}
}

func (r *TurnRepo) AppendPair(_ context.Context, user, assistant *models.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, *user, *assistant)
	return nil
}

func (r *TurnRepo) ListAll(_ context.Context) ([]models.Turn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Turn, len(r.rows))
	copy(out, r.rows)
	return out, nil
}

func (r *TurnRepo) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = nil
	return nil
}
