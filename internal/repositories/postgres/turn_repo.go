package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/krishimitra/agrichat/internal/models"
)

// TurnRepo persists the conversation log. The pair insert runs in one
// transaction so a reader never sees the user record without its assistant
// record.
type TurnRepo struct {
	db *gorm.DB
}

func NewTurnRepo(db *gorm.DB) *TurnRepo {
	return &TurnRepo{db: db}
}

func (r *TurnRepo) AppendPair(ctx context.Context, user, assistant *models.Turn) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(assistant).Error
	})
}

func (r *TurnRepo) ListAll(ctx context.Context) ([]models.Turn, error) {
	var rows []models.Turn
	err := r.db.WithContext(ctx).
		Order("seq ASC").
		Find(&rows).Error
	return rows, err
}

func (r *TurnRepo) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Turn{}).Error
}
