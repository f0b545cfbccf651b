package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/krishimitra/agrichat/internal/models"
	"github.com/krishimitra/agrichat/internal/utils"
)

type TopicProfileRepo struct {
	db *gorm.DB
}

func NewTopicProfileRepo(db *gorm.DB) *TopicProfileRepo {
	return &TopicProfileRepo{db: db}
}

// GetActive returns the active profile, or utils.ErrNotFound when none is
// configured (callers then fall back to the compiled-in keyword set).
func (r *TopicProfileRepo) GetActive(ctx context.Context) (*models.TopicProfile, error) {
	var row models.TopicProfile
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
