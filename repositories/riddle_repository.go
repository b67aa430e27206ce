package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"riddlehunt/metrics"
	"riddlehunt/models"
	"riddlehunt/utils/apperror"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RiddleRepository is the deduplicated store of riddle texts
type RiddleRepository interface {
	// FindOrCreate returns the riddle with exactly this text, creating it with
	// the given note when absent. created reports whether a row was inserted.
	FindOrCreate(ctx context.Context, text, note string) (riddle *models.Riddle, created bool, err error)
	FindByID(ctx context.Context, id uint) (*models.Riddle, error)
	Count(ctx context.Context) (int64, error)
}

type gormRiddleRepository struct {
	db *gorm.DB
}

func (r *gormRiddleRepository) FindOrCreate(ctx context.Context, text, note string) (*models.Riddle, bool, error) {
	defer metrics.RecordDBOperation("find_or_create", "riddles", time.Now())

	riddle := models.Riddle{
		Text:     text,
		TextHash: models.HashRiddleText(text),
		LeadName: note,
	}

	// The unique index on text_hash decides the race, not a prior SELECT
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "text_hash"}}, DoNothing: true}).
		Create(&riddle)
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to create riddle: %w", result.Error)
	}
	if result.RowsAffected == 1 {
		return &riddle, true, nil
	}

	var existing models.Riddle
	if err := r.db.WithContext(ctx).Where("text_hash = ?", riddle.TextHash).First(&existing).Error; err != nil {
		return nil, false, fmt.Errorf("failed to fetch existing riddle: %w", err)
	}
	if existing.Text != text {
		return nil, false, apperror.Conflict(fmt.Sprintf("riddle %d has the same content hash but a different text", existing.ID))
	}
	return &existing, false, nil
}

func (r *gormRiddleRepository) FindByID(ctx context.Context, id uint) (*models.Riddle, error) {
	defer metrics.RecordDBOperation("find", "riddles", time.Now())

	var riddle models.Riddle
	if err := r.db.WithContext(ctx).First(&riddle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(fmt.Sprintf("riddle %d not found", id))
		}
		return nil, fmt.Errorf("failed to fetch riddle: %w", err)
	}
	return &riddle, nil
}

func (r *gormRiddleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Riddle{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count riddles: %w", err)
	}
	return count, nil
}
