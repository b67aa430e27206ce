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

// TeamRepository stores team identity, assigned riddle, answer and completion flag
type TeamRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Team, error)
	// FindByUsernameForUpdate locks the team row until the surrounding transaction ends
	FindByUsernameForUpdate(ctx context.Context, username string) (*models.Team, error)
	Exists(ctx context.Context, username string) (bool, error)
	// Create inserts the team. created is false when the username is already taken.
	Create(ctx context.Context, team *models.Team) (created bool, err error)
	// MarkComplete sets the completion flag if it is still false. changed
	// reports whether this call performed the transition.
	MarkComplete(ctx context.Context, id uint, at time.Time) (changed bool, err error)
	Count(ctx context.Context) (int64, error)
	CountCompleted(ctx context.Context) (int64, error)
}

type gormTeamRepository struct {
	db *gorm.DB
}

func (r *gormTeamRepository) FindByUsername(ctx context.Context, username string) (*models.Team, error) {
	defer metrics.RecordDBOperation("find", "teams", time.Now())
	return r.find(r.db.WithContext(ctx), username)
}

func (r *gormTeamRepository) FindByUsernameForUpdate(ctx context.Context, username string) (*models.Team, error) {
	defer metrics.RecordDBOperation("find_for_update", "teams", time.Now())
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), username)
}

func (r *gormTeamRepository) find(db *gorm.DB, username string) (*models.Team, error) {
	var team models.Team
	if err := db.Where("username = ?", username).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(fmt.Sprintf("team %s not found", username))
		}
		return nil, fmt.Errorf("failed to fetch team: %w", err)
	}
	return &team, nil
}

func (r *gormTeamRepository) Exists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Team{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check team: %w", err)
	}
	return count > 0, nil
}

func (r *gormTeamRepository) Create(ctx context.Context, team *models.Team) (bool, error) {
	defer metrics.RecordDBOperation("create", "teams", time.Now())

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "username"}}, DoNothing: true}).
		Create(team)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create team: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *gormTeamRepository) MarkComplete(ctx context.Context, id uint, at time.Time) (bool, error) {
	defer metrics.RecordDBOperation("mark_complete", "teams", time.Now())

	result := r.db.WithContext(ctx).Model(&models.Team{}).
		Where("id = ? AND is_complete = ?", id, false).
		Updates(map[string]interface{}{
			"is_complete":  true,
			"completed_at": at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark team complete: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *gormTeamRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Team{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	return count, nil
}

func (r *gormTeamRepository) CountCompleted(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Team{}).Where("is_complete = ?", true).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count completed teams: %w", err)
	}
	return count, nil
}
