package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one database handle. Inside
// Transaction every repository obtained from tx runs in the same transaction.
type Store interface {
	Riddles() RiddleRepository
	Teams() TeamRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// GormStore is the gorm implementation of Store
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Riddles() RiddleRepository {
	return &gormRiddleRepository{db: s.db}
}

func (s *GormStore) Teams() TeamRepository {
	return &gormTeamRepository{db: s.db}
}

// Transaction commits when fn returns nil and rolls back on any error or panic
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
