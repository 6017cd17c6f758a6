package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lottoworks/storesync-worker/internal/models"
)

// Read-only lookups consumed by the pushers. None of these mutate state.

type StoreConfigRepository struct {
	db *gorm.DB
}

func NewStoreConfigRepository(db *gorm.DB) *StoreConfigRepository {
	return &StoreConfigRepository{db: db}
}

// GetActive returns the configured store, or nil when the terminal has not
// been set up yet. Absence is not an error.
func (r *StoreConfigRepository) GetActive(ctx context.Context) (*models.StoreConfig, error) {
	var cfg models.StoreConfig
	err := r.db.WithContext(ctx).Where("active = ?", true).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get store config: %w", err)
	}
	return &cfg, nil
}

type DayRepository struct {
	db *gorm.DB
}

func NewDayRepository(db *gorm.DB) *DayRepository {
	return &DayRepository{db: db}
}

// GetByID resolves a local business-day record.
func (r *DayRepository) GetByID(ctx context.Context, dayID models.LocalDayID) (*models.Day, error) {
	var day models.Day
	err := r.db.WithContext(ctx).Where("id = ?", string(dayID)).First(&day).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("day %s not found", dayID)
		}
		return nil, fmt.Errorf("failed to get day: %w", err)
	}
	return &day, nil
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s not found", userID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

type GameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByID(ctx context.Context, gameID string) (*models.Game, error) {
	var game models.Game
	err := r.db.WithContext(ctx).Where("id = ?", gameID).First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("game %s not found", gameID)
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return &game, nil
}
