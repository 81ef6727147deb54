package repository

import (
	"context"

	"nextmove-cargo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	FindByEmail(ctx context.Context, email string) (*model.Profile, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Profile, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	return GetDB(ctx, r.db).Create(profile).Error
}

func (r *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	if err := GetDB(ctx, r.db).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var profile model.Profile
	if err := GetDB(ctx, r.db).First(&profile, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Profile, error) {
	var profiles []model.Profile
	if len(ids) == 0 {
		return profiles, nil
	}
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}
