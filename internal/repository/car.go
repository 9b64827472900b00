package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/impawawa/Final-Project/internal/models"
	"github.com/impawawa/Final-Project/internal/storage"
	"gorm.io/gorm"
)

type CarRepository struct {
	db *storage.Postgres
}

func NewCarRepository(db *storage.Postgres) *CarRepository {
	return &CarRepository{db: db}
}

func (r *CarRepository) Create(ctx context.Context, car *models.Car) error {
	if err := r.db.DB.WithContext(ctx).Create(car).Error; err != nil {
		return err
	}
	return r.db.DB.WithContext(ctx).First(&car.Owner, "id = ?", car.OwnerID).Error
}

// Retrieves a car with its owner, nil if it does not exist
func (r *CarRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Car, error) {
	var car models.Car
	err := r.db.DB.WithContext(ctx).
		Preload("Owner").
		Where("id = ?", id).
		First(&car).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &car, nil
}

func (r *CarRepository) List(ctx context.Context) ([]models.Car, error) {
	var cars []models.Car
	err := r.db.DB.WithContext(ctx).
		Preload("Owner").
		Order("created_at DESC").
		Find(&cars).Error

	return cars, err
}

// Saves every column of car, including zero values such as is_available=false
func (r *CarRepository) Update(ctx context.Context, car *models.Car) error {
	return r.db.DB.WithContext(ctx).
		Omit("Owner").
		Save(car).Error
}

func (r *CarRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Car{}).Error
}
