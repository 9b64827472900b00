package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/impawawa/Final-Project/internal/models"
	"github.com/impawawa/Final-Project/internal/storage"
	"gorm.io/gorm"
)

type RentalRepository struct {
	db *storage.Postgres
}

func NewRentalRepository(db *storage.Postgres) *RentalRepository {
	return &RentalRepository{db: db}
}

func (r *RentalRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.DB.WithContext(ctx).
		Preload("Car.Owner").
		Preload("Renter")
}

func (r *RentalRepository) Create(ctx context.Context, rental *models.Rental) error {
	return r.db.DB.WithContext(ctx).
		Omit("Car", "Renter").
		Create(rental).Error
}

// Retrieves a rental only if it belongs to renterID
func (r *RentalRepository) FindForRenter(ctx context.Context, id, renterID uuid.UUID) (*models.Rental, error) {
	var rental models.Rental
	err := r.withRelations(ctx).
		Where("id = ? AND renter_id = ?", id, renterID).
		First(&rental).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &rental, nil
}

func (r *RentalRepository) ListForRenter(ctx context.Context, renterID uuid.UUID) ([]models.Rental, error) {
	var rentals []models.Rental
	err := r.withRelations(ctx).
		Where("renter_id = ?", renterID).
		Order("created_at DESC").
		Find(&rentals).Error

	return rentals, err
}

func (r *RentalRepository) Update(ctx context.Context, rental *models.Rental) error {
	return r.db.DB.WithContext(ctx).
		Omit("Car", "Renter").
		Save(rental).Error
}

func (r *RentalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Rental{}).Error
}
