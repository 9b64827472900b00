package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/impawawa/Final-Project/internal/models"
)

type CarRepository interface {
	Create(ctx context.Context, car *models.Car) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Car, error)
	List(ctx context.Context) ([]models.Car, error)
	Update(ctx context.Context, car *models.Car) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CarInput holds the writable fields of a car
type CarInput struct {
	Brand       string
	Model       string
	Year        int
	PricePerDay float64
	Description string
	// nil keeps the current value, true for new cars
	IsAvailable *bool
}

const minCarYear = 1886

func (in CarInput) validate() error {
	fields := make(map[string]string)
	if b := strings.TrimSpace(in.Brand); b == "" || len(b) > 100 {
		fields["brand"] = "Ensure this field has between 1 and 100 characters."
	}
	if m := strings.TrimSpace(in.Model); m == "" || len(m) > 100 {
		fields["model"] = "Ensure this field has between 1 and 100 characters."
	}
	if in.Year < minCarYear {
		fields["year"] = fmt.Sprintf("Ensure this value is greater than or equal to %d.", minCarYear)
	}
	if in.PricePerDay <= 0 || in.PricePerDay >= 1e8 {
		fields["price_per_day"] = "Ensure this value is a positive amount below 100000000."
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

type CarService struct {
	repo CarRepository
}

func NewCarService(repo CarRepository) *CarService {
	return &CarService{repo: repo}
}

func (s *CarService) List(ctx context.Context) ([]models.Car, error) {
	return s.repo.List(ctx)
}

func (s *CarService) Get(ctx context.Context, id uuid.UUID) (*models.Car, error) {
	car, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if car == nil {
		return nil, ErrNotFound
	}
	return car, nil
}

// Creates a car owned by ownerID
func (s *CarService) Create(ctx context.Context, ownerID uuid.UUID, in CarInput) (*models.Car, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	car := &models.Car{
		OwnerID:     ownerID,
		IsAvailable: true,
	}
	in.apply(car)

	if err := s.repo.Create(ctx, car); err != nil {
		return nil, fmt.Errorf("failed to create car: %w", err)
	}
	return car, nil
}

// Replaces the car's fields. Only the owner may update it.
func (s *CarService) Update(ctx context.Context, callerID, id uuid.UUID, in CarInput) (*models.Car, error) {
	car, err := s.ownedCar(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	in.apply(car)
	if err := s.repo.Update(ctx, car); err != nil {
		return nil, fmt.Errorf("failed to update car: %w", err)
	}
	return car, nil
}

// Deletes the car and returns what was deleted. Only the owner may delete it.
func (s *CarService) Delete(ctx context.Context, callerID, id uuid.UUID) (*models.Car, error) {
	car, err := s.ownedCar(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete car: %w", err)
	}
	return car, nil
}

func (s *CarService) ownedCar(ctx context.Context, callerID, id uuid.UUID) (*models.Car, error) {
	car, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if car.OwnerID != callerID {
		return nil, ErrForbidden
	}
	return car, nil
}

func (in CarInput) apply(car *models.Car) {
	car.Brand = strings.TrimSpace(in.Brand)
	car.Model = strings.TrimSpace(in.Model)
	car.Year = in.Year
	car.PricePerDay = roundCents(in.PricePerDay)
	car.Description = in.Description
	if in.IsAvailable != nil {
		car.IsAvailable = *in.IsAvailable
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
