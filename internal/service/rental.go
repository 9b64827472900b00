package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/impawawa/Final-Project/internal/models"
)

type RentalRepository interface {
	Create(ctx context.Context, rental *models.Rental) error
	FindForRenter(ctx context.Context, id, renterID uuid.UUID) (*models.Rental, error)
	ListForRenter(ctx context.Context, renterID uuid.UUID) ([]models.Rental, error)
	Update(ctx context.Context, rental *models.Rental) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RentalInput holds the writable fields of a rental. Dates are calendar
// days; any time of day is dropped.
type RentalInput struct {
	CarID     uuid.UUID
	StartDate time.Time
	EndDate   time.Time
	// empty keeps the current status, pending for new rentals
	Status models.RentalStatus
}

type RentalService struct {
	rentals RentalRepository
	cars    CarRepository
	users   UserRepository
}

func NewRentalService(rentals RentalRepository, cars CarRepository, users UserRepository) *RentalService {
	return &RentalService{rentals: rentals, cars: cars, users: users}
}

// RentalDays is the number of days billed for a rental from start to end.
func RentalDays(start, end time.Time) int {
	return int(truncateDay(end).Sub(truncateDay(start)).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *RentalService) List(ctx context.Context, renterID uuid.UUID) ([]models.Rental, error) {
	return s.rentals.ListForRenter(ctx, renterID)
}

func (s *RentalService) Get(ctx context.Context, renterID, id uuid.UUID) (*models.Rental, error) {
	rental, err := s.rentals.FindForRenter(ctx, id, renterID)
	if err != nil {
		return nil, err
	}
	if rental == nil {
		return nil, ErrNotFound
	}
	return rental, nil
}

// Books carID for renterID. The total price is days * price_per_day.
func (s *RentalService) Create(ctx context.Context, renterID uuid.UUID, in RentalInput) (*models.Rental, error) {
	car, err := s.resolveCar(ctx, in.CarID)
	if err != nil {
		return nil, err
	}
	if !car.IsAvailable {
		return nil, fmt.Errorf("car %s is not available: %w", car.ID, ErrConflict)
	}

	status := in.Status
	if status == "" {
		status = models.RentalPending
	}

	rental := &models.Rental{
		CarID:    car.ID,
		RenterID: renterID,
		Status:   status,
	}
	if err := s.schedule(rental, car, in); err != nil {
		return nil, err
	}

	if err := s.rentals.Create(ctx, rental); err != nil {
		return nil, fmt.Errorf("failed to create rental: %w", err)
	}

	renter, err := s.users.FindByID(ctx, renterID)
	if err != nil {
		return nil, err
	}
	if renter != nil {
		rental.Renter = *renter
	}
	rental.Car = *car

	return rental, nil
}

// Replaces a rental's car, dates and optionally status, recomputing the price.
func (s *RentalService) Update(ctx context.Context, renterID, id uuid.UUID, in RentalInput) (*models.Rental, error) {
	rental, err := s.Get(ctx, renterID, id)
	if err != nil {
		return nil, err
	}

	car := &rental.Car
	if in.CarID != uuid.Nil && in.CarID != rental.CarID {
		car, err = s.resolveCar(ctx, in.CarID)
		if err != nil {
			return nil, err
		}
		if !car.IsAvailable {
			return nil, fmt.Errorf("car %s is not available: %w", car.ID, ErrConflict)
		}
		rental.CarID = car.ID
	}

	if in.Status != "" {
		rental.Status = in.Status
	}
	if err := s.schedule(rental, car, in); err != nil {
		return nil, err
	}

	if err := s.rentals.Update(ctx, rental); err != nil {
		return nil, fmt.Errorf("failed to update rental: %w", err)
	}
	rental.Car = *car

	return rental, nil
}

func (s *RentalService) Delete(ctx context.Context, renterID, id uuid.UUID) error {
	if _, err := s.Get(ctx, renterID, id); err != nil {
		return err
	}
	if err := s.rentals.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete rental: %w", err)
	}
	return nil
}

func (s *RentalService) resolveCar(ctx context.Context, carID uuid.UUID) (*models.Car, error) {
	car, err := s.cars.FindByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car == nil {
		return nil, NewValidationError("car_id", "Car does not exist.")
	}
	return car, nil
}

func (s *RentalService) schedule(rental *models.Rental, car *models.Car, in RentalInput) error {
	fields := make(map[string]string)
	if in.StartDate.IsZero() {
		fields["start_date"] = "This field is required."
	}
	if in.EndDate.IsZero() {
		fields["end_date"] = "This field is required."
	}
	if !rental.Status.Valid() {
		fields["status"] = fmt.Sprintf("%q is not a valid choice.", rental.Status)
	}
	if len(fields) == 0 && RentalDays(in.StartDate, in.EndDate) < 1 {
		fields["end_date"] = "End date must be after start date."
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	rental.StartDate = truncateDay(in.StartDate)
	rental.EndDate = truncateDay(in.EndDate)
	rental.TotalPrice = roundCents(float64(RentalDays(in.StartDate, in.EndDate)) * car.PricePerDay)
	return nil
}
