package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/impawawa/Final-Project/internal/models"
	"github.com/impawawa/Final-Project/internal/repository/repotest"
	"github.com/impawawa/Final-Project/internal/service"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type rentalFixture struct {
	db      *repotest.DB
	svc     *service.RentalService
	owner   models.User
	renter  models.User
	car     *models.Car
	ctx     context.Context
	carsSvc *service.CarService
}

func newRentalFixture(t *testing.T) *rentalFixture {
	t.Helper()
	db := repotest.NewDB()
	f := &rentalFixture{
		db:      db,
		svc:     service.NewRentalService(db.Rentals(), db.Cars(), db.Users()),
		owner:   createUser(t, db, "owner"),
		renter:  createUser(t, db, "renter"),
		ctx:     context.Background(),
		carsSvc: service.NewCarService(db.Cars()),
	}
	car, err := f.carsSvc.Create(f.ctx, f.owner.ID, carInput())
	require.NoError(t, err)
	f.car = car
	return f
}

func TestRentalDays(t *testing.T) {
	require.Equal(t, 3, service.RentalDays(date(2024, 6, 1), date(2024, 6, 4)))
	require.Equal(t, 0, service.RentalDays(date(2024, 6, 1), date(2024, 6, 1)))
	require.Equal(t, -1, service.RentalDays(date(2024, 6, 2), date(2024, 6, 1)))
	// time of day is ignored
	require.Equal(t, 1, service.RentalDays(date(2024, 6, 1).Add(23*time.Hour), date(2024, 6, 2).Add(time.Hour)))
}

func TestRentalService_CreateComputesPrice(t *testing.T) {
	f := newRentalFixture(t)

	rental, err := f.svc.Create(f.ctx, f.renter.ID, service.RentalInput{
		CarID:     f.car.ID,
		StartDate: date(2024, 6, 1),
		EndDate:   date(2024, 6, 4),
	})
	require.NoError(t, err)
	require.Equal(t, 136.5, rental.TotalPrice)
	require.Equal(t, models.RentalPending, rental.Status)
	require.Equal(t, "renter", rental.Renter.Username)
	require.Equal(t, "owner", rental.Car.Owner.Username)

	got, err := f.svc.Get(f.ctx, f.renter.ID, rental.ID)
	require.NoError(t, err)
	require.Equal(t, f.car.ID, got.Car.ID)

	list, err := f.svc.List(f.ctx, f.renter.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestRentalService_CreateValidation(t *testing.T) {
	f := newRentalFixture(t)

	tests := []struct {
		name    string
		in      service.RentalInput
		wantErr error
		field   string
	}{
		{
			name:    "unknown car",
			in:      service.RentalInput{CarID: uuid.New(), StartDate: date(2024, 6, 1), EndDate: date(2024, 6, 2)},
			wantErr: service.ErrInvalid,
			field:   "car_id",
		},
		{
			name:    "end before start",
			in:      service.RentalInput{CarID: f.car.ID, StartDate: date(2024, 6, 5), EndDate: date(2024, 6, 1)},
			wantErr: service.ErrInvalid,
			field:   "end_date",
		},
		{
			name:    "same day",
			in:      service.RentalInput{CarID: f.car.ID, StartDate: date(2024, 6, 1), EndDate: date(2024, 6, 1)},
			wantErr: service.ErrInvalid,
			field:   "end_date",
		},
		{
			name:    "missing dates",
			in:      service.RentalInput{CarID: f.car.ID},
			wantErr: service.ErrInvalid,
			field:   "start_date",
		},
		{
			name:    "bad status",
			in:      service.RentalInput{CarID: f.car.ID, StartDate: date(2024, 6, 1), EndDate: date(2024, 6, 2), Status: "lost"},
			wantErr: service.ErrInvalid,
			field:   "status",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(f.ctx, f.renter.ID, tc.in)
			require.ErrorIs(t, err, tc.wantErr)
			var verr *service.ValidationError
			require.True(t, errors.As(err, &verr))
			require.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestRentalService_UnavailableCar(t *testing.T) {
	f := newRentalFixture(t)

	in := carInput()
	in.IsAvailable = boolPtr(false)
	_, err := f.carsSvc.Update(f.ctx, f.owner.ID, f.car.ID, in)
	require.NoError(t, err)

	_, err = f.svc.Create(f.ctx, f.renter.ID, service.RentalInput{
		CarID:     f.car.ID,
		StartDate: date(2024, 6, 1),
		EndDate:   date(2024, 6, 2),
	})
	require.ErrorIs(t, err, service.ErrConflict)
}

func TestRentalService_ScopedToRenter(t *testing.T) {
	f := newRentalFixture(t)

	rental, err := f.svc.Create(f.ctx, f.renter.ID, service.RentalInput{
		CarID:     f.car.ID,
		StartDate: date(2024, 6, 1),
		EndDate:   date(2024, 6, 2),
	})
	require.NoError(t, err)

	_, err = f.svc.Get(f.ctx, f.owner.ID, rental.ID)
	require.ErrorIs(t, err, service.ErrNotFound)

	_, err = f.svc.Update(f.ctx, f.owner.ID, rental.ID, service.RentalInput{StartDate: date(2024, 6, 1), EndDate: date(2024, 6, 3)})
	require.ErrorIs(t, err, service.ErrNotFound)

	require.ErrorIs(t, f.svc.Delete(f.ctx, f.owner.ID, rental.ID), service.ErrNotFound)

	list, err := f.svc.List(f.ctx, f.owner.ID)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestRentalService_UpdateRecomputesPrice(t *testing.T) {
	f := newRentalFixture(t)

	rental, err := f.svc.Create(f.ctx, f.renter.ID, service.RentalInput{
		CarID:     f.car.ID,
		StartDate: date(2024, 6, 1),
		EndDate:   date(2024, 6, 2),
	})
	require.NoError(t, err)

	updated, err := f.svc.Update(f.ctx, f.renter.ID, rental.ID, service.RentalInput{
		StartDate: date(2024, 6, 1),
		EndDate:   date(2024, 6, 11),
		Status:    models.RentalActive,
	})
	require.NoError(t, err)
	require.Equal(t, 455.0, updated.TotalPrice)
	require.Equal(t, models.RentalActive, updated.Status)

	got, err := f.svc.Get(f.ctx, f.renter.ID, rental.ID)
	require.NoError(t, err)
	require.Equal(t, 455.0, got.TotalPrice)
	require.True(t, got.EndDate.Equal(date(2024, 6, 11)))

	// status omitted keeps the current one
	updated, err = f.svc.Update(f.ctx, f.renter.ID, rental.ID, service.RentalInput{
		StartDate: date(2024, 6, 1),
		EndDate:   date(2024, 6, 2),
	})
	require.NoError(t, err)
	require.Equal(t, models.RentalActive, updated.Status)
	require.Equal(t, 45.5, updated.TotalPrice)
}

func TestRentalService_Delete(t *testing.T) {
	f := newRentalFixture(t)

	rental, err := f.svc.Create(f.ctx, f.renter.ID, service.RentalInput{
		CarID:     f.car.ID,
		StartDate: date(2024, 6, 1),
		EndDate:   date(2024, 6, 2),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(f.ctx, f.renter.ID, rental.ID))
	_, err = f.svc.Get(f.ctx, f.renter.ID, rental.ID)
	require.ErrorIs(t, err, service.ErrNotFound)
}
