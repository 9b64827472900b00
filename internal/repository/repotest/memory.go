// Package repotest provides in-memory repositories with the same method
// sets as the gorm repositories, for service and handler tests.
package repotest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/impawawa/Final-Project/internal/models"
)

var ErrDuplicate = errors.New("duplicate key value violates unique constraint")

// DB is the shared backing state so cars and rentals can resolve their
// owner, renter and car relations the way Preload does.
type DB struct {
	mu      sync.Mutex
	users   map[uuid.UUID]models.User
	cars    map[uuid.UUID]models.Car
	rentals map[uuid.UUID]models.Rental
	now     func() time.Time
	// Err, when set, is returned by every repository call
	Err error
}

func NewDB() *DB {
	return &DB{
		users:   make(map[uuid.UUID]models.User),
		cars:    make(map[uuid.UUID]models.Car),
		rentals: make(map[uuid.UUID]models.Rental),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (db *DB) Users() *UserRepository     { return &UserRepository{db: db} }
func (db *DB) Cars() *CarRepository       { return &CarRepository{db: db} }
func (db *DB) Rentals() *RentalRepository { return &RentalRepository{db: db} }

type UserRepository struct{ db *DB }

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return r.db.Err
	}

	for _, u := range r.db.users {
		if u.Username == user.Username || u.Email == user.Email {
			return ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = r.db.now()
	r.db.users[user.ID] = *user
	return nil
}

func (r *UserRepository) find(match func(models.User) bool) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return nil, r.db.Err
	}

	for _, u := range r.db.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *UserRepository) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

type CarRepository struct{ db *DB }

// withOwner must be called with the lock held
func (db *DB) withOwner(car models.Car) models.Car {
	car.Owner = db.users[car.OwnerID]
	return car
}

func (r *CarRepository) Create(_ context.Context, car *models.Car) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return r.db.Err
	}

	if car.ID == uuid.Nil {
		car.ID = uuid.New()
	}
	now := r.db.now()
	car.CreatedAt, car.UpdatedAt = now, now
	*car = r.db.withOwner(*car)
	r.db.cars[car.ID] = *car
	return nil
}

func (r *CarRepository) FindByID(_ context.Context, id uuid.UUID) (*models.Car, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return nil, r.db.Err
	}

	car, ok := r.db.cars[id]
	if !ok {
		return nil, nil
	}
	car = r.db.withOwner(car)
	return &car, nil
}

func (r *CarRepository) List(_ context.Context) ([]models.Car, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return nil, r.db.Err
	}

	cars := make([]models.Car, 0, len(r.db.cars))
	for _, c := range r.db.cars {
		cars = append(cars, r.db.withOwner(c))
	}
	sort.Slice(cars, func(i, j int) bool { return cars[i].CreatedAt.After(cars[j].CreatedAt) })
	return cars, nil
}

func (r *CarRepository) Update(_ context.Context, car *models.Car) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return r.db.Err
	}

	car.UpdatedAt = r.db.now()
	r.db.cars[car.ID] = *car
	return nil
}

func (r *CarRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return r.db.Err
	}

	delete(r.db.cars, id)
	// cascade like the foreign key does
	for rid, rental := range r.db.rentals {
		if rental.CarID == id {
			delete(r.db.rentals, rid)
		}
	}
	return nil
}

type RentalRepository struct{ db *DB }

// withRelations must be called with the lock held
func (db *DB) withRelations(rental models.Rental) models.Rental {
	rental.Car = db.withOwner(db.cars[rental.CarID])
	rental.Renter = db.users[rental.RenterID]
	return rental
}

func (r *RentalRepository) Create(_ context.Context, rental *models.Rental) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return r.db.Err
	}

	if rental.ID == uuid.Nil {
		rental.ID = uuid.New()
	}
	if rental.Status == "" {
		rental.Status = models.RentalPending
	}
	now := r.db.now()
	rental.CreatedAt, rental.UpdatedAt = now, now
	r.db.rentals[rental.ID] = *rental
	return nil
}

func (r *RentalRepository) FindForRenter(_ context.Context, id, renterID uuid.UUID) (*models.Rental, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return nil, r.db.Err
	}

	rental, ok := r.db.rentals[id]
	if !ok || rental.RenterID != renterID {
		return nil, nil
	}
	rental = r.db.withRelations(rental)
	return &rental, nil
}

func (r *RentalRepository) ListForRenter(_ context.Context, renterID uuid.UUID) ([]models.Rental, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return nil, r.db.Err
	}

	rentals := make([]models.Rental, 0)
	for _, rental := range r.db.rentals {
		if rental.RenterID == renterID {
			rentals = append(rentals, r.db.withRelations(rental))
		}
	}
	sort.Slice(rentals, func(i, j int) bool { return rentals[i].CreatedAt.After(rentals[j].CreatedAt) })
	return rentals, nil
}

func (r *RentalRepository) Update(_ context.Context, rental *models.Rental) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return r.db.Err
	}

	rental.UpdatedAt = r.db.now()
	stored := *rental
	stored.Car, stored.Renter = models.Car{}, models.User{}
	r.db.rentals[rental.ID] = stored
	return nil
}

func (r *RentalRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return r.db.Err
	}

	delete(r.db.rentals, id)
	return nil
}

// Fail makes every subsequent call return err
func (db *DB) Fail(err error) {
	db.mu.Lock()
	db.Err = err
	db.mu.Unlock()
}
