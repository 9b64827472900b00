package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RentalStatus string

const (
	RentalPending   RentalStatus = "pending"
	RentalActive    RentalStatus = "active"
	RentalCompleted RentalStatus = "completed"
	RentalCancelled RentalStatus = "cancelled"
)

func (s RentalStatus) Valid() bool {
	switch s {
	case RentalPending, RentalActive, RentalCompleted, RentalCancelled:
		return true
	}
	return false
}

type Rental struct {
	ID         uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	CarID      uuid.UUID    `gorm:"type:uuid;index;not null" json:"-"`
	Car        Car          `gorm:"foreignKey:CarID;constraint:OnDelete:CASCADE" json:"-"`
	RenterID   uuid.UUID    `gorm:"type:uuid;index;not null" json:"-"`
	Renter     User         `gorm:"foreignKey:RenterID;constraint:OnDelete:CASCADE" json:"-"`
	StartDate  time.Time    `gorm:"type:date;not null" json:"start_date"`
	EndDate    time.Time    `gorm:"type:date;not null" json:"end_date"`
	TotalPrice float64      `gorm:"type:numeric(10,2);not null" json:"total_price"`
	Status     RentalStatus `gorm:"size:20;default:'pending'" json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func (r *Rental) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = RentalPending
	}
	return nil
}

func (Rental) TableName() string {
	return "rentals"
}
