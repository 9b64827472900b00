package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Car struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	Owner       User      `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Brand       string    `gorm:"size:100;not null" json:"brand"`
	Model       string    `gorm:"size:100;not null" json:"model"`
	Year        int       `gorm:"not null" json:"year"`
	PricePerDay float64   `gorm:"type:numeric(10,2);not null" json:"price_per_day"`
	Description string    `gorm:"type:text" json:"description"`
	IsAvailable bool      `gorm:"default:true" json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Car) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (Car) TableName() string {
	return "cars"
}

func (c Car) String() string {
	return c.Brand + " " + c.Model
}
