package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Field is a playable venue. The geography column "location" is generated by the
// database from Latitude/Longitude and is never written by the application.
type Field struct {
	ID               uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name             string            `json:"name" gorm:"size:150;not null"`
	Address          string            `json:"address" gorm:"size:300;not null"`
	Phone            string            `json:"phone,omitempty" gorm:"size:30"`
	Latitude         float64           `json:"latitude" gorm:"not null"`
	Longitude        float64           `json:"longitude" gorm:"not null"`
	OpeningTime      string            `json:"opening_time" gorm:"type:time;not null"` // HH:MM:SS
	ClosingTime      string            `json:"closing_time" gorm:"type:time;not null"`
	BasePricePerHour decimal.Decimal   `json:"base_price_per_hour" gorm:"type:numeric(10,2);not null;default:0"`
	Amenities        datatypes.JSONMap `json:"amenities" gorm:"type:jsonb;default:'{}'"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`

	// Distance in meters from the query origin, populated by radius queries only
	Distance *float64 `json:"distance,omitempty" gorm:"-"`
}
