package model

import (
	"time"

	"github.com/google/uuid"
)

// DeviceRegistration is a push endpoint owned by a user. Unique per (user, token).
type DeviceRegistration struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID     string    `json:"user_id" gorm:"type:text;not null;uniqueIndex:idx_user_push_token"`
	PushToken  string    `json:"push_token" gorm:"not null;uniqueIndex:idx_user_push_token"`
	DeviceType string    `json:"device_type" gorm:"size:20;default:'unknown'"` // android, ios, web
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}
