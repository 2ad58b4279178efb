package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationType enumerates the domain events users are notified about
type NotificationType string

const (
	NotificationGameJoin      NotificationType = "game_join"
	NotificationGameLeave     NotificationType = "game_leave"
	NotificationGameKick      NotificationType = "game_kick"
	NotificationGameCancel    NotificationType = "game_cancel"
	NotificationGameUpdate    NotificationType = "game_update"
	NotificationFriendRequest NotificationType = "friend_request"
	NotificationFriendAccept  NotificationType = "friend_accept"
	NotificationGeneral       NotificationType = "general"
)

// Notification is an append-only history entry. Only Read is ever mutated.
type Notification struct {
	ID        uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    string            `json:"user_id" gorm:"type:text;not null;index"`
	Title     string            `json:"title" gorm:"size:200;not null"`
	Body      string            `json:"body" gorm:"type:text;not null"`
	Type      NotificationType  `json:"type" gorm:"type:varchar(30);not null"`
	Read      bool              `json:"read" gorm:"not null;default:false"`
	Data      datatypes.JSONMap `json:"data,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"created_at" gorm:"index"`
}

// DeliveryReport summarizes one fan-out to a user's push endpoints
type DeliveryReport struct {
	NotificationID uuid.UUID `json:"notification_id"`
	Delivered      int       `json:"delivered"`
	Failed         int       `json:"failed"`
}
