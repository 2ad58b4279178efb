package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MetricEventType names a usage event
type MetricEventType string

const (
	MetricUserSignedUp          MetricEventType = "user_signed_up"
	MetricUserUpdatedProfile    MetricEventType = "user_updated_profile"
	MetricSearchNearbyGames     MetricEventType = "search_nearby_games"
	MetricFriendRequestSent     MetricEventType = "user_sent_friend_request"
	MetricFriendRequestAccepted MetricEventType = "user_accepted_friend_request"
	MetricFriendRequestRejected MetricEventType = "user_rejected_friend_request"
	MetricNotificationSent      MetricEventType = "notification_sent"
)

// Metric is one recorded usage event. EventData is free-form and keyed by
// snake_case names; "user_id" is indexed for filtering.
type Metric struct {
	ID        uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventType MetricEventType   `json:"event_type" gorm:"type:varchar(50);not null;index"`
	EventData datatypes.JSONMap `json:"event_data" gorm:"type:jsonb;not null"`
	CreatedAt time.Time         `json:"created_at" gorm:"index"`
}
