package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ========== Game DTOs ==========

type CreateGameRequest struct {
	FieldID        uuid.UUID       `json:"field_id" binding:"required"`
	GameType       int             `json:"game_type" binding:"required,oneof=5 7"`
	GameLevel      int             `json:"game_level" binding:"required,min=1,max=5"`
	StartTime      time.Time       `json:"start_time" binding:"required"`
	EndTime        time.Time       `json:"end_time" binding:"required,gtfield=StartTime"`
	TotalSpots     int             `json:"total_spots" binding:"required,min=1"`
	AvailableSpots *int            `json:"available_spots" binding:"omitempty,min=0,ltefield=TotalSpots"`
	PricePerPlayer decimal.Decimal `json:"price_per_player" binding:"decimal_gte0"`
}

type UpdateGameRequest struct {
	FieldID        *uuid.UUID       `json:"field_id"`
	GameType       *int             `json:"game_type" binding:"omitempty,oneof=5 7"`
	GameLevel      *int             `json:"game_level" binding:"omitempty,min=1,max=5"`
	StartTime      *time.Time       `json:"start_time"`
	EndTime        *time.Time       `json:"end_time"`
	TotalSpots     *int             `json:"total_spots" binding:"omitempty,min=1"`
	PricePerPlayer *decimal.Decimal `json:"price_per_player"`
}

type GameListRequest struct {
	FieldID string `form:"field_id" binding:"omitempty,uuid"`
	Status  string `form:"status" binding:"omitempty,oneof=open full cancelled completed"`
}

type NearbyRequest struct {
	Latitude  *float64 `form:"lat" binding:"required,latitude"`
	Longitude *float64 `form:"long" binding:"required,longitude"`
	Radius    float64  `form:"radius" binding:"omitempty,gt=0"`
}

// GamePlayerResponse is a membership row with its player summary
type GamePlayerResponse struct {
	ID       uuid.UUID     `json:"id"`
	GameID   uuid.UUID     `json:"game_id"`
	PlayerID string        `json:"player_id"`
	JoinedAt time.Time     `json:"joined_at"`
	Status   PlayerStatus  `json:"status"`
	Player   PlayerSummary `json:"player"`
}

type GamePlayersResponse struct {
	Players        []GamePlayerResponse `json:"players"`
	TotalPlayers   int                  `json:"total_players"`
	AvailableSpots int                  `json:"available_spots"`
	TotalSpots     int                  `json:"total_spots"`
}

// ========== Discovery DTOs ==========

// NearbyGameRow is one flat row of the geospatial join, already ordered
type NearbyGameRow struct {
	FieldID        uuid.UUID       `json:"field_id"`
	FieldName      string          `json:"field_name"`
	DistanceMeters float64         `json:"distance_meters"`
	GameID         uuid.UUID       `json:"game_id"`
	StartTime      time.Time       `json:"start_time"`
	AvailableSpots int             `json:"available_spots"`
	PricePerPlayer decimal.Decimal `json:"price_per_player"`
	OrganizerName  string          `json:"organizer_name"`
	GameLevel      int             `json:"game_level"`
	GameType       int             `json:"game_type"`
}

type NearbyGame struct {
	GameID         uuid.UUID       `json:"game_id"`
	StartTime      time.Time       `json:"start_time"`
	AvailableSpots int             `json:"available_spots"`
	PricePerPlayer decimal.Decimal `json:"price_per_player"`
	OrganizerName  string          `json:"organizer_name"`
	GameLevel      int             `json:"game_level"`
	GameType       int             `json:"game_type"`
}

// NearbyFieldGroup is one field with its upcoming open games
type NearbyFieldGroup struct {
	FieldID        uuid.UUID    `json:"field_id"`
	FieldName      string       `json:"field_name"`
	DistanceMeters float64      `json:"distance_meters"`
	Games          []NearbyGame `json:"games"`
}

// ========== Field DTOs ==========

type CreateFieldRequest struct {
	Name             string                 `json:"name" binding:"required,max=150"`
	Address          string                 `json:"address" binding:"required,max=300"`
	Phone            string                 `json:"phone" binding:"max=30"`
	Latitude         *float64               `json:"latitude" binding:"required,latitude"`
	Longitude        *float64               `json:"longitude" binding:"required,longitude"`
	OpeningTime      string                 `json:"opening_time" binding:"required,clock"`
	ClosingTime      string                 `json:"closing_time" binding:"required,clock"`
	BasePricePerHour decimal.Decimal        `json:"base_price_per_hour" binding:"decimal_gte0"`
	Amenities        map[string]interface{} `json:"amenities"`
}

type UpdateFieldRequest struct {
	Name             *string                `json:"name" binding:"omitempty,max=150"`
	Address          *string                `json:"address" binding:"omitempty,max=300"`
	Phone            *string                `json:"phone" binding:"omitempty,max=30"`
	Latitude         *float64               `json:"latitude" binding:"omitempty,latitude"`
	Longitude        *float64               `json:"longitude" binding:"omitempty,longitude"`
	OpeningTime      *string                `json:"opening_time" binding:"omitempty,clock"`
	ClosingTime      *string                `json:"closing_time" binding:"omitempty,clock"`
	BasePricePerHour *decimal.Decimal       `json:"base_price_per_hour"`
	Amenities        map[string]interface{} `json:"amenities"`
}

type FieldFilter struct {
	Page      int      `form:"page,default=1" binding:"min=1"`
	Limit     int      `form:"limit,default=10" binding:"min=1,max=100"`
	Search    string   `form:"search"`
	MinPrice  *float64 `form:"min_price" binding:"omitempty,min=0"`
	MaxPrice  *float64 `form:"max_price" binding:"omitempty,min=0"`
	Latitude  *float64 `form:"lat" binding:"omitempty,latitude,required_with=Longitude"`
	Longitude *float64 `form:"long" binding:"omitempty,longitude,required_with=Latitude"`
	Radius    float64  `form:"radius" binding:"omitempty,gt=0"`
	SortBy    string   `form:"sort_by" binding:"omitempty,oneof=name price distance"`
	SortOrder string   `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

type PaginatedFields struct {
	Data            []Field `json:"data"`
	Total           int64   `json:"total"`
	Page            int     `json:"page"`
	Limit           int     `json:"limit"`
	TotalPages      int     `json:"total_pages"`
	HasNextPage     bool    `json:"has_next_page"`
	HasPreviousPage bool    `json:"has_previous_page"`
}

// ========== Notification DTOs ==========

type NotificationListRequest struct {
	Page       int  `form:"page,default=1" binding:"min=1"`
	Limit      int  `form:"limit,default=20" binding:"min=1,max=100"`
	UnreadOnly bool `form:"unread_only"`
}

type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	Total         int64          `json:"total"`
	UnreadCount   int64          `json:"unread_count"`
}

// SendToUserRequest is an operator notification to every endpoint of one user
type SendToUserRequest struct {
	UserID string                 `json:"user_id" binding:"required"`
	Title  string                 `json:"title" binding:"required,max=200"`
	Body   string                 `json:"body" binding:"required"`
	Data   map[string]interface{} `json:"data"`
}

// SendPushRequest is a single push to a raw device token, bypassing history
type SendPushRequest struct {
	PushToken string            `json:"push_token" binding:"required"`
	Title     string            `json:"title" binding:"required,max=200"`
	Body      string            `json:"body" binding:"required"`
	Data      map[string]string `json:"data"`
}

type SendPushResponse struct {
	MessageID string `json:"message_id"`
}

type RegisterDeviceRequest struct {
	PushToken  string `json:"push_token" binding:"required"`
	DeviceType string `json:"device_type" binding:"omitempty,oneof=android ios web unknown"`
}

// ========== Friend DTOs ==========

type AddFriendRequest struct {
	FriendID string `json:"friend_id" binding:"required"`
}

type UpdateFriendRequest struct {
	Status FriendStatus `json:"status" binding:"required,oneof=accepted rejected blocked"`
}

type FriendResponse struct {
	ID        uuid.UUID     `json:"id"`
	Status    FriendStatus  `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Friend    PlayerSummary `json:"friend"`
}

type PendingRequestsResponse struct {
	Received []FriendResponse `json:"received"`
	Sent     []FriendResponse `json:"sent"`
}

// ========== User DTOs ==========

type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"omitempty,min=2,max=150"`
	Nickname string `json:"nickname" binding:"omitempty,min=3,max=50,alphanum"`
}

type UploadResponse struct {
	URL      string `json:"url"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type"`
}

// ========== Metrics DTOs ==========

type MetricListRequest struct {
	EventType string     `form:"event_type"`
	UserID    string     `form:"user_id"`
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02T15:04:05Z07:00"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit     int        `form:"limit,default=100" binding:"min=1,max=1000"`
	Offset    int        `form:"offset,default=0" binding:"min=0"`
}

type MetricListResponse struct {
	Metrics []Metric `json:"metrics"`
	Total   int64    `json:"total"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}

type MetricSummary struct {
	Total     int64 `json:"total"`
	Today     int64 `json:"today"`
	ThisWeek  int64 `json:"this_week"`
	ThisMonth int64 `json:"this_month"`
}

type MetricCount struct {
	EventType MetricEventType `json:"event_type"`
	Count     int64           `json:"count"`
}

// ========== WebSocket Event DTOs ==========

type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WebSocket event types
const (
	WSEventNotification       = "notification"
	WSEventUnreadCountChanged = "unread_count_changed"
	WSEventMarkRead           = "mark_read"
)

type UnreadCountEvent struct {
	UserID      string `json:"user_id"`
	UnreadCount int64  `json:"unread_count"`
}

// ========== Common ==========

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
