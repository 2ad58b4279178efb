package model

import (
	"time"

	"github.com/google/uuid"
)

// FriendStatus defines the state of a friendship row
type FriendStatus string

const (
	FriendStatusPending  FriendStatus = "pending"
	FriendStatusAccepted FriendStatus = "accepted"
	FriendStatusRejected FriendStatus = "rejected"
	FriendStatusBlocked  FriendStatus = "blocked"
)

// Friendship is directional at creation (UserID requested FriendID) and symmetric once accepted.
// At most one row exists per unordered pair.
type Friendship struct {
	ID        uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    string       `json:"user_id" gorm:"type:text;not null;index"`
	FriendID  string       `json:"friend_id" gorm:"type:text;not null;index"`
	Status    FriendStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	// Relations
	User   *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Friend *User `json:"friend,omitempty" gorm:"foreignKey:FriendID"`
}

// Other returns the id of the counterpart of userID in this friendship
func (f *Friendship) Other(userID string) string {
	if f.UserID == userID {
		return f.FriendID
	}
	return f.UserID
}
