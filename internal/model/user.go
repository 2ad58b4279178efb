package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the local projection of an identity resolved by the external token issuer.
// The ID is the issuer's subject, so it is opaque text rather than a UUID.
type User struct {
	ID        string           `json:"id" gorm:"type:text;primaryKey"`
	FullName  string           `json:"full_name" gorm:"size:150;not null"`
	Nickname  *string          `json:"nickname,omitempty" gorm:"size:50;uniqueIndex"`
	AvatarURL string           `json:"avatar_url" gorm:"size:500;default:''"`
	Rating    *decimal.Decimal `json:"rating,omitempty" gorm:"type:numeric(3,2)"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// DisplayName prefers the nickname, falling back to the full name
func (u *User) DisplayName() string {
	if u.Nickname != nil && *u.Nickname != "" {
		return *u.Nickname
	}
	return u.FullName
}

// PlayerSummary is the public subset of a user embedded in game responses
type PlayerSummary struct {
	ID        string   `json:"id"`
	FullName  string   `json:"full_name"`
	Nickname  *string  `json:"nickname,omitempty"`
	AvatarURL string   `json:"avatar_url"`
	Rating    *float64 `json:"rating"`
}

// ToSummary converts User to PlayerSummary
func (u *User) ToSummary() PlayerSummary {
	s := PlayerSummary{
		ID:        u.ID,
		FullName:  u.FullName,
		Nickname:  u.Nickname,
		AvatarURL: u.AvatarURL,
	}
	if u.Rating != nil {
		f := u.Rating.InexactFloat64()
		s.Rating = &f
	}
	return s
}
