package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GameStatus is the lifecycle state of a game
type GameStatus string

const (
	GameStatusOpen      GameStatus = "open"
	GameStatusFull      GameStatus = "full"
	GameStatusCancelled GameStatus = "cancelled"
	GameStatusCompleted GameStatus = "completed"
)

// IsTerminal reports whether no transition out of the status exists
func (s GameStatus) IsTerminal() bool {
	return s == GameStatusCancelled || s == GameStatusCompleted
}

// Valid game types (players per side) and level bounds
const (
	GameTypeFive  = 5
	GameTypeSeven = 7

	MinGameLevel = 1
	MaxGameLevel = 5
)

// Game is a time-boxed match organized on a field
type Game struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FieldID        uuid.UUID       `json:"field_id" gorm:"type:uuid;not null;index"`
	OrganizerID    string          `json:"organizer_id" gorm:"type:text;not null;index"`
	GameType       int             `json:"game_type" gorm:"not null"`
	GameLevel      int             `json:"game_level" gorm:"not null"`
	StartTime      time.Time       `json:"start_time" gorm:"type:timestamptz;not null;index"`
	EndTime        time.Time       `json:"end_time" gorm:"type:timestamptz;not null"`
	TotalSpots     int             `json:"total_spots" gorm:"not null"`
	AvailableSpots int             `json:"available_spots" gorm:"not null"`
	PricePerPlayer decimal.Decimal `json:"price_per_player" gorm:"type:numeric(10,2);not null;default:0"`
	Status         GameStatus      `json:"status" gorm:"type:varchar(20);not null;default:'open';index"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// DerivedStatus recomputes open/full from the spot count. Terminal states are kept.
func (g *Game) DerivedStatus() GameStatus {
	if g.Status.IsTerminal() {
		return g.Status
	}
	if g.AvailableSpots > 0 {
		return GameStatusOpen
	}
	return GameStatusFull
}

// PlayerStatus is the state of a membership row
type PlayerStatus string

const (
	PlayerStatusJoined PlayerStatus = "joined"
	PlayerStatusLeft   PlayerStatus = "left"
	PlayerStatusKicked PlayerStatus = "kicked"
)

// GamePlayer is the membership ledger row for one (game, player) pair.
// Rows are never deleted; re-joining reactivates the same row.
type GamePlayer struct {
	ID        uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GameID    uuid.UUID    `json:"game_id" gorm:"type:uuid;not null;uniqueIndex:idx_game_player"`
	PlayerID  string       `json:"player_id" gorm:"type:text;not null;uniqueIndex:idx_game_player"`
	JoinedAt  time.Time    `json:"joined_at" gorm:"type:timestamptz;not null"`
	Status    PlayerStatus `json:"status" gorm:"type:varchar(20);not null;default:'joined'"`
	UpdatedAt time.Time    `json:"updated_at"`

	// Relations
	Player *User `json:"-" gorm:"foreignKey:PlayerID"`
}
