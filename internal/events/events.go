// Package events carries domain events from business operations to the
// notification fanout, either in-process or through NATS.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type names a domain event
type Type string

const (
	GameJoin      Type = "game_join"
	GameLeave     Type = "game_leave"
	GameKick      Type = "game_kick"
	GameCancel    Type = "game_cancel"
	GameUpdate    Type = "game_update"
	FriendRequest Type = "friend_request"
	FriendAccept  Type = "friend_accept"
)

// Event is addressed to exactly one recipient
type Event struct {
	Type        Type       `json:"type"`
	RecipientID string     `json:"recipient_id"`
	ActorID     string     `json:"actor_id"`
	ActorName   string     `json:"actor_name"`
	GameID      *uuid.UUID `json:"game_id,omitempty"`
	GameType    int        `json:"game_type,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// Handler consumes one event
type Handler func(ctx context.Context, e Event) error

// Publisher hands events off without waiting for delivery.
// Implementations never block the caller on the handler.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subject is the NATS subject an event type is published on
func Subject(t Type) string {
	return subjectPrefix + string(t)
}

const subjectPrefix = "kickoff.events."
