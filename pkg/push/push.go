// Package push delivers notifications to device endpoints.
package push

import (
	"context"
	"errors"
)

// ErrTokenInvalid marks a failure that will never succeed for the same token.
// Callers should drop the registration instead of retrying.
var ErrTokenInvalid = errors.New("push token permanently invalid")

// Message is one push addressed to one endpoint token
type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Transport sends a message and returns the provider's message ID.
// Errors wrapping ErrTokenInvalid are permanent; anything else is transient.
type Transport interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// IsPermanent reports whether err means the endpoint token is dead
func IsPermanent(err error) bool {
	return errors.Is(err, ErrTokenInvalid)
}
