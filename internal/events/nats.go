package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// QueueGroup is the consumer group shared by all instances, so each event
// is handled once across the deployment.
const QueueGroup = "notifier"

// Connect opens a NATS connection
func Connect(url, token string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("kickoff-api"),
		nats.MaxReconnects(-1),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}
	return nats.Connect(url, opts...)
}

// NATSBus publishes events to kickoff.events.<type>
type NATSBus struct {
	conn *nats.Conn
}

func NewNATSBus(conn *nats.Conn) *NATSBus {
	return &NATSBus{conn: conn}
}

func (b *NATSBus) Publish(_ context.Context, e Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := b.conn.Publish(Subject(e.Type), payload); err != nil {
		log.Errorf("Error publishing to topic %s: %s", Subject(e.Type), err)
		return err
	}
	return nil
}

// Subscribe consumes every event type through the shared queue group
func (b *NATSBus) Subscribe(handler Handler, timeout time.Duration) (*nats.Subscription, error) {
	return b.conn.QueueSubscribe(subjectPrefix+">", QueueGroup, func(msg *nats.Msg) {
		var e Event
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			log.WithField("subject", msg.Subject).WithError(err).Warn("dropping malformed event")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := handler(ctx, e); err != nil {
			log.WithFields(log.Fields{
				"type":      e.Type,
				"recipient": e.RecipientID,
			}).WithError(err).Warn("event handler failed")
		}
	})
}
