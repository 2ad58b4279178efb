package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/kickoff/internal/apperr"
	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/quocanhngo/kickoff/pkg/push"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// NotificationStore persists notification history
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	FindForUser(ctx context.Context, id uuid.UUID, userID string) (*model.Notification, error)
	List(ctx context.Context, userID string, unreadOnly bool, page, limit int) ([]model.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID, userID string) (bool, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// DeviceStore persists push endpoint registrations
type DeviceStore interface {
	Upsert(ctx context.Context, userID, token, deviceType string) error
	FindByUser(ctx context.Context, userID string) ([]model.DeviceRegistration, error)
	Delete(ctx context.Context, userID, token string) (bool, error)
	DeleteToken(ctx context.Context, token string) error
}

// RealtimeSender pushes an event to a user's open sockets on any instance
type RealtimeSender interface {
	SendToUser(ctx context.Context, userID string, event model.WSEvent) error
}

// FanoutConfig bounds per-notify push delivery
type FanoutConfig struct {
	Concurrency int
	Timeout     time.Duration
}

// Fanout records a notification and delivers it to every endpoint of a user.
// Only failing to record the notification is an error; delivery is best effort.
type Fanout struct {
	notifications NotificationStore
	devices       DeviceStore
	transport     push.Transport
	realtime      RealtimeSender
	metrics       MetricsRecorder
	cfg           FanoutConfig
	cleanup       sync.WaitGroup
}

// NewFanout creates a fanout. transport, realtime and metrics may be nil to disable those paths.
func NewFanout(notifications NotificationStore, devices DeviceStore, transport push.Transport, realtime RealtimeSender, metrics MetricsRecorder, cfg FanoutConfig) *Fanout {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Fanout{
		notifications: notifications,
		devices:       devices,
		transport:     transport,
		realtime:      realtime,
		metrics:       metrics,
		cfg:           cfg,
	}
}

// Notify persists the notification, then delivers it over realtime and push
func (f *Fanout) Notify(ctx context.Context, userID string, typ model.NotificationType, title, body string, data map[string]interface{}) (*model.DeliveryReport, error) {
	ctx, span := tracer.Start(ctx, "Fanout.Notify", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("notification.type", string(typ)),
	))
	defer span.End()

	n := &model.Notification{
		UserID: userID,
		Title:  title,
		Body:   body,
		Type:   typ,
		Data:   data,
	}
	if err := f.notifications.Create(ctx, n); err != nil {
		span.RecordError(err)
		if isForeignKeyViolation(err) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Unavailable(err, "failed to record notification")
	}

	report := &model.DeliveryReport{NotificationID: n.ID}
	logger := log.WithFields(log.Fields{"notification_id": n.ID, "user_id": userID, "type": typ})

	realtimeOK := false
	if f.realtime != nil {
		if err := f.realtime.SendToUser(ctx, userID, model.WSEvent{Type: model.WSEventNotification, Payload: n}); err != nil {
			logger.WithError(err).Warn("realtime delivery failed")
		} else {
			realtimeOK = true
		}
	}

	defer func() {
		record(ctx, f.metrics, model.MetricNotificationSent, map[string]interface{}{
			"user_id":            userID,
			"notification_id":    n.ID.String(),
			"notification_type":  string(typ),
			"notification_title": title,
			"realtime":           realtimeOK,
			"push_delivered":     report.Delivered,
			"push_failed":        report.Failed,
		})
	}()

	if f.transport == nil {
		return report, nil
	}

	devices, err := f.devices.FindByUser(ctx, userID)
	if err != nil {
		logger.WithError(err).Warn("could not load devices, skipping push")
		return report, nil
	}
	if len(devices) == 0 {
		return report, nil
	}

	delivered, failed := f.deliver(ctx, n, devices, logger)
	report.Delivered = delivered
	report.Failed = failed
	span.SetAttributes(attribute.Int("push.delivered", delivered), attribute.Int("push.failed", failed))
	logger.WithFields(log.Fields{"delivered": delivered, "failed": failed}).Debug("push fanout finished")
	return report, nil
}

// SendPush sends one message straight to a device token. Nothing is recorded
// in history and a dead token is not cleaned up, since it may not be registered.
func (f *Fanout) SendPush(ctx context.Context, msg push.Message) (string, error) {
	if f.transport == nil {
		return "", apperr.Unavailable(nil, "push delivery is not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	id, err := f.transport.Send(ctx, msg)
	if err != nil {
		if push.IsPermanent(err) {
			return "", apperr.Validation("push token is invalid")
		}
		return "", apperr.Unavailable(err, "push delivery failed")
	}
	return id, nil
}

// deliver sends to every device in parallel under a shared deadline.
// A failing token never affects its siblings.
func (f *Fanout) deliver(ctx context.Context, n *model.Notification, devices []model.DeviceRegistration, logger *log.Entry) (int, int) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	payload := pushData(n)
	var delivered, failed atomic.Int32

	var g errgroup.Group
	g.SetLimit(f.cfg.Concurrency)
	for _, d := range devices {
		token := d.PushToken
		g.Go(func() error {
			_, err := f.transport.Send(ctx, push.Message{
				Token: token,
				Title: n.Title,
				Body:  n.Body,
				Data:  payload,
			})
			if err == nil {
				delivered.Add(1)
				return nil
			}
			failed.Add(1)
			if push.IsPermanent(err) {
				logger.WithField("token", maskToken(token)).Info("push token is invalid, scheduling removal")
				f.scheduleRemoval(token)
			} else {
				logger.WithField("token", maskToken(token)).WithError(err).Warn("push delivery failed")
			}
			return nil
		})
	}
	_ = g.Wait()

	return int(delivered.Load()), int(failed.Load())
}

// scheduleRemoval deletes a dead token in the background. Errors are logged only.
func (f *Fanout) scheduleRemoval(token string) {
	f.cleanup.Add(1)
	go func() {
		defer f.cleanup.Done()
		ctx, cancel := context.WithTimeout(context.Background(), f.cfg.Timeout)
		defer cancel()
		if err := f.devices.DeleteToken(ctx, token); err != nil {
			log.WithField("token", maskToken(token)).WithError(err).Warn("failed to remove invalid push token")
		}
	}()
}

// WaitCleanup blocks until scheduled token removals have finished
func (f *Fanout) WaitCleanup() {
	f.cleanup.Wait()
}

func pushData(n *model.Notification) map[string]string {
	data := make(map[string]string, len(n.Data)+2)
	for k, v := range n.Data {
		data[k] = fmt.Sprint(v)
	}
	data["type"] = string(n.Type)
	data["notification_id"] = n.ID.String()
	return data
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "…" + token[len(token)-4:]
}
