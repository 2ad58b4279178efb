package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/kickoff/internal/apperr"
	"github.com/quocanhngo/kickoff/internal/events"
	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/quocanhngo/kickoff/pkg/push"
	log "github.com/sirupsen/logrus"
)

// NotificationService turns domain events into notifications and serves
// a user's notification history and devices.
type NotificationService struct {
	store    NotificationStore
	devices  DeviceStore
	fanout   *Fanout
	realtime RealtimeSender
}

func NewNotificationService(store NotificationStore, devices DeviceStore, fanout *Fanout, realtime RealtimeSender) *NotificationService {
	return &NotificationService{
		store:    store,
		devices:  devices,
		fanout:   fanout,
		realtime: realtime,
	}
}

// ==================== Event handling ====================

// HandleEvent is the event bus consumer
func (s *NotificationService) HandleEvent(ctx context.Context, e events.Event) error {
	var err error
	switch e.Type {
	case events.GameJoin, events.GameLeave, events.GameKick, events.GameCancel, events.GameUpdate:
		_, err = s.notifyGame(ctx, e)
	case events.FriendRequest:
		_, err = s.NotifyFriendRequest(ctx, e.RecipientID, e.ActorName, e.ActorID)
	case events.FriendAccept:
		_, err = s.NotifyFriendAccept(ctx, e.RecipientID, e.ActorName, e.ActorID)
	default:
		log.WithField("type", e.Type).Warn("ignoring unknown event type")
	}
	return err
}

func (s *NotificationService) notifyGame(ctx context.Context, e events.Event) (*model.DeliveryReport, error) {
	when := ""
	if e.StartTime != nil {
		when = e.StartTime.UTC().Format("Mon Jan 2 15:04 MST")
	}
	kind := gameTypeText(e.GameType)
	data := map[string]interface{}{
		"game_type": e.GameType,
	}
	if e.GameID != nil {
		data["game_id"] = e.GameID.String()
	}

	var typ model.NotificationType
	var title, body string
	switch e.Type {
	case events.GameJoin:
		typ, title = model.NotificationGameJoin, "A new player joined your game"
		body = fmt.Sprintf("%s joined your %s game on %s", e.ActorName, kind, when)
		data["player_name"] = e.ActorName
	case events.GameLeave:
		typ, title = model.NotificationGameLeave, "A player left your game"
		body = fmt.Sprintf("%s left your %s game on %s", e.ActorName, kind, when)
		data["player_name"] = e.ActorName
	case events.GameKick:
		typ, title = model.NotificationGameKick, "You were removed from a game"
		body = fmt.Sprintf("You have been removed from the %s game on %s", kind, when)
	case events.GameCancel:
		typ, title = model.NotificationGameCancel, "A game was cancelled"
		body = fmt.Sprintf("The %s game on %s has been cancelled by the organizer", kind, when)
	case events.GameUpdate:
		typ, title = model.NotificationGameUpdate, "A game you joined was updated"
		body = fmt.Sprintf("The organizer changed the details of the %s game on %s", kind, when)
	}
	return s.fanout.Notify(ctx, e.RecipientID, typ, title, body, data)
}

func gameTypeText(gameType int) string {
	if gameType == model.GameTypeFive {
		return "5-a-side"
	}
	return "7-a-side"
}

// NotifyFriendRequest tells receiverID about a new friend request
func (s *NotificationService) NotifyFriendRequest(ctx context.Context, receiverID, senderName, senderID string) (*model.DeliveryReport, error) {
	return s.fanout.Notify(ctx, receiverID, model.NotificationFriendRequest,
		"New friend request",
		fmt.Sprintf("%s sent you a friend request", senderName),
		map[string]interface{}{"sender_id": senderID, "sender_name": senderName},
	)
}

// NotifyFriendAccept tells the original requester that the request was accepted
func (s *NotificationService) NotifyFriendAccept(ctx context.Context, senderID, accepterName, accepterID string) (*model.DeliveryReport, error) {
	return s.fanout.Notify(ctx, senderID, model.NotificationFriendAccept,
		"Friend request accepted",
		fmt.Sprintf("%s accepted your friend request", accepterName),
		map[string]interface{}{"accepter_id": accepterID, "accepter_name": accepterName},
	)
}

// ==================== Operator sends ====================

// SendToUser records a general notification for req.UserID and pushes it to
// every registered device, returning the per-device outcome.
func (s *NotificationService) SendToUser(ctx context.Context, req model.SendToUserRequest) (*model.DeliveryReport, error) {
	return s.fanout.Notify(ctx, req.UserID, model.NotificationGeneral, req.Title, req.Body, req.Data)
}

// SendPush delivers one push to a raw device token
func (s *NotificationService) SendPush(ctx context.Context, req model.SendPushRequest) (*model.SendPushResponse, error) {
	id, err := s.fanout.SendPush(ctx, push.Message{
		Token: req.PushToken,
		Title: req.Title,
		Body:  req.Body,
		Data:  req.Data,
	})
	if err != nil {
		return nil, err
	}
	return &model.SendPushResponse{MessageID: id}, nil
}

// ==================== History ====================

// List returns a page of the user's notifications with totals
func (s *NotificationService) List(ctx context.Context, userID string, req model.NotificationListRequest) (*model.NotificationListResponse, error) {
	items, total, err := s.store.List(ctx, userID, req.UnreadOnly, req.Page, req.Limit)
	if err != nil {
		return nil, storeErr(err, "notification")
	}
	unread, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "notification")
	}
	return &model.NotificationListResponse{
		Notifications: items,
		Total:         total,
		UnreadCount:   unread,
	}, nil
}

// UnreadCount returns how many notifications the user has not read
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	n, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, storeErr(err, "notification")
	}
	return n, nil
}

// Get returns one of the user's notifications
func (s *NotificationService) Get(ctx context.Context, id uuid.UUID, userID string) (*model.Notification, error) {
	n, err := s.store.FindForUser(ctx, id, userID)
	if err != nil {
		return nil, storeErr(err, "notification")
	}
	return n, nil
}

// MarkRead flips one notification to read and pushes the new unread count
func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID, userID string) error {
	ok, err := s.store.MarkRead(ctx, id, userID)
	if err != nil {
		return storeErr(err, "notification")
	}
	if !ok {
		return apperr.NotFound("notification not found")
	}
	s.pushUnreadCount(ctx, userID)
	return nil
}

// MarkAllRead flips every unread notification and returns how many changed
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.store.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, storeErr(err, "notification")
	}
	s.pushUnreadCount(ctx, userID)
	return n, nil
}

func (s *NotificationService) pushUnreadCount(ctx context.Context, userID string) {
	if s.realtime == nil {
		return
	}
	count, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		log.WithField("user_id", userID).WithError(err).Warn("could not count unread notifications")
		return
	}
	event := model.WSEvent{
		Type:    model.WSEventUnreadCountChanged,
		Payload: model.UnreadCountEvent{UserID: userID, UnreadCount: count},
	}
	if err := s.realtime.SendToUser(ctx, userID, event); err != nil {
		log.WithField("user_id", userID).WithError(err).Warn("failed to push unread count")
	}
}

// ==================== Devices ====================

// RegisterDevice upserts a push token for the user
func (s *NotificationService) RegisterDevice(ctx context.Context, userID string, req model.RegisterDeviceRequest) error {
	deviceType := req.DeviceType
	if deviceType == "" {
		deviceType = "unknown"
	}
	if err := s.devices.Upsert(ctx, userID, req.PushToken, deviceType); err != nil {
		return storeErr(err, "device")
	}
	return nil
}

// RemoveDevice deletes one of the user's push tokens
func (s *NotificationService) RemoveDevice(ctx context.Context, userID, token string) error {
	ok, err := s.devices.Delete(ctx, userID, token)
	if err != nil {
		return storeErr(err, "device")
	}
	if !ok {
		return apperr.NotFound("device not found")
	}
	return nil
}

// EventTimeout bounds how long one event may spend in HandleEvent
const EventTimeout = 30 * time.Second
