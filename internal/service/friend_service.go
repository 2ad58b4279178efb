package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quocanhngo/kickoff/internal/apperr"
	"github.com/quocanhngo/kickoff/internal/events"
	"github.com/quocanhngo/kickoff/internal/model"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// FriendStore persists friendships
type FriendStore interface {
	Create(ctx context.Context, f *model.Friendship) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Friendship, error)
	FindBetween(ctx context.Context, a, b string) (*model.Friendship, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.FriendStatus) error
	ListAccepted(ctx context.Context, userID string) ([]model.Friendship, error)
	ListPending(ctx context.Context, userID string) (received, sent []model.Friendship, err error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FriendService is thin CRUD over the friend graph. Requests and
// acceptances are announced through the event bus.
type FriendService struct {
	friends   FriendStore
	users     UserLookup
	publisher events.Publisher
	metrics   MetricsRecorder
}

func NewFriendService(friends FriendStore, users UserLookup, publisher events.Publisher, metrics MetricsRecorder) *FriendService {
	return &FriendService{friends: friends, users: users, publisher: publisher, metrics: metrics}
}

// Request creates a pending friendship from userID to friendID
func (s *FriendService) Request(ctx context.Context, userID, friendID string) (*model.FriendResponse, error) {
	if userID == friendID {
		return nil, apperr.Validation("you cannot add yourself as a friend")
	}
	sender, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	friend, err := s.users.FindByID(ctx, friendID)
	if err != nil {
		return nil, storeErr(err, "user")
	}

	_, err = s.friends.FindBetween(ctx, userID, friendID)
	if err == nil {
		return nil, apperr.Conflict("a friendship already exists between these users")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeErr(err, "friendship")
	}

	f := &model.Friendship{
		UserID:   userID,
		FriendID: friendID,
		Status:   model.FriendStatusPending,
	}
	if err := s.friends.Create(ctx, f); err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("a friendship already exists between these users")
		}
		return nil, storeErr(err, "friendship")
	}

	s.emit(ctx, events.FriendRequest, friendID, sender)
	record(ctx, s.metrics, model.MetricFriendRequestSent, map[string]interface{}{
		"user_id":       userID,
		"receiver_id":   friendID,
		"sender_name":   sender.DisplayName(),
		"receiver_name": friend.DisplayName(),
	})
	return toFriendResponse(f, friend), nil
}

// Respond lets the recipient of a pending request accept, reject or block it
func (s *FriendService) Respond(ctx context.Context, id uuid.UUID, userID string, status model.FriendStatus) (*model.FriendResponse, error) {
	switch status {
	case model.FriendStatusAccepted, model.FriendStatusRejected, model.FriendStatusBlocked:
	default:
		return nil, apperr.Validation("status must be accepted, rejected or blocked")
	}

	f, err := s.friends.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "friendship")
	}
	if f.FriendID != userID {
		if f.UserID == userID {
			return nil, apperr.Forbidden("only the recipient can respond to a friend request")
		}
		return nil, apperr.NotFound("friendship not found")
	}
	if f.Status != model.FriendStatusPending {
		return nil, apperr.InvalidState("friend request is already %s", f.Status)
	}

	if err := s.friends.UpdateStatus(ctx, id, status); err != nil {
		return nil, storeErr(err, "friendship")
	}
	f.Status = status

	if status == model.FriendStatusAccepted && f.Friend != nil {
		s.emit(ctx, events.FriendAccept, f.UserID, f.Friend)
	}
	switch status {
	case model.FriendStatusAccepted:
		record(ctx, s.metrics, model.MetricFriendRequestAccepted, map[string]interface{}{
			"user_id":      userID,
			"requester_id": f.UserID,
		})
	case model.FriendStatusRejected:
		record(ctx, s.metrics, model.MetricFriendRequestRejected, map[string]interface{}{
			"user_id":      userID,
			"requester_id": f.UserID,
		})
	}
	return toFriendResponse(f, f.User), nil
}

// List returns accepted friends of userID
func (s *FriendService) List(ctx context.Context, userID string) ([]model.FriendResponse, error) {
	friendships, err := s.friends.ListAccepted(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "friendship")
	}
	resp := make([]model.FriendResponse, 0, len(friendships))
	for i := range friendships {
		f := &friendships[i]
		other := f.Friend
		if f.FriendID == userID {
			other = f.User
		}
		resp = append(resp, *toFriendResponse(f, other))
	}
	return resp, nil
}

// Pending returns requests received and sent by userID
func (s *FriendService) Pending(ctx context.Context, userID string) (*model.PendingRequestsResponse, error) {
	received, sent, err := s.friends.ListPending(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "friendship")
	}
	resp := &model.PendingRequestsResponse{
		Received: make([]model.FriendResponse, 0, len(received)),
		Sent:     make([]model.FriendResponse, 0, len(sent)),
	}
	for i := range received {
		resp.Received = append(resp.Received, *toFriendResponse(&received[i], received[i].User))
	}
	for i := range sent {
		resp.Sent = append(resp.Sent, *toFriendResponse(&sent[i], sent[i].Friend))
	}
	return resp, nil
}

// Remove deletes a friendship. Either party may remove it.
func (s *FriendService) Remove(ctx context.Context, id uuid.UUID, userID string) error {
	f, err := s.friends.FindByID(ctx, id)
	if err != nil {
		return storeErr(err, "friendship")
	}
	if f.UserID != userID && f.FriendID != userID {
		return apperr.NotFound("friendship not found")
	}
	if err := s.friends.Delete(ctx, id); err != nil {
		return storeErr(err, "friendship")
	}
	return nil
}

func (s *FriendService) emit(ctx context.Context, t events.Type, recipientID string, actor *model.User) {
	if s.publisher == nil {
		return
	}
	e := events.Event{
		Type:        t,
		RecipientID: recipientID,
		ActorID:     actor.ID,
		ActorName:   actor.DisplayName(),
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		log.WithField("type", t).WithError(err).Warn("failed to publish friend event")
	}
}

func toFriendResponse(f *model.Friendship, other *model.User) *model.FriendResponse {
	resp := &model.FriendResponse{
		ID:        f.ID,
		Status:    f.Status,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
	if other != nil {
		resp.Friend = other.ToSummary()
	}
	return resp
}
