package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/kickoff/internal/apperr"
	"github.com/quocanhngo/kickoff/internal/events"
	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memFriends struct {
	mu    sync.Mutex
	users *memUsers
	rows  map[uuid.UUID]*model.Friendship
}

func (m *memFriends) Create(_ context.Context, f *model.Friendship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ID = uuid.New()
	f.CreatedAt, f.UpdatedAt = time.Now(), time.Now()
	cp := *f
	m.rows[f.ID] = &cp
	return nil
}

func (m *memFriends) load(f model.Friendship) *model.Friendship {
	f.User, _ = m.users.FindByID(context.Background(), f.UserID)
	f.Friend, _ = m.users.FindByID(context.Background(), f.FriendID)
	return &f
}

func (m *memFriends) FindByID(_ context.Context, id uuid.UUID) (*model.Friendship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.load(*f), nil
}

func (m *memFriends) FindBetween(_ context.Context, a, b string) (*model.Friendship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.rows {
		if (f.UserID == a && f.FriendID == b) || (f.UserID == b && f.FriendID == a) {
			return m.load(*f), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memFriends) UpdateStatus(_ context.Context, id uuid.UUID, status model.FriendStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id].Status = status
	return nil
}

func (m *memFriends) ListAccepted(_ context.Context, userID string) ([]model.Friendship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Friendship{}
	for _, f := range m.rows {
		if (f.UserID == userID || f.FriendID == userID) && f.Status == model.FriendStatusAccepted {
			out = append(out, *m.load(*f))
		}
	}
	return out, nil
}

func (m *memFriends) ListPending(_ context.Context, userID string) (received, sent []model.Friendship, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.rows {
		if f.Status != model.FriendStatusPending {
			continue
		}
		if f.FriendID == userID {
			received = append(received, *m.load(*f))
		}
		if f.UserID == userID {
			sent = append(sent, *m.load(*f))
		}
	}
	return received, sent, nil
}

func (m *memFriends) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func newFriendFixture() (*FriendService, *recordingPublisher) {
	svc, pub, _ := newMeteredFriendFixture()
	return svc, pub
}

func newMeteredFriendFixture() (*FriendService, *recordingPublisher, *recordingMetrics) {
	users := newMemUsers(
		&model.User{ID: "u1", FullName: "Ana"},
		&model.User{ID: "u2", FullName: "Beto"},
		&model.User{ID: "u3", FullName: "Caro"},
	)
	pub := &recordingPublisher{}
	store := &memFriends{users: users, rows: map[uuid.UUID]*model.Friendship{}}
	metrics := &recordingMetrics{}
	return NewFriendService(store, users, pub, metrics), pub, metrics
}

func TestFriendRequest_Lifecycle(t *testing.T) {
	svc, pub := newFriendFixture()
	ctx := context.Background()

	req, err := svc.Request(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, model.FriendStatusPending, req.Status)
	assert.Equal(t, "Beto", req.Friend.FullName)

	pending, err := svc.Pending(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, pending.Received, 1)
	assert.Equal(t, "Ana", pending.Received[0].Friend.FullName)

	_, err = svc.Respond(ctx, req.ID, "u1", model.FriendStatusAccepted)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = svc.Respond(ctx, req.ID, "u3", model.FriendStatusAccepted)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	accepted, err := svc.Respond(ctx, req.ID, "u2", model.FriendStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, model.FriendStatusAccepted, accepted.Status)

	_, err = svc.Respond(ctx, req.ID, "u2", model.FriendStatusBlocked)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	friends, err := svc.List(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "Ana", friends[0].Friend.FullName)

	evs := pub.published()
	require.Len(t, evs, 2)
	assert.Equal(t, events.FriendRequest, evs[0].Type)
	assert.Equal(t, "u2", evs[0].RecipientID)
	assert.Equal(t, "Ana", evs[0].ActorName)
	assert.Equal(t, events.FriendAccept, evs[1].Type)
	assert.Equal(t, "u1", evs[1].RecipientID)
	assert.Equal(t, "Beto", evs[1].ActorName)
}

func TestFriendRequest_Errors(t *testing.T) {
	svc, _ := newFriendFixture()
	ctx := context.Background()

	_, err := svc.Request(ctx, "u1", "u1")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Request(ctx, "u1", "ghost")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.Request(ctx, "u1", "u2")
	require.NoError(t, err)
	_, err = svc.Request(ctx, "u2", "u1")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestFriendRemove(t *testing.T) {
	svc, _ := newFriendFixture()
	ctx := context.Background()
	req, err := svc.Request(ctx, "u1", "u2")
	require.NoError(t, err)

	err = svc.Remove(ctx, req.ID, "u3")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	require.NoError(t, svc.Remove(ctx, req.ID, "u2"))
	err = svc.Remove(ctx, req.ID, "u2")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestFriendRequest_RecordsMetrics(t *testing.T) {
	svc, _, metrics := newMeteredFriendFixture()
	ctx := context.Background()

	first, err := svc.Request(ctx, "u1", "u2")
	require.NoError(t, err)
	second, err := svc.Request(ctx, "u3", "u2")
	require.NoError(t, err)

	_, err = svc.Respond(ctx, first.ID, "u2", model.FriendStatusAccepted)
	require.NoError(t, err)
	_, err = svc.Respond(ctx, second.ID, "u2", model.FriendStatusRejected)
	require.NoError(t, err)

	sent := metrics.ofType(model.MetricFriendRequestSent)
	require.Len(t, sent, 2)
	assert.Equal(t, "u1", sent[0].EventData["user_id"])
	assert.Equal(t, "u2", sent[0].EventData["receiver_id"])
	assert.Equal(t, "Beto", sent[0].EventData["receiver_name"])

	accepted := metrics.ofType(model.MetricFriendRequestAccepted)
	require.Len(t, accepted, 1)
	assert.Equal(t, "u2", accepted[0].EventData["user_id"])
	assert.Equal(t, "u1", accepted[0].EventData["requester_id"])

	rejected := metrics.ofType(model.MetricFriendRequestRejected)
	require.Len(t, rejected, 1)
	assert.Equal(t, "u3", rejected[0].EventData["requester_id"])

	// A failed request records nothing.
	_, err = svc.Request(ctx, "u1", "u1")
	require.Error(t, err)
	assert.Len(t, metrics.ofType(model.MetricFriendRequestSent), 2)
}
