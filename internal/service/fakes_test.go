package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/kickoff/internal/events"
	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/quocanhngo/kickoff/internal/repository"
	"github.com/quocanhngo/kickoff/pkg/push"
	"gorm.io/gorm"
)

// ==================== Games ====================

// memGameStore keeps games and memberships in memory. Transactions hold a
// single lock and restore a snapshot on error, like a rolled back database
// transaction holding the game row lock.
type memGameStore struct {
	mu      sync.Mutex
	games   map[uuid.UUID]model.Game
	members map[string]model.GamePlayer
	users   map[string]*model.User
}

func newMemGameStore() *memGameStore {
	return &memGameStore{
		games:   map[uuid.UUID]model.Game{},
		members: map[string]model.GamePlayer{},
		users:   map[string]*model.User{},
	}
}

func memberKey(gameID uuid.UUID, playerID string) string {
	return gameID.String() + "/" + playerID
}

func (s *memGameStore) put(g model.Game) model.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	s.games[g.ID] = g
	return g
}

func (s *memGameStore) game(id uuid.UUID) model.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.games[id]
}

func (s *memGameStore) membership(gameID uuid.UUID, playerID string) (model.GamePlayer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[memberKey(gameID, playerID)]
	return m, ok
}

func (s *memGameStore) rowsFor(gameID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.members {
		if m.GameID == gameID {
			n++
		}
	}
	return n
}

func (s *memGameStore) joinedCount(gameID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countJoinedLocked(gameID)
}

func (s *memGameStore) countJoinedLocked(gameID uuid.UUID) int {
	n := 0
	for _, m := range s.members {
		if m.GameID == gameID && m.Status == model.PlayerStatusJoined {
			n++
		}
	}
	return n
}

func (s *memGameStore) Create(_ context.Context, g *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = uuid.New()
	s.games[g.ID] = *g
	return nil
}

func (s *memGameStore) FindByID(_ context.Context, id uuid.UUID) (*model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &g, nil
}

func (s *memGameStore) List(_ context.Context, fieldID *uuid.UUID, status model.GameStatus) ([]model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Game{}
	for _, g := range s.games {
		if fieldID != nil && g.FieldID != *fieldID {
			continue
		}
		if status != "" && g.Status != status {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *memGameStore) FindJoinedPlayers(_ context.Context, gameID uuid.UUID) ([]model.GamePlayer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.GamePlayer{}
	for _, m := range s.members {
		if m.GameID == gameID && m.Status == model.PlayerStatusJoined {
			m.Player = s.users[m.PlayerID]
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (s *memGameStore) CompleteEnded(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, g := range s.games {
		if g.EndTime.Before(now) && !g.Status.IsTerminal() {
			g.Status = model.GameStatusCompleted
			s.games[id] = g
			n++
		}
	}
	return n, nil
}

func (s *memGameStore) Transaction(_ context.Context, fn func(tx repository.GameTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	games := make(map[uuid.UUID]model.Game, len(s.games))
	for k, v := range s.games {
		games[k] = v
	}
	members := make(map[string]model.GamePlayer, len(s.members))
	for k, v := range s.members {
		members[k] = v
	}

	if err := fn(&memGameTx{s: s}); err != nil {
		s.games, s.members = games, members
		return err
	}
	return nil
}

type memGameTx struct {
	s *memGameStore
}

func (t *memGameTx) LockGame(id uuid.UUID) (*model.Game, error) {
	return t.FindGame(id)
}

func (t *memGameTx) FindGame(id uuid.UUID) (*model.Game, error) {
	g, ok := t.s.games[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &g, nil
}

func (t *memGameTx) ReserveSpot(id uuid.UUID) (bool, error) {
	g, ok := t.s.games[id]
	if !ok || g.Status != model.GameStatusOpen || g.AvailableSpots <= 0 {
		return false, nil
	}
	g.AvailableSpots--
	g.Status = g.DerivedStatus()
	t.s.games[id] = g
	return true, nil
}

func (t *memGameTx) ReleaseSpot(id uuid.UUID) error {
	g := t.s.games[id]
	g.AvailableSpots++
	g.Status = g.DerivedStatus()
	t.s.games[id] = g
	return nil
}

func (t *memGameTx) ActivateMembership(gameID uuid.UUID, playerID string, at time.Time) (*model.GamePlayer, bool, error) {
	key := memberKey(gameID, playerID)
	m, ok := t.s.members[key]
	if ok && m.Status == model.PlayerStatusJoined {
		return nil, false, nil
	}
	if !ok {
		m = model.GamePlayer{ID: uuid.New(), GameID: gameID, PlayerID: playerID}
	}
	m.Status = model.PlayerStatusJoined
	m.JoinedAt = at
	m.UpdatedAt = at
	t.s.members[key] = m
	return &m, true, nil
}

func (t *memGameTx) DeactivateMembership(gameID uuid.UUID, playerID string, to model.PlayerStatus) (*model.GamePlayer, bool, error) {
	key := memberKey(gameID, playerID)
	m, ok := t.s.members[key]
	if !ok || m.Status != model.PlayerStatusJoined {
		return nil, false, nil
	}
	m.Status = to
	t.s.members[key] = m
	return &m, true, nil
}

func (t *memGameTx) UpdateGame(id uuid.UUID, updates map[string]interface{}) error {
	g := t.s.games[id]
	for k, v := range updates {
		switch k {
		case "status":
			g.Status = v.(model.GameStatus)
		case "total_spots":
			g.TotalSpots = v.(int)
		case "available_spots":
			g.AvailableSpots = v.(int)
		case "start_time":
			g.StartTime = v.(time.Time)
		case "end_time":
			g.EndTime = v.(time.Time)
		case "game_level":
			g.GameLevel = v.(int)
		case "game_type":
			g.GameType = v.(int)
		case "field_id":
			g.FieldID = v.(uuid.UUID)
		}
	}
	t.s.games[id] = g
	return nil
}

// ==================== Users / Fields ====================

type memUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemUsers(users ...*model.User) *memUsers {
	m := &memUsers{users: map[string]*model.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

type memFields struct {
	fields map[uuid.UUID]*model.Field
}

func (m *memFields) FindByID(_ context.Context, id uuid.UUID) (*model.Field, error) {
	f, ok := m.fields[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f, nil
}

// ==================== Events ====================

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

// ==================== Notifications ====================

type memNotifications struct {
	mu        sync.Mutex
	items     []model.Notification
	createErr error
}

func (m *memNotifications) Create(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	m.items = append(m.items, *n)
	return nil
}

func (m *memNotifications) FindForUser(_ context.Context, id uuid.UUID, userID string) (*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].UserID == userID {
			n := m.items[i]
			return &n, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memNotifications) List(_ context.Context, userID string, unreadOnly bool, page, limit int) ([]model.Notification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []model.Notification
	for i := len(m.items) - 1; i >= 0; i-- {
		n := m.items[i]
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			matched = append(matched, n)
		}
	}
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], int64(len(matched)), nil
}

func (m *memNotifications) CountUnread(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, item := range m.items {
		if item.UserID == userID && !item.Read {
			n++
		}
	}
	return n, nil
}

func (m *memNotifications) MarkRead(_ context.Context, id uuid.UUID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].UserID == userID {
			m.items[i].Read = true
			return true, nil
		}
	}
	return false, nil
}

func (m *memNotifications) MarkAllRead(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.items {
		if m.items[i].UserID == userID && !m.items[i].Read {
			m.items[i].Read = true
			n++
		}
	}
	return n, nil
}

func (m *memNotifications) forUser(userID string) []model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Notification
	for _, n := range m.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type memDevices struct {
	mu        sync.Mutex
	devices   []model.DeviceRegistration
	deleted   []string
	deleteErr error
	findErr   error
}

func (m *memDevices) Upsert(_ context.Context, userID, token, deviceType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.devices {
		if m.devices[i].UserID == userID && m.devices[i].PushToken == token {
			m.devices[i].LastUsedAt = time.Now()
			m.devices[i].DeviceType = deviceType
			return nil
		}
	}
	m.devices = append(m.devices, model.DeviceRegistration{
		ID: uuid.New(), UserID: userID, PushToken: token, DeviceType: deviceType,
		CreatedAt: time.Now(), LastUsedAt: time.Now(),
	})
	return nil
}

func (m *memDevices) FindByUser(_ context.Context, userID string) ([]model.DeviceRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []model.DeviceRegistration
	for _, d := range m.devices {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDevices) Delete(_ context.Context, userID, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.devices {
		if m.devices[i].UserID == userID && m.devices[i].PushToken == token {
			m.devices = append(m.devices[:i], m.devices[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memDevices) DeleteToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, token)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	kept := m.devices[:0]
	for _, d := range m.devices {
		if d.PushToken != token {
			kept = append(kept, d)
		}
	}
	m.devices = kept
	return nil
}

func (m *memDevices) tokens(userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, d := range m.devices {
		if d.UserID == userID {
			out = append(out, d.PushToken)
		}
	}
	return out
}

// scriptedTransport fails tokens listed in invalid (permanently) or flaky (transiently)
type scriptedTransport struct {
	mu      sync.Mutex
	invalid map[string]bool
	flaky   map[string]bool
	sent    []push.Message
}

func (t *scriptedTransport) Send(_ context.Context, msg push.Message) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, msg)
	if t.invalid[msg.Token] {
		return "", push.ErrTokenInvalid
	}
	if t.flaky[msg.Token] {
		return "", errors.New("provider timeout")
	}
	return "msg-" + msg.Token, nil
}

type recordingRealtime struct {
	mu     sync.Mutex
	events map[string][]model.WSEvent
	err    error
}

func (r *recordingRealtime) SendToUser(_ context.Context, userID string, e model.WSEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		r.events = map[string][]model.WSEvent{}
	}
	r.events[userID] = append(r.events[userID], e)
	return r.err
}

func (r *recordingRealtime) sent(userID string) []model.WSEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.WSEvent(nil), r.events[userID]...)
}

// ==================== Metrics ====================

type recordingMetrics struct {
	mu     sync.Mutex
	events []model.Metric
}

func (r *recordingMetrics) Log(_ context.Context, eventType model.MetricEventType, data map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, model.Metric{EventType: eventType, EventData: data})
}

func (r *recordingMetrics) ofType(eventType model.MetricEventType) []model.Metric {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Metric{}
	for _, m := range r.events {
		if m.EventType == eventType {
			out = append(out, m)
		}
	}
	return out
}
