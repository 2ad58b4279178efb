package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/kickoff/internal/apperr"
	"github.com/quocanhngo/kickoff/internal/events"
	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/quocanhngo/kickoff/internal/repository"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// GameStore is the persistence the game service needs
type GameStore interface {
	Create(ctx context.Context, game *model.Game) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Game, error)
	List(ctx context.Context, fieldID *uuid.UUID, status model.GameStatus) ([]model.Game, error)
	FindJoinedPlayers(ctx context.Context, gameID uuid.UUID) ([]model.GamePlayer, error)
	CompleteEnded(ctx context.Context, now time.Time) (int64, error)
	Transaction(ctx context.Context, fn func(tx repository.GameTx) error) error
}

// FieldLookup resolves field references
type FieldLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Field, error)
}

// UserLookup resolves user display data
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// GameService owns game capacity, status transitions and the membership ledger
type GameService struct {
	games     GameStore
	fields    FieldLookup
	users     UserLookup
	publisher events.Publisher
	now       func() time.Time
}

func NewGameService(games GameStore, fields FieldLookup, users UserLookup, publisher events.Publisher) *GameService {
	return &GameService{
		games:     games,
		fields:    fields,
		users:     users,
		publisher: publisher,
		now:       time.Now,
	}
}

// ==================== Create / Read ====================

// Create validates and persists a new game organized by organizerID
func (s *GameService) Create(ctx context.Context, organizerID string, req model.CreateGameRequest) (*model.Game, error) {
	available := req.TotalSpots
	if req.AvailableSpots != nil {
		available = *req.AvailableSpots
	}
	if err := validateGame(req.GameType, req.GameLevel, req.StartTime, req.EndTime, req.TotalSpots, available, req.PricePerPlayer); err != nil {
		return nil, err
	}
	if _, err := s.fields.FindByID(ctx, req.FieldID); err != nil {
		return nil, storeErr(err, "field")
	}

	game := &model.Game{
		FieldID:        req.FieldID,
		OrganizerID:    organizerID,
		GameType:       req.GameType,
		GameLevel:      req.GameLevel,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		TotalSpots:     req.TotalSpots,
		AvailableSpots: available,
		PricePerPlayer: req.PricePerPlayer,
		Status:         model.GameStatusOpen,
	}
	game.Status = game.DerivedStatus()

	if err := s.games.Create(ctx, game); err != nil {
		return nil, storeErr(err, "game")
	}
	log.WithFields(log.Fields{"game_id": game.ID, "organizer_id": organizerID}).Info("game created")
	return game, nil
}

// Get returns a game by ID
func (s *GameService) Get(ctx context.Context, id uuid.UUID) (*model.Game, error) {
	game, err := s.games.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "game")
	}
	return game, nil
}

// List returns games filtered by field and status
func (s *GameService) List(ctx context.Context, req model.GameListRequest) ([]model.Game, error) {
	var fieldID *uuid.UUID
	if req.FieldID != "" {
		id, err := uuid.Parse(req.FieldID)
		if err != nil {
			return nil, apperr.Validation("invalid field id")
		}
		fieldID = &id
	}
	games, err := s.games.List(ctx, fieldID, model.GameStatus(req.Status))
	if err != nil {
		return nil, storeErr(err, "game")
	}
	return games, nil
}

// ListPlayers returns joined memberships in join order with a spot snapshot
func (s *GameService) ListPlayers(ctx context.Context, gameID uuid.UUID) (*model.GamePlayersResponse, error) {
	game, err := s.games.FindByID(ctx, gameID)
	if err != nil {
		return nil, storeErr(err, "game")
	}
	players, err := s.games.FindJoinedPlayers(ctx, gameID)
	if err != nil {
		return nil, storeErr(err, "game players")
	}

	resp := &model.GamePlayersResponse{
		Players:        make([]model.GamePlayerResponse, 0, len(players)),
		TotalPlayers:   len(players),
		AvailableSpots: game.AvailableSpots,
		TotalSpots:     game.TotalSpots,
	}
	for _, p := range players {
		item := model.GamePlayerResponse{
			ID:       p.ID,
			GameID:   p.GameID,
			PlayerID: p.PlayerID,
			JoinedAt: p.JoinedAt,
			Status:   p.Status,
			Player:   model.PlayerSummary{ID: p.PlayerID},
		}
		if p.Player != nil {
			item.Player = p.Player.ToSummary()
		}
		resp.Players = append(resp.Players, item)
	}
	return resp, nil
}

// ==================== Membership ====================

// Join takes one spot for playerID. The spot decrement and the membership
// write commit together or not at all.
func (s *GameService) Join(ctx context.Context, gameID uuid.UUID, playerID string) (*model.GamePlayer, error) {
	ctx, span := tracer.Start(ctx, "GameService.Join", trace.WithAttributes(
		attribute.String("game.id", gameID.String()),
		attribute.String("player.id", playerID),
	))
	defer span.End()

	var game *model.Game
	var membership *model.GamePlayer
	err := s.games.Transaction(ctx, func(tx repository.GameTx) error {
		reserved, err := tx.ReserveSpot(gameID)
		if err != nil {
			return err
		}
		if !reserved {
			return explainRejectedJoin(tx, gameID)
		}

		m, activated, err := tx.ActivateMembership(gameID, playerID, s.now())
		if err != nil {
			return err
		}
		if !activated {
			return apperr.Conflict("player already joined this game")
		}

		g, err := tx.FindGame(gameID)
		if err != nil {
			return err
		}
		game, membership = g, m
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, storeErr(err, "game")
	}

	log.WithFields(log.Fields{
		"game_id":         gameID,
		"player_id":       playerID,
		"available_spots": game.AvailableSpots,
		"status":          game.Status,
	}).Info("player joined game")

	s.emit(ctx, events.GameJoin, game.OrganizerID, playerID, game)
	return membership, nil
}

// explainRejectedJoin turns a failed conditional reserve into the right error kind
func explainRejectedJoin(tx repository.GameTx, gameID uuid.UUID) error {
	g, err := tx.FindGame(gameID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("game not found")
	}
	if err != nil {
		return err
	}
	if g.Status.IsTerminal() {
		return apperr.InvalidState("game is %s", g.Status)
	}
	return apperr.CapacityExceeded("game has no available spots")
}

// Leave gives playerID's spot back
func (s *GameService) Leave(ctx context.Context, gameID uuid.UUID, playerID string) error {
	ctx, span := tracer.Start(ctx, "GameService.Leave", trace.WithAttributes(
		attribute.String("game.id", gameID.String()),
		attribute.String("player.id", playerID),
	))
	defer span.End()

	game, err := s.release(ctx, gameID, playerID, model.PlayerStatusLeft, nil)
	if err != nil {
		span.RecordError(err)
		return err
	}

	log.WithFields(log.Fields{"game_id": gameID, "player_id": playerID}).Info("player left game")
	s.emit(ctx, events.GameLeave, game.OrganizerID, playerID, game)
	return nil
}

// Kick removes playerID on behalf of the organizer
func (s *GameService) Kick(ctx context.Context, gameID uuid.UUID, playerID, requesterID string) error {
	ctx, span := tracer.Start(ctx, "GameService.Kick", trace.WithAttributes(
		attribute.String("game.id", gameID.String()),
		attribute.String("player.id", playerID),
	))
	defer span.End()

	requireOrganizer := func(g *model.Game) error {
		if g.OrganizerID != requesterID {
			return apperr.Forbidden("only the organizer can kick players")
		}
		return nil
	}
	game, err := s.release(ctx, gameID, playerID, model.PlayerStatusKicked, requireOrganizer)
	if err != nil {
		span.RecordError(err)
		return err
	}

	log.WithFields(log.Fields{"game_id": gameID, "player_id": playerID, "by": requesterID}).Info("player kicked from game")
	s.emit(ctx, events.GameKick, playerID, requesterID, game)
	return nil
}

// release deactivates a joined membership and returns its spot, under the game row lock
func (s *GameService) release(ctx context.Context, gameID uuid.UUID, playerID string, to model.PlayerStatus, check func(*model.Game) error) (*model.Game, error) {
	var game *model.Game
	err := s.games.Transaction(ctx, func(tx repository.GameTx) error {
		g, err := tx.LockGame(gameID)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(g); err != nil {
				return err
			}
		}

		_, ok, err := tx.DeactivateMembership(gameID, playerID, to)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("player is not in this game")
		}
		if err := tx.ReleaseSpot(gameID); err != nil {
			return err
		}

		game, err = tx.FindGame(gameID)
		return err
	})
	if err != nil {
		return nil, storeErr(err, "game")
	}
	return game, nil
}

// ==================== Organizer actions ====================

// Update applies an organizer's partial edit. Changing total spots shifts
// available spots by the same amount, so joined players keep their spots.
func (s *GameService) Update(ctx context.Context, gameID uuid.UUID, requesterID string, req model.UpdateGameRequest) (*model.Game, error) {
	if req.FieldID != nil {
		if _, err := s.fields.FindByID(ctx, *req.FieldID); err != nil {
			return nil, storeErr(err, "field")
		}
	}

	var updated *model.Game
	err := s.games.Transaction(ctx, func(tx repository.GameTx) error {
		g, err := tx.LockGame(gameID)
		if err != nil {
			return err
		}
		if g.OrganizerID != requesterID {
			return apperr.Forbidden("only the organizer can edit this game")
		}
		if g.Status.IsTerminal() {
			return apperr.InvalidState("game is %s", g.Status)
		}

		next := *g
		applyGameUpdate(&next, req)
		if req.TotalSpots != nil {
			next.AvailableSpots = g.AvailableSpots + (next.TotalSpots - g.TotalSpots)
			if next.AvailableSpots < 0 {
				return apperr.Validation("total spots cannot be lower than the number of joined players")
			}
		}
		if err := validateGame(next.GameType, next.GameLevel, next.StartTime, next.EndTime, next.TotalSpots, next.AvailableSpots, next.PricePerPlayer); err != nil {
			return err
		}
		next.Status = next.DerivedStatus()

		if err := tx.UpdateGame(gameID, map[string]interface{}{
			"field_id":         next.FieldID,
			"game_type":        next.GameType,
			"game_level":       next.GameLevel,
			"start_time":       next.StartTime,
			"end_time":         next.EndTime,
			"total_spots":      next.TotalSpots,
			"available_spots":  next.AvailableSpots,
			"price_per_player": next.PricePerPlayer,
			"status":           next.Status,
			"updated_at":       s.now(),
		}); err != nil {
			return err
		}

		updated, err = tx.FindGame(gameID)
		return err
	})
	if err != nil {
		return nil, storeErr(err, "game")
	}
	s.notifyPlayers(ctx, events.GameUpdate, requesterID, updated)
	return updated, nil
}

func applyGameUpdate(g *model.Game, req model.UpdateGameRequest) {
	if req.FieldID != nil {
		g.FieldID = *req.FieldID
	}
	if req.GameType != nil {
		g.GameType = *req.GameType
	}
	if req.GameLevel != nil {
		g.GameLevel = *req.GameLevel
	}
	if req.StartTime != nil {
		g.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		g.EndTime = *req.EndTime
	}
	if req.TotalSpots != nil {
		g.TotalSpots = *req.TotalSpots
	}
	if req.PricePerPlayer != nil {
		g.PricePerPlayer = *req.PricePerPlayer
	}
}

// Cancel moves an open or full game to cancelled and tells every joined player
func (s *GameService) Cancel(ctx context.Context, gameID uuid.UUID, requesterID string) (*model.Game, error) {
	game, err := s.finish(ctx, gameID, requesterID, model.GameStatusCancelled)
	if err != nil {
		return nil, err
	}

	s.notifyPlayers(ctx, events.GameCancel, requesterID, game)
	return game, nil
}

// Complete moves an open or full game to completed
func (s *GameService) Complete(ctx context.Context, gameID uuid.UUID, requesterID string) (*model.Game, error) {
	return s.finish(ctx, gameID, requesterID, model.GameStatusCompleted)
}

func (s *GameService) finish(ctx context.Context, gameID uuid.UUID, requesterID string, to model.GameStatus) (*model.Game, error) {
	var game *model.Game
	err := s.games.Transaction(ctx, func(tx repository.GameTx) error {
		g, err := tx.LockGame(gameID)
		if err != nil {
			return err
		}
		if g.OrganizerID != requesterID {
			return apperr.Forbidden("only the organizer can %s this game", verbFor(to))
		}
		if g.Status.IsTerminal() {
			return apperr.InvalidState("game is already %s", g.Status)
		}
		if err := tx.UpdateGame(gameID, map[string]interface{}{
			"status":     to,
			"updated_at": s.now(),
		}); err != nil {
			return err
		}
		game, err = tx.FindGame(gameID)
		return err
	})
	if err != nil {
		return nil, storeErr(err, "game")
	}
	log.WithFields(log.Fields{"game_id": gameID, "status": to}).Info("game finished")
	return game, nil
}

func verbFor(s model.GameStatus) string {
	if s == model.GameStatusCancelled {
		return "cancel"
	}
	return "complete"
}

// CompleteEnded marks every open or full game whose end time has passed as completed
func (s *GameService) CompleteEnded(ctx context.Context) (int64, error) {
	n, err := s.games.CompleteEnded(ctx, s.now())
	if err != nil {
		return 0, storeErr(err, "game")
	}
	return n, nil
}

// ==================== Helpers ====================

// notifyPlayers emits t to every joined player except the organizer
func (s *GameService) notifyPlayers(ctx context.Context, t events.Type, actorID string, game *model.Game) {
	players, err := s.games.FindJoinedPlayers(ctx, game.ID)
	if err != nil {
		log.WithFields(log.Fields{"game_id": game.ID, "type": t}).WithError(err).Warn("could not load players to notify")
		return
	}
	for _, p := range players {
		if p.PlayerID == game.OrganizerID {
			continue
		}
		s.emit(ctx, t, p.PlayerID, actorID, game)
	}
}

// emit publishes a game event. Failures are logged and never reach the caller.
func (s *GameService) emit(ctx context.Context, t events.Type, recipientID, actorID string, game *model.Game) {
	if s.publisher == nil || recipientID == "" {
		return
	}
	gameID := game.ID
	start := game.StartTime
	e := events.Event{
		Type:        t,
		RecipientID: recipientID,
		ActorID:     actorID,
		ActorName:   s.displayName(ctx, actorID),
		GameID:      &gameID,
		GameType:    game.GameType,
		StartTime:   &start,
		OccurredAt:  s.now(),
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		log.WithFields(log.Fields{"type": t, "game_id": game.ID}).WithError(err).Warn("failed to publish game event")
	}
}

func (s *GameService) displayName(ctx context.Context, userID string) string {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "A player"
	}
	return u.DisplayName()
}

// validateGame checks the game contract on a fully merged game
func validateGame(gameType, level int, start, end time.Time, total, available int, price decimal.Decimal) error {
	if gameType != model.GameTypeFive && gameType != model.GameTypeSeven {
		return apperr.Validation("game type must be 5 or 7")
	}
	if level < model.MinGameLevel || level > model.MaxGameLevel {
		return apperr.Validation("game level must be between %d and %d", model.MinGameLevel, model.MaxGameLevel)
	}
	if !start.Before(end) {
		return apperr.Validation("start time must be before end time")
	}
	if total <= 0 {
		return apperr.Validation("total spots must be positive")
	}
	if available < 0 || available > total {
		return apperr.Validation("available spots must be between 0 and total spots")
	}
	if price.IsNegative() {
		return apperr.Validation("price per player cannot be negative")
	}
	return nil
}
