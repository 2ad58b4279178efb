package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/kickoff/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GameTx is the set of game and membership mutations available inside one
// database transaction. Every mutating operation starts by locking the game
// row (ReserveSpot or LockGame), so operations on one game are serialized
// while different games proceed in parallel.
type GameTx interface {
	LockGame(id uuid.UUID) (*model.Game, error)
	FindGame(id uuid.UUID) (*model.Game, error)
	ReserveSpot(id uuid.UUID) (bool, error)
	ReleaseSpot(id uuid.UUID) error
	ActivateMembership(gameID uuid.UUID, playerID string, at time.Time) (*model.GamePlayer, bool, error)
	DeactivateMembership(gameID uuid.UUID, playerID string, to model.PlayerStatus) (*model.GamePlayer, bool, error)
	UpdateGame(id uuid.UUID, updates map[string]interface{}) error
}

// GameRepository handles database operations for Game and GamePlayer
type GameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) *GameRepository {
	return &GameRepository{db: db}
}

// Create inserts a new game
func (r *GameRepository) Create(ctx context.Context, game *model.Game) error {
	return r.db.WithContext(ctx).Create(game).Error
}

// FindByID finds a game by ID
func (r *GameRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Game, error) {
	var game model.Game
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&game).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// List returns games filtered by field and status, soonest first
func (r *GameRepository) List(ctx context.Context, fieldID *uuid.UUID, status model.GameStatus) ([]model.Game, error) {
	games := []model.Game{}
	query := r.db.WithContext(ctx).Model(&model.Game{})
	if fieldID != nil {
		query = query.Where("field_id = ?", *fieldID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("start_time ASC").Find(&games).Error
	return games, err
}

// FindJoinedPlayers returns active memberships with their players, oldest join first
func (r *GameRepository) FindJoinedPlayers(ctx context.Context, gameID uuid.UUID) ([]model.GamePlayer, error) {
	players := []model.GamePlayer{}
	err := r.db.WithContext(ctx).
		Preload("Player").
		Where("game_id = ? AND status = ?", gameID, model.PlayerStatusJoined).
		Order("joined_at ASC").
		Find(&players).Error
	return players, err
}

// CompleteEnded marks open or full games whose end time has passed as completed
func (r *GameRepository) CompleteEnded(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Game{}).
		Where("end_time < ? AND status IN ?", now, []model.GameStatus{model.GameStatusOpen, model.GameStatusFull}).
		Updates(map[string]interface{}{
			"status":     model.GameStatusCompleted,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

// Transaction runs fn inside a database transaction. Returning an error rolls back.
func (r *GameRepository) Transaction(ctx context.Context, fn func(tx GameTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gameTx{db: tx})
	})
}

type gameTx struct {
	db *gorm.DB
}

// LockGame reads a game with a row lock held until the transaction ends
func (t *gameTx) LockGame(id uuid.UUID) (*model.Game, error) {
	var game model.Game
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&game).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (t *gameTx) FindGame(id uuid.UUID) (*model.Game, error) {
	var game model.Game
	err := t.db.Where("id = ?", id).First(&game).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// ReserveSpot takes one spot from an open game in a single conditional
// update and reports whether a spot was taken. Status follows the count.
func (t *gameTx) ReserveSpot(id uuid.UUID) (bool, error) {
	result := t.db.Exec(`
		UPDATE games
		SET available_spots = available_spots - 1,
		    status = CASE WHEN available_spots - 1 = 0 THEN 'full' ELSE 'open' END,
		    updated_at = NOW()
		WHERE id = ? AND status = 'open' AND available_spots > 0`, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ReleaseSpot gives one spot back. A full game reopens; terminal games keep their status.
func (t *gameTx) ReleaseSpot(id uuid.UUID) error {
	return t.db.Exec(`
		UPDATE games
		SET available_spots = available_spots + 1,
		    status = CASE WHEN status IN ('open', 'full') THEN 'open' ELSE status END,
		    updated_at = NOW()
		WHERE id = ?`, id).Error
}

// ActivateMembership inserts a joined row or reactivates a left/kicked one.
// It reports false when the pair is already joined.
func (t *gameTx) ActivateMembership(gameID uuid.UUID, playerID string, at time.Time) (*model.GamePlayer, bool, error) {
	row := model.GamePlayer{
		GameID:    gameID,
		PlayerID:  playerID,
		JoinedAt:  at,
		Status:    model.PlayerStatusJoined,
		UpdatedAt: at,
	}
	result := t.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "game_id"}, {Name: "player_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":     model.PlayerStatusJoined,
			"joined_at":  at,
			"updated_at": at,
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Neq{Column: clause.Column{Table: "game_players", Name: "status"}, Value: model.PlayerStatusJoined},
		}},
	}).Create(&row)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, false, nil
	}

	var stored model.GamePlayer
	if err := t.db.Where("game_id = ? AND player_id = ?", gameID, playerID).Take(&stored).Error; err != nil {
		return nil, false, err
	}
	return &stored, true, nil
}

// DeactivateMembership moves a joined row to left or kicked.
// It reports false when no joined row exists for the pair.
func (t *gameTx) DeactivateMembership(gameID uuid.UUID, playerID string, to model.PlayerStatus) (*model.GamePlayer, bool, error) {
	result := t.db.Model(&model.GamePlayer{}).
		Where("game_id = ? AND player_id = ? AND status = ?", gameID, playerID, model.PlayerStatusJoined).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, false, nil
	}

	var stored model.GamePlayer
	if err := t.db.Where("game_id = ? AND player_id = ?", gameID, playerID).Take(&stored).Error; err != nil {
		return nil, false, err
	}
	return &stored, true, nil
}

func (t *gameTx) UpdateGame(id uuid.UUID, updates map[string]interface{}) error {
	return t.db.Model(&model.Game{}).Where("id = ?", id).Updates(updates).Error
}
