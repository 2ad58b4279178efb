package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errNoSpot = errors.New("no spot")

func join(ctx context.Context, repo *GameRepository, gameID uuid.UUID, playerID string) error {
	return repo.Transaction(ctx, func(tx GameTx) error {
		ok, err := tx.ReserveSpot(gameID)
		if err != nil {
			return err
		}
		if !ok {
			return errNoSpot
		}
		_, created, err := tx.ActivateMembership(gameID, playerID, time.Now())
		if err != nil {
			return err
		}
		if !created {
			return errors.New("already joined")
		}
		return nil
	})
}

func leave(ctx context.Context, repo *GameRepository, gameID uuid.UUID, playerID string) error {
	return repo.Transaction(ctx, func(tx GameTx) error {
		if _, err := tx.LockGame(gameID); err != nil {
			return err
		}
		_, ok, err := tx.DeactivateMembership(gameID, playerID, model.PlayerStatusLeft)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("not joined")
		}
		return tx.ReleaseSpot(gameID)
	})
}

func cleanupGame(t *testing.T, db *gorm.DB, gameID, fieldID uuid.UUID, userIDs ...string) {
	t.Cleanup(func() {
		db.Exec("DELETE FROM game_players WHERE game_id = ?", gameID)
		db.Exec("DELETE FROM games WHERE id = ?", gameID)
		db.Exec("DELETE FROM fields WHERE id = ?", fieldID)
		db.Exec("DELETE FROM users WHERE id IN ?", userIDs)
	})
}

func TestReserveSpot_ConcurrentLastSpot(t *testing.T) {
	db := testDB(t)
	s := seeder{t: t, db: db}
	lat, long := randomOrigin()

	organizer := s.user("Organizer")
	a, b := s.user("Player A"), s.user("Player B")
	fieldID := s.field("Last Spot Arena", lat, long)
	gameID := s.game(fieldID, organizer, time.Now().Add(24*time.Hour), 10, 1, model.GameStatusOpen)
	cleanupGame(t, db, gameID, fieldID, organizer, a, b)

	repo := NewGameRepository(db)
	start := make(chan struct{})
	results := make([]error, 2)
	var wg sync.WaitGroup
	for i, player := range []string{a, b} {
		wg.Add(1)
		go func(i int, player string) {
			defer wg.Done()
			<-start
			results[i] = join(context.Background(), repo, gameID, player)
		}(i, player)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, errNoSpot)
		}
	}
	assert.Equal(t, 1, succeeded)

	game, err := repo.FindByID(context.Background(), gameID)
	require.NoError(t, err)
	assert.Equal(t, 0, game.AvailableSpots)
	assert.Equal(t, model.GameStatusFull, game.Status)

	players, err := repo.FindJoinedPlayers(context.Background(), gameID)
	require.NoError(t, err)
	assert.Len(t, players, 1)
}

func TestMembership_JoinLeaveRejoinKeepsOneRow(t *testing.T) {
	db := txDB(t)
	s := seeder{t: t, db: db}
	lat, long := randomOrigin()
	ctx := context.Background()

	organizer, player := s.user("Organizer"), s.user("Rejoiner")
	fieldID := s.field("Rejoin Park", lat, long)
	gameID := s.game(fieldID, organizer, time.Now().Add(24*time.Hour), 10, 10, model.GameStatusOpen)
	repo := NewGameRepository(db)

	require.NoError(t, join(ctx, repo, gameID, player))
	require.NoError(t, leave(ctx, repo, gameID, player))
	require.NoError(t, join(ctx, repo, gameID, player))

	var rows int64
	require.NoError(t, db.Model(&model.GamePlayer{}).
		Where("game_id = ? AND player_id = ?", gameID, player).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	// A duplicate join reports created=false and leaves the spot count alone.
	err := repo.Transaction(ctx, func(tx GameTx) error {
		row, created, err := tx.ActivateMembership(gameID, player, time.Now())
		require.NoError(t, err)
		assert.False(t, created)
		assert.Nil(t, row)
		return nil
	})
	require.NoError(t, err)

	game, err := repo.FindByID(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, 9, game.AvailableSpots)
	assert.Equal(t, model.GameStatusOpen, game.Status)
}

func TestReleaseSpot_StatusFollowsCount(t *testing.T) {
	db := txDB(t)
	s := seeder{t: t, db: db}
	lat, long := randomOrigin()
	ctx := context.Background()

	organizer := s.user("Organizer")
	fieldID := s.field("Release Ground", lat, long)
	start := time.Now().Add(24 * time.Hour)
	full := s.game(fieldID, organizer, start, 10, 0, model.GameStatusFull)
	cancelled := s.game(fieldID, organizer, start, 10, 4, model.GameStatusCancelled)
	repo := NewGameRepository(db)

	require.NoError(t, repo.Transaction(ctx, func(tx GameTx) error {
		if err := tx.ReleaseSpot(full); err != nil {
			return err
		}
		return tx.ReleaseSpot(cancelled)
	}))

	g, err := repo.FindByID(ctx, full)
	require.NoError(t, err)
	assert.Equal(t, 1, g.AvailableSpots)
	assert.Equal(t, model.GameStatusOpen, g.Status)

	g, err = repo.FindByID(ctx, cancelled)
	require.NoError(t, err)
	assert.Equal(t, 5, g.AvailableSpots)
	assert.Equal(t, model.GameStatusCancelled, g.Status)

	// Cancelled games never hand out spots.
	require.NoError(t, repo.Transaction(ctx, func(tx GameTx) error {
		ok, err := tx.ReserveSpot(cancelled)
		assert.False(t, ok)
		return err
	}))
}

func TestCompleteEnded(t *testing.T) {
	db := txDB(t)
	s := seeder{t: t, db: db}
	lat, long := randomOrigin()
	ctx := context.Background()

	organizer := s.user("Organizer")
	fieldID := s.field("Clock Field", lat, long)
	ended := s.game(fieldID, organizer, time.Now().Add(-3*time.Hour), 10, 2, model.GameStatusOpen)
	upcoming := s.game(fieldID, organizer, time.Now().Add(3*time.Hour), 10, 2, model.GameStatusOpen)
	repo := NewGameRepository(db)

	n, err := repo.CompleteEnded(ctx, time.Now())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	g, err := repo.FindByID(ctx, ended)
	require.NoError(t, err)
	assert.Equal(t, model.GameStatusCompleted, g.Status)
	g, err = repo.FindByID(ctx, upcoming)
	require.NoError(t, err)
	assert.Equal(t, model.GameStatusOpen, g.Status)
}
