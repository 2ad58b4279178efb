package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearbyOpenGames_RadiusAndOrder(t *testing.T) {
	db := txDB(t)
	s := seeder{t: t, db: db}
	lat, long := randomOrigin()
	now := time.Now()

	organizer := s.user("Organizer")
	// ~0.01 degree of latitude is ~1.1 km
	bravo := s.field("Bravo", lat+0.01, long)
	alpha := s.field("Alpha", lat+0.03, long)
	charlie := s.field("Charlie", lat+0.08, long)

	late := s.game(alpha, organizer, now.Add(48*time.Hour), 10, 3, model.GameStatusOpen)
	early := s.game(alpha, organizer, now.Add(24*time.Hour), 10, 5, model.GameStatusOpen)
	s.game(alpha, organizer, now.Add(30*time.Hour), 10, 5, model.GameStatusCancelled)
	s.game(alpha, organizer, now.Add(-1*time.Hour), 10, 5, model.GameStatusOpen)
	bravoGame := s.game(bravo, organizer, now.Add(36*time.Hour), 10, 1, model.GameStatusOpen)
	s.game(bravo, organizer, now.Add(12*time.Hour), 10, 0, model.GameStatusFull)
	s.game(charlie, organizer, now.Add(24*time.Hour), 10, 5, model.GameStatusOpen)

	rows, err := NewGeoRepository(db).NearbyOpenGames(context.Background(), lat, long, 5000, now)
	require.NoError(t, err)

	got := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		got = append(got, r.GameID)
	}
	assert.Equal(t, []uuid.UUID{early, late, bravoGame}, got)

	assert.Equal(t, "Alpha", rows[0].FieldName)
	assert.Equal(t, "Organizer", rows[0].OrganizerName)
	assert.Equal(t, 5, rows[0].AvailableSpots)
	assert.InDelta(t, 3300, rows[0].DistanceMeters, 100)
	assert.InDelta(t, 1100, rows[2].DistanceMeters, 50)
	assert.Less(t, rows[2].DistanceMeters, rows[0].DistanceMeters)
}

func TestNearbyFields_DistanceAndPaging(t *testing.T) {
	db := txDB(t)
	s := seeder{t: t, db: db}
	lat, long := randomOrigin()

	near := s.field("Near", lat+0.005, long)
	mid := s.field("Mid", lat+0.02, long)
	s.field("Far", lat+0.2, long)

	geo := NewGeoRepository(db)
	fields, total, err := geo.NearbyFields(context.Background(), lat, long, 5000,
		model.FieldFilter{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, fields, 1)
	assert.Equal(t, near, fields[0].ID)
	require.NotNil(t, fields[0].Distance)
	assert.InDelta(t, 550, *fields[0].Distance, 30)

	fields, _, err = geo.NearbyFields(context.Background(), lat, long, 5000,
		model.FieldFilter{Page: 2, Limit: 1})
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, mid, fields[0].ID)
}
