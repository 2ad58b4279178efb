package repository

import (
	"context"
	"time"

	"github.com/quocanhngo/kickoff/internal/model"
	"gorm.io/gorm"
)

// GeoRepository runs PostGIS radius and distance queries over field locations
type GeoRepository struct {
	db *gorm.DB
}

func NewGeoRepository(db *gorm.DB) *GeoRepository {
	return &GeoRepository{db: db}
}

// NearbyOpenGames returns one row per open future game on a field within
// radiusMeters of (lat, long), ordered by field name, distance, then start time.
func (r *GeoRepository) NearbyOpenGames(ctx context.Context, lat, long, radiusMeters float64, now time.Time) ([]model.NearbyGameRow, error) {
	rows := []model.NearbyGameRow{}
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			f.id AS field_id,
			f.name AS field_name,
			ST_Distance(f.location, ST_SetSRID(ST_MakePoint(@long, @lat), 4326)::geography) AS distance_meters,
			g.id AS game_id,
			g.start_time,
			g.available_spots,
			g.price_per_player,
			COALESCE(NULLIF(u.nickname, ''), u.full_name, '') AS organizer_name,
			g.game_level,
			g.game_type
		FROM games g
		JOIN fields f ON f.id = g.field_id
		LEFT JOIN users u ON u.id = g.organizer_id
		WHERE g.status = 'open'
		  AND g.start_time > @now
		  AND ST_DWithin(f.location, ST_SetSRID(ST_MakePoint(@long, @lat), 4326)::geography, @radius)
		ORDER BY f.name ASC, distance_meters ASC, g.start_time ASC, g.id ASC`,
		map[string]interface{}{"lat": lat, "long": long, "radius": radiusMeters, "now": now},
	).Scan(&rows).Error
	return rows, err
}

// NearbyFields returns fields within radiusMeters of (lat, long), nearest first,
// with Distance populated, plus the total match count for pagination.
func (r *GeoRepository) NearbyFields(ctx context.Context, lat, long, radiusMeters float64, f model.FieldFilter) ([]model.Field, int64, error) {
	point := "ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography"
	base := r.db.WithContext(ctx).Model(&model.Field{}).
		Where("ST_DWithin(location, "+point+", ?)", long, lat, radiusMeters)

	if f.Search != "" {
		base = base.Where("name ILIKE ? OR address ILIKE ?", "%"+f.Search+"%", "%"+f.Search+"%")
	}
	if f.MinPrice != nil {
		base = base.Where("base_price_per_hour >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		base = base.Where("base_price_per_hour <= ?", *f.MaxPrice)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	type fieldWithDistance struct {
		model.Field
		DistanceMeters float64
	}
	rows := []fieldWithDistance{}

	order := "distance_meters ASC"
	switch {
	case f.SortBy == "name" && f.SortOrder == "desc":
		order = "name DESC"
	case f.SortBy == "name":
		order = "name ASC"
	case f.SortBy == "price" && f.SortOrder == "desc":
		order = "base_price_per_hour DESC"
	case f.SortBy == "price":
		order = "base_price_per_hour ASC"
	case f.SortOrder == "desc":
		order = "distance_meters DESC"
	}

	err := base.
		Select("fields.*, ST_Distance(location, "+point+") AS distance_meters", long, lat).
		Order(order).
		Order("id ASC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	fields := make([]model.Field, 0, len(rows))
	for i := range rows {
		field := rows[i].Field
		d := rows[i].DistanceMeters
		field.Distance = &d
		fields = append(fields, field)
	}
	return fields, total, nil
}
