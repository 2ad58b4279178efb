package service

import (
	"context"
	"time"

	"github.com/quocanhngo/kickoff/internal/apperr"
	"github.com/quocanhngo/kickoff/internal/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// GeoIndex answers radius queries over field locations
type GeoIndex interface {
	NearbyOpenGames(ctx context.Context, lat, long, radiusMeters float64, now time.Time) ([]model.NearbyGameRow, error)
	NearbyFields(ctx context.Context, lat, long, radiusMeters float64, f model.FieldFilter) ([]model.Field, int64, error)
}

// DiscoveryConfig holds radius defaults in kilometers
type DiscoveryConfig struct {
	DefaultRadiusKm float64
	MaxRadiusKm     float64
}

// DiscoveryService lists open upcoming games near a point, grouped by field
type DiscoveryService struct {
	geo     GeoIndex
	metrics MetricsRecorder
	cfg     DiscoveryConfig
	now     func() time.Time
}

func NewDiscoveryService(geo GeoIndex, metrics MetricsRecorder, cfg DiscoveryConfig) *DiscoveryService {
	if cfg.DefaultRadiusKm <= 0 {
		cfg.DefaultRadiusKm = 5
	}
	if cfg.MaxRadiusKm < cfg.DefaultRadiusKm {
		cfg.MaxRadiusKm = cfg.DefaultRadiusKm
	}
	return &DiscoveryService{geo: geo, metrics: metrics, cfg: cfg, now: time.Now}
}

// FindNearby returns open games starting after now on fields within radiusKm,
// grouped by field in query order. A zero radius uses the default.
// Each successful search is recorded for userID.
func (s *DiscoveryService) FindNearby(ctx context.Context, userID string, lat, long *float64, radiusKm float64) ([]model.NearbyFieldGroup, error) {
	radiusMeters, err := s.resolveOrigin(lat, long, radiusKm)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "DiscoveryService.FindNearby", trace.WithAttributes(
		attribute.Float64("geo.lat", *lat),
		attribute.Float64("geo.long", *long),
		attribute.Float64("geo.radius_m", radiusMeters),
	))
	defer span.End()

	rows, err := s.geo.NearbyOpenGames(ctx, *lat, *long, radiusMeters, s.now())
	if err != nil {
		span.RecordError(err)
		return nil, storeErr(err, "games")
	}

	record(ctx, s.metrics, model.MetricSearchNearbyGames, map[string]interface{}{
		"user_id":       userID,
		"latitude":      *lat,
		"longitude":     *long,
		"radius_km":     radiusMeters / 1000,
		"results_count": len(rows),
	})
	return GroupByField(rows), nil
}

// FindNearbyFields lists fields within the radius, nearest first unless the filter sorts otherwise
func (s *DiscoveryService) FindNearbyFields(ctx context.Context, lat, long *float64, radiusKm float64, f model.FieldFilter) ([]model.Field, int64, error) {
	radiusMeters, err := s.resolveOrigin(lat, long, radiusKm)
	if err != nil {
		return nil, 0, err
	}
	fields, total, err := s.geo.NearbyFields(ctx, *lat, *long, radiusMeters, f)
	if err != nil {
		return nil, 0, storeErr(err, "fields")
	}
	return fields, total, nil
}

func (s *DiscoveryService) resolveOrigin(lat, long *float64, radiusKm float64) (float64, error) {
	if lat == nil || long == nil {
		return 0, apperr.Validation("lat and long are required")
	}
	if *lat < -90 || *lat > 90 {
		return 0, apperr.Validation("lat must be between -90 and 90")
	}
	if *long < -180 || *long > 180 {
		return 0, apperr.Validation("long must be between -180 and 180")
	}
	if radiusKm == 0 {
		radiusKm = s.cfg.DefaultRadiusKm
	}
	if radiusKm < 0 || radiusKm > s.cfg.MaxRadiusKm {
		return 0, apperr.Validation("radius must be between 0 and %g km", s.cfg.MaxRadiusKm)
	}
	return radiusKm * 1000, nil
}

// GroupByField folds sorted rows into field groups. Groups appear in the
// order their field is first seen and games keep their row order.
func GroupByField(rows []model.NearbyGameRow) []model.NearbyFieldGroup {
	groups := []model.NearbyFieldGroup{}
	index := make(map[string]int)

	for _, r := range rows {
		key := r.FieldID.String()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, model.NearbyFieldGroup{
				FieldID:        r.FieldID,
				FieldName:      r.FieldName,
				DistanceMeters: r.DistanceMeters,
				Games:          []model.NearbyGame{},
			})
		}
		groups[i].Games = append(groups[i].Games, model.NearbyGame{
			GameID:         r.GameID,
			StartTime:      r.StartTime,
			AvailableSpots: r.AvailableSpots,
			PricePerPlayer: r.PricePerPlayer,
			OrganizerName:  r.OrganizerName,
			GameLevel:      r.GameLevel,
			GameType:       r.GameType,
		})
	}
	return groups
}
