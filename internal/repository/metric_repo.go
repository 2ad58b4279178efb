package repository

import (
	"context"
	"time"

	"github.com/quocanhngo/kickoff/internal/model"
	"gorm.io/gorm"
)

// MetricFilter narrows metric queries. Zero values match everything.
type MetricFilter struct {
	EventType model.MetricEventType
	UserID    string
	From      *time.Time
	To        *time.Time
}

// MetricRepository handles database operations for Metric
type MetricRepository struct {
	db *gorm.DB
}

func NewMetricRepository(db *gorm.DB) *MetricRepository {
	return &MetricRepository{db: db}
}

// Create inserts a usage event
func (r *MetricRepository) Create(ctx context.Context, m *model.Metric) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MetricRepository) filtered(ctx context.Context, f MetricFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.Metric{})
	if f.EventType != "" {
		query = query.Where("event_type = ?", f.EventType)
	}
	if f.UserID != "" {
		query = query.Where("event_data->>'user_id' = ?", f.UserID)
	}
	if f.From != nil {
		query = query.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("created_at <= ?", *f.To)
	}
	return query
}

// List returns matching metrics, newest first, with the total match count
func (r *MetricRepository) List(ctx context.Context, f MetricFilter, limit, offset int) ([]model.Metric, int64, error) {
	query := r.filtered(ctx, f)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	metrics := []model.Metric{}
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&metrics).Error
	return metrics, total, err
}

// Count returns how many metrics match f
func (r *MetricRepository) Count(ctx context.Context, f MetricFilter) (int64, error) {
	var total int64
	err := r.filtered(ctx, f).Count(&total).Error
	return total, err
}

// Distribution counts metrics per event type, most frequent first
func (r *MetricRepository) Distribution(ctx context.Context) ([]model.MetricCount, error) {
	counts := []model.MetricCount{}
	err := r.db.WithContext(ctx).Model(&model.Metric{}).
		Select("event_type, COUNT(*) AS count").
		Group("event_type").
		Order("count DESC, event_type ASC").
		Scan(&counts).Error
	return counts, err
}
