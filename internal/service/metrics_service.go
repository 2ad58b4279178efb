package service

import (
	"context"
	"time"

	"github.com/quocanhngo/kickoff/internal/apperr"
	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/quocanhngo/kickoff/internal/repository"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// MetricStore persists usage events
type MetricStore interface {
	Create(ctx context.Context, m *model.Metric) error
	List(ctx context.Context, f repository.MetricFilter, limit, offset int) ([]model.Metric, int64, error)
	Count(ctx context.Context, f repository.MetricFilter) (int64, error)
	Distribution(ctx context.Context) ([]model.MetricCount, error)
}

// MetricsRecorder records a usage event. Recording never fails the caller.
type MetricsRecorder interface {
	Log(ctx context.Context, eventType model.MetricEventType, data map[string]interface{})
}

// record is a no-op when m is nil
func record(ctx context.Context, m MetricsRecorder, eventType model.MetricEventType, data map[string]interface{}) {
	if m != nil {
		m.Log(ctx, eventType, data)
	}
}

// MetricsService records usage events and serves aggregate views of them
type MetricsService struct {
	store MetricStore
	now   func() time.Time
}

func NewMetricsService(store MetricStore) *MetricsService {
	return &MetricsService{store: store, now: time.Now}
}

// Log stores one event. Storage failures are logged and swallowed.
func (s *MetricsService) Log(ctx context.Context, eventType model.MetricEventType, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	m := &model.Metric{EventType: eventType, EventData: data}
	if err := s.store.Create(ctx, m); err != nil {
		log.WithField("event_type", eventType).WithError(err).Error("failed to record metric")
		return
	}
	log.WithField("event_type", eventType).Debug("metric recorded")
}

// List returns a page of metrics, newest first
func (s *MetricsService) List(ctx context.Context, req model.MetricListRequest) (*model.MetricListResponse, error) {
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, apperr.Validation("end_date must not be before start_date")
	}
	if req.Limit <= 0 {
		req.Limit = 100
	}

	filter := repository.MetricFilter{
		EventType: model.MetricEventType(req.EventType),
		UserID:    req.UserID,
		From:      req.StartDate,
		To:        req.EndDate,
	}
	metrics, total, err := s.store.List(ctx, filter, req.Limit, req.Offset)
	if err != nil {
		return nil, storeErr(err, "metric")
	}
	return &model.MetricListResponse{
		Metrics: metrics,
		Total:   total,
		Limit:   req.Limit,
		Offset:  req.Offset,
	}, nil
}

// Summary counts events overall, since local midnight, and over the last 7 and 30 days.
// An empty eventType counts every type.
func (s *MetricsService) Summary(ctx context.Context, eventType model.MetricEventType) (*model.MetricSummary, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	var summary model.MetricSummary
	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, from *time.Time) {
		g.Go(func() error {
			n, err := s.store.Count(gctx, repository.MetricFilter{EventType: eventType, From: from})
			*dst = n
			return err
		})
	}
	count(&summary.Total, nil)
	count(&summary.Today, &midnight)
	count(&summary.ThisWeek, &weekAgo)
	count(&summary.ThisMonth, &monthAgo)

	if err := g.Wait(); err != nil {
		return nil, storeErr(err, "metric")
	}
	return &summary, nil
}

// Distribution returns event counts per type, most frequent first
func (s *MetricsService) Distribution(ctx context.Context) ([]model.MetricCount, error) {
	counts, err := s.store.Distribution(ctx)
	if err != nil {
		return nil, storeErr(err, "metric")
	}
	return counts, nil
}
