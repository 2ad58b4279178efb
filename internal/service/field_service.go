package service

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/quocanhngo/kickoff/internal/apperr"
	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// FieldStore persists fields
type FieldStore interface {
	Create(ctx context.Context, field *model.Field) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Field, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	List(ctx context.Context, f model.FieldFilter) ([]model.Field, int64, error)
}

// FieldService handles field listing and administration
type FieldService struct {
	fields    FieldStore
	discovery *DiscoveryService
}

func NewFieldService(fields FieldStore, discovery *DiscoveryService) *FieldService {
	return &FieldService{fields: fields, discovery: discovery}
}

// List pages through fields. With both lat and long it becomes a radius query.
func (s *FieldService) List(ctx context.Context, f model.FieldFilter) (*model.PaginatedFields, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return nil, apperr.Validation("min_price cannot exceed max_price")
	}

	var (
		fields []model.Field
		total  int64
		err    error
	)
	switch {
	case f.Latitude != nil && f.Longitude != nil:
		fields, total, err = s.discovery.FindNearbyFields(ctx, f.Latitude, f.Longitude, f.Radius, f)
		if err != nil {
			return nil, err
		}
	case f.SortBy == "distance":
		return nil, apperr.Validation("sorting by distance requires lat and long")
	default:
		fields, total, err = s.fields.List(ctx, f)
		if err != nil {
			return nil, storeErr(err, "fields")
		}
	}

	return paginate(fields, total, f.Page, f.Limit), nil
}

func paginate(fields []model.Field, total int64, page, limit int) *model.PaginatedFields {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return &model.PaginatedFields{
		Data:            fields,
		Total:           total,
		Page:            page,
		Limit:           limit,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

// Get returns a field by ID
func (s *FieldService) Get(ctx context.Context, id uuid.UUID) (*model.Field, error) {
	field, err := s.fields.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "field")
	}
	return field, nil
}

// Create adds a field
func (s *FieldService) Create(ctx context.Context, req model.CreateFieldRequest) (*model.Field, error) {
	if req.BasePricePerHour.IsNegative() {
		return nil, apperr.Validation("base price cannot be negative")
	}
	field := &model.Field{
		Name:             req.Name,
		Address:          req.Address,
		Phone:            req.Phone,
		Latitude:         *req.Latitude,
		Longitude:        *req.Longitude,
		OpeningTime:      req.OpeningTime,
		ClosingTime:      req.ClosingTime,
		BasePricePerHour: req.BasePricePerHour,
		Amenities:        datatypes.JSONMap(req.Amenities),
	}
	if err := s.fields.Create(ctx, field); err != nil {
		return nil, storeErr(err, "field")
	}
	return field, nil
}

// Update applies an administrative partial update
func (s *FieldService) Update(ctx context.Context, id uuid.UUID, req model.UpdateFieldRequest) (*model.Field, error) {
	if _, err := s.fields.FindByID(ctx, id); err != nil {
		return nil, storeErr(err, "field")
	}

	updates := map[string]interface{}{}
	setString := func(col string, v *string) {
		if v != nil {
			updates[col] = *v
		}
	}
	setString("name", req.Name)
	setString("address", req.Address)
	setString("phone", req.Phone)
	setString("opening_time", req.OpeningTime)
	setString("closing_time", req.ClosingTime)
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if req.BasePricePerHour != nil {
		if req.BasePricePerHour.LessThan(decimal.Zero) {
			return nil, apperr.Validation("base price cannot be negative")
		}
		updates["base_price_per_hour"] = *req.BasePricePerHour
	}
	if req.Amenities != nil {
		updates["amenities"] = datatypes.JSONMap(req.Amenities)
	}

	if err := s.fields.Update(ctx, id, updates); err != nil {
		return nil, storeErr(err, "field")
	}
	return s.Get(ctx, id)
}
