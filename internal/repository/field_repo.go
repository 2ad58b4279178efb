package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/quocanhngo/kickoff/internal/model"
	"gorm.io/gorm"
)

// FieldRepository handles database operations for Field
type FieldRepository struct {
	db *gorm.DB
}

func NewFieldRepository(db *gorm.DB) *FieldRepository {
	return &FieldRepository{db: db}
}

// Create inserts a new field
func (r *FieldRepository) Create(ctx context.Context, field *model.Field) error {
	return r.db.WithContext(ctx).Create(field).Error
}

// FindByID finds a field by ID
func (r *FieldRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Field, error) {
	var field model.Field
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&field).Error
	if err != nil {
		return nil, err
	}
	return &field, nil
}

// Update applies partial column updates to a field
func (r *FieldRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Field{}).Where("id = ?", id).Updates(updates).Error
}

// List returns a page of fields matching the filter and the total match count
func (r *FieldRepository) List(ctx context.Context, f model.FieldFilter) ([]model.Field, int64, error) {
	fields := []model.Field{}
	query := r.db.WithContext(ctx).Model(&model.Field{})

	if f.Search != "" {
		query = query.Where("name ILIKE ? OR address ILIKE ?", "%"+f.Search+"%", "%"+f.Search+"%")
	}
	if f.MinPrice != nil {
		query = query.Where("base_price_per_hour >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("base_price_per_hour <= ?", *f.MaxPrice)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column := "name"
	if f.SortBy == "price" {
		column = "base_price_per_hour"
	}
	direction := "ASC"
	if f.SortOrder == "desc" {
		direction = "DESC"
	}

	err := query.
		Order(column + " " + direction).
		Order("id ASC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&fields).Error
	return fields, total, err
}
