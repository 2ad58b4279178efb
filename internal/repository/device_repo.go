package repository

import (
	"context"
	"time"

	"github.com/quocanhngo/kickoff/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceRepository handles database operations for DeviceRegistration
type DeviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// Upsert adds a push token or refreshes last_used_at for a known (user, token) pair
func (r *DeviceRepository) Upsert(ctx context.Context, userID, token, deviceType string) error {
	now := time.Now()
	device := model.DeviceRegistration{
		UserID:     userID,
		PushToken:  token,
		DeviceType: deviceType,
		CreatedAt:  now,
		LastUsedAt: now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "push_token"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_used_at": now,
			"device_type":  deviceType,
		}),
	}).Create(&device).Error
}

// FindByUser gets all registered devices for a user
func (r *DeviceRepository) FindByUser(ctx context.Context, userID string) ([]model.DeviceRegistration, error) {
	devices := []model.DeviceRegistration{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&devices).Error
	return devices, err
}

// Delete removes a user's push token
func (r *DeviceRepository) Delete(ctx context.Context, userID, token string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND push_token = ?", userID, token).
		Delete(&model.DeviceRegistration{})
	return result.RowsAffected > 0, result.Error
}

// DeleteToken removes a push token regardless of owner. Used when the
// push provider reports the token as permanently invalid.
func (r *DeviceRepository) DeleteToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Where("push_token = ?", token).
		Delete(&model.DeviceRegistration{}).Error
}
