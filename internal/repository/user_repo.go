package repository

import (
	"context"

	"github.com/quocanhngo/kickoff/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository handles database operations for User
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert records an identity resolved by the token issuer. An existing
// full name is kept so profile edits are not overwritten on every request.
// It reports whether the user was seen for the first time.
func (r *UserRepository) Upsert(ctx context.Context, id, fullName string) (bool, error) {
	user := model.User{ID: id, FullName: fullName}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&user)
	return result.RowsAffected == 1, result.Error
}

// FindByID finds a user by subject ID
func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Search searches users by nickname or full name (partial match)
func (r *UserRepository) Search(ctx context.Context, query, excludeUserID string, limit int) ([]model.User, error) {
	users := []model.User{}
	err := r.db.WithContext(ctx).
		Where("(nickname ILIKE ? OR full_name ILIKE ?) AND id <> ?", "%"+query+"%", "%"+query+"%", excludeUserID).
		Order("full_name ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// UpdateProfile updates the user's full name and/or nickname
func (r *UserRepository) UpdateProfile(ctx context.Context, id, fullName, nickname string) error {
	updates := map[string]interface{}{}
	if fullName != "" {
		updates["full_name"] = fullName
	}
	if nickname != "" {
		updates["nickname"] = nickname
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateAvatar updates a user's avatar URL
func (r *UserRepository) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("avatar_url", avatarURL).Error
}
