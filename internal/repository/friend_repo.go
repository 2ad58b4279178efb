package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/quocanhngo/kickoff/internal/model"
	"gorm.io/gorm"
)

// FriendRepository handles database operations for Friendship
type FriendRepository struct {
	db *gorm.DB
}

func NewFriendRepository(db *gorm.DB) *FriendRepository {
	return &FriendRepository{db: db}
}

// Create inserts a new friendship row
func (r *FriendRepository) Create(ctx context.Context, f *model.Friendship) error {
	return r.db.WithContext(ctx).Create(f).Error
}

// FindByID finds a friendship with both users loaded
func (r *FriendRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Friendship, error) {
	var f model.Friendship
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Friend").
		Where("id = ?", id).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// FindBetween finds the row for an unordered pair of users
func (r *FriendRepository) FindBetween(ctx context.Context, a, b string) (*model.Friendship, error) {
	var f model.Friendship
	err := r.db.WithContext(ctx).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", a, b, b, a).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// UpdateStatus sets a friendship's status
func (r *FriendRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.FriendStatus) error {
	return r.db.WithContext(ctx).Model(&model.Friendship{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// ListAccepted returns accepted friendships in either direction
func (r *FriendRepository) ListAccepted(ctx context.Context, userID string) ([]model.Friendship, error) {
	friendships := []model.Friendship{}
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Friend").
		Where("(user_id = ? OR friend_id = ?) AND status = ?", userID, userID, model.FriendStatusAccepted).
		Order("updated_at DESC").
		Find(&friendships).Error
	return friendships, err
}

// ListPending returns pending requests received by and sent by userID
func (r *FriendRepository) ListPending(ctx context.Context, userID string) (received, sent []model.Friendship, err error) {
	received = []model.Friendship{}
	sent = []model.Friendship{}

	err = r.db.WithContext(ctx).
		Preload("User").
		Where("friend_id = ? AND status = ?", userID, model.FriendStatusPending).
		Order("created_at DESC").
		Find(&received).Error
	if err != nil {
		return nil, nil, err
	}

	err = r.db.WithContext(ctx).
		Preload("Friend").
		Where("user_id = ? AND status = ?", userID, model.FriendStatusPending).
		Order("created_at DESC").
		Find(&sent).Error
	if err != nil {
		return nil, nil, err
	}
	return received, sent, nil
}

// Delete removes a friendship
func (r *FriendRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Friendship{}).Error
}
