package service

import (
	"context"
	"errors"
	"io"

	"github.com/quocanhngo/kickoff/internal/apperr"
	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/quocanhngo/kickoff/pkg/storage"
)

// UserStore persists the user projection
type UserStore interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	Search(ctx context.Context, query, excludeUserID string, limit int) ([]model.User, error)
	UpdateProfile(ctx context.Context, id, fullName, nickname string) error
	UpdateAvatar(ctx context.Context, id, avatarURL string) error
}

// ImageStore uploads public images
type ImageStore interface {
	UploadImage(ctx context.Context, r io.Reader, size int64, fileName, contentType, folder, owner string) (*storage.UploadResult, error)
}

const searchLimit = 20

// UserService manages profiles of authenticated users
type UserService struct {
	users   UserStore
	images  ImageStore
	metrics MetricsRecorder
}

// NewUserService creates a user service. images may be nil when object storage is down.
func NewUserService(users UserStore, images ImageStore, metrics MetricsRecorder) *UserService {
	return &UserService{users: users, images: images, metrics: metrics}
}

// Me returns the caller's profile
func (s *UserService) Me(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return u, nil
}

// UpdateProfile changes full name and/or nickname. Nicknames are unique.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req model.UpdateProfileRequest) (*model.User, error) {
	if err := s.users.UpdateProfile(ctx, userID, req.FullName, req.Nickname); err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("nickname is already taken")
		}
		return nil, storeErr(err, "user")
	}

	changed := []string{}
	if req.FullName != "" {
		changed = append(changed, "full_name")
	}
	if req.Nickname != "" {
		changed = append(changed, "nickname")
	}
	if len(changed) > 0 {
		record(ctx, s.metrics, model.MetricUserUpdatedProfile, map[string]interface{}{
			"user_id":        userID,
			"fields_updated": changed,
		})
	}
	return s.Me(ctx, userID)
}

// Search finds other users by nickname or name
func (s *UserService) Search(ctx context.Context, query, userID string) ([]model.PlayerSummary, error) {
	if len(query) < 2 {
		return nil, apperr.Validation("query must be at least 2 characters")
	}
	users, err := s.users.Search(ctx, query, userID, searchLimit)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	out := make([]model.PlayerSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToSummary())
	}
	return out, nil
}

// UploadAvatar stores an image and points the profile at it
func (s *UserService) UploadAvatar(ctx context.Context, userID string, r io.Reader, size int64, fileName, contentType string) (*model.UploadResponse, error) {
	if s.images == nil {
		return nil, apperr.Unavailable(errors.New("object storage not configured"), "file upload is disabled")
	}
	if size > storage.MaxImageSize {
		return nil, apperr.Validation("image must be at most %d MB", storage.MaxImageSize>>20)
	}

	result, err := s.images.UploadImage(ctx, r, size, fileName, contentType, "avatars", userID)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			return nil, apperr.Validation("avatar must be an image")
		}
		return nil, apperr.Unavailable(err, "failed to upload avatar")
	}
	if err := s.users.UpdateAvatar(ctx, userID, result.URL); err != nil {
		return nil, storeErr(err, "user")
	}
	return &model.UploadResponse{
		URL:      result.URL,
		FileName: result.FileName,
		FileSize: result.FileSize,
		MimeType: result.MimeType,
	}, nil
}
