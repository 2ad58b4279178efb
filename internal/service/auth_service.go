package service

import (
	"context"
	"errors"
	"time"

	"github.com/quocanhngo/kickoff/internal/apperr"
	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/quocanhngo/kickoff/pkg/auth"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const blacklistPrefix = "blacklist:"

// UserRecorder keeps the local user projection in sync with resolved identities
type UserRecorder interface {
	Upsert(ctx context.Context, id, fullName string) (bool, error)
}

// AuthService resolves bearer tokens through the identity gateway and
// tracks revoked tokens in Redis.
type AuthService struct {
	gateway auth.Gateway
	users   UserRecorder
	rdb     *redis.Client
	metrics MetricsRecorder
}

func NewAuthService(gateway auth.Gateway, users UserRecorder, rdb *redis.Client, metrics MetricsRecorder) *AuthService {
	return &AuthService{gateway: gateway, users: users, rdb: rdb, metrics: metrics}
}

// Authenticate returns the identity behind token and records the user locally
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Identity, error) {
	if token == "" {
		return nil, apperr.Unauthenticated("missing bearer token")
	}

	exists, err := s.rdb.Exists(ctx, blacklistPrefix+token).Result()
	if err != nil {
		return nil, apperr.Unavailable(err, "auth server error")
	}
	if exists > 0 {
		return nil, apperr.Unauthenticated("token has been revoked")
	}

	identity, err := s.gateway.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			return nil, apperr.Unauthenticated("invalid or expired token")
		}
		return nil, apperr.Unavailable(err, "identity provider unavailable")
	}

	name := identity.DisplayName
	if name == "" {
		name = identity.UserID
	}
	created, err := s.users.Upsert(ctx, identity.UserID, name)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	if created {
		record(ctx, s.metrics, model.MetricUserSignedUp, map[string]interface{}{
			"user_id": identity.UserID,
			"roles":   identity.Roles,
		})
	}
	return identity, nil
}

// Logout revokes token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, token string, identity *auth.Identity) error {
	expiresIn := time.Until(identity.ExpiresAt)
	if expiresIn <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, blacklistPrefix+token, "revoked", expiresIn).Err(); err != nil {
		return apperr.Unavailable(err, "failed to revoke token")
	}
	log.WithField("user_id", identity.UserID).Info("token revoked")
	return nil
}
