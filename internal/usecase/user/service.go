package user

import (
	"context"
	"errors"

	"guardquote/internal/domain/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound = errors.New("user not found")
	ErrInternal = errors.New("internal error")
)

// OwnerCache forgets anything cached for a removed account.
type OwnerCache interface {
	InvalidateOwner(ctx context.Context, ownerID uuid.UUID)
}

type Service struct {
	users  user.Repository
	cache  OwnerCache
	logger *zap.Logger
}

func NewService(users user.Repository, cache OwnerCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{users: users, cache: cache, logger: logger}
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (user.User, error) {
	usr, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, ErrInternal
	}
	usr.PasswordHash = ""
	return usr, nil
}

// DeleteMe removes the account together with its quotes.
func (s *Service) DeleteMe(ctx context.Context, userID uuid.UUID) error {
	n, err := s.users.DeleteUser(ctx, userID)
	if err != nil {
		return ErrInternal
	}
	if n == 0 {
		return ErrNotFound
	}
	if s.cache != nil {
		s.cache.InvalidateOwner(ctx, userID)
	}
	s.logger.Info("account deleted", zap.String("user_id", userID.String()))
	return nil
}
