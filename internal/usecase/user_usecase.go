package usecase

import (
	"context"

	"guardquote/internal/domain/user"
	ucuser "guardquote/internal/usecase/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserUsecase interface {
	GetMe(ctx context.Context, userID uuid.UUID) (user.User, error)
	DeleteMe(ctx context.Context, userID uuid.UUID) error
}

type User struct {
	svc *ucuser.Service
}

func NewUserUsecase(users user.Repository, cache ucuser.OwnerCache, logger *zap.Logger) *User {
	return &User{svc: ucuser.NewService(users, cache, logger)}
}

func (u *User) GetMe(ctx context.Context, userID uuid.UUID) (user.User, error) {
	return u.svc.GetMe(ctx, userID)
}

func (u *User) DeleteMe(ctx context.Context, userID uuid.UUID) error {
	return u.svc.DeleteMe(ctx, userID)
}
