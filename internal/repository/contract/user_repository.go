package contract

import (
	"context"

	"github.com/Mtank10/career-counselling-chat-app/internal/entity"
	"github.com/Mtank10/career-counselling-chat-app/internal/repository/specification"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
