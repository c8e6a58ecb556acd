package contract

import (
	"context"

	"github.com/Mtank10/career-counselling-chat-app/internal/entity"
	"github.com/Mtank10/career-counselling-chat-app/internal/repository/specification"
)

// ChatTurnRepository is append-only: turns are never updated or deleted so
// that historical sequences stay intact.
type ChatTurnRepository interface {
	Create(ctx context.Context, turn *entity.ChatTurn) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatTurn, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatTurn, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
