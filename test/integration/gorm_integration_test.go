package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/Mtank10/career-counselling-chat-app/internal/entity"
	"github.com/Mtank10/career-counselling-chat-app/internal/repository/specification"
	"github.com/Mtank10/career-counselling-chat-app/internal/repository/unitofwork"
	"github.com/Mtank10/career-counselling-chat-app/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.ChatSessionRepository())
	assert.NotNil(t, uow.ChatTurnRepository())

	sqlDB, _ := gormDB.DB()
	assert.NoError(t, sqlDB.Ping())

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Check Chat Turn Repository", func(t *testing.T) {
		count, err := uow.ChatTurnRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("ChatTurn count: %d", count)
	})

	t.Run("Transactional Turn Append", func(t *testing.T) {
		ctx := context.Background()

		user := &entity.User{
			Id:       uuid.New(),
			Email:    "test-integration-" + uuid.New().String() + "@example.com",
			FullName: "Integration Test User",
		}
		require.NoError(t, uow.UserRepository().Create(ctx, user))

		session := &entity.ChatSession{
			Id:        uuid.New(),
			UserId:    user.Id,
			Title:     "New Conversation",
			CreatedAt: time.Now(),
		}
		require.NoError(t, uow.ChatSessionRepository().Create(ctx, session))

		txUow := uowFactory.NewUnitOfWork(ctx)
		require.NoError(t, txUow.Begin(ctx))
		defer txUow.Rollback()

		turn := &entity.ChatTurn{
			Id:             uuid.New(),
			ChatSessionId:  session.Id,
			Role:           entity.TurnRoleUser,
			Content:        "integration test message",
			SequenceNumber: 1,
			CreatedAt:      time.Now(),
		}
		require.NoError(t, txUow.ChatTurnRepository().Create(ctx, turn))

		// Duplicate sequence inside the same transaction must hit the
		// composite unique index.
		dup := *turn
		dup.Id = uuid.New()
		assert.Error(t, txUow.ChatTurnRepository().Create(ctx, &dup))

		require.NoError(t, txUow.Rollback())

		// Rolled back: nothing was persisted for the session.
		count, err := uow.ChatTurnRepository().Count(ctx, specification.ByChatSessionID{ChatSessionID: session.Id})
		assert.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}
