package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"todo_backend/internal/feature/auth/usecase"
)

const testNamespace = "todo.users"

func userDoc(id, email, refresh string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "username", Value: "user-" + id},
		{Key: "email", Value: email},
		{Key: "password", Value: "hashed_password"},
		{Key: "refreshToken", Value: refresh},
		{Key: "createdAt", Value: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Key: "updatedAt", Value: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestUserMongo_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		repo := NewUserMongo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := newTestUser("u-1", "test@example.com")
		err := repo.Create(context.Background(), user)

		require.NoError(mt, err)
		assert.False(mt, user.CreatedAt.IsZero())
		assert.Equal(mt, user.CreatedAt, user.UpdatedAt)
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := NewUserMongo(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: todo.users index: email_unique",
		}))

		err := repo.Create(context.Background(), newTestUser("u-2", "test@example.com"))

		assert.ErrorIs(mt, err, usecase.ErrDuplicateUser)
	})

	mt.Run("server error", func(mt *mtest.T) {
		repo := NewUserMongo(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    91,
			Message: "shutdown in progress",
		}))

		err := repo.Create(context.Background(), newTestUser("u-3", "x@example.com"))

		require.Error(mt, err)
		assert.NotErrorIs(mt, err, usecase.ErrDuplicateUser)
	})
}

func TestUserMongo_FindByEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := NewUserMongo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch,
			userDoc("u-1", "find@example.com", "refresh-u-1")))

		user, err := repo.FindByEmail(context.Background(), "find@example.com")

		require.NoError(mt, err)
		assert.Equal(mt, "u-1", user.ID)
		assert.Equal(mt, "hashed_password", user.PasswordHash)
		assert.Equal(mt, "refresh-u-1", user.RefreshToken)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewUserMongo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch))

		user, err := repo.FindByEmail(context.Background(), "missing@example.com")

		assert.Nil(mt, user)
		assert.ErrorIs(mt, err, usecase.ErrUserNotFound)
	})
}

func TestUserMongo_FindByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := NewUserMongo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch,
			userDoc("u-1", "id@example.com", "")))

		user, err := repo.FindByID(context.Background(), "u-1")

		require.NoError(mt, err)
		assert.Equal(mt, "id@example.com", user.Email)
		assert.Empty(mt, user.RefreshToken)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewUserMongo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), "u-404")

		assert.ErrorIs(mt, err, usecase.ErrUserNotFound)
	})
}

func TestUserMongo_SetRefreshToken(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("matched", func(mt *mtest.T) {
		repo := NewUserMongo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		assert.NoError(mt, repo.SetRefreshToken(context.Background(), "u-1", "fresh"))
	})

	mt.Run("unknown user", func(mt *mtest.T) {
		repo := NewUserMongo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.SetRefreshToken(context.Background(), "u-404", "fresh")

		assert.ErrorIs(mt, err, usecase.ErrUserNotFound)
	})
}

func TestUserMongo_RotateRefreshToken(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("current token matches", func(mt *mtest.T) {
		repo := NewUserMongo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		assert.NoError(mt, repo.RotateRefreshToken(context.Background(), "u-1", "old", "next"))
	})

	mt.Run("stale token", func(mt *mtest.T) {
		repo := NewUserMongo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.RotateRefreshToken(context.Background(), "u-1", "stale", "next")

		assert.ErrorIs(mt, err, usecase.ErrRefreshTokenMismatch)
	})
}

func TestUserMongo_EnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("created", func(mt *mtest.T) {
		repo := NewUserMongo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(mt, repo.EnsureIndexes(context.Background()))
	})

	mt.Run("failure", func(mt *mtest.T) {
		repo := NewUserMongo(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Message: "not authorized",
		}))

		assert.Error(mt, repo.EnsureIndexes(context.Background()))
	})
}
