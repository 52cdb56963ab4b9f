package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"todo_backend/internal/feature/auth/domain/entity"
	"todo_backend/internal/feature/auth/usecase"
)

// usersCollection はユーザードキュメントを保持するコレクション名です。
const usersCollection = "users"

// userDocument はユーザーのBSON表現です。
type userDocument struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password"`
	Avatar       string    `bson:"avatar,omitempty"`
	RefreshToken string    `bson:"refreshToken,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func (d *userDocument) toEntity() *entity.User {
	return &entity.User{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Avatar:       d.Avatar,
		RefreshToken: d.RefreshToken,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// userMongo はUserRepositoryのMongoDB実装です。
type userMongo struct {
	col *mongo.Collection
	now func() time.Time
}

// userMongoがUserRepositoryを実装していることをコンパイル時に保証
var _ usecase.UserRepository = (*userMongo)(nil)

// NewUserMongo はuserMongoの新しいインスタンスを生成します。
func NewUserMongo(db *mongo.Database) *userMongo {
	return &userMongo{col: db.Collection(usersCollection), now: time.Now}
}

// EnsureIndexes はメールアドレスのユニークインデックスを作成します。冪等です。
func (r *userMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("mongo create index: %w", err)
	}
	return nil
}

// Create はユーザーを登録します。メールアドレスが重複している場合はusecase.ErrDuplicateUserを返します。
func (r *userMongo) Create(ctx context.Context, u *entity.User) error {
	now := r.now().UTC()
	doc := userDocument{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Avatar:       u.Avatar,
		RefreshToken: u.RefreshToken,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return usecase.ErrDuplicateUser
		}
		return fmt.Errorf("mongo insert: %w", err)
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

func (r *userMongo) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	return doc.toEntity(), nil
}

// FindByEmail はメールアドレスでユーザーを検索します（パスワードハッシュを含む）。
func (r *userMongo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByID はIDでユーザーを検索します。
func (r *userMongo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// SetRefreshToken は保存済みのリフレッシュトークンを上書きします。
func (r *userMongo) SetRefreshToken(ctx context.Context, id, token string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"refreshToken": token, "updatedAt": r.now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("mongo update: %w", err)
	}
	if res.MatchedCount == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// RotateRefreshToken は保存済みトークンがcurrentと一致する場合のみnextに置き換えます。
func (r *userMongo) RotateRefreshToken(ctx context.Context, id, current, next string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "refreshToken": current},
		bson.M{"$set": bson.M{"refreshToken": next, "updatedAt": r.now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("mongo update: %w", err)
	}
	if res.MatchedCount == 0 {
		return usecase.ErrRefreshTokenMismatch
	}
	return nil
}
