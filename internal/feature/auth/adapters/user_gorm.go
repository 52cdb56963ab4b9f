// Package adapters はauthフィーチャーのクレデンシャルストア実装を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"todo_backend/internal/feature/auth/domain/entity"
	"todo_backend/internal/feature/auth/usecase"
)

// userGorm はUserRepositoryのGORM実装です。
// MySQL、PostgreSQL、SQLiteのいずれのダイアレクトでも動作します。
type userGorm struct {
	db *gorm.DB
}

// userGormがUserRepositoryを実装していることをコンパイル時に保証
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm はuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// isDuplicateKeyError はerrが対応ダイアレクトのユニーク制約違反かどうかを判定します。
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// MySQLエラー1062: ユニークキーの重複
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	// PostgreSQL SQLSTATE 23505: unique_violation
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Create はユーザーを登録します。メールアドレスが重複している場合はusecase.ErrDuplicateUserを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	model := UserModelFromEntity(u)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKeyError(err) {
			return usecase.ErrDuplicateUser
		}
		return err
	}
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByEmail はメールアドレスでユーザーを検索します（パスワードハッシュを含む）。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// FindByID はIDでユーザーを検索します。
func (r *userGorm) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// SetRefreshToken は保存済みのリフレッシュトークンを上書きします。
func (r *userGorm) SetRefreshToken(ctx context.Context, id, token string) error {
	result := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ?", id).
		Update("refresh_token", token)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// RotateRefreshToken は保存済みトークンがcurrentと一致する場合のみnextに置き換えます。
// 条件付きUPDATEは単一の文なので、同じトークンの同時ローテーションは片方しか成功しません。
func (r *userGorm) RotateRefreshToken(ctx context.Context, id, current, next string) error {
	result := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ? AND refresh_token = ?", id, current).
		Update("refresh_token", next)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrRefreshTokenMismatch
	}
	return nil
}
