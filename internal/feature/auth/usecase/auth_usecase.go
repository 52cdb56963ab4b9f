package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"todo_backend/internal/feature/auth/domain/entity"
)

const (
	// minPasswordLength はパスワードとして受け付ける最小文字数です。
	minPasswordLength = 6
	// maxPasswordBytes はbcryptが扱える入力の上限バイト数です。
	maxPasswordBytes = 72
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// SignupInput はSignupが受け付ける入力値です。
type SignupInput struct {
	Username string
	Email    string
	Password string
	Avatar   string
}

// AuthResult はSignupとLoginの戻り値です。
type AuthResult struct {
	TokenPair
	User entity.PublicUser
}

// authUsecase は認証のビジネスロジックを実装します。
type authUsecase struct {
	users    UserRepository
	tokens   TokenIssuer
	hasher   PasswordHasher
	throttle LoginThrottle
	newID    func() string
}

// Option はauthUsecaseの設定を変更します。
type Option func(*authUsecase)

// WithLoginThrottle はクライアント単位のログイン試行回数制限を有効にします。
func WithLoginThrottle(t LoginThrottle) Option {
	return func(u *authUsecase) { u.throttle = t }
}

// WithIDGenerator は新規ユーザーIDの生成方法を差し替えます。
func WithIDGenerator(fn func() string) Option {
	return func(u *authUsecase) { u.newID = fn }
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, tokens TokenIssuer, hasher PasswordHasher, opts ...Option) *authUsecase {
	u := &authUsecase{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func validateSignup(in SignupInput) error {
	if strings.TrimSpace(in.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	if !emailPattern.MatchString(in.Email) {
		return fmt.Errorf("%w: email is invalid", ErrValidation)
	}
	if len(in.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", ErrValidation, minPasswordLength)
	}
	if len(in.Password) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes long", ErrValidation, maxPasswordBytes)
	}
	return nil
}

// Signup は新規ユーザーを登録し、最初のトークンペアを発行します。
// レコードはリフレッシュトークン付きで1回の書き込みで作成されます。
// 同一メールアドレスの同時登録はストアのユニークインデックスで判定されます。
func (u *authUsecase) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := validateSignup(in); err != nil {
		return nil, err
	}

	existing, err := u.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil && existing != nil:
		return nil, ErrDuplicateUser
	case err != nil && !errors.Is(err, ErrUserNotFound):
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	hashed, err := u.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id := u.newID()
	pair, err := u.tokens.IssuePair(id)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	user := &entity.User{
		ID:           id,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashed,
		Avatar:       in.Avatar,
		RefreshToken: pair.RefreshToken,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &AuthResult{TokenPair: pair, User: user.Public()}, nil
}

// Login はユーザーを認証し、リフレッシュトークンをローテーションします。
// 存在しないメールアドレスでもパスワード照合を実行し、応答時間を揃えます。
// clientKey は試行回数制限に使う呼び出し元の識別子です（通常はクライアントIP）。
func (u *authUsecase) Login(ctx context.Context, email, password, clientKey string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	throttleKey := email + "|" + clientKey

	if u.throttle != nil {
		allowed, err := u.throttle.Allow(ctx, throttleKey)
		if err != nil {
			slog.Warn("login throttle unavailable", "error", err)
		} else if !allowed {
			return nil, ErrTooManyAttempts
		}
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	passwordHash := u.hasher.DummyHash()
	if err == nil {
		passwordHash = user.PasswordHash
	}

	ok, verifyErr := u.hasher.Verify(ctx, password, passwordHash)
	if verifyErr != nil {
		return nil, fmt.Errorf("failed to verify password: %w", verifyErr)
	}
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	pair, err := u.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	if err := u.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	if u.throttle != nil {
		if err := u.throttle.Reset(ctx, throttleKey); err != nil {
			slog.Warn("failed to reset login throttle", "error", err)
		}
	}

	return &AuthResult{TokenPair: pair, User: user.Public()}, nil
}

// Refresh は有効な最新のリフレッシュトークンを新しいペアと交換します。
// 提示されたトークンは失効し、2回目の使用はErrInvalidTokenになります。
func (u *authUsecase) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, ErrMissingToken
	}

	userID, err := u.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user.RefreshToken != refreshToken {
		return nil, ErrInvalidToken
	}

	pair, err := u.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if err := u.users.RotateRefreshToken(ctx, user.ID, refreshToken, pair.RefreshToken); err != nil {
		if errors.Is(err, ErrRefreshTokenMismatch) || errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return &pair, nil
}

// CurrentUser はアクセストークンで特定されたユーザーの公開情報を返します。
func (u *authUsecase) CurrentUser(ctx context.Context, userID string) (*entity.PublicUser, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	pub := user.Public()
	return &pub, nil
}
