// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo_backend/internal/feature/auth/domain/entity"
	"todo_backend/internal/feature/auth/transport/http/dto"
	"todo_backend/internal/feature/auth/usecase"
	jwtmw "todo_backend/internal/platform/jwt"
)

// エラーレスポンスの"error"フィールドに入るエラーコードです。
const (
	CodeDuplicateUser      = "DuplicateUser"
	CodeInvalidCredentials = "InvalidCredentials"
	CodeMissingToken       = "MissingToken"
	CodeInvalidToken       = "InvalidToken"
	CodeValidationFailed   = "ValidationFailed"
	CodeInvalidRequest     = "InvalidRequest"
	CodeTooManyAttempts    = "TooManyAttempts"
	CodeUserNotFound       = "UserNotFound"
	CodeServerError        = "ServerError"
	CodeUnauthorized       = jwtmw.CodeUnauthorized
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	Signup(ctx context.Context, in usecase.SignupInput) (*usecase.AuthResult, error)
	Login(ctx context.Context, email, password, clientKey string) (*usecase.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*usecase.TokenPair, error)
	CurrentUser(ctx context.Context, userID string) (*entity.PublicUser, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func toUserRes(u entity.PublicUser) dto.UserRes {
	return dto.UserRes{ID: u.ID, Username: u.Username, Email: u.Email, Avatar: u.Avatar}
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.ErrorRes{Error: code, Message: message})
}

// writeError はユースケースのエラーをHTTPレスポンスに変換します。
// 想定外のエラーはここでログに残し、汎用的な500を返します。
func writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, usecase.ErrDuplicateUser):
		abortWithError(c, http.StatusBadRequest, CodeDuplicateUser, "User already exists")
	case errors.Is(err, usecase.ErrValidation):
		abortWithError(c, http.StatusBadRequest, CodeValidationFailed, err.Error())
	case errors.Is(err, usecase.ErrInvalidCredentials):
		abortWithError(c, http.StatusBadRequest, CodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, usecase.ErrTooManyAttempts):
		abortWithError(c, http.StatusTooManyRequests, CodeTooManyAttempts, "Too many login attempts, try again later")
	case errors.Is(err, usecase.ErrMissingToken):
		abortWithError(c, http.StatusBadRequest, CodeMissingToken, "Refresh token required")
	case errors.Is(err, usecase.ErrInvalidToken):
		abortWithError(c, http.StatusForbidden, CodeInvalidToken, "Invalid refresh token")
	case errors.Is(err, usecase.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, CodeUserNotFound, "User not found")
	default:
		slog.Error(op+" failed", "error", err, "remote_addr", c.ClientIP())
		abortWithError(c, http.StatusInternalServerError, CodeServerError, "Server error")
	}
}

// Signup はユーザー登録APIエンドポイントを処理します。
// - 成功時はトークンペアと公開ユーザー情報付きで201を返却
// - メール重複時は400 DuplicateUserを返却
// - 入力不正時は400 ValidationFailed / InvalidRequestを返却
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup request rejected", "error", err, "remote_addr", c.ClientIP())
		abortWithError(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body")
		return
	}

	res, err := h.auth.Signup(c.Request.Context(), usecase.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		slog.Warn("signup failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		writeError(c, "signup", err)
		return
	}

	slog.Info("user signup successful", "user_id", res.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.AuthRes{
		Message:      "User created successfully",
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         toUserRes(res.User),
	})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// ユーザー列挙攻撃を防止するため、未登録メールとパスワード誤りは同じレスポンスになります。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login request rejected", "error", err, "remote_addr", c.ClientIP())
		abortWithError(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body")
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		slog.Warn("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		writeError(c, "login", err)
		return
	}

	slog.Info("user login successful", "user_id", res.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.AuthRes{
		Message:      "Logged in successfully",
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         toUserRes(res.User),
	})
}

// Refresh はトークン更新APIエンドポイントを処理します。
// 空のボディはトークン未指定として扱います。
// 文字列以外のrefreshTokenは検証できないトークンとして403を返却します。
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Warn("refresh request rejected", "error", err, "remote_addr", c.ClientIP())
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			writeError(c, "refresh", usecase.ErrInvalidToken)
			return
		}
		abortWithError(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body")
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		slog.Warn("token refresh failed", "error", err, "remote_addr", c.ClientIP())
		writeError(c, "refresh", err)
		return
	}

	c.JSON(http.StatusOK, dto.RefreshRes{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Me はログイン中ユーザー取得APIエンドポイントを処理します。
// jwtmw.AuthRequired の後ろにマウントする必要があります。
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(jwtmw.ContextUserID)
	if userID == "" {
		abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "missing bearer token")
		return
	}

	user, err := h.auth.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, "current user", err)
		return
	}

	c.JSON(http.StatusOK, dto.MeRes{User: toUserRes(*user)})
}
