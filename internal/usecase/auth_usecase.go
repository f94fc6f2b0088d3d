package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"ecshop/internal/domain/model"
	"ecshop/internal/repository"

	"go.uber.org/zap"
)

// 平文パスワードとハッシュ
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// アクセストークンの発行
type TokenIssuer interface {
	Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error)
}

type UserDTO struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
}

type JwtAccessTokenDTO struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type AuthResponse struct {
	User  UserDTO           `json:"user"`
	Token JwtAccessTokenDTO `json:"token"`
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthUsecase struct {
	users    repository.UserRepository
	hasher   PasswordHasher
	issuer   TokenIssuer
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthUsecase(
	users repository.UserRepository,
	hasher PasswordHasher,
	issuer TokenIssuer,
	notifier Notifier,
	log *zap.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:    users,
		hasher:   hasher,
		issuer:   issuer,
		notifier: notifier,
		log:      log.Named("auth"),
		now:      time.Now,
	}
}

func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Register は会員登録してトークンを返す。ウェルカムメールはジョブで送る
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (AuthResponse, error) {
	email := normalizeEmail(in.Email)
	if email == "" || len(in.Password) < 8 {
		return AuthResponse{}, NewHTTPError(http.StatusBadRequest, "invalid input")
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return AuthResponse{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return AuthResponse{}, NewHTTPError(http.StatusConflict, "email already exists")
		}
		return AuthResponse{}, errDB
	}

	out, err := u.issue(user)
	if err != nil {
		return AuthResponse{}, err
	}

	u.notifier.Registered(ctx, *user)
	return out, nil
}

// Login はメールとパスワードを照合してトークンを返す
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return AuthResponse{}, NewHTTPError(http.StatusBadRequest, "invalid input")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return AuthResponse{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return AuthResponse{}, errDB
	}
	if !user.IsActive {
		return AuthResponse{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	//パスワード照合（bcrypt）
	if err := u.hasher.Compare(user.PasswordHash, in.Password); err != nil {
		return AuthResponse{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	if err := u.users.TouchLastLogin(ctx, user.ID); err != nil {
		u.log.Warn("update last login", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	return u.issue(user)
}

func (u *AuthUsecase) issue(user *model.User) (AuthResponse, error) {
	now := u.now()
	token, exp, err := u.issuer.Issue(user.ID, user.Role, now)
	if err != nil {
		return AuthResponse{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return AuthResponse{
		User: toUserDTO(user),
		Token: JwtAccessTokenDTO{
			AccessToken: token,
			ExpiresIn:   int(exp.Sub(now).Seconds()),
		},
	}, nil
}
