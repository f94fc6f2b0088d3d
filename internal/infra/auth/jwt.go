// Package auth はJWTの発行とbcryptによるパスワードハッシュ。
package auth

import (
	"errors"
	"strconv"
	"time"

	"ecshop/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

// HS256でアクセストークンを発行する
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue はsub(ユーザーID)・role・expを持つトークンを返す
func (i *JWTIssuer) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	if userID <= 0 {
		return "", time.Time{}, errors.New("invalid user id")
	}
	expiresAt := now.Add(i.ttl)

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

var ErrInvalidToken = errors.New("invalid token")

// アクセストークンから取り出す値
type Claims struct {
	UserID int64
	Role   model.Role
}

// Parse は署名(HS256)と期限を検証し、subとroleを返す
func (i *JWTIssuer) Parse(raw string) (Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	var userID int64
	switch v := mc["sub"].(type) {
	case string:
		userID, err = strconv.ParseInt(v, 10, 64)
	case float64:
		userID = int64(v)
	default:
		err = ErrInvalidToken
	}
	if err != nil || userID <= 0 {
		return Claims{}, ErrInvalidToken
	}

	role, _ := mc["role"].(string)
	if role == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{UserID: userID, Role: model.Role(role)}, nil
}
