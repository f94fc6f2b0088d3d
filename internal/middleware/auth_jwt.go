package middleware

import (
	"net/http"
	"strings"

	"ecshop/internal/config"
	"ecshop/internal/infra/auth"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey   = "user_id"   // int64
	CtxUserRoleKey = "user_role" // string
)

// AuthJWT はBearerトークンを検証し、user_idとroleをcontextに入れる
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	tokens := auth.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxUserIDKey, claims.UserID)
			c.Set(CtxUserRoleKey, string(claims.Role))
			return next(c)
		}
	}
}

// "Bearer <token>" からtokenを取り出す
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
