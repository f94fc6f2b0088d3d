package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ecshop/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// =====================
// helper
// =====================

type mwOKResponse struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

func mustMakeJWT(t *testing.T, secret string, claims jwt.MapClaims, method jwt.SigningMethod) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func validClaims(sub any, role string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
}

func newProtectedEcho(cfg config.Config, mws ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	mws = append([]echo.MiddlewareFunc{AuthJWT(cfg)}, mws...)
	e.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, mwOKResponse{
			UserID: c.Get(CtxUserIDKey).(int64),
			Role:   c.Get(CtxUserRoleKey).(string),
		})
	}, mws...)
	return e
}

func doGet(e *echo.Echo, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// =====================
// AuthJWT
// =====================

func TestAuthJWT_OK(t *testing.T) {
	cfg := config.Config{JWTSecret: "secret"}
	e := newProtectedEcho(cfg)

	for _, sub := range []any{"42", float64(42)} {
		rec := doGet(e, "/me", mustMakeJWT(t, "secret", validClaims(sub, "USER"), jwt.SigningMethodHS256))
		require.Equal(t, http.StatusOK, rec.Code)

		var got mwOKResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, mwOKResponse{UserID: 42, Role: "USER"}, got)
	}
}

func TestAuthJWT_Rejects(t *testing.T) {
	cfg := config.Config{JWTSecret: "secret"}
	e := newProtectedEcho(cfg)

	expired := jwt.MapClaims{"sub": "1", "role": "USER", "exp": time.Now().Add(-time.Minute).Unix()}

	cases := map[string]string{
		"no header":        "",
		"garbage":          "not-a-jwt",
		"wrong secret":     mustMakeJWT(t, "other", validClaims("1", "USER"), jwt.SigningMethodHS256),
		"wrong algorithm":  mustMakeJWT(t, "secret", validClaims("1", "USER"), jwt.SigningMethodHS512),
		"expired":          mustMakeJWT(t, "secret", expired, jwt.SigningMethodHS256),
		"missing role":     mustMakeJWT(t, "secret", validClaims("1", ""), jwt.SigningMethodHS256),
		"non numeric sub":  mustMakeJWT(t, "secret", validClaims("abc", "USER"), jwt.SigningMethodHS256),
		"non positive sub": mustMakeJWT(t, "secret", validClaims("0", "USER"), jwt.SigningMethodHS256),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			rec := doGet(e, "/me", token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =====================
// AdminRoleGuard
// =====================

func TestAdminRoleGuard(t *testing.T) {
	cfg := config.Config{JWTSecret: "secret"}
	e := newProtectedEcho(cfg, AdminRoleGuard())

	rec := doGet(e, "/me", mustMakeJWT(t, "secret", validClaims("1", "USER"), jwt.SigningMethodHS256))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doGet(e, "/me", mustMakeJWT(t, "secret", validClaims("1", "ADMIN"), jwt.SigningMethodHS256))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoleGuard_WithoutAuth(t *testing.T) {
	e := echo.New()
	e.GET("/admin", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, AdminRoleGuard())
	assert.Equal(t, http.StatusUnauthorized, doGet(e, "/admin", "").Code)
}

// =====================
// RateLimit
// =====================

func TestRateLimit(t *testing.T) {
	e := echo.New()
	e.GET("/auth/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RateLimit(2))

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	// IPごとに別枠
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestRateLimit_Disabled(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RateLimit(0))
	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, doGet(e, "/x", "").Code)
	}
}

// =====================
// RequestLogger
// =====================

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := echo.New()
	e.Use(RequestLogger(zap.New(core)))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusInternalServerError, "boom") })

	doGet(e, "/ok", "")
	rec := doGet(e, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "/ok", entries[0].ContextMap()["path"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, int64(500), entries[1].ContextMap()["status"])
}
