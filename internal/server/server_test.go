package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"ecshop/internal/app"
	"ecshop/internal/config"
	"ecshop/internal/domain/model"
	"ecshop/internal/infra/queue"
	"ecshop/internal/server"
	"ecshop/internal/testutil"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

// =====================
// helper
// =====================

type testServer struct {
	e   *echo.Echo
	gdb *gorm.DB
	q   *queue.MemoryQueue
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Config{
		JWTSecret:           "test-secret",
		AccessTokenTTL:      time.Hour,
		BcryptCost:          4,
		MailFrom:            "shop@example.com",
		ShopURLTemplate:     "https://%s.ru",
		AuthRateLimitPerMin: 1000,
		WorkerConcurrency:   1,
		TaskMaxAttempts:     1,
	}
	log := zaptest.NewLogger(t)
	gdb := testutil.NewDB(t)
	q := queue.NewMemoryQueue(64)

	a := app.New(cfg, log, gdb, q)
	return &testServer{e: server.New(cfg, log, a.Handlers), gdb: gdb, q: q}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type authResponse struct {
	User struct {
		ID   int64  `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
	Token struct {
		AccessToken string `json:"access_token"`
	} `json:"token"`
}

func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": email, "password": "password123", "first_name": "Jane",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[authResponse](t, rec).Token.AccessToken
}

func (s *testServer) admin(t *testing.T) string {
	t.Helper()
	s.register(t, "admin@example.com")
	require.NoError(t, s.gdb.Model(&model.User{}).Where("email = ?", "admin@example.com").Update("role", model.RoleAdmin).Error)

	rec := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "admin@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[authResponse](t, rec)
	require.Equal(t, "ADMIN", out.User.Role)
	return out.Token.AccessToken
}

type pricedLine struct {
	ID       int64            `json:"id"`
	Product  string           `json:"product"`
	Shop     string           `json:"shop"`
	Quantity int64            `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
	Total    *decimal.Decimal `json:"total"`
}

type orderBody struct {
	ID     int64           `json:"id"`
	Status string          `json:"status"`
	Items  []pricedLine    `json:"items"`
	Total  decimal.Decimal `json:"total"`
}

// =====================
// Tests
// =====================

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestShoppingFlow(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.admin(t)

	// カタログ取込
	rec := s.do(t, http.MethodPost, "/admin/imports", adminToken, map[string]any{
		"source": testutil.WriteFeed(t, testutil.AcmeFeed),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	imported := decode[map[string]any](t, rec)
	assert.Equal(t, "Acme", imported["shop"])

	userToken := s.register(t, "buyer@example.com")

	// 商品一覧と詳細
	rec = s.do(t, http.MethodGet, "/products?q=ham", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	list := decode[struct {
		Items []struct {
			ID       int64  `json:"id"`
			Name     string `json:"name"`
			Category string `json:"category"`
		} `json:"items"`
		Total int64 `json:"total"`
	}](t, rec)
	require.Equal(t, int64(1), list.Total)
	assert.Equal(t, "Tools", list.Items[0].Category)

	rec = s.do(t, http.MethodGet, "/products/"+strconv.FormatInt(list.Items[0].ID, 10), userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	detail := decode[struct {
		Listings []struct {
			ID         int64           `json:"id"`
			Shop       string          `json:"shop"`
			Price      decimal.Decimal `json:"price"`
			Parameters []struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"parameters"`
		} `json:"listings"`
	}](t, rec)
	require.Len(t, detail.Listings, 1)
	listing := detail.Listings[0]
	assert.Equal(t, "Acme", listing.Shop)
	assert.True(t, listing.Price.Equal(decimal.RequireFromString("9.99")))
	assert.Len(t, listing.Parameters, 2)

	// カート
	rec = s.do(t, http.MethodGet, "/cart", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[map[string]any](t, rec)["empty"].(bool))

	rec = s.do(t, http.MethodPost, "/cart/items", userToken, map[string]any{"product_info_id": listing.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/cart", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode[orderBody](t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Hammer", cart.Items[0].Product)
	assert.True(t, cart.Total.Equal(decimal.RequireFromString("19.98")), "total=%s", cart.Total)

	// 連絡先と配送先
	rec = s.do(t, http.MethodPost, "/contacts", userToken, map[string]string{
		"last_name": "Doe", "first_name": "Jane", "email": "jane@example.com", "phone": "+1000000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	contactID := int64(decode[map[string]any](t, rec)["id"].(float64))

	rec = s.do(t, http.MethodPost, "/delivery-addresses", userToken, map[string]string{
		"address_line": "1 Main St", "city": "Springfield", "postal_code": "12345", "country": "US",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	addressID := int64(decode[map[string]any](t, rec)["id"].(float64))

	// 確定
	rec = s.do(t, http.MethodPost, "/orders/confirm", userToken, map[string]int64{
		"contact_id": contactID, "delivery_address_id": addressID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	order := decode[orderBody](t, rec)
	assert.Equal(t, "confirmed", order.Status)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("19.98")))

	// ウェルカムメール2通と確定メール1通
	assert.Equal(t, 3, s.q.Len())

	rec = s.do(t, http.MethodGet, "/cart", userToken, nil)
	assert.True(t, decode[map[string]any](t, rec)["empty"].(bool))

	rec = s.do(t, http.MethodGet, "/orders", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]orderBody](t, rec)
	require.Len(t, history, 1)
	assert.Equal(t, order.ID, history[0].ID)

	orderPath := "/orders/" + strconv.FormatInt(order.ID, 10)
	rec = s.do(t, http.MethodGet, orderPath, userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPatch, orderPath+"/status", userToken, map[string]string{"status": "sent"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"order_id":`+strconv.FormatInt(order.ID, 10)+`,"old_status":"confirmed","new_status":"sent"}`, rec.Body.String())

	// 監査ログはADMINのみ
	rec = s.do(t, http.MethodGet, "/admin/audit-logs", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/audit-logs?action=UPDATE_ORDER_STATUS", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	logs := decode[[]model.AuditLog](t, rec)
	require.Len(t, logs, 1)
	assert.Equal(t, order.ID, logs[0].ResourceID)

	rec = s.do(t, http.MethodGet, "/admin/audit-logs?resource_type=order&resource_id="+strconv.FormatInt(order.ID, 10), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode[[]model.AuditLog](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/admin/audit-logs?action=IMPORT_CATALOG&resource_type=order", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodGet, "/admin/audit-logs?since=yesterday", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportEndpoint_Errors(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.admin(t)

	rec := s.do(t, http.MethodPost, "/admin/imports", adminToken, map[string]any{"source": "/nonexistent/feed.yaml"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "file_not_found", decode[map[string]any](t, rec)["kind"])

	rec = s.do(t, http.MethodPost, "/admin/imports", adminToken, map[string]any{"source": testutil.WriteFeed(t, "shop: [x")})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "feed_syntax", decode[map[string]any](t, rec)["kind"])

	rec = s.do(t, http.MethodPost, "/admin/imports", adminToken, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	before := s.q.Len()
	rec = s.do(t, http.MethodPost, "/admin/imports", adminToken, map[string]any{"source": "https://example.com/feed.yaml", "async": true})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decode[map[string]any](t, rec)["task_id"])
	assert.Equal(t, before+1, s.q.Len())
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@example.com")

	rec := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{"email": "a@example.com", "password": "password123"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/register", "", map[string]string{"email": "bad", "password": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, rec).Fields
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")

	rec = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "a@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
