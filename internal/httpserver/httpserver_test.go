package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/feed_shop/internal/events"
	"github.com/Skotchmaster/feed_shop/internal/models"
	"github.com/Skotchmaster/feed_shop/internal/payment"
	"github.com/Skotchmaster/feed_shop/internal/repo"
	"github.com/Skotchmaster/feed_shop/internal/service"
	"github.com/Skotchmaster/feed_shop/internal/session"
	pkgdb "github.com/Skotchmaster/feed_shop/pkg/db"
	"github.com/Skotchmaster/feed_shop/pkg/logging"
)

var webhookSecret = []byte("webhook-secret")

type testEnv struct {
	E      *echo.Echo
	Repo   *repo.GormRepo
	Events *events.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := pkgdb.Open(ctx, "sqlite::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pkgdb.Close(db) })
	require.NoError(t, repo.Migrate(db))

	r := repo.New(db)
	rec := &events.Recorder{}
	sessions := session.NewManager(session.NewMemoryStore(), []byte("session-secret"), 0)

	authSvc := &service.AuthService{Repo: r, Sessions: sessions, Events: rec}
	require.NoError(t, authSvc.EnsureAdmin(ctx, service.AdminBootstrap{Username: "admin", Password: "admin123"}))

	gate := &Gate{Auth: authSvc}
	deps := &Deps{
		DB:             db,
		Gate:           gate,
		AuthHandler:    &AuthHTTP{Svc: authSvc},
		CatalogHandler: &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Events: rec}},
		OrderHandler:   &OrderHTTP{Svc: &service.OrderService{Repo: r, Gateway: payment.NewMock(webhookSecret), Events: rec}},
		ContactHandler: &ContactHTTP{Svc: &service.ContactService{Repo: r, Events: rec}},
	}

	logger := logging.NewWithWriter("error", io.Discard)
	return &testEnv{E: New(logger, Options{}, deps), Repo: r, Events: rec}
}

func (env *testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.CookieName && ck.Value != "" {
			return ck
		}
	}
	t.Fatalf("no %s cookie in response", session.CookieName)
	return nil
}

func (env *testEnv) register(t *testing.T, username string) *http.Cookie {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/register", echo.Map{"username": username, "password": "secret1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return sessionCookie(t, rec)
}

func (env *testEnv) loginAdmin(t *testing.T) *http.Cookie {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/login", echo.Map{"username": "admin", "password": "admin123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return sessionCookie(t, rec)
}

func (env *testEnv) createProduct(t *testing.T, admin *http.Cookie, name, price string) models.Product {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/products", echo.Map{
		"name":        name,
		"description": name + " feed",
		"price":       price,
	}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/live", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/ready", nil).Code)
}

func TestRegisterLoginMeLogout(t *testing.T) {
	env := newTestEnv(t)

	ck := env.register(t, "ram")

	rec := env.do(t, http.MethodGet, "/api/user", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode(t, rec)
	assert.Equal(t, "ram", me["username"])
	assert.Equal(t, models.RoleCustomer, me["role"])
	assert.NotContains(t, me, "passwordHash")

	rec = env.do(t, http.MethodPost, "/api/logout", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Logged out"}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/user", nil, ck)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Not authenticated"}`, rec.Body.String())
}

func TestRegister_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ram")

	rec := env.do(t, http.MethodPost, "/api/register", echo.Map{"username": "ram", "password": "secret2"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Username already exists","field":"username"}`, rec.Body.String())
}

func TestRegister_ValidationNamesField(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/register", echo.Map{"username": "ram", "password": "123"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "password", body["field"])
	assert.NotEmpty(t, body["message"])
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ram")

	wrongPassword := env.do(t, http.MethodPost, "/api/login", echo.Map{"username": "ram", "password": "nope-nope"})
	unknownUser := env.do(t, http.MethodPost, "/api/login", echo.Map{"username": "ghost", "password": "nope-nope"})

	for _, rec := range []*httptest.ResponseRecorder{wrongPassword, unknownUser} {
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"Invalid username or password"}`, rec.Body.String())
	}
}

func TestProducts_PublicReadAndNotFound(t *testing.T) {
	env := newTestEnv(t)
	admin := env.loginAdmin(t)
	p := env.createProduct(t, admin, "Cattle Feed", "750.00")

	rec := env.do(t, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "750.00", list[0].Price.String())

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/products/%d", p.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"750.00"`, string(mustRaw(t, rec, "price")))

	for _, path := range []string{"/api/products/9999", "/api/products/abc"} {
		rec = env.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.JSONEq(t, `{"message":"Product not found"}`, rec.Body.String(), path)
	}
}

func mustRaw(t *testing.T, rec *httptest.ResponseRecorder, key string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m[key]
}

func TestProducts_AdminOnlyRegardlessOfPayload(t *testing.T) {
	env := newTestEnv(t)
	customer := env.register(t, "ram")

	cases := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/api/products", echo.Map{"name": "x", "description": "y", "price": "1.00"}},
		{http.MethodPost, "/api/products", echo.Map{}},
		{http.MethodPut, "/api/products/1", echo.Map{"name": ""}},
		{http.MethodDelete, "/api/products/1", nil},
		{http.MethodPatch, "/api/orders/1/delivery", echo.Map{"deliveryStatus": "bogus"}},
		{http.MethodGet, "/api/admin/orders", nil},
		{http.MethodGet, "/api/contact", nil},
	}
	for _, tc := range cases {
		anon := env.do(t, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusForbidden, anon.Code, "anonymous %s %s", tc.method, tc.path)

		cust := env.do(t, tc.method, tc.path, tc.body, customer)
		assert.Equal(t, http.StatusForbidden, cust.Code, "customer %s %s", tc.method, tc.path)
	}
}

func TestProducts_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	admin := env.loginAdmin(t)
	p := env.createProduct(t, admin, "Cattle Feed", "750.00")

	rec := env.do(t, http.MethodPut, fmt.Sprintf("/api/products/%d", p.ID), echo.Map{"price": "800"}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `"800.00"`, string(mustRaw(t, rec, "price")))

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/products/%d", p.ID), nil, admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/products/%d", p.ID), nil, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Product not found"}`, rec.Body.String())
}

func TestProducts_Search(t *testing.T) {
	env := newTestEnv(t)
	admin := env.loginAdmin(t)
	env.createProduct(t, admin, "Cattle Feed", "750.00")
	env.createProduct(t, admin, "Mineral Mixture", "450.00")

	rec := env.do(t, http.MethodGet, "/api/products/search?q=mineral&page=1&size=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []models.Product `json:"data"`
		Meta struct {
			Page    int   `json:"page"`
			Size    int   `json:"size"`
			Total   int64 `json:"total"`
			HasNext bool  `json:"has_next"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Mineral Mixture", body.Data[0].Name)
	assert.EqualValues(t, 1, body.Meta.Total)
	assert.Equal(t, 5, body.Meta.Size)
	assert.False(t, body.Meta.HasNext)
}

func TestOrders_CashOnDelivery(t *testing.T) {
	env := newTestEnv(t)
	admin := env.loginAdmin(t)
	p := env.createProduct(t, admin, "Cattle Feed", "750.00")
	ram := env.register(t, "ram")

	rec := env.do(t, http.MethodPost, "/api/orders", echo.Map{
		"productId":       p.ID,
		"quantity":        2,
		"shippingAddress": "12 Farm Road",
		"paymentMethod":   "COD",
	}, ram)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res struct {
		OrderID         uint   `json:"orderId"`
		GatewayOrderRef string `json:"gatewayOrderRef"`
		Amount          int64  `json:"amount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.EqualValues(t, 150000, res.Amount)
	assert.Contains(t, res.GatewayOrderRef, "cod_")

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", res.OrderID), nil, ram)
	require.Equal(t, http.StatusOK, rec.Code)
	order := decode(t, rec)
	assert.Equal(t, "1500.00", order["totalAmount"])
	assert.Equal(t, models.PaymentStatusPaid, order["paymentStatus"])
	assert.Equal(t, models.OrderStatusConfirmed, order["status"])

	rec = env.do(t, http.MethodGet, "/api/orders", nil, ram)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	assert.Len(t, mine, 1)

	assert.Contains(t, env.Events.Types(), "order_created")
}

func TestOrders_RequireSessionAndOwnership(t *testing.T) {
	env := newTestEnv(t)
	admin := env.loginAdmin(t)
	p := env.createProduct(t, admin, "Cattle Feed", "750.00")
	ram := env.register(t, "ram")
	sita := env.register(t, "sita")

	rec := env.do(t, http.MethodPost, "/api/orders", echo.Map{"productId": p.ID, "quantity": 1})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/orders", echo.Map{"productId": p.ID, "quantity": 1, "paymentMethod": "cod"}, ram)
	require.Equal(t, http.StatusCreated, rec.Code)
	var res struct {
		OrderID uint `json:"orderId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", res.OrderID), nil, sita)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Order not found"}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", res.OrderID), nil, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/orders", echo.Map{"productId": 9999, "quantity": 1, "paymentMethod": "cod"}, ram)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Product not found"}`, rec.Body.String())
}

func TestOrders_GatewayVerify(t *testing.T) {
	env := newTestEnv(t)
	admin := env.loginAdmin(t)
	p := env.createProduct(t, admin, "Mineral Mixture", "450.00")
	ram := env.register(t, "ram")

	rec := env.do(t, http.MethodPost, "/api/orders", echo.Map{"productId": p.ID, "quantity": 1, "paymentMethod": "razorpay"}, ram)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res struct {
		OrderID         uint   `json:"orderId"`
		GatewayOrderRef string `json:"gatewayOrderRef"`
		Key             string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, payment.MockKeyID, res.Key)

	bad := env.do(t, http.MethodPost, "/api/orders/verify", echo.Map{
		"gatewayOrderRef":   res.GatewayOrderRef,
		"gatewayPaymentRef": "pay_1",
		"signature":         "deadbeef",
	})
	require.Equal(t, http.StatusBadRequest, bad.Code)
	assert.Equal(t, "signature", decode(t, bad)["field"])

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", res.OrderID), nil, ram)
	assert.Equal(t, models.PaymentStatusPending, decode(t, rec)["paymentStatus"])

	good := env.do(t, http.MethodPost, "/api/orders/verify", echo.Map{
		"gatewayOrderRef":   res.GatewayOrderRef,
		"gatewayPaymentRef": "pay_1",
		"signature":         payment.Sign(webhookSecret, res.GatewayOrderRef, "pay_1"),
	})
	require.Equal(t, http.StatusOK, good.Code)
	assert.JSONEq(t, `{"status":"success"}`, good.Body.String())

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", res.OrderID), nil, ram)
	order := decode(t, rec)
	assert.Equal(t, models.PaymentStatusPaid, order["paymentStatus"])
	assert.Equal(t, models.OrderStatusConfirmed, order["status"])
	assert.Equal(t, "pay_1", order["gatewayPaymentRef"])
}

func TestOrders_AdminDeliveryAndListing(t *testing.T) {
	env := newTestEnv(t)
	admin := env.loginAdmin(t)
	p := env.createProduct(t, admin, "Cattle Feed", "750.00")
	ram := env.register(t, "ram")

	rec := env.do(t, http.MethodPost, "/api/orders", echo.Map{"productId": p.ID, "quantity": 1, "paymentMethod": "cod"}, ram)
	require.Equal(t, http.StatusCreated, rec.Code)
	var res struct {
		OrderID uint `json:"orderId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	path := fmt.Sprintf("/api/orders/%d/delivery", res.OrderID)
	rec = env.do(t, http.MethodPatch, path, echo.Map{"deliveryStatus": "teleported"}, admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "deliveryStatus", decode(t, rec)["field"])

	rec = env.do(t, http.MethodPatch, path, echo.Map{"deliveryStatus": "shipped", "trackingNumber": "TRK123"}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	order := decode(t, rec)
	assert.Equal(t, models.DeliveryShipped, order["deliveryStatus"])
	assert.Equal(t, "TRK123", order["trackingNumber"])

	rec = env.do(t, http.MethodPatch, "/api/orders/9999/delivery", echo.Map{"deliveryStatus": "shipped"}, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/orders", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 1)
}

func TestContact(t *testing.T) {
	env := newTestEnv(t)
	admin := env.loginAdmin(t)

	rec := env.do(t, http.MethodPost, "/api/contact", echo.Map{"name": "Ram", "email": "not-an-email", "message": "hi"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid email address","field":"email"}`, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/contact", echo.Map{"name": "Ram", "email": "ram@example.com", "message": "Need 10 bags"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/contact", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var msgs []models.ContactMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "Need 10 bags", msgs[0].Message)
}

func TestMalformedBody(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBufferString("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid request body"}`, rec.Body.String())
}

func TestRegister_OverlongPasswordIsBadRequest(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/register", echo.Map{"username": "ram", "password": strings.Repeat("é", 40)})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "password", decode(t, rec)["field"])
}

func TestProducts_PriceAboveColumnLimit(t *testing.T) {
	env := newTestEnv(t)
	admin := env.loginAdmin(t)

	rec := env.do(t, http.MethodPost, "/api/products", echo.Map{"name": "Gold", "description": "d", "price": "1e20"}, admin)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "price", decode(t, rec)["field"])

	p := env.createProduct(t, admin, "Bulk", "99999999.99")
	ram := env.register(t, "ram")
	rec = env.do(t, http.MethodPost, "/api/orders", echo.Map{"productId": p.ID, "quantity": 10000, "paymentMethod": "cod"}, ram)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "quantity", decode(t, rec)["field"])
}
