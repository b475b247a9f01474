package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"order_desk/internal/balance"
	"order_desk/internal/config"
	"order_desk/internal/middleware"
	"order_desk/internal/model"
	"order_desk/internal/store/storetest"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-admin-token"

type envelope[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data T      `json:"data"`
}

func newServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Setup(r, Deps{
		DB: storetest.New(t),
		Config: config.AppConfig{
			AdminToken:         testToken,
			BalanceConcurrency: 4,
			PromoteRateLimit:   100,
			PromoteRateWindow:  time.Second,
			PromotionStateTTL:  time.Hour,
		},
	})
	return r
}

func call(t *testing.T, r *gin.Engine, method, path string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set(middleware.TokenHeader, testToken)
		req.Header.Set(middleware.ActorHeader, "admin-1")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env.Data
}

type promoted struct {
	Order           model.Order    `json:"order"`
	Customer        model.Customer `json:"customer"`
	CustomerCreated bool           `json:"customer_created"`
}

func submit(t *testing.T, r *gin.Engine, name, whatsapp string) model.PendingOrder {
	t.Helper()
	w := call(t, r, http.MethodPost, "/api/pending-orders", gin.H{
		"customer": gin.H{"full_name": name, "whatsapp_no": whatsapp},
		"items": []gin.H{
			{"product_name": "Visiting Card", "quantity": 1000, "rate": "0.5", "amount": "500"},
		},
		"discount": "50",
	}, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[model.PendingOrder](t, w)
}

func TestPing(t *testing.T) {
	w := call(t, newServer(t), http.MethodGet, "/ping", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	r := newServer(t)
	assert.Equal(t, http.StatusUnauthorized, call(t, r, http.MethodGet, "/api/orders", nil, false).Code)
	assert.Equal(t, http.StatusOK, call(t, r, http.MethodGet, "/api/orders", nil, true).Code)
}

func TestPromoteFlow(t *testing.T) {
	r := newServer(t)
	p := submit(t, r, "Asha Traders", "9990001111")
	assert.True(t, p.FinalAmount.Equal(decimal.NewFromInt(450)))

	w := call(t, r, http.MethodPost, "/api/pending-orders/"+p.ID+"/promote", nil, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[promoted](t, w)
	assert.Equal(t, "OM-1001", res.Order.OrderID)
	assert.Equal(t, int64(101), res.Customer.CustomCustomerID)
	assert.True(t, res.CustomerCreated)
	assert.Equal(t, "admin-1", res.Order.CreatedBy)

	// 第二次转正：pending 已不存在
	w = call(t, r, http.MethodPost, "/api/pending-orders/"+p.ID+"/promote", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(t, r, http.MethodGet, "/api/orders/OM-1001", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, res.Order.ID, decode[model.Order](t, w).ID)

	w = call(t, r, http.MethodPatch, "/api/orders/OM-1001/status", gin.H{"status": model.StatusPrinting}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[model.Order](t, w)
	assert.Equal(t, model.StatusPrinting, updated.Status)
	assert.Len(t, updated.StatusHistory, 2)

	w = call(t, r, http.MethodPatch, "/api/orders/OM-1001/status", gin.H{"status": "Lost"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 收款 200 后欠款 250
	cid := res.Customer.ID
	w = call(t, r, http.MethodPost, "/api/customers/"+cid+"/payments", gin.H{"order_id": res.Order.ID, "amount": "200"}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(t, r, http.MethodGet, "/api/customers/"+cid+"/balance", nil, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	row := decode[balance.Row](t, w)
	assert.True(t, row.Amount.Equal(decimal.NewFromInt(250)), row.Amount.String())
	assert.Equal(t, balance.SideDue, row.Side)

	w = call(t, r, http.MethodPost, "/api/customers/balances", gin.H{"customer_ids": []string{cid, "nobody"}}, true)
	require.Equal(t, http.StatusOK, w.Code)
	rows := decode[[]balance.Row](t, w)
	require.Len(t, rows, 2)
	assert.Equal(t, cid, rows[0].CustomerID)
	assert.Equal(t, balance.SideSettled, rows[1].Side)
}

func TestPromoteReusesCustomerByWhatsApp(t *testing.T) {
	r := newServer(t)
	first := submit(t, r, "Asha Traders", "9990001111")
	second := submit(t, r, "Asha T.", "9990001111")

	require.Equal(t, http.StatusOK, call(t, r, http.MethodPost, "/api/pending-orders/"+first.ID+"/promote", nil, true).Code)
	w := call(t, r, http.MethodPost, "/api/pending-orders/"+second.ID+"/promote", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	out := decode[promoted](t, w)
	assert.Equal(t, "OM-1002", out.Order.OrderID)
	assert.False(t, out.CustomerCreated)
	assert.Equal(t, int64(101), out.Customer.CustomCustomerID)
}

func TestPromoteValidation(t *testing.T) {
	r := newServer(t)
	p := submit(t, r, "Asha Traders", "   ")

	w := call(t, r, http.MethodPost, "/api/pending-orders/"+p.ID+"/promote", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 校验失败不消耗编号
	w = call(t, r, http.MethodGet, "/api/sequences/orderCounter", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode[map[string]any](t, w)["last_issued"])
}

func TestRejectPending(t *testing.T) {
	r := newServer(t)
	p := submit(t, r, "Asha Traders", "9990001111")

	assert.Equal(t, http.StatusOK, call(t, r, http.MethodDelete, "/api/pending-orders/"+p.ID, nil, true).Code)
	assert.Equal(t, http.StatusNotFound, call(t, r, http.MethodDelete, "/api/pending-orders/"+p.ID, nil, true).Code)
	assert.Equal(t, http.StatusNotFound, call(t, r, http.MethodPost, "/api/pending-orders/"+p.ID+"/promote", nil, true).Code)
}

func TestSequenceEndpoints(t *testing.T) {
	r := newServer(t)

	w := call(t, r, http.MethodPost, "/api/sequences/orderCounter/next", nil, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode[map[string]any](t, w)
	assert.Equal(t, float64(1001), data["value"])
	assert.Equal(t, "OM-1001", data["display"])

	w = call(t, r, http.MethodPost, "/api/sequences/invoiceCounter/next", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(101), decode[map[string]any](t, w)["value"])

	w = call(t, r, http.MethodPost, "/api/sequences/jobCounter/next", gin.H{"start": 5000}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(5000), decode[map[string]any](t, w)["value"])

	w = call(t, r, http.MethodGet, "/api/sequences/orderCounter", nil, true)
	assert.Equal(t, float64(1001), decode[map[string]any](t, w)["last_issued"])
}

func TestCustomerAndCatalogRoutes(t *testing.T) {
	r := newServer(t)

	w := call(t, r, http.MethodPost, "/api/customers", gin.H{"full_name": "Ravi Prints", "whatsapp_no": "8880002222"}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cu := decode[model.Customer](t, w)
	assert.Equal(t, int64(101), cu.CustomCustomerID)

	w = call(t, r, http.MethodGet, "/api/customers/missing", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(t, r, http.MethodPost, "/api/products", gin.H{"name": "Flex", "unit": "SqFt", "stock": 100}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = call(t, r, http.MethodPost, "/api/products", gin.H{"name": "Flex", "stock": 1}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(t, r, http.MethodPost, "/api/suppliers", gin.H{"name": "Media House"}, true)
	require.Equal(t, http.StatusOK, w.Code)
	sup := decode[model.Supplier](t, w)

	w = call(t, r, http.MethodPost, "/api/purchase-orders", gin.H{
		"supplier_id": sup.ID,
		"items":       []gin.H{{"product_name": "Flex", "quantity": 10, "rate": "12"}},
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "PO-1", decode[model.PurchaseOrder](t, w).PONumber)

	w = call(t, r, http.MethodGet, "/api/purchase-orders/PO-1", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sup.ID, decode[model.PurchaseOrder](t, w).SupplierID)

	w = call(t, r, http.MethodGet, "/api/suppliers/"+sup.ID, nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Media House", decode[model.Supplier](t, w).Name)
}

func TestWatchWithoutRedis(t *testing.T) {
	w := call(t, newServer(t), http.MethodGet, "/api/orders/watch", nil, true)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
