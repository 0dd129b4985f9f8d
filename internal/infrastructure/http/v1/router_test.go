package v1_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fifostock/internal/core/idempotency"
	"fifostock/internal/domain/catalogs/item"
	"fifostock/internal/domain/documents/purchase"
	"fifostock/internal/domain/documents/sale"
	"fifostock/internal/domain/inventory"
	"fifostock/internal/domain/reports"
	v1 "fifostock/internal/infrastructure/http/v1"
	"fifostock/internal/infrastructure/http/v1/dto"
	"fifostock/internal/infrastructure/storage/memory"
	"fifostock/pkg/logger"
)

func newServer(t *testing.T, compress bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.New(memory.WithLockTimeout(100 * time.Millisecond))
	rec := inventory.NewRecorder(store, store, inventory.WithAudit(store))
	return v1.NewRouter(v1.RouterConfig{
		Logger:      logger.Nop(),
		Items:       item.NewService(store.Items(), store),
		Purchases:   purchase.NewService(store.Purchases(), store, store, rec),
		Sales:       sale.NewService(store.Sales(), store, store, rec),
		Reports:     reports.NewService(store.Items(), store, store),
		Idempotency: idempotency.NewMemoryStore(time.Minute),
		Version:     "test",
		Compress:    compress,
	})
}

func do(t *testing.T, h http.Handler, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequestWithContext(context.Background(), method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// seed creates ITEM004, two purchases and one sale of 25 units.
func seed(t *testing.T, h http.Handler) {
	t.Helper()
	w := do(t, h, http.MethodPost, "/api/v1/items", map[string]any{"code": "ITEM004", "name": "Bolt", "unit": "pcs"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	for _, p := range []struct{ code, date, qty, price string }{
		{"PUR-A", "2024-01-01", "20", "10"},
		{"PUR-B", "2024-01-02", "10", "12"},
	} {
		w = do(t, h, http.MethodPost, "/api/v1/purchases", map[string]any{"code": p.code, "date": p.date, "description": "buy"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		w = do(t, h, http.MethodPost, "/api/v1/purchases/"+p.code+"/details",
			map[string]any{"item": "ITEM004", "quantity": p.qty, "unit_price": p.price})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodPost, "/api/v1/sales", map[string]any{"code": "SAL-1", "date": "2024-01-03", "description": "sell"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestRouter_SaleAndReport(t *testing.T) {
	h := newServer(t, false)
	seed(t, h)

	w := do(t, h, http.MethodPost, "/api/v1/sales/SAL-1/details", map[string]any{"item": "ITEM004", "quantity": 25})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	line := decode[dto.SaleDetailResponse](t, w)
	assert.Equal(t, "260", line.Cost.String())
	assert.Equal(t, "10.4", line.UnitCost.String())
	require.Len(t, line.Takes, 2)

	w = do(t, h, http.MethodGet, "/api/v1/items/ITEM004", nil)
	require.Equal(t, http.StatusOK, w.Code)
	it := decode[dto.ItemResponse](t, w)
	assert.Equal(t, "5", it.Stock.String())
	assert.Equal(t, "60", it.Balance.String())

	w = do(t, h, http.MethodGet, "/api/v1/reports/ITEM004", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rep := decode[dto.ReportResponse](t, w).Result
	assert.Equal(t, "ITEM004", rep.ItemCode)
	assert.Equal(t, "Bolt", rep.Name)
	require.Len(t, rep.Items, 3)

	last := rep.Items[2]
	assert.Equal(t, "03-01-2024", last.Date)
	assert.Equal(t, "SAL-1", last.Code)
	assert.Equal(t, int64(25), last.OutQty)
	assert.Equal(t, int64(10), last.OutPrice, "10.4 truncated")
	assert.Equal(t, int64(260), last.OutTotal)
	assert.Equal(t, []int64{5}, last.StockQty)
	assert.Equal(t, []int64{12}, last.StockPrice)
	assert.Equal(t, []int64{60}, last.StockTotal)
	assert.Equal(t, int64(60), rep.Summary.Balance)
	assert.Equal(t, int64(5), rep.Summary.BalanceQty)
}

func TestRouter_ReportRange(t *testing.T) {
	h := newServer(t, false)
	seed(t, h)

	w := do(t, h, http.MethodGet, "/api/v1/reports/ITEM004?start_date=2024-01-02&end_date=2024-01-02", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rep := decode[dto.ReportResponse](t, w).Result
	require.Len(t, rep.Items, 1)
	assert.Equal(t, int64(20), rep.Summary.OpeningQty)
	assert.Equal(t, int64(200), rep.Summary.OpeningBalance)
	assert.Equal(t, int64(30), rep.Summary.BalanceQty)
	assert.Equal(t, rep.Summary.BalanceQty, rep.Summary.OpeningQty+rep.Summary.InQty-rep.Summary.OutQty)
	assert.Contains(t, w.Body.String(), `"opening_qty":20`)

	w = do(t, h, http.MethodGet, "/api/v1/reports/ITEM004?start_date=2024-02-01&end_date=2024-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/reports/ITEM004?start_date=01-02-2024", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/reports/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_InsufficientStock(t *testing.T) {
	h := newServer(t, false)
	seed(t, h)

	w := do(t, h, http.MethodPost, "/api/v1/sales/SAL-1/details", map[string]any{"item": "ITEM004", "quantity": 31})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	body := decode[dto.ErrorResponse](t, w)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Equal(t, "30", body.Details["available"])

	w = do(t, h, http.MethodGet, "/api/v1/sales/SAL-1/details", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestRouter_BackdatedSale(t *testing.T) {
	h := newServer(t, false)
	seed(t, h)

	w := do(t, h, http.MethodPost, "/api/v1/sales", map[string]any{"code": "SAL-0", "date": "2024-01-01"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, h, http.MethodPost, "/api/v1/sales/SAL-0/details", map[string]any{"item": "ITEM004", "quantity": 1})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	body := decode[dto.ErrorResponse](t, w)
	assert.Equal(t, "PUR-B", body.Details["latest_document_code"])

	w = do(t, h, http.MethodGet, "/api/v1/reports/ITEM004", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRouter_DocumentLifecycle(t *testing.T) {
	h := newServer(t, false)
	seed(t, h)

	w := do(t, h, http.MethodPatch, "/api/v1/purchases/PUR-A", map[string]any{"date": "2024-03-01"})
	assert.Equal(t, http.StatusConflict, w.Code, "dated lines are frozen")

	w = do(t, h, http.MethodPatch, "/api/v1/sales/SAL-1", map[string]any{"description": "updated"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	doc := decode[dto.DocumentResponse[dto.SaleDetailResponse]](t, w)
	assert.Equal(t, "updated", doc.Description)
	assert.Equal(t, 2, doc.Version)

	w = do(t, h, http.MethodGet, "/api/v1/purchases/PUR-B", nil)
	require.Equal(t, http.StatusOK, w.Code)
	pur := decode[dto.DocumentResponse[dto.PurchaseDetailResponse]](t, w)
	assert.Equal(t, "2024-01-02", pur.Date)
	require.Len(t, pur.Details, 1)
	assert.Equal(t, "10", pur.Details[0].RemainingQuantity.String())

	w = do(t, h, http.MethodGet, "/api/v1/purchases?search=PUR", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[dto.ListResponse[dto.DocumentResponse[dto.PurchaseDetailResponse]]](t, w)
	assert.EqualValues(t, 2, list.TotalCount)
	assert.Equal(t, "PUR-B", list.Items[0].Code, "newest first")

	w = do(t, h, http.MethodDelete, "/api/v1/sales/SAL-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, http.MethodGet, "/api/v1/sales/SAL-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_GeneratedCodeAndBadInput(t *testing.T) {
	h := newServer(t, false)

	w := do(t, h, http.MethodPost, "/api/v1/purchases", map[string]any{"date": "2024-06-10"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	doc := decode[dto.DocumentResponse[dto.PurchaseDetailResponse]](t, w)
	assert.Equal(t, "PUR-2024-00001", doc.Code)

	w = do(t, h, http.MethodPost, "/api/v1/purchases", map[string]any{"date": "10.06.2024"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/items", map[string]any{"code": "X"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/purchases/"+doc.Code+"/details",
		map[string]any{"item": "MISSING", "quantity": 1, "unit_price": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_IdempotentSale(t *testing.T) {
	h := newServer(t, false)
	seed(t, h)

	body := map[string]any{"item": "ITEM004", "quantity": 5}
	first := do(t, h, http.MethodPost, "/api/v1/sales/SAL-1/details", body, "X-Idempotency-Key", "sale-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := do(t, h, http.MethodPost, "/api/v1/sales/SAL-1/details", body, "X-Idempotency-Key", "sale-1")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	w := do(t, h, http.MethodGet, "/api/v1/items/ITEM004", nil)
	it := decode[dto.ItemResponse](t, w)
	assert.Equal(t, "25", it.Stock.String(), "sold once")

	w = do(t, h, http.MethodPost, "/api/v1/sales/SAL-1/details",
		map[string]any{"item": "ITEM004", "quantity": 6}, "X-Idempotency-Key", "sale-1")
	assert.Equal(t, http.StatusConflict, w.Code, "key reused for another body")
}

func TestRouter_Gzip(t *testing.T) {
	h := newServer(t, true)
	seed(t, h)

	w := do(t, h, http.MethodGet, "/api/v1/items", nil, "Accept-Encoding", "gzip")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)

	var list dto.ListResponse[dto.ItemResponse]
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "ITEM004", list.Items[0].Code)

	w = do(t, h, http.MethodDelete, "/api/v1/items/ITEM004", nil, "Accept-Encoding", "gzip")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
}

func TestRouter_Health(t *testing.T) {
	h := newServer(t, false)

	w := do(t, h, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
