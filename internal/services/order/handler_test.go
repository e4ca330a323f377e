package order

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"kitchenpos/internal/httpx"
	"kitchenpos/internal/logger"
	"kitchenpos/internal/models"
)

func newTestRouter(f *fixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.NewWithWriter("order-test", io.Discard, logger.ParseLevel("error"))

	r := gin.New()
	r.Use(httpx.WithLogging(log))
	NewHandler(f.service, log).RegisterRoutes(r.Group("/api"))
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlerStatusCodes(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(f)
	order := f.createOrder(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"create", http.MethodPost, "/api/orders", `{"orderTableId":1,"orderLineItems":[{"menuId":1,"quantity":1}]}`, http.StatusCreated},
		{"create without items", http.MethodPost, "/api/orders", `{"orderTableId":1,"orderLineItems":[]}`, http.StatusBadRequest},
		{"create with unknown menu", http.MethodPost, "/api/orders", `{"orderTableId":1,"orderLineItems":[{"menuId":77,"quantity":1}]}`, http.StatusBadRequest},
		{"create on missing table", http.MethodPost, "/api/orders", `{"orderTableId":77,"orderLineItems":[{"menuId":1,"quantity":1}]}`, http.StatusBadRequest},
		{"create on empty table", http.MethodPost, "/api/orders", `{"orderTableId":2,"orderLineItems":[{"menuId":1,"quantity":1}]}`, http.StatusBadRequest},
		{"create with unknown field", http.MethodPost, "/api/orders", `{"orderTableId":1,"tip":5}`, http.StatusBadRequest},
		{"list", http.MethodGet, "/api/orders", "", http.StatusOK},
		{"get", http.MethodGet, "/api/orders/1", "", http.StatusOK},
		{"get missing", http.MethodGet, "/api/orders/99", "", http.StatusNotFound},
		{"get bad id", http.MethodGet, "/api/orders/abc", "", http.StatusBadRequest},
		{"change to cooking", http.MethodPut, "/api/orders/1/order-status", `{"orderStatus":"COOKING"}`, http.StatusBadRequest},
		{"change to unknown", http.MethodPut, "/api/orders/1/order-status", `{"orderStatus":"DONE"}`, http.StatusBadRequest},
		{"change missing order", http.MethodPut, "/api/orders/99/order-status", `{"orderStatus":"MEAL"}`, http.StatusNotFound},
		{"change to meal", http.MethodPut, "/api/orders/1/order-status", `{"orderStatus":"MEAL"}`, http.StatusOK},
		{"complete", http.MethodPut, "/api/orders/1/order-status", `{"orderStatus":"COMPLETION"}`, http.StatusOK},
		{"change completed", http.MethodPut, "/api/orders/1/order-status", `{"orderStatus":"MEAL"}`, http.StatusConflict},
		{"history", http.MethodGet, "/api/orders/1/history", "", http.StatusOK},
		{"history missing", http.MethodGet, "/api/orders/99/history", "", http.StatusNotFound},
	}

	if order.ID != 1 {
		t.Fatalf("fixture order id = %d, want 1", order.ID)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(r, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("%s %s = %d, want %d (body %s)", tt.method, tt.path, rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestHandlerCreateOrderBody(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(f)

	rec := doRequest(r, http.MethodPost, "/api/orders", `{"orderTableId":1,"orderLineItems":[{"menuId":1,"quantity":1},{"menuId":2,"quantity":4}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var order models.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if order.OrderStatus != models.StatusCooking {
		t.Errorf("orderStatus = %s, want COOKING", order.OrderStatus)
	}
	if len(order.OrderLineItems) != 2 || order.OrderLineItems[1].Quantity != 4 {
		t.Errorf("line items = %+v", order.OrderLineItems)
	}
}

func TestHandlerErrorBody(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(f)

	rec := doRequest(r, http.MethodGet, "/api/orders/5", "")

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"error", "timestamp", "request_id"} {
		if body[key] == "" {
			t.Errorf("error body missing %q: %v", key, body)
		}
	}
}
