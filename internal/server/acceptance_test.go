package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"kitchenpos/internal/database"
	"kitchenpos/internal/logger"
	"kitchenpos/internal/models"
	"kitchenpos/internal/services/menu"
	"kitchenpos/internal/services/order"
	"kitchenpos/internal/services/table"
	"kitchenpos/internal/store/memory"
	"kitchenpos/internal/store/postgres"
)

type appStore interface {
	Pinger
	order.Repository
	table.Repository
	menu.Repository
}

func newTestServer(t *testing.T, store appStore) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewWithWriter("acceptance", io.Discard, logger.ParseLevel("error"))

	router := NewRouter(log, 30*time.Second, store,
		table.NewHandler(table.NewService(store, log), log),
		menu.NewHandler(menu.NewService(store, log), log),
		order.NewHandler(order.NewService(store, store, nil, log), log),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

type client struct {
	t    *testing.T
	base string
}

func (c client) do(method, path string, body interface{}, out interface{}) int {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (c client) mustDo(method, path string, body interface{}, out interface{}, want int) {
	c.t.Helper()
	if got := c.do(method, path, body, out); got != want {
		c.t.Fatalf("%s %s = %d, want %d", method, path, got, want)
	}
}

// runOrderScenario seats a table, builds two menus, orders them and walks the order to COMPLETION
func runOrderScenario(t *testing.T, srv *httptest.Server) {
	c := client{t: t, base: srv.URL}

	var tbl models.OrderTable
	c.mustDo(http.MethodPost, "/api/tables", map[string]interface{}{"numberOfGuests": 2, "empty": false}, &tbl, http.StatusCreated)

	var group models.MenuGroup
	c.mustDo(http.MethodPost, "/api/menu-groups", map[string]string{"name": "chicken sets"}, &group, http.StatusCreated)

	products := make([]models.Product, 0, 4)
	for _, p := range []struct{ name, price string }{
		{"fried chicken", "10000"}, {"seasoned chicken", "4000"}, {"soy chicken", "5000"}, {"beer", "4000"},
	} {
		var product models.Product
		c.mustDo(http.MethodPost, "/api/products", map[string]string{"name": p.name, "price": p.price}, &product, http.StatusCreated)
		products = append(products, product)
	}

	var chickenMenu models.Menu
	c.mustDo(http.MethodPost, "/api/menus", map[string]interface{}{
		"name":        "chicken trio",
		"price":       "16000",
		"menuGroupId": group.ID,
		"menuProducts": []map[string]int64{
			{"productId": products[0].ID, "quantity": 1},
			{"productId": products[1].ID, "quantity": 1},
			{"productId": products[2].ID, "quantity": 1},
		},
	}, &chickenMenu, http.StatusCreated)

	var beerMenu models.Menu
	c.mustDo(http.MethodPost, "/api/menus", map[string]interface{}{
		"name":         "beer",
		"price":        "4000",
		"menuGroupId":  group.ID,
		"menuProducts": []map[string]int64{{"productId": products[3].ID, "quantity": 1}},
	}, &beerMenu, http.StatusCreated)

	var created models.Order
	c.mustDo(http.MethodPost, "/api/orders", map[string]interface{}{
		"orderTableId": tbl.ID,
		"orderLineItems": []map[string]int64{
			{"menuId": chickenMenu.ID, "quantity": 1},
			{"menuId": beerMenu.ID, "quantity": 4},
		},
	}, &created, http.StatusCreated)

	if created.OrderStatus != models.StatusCooking {
		t.Fatalf("created status = %s, want COOKING", created.OrderStatus)
	}
	if len(created.OrderLineItems) != 2 {
		t.Fatalf("line items = %d, want 2", len(created.OrderLineItems))
	}
	for _, item := range created.OrderLineItems {
		if item.Seq == 0 || item.OrderID != created.ID {
			t.Errorf("line item %+v not linked to order %d", item, created.ID)
		}
	}

	statusPath := fmt.Sprintf("/api/orders/%d/order-status", created.ID)
	for _, next := range []models.OrderStatus{models.StatusMeal, models.StatusCompletion} {
		var changed models.Order
		c.mustDo(http.MethodPut, statusPath, map[string]string{"orderStatus": next.String()}, &changed, http.StatusOK)
		if changed.OrderStatus != next {
			t.Fatalf("status = %s, want %s", changed.OrderStatus, next)
		}
	}

	c.mustDo(http.MethodPut, statusPath, map[string]string{"orderStatus": "MEAL"}, nil, http.StatusConflict)

	var fetched models.Order
	c.mustDo(http.MethodGet, fmt.Sprintf("/api/orders/%d", created.ID), nil, &fetched, http.StatusOK)
	if fetched.OrderStatus != models.StatusCompletion {
		t.Errorf("fetched status = %s, want COMPLETION", fetched.OrderStatus)
	}
	if fetched.OrderedTime.Sub(created.OrderedTime).Abs() > time.Millisecond {
		t.Errorf("orderedTime changed from %v to %v", created.OrderedTime, fetched.OrderedTime)
	}

	var again models.Order
	c.mustDo(http.MethodGet, fmt.Sprintf("/api/orders/%d", created.ID), nil, &again, http.StatusOK)
	if again.OrderStatus != fetched.OrderStatus || len(again.OrderLineItems) != len(fetched.OrderLineItems) {
		t.Errorf("repeated read differs: %+v vs %+v", again, fetched)
	}

	var history []models.OrderStatusHistory
	c.mustDo(http.MethodGet, fmt.Sprintf("/api/orders/%d/history", created.ID), nil, &history, http.StatusOK)
	if len(history) != 3 {
		t.Fatalf("history entries = %d, want 3", len(history))
	}
	want := []models.OrderStatus{models.StatusCooking, models.StatusMeal, models.StatusCompletion}
	for i, entry := range history {
		if entry.Status != want[i] {
			t.Errorf("history[%d] = %s, want %s", i, entry.Status, want[i])
		}
	}
}

func TestOrderScenarioInMemory(t *testing.T) {
	runOrderScenario(t, newTestServer(t, memory.New()))
}

func TestOrderScenarioPostgres(t *testing.T) {
	url := os.Getenv("KITCHENPOS_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("KITCHENPOS_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log := logger.NewWithWriter("acceptance", io.Discard, logger.ParseLevel("error"))
	db, err := database.Connect(ctx, url, 4, log)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.RunMigrations(ctx); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	runOrderScenario(t, newTestServer(t, postgres.New(db)))
}

func TestHealthAndUnknownRoute(t *testing.T) {
	srv := newTestServer(t, memory.New())
	c := client{t: t, base: srv.URL}

	var health map[string]string
	c.mustDo(http.MethodGet, "/health", nil, &health, http.StatusOK)
	if health["status"] != "ok" {
		t.Errorf("health status = %q", health["status"])
	}

	c.mustDo(http.MethodGet, "/api/nothing-here", nil, nil, http.StatusNotFound)
}

type downStore struct{ *memory.Store }

func (downStore) Ping(context.Context) error { return fmt.Errorf("connection refused") }

func TestHealthReportsStoreFailure(t *testing.T) {
	srv := newTestServer(t, downStore{memory.New()})
	c := client{t: t, base: srv.URL}

	c.mustDo(http.MethodGet, "/health", nil, nil, http.StatusServiceUnavailable)
}
