package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	contractx "github.com/burgerhouse/orderchat/chat/contract"
	storex "github.com/burgerhouse/orderchat/store"
)

func TestSessionRegistrySerializes(t *testing.T) {
	reg := newSessionRegistry()

	var inCritical, max, count int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := reg.acquire("same-session")
			defer release()

			mu.Lock()
			inCritical++
			if inCritical > max {
				max = inCritical
			}
			count++
			mu.Unlock()

			mu.Lock()
			inCritical--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if max != 1 {
		t.Fatalf("max concurrent holders = %d, want 1", max)
	}
	if count != 16 {
		t.Fatalf("count = %d, want 16", count)
	}
	if len(reg.entries) != 0 {
		t.Fatalf("registry entries leaked: %d", len(reg.entries))
	}
}

func TestSessionRegistryIndependentSessions(t *testing.T) {
	reg := newSessionRegistry()

	releaseA := reg.acquire("a")
	done := make(chan struct{})
	go func() {
		release := reg.acquire("b")
		release()
		close(done)
	}()
	<-done // must not deadlock while "a" is held
	releaseA()
}

type stubCatalog struct{ products []storex.Product }

func (s stubCatalog) Active(context.Context) ([]storex.Product, error) { return s.products, nil }
func (s stubCatalog) ByID(context.Context, int64) (*storex.Product, error) {
	return nil, contractx.ErrNotFound
}
func (s stubCatalog) SearchActive(context.Context, string) ([]storex.Product, error) {
	return s.products, nil
}

type stubCustomers struct{ customer *storex.Customer }

func (s stubCustomers) ByID(context.Context, int64) (*storex.Customer, error) {
	return nil, contractx.ErrNotFound
}
func (s stubCustomers) ByPhone(_ context.Context, phone string) (*storex.Customer, error) {
	if s.customer != nil && s.customer.Phone == phone {
		return s.customer, nil
	}
	return nil, contractx.ErrNotFound
}
func (s stubCustomers) Create(_ context.Context, c *storex.Customer) (*storex.Customer, error) {
	return c, nil
}
func (s stubCustomers) UpdateAddress(context.Context, int64, *storex.Customer) error { return nil }

type stubOrders struct{ status string }

func (s stubOrders) Create(context.Context, *storex.Order, []storex.LineItem) (int64, error) {
	return 1, nil
}
func (s stubOrders) SetPayment(context.Context, int64, string, string) error { return nil }
func (s stubOrders) Status(_ context.Context, orderID int64) (string, error) {
	if orderID == 7 {
		return s.status, nil
	}
	return "", contractx.ErrNotFound
}
func (s stubOrders) RecentByCustomer(context.Context, int64, int) ([]storex.OrderSummary, error) {
	return nil, nil
}

type stubAddresses struct{}

func (stubAddresses) Lookup(_ context.Context, postalCode string) (*contractx.Address, error) {
	if postalCode == "00000000" {
		return nil, contractx.ErrNotFound
	}
	return &contractx.Address{Street: "Rua B", City: "Contagem", Region: "MG"}, nil
}

type stubCarts struct {
	merged    bool
	sessionID string
}

func (s *stubCarts) MergeAnonymous(_ context.Context, sessionID string, _ int64) error {
	s.merged = true
	s.sessionID = sessionID
	return nil
}

func testRouter(t *testing.T, carts *stubCarts) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := &Server{
		catalog:   stubCatalog{products: []storex.Product{{ID: 1, Name: "Classic Burger", Price: 25}}},
		customers: stubCustomers{customer: &storex.Customer{ID: 9, Name: "João Silva", Phone: "31999990000"}},
		orders:    stubOrders{status: "preparing"},
		addresses: stubAddresses{},
		carts:     carts,
		registry:  newSessionRegistry(),
	}
	router := gin.New()
	s.registerRoutes(router)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListProducts(t *testing.T) {
	router := testRouter(t, &stubCarts{})
	rec := doRequest(t, router, http.MethodGet, "/api/products", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Classic Burger") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestLookupCEP(t *testing.T) {
	router := testRouter(t, &stubCarts{})

	rec := doRequest(t, router, http.MethodGet, "/api/cep/31000-000", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["localidade"] != "Contagem" {
		t.Fatalf("localidade = %q", body["localidade"])
	}

	rec = doRequest(t, router, http.MethodGet, "/api/cep/00000000", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestTrackOrder(t *testing.T) {
	router := testRouter(t, &stubCarts{})

	rec := doRequest(t, router, http.MethodGet, "/api/track-order/7", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "preparing") {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/api/track-order/999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/track-order/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCustomerLoginMergesCart(t *testing.T) {
	carts := &stubCarts{}
	router := testRouter(t, carts)

	rec := doRequest(t, router, http.MethodPost, "/api/customer/login",
		`{"phone":"(31) 99999-0000","session_id":"anon-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if !carts.merged || carts.sessionID != "anon-1" {
		t.Fatalf("cart merge not invoked: %+v", carts)
	}
	if !strings.Contains(rec.Body.String(), "João Silva") {
		t.Fatalf("body = %s", rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/api/customer/login", `{"phone":"31000000000"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
