package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/stockledger/internal/config"
	"github.com/JonMunkholm/stockledger/internal/core"
	"github.com/JonMunkholm/stockledger/internal/storage"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		Import: config.ImportConfig{
			MaxFileSize:   1024,
			MaxConcurrent: 1,
			MaxWaitTime:   50 * time.Millisecond,
			Timeout:       time.Second,
		},
		Rate: config.RateLimitConfig{Enabled: false},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	seq := 0
	svc, err := core.NewService(context.Background(), storage.NewMemoryStore(),
		core.WithClock(func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }),
		core.WithIDGenerator(func() string { seq++; return fmt.Sprintf("o%d", seq) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	s := NewServer(svc, cfg)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestItemLifecycle(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodPost, "/api/items", `{"name":" Widget ","stock":10,"price":"2.50"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body %s", rec.Code, rec.Body)
	}
	added := decode[ItemResponse](t, rec)
	if added.Item.Key != "widget" || added.Item.Threshold != core.DefaultThreshold {
		t.Errorf("added = %+v", added.Item)
	}

	rec = do(t, s, http.MethodPost, "/api/items", `{"name":"WIDGET","stock":5,"threshold":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("merge status = %d", rec.Code)
	}
	if got := decode[ItemResponse](t, rec).Item; got.Stock != 15 || got.DisplayName != "WIDGET" || got.Price != nil {
		t.Errorf("merged = %+v", got)
	}

	rec = do(t, s, http.MethodPut, "/api/items/widget", `{"name":"Gadget","stock":3,"threshold":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d, body %s", rec.Code, rec.Body)
	}

	rec = do(t, s, http.MethodGet, "/api/items?sort=name_asc", "")
	items := decode[[]core.Item](t, rec)
	if len(items) != 1 || items[0].Key != "gadget" {
		t.Errorf("items = %+v", items)
	}

	if rec = do(t, s, http.MethodDelete, "/api/items/gadget", ""); rec.Code != http.StatusNoContent {
		t.Errorf("remove status = %d", rec.Code)
	}
	if rec = do(t, s, http.MethodDelete, "/api/items/gadget", ""); rec.Code != http.StatusNotFound {
		t.Errorf("second remove status = %d", rec.Code)
	}
}

func TestEditItem_KeepsOmittedFields(t *testing.T) {
	s := newTestServer(t, testConfig())
	do(t, s, http.MethodPost, "/api/items", `{"name":"Pen","stock":40,"threshold":3,"price":"2.50"}`)

	rec := do(t, s, http.MethodPut, "/api/items/pen", `{"name":"Blue Pen","stock":40}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d, body %s", rec.Code, rec.Body)
	}
	got := decode[ItemResponse](t, rec).Item
	if got.Key != "blue pen" || got.Stock != 40 || got.Threshold != 3 || core.FormatMoney(got.Price) != "2.50" {
		t.Errorf("renamed = %+v", got)
	}

	rec = do(t, s, http.MethodPut, "/api/items/blue%20pen", `{"stock":12,"price":null}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear price status = %d, body %s", rec.Code, rec.Body)
	}
	got = decode[ItemResponse](t, rec).Item
	if got.DisplayName != "Blue Pen" || got.Stock != 12 || got.Threshold != 3 || got.Price != nil {
		t.Errorf("cleared = %+v", got)
	}

	// A rejected edit leaves the item as it was.
	do(t, s, http.MethodPut, "/api/items/blue%20pen", `{"threshold":9}`)
	it, ok := s.service.FindItem("blue pen")
	if !ok || it.Stock != 12 || it.Threshold != 3 {
		t.Errorf("after rejected edit = %+v", it)
	}
}

func TestErrorStatuses(t *testing.T) {
	s := newTestServer(t, testConfig())
	do(t, s, http.MethodPost, "/api/items", `{"name":"Pen","stock":2}`)
	do(t, s, http.MethodPost, "/api/items", `{"name":"Pad","stock":2}`)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"zero stock", http.MethodPost, "/api/items", `{"name":"Pen","stock":0}`, http.StatusBadRequest, "VAL001"},
		{"bad json", http.MethodPost, "/api/items", `{`, http.StatusBadRequest, "VAL001"},
		{"rename collision", http.MethodPut, "/api/items/pen", `{"name":"pad","stock":1}`, http.StatusConflict, "INV001"},
		{"edit missing", http.MethodPut, "/api/items/nope", `{"name":"x","stock":1}`, http.StatusNotFound, "INV002"},
		{"edit without stock", http.MethodPut, "/api/items/pen", `{"name":"Blue Pen"}`, http.StatusBadRequest, "VAL001"},
		{"edit bad price", http.MethodPut, "/api/items/pen", `{"stock":1,"price":"abc"}`, http.StatusBadRequest, "VAL001"},
		{"order missing item", http.MethodPost, "/api/orders", `{"item":"ghost","qty":1}`, http.StatusNotFound, "INV002"},
		{"order too large", http.MethodPost, "/api/orders", `{"item":"Pen","qty":3}`, http.StatusConflict, "ORD001"},
		{"toggle missing", http.MethodPost, "/api/orders/zzz/toggle", "", http.StatusNotFound, "ORD002"},
		{"bad sort", http.MethodGet, "/api/items?sort=price", "", http.StatusBadRequest, "VAL001"},
		{"bad view", http.MethodGet, "/api/export/everything", "", http.StatusBadRequest, "VAL001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body)
			}
			if got := decode[ErrorResponse](t, rec); got.Code != tt.code {
				t.Errorf("code = %q, want %q", got.Code, tt.code)
			}
		})
	}
}

func TestOrderFlow(t *testing.T) {
	s := newTestServer(t, testConfig())
	do(t, s, http.MethodPost, "/api/items", `{"name":"Pen","stock":10,"price":"1.25"}`)

	rec := do(t, s, http.MethodPost, "/api/orders", `{"item":"  PEN ","qty":4}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("place status = %d, body %s", rec.Code, rec.Body)
	}
	order := decode[core.Order](t, rec)
	if order.ID != "o1" || order.Status != core.StatusPending || order.ItemName != "Pen" {
		t.Errorf("order = %+v", order)
	}

	rec = do(t, s, http.MethodPost, "/api/orders/o1/toggle", "")
	if got := decode[core.Order](t, rec); got.Status != core.StatusDelivered {
		t.Errorf("toggled status = %s", got.Status)
	}

	rec = do(t, s, http.MethodGet, "/api/orders?status=delivered", "")
	if got := decode[[]core.Order](t, rec); len(got) != 1 {
		t.Errorf("delivered orders = %d", len(got))
	}

	rec = do(t, s, http.MethodGet, "/api/sales", "")
	sales := decode[[]core.SalesRow](t, rec)
	if len(sales) != 1 || sales[0].Units != 4 || core.FormatMoney(sales[0].Revenue) != "5.00" {
		t.Errorf("sales = %+v", sales)
	}

	rec = do(t, s, http.MethodDelete, "/api/orders/o1", "")
	if got := decode[CancelResponse](t, rec); !got.Restored {
		t.Errorf("cancel = %+v", got)
	}
	if it, _ := s.service.FindItem("pen"); it.Stock != 10 {
		t.Errorf("stock after cancel = %d", it.Stock)
	}
}

func TestExport(t *testing.T) {
	s := newTestServer(t, testConfig())
	do(t, s, http.MethodPost, "/api/items", `{"name":"Pen, blue","stock":3}`)

	rec := do(t, s, http.MethodGet, "/api/export/inventory", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "stockledger_inventory_20240301.csv") {
		t.Errorf("disposition = %q", cd)
	}
	if want := "name,stock,threshold,price\n\"Pen, blue\",3,5,"; rec.Body.String() != want {
		t.Errorf("body = %q, want %q", rec.Body.String(), want)
	}
}

func TestImport(t *testing.T) {
	s := newTestServer(t, testConfig())
	do(t, s, http.MethodPost, "/api/items", `{"name":"Pen","stock":1}`)

	t.Run("raw body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader("Stock,Name\n2,pen\n4,Pad\nx,Bad\n"))
		req.Header.Set("Content-Type", "text/csv")
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
		}
		res := decode[core.ImportResult](t, rec)
		if res != (core.ImportResult{Imported: 2, Created: 1, Merged: 1}) {
			t.Errorf("result = %+v", res)
		}
	})

	t.Run("multipart", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		_ = mw.WriteField("note", "ignored")
		fw, err := mw.CreateFormFile("file", "inventory.csv")
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write([]byte("name,stock\nCup,7\n"))
		_ = mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/import", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
		}
		if it, ok := s.service.FindItem("cup"); !ok || it.Stock != 7 {
			t.Errorf("cup = %+v, %v", it, ok)
		}
	})

	t.Run("no valid rows", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/api/import", "price\n1\n")
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d", rec.Code)
		}
		if got := decode[ErrorResponse](t, rec); got.Code != "IMP001" {
			t.Errorf("code = %q", got.Code)
		}
	})

	t.Run("too large", func(t *testing.T) {
		big := "name,stock\n" + strings.Repeat("item,1\n", 300)
		rec := do(t, s, http.MethodPost, "/api/import", big)
		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("status = %d", rec.Code)
		}
		if got := decode[ErrorResponse](t, rec); got.Code != "IMP003" {
			t.Errorf("code = %q", got.Code)
		}
	})
}

func TestImport_Busy(t *testing.T) {
	s := newTestServer(t, testConfig())
	if err := s.imports.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.imports.Release()

	rec := do(t, s, http.MethodPost, "/api/import", "name,stock\nA,1\n")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec); got.Code != "IMP004" {
		t.Errorf("code = %q", got.Code)
	}
}

func TestDashboardAndReset(t *testing.T) {
	s := newTestServer(t, testConfig())
	do(t, s, http.MethodPost, "/api/items", `{"name":"Pen","stock":2}`)
	do(t, s, http.MethodPost, "/api/items", `{"name":"Pad","stock":50}`)

	rec := do(t, s, http.MethodGet, "/api/dashboard", "")
	d := decode[core.Dashboard](t, rec)
	if d.Stats.Items != 2 || d.Stats.LowStock != 1 || d.LowStock[0].Key != "pen" {
		t.Errorf("dashboard = %+v", d)
	}

	rec = do(t, s, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Low stock: Pen") {
		t.Errorf("page status = %d", rec.Code)
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("security headers missing")
	}

	if rec = do(t, s, http.MethodPost, "/api/reset", ""); rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d", rec.Code)
	}
	if got := s.service.Items(core.InventoryQuery{}); len(got) != 0 {
		t.Errorf("items after reset = %d", len(got))
	}
}

func TestHTMXError(t *testing.T) {
	s := newTestServer(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"item":"ghost","qty":1}`))
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `class="alert alert-error"`) {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	s := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		if rec := do(t, s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
	if got := decode[ErrorResponse](t, rec); got.Code != "RATE001" {
		t.Errorf("code = %q", got.Code)
	}
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)
	defer rl.stop()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.allow("1.2.3.4") {
		t.Fatal("first request denied")
	}
	if rl.allow("1.2.3.4") {
		t.Fatal("second request allowed")
	}
	if !rl.allow("5.6.7.8") {
		t.Fatal("other client denied")
	}
	now = now.Add(61 * time.Second)
	if !rl.allow("1.2.3.4") {
		t.Fatal("request after window denied")
	}
}
