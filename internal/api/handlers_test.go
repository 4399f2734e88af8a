package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"adaptive-trading-framework/internal/events"
	"adaptive-trading-framework/internal/manager"
	"adaptive-trading-framework/internal/settings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T, mode settings.Mode) (*Server, *manager.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mgr := manager.New(mode, nil, events.NewBus(), zerolog.Nop())
	srv := NewServer(ServerConfig{Port: 0, Host: "127.0.0.1"}, mgr, nil, zerolog.Nop())
	return srv, mgr
}

func doRequest(srv *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

// ============================================================================
// HEALTH AND SNAPSHOT
// ============================================================================

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, settings.ModePaper)

	w := doRequest(srv, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("Expected healthy, got %v", resp["status"])
	}
	if resp["mode"] != "paper" {
		t.Errorf("Expected mode paper, got %v", resp["mode"])
	}
	if resp["remote"] != false {
		t.Errorf("Expected remote false, got %v", resp["remote"])
	}
}

func TestGetConfigRedactsCredentials(t *testing.T) {
	srv, mgr := newTestServer(t, settings.ModeBacktest)
	mgr.AddExchange("binance", "super-secret-key", "super-secret", nil)

	w := doRequest(srv, http.MethodGet, "/api/config", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	body := w.Body.String()
	if bytes.Contains([]byte(body), []byte("super-secret")) {
		t.Error("Response must not echo credentials")
	}

	var resp struct {
		Exchanges map[string]exchangeView `json:"exchanges"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	ex, ok := resp.Exchanges["binance"]
	if !ok {
		t.Fatal("Expected binance in snapshot")
	}
	if !ex.HasAPIKey || !ex.HasAPISecret {
		t.Errorf("Expected presence flags set, got %+v", ex)
	}
}

// ============================================================================
// VALIDATION
// ============================================================================

func TestValidateEndpointLiveFailure(t *testing.T) {
	srv, _ := newTestServer(t, settings.ModeLive)

	w := doRequest(srv, http.MethodGet, "/api/config/validate", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", w.Code)
	}

	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["valid"] != false {
		t.Errorf("Expected valid false, got %v", resp["valid"])
	}
	if resp["error"] == nil || resp["error"] == "" {
		t.Error("Expected an error message")
	}
}

func TestValidateEndpointBacktestOK(t *testing.T) {
	srv, _ := newTestServer(t, settings.ModeBacktest)

	w := doRequest(srv, http.MethodGet, "/api/config/validate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
}

// ============================================================================
// EXCHANGE MUTATION
// ============================================================================

func TestAddExchangeEndpoint(t *testing.T) {
	srv, mgr := newTestServer(t, settings.ModeBacktest)

	payload := []byte(`{
		"name": "kraken",
		"api_key": "k",
		"api_secret": "s",
		"fields": {"sandbox": false, "rate_limit": 2}
	}`)
	w := doRequest(srv, http.MethodPost, "/api/config/exchanges", payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	ex, ok := mgr.Exchange("kraken")
	if !ok {
		t.Fatal("Exchange not added")
	}
	if ex.Sandbox || ex.RateLimit != 2 {
		t.Errorf("Extra fields not applied: %+v", ex)
	}
}

func TestAddExchangeEndpointRejectsUnknownField(t *testing.T) {
	srv, mgr := newTestServer(t, settings.ModeBacktest)

	payload := []byte(`{"name": "kraken", "fields": {"leverage": 10}}`)
	w := doRequest(srv, http.MethodPost, "/api/config/exchanges", payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	if _, ok := mgr.Exchange("kraken"); ok {
		t.Error("Rejected exchange must not be inserted")
	}
}

func TestAddExchangeEndpointRequiresName(t *testing.T) {
	srv, _ := newTestServer(t, settings.ModeBacktest)

	w := doRequest(srv, http.MethodPost, "/api/config/exchanges", []byte(`{"api_key": "k"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for missing name, got %d", w.Code)
	}
}

func TestListExchangesSorted(t *testing.T) {
	srv, mgr := newTestServer(t, settings.ModeBacktest)
	mgr.AddExchange("kraken", "", "", nil)
	mgr.AddExchange("binance", "", "", nil)

	w := doRequest(srv, http.MethodGet, "/api/config/exchanges", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Exchanges []exchangeView `json:"exchanges"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if len(resp.Exchanges) != 2 {
		t.Fatalf("Expected 2 exchanges, got %d", len(resp.Exchanges))
	}
	if resp.Exchanges[0].Name != "binance" || resp.Exchanges[1].Name != "kraken" {
		t.Errorf("Expected sorted names, got %s, %s", resp.Exchanges[0].Name, resp.Exchanges[1].Name)
	}
}

// ============================================================================
// REMOTE SAVE
// ============================================================================

func TestSaveEndpointWithoutRemote(t *testing.T) {
	srv, _ := newTestServer(t, settings.ModeBacktest)

	w := doRequest(srv, http.MethodPost, "/api/config/save", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["saved"] != false {
		t.Errorf("Expected saved false without a remote store, got %v", resp["saved"])
	}
	if resp["remote"] != false {
		t.Errorf("Expected remote false, got %v", resp["remote"])
	}
}

// ============================================================================
// MIDDLEWARE
// ============================================================================

func TestRequestIDHeader(t *testing.T) {
	srv, _ := newTestServer(t, settings.ModeBacktest)

	w := doRequest(srv, http.MethodGet, "/api/health", nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header to be set")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w2 := httptest.NewRecorder()
	srv.Router().ServeHTTP(w2, req)
	if got := w2.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("Expected caller-supplied request ID echoed, got %q", got)
	}
}
