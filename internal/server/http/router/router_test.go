package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/polkiloo/digistore/internal/config"
	"github.com/polkiloo/digistore/internal/domain/model"
	"github.com/polkiloo/digistore/internal/metrics"
	"github.com/polkiloo/digistore/internal/server/http/handlers"
	testhelpers "github.com/polkiloo/digistore/internal/test"
)

func newEngine(t *testing.T, facade testhelpers.StoreFacadeStub) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	metrics.New(reg).Transition(string(model.OrderStatusConfirmed), model.ActorTelegram)

	return Setup(Params{
		Facade:   facade,
		Gatherer: reg,
		Config:   &config.Config{TelegramWebhookSecret: "hook"},
		Logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	return resp
}

func TestSetupRoutes(t *testing.T) {
	facade := testhelpers.StoreFacadeStub{
		AuthFacadeStub: testhelpers.AuthFacadeStub{ParseFn: func(token string) (string, error) {
			if token != "token" {
				return "", context.Canceled
			}
			return "root", nil
		}},
		OrdersFn: func(context.Context, model.OrderStatus, int) ([]model.OrderDetails, error) {
			return []model.OrderDetails{{Order: model.Order{ID: 1, Status: model.OrderStatusPending}}}, nil
		},
	}
	engine := newEngine(t, facade)

	body, _ := json.Marshal(map[string]string{"username": "root", "password": "pass"})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if resp := serve(engine, req); resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for login, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer token")
	if resp := serve(engine, req); resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for orders, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/admin/orders/1/confirm", nil)
	if resp := serve(engine, req); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected admin routes to require a session, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/admin/orders/1/confirm", nil)
	req.Header.Set("Authorization", "Bearer token")
	if resp := serve(engine, req); resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for confirm, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/orders/1", nil)
	if resp := serve(engine, req); resp.Code != http.StatusOK {
		t.Fatalf("expected public order status, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil)
	resp := serve(engine, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected logout 204 without a session, got %d", resp.Code)
	}
	if resp.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id on every response")
	}
}

func TestSetupPublicEndpoints(t *testing.T) {
	engine := newEngine(t, testhelpers.StoreFacadeStub{})

	if resp := serve(engine, httptest.NewRequest(http.MethodGet, "/health", nil)); resp.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", resp.Code)
	}

	resp := serve(engine, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "digistore_order_transitions_total") {
		t.Fatalf("expected transition counter in metrics output")
	}

	req := httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(`{"update_id":1}`))
	if resp := serve(engine, req); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected webhook to check the secret, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(`{"update_id":1}`))
	req.Header.Set(handlers.TelegramSecretHeader, "hook")
	if resp := serve(engine, req); resp.Code != http.StatusOK {
		t.Fatalf("expected webhook 200, got %d", resp.Code)
	}

	if resp := serve(engine, httptest.NewRequest(http.MethodGet, "/download/missing", nil)); resp.Code != http.StatusNotFound {
		t.Fatalf("expected download 404 for unknown token, got %d", resp.Code)
	}
}

var _ handlers.StoreFacade = (*testhelpers.StoreFacadeStub)(nil)
