package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/fundme/internal/adapter/http/middleware"
	"github.com/iho/fundme/internal/adapter/oracle"
	"github.com/iho/fundme/internal/infrastructure/config"
)

const testOwner = "0x00000000000000000000000000000000000000aa"

func loadTestConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()

	t.Setenv("LEDGER_OWNER", testOwner)
	t.Setenv("STORAGE_DRIVER", "memory")
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func serve(a *app, method, path, caller, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if caller != "" {
		req.Header.Set(middleware.CallerAddressHeader, caller)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func TestNewAppMemoryStorage(t *testing.T) {
	cfg := loadTestConfig(t, nil)

	a, err := newApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	defer a.Close()

	if rec := serve(a, http.MethodGet, "/ready", "", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected ready, got %d: %s", rec.Code, rec.Body.String())
	}

	rec := serve(a, http.MethodGet, "/api/v1/price-feed", "", "", nil)
	if !strings.Contains(rec.Body.String(), oracle.DefaultStaticAddress) {
		t.Fatalf("expected static aggregator address, got %s", rec.Body.String())
	}

	if rec := serve(a, http.MethodPost, "/api/v1/fund", "0xf1", `{"amount":"0.1"}`, nil); rec.Code != http.StatusCreated {
		t.Fatalf("expected fund to succeed, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = serve(a, http.MethodGet, "/metrics", "", "", nil)
	if !strings.Contains(rec.Body.String(), "fundme_contributions_accepted_total 1") {
		t.Fatalf("expected business metrics in exposition, got:\n%s", rec.Body.String())
	}
}

func TestNewAppWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := loadTestConfig(t, map[string]string{
		"REDIS_URL":      "redis://" + mr.Addr(),
		"RATE_LIMIT_RPS": "0",
	})

	a, err := newApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	defer a.Close()

	if a.rateLimiter != nil {
		t.Fatalf("expected rate limiting to be disabled")
	}

	headers := map[string]string{middleware.IdempotencyKeyHeader: "fund-1"}
	first := serve(a, http.MethodPost, "/api/v1/fund", "0xf1", `{"amount":"0.1"}`, headers)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected fund to succeed, got %d: %s", first.Code, first.Body.String())
	}

	replay := serve(a, http.MethodPost, "/api/v1/fund", "0xf1", `{"amount":"0.1"}`, headers)
	if replay.Header().Get(middleware.IdempotencyReplayHeader) != "true" || replay.Body.String() != first.Body.String() {
		t.Fatalf("expected replayed response, got %d: %s", replay.Code, replay.Body.String())
	}

	rec := serve(a, http.MethodGet, "/api/v1/ledger", "", "", nil)
	if !strings.Contains(rec.Body.String(), `"balance":"0.1"`) {
		t.Fatalf("expected a single contribution, got %s", rec.Body.String())
	}

	if rec := serve(a, http.MethodGet, "/api/v1/quote?amount=0.1", "", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected quote, got %d", rec.Code)
	}
	if !mr.Exists("fundme:cache:quote:price") {
		t.Fatalf("expected quote price to be cached, keys: %v", mr.Keys())
	}
}

func TestNewAppRedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := loadTestConfig(t, map[string]string{"REDIS_URL": "redis://" + addr})

	if _, err := newApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry()); err == nil {
		t.Fatalf("expected error when redis is down")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := loadTestConfig(t, map[string]string{"HTTP_PORT": "0"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, zerolog.Nop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}
